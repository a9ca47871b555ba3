package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/collections"
	"takeoff/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateRuleParentPaths(app); err != nil {
			log.Printf("Warning: rule parent_path migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Projects ─────────────────────────────────────────────
		se.Router.GET("/api/projects", handlers.HandleListProjects(app))
		se.Router.POST("/api/projects", handlers.HandleCreateProject(app))
		se.Router.GET("/api/projects/{id}", handlers.HandleGetProject(app))
		se.Router.PATCH("/api/projects/{id}", handlers.HandlePatchProject(app))
		se.Router.DELETE("/api/projects/{id}", handlers.HandleDeleteProject(app))
		se.Router.GET("/api/projects/{id}/export/excel", handlers.HandleProjectExportExcel(app))
		se.Router.GET("/api/projects/{id}/export/pdf", handlers.HandleProjectExportPDF(app))

		// ── Project sections ─────────────────────────────────────
		se.Router.GET("/api/sections", handlers.HandleListSections(app))
		se.Router.POST("/api/sections", handlers.HandleCreateSection(app))
		se.Router.PATCH("/api/sections/{id}", handlers.HandlePatchSection(app))
		se.Router.DELETE("/api/sections/{id}", handlers.HandleDeleteSection(app))
		se.Router.GET("/api/sections/summaries", handlers.HandleSectionSummaries(app))

		// ── BQ items and taking-off ──────────────────────────────
		se.Router.GET("/api/bq-items", handlers.HandleListBQItems(app))
		se.Router.POST("/api/bq-items", handlers.HandleCreateBQItem(app))
		se.Router.PATCH("/api/bq-items/{id}", handlers.HandlePatchBQItem(app))
		se.Router.DELETE("/api/bq-items/{id}", handlers.HandleDeleteBQItem(app))

		se.Router.GET("/api/dimensions", handlers.HandleListDimensions(app))
		se.Router.POST("/api/dimensions", handlers.HandleCreateDimension(app))
		se.Router.PATCH("/api/dimensions/{id}", handlers.HandlePatchDimension(app))
		se.Router.DELETE("/api/dimensions/{id}", handlers.HandleDeleteDimension(app))

		se.Router.POST("/api/tools/mean-girth", handlers.HandleMeanGirth(app))

		// ── Measurement rule library ─────────────────────────────
		se.Router.GET("/api/nrm-sections", handlers.HandleListNRMSections(app))
		se.Router.POST("/api/nrm-sections", handlers.HandleCreateNRMSection(app))
		se.Router.GET("/api/nrm-rules", handlers.HandleListRules(app))

		se.Router.POST("/api/admin/nrm-rules", handlers.HandleCreateRule(app))
		se.Router.PATCH("/api/admin/nrm-rules", handlers.HandlePatchRule(app))
		se.Router.DELETE("/api/admin/nrm-rules", handlers.HandleDeleteRule(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
