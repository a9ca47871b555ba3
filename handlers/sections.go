package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

type sectionResponse struct {
	ID          string  `json:"id"`
	Project     string  `json:"project"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	ColorHex    string  `json:"color_hex"`
	SectionType string  `json:"section_type"`
	SortOrder   float64 `json:"sort_order"`
}

func sectionToResponse(rec *core.Record) sectionResponse {
	return sectionResponse{
		ID:          rec.Id,
		Project:     rec.GetString("project"),
		Name:        rec.GetString("name"),
		Code:        rec.GetString("code"),
		Description: rec.GetString("description"),
		ColorHex:    rec.GetString("color_hex"),
		SectionType: rec.GetString("section_type"),
		SortOrder:   rec.GetFloat("sort_order"),
	}
}

// HandleListSections returns a project's sections ordered by sort_order.
func HandleListSections(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.URL.Query().Get("projectId")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "projectId is required")
		}

		sections, err := app.FindRecordsByFilter(
			"project_sections",
			"project = {:project}",
			"sort_order",
			0,
			0,
			map[string]any{"project": projectID},
		)
		if err != nil {
			log.Printf("list_sections: query failed for project %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]sectionResponse, 0, len(sections))
		for _, s := range sections {
			out = append(out, sectionToResponse(s))
		}
		return e.JSON(http.StatusOK, out)
	}
}

type sectionCreateRequest struct {
	Project     string `json:"project"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ColorHex    string `json:"color_hex"`
	SectionType string `json:"section_type"`
}

// HandleCreateSection creates a project section typed by work phase.
func HandleCreateSection(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req sectionCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.Project == "" {
			return respondError(e, http.StatusBadRequest, "project is required")
		}
		if strings.TrimSpace(req.Name) == "" {
			return respondError(e, http.StatusBadRequest, "name is required")
		}
		if !services.ValidSectionType(req.SectionType) {
			return respondError(e, http.StatusBadRequest, "section_type must be one of: "+strings.Join(services.SectionTypes, ", "))
		}

		if _, err := app.FindRecordById("projects", req.Project); err != nil {
			log.Printf("create_section: project not found %s: %v", req.Project, err)
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		col, err := app.FindCollectionByNameOrId("project_sections")
		if err != nil {
			log.Printf("create_section: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("project", req.Project)
		rec.Set("name", strings.TrimSpace(req.Name))
		rec.Set("code", req.Code)
		rec.Set("description", req.Description)
		rec.Set("color_hex", req.ColorHex)
		rec.Set("section_type", req.SectionType)
		rec.Set("sort_order", nextSortOrder(app, "project_sections", "project", req.Project))

		if err := app.Save(rec); err != nil {
			log.Printf("create_section: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, sectionToResponse(rec))
	}
}

type sectionPatchRequest struct {
	Name        *string  `json:"name"`
	Code        *string  `json:"code"`
	Description *string  `json:"description"`
	ColorHex    *string  `json:"color_hex"`
	SectionType *string  `json:"section_type"`
	SortOrder   *float64 `json:"sort_order"`
}

// HandlePatchSection applies a partial update to a project section.
func HandlePatchSection(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectionID := e.Request.PathValue("id")
		if sectionID == "" {
			return respondError(e, http.StatusBadRequest, "Missing section ID")
		}

		rec, err := app.FindRecordById("project_sections", sectionID)
		if err != nil {
			log.Printf("patch_section: not found %s: %v", sectionID, err)
			return respondError(e, http.StatusNotFound, "Section not found")
		}

		var req sectionPatchRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return respondError(e, http.StatusBadRequest, "name cannot be empty")
			}
			rec.Set("name", strings.TrimSpace(*req.Name))
		}
		if req.SectionType != nil {
			if !services.ValidSectionType(*req.SectionType) {
				return respondError(e, http.StatusBadRequest, "section_type must be one of: "+strings.Join(services.SectionTypes, ", "))
			}
			rec.Set("section_type", *req.SectionType)
		}
		if req.Code != nil {
			rec.Set("code", *req.Code)
		}
		if req.Description != nil {
			rec.Set("description", *req.Description)
		}
		if req.ColorHex != nil {
			rec.Set("color_hex", *req.ColorHex)
		}
		if req.SortOrder != nil {
			rec.Set("sort_order", *req.SortOrder)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("patch_section: save failed for %s: %v", sectionID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, sectionToResponse(rec))
	}
}

// HandleDeleteSection deletes a project section. Its BQ items survive
// and fall into the unsectioned bucket.
func HandleDeleteSection(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sectionID := e.Request.PathValue("id")
		if sectionID == "" {
			return respondError(e, http.StatusBadRequest, "Missing section ID")
		}

		rec, err := app.FindRecordById("project_sections", sectionID)
		if err != nil {
			return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("delete_section: error deleting %s: %v", sectionID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		// Detach the deleted section from surviving items.
		orphans, err := app.FindRecordsByFilter(
			"bq_items",
			"section = {:section}",
			"",
			0,
			0,
			map[string]any{"section": sectionID},
		)
		if err == nil {
			for _, item := range orphans {
				item.Set("section", "")
				if err := app.Save(item); err != nil {
					log.Printf("delete_section: failed to detach item %s: %v", item.Id, err)
				}
			}
		}

		return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}

type sectionSummary struct {
	SectionID   string  `json:"section_id"`
	Name        string  `json:"name"`
	SectionType string  `json:"section_type"`
	ColorHex    string  `json:"color_hex"`
	ItemCount   int     `json:"item_count"`
	Total       float64 `json:"total"`
}

// HandleSectionSummaries returns per-section amount totals for a
// project, plus an unsectioned bucket for items without a section.
// Negative totals (over-deduction) are reported as-is.
func HandleSectionSummaries(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.URL.Query().Get("projectId")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "projectId is required")
		}

		sections, err := app.FindRecordsByFilter(
			"project_sections",
			"project = {:project}",
			"sort_order",
			0,
			0,
			map[string]any{"project": projectID},
		)
		if err != nil {
			log.Printf("section_summaries: query failed for project %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items, err := app.FindRecordsByFilter(
			"bq_items",
			"project = {:project}",
			"",
			0,
			0,
			map[string]any{"project": projectID},
		)
		if err != nil {
			log.Printf("section_summaries: item query failed for project %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		type bucket struct {
			count int
			total float64
		}
		buckets := map[string]*bucket{}
		for _, item := range items {
			key := item.GetString("section")
			b, ok := buckets[key]
			if !ok {
				b = &bucket{}
				buckets[key] = b
			}
			b.count++
			b.total += item.GetFloat("amount")
		}

		out := make([]sectionSummary, 0, len(sections)+1)
		for _, s := range sections {
			summary := sectionSummary{
				SectionID:   s.Id,
				Name:        s.GetString("name"),
				SectionType: s.GetString("section_type"),
				ColorHex:    s.GetString("color_hex"),
			}
			if b, ok := buckets[s.Id]; ok {
				summary.ItemCount = b.count
				summary.Total = b.total
			}
			out = append(out, summary)
		}
		if b, ok := buckets[""]; ok {
			out = append(out, sectionSummary{
				Name:      "General Items",
				ItemCount: b.count,
				Total:     b.total,
			})
		}

		return e.JSON(http.StatusOK, out)
	}
}
