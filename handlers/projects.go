package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type projectResponse struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Created      string `json:"created"`
	Updated      string `json:"updated"`
}

func projectToResponse(rec *core.Record) projectResponse {
	return projectResponse{
		ID:           rec.Id,
		Organization: rec.GetString("organization"),
		Name:         rec.GetString("name"),
		Code:         rec.GetString("code"),
		Description:  rec.GetString("description"),
		Status:       rec.GetString("status"),
		Created:      rec.GetDateTime("created").String(),
		Updated:      rec.GetDateTime("updated").String(),
	}
}

// HandleListProjects returns all projects, newest first, optionally
// filtered by organization.
func HandleListProjects(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		filter := "id != ''"
		params := map[string]any{}
		if orgID := e.Request.URL.Query().Get("organizationId"); orgID != "" {
			filter = "organization = {:org}"
			params["org"] = orgID
		}

		projects, err := app.FindRecordsByFilter("projects", filter, "-created", 0, 0, params)
		if err != nil {
			log.Printf("list_projects: query failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]projectResponse, 0, len(projects))
		for _, p := range projects {
			out = append(out, projectToResponse(p))
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleGetProject returns a single project by ID.
func HandleGetProject(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}

		rec, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return respondError(e, http.StatusNotFound, "Project not found")
		}
		return e.JSON(http.StatusOK, projectToResponse(rec))
	}
}

type projectCreateRequest struct {
	Organization string `json:"organization"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
}

// HandleCreateProject creates a project in draft status.
func HandleCreateProject(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req projectCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.Organization == "" {
			return respondError(e, http.StatusBadRequest, "organization is required")
		}
		if strings.TrimSpace(req.Name) == "" {
			return respondError(e, http.StatusBadRequest, "name is required")
		}

		if _, err := app.FindRecordById("organizations", req.Organization); err != nil {
			log.Printf("create_project: organization not found %s: %v", req.Organization, err)
			return respondError(e, http.StatusNotFound, "Organization not found")
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("create_project: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("organization", req.Organization)
		rec.Set("name", strings.TrimSpace(req.Name))
		rec.Set("code", req.Code)
		rec.Set("description", req.Description)
		rec.Set("status", "draft")

		if err := app.Save(rec); err != nil {
			log.Printf("create_project: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, projectToResponse(rec))
	}
}

type projectPatchRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// HandlePatchProject applies a partial update to a project.
func HandlePatchProject(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}

		rec, err := app.FindRecordById("projects", projectID)
		if err != nil {
			log.Printf("patch_project: not found %s: %v", projectID, err)
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		var req projectPatchRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return respondError(e, http.StatusBadRequest, "name cannot be empty")
			}
			rec.Set("name", strings.TrimSpace(*req.Name))
		}
		if req.Status != nil {
			switch *req.Status {
			case "draft", "active", "archived":
				rec.Set("status", *req.Status)
			default:
				return respondError(e, http.StatusBadRequest, "status must be draft, active or archived")
			}
		}
		if req.Code != nil {
			rec.Set("code", *req.Code)
		}
		if req.Description != nil {
			rec.Set("description", *req.Description)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("patch_project: save failed for %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, projectToResponse(rec))
	}
}

// HandleDeleteProject deletes a project; cascades remove its sections,
// BQ items and dimension rows. Idempotent on missing projects.
func HandleDeleteProject(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}

		rec, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("delete_project: error deleting %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}
