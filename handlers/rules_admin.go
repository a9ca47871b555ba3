package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

type ruleCreateRequest struct {
	Section    string `json:"section"`
	Path       string `json:"path"`
	Level      int    `json:"level"`
	ParentPath string `json:"parent_path"`
	Content    string `json:"content"`
	Unit       string `json:"unit"`

	// Placement form: the server derives path and level from an anchor
	// rule instead of trusting the client to compute them.
	AnchorID string `json:"anchorId"`
	Mode     string `json:"mode"` // "child" or "sibling"
	Code     string `json:"code"`
}

// HandleCreateRule creates a measurement rule. It accepts either an
// explicit {path, level} or an {anchorId, mode, code} placement
// request, sanitizes the code, and rejects duplicate paths within the
// section (case-insensitive) with a 409.
func HandleCreateRule(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req ruleCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.Section == "" {
			return respondError(e, http.StatusBadRequest, "section is required")
		}

		if _, err := app.FindRecordById("nrm_sections", req.Section); err != nil {
			log.Printf("create_rule: section not found %s: %v", req.Section, err)
			return respondError(e, http.StatusNotFound, "Section not found")
		}

		nodes, err := loadSectionRules(app, req.Section)
		if err != nil {
			log.Printf("create_rule: query failed for section %s: %v", req.Section, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		path := strings.TrimSpace(req.Path)
		level := req.Level
		parentPath := strings.TrimSpace(req.ParentPath)

		if req.AnchorID != "" {
			anchorRec, err := app.FindRecordById("nrm_rules", req.AnchorID)
			if err != nil {
				log.Printf("create_rule: anchor not found %s: %v", req.AnchorID, err)
				return respondError(e, http.StatusNotFound, "Anchor rule not found")
			}
			if anchorRec.GetString("section") != req.Section {
				return respondError(e, http.StatusBadRequest, "anchor rule belongs to a different section")
			}

			var mode services.InsertMode
			switch req.Mode {
			case "child":
				mode = services.InsertChild
			case "sibling":
				mode = services.InsertSibling
			default:
				return respondError(e, http.StatusBadRequest, "mode must be \"child\" or \"sibling\"")
			}

			anchor := services.RuleNode{
				ID:         anchorRec.Id,
				SectionID:  anchorRec.GetString("section"),
				Path:       anchorRec.GetString("path"),
				Level:      int(anchorRec.GetFloat("level")),
				ParentPath: anchorRec.GetString("parent_path"),
			}
			placement, err := services.PlaceNode(anchor, mode, req.Code)
			if err != nil {
				return respondServiceError(e, err)
			}
			path = placement.Path
			level = placement.Level
		}

		if err := services.ValidatePlacement(nodes, req.Section, path, level); err != nil {
			return respondServiceError(e, err)
		}
		if parentPath == "" {
			parentPath = services.ParentPathOf(path)
		}

		col, err := app.FindCollectionByNameOrId("nrm_rules")
		if err != nil {
			log.Printf("create_rule: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("section", req.Section)
		rec.Set("path", path)
		rec.Set("level", level)
		rec.Set("parent_path", parentPath)
		rec.Set("content", req.Content)
		rec.Set("unit", req.Unit)

		if err := app.Save(rec); err != nil {
			log.Printf("create_rule: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		nodes = append(nodes, services.RuleNode{
			ID: rec.Id, SectionID: req.Section, Path: path, Level: level, ParentPath: parentPath,
		})
		return e.JSON(http.StatusCreated, ruleToResponse(nodes, services.RuleNode{
			ID:         rec.Id,
			SectionID:  req.Section,
			Path:       path,
			Level:      level,
			ParentPath: parentPath,
			Content:    req.Content,
			Unit:       req.Unit,
		}, ""))
	}
}

type rulePatchRequest struct {
	ID            string  `json:"id"`
	Content       *string `json:"content"`
	Unit          *string `json:"unit"`
	CoverageRules any     `json:"coverage_rules"`
	Examples      *string `json:"examples"`
	Notes         *string `json:"notes"`
}

// HandlePatchRule updates a rule's content fields. Path and level are
// immutable once a rule exists; restructuring means inserting a new
// rule in the right place.
func HandlePatchRule(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req rulePatchRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.ID == "" {
			return respondError(e, http.StatusBadRequest, "id is required")
		}

		rec, err := app.FindRecordById("nrm_rules", req.ID)
		if err != nil {
			log.Printf("patch_rule: not found %s: %v", req.ID, err)
			return respondError(e, http.StatusNotFound, "Rule not found")
		}

		if req.Content != nil {
			rec.Set("content", *req.Content)
		}
		if req.Unit != nil {
			rec.Set("unit", *req.Unit)
		}
		if req.CoverageRules != nil {
			rec.Set("coverage_rules", req.CoverageRules)
		}
		if req.Examples != nil {
			rec.Set("examples", *req.Examples)
		}
		if req.Notes != nil {
			rec.Set("notes", *req.Notes)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("patch_rule: save failed for %s: %v", req.ID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		nodes, err := loadSectionRules(app, rec.GetString("section"))
		if err != nil {
			log.Printf("patch_rule: reload failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return e.JSON(http.StatusOK, ruleToResponse(nodes, services.RuleNode{
			ID:         rec.Id,
			SectionID:  rec.GetString("section"),
			Path:       rec.GetString("path"),
			Level:      int(rec.GetFloat("level")),
			ParentPath: rec.GetString("parent_path"),
			Content:    rec.GetString("content"),
			Unit:       rec.GetString("unit"),
		}, ""))
	}
}

// HandleDeleteRule deletes a rule by ID. Descendant rules are not
// removed; the resolver's structural fallbacks keep them reachable.
// Deleting an already-missing rule succeeds.
func HandleDeleteRule(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ruleID := e.Request.URL.Query().Get("ruleId")
		if ruleID == "" {
			return respondError(e, http.StatusBadRequest, "ruleId is required")
		}

		rec, err := app.FindRecordById("nrm_rules", ruleID)
		if err != nil {
			return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("delete_rule: error deleting %s: %v", ruleID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}
