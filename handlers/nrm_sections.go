package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type nrmSectionResponse struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Title     string  `json:"title"`
	SortOrder float64 `json:"sort_order"`
	RuleCount int     `json:"rule_count"`
}

// HandleListNRMSections returns the NRM work section library with
// per-section rule counts.
func HandleListNRMSections(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sections, err := app.FindRecordsByFilter("nrm_sections", "id != ''", "sort_order", 0, 0, nil)
		if err != nil {
			log.Printf("list_nrm_sections: query failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]nrmSectionResponse, 0, len(sections))
		for _, s := range sections {
			rules, err := app.FindRecordsByFilter(
				"nrm_rules",
				"section = {:section}",
				"",
				0,
				0,
				map[string]any{"section": s.Id},
			)
			count := 0
			if err == nil {
				count = len(rules)
			}
			out = append(out, nrmSectionResponse{
				ID:        s.Id,
				Code:      s.GetString("code"),
				Title:     s.GetString("title"),
				SortOrder: s.GetFloat("sort_order"),
				RuleCount: count,
			})
		}
		return e.JSON(http.StatusOK, out)
	}
}

type nrmSectionCreateRequest struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// HandleCreateNRMSection adds a work section to the library.
func HandleCreateNRMSection(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req nrmSectionCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Title) == "" {
			return respondError(e, http.StatusBadRequest, "code and title are required")
		}

		existing, err := app.FindRecordsByFilter(
			"nrm_sections",
			"code = {:code}",
			"",
			1,
			0,
			map[string]any{"code": strings.TrimSpace(req.Code)},
		)
		if err == nil && len(existing) > 0 {
			return respondError(e, http.StatusConflict, "a section with this code already exists")
		}

		col, err := app.FindCollectionByNameOrId("nrm_sections")
		if err != nil {
			log.Printf("create_nrm_section: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("code", strings.TrimSpace(req.Code))
		rec.Set("title", strings.TrimSpace(req.Title))
		rec.Set("sort_order", nextSectionSortOrder(app))

		if err := app.Save(rec); err != nil {
			log.Printf("create_nrm_section: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, nrmSectionResponse{
			ID:        rec.Id,
			Code:      rec.GetString("code"),
			Title:     rec.GetString("title"),
			SortOrder: rec.GetFloat("sort_order"),
		})
	}
}

func nextSectionSortOrder(app *pocketbase.PocketBase) float64 {
	last, err := app.FindRecordsByFilter("nrm_sections", "id != ''", "-sort_order", 1, 0, nil)
	if err != nil || len(last) == 0 {
		return 1
	}
	return last[0].GetFloat("sort_order") + 1
}
