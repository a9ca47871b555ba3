package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type bqItemResponse struct {
	ID                string  `json:"id"`
	Project           string  `json:"project"`
	Section           string  `json:"section"`
	NRMRule           string  `json:"nrm_rule"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	Rate              float64 `json:"rate"`
	Amount            float64 `json:"amount"`
	DescriptionCustom string  `json:"description_custom"`
	Notes             string  `json:"notes"`
	SortOrder         float64 `json:"sort_order"`
	DimensionCount    int     `json:"dimension_count"`
}

func bqItemToResponse(app *pocketbase.PocketBase, rec *core.Record) bqItemResponse {
	return bqItemResponse{
		ID:                rec.Id,
		Project:           rec.GetString("project"),
		Section:           rec.GetString("section"),
		NRMRule:           rec.GetString("nrm_rule"),
		Quantity:          rec.GetFloat("quantity"),
		Unit:              rec.GetString("unit"),
		Rate:              rec.GetFloat("rate"),
		Amount:            rec.GetFloat("amount"),
		DescriptionCustom: rec.GetString("description_custom"),
		Notes:             rec.GetString("notes"),
		SortOrder:         rec.GetFloat("sort_order"),
		DimensionCount:    countDimensionRows(app, rec.Id),
	}
}

func countDimensionRows(app *pocketbase.PocketBase, bqItemID string) int {
	rows, err := app.FindRecordsByFilter(
		"dimension_rows",
		"bq_item = {:item}",
		"",
		0,
		0,
		map[string]any{"item": bqItemID},
	)
	if err != nil {
		return 0
	}
	return len(rows)
}

// HandleListBQItems returns a project's BQ items ordered by sort_order,
// optionally narrowed to one section.
func HandleListBQItems(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.URL.Query().Get("projectId")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "projectId is required")
		}

		filter := "project = {:project}"
		params := map[string]any{"project": projectID}
		if sectionID := e.Request.URL.Query().Get("sectionId"); sectionID != "" {
			filter += " && section = {:section}"
			params["section"] = sectionID
		}

		items, err := app.FindRecordsByFilter("bq_items", filter, "sort_order", 0, 0, params)
		if err != nil {
			log.Printf("list_bq_items: query failed for project %s: %v", projectID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]bqItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, bqItemToResponse(app, item))
		}
		return e.JSON(http.StatusOK, out)
	}
}

type bqItemCreateRequest struct {
	Project           string  `json:"project"`
	Section           string  `json:"section"`
	NRMRule           string  `json:"nrm_rule"`
	Unit              string  `json:"unit"`
	Rate              float64 `json:"rate"`
	DescriptionCustom string  `json:"description_custom"`
	Notes             string  `json:"notes"`
}

// HandleCreateBQItem creates a BQ item. The unit is required and the
// sort order is assigned after the project's current last item.
func HandleCreateBQItem(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req bqItemCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.Project == "" {
			return respondError(e, http.StatusBadRequest, "project is required")
		}
		if strings.TrimSpace(req.Unit) == "" {
			return respondError(e, http.StatusBadRequest, "unit is required")
		}

		if _, err := app.FindRecordById("projects", req.Project); err != nil {
			log.Printf("create_bq_item: project not found %s: %v", req.Project, err)
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		col, err := app.FindCollectionByNameOrId("bq_items")
		if err != nil {
			log.Printf("create_bq_item: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("project", req.Project)
		rec.Set("section", req.Section)
		rec.Set("nrm_rule", req.NRMRule)
		rec.Set("unit", strings.TrimSpace(req.Unit))
		rec.Set("rate", req.Rate)
		rec.Set("description_custom", req.DescriptionCustom)
		rec.Set("notes", req.Notes)
		rec.Set("quantity", 0)
		rec.Set("sort_order", nextSortOrder(app, "bq_items", "project", req.Project))

		if err := app.Save(rec); err != nil {
			log.Printf("create_bq_item: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusCreated, bqItemToResponse(app, rec))
	}
}

type bqItemPatchRequest struct {
	Section           *string  `json:"section"`
	NRMRule           *string  `json:"nrm_rule"`
	Quantity          *float64 `json:"quantity"`
	Unit              *string  `json:"unit"`
	Rate              *float64 `json:"rate"`
	DescriptionCustom *string  `json:"description_custom"`
	Notes             *string  `json:"notes"`
	SortOrder         *float64 `json:"sort_order"`
}

// HandlePatchBQItem applies a partial update. The quantity is only
// directly writable while the item has no dimension rows; once rows
// exist they own it.
func HandlePatchBQItem(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		if itemID == "" {
			return respondError(e, http.StatusBadRequest, "Missing item ID")
		}

		rec, err := app.FindRecordById("bq_items", itemID)
		if err != nil {
			log.Printf("patch_bq_item: not found %s: %v", itemID, err)
			return respondError(e, http.StatusNotFound, "BQ item not found")
		}

		var req bqItemPatchRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		if req.Quantity != nil {
			if countDimensionRows(app, rec.Id) > 0 {
				return respondError(e, http.StatusBadRequest, "quantity is derived from dimension rows and cannot be set directly")
			}
			rec.Set("quantity", *req.Quantity)
		}
		if req.Unit != nil {
			if strings.TrimSpace(*req.Unit) == "" {
				return respondError(e, http.StatusBadRequest, "unit cannot be empty")
			}
			rec.Set("unit", strings.TrimSpace(*req.Unit))
		}
		if req.Section != nil {
			rec.Set("section", *req.Section)
		}
		if req.NRMRule != nil {
			rec.Set("nrm_rule", *req.NRMRule)
		}
		if req.Rate != nil {
			rec.Set("rate", *req.Rate)
		}
		if req.DescriptionCustom != nil {
			rec.Set("description_custom", *req.DescriptionCustom)
		}
		if req.Notes != nil {
			rec.Set("notes", *req.Notes)
		}
		if req.SortOrder != nil {
			rec.Set("sort_order", *req.SortOrder)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("patch_bq_item: save failed for %s: %v", itemID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		// Rate or quantity changes move the amount.
		recalcBQItemQuantity(app, rec.Id)

		rec, err = app.FindRecordById("bq_items", itemID)
		if err != nil {
			log.Printf("patch_bq_item: reload failed for %s: %v", itemID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return e.JSON(http.StatusOK, bqItemToResponse(app, rec))
	}
}

// HandleDeleteBQItem deletes a BQ item (cascade removes its dimension
// rows). Deleting an already-missing item succeeds.
func HandleDeleteBQItem(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		if itemID == "" {
			return respondError(e, http.StatusBadRequest, "Missing item ID")
		}

		rec, err := app.FindRecordById("bq_items", itemID)
		if err != nil {
			return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("delete_bq_item: error deleting %s: %v", itemID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}
