package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"takeoff/services"
)

// dimensionResponse is the JSON shape for a single dimension row. The
// server-computed calculated_value is authoritative; clients must not
// substitute their own arithmetic.
type dimensionResponse struct {
	ID              string  `json:"id"`
	BQItem          string  `json:"bq_item"`
	Description     string  `json:"description"`
	Timesing        float64 `json:"timesing"`
	DimA            float64 `json:"dim_a"`
	DimB            float64 `json:"dim_b"`
	DimC            float64 `json:"dim_c"`
	Waste           float64 `json:"waste"`
	IsDeduction     bool    `json:"is_deduction"`
	CalculatedValue float64 `json:"calculated_value"`
	SortOrder       float64 `json:"sort_order"`
}

func dimensionToResponse(rec *core.Record) dimensionResponse {
	return dimensionResponse{
		ID:              rec.Id,
		BQItem:          rec.GetString("bq_item"),
		Description:     rec.GetString("description"),
		Timesing:        rec.GetFloat("timesing"),
		DimA:            rec.GetFloat("dim_a"),
		DimB:            rec.GetFloat("dim_b"),
		DimC:            rec.GetFloat("dim_c"),
		Waste:           rec.GetFloat("waste"),
		IsDeduction:     rec.GetBool("is_deduction"),
		CalculatedValue: rec.GetFloat("calculated_value"),
		SortOrder:       rec.GetFloat("sort_order"),
	}
}

// HandleListDimensions returns the dimension rows of a BQ item ordered
// by sort_order.
func HandleListDimensions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		bqItemID := e.Request.URL.Query().Get("bqItemId")
		if bqItemID == "" {
			return respondError(e, http.StatusBadRequest, "bqItemId is required")
		}

		rows, err := app.FindRecordsByFilter(
			"dimension_rows",
			"bq_item = {:item}",
			"sort_order",
			0,
			0,
			map[string]any{"item": bqItemID},
		)
		if err != nil {
			log.Printf("list_dimensions: query failed for item %s: %v", bqItemID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		out := make([]dimensionResponse, 0, len(rows))
		for _, r := range rows {
			out = append(out, dimensionToResponse(r))
		}
		return e.JSON(http.StatusOK, out)
	}
}

type dimensionCreateRequest struct {
	BQItem      string   `json:"bq_item"`
	Description string   `json:"description"`
	Timesing    *float64 `json:"timesing"`
	DimA        *float64 `json:"dim_a"`
	DimB        *float64 `json:"dim_b"`
	DimC        *float64 `json:"dim_c"`
	Waste       *float64 `json:"waste"`
	IsDeduction bool     `json:"is_deduction"`
	SortOrder   *float64 `json:"sort_order"`
}

// HandleCreateDimension creates a dimension row with defaults
// (timesing 1, waste 0), computes its value and rolls the owning BQ
// item's quantity and amount up.
func HandleCreateDimension(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req dimensionCreateRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}
		if req.BQItem == "" {
			return respondError(e, http.StatusBadRequest, "bq_item is required")
		}

		item, err := app.FindRecordById("bq_items", req.BQItem)
		if err != nil {
			log.Printf("create_dimension: bq item not found %s: %v", req.BQItem, err)
			return respondError(e, http.StatusNotFound, "BQ item not found")
		}

		col, err := app.FindCollectionByNameOrId("dimension_rows")
		if err != nil {
			log.Printf("create_dimension: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(col)
		rec.Set("bq_item", item.Id)
		rec.Set("description", req.Description)
		rec.Set("is_deduction", req.IsDeduction)

		// New rows default to timesing 1 / waste 0; thereafter the stored
		// values are always explicit, so 0 means a deliberately disabled row.
		timesing := 1.0
		if req.Timesing != nil {
			timesing = *req.Timesing
		}
		rec.Set("timesing", timesing)

		waste := 0.0
		if req.Waste != nil {
			waste = *req.Waste
		}
		rec.Set("waste", waste)

		for field, v := range map[string]*float64{"dim_a": req.DimA, "dim_b": req.DimB, "dim_c": req.DimC} {
			if v != nil {
				rec.Set(field, *v)
			}
		}

		// An explicit sort_order lets the client insert mid-list; without
		// one the row goes to the end.
		if req.SortOrder != nil {
			rec.Set("sort_order", *req.SortOrder)
		} else {
			rec.Set("sort_order", nextSortOrder(app, "dimension_rows", "bq_item", item.Id))
		}
		rec.Set("calculated_value", computeRowValue(rec))

		if err := app.Save(rec); err != nil {
			log.Printf("create_dimension: save failed: %v", err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		recalcBQItemQuantity(app, item.Id)

		return e.JSON(http.StatusCreated, dimensionToResponse(rec))
	}
}

type dimensionPatchRequest struct {
	Description *string  `json:"description"`
	Timesing    *float64 `json:"timesing"`
	DimA        *float64 `json:"dim_a"`
	DimB        *float64 `json:"dim_b"`
	DimC        *float64 `json:"dim_c"`
	Waste       *float64 `json:"waste"`
	IsDeduction *bool    `json:"is_deduction"`
	SortOrder   *float64 `json:"sort_order"`
}

// HandlePatchDimension applies a partial field update (last write per
// field wins), recomputes the row value and the owning BQ item.
func HandlePatchDimension(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rowID := e.Request.PathValue("id")
		if rowID == "" {
			return respondError(e, http.StatusBadRequest, "Missing row ID")
		}

		rec, err := app.FindRecordById("dimension_rows", rowID)
		if err != nil {
			log.Printf("patch_dimension: not found %s: %v", rowID, err)
			return respondError(e, http.StatusNotFound, "Dimension row not found")
		}

		var req dimensionPatchRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, http.StatusBadRequest, "Invalid request body")
		}

		if req.Description != nil {
			rec.Set("description", *req.Description)
		}
		if req.Timesing != nil {
			rec.Set("timesing", *req.Timesing)
		}
		if req.DimA != nil {
			rec.Set("dim_a", *req.DimA)
		}
		if req.DimB != nil {
			rec.Set("dim_b", *req.DimB)
		}
		if req.DimC != nil {
			rec.Set("dim_c", *req.DimC)
		}
		if req.Waste != nil {
			rec.Set("waste", *req.Waste)
		}
		if req.IsDeduction != nil {
			rec.Set("is_deduction", *req.IsDeduction)
		}
		if req.SortOrder != nil {
			rec.Set("sort_order", *req.SortOrder)
		}

		rec.Set("calculated_value", computeRowValue(rec))

		if err := app.Save(rec); err != nil {
			log.Printf("patch_dimension: save failed for %s: %v", rowID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		recalcBQItemQuantity(app, rec.GetString("bq_item"))

		return e.JSON(http.StatusOK, dimensionToResponse(rec))
	}
}

// HandleDeleteDimension deletes a dimension row and recomputes the
// owner. Deleting an already-missing row succeeds.
func HandleDeleteDimension(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rowID := e.Request.PathValue("id")
		if rowID == "" {
			return respondError(e, http.StatusBadRequest, "Missing row ID")
		}

		rec, err := app.FindRecordById("dimension_rows", rowID)
		if err != nil {
			// Idempotent: the row is gone either way.
			return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
		}
		bqItemID := rec.GetString("bq_item")

		if err := app.Delete(rec); err != nil {
			log.Printf("delete_dimension: error deleting %s: %v", rowID, err)
			return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		recalcBQItemQuantity(app, bqItemID)

		return e.JSON(http.StatusOK, map[string]bool{"deleted": true})
	}
}

// computeRowValue derives the measured value of a dimension row from
// its stored fields. Stored zeros mean "not set" for the dimensions
// and waste; timesing is always stored explicitly, so zero there is a
// genuine multiplier of zero.
func computeRowValue(rec *core.Record) float64 {
	in := services.DimensionInput{}

	t := decimal.NewFromFloat(rec.GetFloat("timesing"))
	in.Timesing = &t

	if v := rec.GetFloat("dim_a"); v != 0 {
		d := decimal.NewFromFloat(v)
		in.DimA = &d
	}
	if v := rec.GetFloat("dim_b"); v != 0 {
		d := decimal.NewFromFloat(v)
		in.DimB = &d
	}
	if v := rec.GetFloat("dim_c"); v != 0 {
		d := decimal.NewFromFloat(v)
		in.DimC = &d
	}
	if v := rec.GetFloat("waste"); v != 0 {
		d := decimal.NewFromFloat(v)
		in.Waste = &d
	}

	val, _ := services.CalcDimensionValue(in).Float64()
	return val
}

// recalcBQItemQuantity recomputes a BQ item's quantity from its
// dimension rows (deductions signed, never clamped) and refreshes the
// amount when the item is priced. An item whose rows were all removed
// keeps its last quantity.
func recalcBQItemQuantity(app *pocketbase.PocketBase, bqItemID string) {
	if bqItemID == "" {
		return
	}

	item, err := app.FindRecordById("bq_items", bqItemID)
	if err != nil {
		log.Printf("recalc_bq_item: item not found %s: %v", bqItemID, err)
		return
	}

	rows, err := app.FindRecordsByFilter(
		"dimension_rows",
		"bq_item = {:item}",
		"sort_order",
		0,
		0,
		map[string]any{"item": bqItemID},
	)
	if err != nil {
		log.Printf("recalc_bq_item: query failed for %s: %v", bqItemID, err)
		return
	}

	if len(rows) > 0 {
		totals := make([]services.DimensionRowForTotal, 0, len(rows))
		for _, r := range rows {
			totals = append(totals, services.DimensionRowForTotal{
				Value:       decimal.NewFromFloat(r.GetFloat("calculated_value")),
				IsDeduction: r.GetBool("is_deduction"),
			})
		}
		quantity := services.RoundQuantity(services.AggregateQuantity(totals))
		qf, _ := quantity.Float64()
		item.Set("quantity", qf)
	}

	quantity := decimal.NewFromFloat(item.GetFloat("quantity"))
	if rate := item.GetFloat("rate"); rate != 0 {
		r := decimal.NewFromFloat(rate)
		if amount := services.CalcAmount(quantity, &r); amount != nil {
			af, _ := amount.Float64()
			item.Set("amount", af)
		}
	} else {
		item.Set("amount", 0)
	}

	if err := app.Save(item); err != nil {
		log.Printf("recalc_bq_item: save failed for %s: %v", bqItemID, err)
	}
}

// nextSortOrder returns max(sort_order)+1 among the sibling records
// sharing the given relation value.
func nextSortOrder(app *pocketbase.PocketBase, collection, relField, relID string) float64 {
	siblings, err := app.FindRecordsByFilter(
		collection,
		relField+" = {:rel}",
		"-sort_order",
		1,
		0,
		map[string]any{"rel": relID},
	)
	if err != nil || len(siblings) == 0 {
		return 1
	}
	return siblings[0].GetFloat("sort_order") + 1
}
