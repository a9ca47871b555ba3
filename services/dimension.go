// Package services provides the taking-off calculation engine and the
// NRM2 rule hierarchy resolver for the tendering app.
package services

import (
	"github.com/shopspring/decimal"
)

// DimensionInput holds the raw measurement fields of one dimension row.
// Pointers distinguish "not entered" from an explicit zero: a nil
// Timesing defaults to 1, while an explicit 0 disables the row. Nil
// dimensions are neutral factors (1), never zero, so a row with only
// DimA set still measures a length.
type DimensionInput struct {
	Timesing *decimal.Decimal
	DimA     *decimal.Decimal
	DimB     *decimal.Decimal
	DimC     *decimal.Decimal
	Waste    *decimal.Decimal // percentage; negative allowed (lap reduction)
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// CalcDimensionValue computes a row's unsigned quantity contribution:
//
//	timesing × (dimA|1) × (dimB|1) × (dimC|1) × (1 + waste/100)
//
// Full decimal precision is kept; rounding happens only at presentation
// via RoundQuantity.
func CalcDimensionValue(in DimensionInput) decimal.Decimal {
	timesing := one
	if in.Timesing != nil {
		timesing = *in.Timesing
	}

	result := timesing
	for _, dim := range []*decimal.Decimal{in.DimA, in.DimB, in.DimC} {
		if dim != nil {
			result = result.Mul(*dim)
		}
	}

	if in.Waste != nil && !in.Waste.IsZero() {
		result = result.Mul(one.Add(in.Waste.Div(hundred)))
	}

	return result
}

// DimensionRowForTotal is the slice element consumed by AggregateQuantity.
type DimensionRowForTotal struct {
	Value       decimal.Decimal
	IsDeduction bool
}

// AggregateQuantity sums the signed contributions of a BQ item's
// dimension rows, in sheet order. Deduction rows subtract. The result
// may go negative -- an over-deducted sheet signals a measurement error
// the surveyor is expected to catch, so it is never clamped.
func AggregateQuantity(rows []DimensionRowForTotal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if row.IsDeduction {
			total = total.Sub(row.Value)
		} else {
			total = total.Add(row.Value)
		}
	}
	return total
}

// RoundQuantity rounds a full-precision quantity to the 2 decimal
// places used for display and storage echoes.
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(2)
}

// CalcAmount returns quantity × rate. A nil rate means the item is
// unpriced and the amount is undefined (nil). Sign flows through from
// the quantity; a negative amount is a valid credit-or-error signal for
// downstream reporting, not something to clamp here.
func CalcAmount(quantity decimal.Decimal, rate *decimal.Decimal) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	amount := quantity.Mul(*rate)
	return &amount
}
