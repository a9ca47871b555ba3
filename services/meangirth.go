package services

import (
	"github.com/shopspring/decimal"
)

// CalcMeanGirth derives the centerline length of a wall run from its
// external perimeter, the wall thickness and the number of external
// corners:
//
//	mean girth = perimeter − (corners × thickness)
//
// For a 10×10 box with 0.5 walls the external perimeter is 40 and the
// centerline runs a 9.5×9.5 box, i.e. 38 = 40 − 4×0.5.
//
// Inputs arrive as the raw strings typed into the calculator dialog.
// Any value that does not parse as a number yields ok=false rather than
// an error; the caller simply shows no result.
func CalcMeanGirth(perimeter, thickness, corners string) (decimal.Decimal, bool) {
	p, err := decimal.NewFromString(perimeter)
	if err != nil {
		return decimal.Zero, false
	}
	w, err := decimal.NewFromString(thickness)
	if err != nil {
		return decimal.Zero, false
	}
	c, err := decimal.NewFromString(corners)
	if err != nil {
		return decimal.Zero, false
	}

	return p.Sub(c.Mul(w)), true
}
