// Package grades implements the Portuguese grade calculation rules used by the
// grade calculator: period and annual grades, CIF, CFD, CFS and the DGES scale.
//
// Every function is pure. Arithmetic runs on decimal.Decimal so rounding
// boundaries (9.5 → 10, 14.99 → 14.9) behave exactly as written on paper.
package grades

import "github.com/shopspring/decimal"

// divisionPrecision is the number of fractional digits kept by every division.
const divisionPrecision int32 = 20

var (
	hundred = decimal.NewFromInt(100)
	ten     = decimal.NewFromInt(10)
	half    = decimal.RequireFromString("0.5")
)

// RoundHalfUp rounds x to an integer, with halves rounded away from zero
// (13.5 → 14, -0.5 → -1).
func RoundHalfUp(x decimal.Decimal) int {
	return int(x.Round(0).IntPart())
}

// TruncateOneDecimal cuts x to one fractional digit toward zero. It never
// rounds up: 14.99 → 14.9.
func TruncateOneDecimal(x decimal.Decimal) decimal.Decimal {
	return x.Truncate(1)
}

func div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, divisionPrecision)
}

// weighted returns value × weight / 100.
func weighted(value, weight decimal.Decimal) decimal.Decimal {
	return div(value.Mul(weight), hundred)
}

func intPtr(v int) *int {
	return &v
}

func decPtr(v decimal.Decimal) *decimal.Decimal {
	return &v
}
