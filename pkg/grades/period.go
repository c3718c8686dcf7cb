package grades

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EvaluationElement is one graded assessment inside a period. A nil RawGrade
// means the element has not been graded yet.
type EvaluationElement struct {
	WeightPercentage decimal.Decimal  `json:"weight_percentage"`
	RawGrade         *decimal.Decimal `json:"raw_grade"`
}

// PeriodGradeResult is the outcome of aggregating a period's elements.
type PeriodGradeResult struct {
	RawCalculated   *decimal.Decimal `json:"raw_calculated"`
	CalculatedGrade *int             `json:"calculated_grade"`
	IsComplete      bool             `json:"is_complete"`
	GradedCount     int              `json:"graded_count"`
	TotalCount      int              `json:"total_count"`
}

// CalculatePeriodGrade sums rawGrade × weight / 100 over the graded elements.
// Ungraded elements are left out of the sum, so a partially graded period
// still yields a grade; IsComplete tells the caller whether it is final.
func CalculatePeriodGrade(elements []EvaluationElement) PeriodGradeResult {
	result := PeriodGradeResult{TotalCount: len(elements)}
	if len(elements) == 0 {
		return result
	}

	raw := decimal.Zero
	for _, element := range elements {
		if element.RawGrade == nil {
			continue
		}
		raw = raw.Add(weighted(*element.RawGrade, element.WeightPercentage))
		result.GradedCount++
	}
	if result.GradedCount == 0 {
		return result
	}

	result.RawCalculated = decPtr(raw)
	result.CalculatedGrade = intPtr(RoundHalfUp(raw))
	result.IsComplete = result.GradedCount == result.TotalCount
	return result
}

// PeriodGrade carries the pauta grade of a period: the grade confirmed by the
// teacher, which may differ from the calculated one.
type PeriodGrade struct {
	PautaGrade *int `json:"pauta_grade"`
}

// AnnualGradeResult is the weighted combination of every period of a year.
type AnnualGradeResult struct {
	RawAnnual   *decimal.Decimal `json:"raw_annual"`
	AnnualGrade *int             `json:"annual_grade"`
	IsComplete  bool             `json:"is_complete"`
}

// CalculateAnnualGrade combines pauta grades with the per-period weights.
// There is no partial annual grade: a missing pauta, an empty list or a
// weight count that differs from the period count yields an empty result.
func CalculateAnnualGrade(periods []PeriodGrade, weights []decimal.Decimal) AnnualGradeResult {
	if len(periods) == 0 || len(periods) != len(weights) {
		return AnnualGradeResult{}
	}

	raw := decimal.Zero
	for i, period := range periods {
		if period.PautaGrade == nil {
			return AnnualGradeResult{}
		}
		raw = raw.Add(weighted(decimal.NewFromInt(int64(*period.PautaGrade)), weights[i]))
	}

	return AnnualGradeResult{
		RawAnnual:   decPtr(raw),
		AnnualGrade: intPtr(RoundHalfUp(raw)),
		IsComplete:  true,
	}
}

// Regimes of the school calendar.
const (
	RegimeTrimestral = "trimestral"
	RegimeSemestral  = "semestral"
)

// GetPeriodLabel formats the display name of period n.
func GetPeriodLabel(periodNumber int, regime string) string {
	if regime == RegimeSemestral {
		return fmt.Sprintf("%dº Semestre", periodNumber)
	}
	return fmt.Sprintf("%dº Período", periodNumber)
}

// PeriodCountForRegime returns how many periods a regime has, or 0 when the
// regime is unknown.
func PeriodCountForRegime(regime string) int {
	switch regime {
	case RegimeSemestral:
		return 2
	case RegimeTrimestral:
		return 3
	default:
		return 0
	}
}

// ValidateWeights reports whether weights add up to exactly 100.
func ValidateWeights(weights []decimal.Decimal) bool {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return sum.Equal(hundred)
}
