package grades

import "github.com/shopspring/decimal"

// CIFResult is the internal multi-year classification of a subject.
type CIFResult struct {
	CIFRaw   decimal.Decimal `json:"cif_raw"`
	CIFGrade int             `json:"cif_grade"`
}

// CalculateCIF averages the annual grades of every year a subject was taken.
// An empty input yields zeros rather than an empty result; callers relying on
// that are pinned by tests.
func CalculateCIF(annualGrades []int) CIFResult {
	if len(annualGrades) == 0 {
		return CIFResult{CIFRaw: decimal.Zero, CIFGrade: 0}
	}
	total := decimal.Zero
	for _, g := range annualGrades {
		total = total.Add(decimal.NewFromInt(int64(g)))
	}
	raw := div(total, decimal.NewFromInt(int64(len(annualGrades))))
	return CIFResult{CIFRaw: raw, CIFGrade: RoundHalfUp(raw)}
}

// CFDResult is the final classification of a subject.
type CFDResult struct {
	CFDRaw   decimal.Decimal `json:"cfd_raw"`
	CFDGrade int             `json:"cfd_grade"`
}

// CalculateCFD blends a Secundário CIF with a national exam score given on the
// 0-200 scale. The exam is converted to 0-20 without rounding before the blend.
// Without an exam score or weight the CFD is the CIF.
func CalculateCFD(cifGrade int, examGradeRaw *int, examWeight *decimal.Decimal) CFDResult {
	cif := decimal.NewFromInt(int64(cifGrade))
	if examGradeRaw == nil || examWeight == nil {
		return CFDResult{CFDRaw: cif, CFDGrade: cifGrade}
	}

	ce := div(decimal.NewFromInt(int64(*examGradeRaw)), ten)
	internalWeight := hundred.Sub(*examWeight)
	raw := div(cif.Mul(internalWeight).Add(ce.Mul(*examWeight)), hundred)
	return CFDResult{CFDRaw: raw, CFDGrade: RoundHalfUp(raw)}
}

// Weights of the Básico 3º ciclo CFD, in percent.
var (
	BasicoInternalWeight = decimal.NewFromInt(70)
	BasicoExamWeight     = decimal.NewFromInt(30)
)

// CalculateBasicoCFD blends a Básico 3º ciclo annual grade with the Prova
// Final level, both on the 1-5 scale, at 70/30.
func CalculateBasicoCFD(annualGrade int, examLevel *int) CFDResult {
	annual := decimal.NewFromInt(int64(annualGrade))
	if examLevel == nil {
		return CFDResult{CFDRaw: annual, CFDGrade: annualGrade}
	}
	level := decimal.NewFromInt(int64(*examLevel))
	raw := div(annual.Mul(BasicoInternalWeight).Add(level.Mul(BasicoExamWeight)), hundred)
	return CFDResult{CFDRaw: raw, CFDGrade: RoundHalfUp(raw)}
}

// ConvertExamGrade converts a 0-200 national exam score to the 0-20 scale.
func ConvertExamGrade(rawScore int) int {
	return RoundHalfUp(div(decimal.NewFromInt(int64(rawScore)), ten))
}

// ConvertPercentageToLevel maps a Prova Final percentage to a 1-5 level.
func ConvertPercentageToLevel(percentage int) int {
	switch {
	case percentage >= 90:
		return 5
	case percentage >= 70:
		return 4
	case percentage >= 50:
		return 3
	case percentage >= 20:
		return 2
	default:
		return 1
	}
}

// Cohort years at which the national rules changed.
const (
	ExamWeightCohortCutoff  = 2023
	WeightedCFSCohortCutoff = 2025
)

var (
	examWeightBiennial  = decimal.NewFromInt(25)
	examWeightTriennial = decimal.NewFromInt(30)
)

// ExamWeightFor returns the Secundário exam weight in percent. Cohorts from
// 2023 weigh every exam at 25%; earlier cohorts use 25% for two-year subjects
// and 30% otherwise.
func ExamWeightFor(cohortYear *int, durationYears int) decimal.Decimal {
	if cohortYear != nil && *cohortYear >= ExamWeightCohortCutoff {
		return examWeightBiennial
	}
	if durationYears == 2 {
		return examWeightBiennial
	}
	return examWeightTriennial
}

// CFSSubject is one subject's contribution to the CFS.
type CFSSubject struct {
	CFDGrade      int  `json:"cfd_grade"`
	DurationYears int  `json:"duration_years"`
	AffectsCFS    bool `json:"affects_cfs"`
}

// CFSResult holds the secondary-school GPA and its DGES equivalent.
type CFSResult struct {
	CFSValue  *decimal.Decimal `json:"cfs_value"`
	DGESValue *int             `json:"dges_value"`
}

// Formula names the CFS averaging rule.
type Formula string

const (
	FormulaWeightedMean Formula = "weighted_mean"
	FormulaSimpleMean   Formula = "simple_mean"
)

// CFSFormula returns the averaging rule that applies to a cohort. Unknown
// cohorts use the simple mean.
func CFSFormula(cohortYear *int) Formula {
	if cohortYear != nil && *cohortYear >= WeightedCFSCohortCutoff {
		return FormulaWeightedMean
	}
	return FormulaSimpleMean
}

// CalculateCFS averages the CFD of every subject that counts towards the CFS.
// The mean is truncated to one decimal and never rounded up; the DGES value is
// that result on the 0-200 scale.
func CalculateCFS(subjects []CFSSubject, cohortYear *int) CFSResult {
	numerator := decimal.Zero
	denominator := decimal.Zero
	weightedMode := CFSFormula(cohortYear) == FormulaWeightedMean

	eligible := 0
	for _, s := range subjects {
		if !s.AffectsCFS {
			continue
		}
		eligible++
		grade := decimal.NewFromInt(int64(s.CFDGrade))
		if weightedMode {
			duration := decimal.NewFromInt(int64(s.DurationYears))
			numerator = numerator.Add(grade.Mul(duration))
			denominator = denominator.Add(duration)
		} else {
			numerator = numerator.Add(grade)
			denominator = denominator.Add(decimal.NewFromInt(1))
		}
	}
	if eligible == 0 || denominator.IsZero() {
		return CFSResult{}
	}

	cfs := TruncateOneDecimal(div(numerator, denominator))
	dges := RoundHalfUp(cfs.Mul(ten))
	return CFSResult{CFSValue: decPtr(cfs), DGESValue: intPtr(dges)}
}
