package grades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Empty input returns zeros instead of an empty result. Changing this changes
// what the CFS dashboard renders for subjects without annual grades.
func TestCalculateCIFEmptyReturnsZero(t *testing.T) {
	result := CalculateCIF(nil)
	assertDecimal(t, "0", result.CIFRaw)
	assert.Equal(t, 0, result.CIFGrade)
}

func TestCalculateCIF(t *testing.T) {
	tests := []struct {
		grades []int
		raw    string
		grade  int
	}{
		{[]int{14}, "14", 14},
		{[]int{14, 15}, "14.5", 15},
		{[]int{13, 14, 14}, "13.66666666666666666667", 14},
		{[]int{12, 12, 13}, "12.33333333333333333333", 12},
	}

	for _, tt := range tests {
		result := CalculateCIF(tt.grades)
		assertDecimal(t, tt.raw, result.CIFRaw)
		assert.Equal(t, tt.grade, result.CIFGrade, tt.grades)
	}
}

func TestCalculateCFDBlendKeepsExamPrecision(t *testing.T) {
	result := CalculateCFD(14, ref(153), decRef("30"))
	assertDecimal(t, "14.39", result.CFDRaw)
	assert.Equal(t, 14, result.CFDGrade)
}

func TestCalculateCFD(t *testing.T) {
	tests := []struct {
		name   string
		cif    int
		exam   *int
		weight string
		raw    string
		grade  int
	}{
		{"no exam", 14, nil, "25", "14", 14},
		{"quarter weight", 13, ref(145), "25", "13.375", 13},
		{"exam lifts to pass", 9, ref(100), "50", "9.5", 10},
		{"exam pulls below pass", 10, ref(70), "30", "9.1", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateCFD(tt.cif, tt.exam, decRef(tt.weight))
			assertDecimal(t, tt.raw, result.CFDRaw)
			assert.Equal(t, tt.grade, result.CFDGrade)
		})
	}
}

func TestCalculateCFDWithoutWeightCollapsesToCIF(t *testing.T) {
	result := CalculateCFD(16, ref(180), nil)
	assertDecimal(t, "16", result.CFDRaw)
	assert.Equal(t, 16, result.CFDGrade)
}

func TestCalculateBasicoCFD(t *testing.T) {
	tests := []struct {
		annual int
		level  *int
		raw    string
		grade  int
	}{
		{3, nil, "3", 3},
		{3, ref(5), "3.6", 4},
		{2, ref(4), "2.6", 3},
		{3, ref(1), "2.4", 2},
		{4, ref(3), "3.7", 4},
	}

	for _, tt := range tests {
		result := CalculateBasicoCFD(tt.annual, tt.level)
		assertDecimal(t, tt.raw, result.CFDRaw)
		assert.Equal(t, tt.grade, result.CFDGrade)
	}
}

func TestConvertExamGrade(t *testing.T) {
	assert.Equal(t, 10, ConvertExamGrade(95))
	assert.Equal(t, 9, ConvertExamGrade(94))
	assert.Equal(t, 15, ConvertExamGrade(145))
	assert.Equal(t, 20, ConvertExamGrade(200))
	assert.Equal(t, 0, ConvertExamGrade(0))
}

func TestConvertPercentageToLevel(t *testing.T) {
	tests := map[int]int{100: 5, 90: 5, 89: 4, 70: 4, 69: 3, 50: 3, 49: 2, 20: 2, 19: 1, 0: 1}
	for percentage, level := range tests {
		assert.Equal(t, level, ConvertPercentageToLevel(percentage), percentage)
	}
}

func TestExamWeightFor(t *testing.T) {
	assertDecimal(t, "25", ExamWeightFor(ref(2024), 3))
	assertDecimal(t, "25", ExamWeightFor(ref(2023), 1))
	assertDecimal(t, "30", ExamWeightFor(ref(2022), 3))
	assertDecimal(t, "25", ExamWeightFor(ref(2022), 2))
	assertDecimal(t, "30", ExamWeightFor(nil, 3))
}

func TestCalculateCFSCohortBranching(t *testing.T) {
	subjects := []CFSSubject{
		{CFDGrade: 16, DurationYears: 3, AffectsCFS: true},
		{CFDGrade: 12, DurationYears: 1, AffectsCFS: true},
	}

	weighted := CalculateCFS(subjects, ref(2026))
	require.NotNil(t, weighted.CFSValue)
	assert.Equal(t, "15.0", weighted.CFSValue.StringFixed(1))
	assert.Equal(t, 150, *weighted.DGESValue)

	legacy := CalculateCFS(subjects, ref(2020))
	require.NotNil(t, legacy.CFSValue)
	assert.Equal(t, "14.0", legacy.CFSValue.StringFixed(1))
	assert.Equal(t, 140, *legacy.DGESValue)

	unknown := CalculateCFS(subjects, nil)
	assert.Equal(t, legacy, unknown)
}

func TestCalculateCFSTruncatesNeverRoundsUp(t *testing.T) {
	simple := CalculateCFS([]CFSSubject{
		{CFDGrade: 15, DurationYears: 3, AffectsCFS: true},
		{CFDGrade: 15, DurationYears: 2, AffectsCFS: true},
		{CFDGrade: 14, DurationYears: 1, AffectsCFS: true},
	}, ref(2024))
	assert.Equal(t, "14.6", simple.CFSValue.StringFixed(1))
	assert.Equal(t, 146, *simple.DGESValue)

	weighted := CalculateCFS([]CFSSubject{
		{CFDGrade: 17, DurationYears: 3, AffectsCFS: true},
		{CFDGrade: 14, DurationYears: 2, AffectsCFS: true},
		{CFDGrade: 12, DurationYears: 1, AffectsCFS: true},
	}, ref(2025))
	assert.Equal(t, "15.1", weighted.CFSValue.StringFixed(1))
	assert.Equal(t, 151, *weighted.DGESValue)
}

func TestCalculateCFSIgnoresSubjectsOutsideCFS(t *testing.T) {
	result := CalculateCFS([]CFSSubject{
		{CFDGrade: 12, DurationYears: 3, AffectsCFS: true},
		{CFDGrade: 20, DurationYears: 1, AffectsCFS: false},
	}, nil)
	assert.Equal(t, "12.0", result.CFSValue.StringFixed(1))
	assert.Equal(t, 120, *result.DGESValue)
}

func TestCalculateCFSWithoutEligibleSubjects(t *testing.T) {
	assert.Equal(t, CFSResult{}, CalculateCFS(nil, ref(2026)))
	assert.Equal(t, CFSResult{}, CalculateCFS([]CFSSubject{{CFDGrade: 18, DurationYears: 2}}, nil))
	assert.Equal(t, CFSResult{}, CalculateCFS([]CFSSubject{{CFDGrade: 18, DurationYears: 0, AffectsCFS: true}}, ref(2025)))
}

func TestCFSFormula(t *testing.T) {
	assert.Equal(t, FormulaWeightedMean, CFSFormula(ref(2025)))
	assert.Equal(t, FormulaSimpleMean, CFSFormula(ref(2024)))
	assert.Equal(t, FormulaSimpleMean, CFSFormula(nil))
}

func TestFinalCalculationsAreIdempotent(t *testing.T) {
	subjects := []CFSSubject{{CFDGrade: 13, DurationYears: 2, AffectsCFS: true}, {CFDGrade: 18, DurationYears: 3, AffectsCFS: true}}
	assert.Equal(t, CalculateCFS(subjects, ref(2026)), CalculateCFS(subjects, ref(2026)))
	assert.Equal(t, CalculateCFD(12, ref(137), decRef("25")), CalculateCFD(12, ref(137), decRef("25")))
	assert.Equal(t, CalculateCIF([]int{11, 12, 14}), CalculateCIF([]int{11, 12, 14}))
}
