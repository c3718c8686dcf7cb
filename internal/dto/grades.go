package dto

import (
	"github.com/shopspring/decimal"

	"github.com/lusia-studio/grades-api/pkg/grades"
)

// PastYearGradeRequest is an enrollment from an earlier year with its optional annual grade.
type PastYearGradeRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	YearLevel    string `json:"year_level" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	AnnualGrade  *int   `json:"annual_grade" validate:"omitempty,min=0,max=20"`
}

// CreateGradeSettingsRequest sets up an academic year with its enrollments.
type CreateGradeSettingsRequest struct {
	AcademicYear            string                 `json:"academic_year" validate:"required"`
	EducationLevel          grades.EducationLevel  `json:"education_level" validate:"required,oneof=basico_1_ciclo basico_2_ciclo basico_3_ciclo secundario"`
	GraduationCohortYear    *int                   `json:"graduation_cohort_year" validate:"omitempty,min=2000,max=2100"`
	Regime                  *string                `json:"regime" validate:"omitempty,oneof=trimestral semestral"`
	PeriodWeights           []decimal.Decimal      `json:"period_weights" validate:"required,min=1"`
	SubjectIDs              []string               `json:"subject_ids" validate:"required,dive,required"`
	YearLevel               string                 `json:"year_level" validate:"required"`
	Course                  *string                `json:"course"`
	ExamCandidateSubjectIDs []string               `json:"exam_candidate_subject_ids"`
	PastYearGrades          []PastYearGradeRequest `json:"past_year_grades" validate:"omitempty,dive"`
}

// PastYearSubjectRequest is one subject of a past-year setup.
type PastYearSubjectRequest struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	AnnualGrade *int   `json:"annual_grade" validate:"omitempty,min=0,max=20"`
}

// PastYearSetupRequest initialises an earlier academic year from the latest settings.
type PastYearSetupRequest struct {
	AcademicYear string                   `json:"academic_year" validate:"required"`
	YearLevel    string                   `json:"year_level" validate:"required"`
	Subjects     []PastYearSubjectRequest `json:"subjects" validate:"required,min=1,dive"`
}

// CreateEnrollmentRequest adds a subject in the middle of a year.
type CreateEnrollmentRequest struct {
	SubjectID       string `json:"subject_id" validate:"required"`
	AcademicYear    string `json:"academic_year" validate:"required"`
	YearLevel       string `json:"year_level" validate:"required"`
	IsExamCandidate bool   `json:"is_exam_candidate"`
}

// UpdateEnrollmentRequest toggles enrollment flags.
type UpdateEnrollmentRequest struct {
	IsActive        *bool `json:"is_active"`
	IsExamCandidate *bool `json:"is_exam_candidate"`
}

// PeriodGradeRequest records the pauta grade directly.
type PeriodGradeRequest struct {
	PautaGrade       *int    `json:"pauta_grade"`
	QualitativeGrade *string `json:"qualitative_grade" validate:"omitempty,max=64"`
}

// PeriodOverrideRequest replaces the calculated grade with a manual pauta.
type PeriodOverrideRequest struct {
	PautaGrade     *int   `json:"pauta_grade" validate:"required"`
	OverrideReason string `json:"override_reason" validate:"required"`
}

// EvaluationElementRequest describes one graded item of a period.
type EvaluationElementRequest struct {
	ElementType      string           `json:"element_type" validate:"required"`
	Label            string           `json:"label" validate:"required"`
	Icon             *string          `json:"icon"`
	WeightPercentage decimal.Decimal  `json:"weight_percentage"`
	RawGrade         *decimal.Decimal `json:"raw_grade"`
}

// ReplaceElementsRequest replaces every element of a period.
type ReplaceElementsRequest struct {
	Elements []EvaluationElementRequest `json:"elements" validate:"dive"`
}

// ElementGradeRequest sets or clears the grade of one element.
type ElementGradeRequest struct {
	RawGrade *decimal.Decimal `json:"raw_grade"`
}

// UpdateAnnualGradeRequest writes a past-year annual grade.
type UpdateAnnualGradeRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	AnnualGrade  *int   `json:"annual_grade" validate:"required,min=0,max=20"`
}

// ExamGradeRequest records a national exam score on the 0-200 scale.
type ExamGradeRequest struct {
	ExamGradeRaw *int `json:"exam_grade_raw" validate:"required,min=0,max=200"`
}

// BasicoExamGradeRequest records a Prova Final percentage.
type BasicoExamGradeRequest struct {
	ExamPercentage *int `json:"exam_percentage" validate:"required,min=0,max=100"`
}

// CFSSnapshotRequest finalises the CFS of an academic year.
type CFSSnapshotRequest struct {
	AcademicYear string `json:"academic_year" validate:"required"`
}

// CopyElementsResult reports how many periods received the copied structure.
type CopyElementsResult struct {
	CopiedPeriods int `json:"copied_periods"`
}
