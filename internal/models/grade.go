package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lusia-studio/grades-api/pkg/grades"
)

// PeriodWeights stores the per-period weights (percentages) of an academic year.
type PeriodWeights []decimal.Decimal

// Value serialises weights as a JSON array of decimal strings.
func (w PeriodWeights) Value() (driver.Value, error) {
	if w == nil {
		w = PeriodWeights{}
	}
	data, err := json.Marshal([]decimal.Decimal(w))
	if err != nil {
		return nil, fmt.Errorf("marshal period weights: %w", err)
	}
	return data, nil
}

// Scan decodes a JSON array of numbers or decimal strings.
func (w *PeriodWeights) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for PeriodWeights", value)
	}
	var weights []decimal.Decimal
	if err := json.Unmarshal(data, &weights); err != nil {
		return fmt.Errorf("unmarshal period weights: %w", err)
	}
	*w = weights
	return nil
}

// GradeSettings is a student's grading configuration for one academic year.
type GradeSettings struct {
	ID                   string                `db:"id" json:"id"`
	StudentID            string                `db:"student_id" json:"student_id"`
	AcademicYear         string                `db:"academic_year" json:"academic_year"`
	EducationLevel       grades.EducationLevel `db:"education_level" json:"education_level"`
	GraduationCohortYear *int                  `db:"graduation_cohort_year" json:"graduation_cohort_year,omitempty"`
	Regime               *string               `db:"regime" json:"regime,omitempty"`
	Course               *string               `db:"course" json:"course,omitempty"`
	PeriodWeights        PeriodWeights         `db:"period_weights" json:"period_weights"`
	IsLocked             bool                  `db:"is_locked" json:"is_locked"`
	CreatedAt            time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `db:"updated_at" json:"updated_at"`
}

// SubjectEnrollment links a student to a subject for an academic year.
type SubjectEnrollment struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	AcademicYear    string    `db:"academic_year" json:"academic_year"`
	YearLevel       string    `db:"year_level" json:"year_level"`
	SettingsID      string    `db:"settings_id" json:"settings_id"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	IsExamCandidate bool      `db:"is_exam_candidate" json:"is_exam_candidate"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	SubjectName     *string `db:"subject_name" json:"subject_name,omitempty"`
	SubjectSlug     *string `db:"subject_slug" json:"subject_slug,omitempty"`
	SubjectColor    *string `db:"subject_color" json:"subject_color,omitempty"`
	SubjectIcon     *string `db:"subject_icon" json:"subject_icon,omitempty"`
	AffectsCFS      *bool   `db:"affects_cfs" json:"affects_cfs,omitempty"`
	HasNationalExam *bool   `db:"has_national_exam" json:"has_national_exam,omitempty"`
}

// CountsForCFS reports whether the subject enters the CFS average. Subjects
// default to counting when the flag is unknown.
func (e SubjectEnrollment) CountsForCFS() bool {
	return e.AffectsCFS == nil || *e.AffectsCFS
}

// SubjectPeriod holds the grades of one period of an enrollment.
type SubjectPeriod struct {
	ID               string               `db:"id" json:"id"`
	EnrollmentID     string               `db:"enrollment_id" json:"enrollment_id"`
	PeriodNumber     int                  `db:"period_number" json:"period_number"`
	RawCalculated    *decimal.Decimal     `db:"raw_calculated" json:"raw_calculated,omitempty"`
	CalculatedGrade  *int                 `db:"calculated_grade" json:"calculated_grade,omitempty"`
	PautaGrade       *int                 `db:"pauta_grade" json:"pauta_grade,omitempty"`
	IsOverridden     bool                 `db:"is_overridden" json:"is_overridden"`
	OverrideReason   *string              `db:"override_reason" json:"override_reason,omitempty"`
	QualitativeGrade *string              `db:"qualitative_grade" json:"qualitative_grade,omitempty"`
	IsLocked         bool                 `db:"is_locked" json:"is_locked"`
	Label            string               `db:"-" json:"label,omitempty"`
	NeedsReview      bool                 `db:"-" json:"needs_review"`
	Elements         []EvaluationElement  `db:"-" json:"elements,omitempty"`
	StudentID        string               `db:"student_id" json:"-"`
	Progress         *PeriodGradeProgress `db:"-" json:"progress,omitempty"`
}

// PeriodGradeProgress reports how many elements of a period are graded.
type PeriodGradeProgress struct {
	GradedCount int  `json:"graded_count"`
	TotalCount  int  `json:"total_count"`
	IsComplete  bool `json:"is_complete"`
}

// EvaluationElement is a test, project or other graded item inside a period.
type EvaluationElement struct {
	ID               string           `db:"id" json:"id"`
	PeriodID         string           `db:"period_id" json:"period_id"`
	ElementType      string           `db:"element_type" json:"element_type"`
	Label            string           `db:"label" json:"label"`
	Icon             *string          `db:"icon" json:"icon,omitempty"`
	WeightPercentage decimal.Decimal  `db:"weight_percentage" json:"weight_percentage"`
	RawGrade         *decimal.Decimal `db:"raw_grade" json:"raw_grade,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	StudentID        string           `db:"student_id" json:"-"`
}

// AnnualGrade is the annual classification of an enrollment.
type AnnualGrade struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	RawAnnual    *decimal.Decimal `db:"raw_annual" json:"raw_annual,omitempty"`
	AnnualGrade  int              `db:"annual_grade" json:"annual_grade"`
	IsLocked     bool             `db:"is_locked" json:"is_locked"`
	SubjectID    *string          `db:"subject_id" json:"subject_id,omitempty"`
	SubjectName  *string          `db:"subject_name" json:"subject_name,omitempty"`
}

// SubjectCFD is the final classification of a subject across all years.
type SubjectCFD struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	SubjectID    string           `db:"subject_id" json:"subject_id"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	CIFRaw       *decimal.Decimal `db:"cif_raw" json:"cif_raw,omitempty"`
	CIFGrade     int              `db:"cif_grade" json:"cif_grade"`
	ExamGrade    *int             `db:"exam_grade" json:"exam_grade,omitempty"`
	ExamGradeRaw *int             `db:"exam_grade_raw" json:"exam_grade_raw,omitempty"`
	ExamWeight   *decimal.Decimal `db:"exam_weight" json:"exam_weight,omitempty"`
	CFDRaw       *decimal.Decimal `db:"cfd_raw" json:"cfd_raw,omitempty"`
	CFDGrade     int              `db:"cfd_grade" json:"cfd_grade"`
	IsFinalized  bool             `db:"is_finalized" json:"is_finalized"`

	SubjectName     *string           `db:"-" json:"subject_name,omitempty"`
	SubjectSlug     *string           `db:"-" json:"subject_slug,omitempty"`
	AffectsCFS      bool              `db:"-" json:"affects_cfs"`
	HasNationalExam bool              `db:"-" json:"has_national_exam"`
	IsExamCandidate bool              `db:"-" json:"is_exam_candidate"`
	DurationYears   int               `db:"-" json:"duration_years"`
	AnnualGrades    []YearAnnualGrade `db:"-" json:"annual_grades,omitempty"`
}

// YearAnnualGrade is one year's contribution to a CIF.
type YearAnnualGrade struct {
	YearLevel    string `json:"year_level"`
	AcademicYear string `json:"academic_year"`
	AnnualGrade  int    `json:"annual_grade"`
}

// CFDSnapshotSubject is a frozen CFD inside a CFS snapshot.
type CFDSnapshotSubject struct {
	SubjectID     string  `json:"subject_id"`
	Name          *string `json:"name,omitempty"`
	CFDGrade      int     `json:"cfd_grade"`
	DurationYears int     `json:"duration_years"`
	Weight        int     `json:"weight"`
	HasExam       bool    `json:"has_exam"`
	ExamGrade     *int    `json:"exam_grade,omitempty"`
	AffectsCFS    bool    `json:"affects_cfs"`
}

// CFDSnapshot is the JSON document frozen with a CFS snapshot.
type CFDSnapshot struct {
	Subjects []CFDSnapshotSubject `json:"subjects"`
	Formula  grades.Formula       `json:"formula"`
	Cohort   int                  `json:"cohort"`
}

// Value serialises the snapshot as JSON.
func (s CFDSnapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal cfd snapshot: %w", err)
	}
	return data, nil
}

// Scan decodes a JSON snapshot document.
func (s *CFDSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = CFDSnapshot{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for CFDSnapshot", value)
	}
	if len(data) == 0 {
		*s = CFDSnapshot{}
		return nil
	}
	return json.Unmarshal(data, s)
}

// CFSSnapshot freezes the CFS of a student at a point in time.
type CFSSnapshot struct {
	ID                   string          `db:"id" json:"id"`
	StudentID            string          `db:"student_id" json:"student_id"`
	AcademicYear         string          `db:"academic_year" json:"academic_year"`
	GraduationCohortYear int             `db:"graduation_cohort_year" json:"graduation_cohort_year"`
	CFSValue             decimal.Decimal `db:"cfs_value" json:"cfs_value"`
	DGESValue            *int            `db:"dges_value" json:"dges_value,omitempty"`
	FormulaUsed          grades.Formula  `db:"formula_used" json:"formula_used"`
	RuleVersion          string          `db:"rule_version" json:"rule_version"`
	CFDSnapshot          CFDSnapshot     `db:"cfd_snapshot" json:"cfd_snapshot"`
	IsFinalized          bool            `db:"is_finalized" json:"is_finalized"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}

// BoardSubject is a subject column on the grade board.
type BoardSubject struct {
	Enrollment  SubjectEnrollment `json:"enrollment"`
	Periods     []SubjectPeriod   `json:"periods"`
	AnnualGrade *AnnualGrade      `json:"annual_grade,omitempty"`
}

// GradeBoard is the full grade board of an academic year.
type GradeBoard struct {
	Settings *GradeSettings     `json:"settings,omitempty"`
	Scale    *grades.GradeScale `json:"scale,omitempty"`
	Subjects []BoardSubject     `json:"subjects"`
}

// CFSDashboard summarises every CFD of a student and the resulting CFS.
type CFSDashboard struct {
	Settings     *GradeSettings   `json:"settings,omitempty"`
	CFDs         []SubjectCFD     `json:"cfds"`
	Snapshot     *CFSSnapshot     `json:"snapshot,omitempty"`
	ComputedCFS  *decimal.Decimal `json:"computed_cfs,omitempty"`
	ComputedDGES *int             `json:"computed_dges,omitempty"`
}
