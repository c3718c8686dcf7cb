package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lusia-studio/grades-api/internal/dto"
	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
	"github.com/lusia-studio/grades-api/pkg/grades"
)

type gradeSettingsStore interface {
	FindByYear(ctx context.Context, studentID, academicYear string) (*models.GradeSettings, error)
	FindByID(ctx context.Context, id string) (*models.GradeSettings, error)
	Latest(ctx context.Context, studentID string) (*models.GradeSettings, error)
	Create(ctx context.Context, settings *models.GradeSettings) error
	Lock(ctx context.Context, id, studentID string) (*models.GradeSettings, error)
}

type enrollmentStore interface {
	ListByYear(ctx context.Context, studentID, academicYear string) ([]models.SubjectEnrollment, error)
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.SubjectEnrollment, error)
	FindByID(ctx context.Context, id string) (*models.SubjectEnrollment, error)
	FindBySubjectYear(ctx context.Context, studentID, subjectID, academicYear string) (*models.SubjectEnrollment, error)
	CreateWithPeriods(ctx context.Context, enrollment *models.SubjectEnrollment, periodCount int) error
	UpdateFlags(ctx context.Context, id, studentID string, isActive, isExamCandidate *bool) error
}

type periodStore interface {
	FindByID(ctx context.Context, id string) (*models.SubjectPeriod, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.SubjectPeriod, error)
	ListByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string][]models.SubjectPeriod, error)
	Update(ctx context.Context, period *models.SubjectPeriod) error
}

type elementStore interface {
	FindByID(ctx context.Context, id string) (*models.EvaluationElement, error)
	ListByPeriod(ctx context.Context, periodID string) ([]models.EvaluationElement, error)
	ListByPeriods(ctx context.Context, periodIDs []string) (map[string][]models.EvaluationElement, error)
	Replace(ctx context.Context, periodID string, elements []models.EvaluationElement) error
	UpdateGrade(ctx context.Context, id string, rawGrade *decimal.Decimal) error
}

type annualGradeStore interface {
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.AnnualGrade, error)
	ListByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string]models.AnnualGrade, error)
	Upsert(ctx context.Context, grade *models.AnnualGrade) error
	DeleteByEnrollment(ctx context.Context, enrollmentID string) error
}

// GradeStores groups the persistence dependencies of GradeService.
type GradeStores struct {
	Settings    gradeSettingsStore
	Enrollments enrollmentStore
	Periods     periodStore
	Elements    elementStore
	Annual      annualGradeStore
}

// GradeService manages the grades a student enters during an academic year
// and keeps every derived grade in step with them: element grades feed the
// period grade, and complete pautas feed the annual grade.
type GradeService struct {
	settings    gradeSettingsStore
	enrollments enrollmentStore
	periods     periodStore
	elements    elementStore
	annual      annualGradeStore
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(stores GradeStores, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		settings:    stores.Settings,
		enrollments: stores.Enrollments,
		periods:     stores.Periods,
		elements:    stores.Elements,
		annual:      stores.Annual,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// GetSettings returns the settings of an academic year.
func (s *GradeService) GetSettings(ctx context.Context, studentID, academicYear string) (*models.GradeSettings, error) {
	settings, err := s.settings.FindByYear(ctx, studentID, academicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade settings not found")
		}
		return nil, appErrors.Internal(err, "failed to load grade settings")
	}
	return settings, nil
}

// CreateSettings sets up an academic year: the settings row, one enrollment
// with empty periods per subject, and any past-year grades supplied with it.
func (s *GradeService) CreateSettings(ctx context.Context, studentID string, req dto.CreateGradeSettingsRequest) (*models.GradeSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade settings payload")
	}
	if !grades.ValidateWeights(req.PeriodWeights) {
		return nil, appErrors.Clonef(appErrors.ErrInvalidWeights, "period weights must sum to 100, got %s", sumWeights(req.PeriodWeights))
	}
	periodCount := len(req.PeriodWeights)
	if req.Regime != nil {
		if expected := grades.PeriodCountForRegime(*req.Regime); expected != 0 && expected != periodCount {
			return nil, appErrors.Clonef(appErrors.ErrValidation, "%s regime requires %d weights", *req.Regime, expected)
		}
	}

	_, err := s.settings.FindByYear(ctx, studentID, req.AcademicYear)
	switch {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "settings already exist for this year")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to check grade settings")
	}

	settings := &models.GradeSettings{
		StudentID:            studentID,
		AcademicYear:         req.AcademicYear,
		EducationLevel:       req.EducationLevel,
		GraduationCohortYear: req.GraduationCohortYear,
		Regime:               req.Regime,
		Course:               req.Course,
		PeriodWeights:        models.PeriodWeights(req.PeriodWeights),
	}
	if err := s.settings.Create(ctx, settings); err != nil {
		return nil, appErrors.Internal(err, "failed to create grade settings")
	}

	examCandidates := make(map[string]struct{}, len(req.ExamCandidateSubjectIDs))
	for _, id := range req.ExamCandidateSubjectIDs {
		examCandidates[id] = struct{}{}
	}
	for _, subjectID := range req.SubjectIDs {
		_, candidate := examCandidates[subjectID]
		enrollment := &models.SubjectEnrollment{
			StudentID:       studentID,
			SubjectID:       subjectID,
			AcademicYear:    req.AcademicYear,
			YearLevel:       req.YearLevel,
			SettingsID:      settings.ID,
			IsActive:        true,
			IsExamCandidate: candidate,
		}
		if err := s.enrollments.CreateWithPeriods(ctx, enrollment, periodCount); err != nil {
			return nil, appErrors.Internal(err, "failed to create enrollment")
		}
	}

	if len(req.PastYearGrades) > 0 {
		if err := s.importPastYearGrades(ctx, settings, req.PastYearGrades); err != nil {
			return nil, err
		}
	}

	s.logger.Info("grade settings created",
		zap.String("student_id", studentID),
		zap.String("academic_year", req.AcademicYear),
		zap.Int("subjects", len(req.SubjectIDs)),
		zap.Int("past_year_grades", len(req.PastYearGrades)),
	)
	s.invalidate(ctx, studentID)
	return settings, nil
}

// importPastYearGrades creates locked settings, enrollments and locked annual
// grades for earlier years, mirroring the configuration of current.
func (s *GradeService) importPastYearGrades(ctx context.Context, current *models.GradeSettings, items []dto.PastYearGradeRequest) error {
	years := make([]string, 0)
	byYear := make(map[string][]dto.PastYearGradeRequest)
	for _, item := range items {
		if _, seen := byYear[item.AcademicYear]; !seen {
			years = append(years, item.AcademicYear)
		}
		byYear[item.AcademicYear] = append(byYear[item.AcademicYear], item)
	}

	for _, year := range years {
		past, err := s.pastYearSettings(ctx, current, year)
		if err != nil {
			return err
		}
		for _, item := range byYear[year] {
			if err := s.importPastSubject(ctx, past, item.SubjectID, item.YearLevel, item.AnnualGrade); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupPastYear initialises an earlier academic year from the student's most
// recent settings and returns its board.
func (s *GradeService) SetupPastYear(ctx context.Context, studentID string, req dto.PastYearSetupRequest) (*models.GradeBoard, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid past year payload")
	}
	template, err := s.settings.Latest(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "no grade settings found, complete setup first")
		}
		return nil, appErrors.Internal(err, "failed to load grade settings")
	}

	past, err := s.pastYearSettings(ctx, template, req.AcademicYear)
	if err != nil {
		return nil, err
	}
	for _, subject := range req.Subjects {
		if err := s.importPastSubject(ctx, past, subject.SubjectID, req.YearLevel, subject.AnnualGrade); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, studentID)
	return s.Board(ctx, studentID, req.AcademicYear)
}

func (s *GradeService) pastYearSettings(ctx context.Context, template *models.GradeSettings, year string) (*models.GradeSettings, error) {
	existing, err := s.settings.FindByYear(ctx, template.StudentID, year)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load past year settings")
	}
	past := &models.GradeSettings{
		StudentID:            template.StudentID,
		AcademicYear:         year,
		EducationLevel:       template.EducationLevel,
		GraduationCohortYear: template.GraduationCohortYear,
		Regime:               template.Regime,
		Course:               template.Course,
		PeriodWeights:        template.PeriodWeights,
		IsLocked:             true,
	}
	if err := s.settings.Create(ctx, past); err != nil {
		return nil, appErrors.Internal(err, "failed to create past year settings")
	}
	return past, nil
}

func (s *GradeService) importPastSubject(ctx context.Context, past *models.GradeSettings, subjectID, yearLevel string, annualGrade *int) error {
	enrollment, err := s.enrollments.FindBySubjectYear(ctx, past.StudentID, subjectID, past.AcademicYear)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to load past year enrollment")
		}
		enrollment = &models.SubjectEnrollment{
			StudentID:    past.StudentID,
			SubjectID:    subjectID,
			AcademicYear: past.AcademicYear,
			YearLevel:    yearLevel,
			SettingsID:   past.ID,
			IsActive:     true,
		}
		if err := s.enrollments.CreateWithPeriods(ctx, enrollment, len(past.PeriodWeights)); err != nil {
			return appErrors.Internal(err, "failed to create past year enrollment")
		}
	}
	if annualGrade == nil {
		return nil
	}
	raw := decimal.NewFromInt(int64(*annualGrade))
	grade := &models.AnnualGrade{
		EnrollmentID: enrollment.ID,
		RawAnnual:    &raw,
		AnnualGrade:  *annualGrade,
		IsLocked:     true,
	}
	if err := s.annual.Upsert(ctx, grade); err != nil {
		return appErrors.Internal(err, "failed to store past year annual grade")
	}
	return nil
}

// LockSettings prevents further changes to an academic year's settings.
func (s *GradeService) LockSettings(ctx context.Context, studentID, settingsID string) (*models.GradeSettings, error) {
	settings, err := s.settings.Lock(ctx, settingsID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade settings not found")
		}
		return nil, appErrors.Internal(err, "failed to lock grade settings")
	}
	s.invalidate(ctx, studentID)
	return settings, nil
}

// ListEnrollments returns the enrollments of an academic year with subject details.
func (s *GradeService) ListEnrollments(ctx context.Context, studentID, academicYear string) ([]models.SubjectEnrollment, error) {
	enrollments, err := s.enrollments.ListByYear(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// CreateEnrollment adds one subject to an academic year that already has settings.
func (s *GradeService) CreateEnrollment(ctx context.Context, studentID string, req dto.CreateEnrollmentRequest) (*models.SubjectEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	settings, err := s.settings.FindByYear(ctx, studentID, req.AcademicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "academic year has no grade settings")
		}
		return nil, appErrors.Internal(err, "failed to load grade settings")
	}
	enrollment := &models.SubjectEnrollment{
		StudentID:       studentID,
		SubjectID:       req.SubjectID,
		AcademicYear:    req.AcademicYear,
		YearLevel:       req.YearLevel,
		SettingsID:      settings.ID,
		IsActive:        true,
		IsExamCandidate: req.IsExamCandidate,
	}
	if err := s.enrollments.CreateWithPeriods(ctx, enrollment, len(settings.PeriodWeights)); err != nil {
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}
	s.invalidate(ctx, studentID)
	return enrollment, nil
}

// UpdateEnrollment toggles the active and exam candidate flags.
func (s *GradeService) UpdateEnrollment(ctx context.Context, studentID, enrollmentID string, req dto.UpdateEnrollmentRequest) (*models.SubjectEnrollment, error) {
	if req.IsActive == nil && req.IsExamCandidate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}
	if err := s.enrollments.UpdateFlags(ctx, enrollmentID, studentID, req.IsActive, req.IsExamCandidate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to update enrollment")
	}
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	s.invalidate(ctx, studentID)
	return enrollment, nil
}

// UpdatePeriodGrade records a pauta grade typed in directly. Any previous
// override is cleared.
func (s *GradeService) UpdatePeriodGrade(ctx context.Context, studentID, periodID string, req dto.PeriodGradeRequest) (*models.SubjectPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period grade payload")
	}
	period, err := s.writablePeriod(ctx, studentID, periodID)
	if err != nil {
		return nil, err
	}
	enrollment, settings, err := s.periodScope(ctx, period)
	if err != nil {
		return nil, err
	}
	if req.PautaGrade != nil {
		if err := checkScale(*req.PautaGrade, settings.EducationLevel); err != nil {
			return nil, err
		}
		period.PautaGrade = req.PautaGrade
		period.CalculatedGrade = req.PautaGrade
	}
	if req.QualitativeGrade != nil {
		period.QualitativeGrade = req.QualitativeGrade
	}
	period.IsOverridden = false
	period.OverrideReason = nil

	if err := s.periods.Update(ctx, period); err != nil {
		return nil, appErrors.Internal(err, "failed to update period")
	}
	if err := s.recalculateAnnual(ctx, enrollment, settings); err != nil {
		return nil, err
	}
	s.invalidate(ctx, studentID)
	period.Label = grades.GetPeriodLabel(period.PeriodNumber, regimeOf(settings))
	return period, nil
}

// OverridePeriodGrade replaces the pauta with a manual grade. Later element
// changes keep updating the calculated grade but leave the pauta alone.
func (s *GradeService) OverridePeriodGrade(ctx context.Context, studentID, periodID string, req dto.PeriodOverrideRequest) (*models.SubjectPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "override requires a pauta grade and a reason")
	}
	period, err := s.writablePeriod(ctx, studentID, periodID)
	if err != nil {
		return nil, err
	}
	enrollment, settings, err := s.periodScope(ctx, period)
	if err != nil {
		return nil, err
	}
	if err := checkScale(*req.PautaGrade, settings.EducationLevel); err != nil {
		return nil, err
	}
	reason := req.OverrideReason
	period.PautaGrade = req.PautaGrade
	period.IsOverridden = true
	period.OverrideReason = &reason

	if err := s.periods.Update(ctx, period); err != nil {
		return nil, appErrors.Internal(err, "failed to override period")
	}
	if err := s.recalculateAnnual(ctx, enrollment, settings); err != nil {
		return nil, err
	}
	s.logger.Info("period grade overridden",
		zap.String("student_id", studentID),
		zap.String("period_id", periodID),
		zap.Int("pauta_grade", *req.PautaGrade),
	)
	s.invalidate(ctx, studentID)
	period.Label = grades.GetPeriodLabel(period.PeriodNumber, regimeOf(settings))
	return period, nil
}

// ListElements returns the evaluation elements of a period in entry order.
func (s *GradeService) ListElements(ctx context.Context, studentID, periodID string) ([]models.EvaluationElement, error) {
	if _, err := s.ownedPeriod(ctx, studentID, periodID); err != nil {
		return nil, err
	}
	elements, err := s.elements.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list elements")
	}
	return elements, nil
}

// ReplaceElements swaps the element set of a period and recalculates it.
func (s *GradeService) ReplaceElements(ctx context.Context, studentID, periodID string, req dto.ReplaceElementsRequest) ([]models.EvaluationElement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid elements payload")
	}
	if _, err := s.writablePeriod(ctx, studentID, periodID); err != nil {
		return nil, err
	}
	weights := make([]decimal.Decimal, 0, len(req.Elements))
	elements := make([]models.EvaluationElement, 0, len(req.Elements))
	for _, item := range req.Elements {
		if item.WeightPercentage.IsNegative() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "element weights cannot be negative")
		}
		if item.RawGrade != nil && item.RawGrade.IsNegative() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "element grades cannot be negative")
		}
		weights = append(weights, item.WeightPercentage)
		elements = append(elements, models.EvaluationElement{
			ElementType:      item.ElementType,
			Label:            item.Label,
			Icon:             item.Icon,
			WeightPercentage: item.WeightPercentage,
			RawGrade:         item.RawGrade,
		})
	}
	if !grades.ValidateWeights(weights) {
		return nil, appErrors.Clonef(appErrors.ErrInvalidWeights, "element weights must sum to 100, got %s", sumWeights(weights))
	}

	if err := s.elements.Replace(ctx, periodID, elements); err != nil {
		return nil, appErrors.Internal(err, "failed to replace elements")
	}
	if err := s.recalculatePeriod(ctx, periodID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, studentID)

	stored, err := s.elements.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list elements")
	}
	return stored, nil
}

// UpdateElementGrade sets or clears the grade of one element and recalculates its period.
func (s *GradeService) UpdateElementGrade(ctx context.Context, studentID, elementID string, req dto.ElementGradeRequest) (*models.EvaluationElement, error) {
	if req.RawGrade != nil && req.RawGrade.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "element grades cannot be negative")
	}
	element, err := s.elements.FindByID(ctx, elementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "element not found")
		}
		return nil, appErrors.Internal(err, "failed to load element")
	}
	if element.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "element not found")
	}
	if _, err := s.writablePeriod(ctx, studentID, element.PeriodID); err != nil {
		return nil, err
	}

	if err := s.elements.UpdateGrade(ctx, elementID, req.RawGrade); err != nil {
		return nil, appErrors.Internal(err, "failed to update element grade")
	}
	element.RawGrade = req.RawGrade
	if err := s.recalculatePeriod(ctx, element.PeriodID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, studentID)
	return element, nil
}

// CopyElements copies the element structure of a period, without grades, to
// every other unlocked period of the same enrollment.
func (s *GradeService) CopyElements(ctx context.Context, studentID, periodID string) (*dto.CopyElementsResult, error) {
	source, err := s.ownedPeriod(ctx, studentID, periodID)
	if err != nil {
		return nil, err
	}
	template, err := s.elements.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list elements")
	}
	if len(template) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no elements to copy")
	}
	siblings, err := s.periods.ListByEnrollment(ctx, source.EnrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list periods")
	}

	copied := 0
	for _, target := range siblings {
		if target.ID == source.ID || target.IsLocked {
			continue
		}
		structure := make([]models.EvaluationElement, len(template))
		for i, element := range template {
			structure[i] = models.EvaluationElement{
				ElementType:      element.ElementType,
				Label:            element.Label,
				Icon:             element.Icon,
				WeightPercentage: element.WeightPercentage,
			}
		}
		if err := s.elements.Replace(ctx, target.ID, structure); err != nil {
			return nil, appErrors.Internal(err, "failed to copy elements")
		}
		if err := s.recalculatePeriod(ctx, target.ID); err != nil {
			return nil, err
		}
		copied++
	}

	s.invalidate(ctx, studentID)
	return &dto.CopyElementsResult{CopiedPeriods: copied}, nil
}

// recalculatePeriod refreshes the calculated grade of a period from its
// elements. Unless the period is overridden the pauta follows the calculated
// grade. The annual grade is recalculated afterwards.
func (s *GradeService) recalculatePeriod(ctx context.Context, periodID string) error {
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		return appErrors.Internal(err, "failed to load period")
	}
	elements, err := s.elements.ListByPeriod(ctx, periodID)
	if err != nil {
		return appErrors.Internal(err, "failed to list elements")
	}
	enrollment, settings, err := s.periodScope(ctx, period)
	if err != nil {
		return err
	}

	result := grades.CalculatePeriodGrade(toGradeElements(elements))
	s.metrics.RecordGradeCalculation(StagePeriod)

	period.RawCalculated = result.RawCalculated
	period.CalculatedGrade = result.CalculatedGrade
	if result.CalculatedGrade != nil && !period.IsOverridden {
		period.PautaGrade = result.CalculatedGrade
	}
	if result.RawCalculated != nil && grades.IsNearBoundary(*result.RawCalculated, settings.EducationLevel) {
		s.metrics.RecordBoundaryReview()
	}

	if err := s.periods.Update(ctx, period); err != nil {
		return appErrors.Internal(err, "failed to store period grade")
	}
	return s.recalculateAnnual(ctx, enrollment, settings)
}

// recalculateAnnual stores the annual grade once every period has a pauta
// and removes it otherwise. Locked annual grades are left as they are.
func (s *GradeService) recalculateAnnual(ctx context.Context, enrollment *models.SubjectEnrollment, settings *models.GradeSettings) error {
	existing, err := s.annual.FindByEnrollment(ctx, enrollment.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to load annual grade")
	}
	if existing != nil && existing.IsLocked {
		return nil
	}

	periods, err := s.periods.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to list periods")
	}
	pautas := make([]grades.PeriodGrade, len(periods))
	for i, period := range periods {
		pautas[i] = grades.PeriodGrade{PautaGrade: period.PautaGrade}
	}
	result := grades.CalculateAnnualGrade(pautas, settings.PeriodWeights)
	s.metrics.RecordGradeCalculation(StageAnnual)

	if !result.IsComplete {
		if existing == nil {
			return nil
		}
		if err := s.annual.DeleteByEnrollment(ctx, enrollment.ID); err != nil {
			return appErrors.Internal(err, "failed to clear annual grade")
		}
		return nil
	}

	grade := &models.AnnualGrade{
		EnrollmentID: enrollment.ID,
		RawAnnual:    result.RawAnnual,
		AnnualGrade:  *result.AnnualGrade,
	}
	if existing != nil {
		grade.ID = existing.ID
	}
	if err := s.annual.Upsert(ctx, grade); err != nil {
		return appErrors.Internal(err, "failed to store annual grade")
	}
	return nil
}

// Board assembles the grade board of an academic year: every enrollment with
// its labelled periods, their elements and the annual grade.
func (s *GradeService) Board(ctx context.Context, studentID, academicYear string) (*models.GradeBoard, error) {
	cacheKey := BoardCacheKey(studentID, academicYear)
	var cached models.GradeBoard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	settings, err := s.settings.FindByYear(ctx, studentID, academicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.GradeBoard{Subjects: []models.BoardSubject{}}, nil
		}
		return nil, appErrors.Internal(err, "failed to load grade settings")
	}

	start := time.Now()
	enrollments, err := s.enrollments.ListByYear(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	enrollmentIDs := make([]string, len(enrollments))
	for i, enrollment := range enrollments {
		enrollmentIDs[i] = enrollment.ID
	}
	periodsByEnrollment, err := s.periods.ListByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list periods")
	}
	periodIDs := make([]string, 0, len(enrollments)*len(settings.PeriodWeights))
	for _, periods := range periodsByEnrollment {
		for _, period := range periods {
			periodIDs = append(periodIDs, period.ID)
		}
	}
	elementsByPeriod, err := s.elements.ListByPeriods(ctx, periodIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list elements")
	}
	annualByEnrollment, err := s.annual.ListByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list annual grades")
	}
	s.metrics.ObserveDBQuery("grade_board", time.Since(start))

	regime := regimeOf(settings)
	scale := grades.GetGradeScale(settings.EducationLevel)
	board := &models.GradeBoard{
		Settings: settings,
		Scale:    &scale,
		Subjects: make([]models.BoardSubject, 0, len(enrollments)),
	}
	for _, enrollment := range enrollments {
		periods := periodsByEnrollment[enrollment.ID]
		if periods == nil {
			periods = []models.SubjectPeriod{}
		}
		for i := range periods {
			decoratePeriod(&periods[i], elementsByPeriod[periods[i].ID], regime, settings.EducationLevel)
		}
		subject := models.BoardSubject{Enrollment: enrollment, Periods: periods}
		if annual, ok := annualByEnrollment[enrollment.ID]; ok {
			annual := annual
			subject.AnnualGrade = &annual
		}
		board.Subjects = append(board.Subjects, subject)
	}

	_ = s.cache.Set(ctx, cacheKey, board, 0)
	return board, nil
}

// AnnualGrades lists the annual grades of an academic year, one per graded enrollment.
func (s *GradeService) AnnualGrades(ctx context.Context, studentID, academicYear string) ([]models.AnnualGrade, error) {
	enrollments, err := s.enrollments.ListByYear(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	ids := make([]string, len(enrollments))
	for i, enrollment := range enrollments {
		ids[i] = enrollment.ID
	}
	byEnrollment, err := s.annual.ListByEnrollments(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list annual grades")
	}
	result := make([]models.AnnualGrade, 0, len(byEnrollment))
	for _, enrollment := range enrollments {
		grade, ok := byEnrollment[enrollment.ID]
		if !ok {
			continue
		}
		subjectID := enrollment.SubjectID
		grade.SubjectID = &subjectID
		grade.SubjectName = enrollment.SubjectName
		result = append(result, grade)
	}
	return result, nil
}

// UpdateAnnualGrade writes an annual grade directly, typically for a past
// year that was never tracked period by period.
func (s *GradeService) UpdateAnnualGrade(ctx context.Context, studentID string, req dto.UpdateAnnualGradeRequest) (*models.AnnualGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid annual grade payload")
	}
	enrollment, err := s.enrollments.FindBySubjectYear(ctx, studentID, req.SubjectID, req.AcademicYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clonef(appErrors.ErrNotFound, "no enrollment found for subject in %s", req.AcademicYear)
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}

	raw := decimal.NewFromInt(int64(*req.AnnualGrade))
	grade := &models.AnnualGrade{
		EnrollmentID: enrollment.ID,
		RawAnnual:    &raw,
		AnnualGrade:  *req.AnnualGrade,
	}
	if err := s.annual.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Internal(err, "failed to store annual grade")
	}
	stored, err := s.annual.FindByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load annual grade")
	}
	s.invalidate(ctx, studentID)
	return stored, nil
}

func (s *GradeService) ownedPeriod(ctx context.Context, studentID, periodID string) (*models.SubjectPeriod, error) {
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Internal(err, "failed to load period")
	}
	if period.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
	}
	return period, nil
}

func (s *GradeService) writablePeriod(ctx context.Context, studentID, periodID string) (*models.SubjectPeriod, error) {
	period, err := s.ownedPeriod(ctx, studentID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "period is locked")
	}
	return period, nil
}

// periodScope loads the enrollment and settings a period belongs to.
func (s *GradeService) periodScope(ctx context.Context, period *models.SubjectPeriod) (*models.SubjectEnrollment, *models.GradeSettings, error) {
	enrollment, err := s.enrollments.FindByID(ctx, period.EnrollmentID)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load enrollment")
	}
	settings, err := s.settings.FindByID(ctx, enrollment.SettingsID)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load grade settings")
	}
	return enrollment, settings, nil
}

func (s *GradeService) invalidate(ctx context.Context, studentID string) {
	if err := s.cache.InvalidateStudent(ctx, studentID); err != nil {
		s.logger.Warn("failed to invalidate grade cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func decoratePeriod(period *models.SubjectPeriod, elements []models.EvaluationElement, regime string, level grades.EducationLevel) {
	if elements == nil {
		elements = []models.EvaluationElement{}
	}
	period.Elements = elements
	period.Label = grades.GetPeriodLabel(period.PeriodNumber, regime)
	period.NeedsReview = period.RawCalculated != nil && grades.IsNearBoundary(*period.RawCalculated, level)
	if len(elements) > 0 {
		result := grades.CalculatePeriodGrade(toGradeElements(elements))
		period.Progress = &models.PeriodGradeProgress{
			GradedCount: result.GradedCount,
			TotalCount:  result.TotalCount,
			IsComplete:  result.IsComplete,
		}
	}
}

func toGradeElements(elements []models.EvaluationElement) []grades.EvaluationElement {
	result := make([]grades.EvaluationElement, len(elements))
	for i, element := range elements {
		result[i] = grades.EvaluationElement{WeightPercentage: element.WeightPercentage, RawGrade: element.RawGrade}
	}
	return result
}

func checkScale(grade int, level grades.EducationLevel) error {
	scale := grades.GetGradeScale(level)
	if grade < scale.Min || grade > scale.Max {
		return appErrors.Clonef(appErrors.ErrValidation, "grade must be between %d and %d", scale.Min, scale.Max)
	}
	return nil
}

func regimeOf(settings *models.GradeSettings) string {
	if settings == nil || settings.Regime == nil {
		return ""
	}
	return *settings.Regime
}

func sumWeights(weights []decimal.Decimal) string {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return sum.String()
}
