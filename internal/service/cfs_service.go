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
	"github.com/lusia-studio/grades-api/internal/repository"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
	"github.com/lusia-studio/grades-api/pkg/grades"
)

type cfdStore interface {
	FindByID(ctx context.Context, id string) (*models.SubjectCFD, error)
	ListByStudent(ctx context.Context, studentID string) (map[string]models.SubjectCFD, error)
	Upsert(ctx context.Context, cfd *models.SubjectCFD) error
	UpdateExam(ctx context.Context, cfd *models.SubjectCFD) error
	LatestSnapshot(ctx context.Context, studentID string) (*models.CFSSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.CFSSnapshot, cfdIDs []string) error
}

// CFSStores groups the persistence dependencies of CFSService.
type CFSStores struct {
	Settings    gradeSettingsStore
	Enrollments enrollmentStore
	Annual      annualGradeStore
	CFDs        cfdStore
}

// CFSConfig tunes CFS snapshots.
type CFSConfig struct {
	// DefaultCohortYear is used when the student's settings carry no cohort.
	DefaultCohortYear int
}

// CFSService derives the final classification of every subject (CFD) from
// its annual grades and exam, and the secondary-school average (CFS) from
// every CFD.
type CFSService struct {
	settings    gradeSettingsStore
	enrollments enrollmentStore
	annual      annualGradeStore
	cfds        cfdStore
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	config      CFSConfig
}

// NewCFSService constructs a CFSService.
func NewCFSService(stores CFSStores, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CFSConfig) *CFSService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultCohortYear == 0 {
		cfg.DefaultCohortYear = grades.WeightedCFSCohortCutoff
	}
	return &CFSService{
		settings:    stores.Settings,
		enrollments: stores.Enrollments,
		annual:      stores.Annual,
		cfds:        stores.CFDs,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		config:      cfg,
	}
}

// Dashboard returns every CFD of the student with a CFS preview. Loading the
// dashboard refreshes the stored CFD of every subject that is not finalized.
func (s *CFSService) Dashboard(ctx context.Context, studentID string) (*models.CFSDashboard, error) {
	cacheKey := CFSCacheKey(studentID)
	var cached models.CFSDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}
	dashboard, err := s.buildDashboard(ctx, studentID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKey, dashboard, 0)
	return dashboard, nil
}

func (s *CFSService) buildDashboard(ctx context.Context, studentID string) (*models.CFSDashboard, error) {
	start := time.Now()
	settings, err := s.settings.Latest(ctx, studentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load grade settings")
		}
		settings = nil
	}

	enrollments, err := s.enrollments.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	order := make([]string, 0)
	bySubject := make(map[string][]models.SubjectEnrollment)
	enrollmentIDs := make([]string, len(enrollments))
	for i, enrollment := range enrollments {
		enrollmentIDs[i] = enrollment.ID
		if _, seen := bySubject[enrollment.SubjectID]; !seen {
			order = append(order, enrollment.SubjectID)
		}
		bySubject[enrollment.SubjectID] = append(bySubject[enrollment.SubjectID], enrollment)
	}

	annualByEnrollment, err := s.annual.ListByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list annual grades")
	}
	stored, err := s.cfds.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list cfds")
	}

	var level grades.EducationLevel
	var cohort *int
	if settings != nil {
		level = settings.EducationLevel
		cohort = settings.GraduationCohortYear
	}

	dashboard := &models.CFSDashboard{Settings: settings, CFDs: make([]models.SubjectCFD, 0, len(order))}
	for _, subjectID := range order {
		cfd, ok, err := s.subjectCFD(ctx, studentID, bySubject[subjectID], annualByEnrollment, stored, level, cohort)
		if err != nil {
			return nil, err
		}
		if ok {
			dashboard.CFDs = append(dashboard.CFDs, cfd)
		}
	}

	if settings != nil && len(dashboard.CFDs) > 0 {
		result := grades.CalculateCFS(cfsSubjects(dashboard.CFDs), cohort)
		s.metrics.RecordGradeCalculation(StageCFS)
		dashboard.ComputedCFS = result.CFSValue
		dashboard.ComputedDGES = result.DGESValue
	}
	if settings != nil {
		snapshot, err := s.cfds.LatestSnapshot(ctx, studentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load cfs snapshot")
		}
		dashboard.Snapshot = snapshot
	}
	s.metrics.ObserveDBQuery("cfs_dashboard", time.Since(start))
	return dashboard, nil
}

// subjectCFD computes and stores the CFD of one subject from its enrollments,
// ordered by academic year. It reports false when no year has an annual grade.
func (s *CFSService) subjectCFD(
	ctx context.Context,
	studentID string,
	enrollments []models.SubjectEnrollment,
	annualByEnrollment map[string]models.AnnualGrade,
	stored map[string]models.SubjectCFD,
	level grades.EducationLevel,
	cohort *int,
) (models.SubjectCFD, bool, error) {
	annualGrades := make([]int, 0, len(enrollments))
	detail := make([]models.YearAnnualGrade, 0, len(enrollments))
	for _, enrollment := range enrollments {
		annual, ok := annualByEnrollment[enrollment.ID]
		if !ok {
			continue
		}
		annualGrades = append(annualGrades, annual.AnnualGrade)
		detail = append(detail, models.YearAnnualGrade{
			YearLevel:    enrollment.YearLevel,
			AcademicYear: enrollment.AcademicYear,
			AnnualGrade:  annual.AnnualGrade,
		})
	}
	if len(annualGrades) == 0 {
		return models.SubjectCFD{}, false, nil
	}

	terminal := enrollments[len(enrollments)-1]
	duration := len(enrollments)
	existing, found := stored[repository.CFDKey(terminal.SubjectID, terminal.AcademicYear)]

	var cfd models.SubjectCFD
	if found && existing.IsFinalized {
		cfd = existing
	} else {
		cif := grades.CalculateCIF(annualGrades)
		cfd = models.SubjectCFD{
			StudentID:    studentID,
			SubjectID:    terminal.SubjectID,
			AcademicYear: terminal.AcademicYear,
			CIFRaw:       &cif.CIFRaw,
			CIFGrade:     cif.CIFGrade,
		}
		if found {
			cfd.ID = existing.ID
		}

		var examRaw *int
		if found && terminal.IsExamCandidate {
			examRaw = existing.ExamGradeRaw
			cfd.ExamGrade = existing.ExamGrade
			if level != grades.LevelBasico3 && examRaw == nil && existing.ExamGrade != nil {
				legacy := *existing.ExamGrade * 10
				examRaw = &legacy
			}
		}
		cfd.ExamGradeRaw = examRaw

		var result grades.CFDResult
		if level == grades.LevelBasico3 {
			if examRaw != nil && terminal.HasNationalExam != nil && *terminal.HasNationalExam {
				examLevel := grades.ConvertPercentageToLevel(*examRaw)
				weight := grades.BasicoExamWeight
				cfd.ExamWeight = &weight
				result = grades.CalculateBasicoCFD(cif.CIFGrade, &examLevel)
			} else {
				result = grades.CalculateBasicoCFD(cif.CIFGrade, nil)
			}
		} else {
			if examRaw != nil {
				weight := grades.ExamWeightFor(cohort, duration)
				cfd.ExamWeight = &weight
			}
			result = grades.CalculateCFD(cif.CIFGrade, examRaw, cfd.ExamWeight)
		}
		s.metrics.RecordGradeCalculation(StageCFD)
		cfd.CFDRaw = &result.CFDRaw
		cfd.CFDGrade = result.CFDGrade

		if err := s.cfds.Upsert(ctx, &cfd); err != nil {
			return models.SubjectCFD{}, false, appErrors.Internal(err, "failed to store cfd")
		}
	}

	cfd.SubjectName = terminal.SubjectName
	cfd.SubjectSlug = terminal.SubjectSlug
	cfd.AffectsCFS = terminal.CountsForCFS()
	cfd.HasNationalExam = terminal.HasNationalExam != nil && *terminal.HasNationalExam
	cfd.IsExamCandidate = terminal.IsExamCandidate
	cfd.DurationYears = duration
	cfd.AnnualGrades = detail
	return cfd, true, nil
}

// UpdateExamGrade records a Secundário national exam score (0-200) on a CFD.
// Both the raw score and its 0-20 conversion are stored; the CFD itself is
// recalculated the next time the dashboard is loaded.
func (s *CFSService) UpdateExamGrade(ctx context.Context, studentID, cfdID string, req dto.ExamGradeRequest) (*models.SubjectCFD, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "exam grade must be between 0 and 200")
	}
	cfd, err := s.writableCFD(ctx, studentID, cfdID)
	if err != nil {
		return nil, err
	}
	raw := *req.ExamGradeRaw
	converted := grades.ConvertExamGrade(raw)
	cfd.ExamGradeRaw = &raw
	cfd.ExamGrade = &converted

	if err := s.cfds.UpdateExam(ctx, cfd); err != nil {
		return nil, appErrors.Internal(err, "failed to store exam grade")
	}
	s.logger.Info("exam grade recorded", zap.String("student_id", studentID), zap.String("cfd_id", cfdID), zap.Int("exam_grade_raw", raw))
	s.invalidate(ctx, studentID)
	return cfd, nil
}

// UpdateBasicoExamGrade records a Básico 3º ciclo Prova Final percentage,
// converts it to a level and recalculates the CFD at 70/30.
func (s *CFSService) UpdateBasicoExamGrade(ctx context.Context, studentID, cfdID string, req dto.BasicoExamGradeRequest) (*models.SubjectCFD, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "exam percentage must be between 0 and 100")
	}
	cfd, err := s.writableCFD(ctx, studentID, cfdID)
	if err != nil {
		return nil, err
	}
	percentage := *req.ExamPercentage
	examLevel := grades.ConvertPercentageToLevel(percentage)
	result := grades.CalculateBasicoCFD(cfd.CIFGrade, &examLevel)
	s.metrics.RecordGradeCalculation(StageCFD)

	weight := grades.BasicoExamWeight
	cfd.ExamGrade = &examLevel
	cfd.ExamGradeRaw = &percentage
	cfd.ExamWeight = &weight
	cfd.CFDRaw = &result.CFDRaw
	cfd.CFDGrade = result.CFDGrade

	if err := s.cfds.UpdateExam(ctx, cfd); err != nil {
		return nil, appErrors.Internal(err, "failed to store exam grade")
	}
	s.invalidate(ctx, studentID)
	return cfd, nil
}

// CreateSnapshot freezes the current CFS for an academic year and finalizes
// every CFD that contributed to it.
func (s *CFSService) CreateSnapshot(ctx context.Context, studentID string, req dto.CFSSnapshotRequest) (*models.CFSSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot payload")
	}
	dashboard, err := s.buildDashboard(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if dashboard.Settings == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no grade settings found")
	}

	cohort := s.config.DefaultCohortYear
	if dashboard.Settings.GraduationCohortYear != nil {
		cohort = *dashboard.Settings.GraduationCohortYear
	}
	result := grades.CalculateCFS(cfsSubjects(dashboard.CFDs), &cohort)
	if result.CFSValue == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot compute CFS, missing CFDs")
	}
	formula := grades.CFSFormula(&cohort)

	subjects := make([]models.CFDSnapshotSubject, 0, len(dashboard.CFDs))
	cfdIDs := make([]string, 0, len(dashboard.CFDs))
	for _, cfd := range dashboard.CFDs {
		subjects = append(subjects, models.CFDSnapshotSubject{
			SubjectID:     cfd.SubjectID,
			Name:          cfd.SubjectName,
			CFDGrade:      cfd.CFDGrade,
			DurationYears: cfd.DurationYears,
			Weight:        cfd.DurationYears,
			HasExam:       cfd.ExamGrade != nil,
			ExamGrade:     cfd.ExamGrade,
			AffectsCFS:    cfd.AffectsCFS,
		})
		if cfd.ID != "" {
			cfdIDs = append(cfdIDs, cfd.ID)
		}
	}

	snapshot := &models.CFSSnapshot{
		StudentID:            studentID,
		AcademicYear:         req.AcademicYear,
		GraduationCohortYear: cohort,
		CFSValue:             *result.CFSValue,
		DGESValue:            result.DGESValue,
		FormulaUsed:          formula,
		RuleVersion:          grades.RuleVersion + ":" + grades.RuleVersionHash(),
		CFDSnapshot:          models.CFDSnapshot{Subjects: subjects, Formula: formula, Cohort: cohort},
		IsFinalized:          true,
	}
	if err := s.cfds.SaveSnapshot(ctx, snapshot, cfdIDs); err != nil {
		return nil, appErrors.Internal(err, "failed to store cfs snapshot")
	}

	s.logger.Info("cfs snapshot created",
		zap.String("student_id", studentID),
		zap.String("academic_year", req.AcademicYear),
		zap.String("cfs", snapshot.CFSValue.String()),
		zap.String("formula", string(formula)),
		zap.Int("finalized_cfds", len(cfdIDs)),
	)
	s.invalidate(ctx, studentID)
	return snapshot, nil
}

func (s *CFSService) writableCFD(ctx context.Context, studentID, cfdID string) (*models.SubjectCFD, error) {
	cfd, err := s.cfds.FindByID(ctx, cfdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cfd not found")
		}
		return nil, appErrors.Internal(err, "failed to load cfd")
	}
	if cfd.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "cfd not found")
	}
	if cfd.IsFinalized {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "cfd is already finalized")
	}
	return cfd, nil
}

func (s *CFSService) invalidate(ctx context.Context, studentID string) {
	if err := s.cache.InvalidateStudent(ctx, studentID); err != nil {
		s.logger.Warn("failed to invalidate cfs cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func cfsSubjects(cfds []models.SubjectCFD) []grades.CFSSubject {
	subjects := make([]grades.CFSSubject, len(cfds))
	for i, cfd := range cfds {
		subjects[i] = grades.CFSSubject{CFDGrade: cfd.CFDGrade, DurationYears: cfd.DurationYears, AffectsCFS: cfd.AffectsCFS}
	}
	return subjects
}

// ExamWeightPercent formats an optional exam weight for display.
func ExamWeightPercent(weight *decimal.Decimal) string {
	if weight == nil {
		return ""
	}
	return weight.StringFixed(0) + "%"
}
