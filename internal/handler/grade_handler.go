package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusia-studio/grades-api/internal/dto"
	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
	"github.com/lusia-studio/grades-api/pkg/response"
)

type gradeService interface {
	GetSettings(ctx context.Context, studentID, academicYear string) (*models.GradeSettings, error)
	CreateSettings(ctx context.Context, studentID string, req dto.CreateGradeSettingsRequest) (*models.GradeSettings, error)
	SetupPastYear(ctx context.Context, studentID string, req dto.PastYearSetupRequest) (*models.GradeBoard, error)
	LockSettings(ctx context.Context, studentID, settingsID string) (*models.GradeSettings, error)
	ListEnrollments(ctx context.Context, studentID, academicYear string) ([]models.SubjectEnrollment, error)
	CreateEnrollment(ctx context.Context, studentID string, req dto.CreateEnrollmentRequest) (*models.SubjectEnrollment, error)
	UpdateEnrollment(ctx context.Context, studentID, enrollmentID string, req dto.UpdateEnrollmentRequest) (*models.SubjectEnrollment, error)
	Board(ctx context.Context, studentID, academicYear string) (*models.GradeBoard, error)
	UpdatePeriodGrade(ctx context.Context, studentID, periodID string, req dto.PeriodGradeRequest) (*models.SubjectPeriod, error)
	OverridePeriodGrade(ctx context.Context, studentID, periodID string, req dto.PeriodOverrideRequest) (*models.SubjectPeriod, error)
	ListElements(ctx context.Context, studentID, periodID string) ([]models.EvaluationElement, error)
	ReplaceElements(ctx context.Context, studentID, periodID string, req dto.ReplaceElementsRequest) ([]models.EvaluationElement, error)
	UpdateElementGrade(ctx context.Context, studentID, elementID string, req dto.ElementGradeRequest) (*models.EvaluationElement, error)
	CopyElements(ctx context.Context, studentID, periodID string) (*dto.CopyElementsResult, error)
	AnnualGrades(ctx context.Context, studentID, academicYear string) ([]models.AnnualGrade, error)
	UpdateAnnualGrade(ctx context.Context, studentID string, req dto.UpdateAnnualGradeRequest) (*models.AnnualGrade, error)
}

// GradeHandler exposes the student's grade settings, board and period endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// GetSettings godoc
// @Summary Get grade settings of an academic year
// @Tags Grades
// @Produce json
// @Param id path string true "Academic year, e.g. 2024-2025"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/settings/{id} [get]
func (h *GradeHandler) GetSettings(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	// The wildcard is shared with the lock route, so it is named id here too.
	settings, err := h.grades.GetSettings(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// CreateSettings godoc
// @Summary Set up an academic year
// @Description Creates settings, enrollments with their periods and any past-year grades.
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CreateGradeSettingsRequest true "Settings payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/settings [post]
func (h *GradeHandler) CreateSettings(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.CreateGradeSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.grades.CreateSettings(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, settings)
}

// SetupPastYear godoc
// @Summary Set up an earlier academic year
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.PastYearSetupRequest true "Past year payload"
// @Success 201 {object} response.Envelope
// @Router /grades/settings/past-year [post]
func (h *GradeHandler) SetupPastYear(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.PastYearSetupRequest
	if !bindJSON(c, &req) {
		return
	}
	board, err := h.grades.SetupPastYear(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, board)
}

// LockSettings godoc
// @Summary Lock grade settings
// @Tags Grades
// @Produce json
// @Param id path string true "Settings ID"
// @Success 200 {object} response.Envelope
// @Router /grades/settings/{id}/lock [patch]
func (h *GradeHandler) LockSettings(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	settings, err := h.grades.LockSettings(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// ListEnrollments godoc
// @Summary List subject enrollments
// @Tags Grades
// @Produce json
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/enrollments [get]
func (h *GradeHandler) ListEnrollments(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	year := c.Query("academicYear")
	if year == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear is required"))
		return
	}
	enrollments, err := h.grades.ListEnrollments(c.Request.Context(), studentID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// CreateEnrollment godoc
// @Summary Enroll in a subject
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /grades/enrollments [post]
func (h *GradeHandler) CreateEnrollment(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.grades.CreateEnrollment(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// UpdateEnrollment godoc
// @Summary Update enrollment flags
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpdateEnrollmentRequest true "Flags"
// @Success 200 {object} response.Envelope
// @Router /grades/enrollments/{id} [patch]
func (h *GradeHandler) UpdateEnrollment(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.UpdateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.grades.UpdateEnrollment(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Board godoc
// @Summary Grade board of an academic year
// @Tags Grades
// @Produce json
// @Param academicYear path string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/board/{academicYear} [get]
func (h *GradeHandler) Board(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	board, err := h.grades.Board(c.Request.Context(), studentID, c.Param("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// UpdatePeriod godoc
// @Summary Record a period grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body dto.PeriodGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/periods/{id} [patch]
func (h *GradeHandler) UpdatePeriod(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.PeriodGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	period, err := h.grades.UpdatePeriodGrade(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// OverridePeriod godoc
// @Summary Override the calculated period grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body dto.PeriodOverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Router /grades/periods/{id}/override [patch]
func (h *GradeHandler) OverridePeriod(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.PeriodOverrideRequest
	if !bindJSON(c, &req) {
		return
	}
	period, err := h.grades.OverridePeriodGrade(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// ListElements godoc
// @Summary List evaluation elements of a period
// @Tags Grades
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /grades/periods/{id}/elements [get]
func (h *GradeHandler) ListElements(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	elements, err := h.grades.ListElements(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, elements, nil)
}

// ReplaceElements godoc
// @Summary Replace the evaluation elements of a period
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body dto.ReplaceElementsRequest true "Elements"
// @Success 200 {object} response.Envelope
// @Router /grades/periods/{id}/elements [put]
func (h *GradeHandler) ReplaceElements(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.ReplaceElementsRequest
	if !bindJSON(c, &req) {
		return
	}
	elements, err := h.grades.ReplaceElements(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, elements, nil)
}

// CopyElements godoc
// @Summary Copy the element structure to the other periods of the subject
// @Tags Grades
// @Produce json
// @Param id path string true "Source period ID"
// @Success 200 {object} response.Envelope
// @Router /grades/periods/{id}/elements/copy [post]
func (h *GradeHandler) CopyElements(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	result, err := h.grades.CopyElements(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateElement godoc
// @Summary Grade one evaluation element
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Element ID"
// @Param payload body dto.ElementGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/elements/{id} [patch]
func (h *GradeHandler) UpdateElement(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.ElementGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	element, err := h.grades.UpdateElementGrade(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, element, nil)
}

// AnnualGrades godoc
// @Summary Annual grades of an academic year
// @Tags Grades
// @Produce json
// @Param academicYear path string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/annual/{academicYear} [get]
func (h *GradeHandler) AnnualGrades(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	annual, err := h.grades.AnnualGrades(c.Request.Context(), studentID, c.Param("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, annual, nil)
}

// UpdateAnnual godoc
// @Summary Write a past-year annual grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.UpdateAnnualGradeRequest true "Annual grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/annual [put]
func (h *GradeHandler) UpdateAnnual(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.UpdateAnnualGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	annual, err := h.grades.UpdateAnnualGrade(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, annual, nil)
}
