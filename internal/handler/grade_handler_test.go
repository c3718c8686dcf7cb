package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/dto"
	"github.com/lusia-studio/grades-api/internal/middleware"
	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
)

// gradeServiceMock only implements the methods the tests call; anything else
// panics through the nil embedded interface.
type gradeServiceMock struct {
	gradeService

	studentID   string
	year        string
	periodID    string
	settings    *models.GradeSettings
	settingsErr error
	created     dto.CreateGradeSettingsRequest
	elements    []models.EvaluationElement
	replaced    dto.ReplaceElementsRequest
	copyResult  *dto.CopyElementsResult
	enrollments []models.SubjectEnrollment
}

func (m *gradeServiceMock) GetSettings(ctx context.Context, studentID, academicYear string) (*models.GradeSettings, error) {
	m.studentID, m.year = studentID, academicYear
	return m.settings, m.settingsErr
}

func (m *gradeServiceMock) CreateSettings(ctx context.Context, studentID string, req dto.CreateGradeSettingsRequest) (*models.GradeSettings, error) {
	m.studentID, m.created = studentID, req
	return m.settings, m.settingsErr
}

func (m *gradeServiceMock) ListEnrollments(ctx context.Context, studentID, academicYear string) ([]models.SubjectEnrollment, error) {
	m.studentID, m.year = studentID, academicYear
	return m.enrollments, nil
}

func (m *gradeServiceMock) ReplaceElements(ctx context.Context, studentID, periodID string, req dto.ReplaceElementsRequest) ([]models.EvaluationElement, error) {
	m.studentID, m.periodID, m.replaced = studentID, periodID, req
	return m.elements, nil
}

func (m *gradeServiceMock) CopyElements(ctx context.Context, studentID, periodID string) (*dto.CopyElementsResult, error) {
	m.studentID, m.periodID = studentID, periodID
	return m.copyResult, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asStudent(c *gin.Context, id string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: models.RoleStudent})
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGradeHandlerGetSettingsScopesToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &gradeServiceMock{settings: &models.GradeSettings{ID: "set-1", AcademicYear: "2024-2025"}}
	handler := NewGradeHandler(mock)

	c, w := newGinContext(http.MethodGet, "/grades/settings/2024-2025", nil)
	c.Params = gin.Params{{Key: "id", Value: "2024-2025"}}
	asStudent(c, "student-7")

	handler.GetSettings(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-7", mock.studentID)
	assert.Equal(t, "2024-2025", mock.year)

	var settings models.GradeSettings
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &settings))
	assert.Equal(t, "set-1", settings.ID)
}

func TestGradeHandlerMapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeServiceMock{settingsErr: appErrors.Clone(appErrors.ErrNotFound, "grade settings not found")})

	c, w := newGinContext(http.MethodGet, "/grades/settings/2030-2031", nil)
	c.Params = gin.Params{{Key: "id", Value: "2030-2031"}}
	asStudent(c, "student-7")

	handler.GetSettings(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGradeHandlerRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeServiceMock{})

	c, w := newGinContext(http.MethodGet, "/grades/settings/2024-2025", nil)
	handler.GetSettings(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradeHandlerCreateSettings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &gradeServiceMock{settings: &models.GradeSettings{ID: "set-1"}}
	handler := NewGradeHandler(mock)

	body := []byte(`{"academic_year":"2024-2025","education_level":"secundario","regime":"semestral","period_weights":["50","50"],"subject_ids":["mat"],"year_level":"10"}`)
	c, w := newGinContext(http.MethodPost, "/grades/settings", body)
	asStudent(c, "student-7")

	handler.CreateSettings(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-2025", mock.created.AcademicYear)
	require.Len(t, mock.created.PeriodWeights, 2)
	assert.True(t, mock.created.PeriodWeights[0].Equal(decimal.NewFromInt(50)))
	assert.Equal(t, []string{"mat"}, mock.created.SubjectIDs)
}

func TestGradeHandlerRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeServiceMock{})

	c, w := newGinContext(http.MethodPost, "/grades/settings", []byte(`{"academic_year":`))
	asStudent(c, "student-7")

	handler.CreateSettings(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
}

func TestGradeHandlerListEnrollmentsNeedsYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &gradeServiceMock{enrollments: []models.SubjectEnrollment{{ID: "enr-1"}}}
	handler := NewGradeHandler(mock)

	c, w := newGinContext(http.MethodGet, "/grades/enrollments", nil)
	asStudent(c, "student-7")
	handler.ListEnrollments(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/grades/enrollments?academicYear=2024-2025", nil)
	asStudent(c, "student-7")
	handler.ListEnrollments(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-2025", mock.year)
}

func TestGradeHandlerReplaceElements(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &gradeServiceMock{elements: []models.EvaluationElement{{ID: "el-1"}, {ID: "el-2"}}}
	handler := NewGradeHandler(mock)

	body := []byte(`{"elements":[{"element_type":"teste","label":"Teste 1","weight_percentage":"60","raw_grade":"14.5"},{"element_type":"trabalho","label":"Trabalho","weight_percentage":"40"}]}`)
	c, w := newGinContext(http.MethodPut, "/grades/periods/p-1/elements", body)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	asStudent(c, "student-7")

	handler.ReplaceElements(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-1", mock.periodID)
	require.Len(t, mock.replaced.Elements, 2)
	require.NotNil(t, mock.replaced.Elements[0].RawGrade)
	assert.True(t, mock.replaced.Elements[0].RawGrade.Equal(decimal.RequireFromString("14.5")))
	assert.Nil(t, mock.replaced.Elements[1].RawGrade)

	var elements []models.EvaluationElement
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &elements))
	assert.Len(t, elements, 2)
}

func TestGradeHandlerCopyElements(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &gradeServiceMock{copyResult: &dto.CopyElementsResult{CopiedPeriods: 2}}
	handler := NewGradeHandler(mock)

	c, w := newGinContext(http.MethodPost, "/grades/periods/p-1/elements/copy", nil)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	asStudent(c, "student-7")

	handler.CopyElements(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"copied_periods":2}`, string(decodeEnvelope(t, w).Data))
}
