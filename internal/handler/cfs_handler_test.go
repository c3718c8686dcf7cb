package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/dto"
	"github.com/lusia-studio/grades-api/internal/models"
	"github.com/lusia-studio/grades-api/internal/service"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
)

type cfsServiceMock struct {
	cfsService

	studentID string
	cfdID     string
	exam      dto.ExamGradeRequest
	cfd       *models.SubjectCFD
	err       error
	snapshot  *models.CFSSnapshot
}

func (m *cfsServiceMock) Dashboard(ctx context.Context, studentID string) (*models.CFSDashboard, error) {
	m.studentID = studentID
	return &models.CFSDashboard{CFDs: []models.SubjectCFD{{ID: "cfd-1", CFDGrade: 15}}}, m.err
}

func (m *cfsServiceMock) UpdateExamGrade(ctx context.Context, studentID, cfdID string, req dto.ExamGradeRequest) (*models.SubjectCFD, error) {
	m.studentID, m.cfdID, m.exam = studentID, cfdID, req
	return m.cfd, m.err
}

func (m *cfsServiceMock) CreateSnapshot(ctx context.Context, studentID string, req dto.CFSSnapshotRequest) (*models.CFSSnapshot, error) {
	m.studentID = studentID
	return m.snapshot, m.err
}

type exporterMock struct {
	format string
	result *service.ExportResult
	err    error
}

func (m *exporterMock) ExportCFS(ctx context.Context, studentID, format string) (*service.ExportResult, error) {
	m.format = format
	return m.result, m.err
}

func TestCFSHandlerDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &cfsServiceMock{}
	handler := NewCFSHandler(mock, &exporterMock{})

	c, w := newGinContext(http.MethodGet, "/grades/cfs", nil)
	asStudent(c, "student-7")

	handler.Dashboard(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-7", mock.studentID)

	var dashboard models.CFSDashboard
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &dashboard))
	require.Len(t, dashboard.CFDs, 1)
	assert.Equal(t, 15, dashboard.CFDs[0].CFDGrade)
}

func TestCFSHandlerExportSetsAttachmentHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := &exporterMock{result: &service.ExportResult{
		Filename:    "cfs_20250701.csv",
		ContentType: "text/csv; charset=utf-8",
		Payload:     []byte("Disciplina;CFD\n"),
	}}
	handler := NewCFSHandler(&cfsServiceMock{}, exporter)

	c, w := newGinContext(http.MethodGet, "/grades/cfs/export?format=csv", nil)
	asStudent(c, "student-7")

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="cfs_20250701.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Disciplina;CFD\n", w.Body.String())
}

func TestCFSHandlerExportError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCFSHandler(&cfsServiceMock{}, &exporterMock{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")})

	c, w := newGinContext(http.MethodGet, "/grades/cfs/export?format=xlsx", nil)
	asStudent(c, "student-7")

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestCFSHandlerUpdateExam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &cfsServiceMock{cfd: &models.SubjectCFD{ID: "cfd-1", CFDGrade: 16}}
	handler := NewCFSHandler(mock, &exporterMock{})

	c, w := newGinContext(http.MethodPatch, "/grades/cfd/cfd-1/exam", []byte(`{"exam_grade_raw":156}`))
	c.Params = gin.Params{{Key: "id", Value: "cfd-1"}}
	asStudent(c, "student-7")

	handler.UpdateExam(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cfd-1", mock.cfdID)
	require.NotNil(t, mock.exam.ExamGradeRaw)
	assert.Equal(t, 156, *mock.exam.ExamGradeRaw)
}

func TestCFSHandlerUpdateExamFinalized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCFSHandler(&cfsServiceMock{err: appErrors.ErrFinalized}, &exporterMock{})

	c, w := newGinContext(http.MethodPatch, "/grades/cfd/cfd-1/exam", []byte(`{"exam_grade_raw":120}`))
	c.Params = gin.Params{{Key: "id", Value: "cfd-1"}}
	asStudent(c, "student-7")

	handler.UpdateExam(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FINALIZED", decodeEnvelope(t, w).Error.Code)
}

func TestCFSHandlerSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &cfsServiceMock{snapshot: &models.CFSSnapshot{ID: "snap-1", CFSValue: decimal.RequireFromString("14.5")}}
	handler := NewCFSHandler(mock, &exporterMock{})

	c, w := newGinContext(http.MethodPost, "/grades/cfs/snapshot", []byte(`{"academic_year":"2026-2027"}`))
	asStudent(c, "student-7")

	handler.Snapshot(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var snapshot models.CFSSnapshot
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &snapshot))
	assert.Equal(t, "snap-1", snapshot.ID)
	assert.True(t, snapshot.CFSValue.Equal(decimal.RequireFromString("14.5")))
}
