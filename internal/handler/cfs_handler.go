package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lusia-studio/grades-api/internal/dto"
	"github.com/lusia-studio/grades-api/internal/models"
	"github.com/lusia-studio/grades-api/internal/service"
	"github.com/lusia-studio/grades-api/pkg/response"
)

type cfsService interface {
	Dashboard(ctx context.Context, studentID string) (*models.CFSDashboard, error)
	UpdateExamGrade(ctx context.Context, studentID, cfdID string, req dto.ExamGradeRequest) (*models.SubjectCFD, error)
	UpdateBasicoExamGrade(ctx context.Context, studentID, cfdID string, req dto.BasicoExamGradeRequest) (*models.SubjectCFD, error)
	CreateSnapshot(ctx context.Context, studentID string, req dto.CFSSnapshotRequest) (*models.CFSSnapshot, error)
}

type cfsExporter interface {
	ExportCFS(ctx context.Context, studentID, format string) (*service.ExportResult, error)
}

// CFSHandler serves the final classification dashboard, exam entry and exports.
type CFSHandler struct {
	cfs      cfsService
	exporter cfsExporter
}

// NewCFSHandler constructs handler.
func NewCFSHandler(cfs cfsService, exporter cfsExporter) *CFSHandler {
	return &CFSHandler{cfs: cfs, exporter: exporter}
}

// Dashboard godoc
// @Summary CFD per subject and CFS preview
// @Tags CFS
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades/cfs [get]
func (h *CFSHandler) Dashboard(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	dashboard, err := h.cfs.Dashboard(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Export godoc
// @Summary Export the CFS dashboard
// @Tags CFS
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /grades/cfs/export [get]
func (h *CFSHandler) Export(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	result, err := h.exporter.ExportCFS(c.Request.Context(), studentID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// UpdateExam godoc
// @Summary Record a national exam grade
// @Tags CFS
// @Accept json
// @Produce json
// @Param id path string true "CFD ID"
// @Param payload body dto.ExamGradeRequest true "Exam grade on the 0-200 scale"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades/cfd/{id}/exam [patch]
func (h *CFSHandler) UpdateExam(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.ExamGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	cfd, err := h.cfs.UpdateExamGrade(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfd, nil)
}

// UpdateBasicoExam godoc
// @Summary Record a Prova Final percentage
// @Tags CFS
// @Accept json
// @Produce json
// @Param id path string true "CFD ID"
// @Param payload body dto.BasicoExamGradeRequest true "Exam percentage"
// @Success 200 {object} response.Envelope
// @Router /grades/cfd/{id}/basico-exam [patch]
func (h *CFSHandler) UpdateBasicoExam(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.BasicoExamGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	cfd, err := h.cfs.UpdateBasicoExamGrade(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfd, nil)
}

// Snapshot godoc
// @Summary Finalise the CFS
// @Tags CFS
// @Accept json
// @Produce json
// @Param payload body dto.CFSSnapshotRequest true "Snapshot payload"
// @Success 201 {object} response.Envelope
// @Router /grades/cfs/snapshot [post]
func (h *CFSHandler) Snapshot(c *gin.Context) {
	studentID, ok := currentStudent(c)
	if !ok {
		return
	}
	var req dto.CFSSnapshotRequest
	if !bindJSON(c, &req) {
		return
	}
	snapshot, err := h.cfs.CreateSnapshot(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snapshot)
}
