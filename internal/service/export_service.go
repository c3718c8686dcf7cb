package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
	"github.com/lusia-studio/grades-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"Disciplina", "Anos", "Classificações anuais", "CIF", "Exame", "Peso do exame", "CFD", "Conta para CFS"}

type dashboardProvider interface {
	Dashboard(ctx context.Context, studentID string) (*models.CFSDashboard, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered document ready to be streamed to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the CFS dashboard as a downloadable document.
type ExportService struct {
	dashboards dashboardProvider
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(dashboards dashboardProvider, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{dashboards: dashboards, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportCFS renders the student's CFS dashboard in the requested format.
func (s *ExportService) ExportCFS(ctx context.Context, studentID, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clonef(appErrors.ErrValidation, "unsupported export format %q", format)
	}

	dashboard, err := s.dashboards.Dashboard(ctx, studentID)
	if err != nil {
		return nil, err
	}
	dataset := buildCFSDataset(dashboard)

	var payload []byte
	contentType := "text/csv; charset=utf-8"
	switch format {
	case ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(dataset, "Classificação Final de Secundário")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	filename := fmt.Sprintf("cfs_%s.%s", s.now().UTC().Format("20060102"), format)
	s.logger.Info("cfs exported", zap.String("student_id", studentID), zap.String("format", format), zap.Int("bytes", len(payload)))
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildCFSDataset(dashboard *models.CFSDashboard) export.Dataset {
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(dashboard.CFDs))}
	for _, cfd := range dashboard.CFDs {
		name := cfd.SubjectID
		if cfd.SubjectName != nil {
			name = *cfd.SubjectName
		}
		annual := make([]string, len(cfd.AnnualGrades))
		for i, grade := range cfd.AnnualGrades {
			annual[i] = fmt.Sprintf("%s: %d", grade.YearLevel, grade.AnnualGrade)
		}
		exam := ""
		if cfd.ExamGrade != nil {
			exam = strconv.Itoa(*cfd.ExamGrade)
		}
		counts := "Não"
		if cfd.AffectsCFS {
			counts = "Sim"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Disciplina":            name,
			"Anos":                  strconv.Itoa(cfd.DurationYears),
			"Classificações anuais": strings.Join(annual, ", "),
			"CIF":                   strconv.Itoa(cfd.CIFGrade),
			"Exame":                 exam,
			"Peso do exame":         ExamWeightPercent(cfd.ExamWeight),
			"CFD":                   strconv.Itoa(cfd.CFDGrade),
			"Conta para CFS":        counts,
		})
	}

	if dashboard.ComputedCFS != nil {
		dataset.Summary = append(dataset.Summary, export.SummaryLine{Label: "CFS", Value: decimalPT(*dashboard.ComputedCFS)})
	}
	if dashboard.ComputedDGES != nil {
		dataset.Summary = append(dataset.Summary, export.SummaryLine{Label: "Nota DGES", Value: strconv.Itoa(*dashboard.ComputedDGES)})
	}
	if dashboard.Snapshot != nil {
		dataset.Summary = append(dataset.Summary,
			export.SummaryLine{Label: "CFS registada", Value: decimalPT(dashboard.Snapshot.CFSValue)},
			export.SummaryLine{Label: "Fórmula", Value: string(dashboard.Snapshot.FormulaUsed)},
		)
	}
	return dataset
}

// decimalPT formats a one-decimal value with a decimal comma.
func decimalPT(v decimal.Decimal) string {
	return strings.Replace(v.StringFixed(1), ".", ",", 1)
}
