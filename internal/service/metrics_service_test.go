package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/grades/cfs", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/grades/cfs", http.StatusOK, 40*time.Millisecond)
	metrics.ObserveDBQuery("grade_board", 10*time.Millisecond)
	metrics.RecordGradeCalculation(StagePeriod)
	metrics.RecordGradeCalculation(StagePeriod)
	metrics.RecordGradeCalculation(StageCFS)
	metrics.RecordBoundaryReview()

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30.0, snapshot.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
	assert.Equal(t, uint64(2), snapshot.GradeCalculations[StagePeriod])
	assert.Equal(t, uint64(1), snapshot.GradeCalculations[StageCFS])
	assert.Equal(t, uint64(1), snapshot.BoundaryReviews)
	assert.Greater(t, snapshot.Goroutines, 0)
}

func TestMetricsServiceHandlerExposesGradeCounters(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordGradeCalculation(StageAnnual)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `grade_calculations_total{stage="annual"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordGradeCalculation(StageCFD)
	metrics.RecordBoundaryReview()
	assert.Empty(t, metrics.Snapshot().GradeCalculations)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
