package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/models"
)

func TestAnnualGradeRepositoryUpsertNeverUnlocks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnualGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("is_locked = annual_grades.is_locked OR EXCLUDED.is_locked")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	raw := decimal.RequireFromString("16.1")
	grade := &models.AnnualGrade{EnrollmentID: "enr-1", RawAnnual: &raw, AnnualGrade: 16}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnualGradeRepositoryListByEnrollments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnualGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "raw_annual", "annual_grade", "is_locked", "subject_id", "subject_name"}).
		AddRow("ag-1", "enr-1", "15.6", 16, false, "mat", "Matemática A").
		AddRow("ag-2", "enr-2", nil, 14, true, "por", "Português")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ag.enrollment_id = ANY($1)")).WillReturnRows(rows)

	grades, err := repo.ListByEnrollments(context.Background(), []string{"enr-1", "enr-2"})
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, 16, grades["enr-1"].AnnualGrade)
	assert.True(t, grades["enr-2"].IsLocked)
	assert.Nil(t, grades["enr-2"].RawAnnual)
	require.NotNil(t, grades["enr-1"].SubjectName)
	assert.Equal(t, "Matemática A", *grades["enr-1"].SubjectName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnualGradeRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM annual_grades WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewAnnualGradeRepository(db).DeleteByEnrollment(context.Background(), "enr-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
