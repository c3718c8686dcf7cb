package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/models"
)

var elementCols = []string{"id", "period_id", "element_type", "label", "icon", "weight_percentage", "raw_grade", "created_at", "student_id"}

func TestElementRepositoryReplaceKeepsOrder(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM evaluation_elements WHERE period_id = $1")).
		WithArgs("per-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO evaluation_elements").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO evaluation_elements").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	grade := decimal.RequireFromString("14.5")
	elements := []models.EvaluationElement{
		{ElementType: "teste", Label: "Teste 1", WeightPercentage: decimal.NewFromInt(60), RawGrade: &grade},
		{ElementType: "trabalho", Label: "Trabalho", WeightPercentage: decimal.NewFromInt(40)},
	}
	require.NoError(t, repo.Replace(context.Background(), "per-1", elements))

	assert.NotEmpty(t, elements[0].ID)
	assert.NotEqual(t, elements[0].ID, elements[1].ID)
	assert.Equal(t, "per-1", elements[1].PeriodID)
	assert.True(t, elements[1].CreatedAt.After(elements[0].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepositoryReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElementRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM evaluation_elements").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO evaluation_elements").WillReturnError(errors.New("check violation"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), "per-1", []models.EvaluationElement{{ElementType: "teste", Label: "T"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert element")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepositoryListByPeriodsGroups(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewElementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(elementCols).
		AddRow("el-1", "per-1", "teste", "Teste 1", nil, "50", "16", now, "stu-1").
		AddRow("el-2", "per-1", "teste", "Teste 2", nil, "50", nil, now, "stu-1").
		AddRow("el-3", "per-2", "oral", "Oral", "mic", "100", "12.25", now, "stu-1")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE el.period_id = ANY($1)")).WillReturnRows(rows)

	grouped, err := repo.ListByPeriods(context.Background(), []string{"per-1", "per-2"})
	require.NoError(t, err)
	require.Len(t, grouped["per-1"], 2)
	assert.Nil(t, grouped["per-1"][1].RawGrade)
	require.Len(t, grouped["per-2"], 1)
	require.NotNil(t, grouped["per-2"][0].RawGrade)
	assert.True(t, grouped["per-2"][0].RawGrade.Equal(decimal.RequireFromString("12.25")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestElementRepositoryListByPeriodsEmptySkipsQuery(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	grouped, err := NewElementRepository(db).ListByPeriods(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, grouped)
	require.NoError(t, mock.ExpectationsWereMet())
}
