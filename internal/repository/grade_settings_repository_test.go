package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/models"
	"github.com/lusia-studio/grades-api/pkg/grades"
)

var settingsCols = []string{"id", "student_id", "academic_year", "education_level", "graduation_cohort_year", "regime", "course", "period_weights", "is_locked", "created_at", "updated_at"}

func TestGradeSettingsRepositoryFindByYearDecodesWeights(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeSettingsRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(settingsCols).
		AddRow("set-1", "stu-1", "2025-2026", "secundario", 2027, "trimestral", "ciencias_tecnologias", []byte(`["33.33","33.33",33.34]`), false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_settings WHERE student_id = $1 AND academic_year = $2")).
		WithArgs("stu-1", "2025-2026").
		WillReturnRows(rows)

	settings, err := repo.FindByYear(context.Background(), "stu-1", "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, grades.LevelSecundario, settings.EducationLevel)
	require.Len(t, settings.PeriodWeights, 3)
	assert.True(t, settings.PeriodWeights[2].Equal(decimal.RequireFromString("33.34")))
	assert.True(t, grades.ValidateWeights(settings.PeriodWeights))
	require.NotNil(t, settings.GraduationCohortYear)
	assert.Equal(t, 2027, *settings.GraduationCohortYear)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeSettingsRepositoryFindByYearMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM grade_settings")).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByYear(context.Background(), "stu-1", "2030-2031")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradeSettingsRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeSettingsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grade_settings")).WillReturnResult(sqlmock.NewResult(1, 1))

	settings := &models.GradeSettings{
		StudentID:      "stu-1",
		AcademicYear:   "2025-2026",
		EducationLevel: grades.LevelSecundario,
		PeriodWeights:  models.PeriodWeights{decimal.NewFromInt(50), decimal.NewFromInt(50)},
	}
	require.NoError(t, repo.Create(context.Background(), settings))
	assert.NotEmpty(t, settings.ID)
	assert.False(t, settings.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeSettingsRepositoryLock(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeSettingsRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE grade_settings SET is_locked = TRUE")).
		WithArgs("set-1", "stu-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(settingsCols).
			AddRow("set-1", "stu-1", "2025-2026", "secundario", nil, nil, nil, []byte(`[50,50]`), true, now, now))

	settings, err := repo.Lock(context.Background(), "set-1", "stu-1")
	require.NoError(t, err)
	assert.True(t, settings.IsLocked)
	require.NoError(t, mock.ExpectationsWereMet())
}
