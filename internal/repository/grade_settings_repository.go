package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lusia-studio/grades-api/internal/models"
)

const gradeSettingsColumns = `id, student_id, academic_year, education_level, graduation_cohort_year, regime, course, period_weights, is_locked, created_at, updated_at`

// GradeSettingsRepository persists per-year grading configuration.
type GradeSettingsRepository struct {
	db *sqlx.DB
}

// NewGradeSettingsRepository constructs the repository.
func NewGradeSettingsRepository(db *sqlx.DB) *GradeSettingsRepository {
	return &GradeSettingsRepository{db: db}
}

// FindByYear returns the student's settings for an academic year.
func (r *GradeSettingsRepository) FindByYear(ctx context.Context, studentID, academicYear string) (*models.GradeSettings, error) {
	query := `SELECT ` + gradeSettingsColumns + ` FROM grade_settings WHERE student_id = $1 AND academic_year = $2 LIMIT 1`
	var settings models.GradeSettings
	if err := r.db.GetContext(ctx, &settings, query, studentID, academicYear); err != nil {
		return nil, err
	}
	return &settings, nil
}

// FindByID returns settings by identifier.
func (r *GradeSettingsRepository) FindByID(ctx context.Context, id string) (*models.GradeSettings, error) {
	query := `SELECT ` + gradeSettingsColumns + ` FROM grade_settings WHERE id = $1`
	var settings models.GradeSettings
	if err := r.db.GetContext(ctx, &settings, query, id); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Latest returns the settings of the most recent academic year.
func (r *GradeSettingsRepository) Latest(ctx context.Context, studentID string) (*models.GradeSettings, error) {
	query := `SELECT ` + gradeSettingsColumns + ` FROM grade_settings WHERE student_id = $1 ORDER BY academic_year DESC LIMIT 1`
	var settings models.GradeSettings
	if err := r.db.GetContext(ctx, &settings, query, studentID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create inserts a settings row.
func (r *GradeSettingsRepository) Create(ctx context.Context, settings *models.GradeSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	const query = `INSERT INTO grade_settings (id, student_id, academic_year, education_level, graduation_cohort_year, regime, course, period_weights, is_locked, created_at, updated_at)
        VALUES (:id, :student_id, :academic_year, :education_level, :graduation_cohort_year, :regime, :course, :period_weights, :is_locked, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("create grade settings: %w", err)
	}
	return nil
}

// Lock marks settings as locked. It returns sql.ErrNoRows when the settings do
// not belong to the student.
func (r *GradeSettingsRepository) Lock(ctx context.Context, id, studentID string) (*models.GradeSettings, error) {
	query := `UPDATE grade_settings SET is_locked = TRUE, updated_at = $3 WHERE id = $1 AND student_id = $2 RETURNING ` + gradeSettingsColumns
	var settings models.GradeSettings
	if err := r.db.GetContext(ctx, &settings, query, id, studentID, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock grade settings: %w", err)
	}
	return &settings, nil
}
