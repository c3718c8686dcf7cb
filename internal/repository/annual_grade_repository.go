package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lusia-studio/grades-api/internal/models"
)

// AnnualGradeRepository persists annual classifications.
type AnnualGradeRepository struct {
	db *sqlx.DB
}

// NewAnnualGradeRepository constructs the repository.
func NewAnnualGradeRepository(db *sqlx.DB) *AnnualGradeRepository {
	return &AnnualGradeRepository{db: db}
}

// FindByEnrollment returns the annual grade of an enrollment.
func (r *AnnualGradeRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.AnnualGrade, error) {
	const query = `SELECT id, enrollment_id, raw_annual, annual_grade, is_locked FROM annual_grades WHERE enrollment_id = $1 LIMIT 1`
	var grade models.AnnualGrade
	if err := r.db.GetContext(ctx, &grade, query, enrollmentID); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ListByEnrollments returns annual grades keyed by enrollment ID.
func (r *AnnualGradeRepository) ListByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string]models.AnnualGrade, error) {
	result := make(map[string]models.AnnualGrade, len(enrollmentIDs))
	if len(enrollmentIDs) == 0 {
		return result, nil
	}
	const query = `SELECT ag.id, ag.enrollment_id, ag.raw_annual, ag.annual_grade, ag.is_locked, e.subject_id, s.name AS subject_name
        FROM annual_grades ag
        JOIN subject_enrollments e ON e.id = ag.enrollment_id
        LEFT JOIN subjects s ON s.id = e.subject_id
        WHERE ag.enrollment_id = ANY($1)`
	var grades []models.AnnualGrade
	if err := r.db.SelectContext(ctx, &grades, query, pq.Array(enrollmentIDs)); err != nil {
		return nil, fmt.Errorf("list annual grades: %w", err)
	}
	for _, grade := range grades {
		result[grade.EnrollmentID] = grade
	}
	return result, nil
}

// Upsert inserts or updates the annual grade of an enrollment. A lock, once
// set, is never cleared by later writes.
func (r *AnnualGradeRepository) Upsert(ctx context.Context, grade *models.AnnualGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	const query = `INSERT INTO annual_grades (id, enrollment_id, raw_annual, annual_grade, is_locked)
        VALUES (:id, :enrollment_id, :raw_annual, :annual_grade, :is_locked)
        ON CONFLICT (enrollment_id)
        DO UPDATE SET raw_annual = EXCLUDED.raw_annual, annual_grade = EXCLUDED.annual_grade,
            is_locked = annual_grades.is_locked OR EXCLUDED.is_locked`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert annual grade: %w", err)
	}
	return nil
}

// DeleteByEnrollment removes the annual grade of an enrollment, if any.
func (r *AnnualGradeRepository) DeleteByEnrollment(ctx context.Context, enrollmentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM annual_grades WHERE enrollment_id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("delete annual grade: %w", err)
	}
	return nil
}
