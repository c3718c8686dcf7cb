package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lusia-studio/grades-api/internal/models"
)

const periodSelect = `SELECT p.id, p.enrollment_id, p.period_number, p.raw_calculated, p.calculated_grade, p.pauta_grade,
        p.is_overridden, p.override_reason, p.qualitative_grade, p.is_locked, e.student_id
        FROM subject_periods p
        JOIN subject_enrollments e ON e.id = p.enrollment_id`

// PeriodRepository persists the period grades of enrollments.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindByID returns a period with the owning student's ID.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.SubjectPeriod, error) {
	query := periodSelect + ` WHERE p.id = $1`
	var period models.SubjectPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// ListByEnrollment returns the periods of an enrollment ordered by number.
func (r *PeriodRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.SubjectPeriod, error) {
	query := periodSelect + ` WHERE p.enrollment_id = $1 ORDER BY p.period_number ASC`
	var periods []models.SubjectPeriod
	if err := r.db.SelectContext(ctx, &periods, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// ListByEnrollments returns periods keyed by enrollment ID.
func (r *PeriodRepository) ListByEnrollments(ctx context.Context, enrollmentIDs []string) (map[string][]models.SubjectPeriod, error) {
	result := make(map[string][]models.SubjectPeriod, len(enrollmentIDs))
	if len(enrollmentIDs) == 0 {
		return result, nil
	}
	query := periodSelect + ` WHERE p.enrollment_id = ANY($1) ORDER BY p.enrollment_id, p.period_number ASC`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(enrollmentIDs))
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var period models.SubjectPeriod
		if err := rows.StructScan(&period); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		result[period.EnrollmentID] = append(result[period.EnrollmentID], period)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return result, nil
}

// Update writes the grade columns of a period.
func (r *PeriodRepository) Update(ctx context.Context, period *models.SubjectPeriod) error {
	const query = `UPDATE subject_periods
        SET raw_calculated = :raw_calculated, calculated_grade = :calculated_grade, pauta_grade = :pauta_grade,
            is_overridden = :is_overridden, override_reason = :override_reason, qualitative_grade = :qualitative_grade
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}
