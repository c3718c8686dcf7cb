package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lusia-studio/grades-api/internal/models"
)

const elementSelect = `SELECT el.id, el.period_id, el.element_type, el.label, el.icon, el.weight_percentage, el.raw_grade, el.created_at, e.student_id
        FROM evaluation_elements el
        JOIN subject_periods p ON p.id = el.period_id
        JOIN subject_enrollments e ON e.id = p.enrollment_id`

// ElementRepository persists the evaluation elements of periods.
type ElementRepository struct {
	db *sqlx.DB
}

// NewElementRepository constructs the repository.
func NewElementRepository(db *sqlx.DB) *ElementRepository {
	return &ElementRepository{db: db}
}

// FindByID returns an element with the owning student's ID.
func (r *ElementRepository) FindByID(ctx context.Context, id string) (*models.EvaluationElement, error) {
	query := elementSelect + ` WHERE el.id = $1`
	var element models.EvaluationElement
	if err := r.db.GetContext(ctx, &element, query, id); err != nil {
		return nil, err
	}
	return &element, nil
}

// ListByPeriod returns a period's elements in insertion order.
func (r *ElementRepository) ListByPeriod(ctx context.Context, periodID string) ([]models.EvaluationElement, error) {
	query := elementSelect + ` WHERE el.period_id = $1 ORDER BY el.created_at ASC`
	var elements []models.EvaluationElement
	if err := r.db.SelectContext(ctx, &elements, query, periodID); err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	return elements, nil
}

// ListByPeriods returns elements keyed by period ID.
func (r *ElementRepository) ListByPeriods(ctx context.Context, periodIDs []string) (map[string][]models.EvaluationElement, error) {
	result := make(map[string][]models.EvaluationElement, len(periodIDs))
	if len(periodIDs) == 0 {
		return result, nil
	}
	query := elementSelect + ` WHERE el.period_id = ANY($1) ORDER BY el.period_id, el.created_at ASC`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(periodIDs))
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var element models.EvaluationElement
		if err := rows.StructScan(&element); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		result[element.PeriodID] = append(result[element.PeriodID], element)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}
	return result, nil
}

// Replace swaps every element of a period for the provided set in one transaction.
func (r *ElementRepository) Replace(ctx context.Context, periodID string, elements []models.EvaluationElement) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin elements tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluation_elements WHERE period_id = $1`, periodID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete elements: %w", err)
	}
	const query = `INSERT INTO evaluation_elements (id, period_id, element_type, label, icon, weight_percentage, raw_grade, created_at)
        VALUES (:id, :period_id, :element_type, :label, :icon, :weight_percentage, :raw_grade, :created_at)`
	now := time.Now().UTC()
	for i := range elements {
		elements[i].ID = uuid.NewString()
		elements[i].PeriodID = periodID
		// Offsets keep the submitted order when listing by created_at.
		elements[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		if _, err := tx.NamedExecContext(ctx, query, elements[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert element: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit elements: %w", err)
	}
	return nil
}

// UpdateGrade sets or clears the raw grade of an element.
func (r *ElementRepository) UpdateGrade(ctx context.Context, id string, rawGrade *decimal.Decimal) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE evaluation_elements SET raw_grade = $2 WHERE id = $1`, id, rawGrade); err != nil {
		return fmt.Errorf("update element grade: %w", err)
	}
	return nil
}
