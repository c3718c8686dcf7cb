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

const enrollmentSelect = `SELECT e.id, e.student_id, e.subject_id, e.academic_year, e.year_level, e.settings_id, e.is_active, e.is_exam_candidate, e.created_at, e.updated_at,
        s.name AS subject_name, s.slug AS subject_slug, s.color AS subject_color, s.icon AS subject_icon, s.affects_cfs, s.has_national_exam
        FROM subject_enrollments e
        LEFT JOIN subjects s ON s.id = e.subject_id`

// EnrollmentRepository handles persistence of subject enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByYear returns a student's enrollments for an academic year in creation order.
func (r *EnrollmentRepository) ListByYear(ctx context.Context, studentID, academicYear string) ([]models.SubjectEnrollment, error) {
	query := enrollmentSelect + ` WHERE e.student_id = $1 AND e.academic_year = $2 ORDER BY e.created_at ASC`
	var enrollments []models.SubjectEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListActiveByStudent returns every active enrollment across all years, oldest year first.
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.SubjectEnrollment, error) {
	query := enrollmentSelect + ` WHERE e.student_id = $1 AND e.is_active = TRUE ORDER BY e.academic_year ASC, e.created_at ASC`
	var enrollments []models.SubjectEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.SubjectEnrollment, error) {
	query := enrollmentSelect + ` WHERE e.id = $1`
	var enrollment models.SubjectEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindBySubjectYear returns the enrollment of a subject in an academic year.
func (r *EnrollmentRepository) FindBySubjectYear(ctx context.Context, studentID, subjectID, academicYear string) (*models.SubjectEnrollment, error) {
	query := enrollmentSelect + ` WHERE e.student_id = $1 AND e.subject_id = $2 AND e.academic_year = $3 LIMIT 1`
	var enrollment models.SubjectEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, subjectID, academicYear); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CreateWithPeriods inserts an enrollment together with periodCount empty periods.
func (r *EnrollmentRepository) CreateWithPeriods(ctx context.Context, enrollment *models.SubjectEnrollment, periodCount int) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	const insertEnrollment = `INSERT INTO subject_enrollments (id, student_id, subject_id, academic_year, year_level, settings_id, is_active, is_exam_candidate, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :academic_year, :year_level, :settings_id, :is_active, :is_exam_candidate, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertEnrollment, enrollment); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create enrollment: %w", err)
	}
	const insertPeriod = `INSERT INTO subject_periods (id, enrollment_id, period_number) VALUES ($1, $2, $3)`
	for n := 1; n <= periodCount; n++ {
		if _, err := tx.ExecContext(ctx, insertPeriod, uuid.NewString(), enrollment.ID, n); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create period %d: %w", n, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// UpdateFlags changes the active and exam candidate flags. Nil flags are left
// untouched. It returns sql.ErrNoRows when the enrollment does not belong to the student.
func (r *EnrollmentRepository) UpdateFlags(ctx context.Context, id, studentID string, isActive, isExamCandidate *bool) error {
	const query = `UPDATE subject_enrollments
        SET is_active = COALESCE($3, is_active), is_exam_candidate = COALESCE($4, is_exam_candidate), updated_at = $5
        WHERE id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, studentID, isActive, isExamCandidate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
