package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lusia-studio/grades-api/internal/models"
)

const (
	cfdColumns      = `id, student_id, subject_id, academic_year, cif_raw, cif_grade, exam_grade, exam_grade_raw, exam_weight, cfd_raw, cfd_grade, is_finalized`
	snapshotColumns = `id, student_id, academic_year, graduation_cohort_year, cfs_value, dges_value, formula_used, rule_version, cfd_snapshot, is_finalized, created_at`
)

// CFDRepository persists subject final classifications and CFS snapshots.
type CFDRepository struct {
	db *sqlx.DB
}

// NewCFDRepository constructs the repository.
func NewCFDRepository(db *sqlx.DB) *CFDRepository {
	return &CFDRepository{db: db}
}

// FindByID returns a CFD by identifier.
func (r *CFDRepository) FindByID(ctx context.Context, id string) (*models.SubjectCFD, error) {
	query := `SELECT ` + cfdColumns + ` FROM subject_cfds WHERE id = $1`
	var cfd models.SubjectCFD
	if err := r.db.GetContext(ctx, &cfd, query, id); err != nil {
		return nil, err
	}
	return &cfd, nil
}

// ListByStudent returns every CFD of a student keyed by subject and terminal year.
func (r *CFDRepository) ListByStudent(ctx context.Context, studentID string) (map[string]models.SubjectCFD, error) {
	query := `SELECT ` + cfdColumns + ` FROM subject_cfds WHERE student_id = $1`
	var cfds []models.SubjectCFD
	if err := r.db.SelectContext(ctx, &cfds, query, studentID); err != nil {
		return nil, fmt.Errorf("list cfds: %w", err)
	}
	result := make(map[string]models.SubjectCFD, len(cfds))
	for _, cfd := range cfds {
		result[CFDKey(cfd.SubjectID, cfd.AcademicYear)] = cfd
	}
	return result, nil
}

// CFDKey identifies a CFD by subject and terminal academic year.
func CFDKey(subjectID, academicYear string) string {
	return subjectID + "|" + academicYear
}

// Upsert writes the computed columns of a CFD. Finalized rows are left untouched.
func (r *CFDRepository) Upsert(ctx context.Context, cfd *models.SubjectCFD) error {
	if cfd.ID == "" {
		cfd.ID = uuid.NewString()
	}
	const query = `INSERT INTO subject_cfds (id, student_id, subject_id, academic_year, cif_raw, cif_grade, exam_grade, exam_grade_raw, exam_weight, cfd_raw, cfd_grade, is_finalized)
        VALUES (:id, :student_id, :subject_id, :academic_year, :cif_raw, :cif_grade, :exam_grade, :exam_grade_raw, :exam_weight, :cfd_raw, :cfd_grade, :is_finalized)
        ON CONFLICT (student_id, subject_id, academic_year)
        DO UPDATE SET cif_raw = EXCLUDED.cif_raw, cif_grade = EXCLUDED.cif_grade, exam_grade = EXCLUDED.exam_grade,
            exam_grade_raw = EXCLUDED.exam_grade_raw, exam_weight = EXCLUDED.exam_weight, cfd_raw = EXCLUDED.cfd_raw, cfd_grade = EXCLUDED.cfd_grade
        WHERE subject_cfds.is_finalized = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, cfd); err != nil {
		return fmt.Errorf("upsert cfd: %w", err)
	}
	return nil
}

// UpdateExam writes the exam columns and the resulting CFD of a non-finalized row.
func (r *CFDRepository) UpdateExam(ctx context.Context, cfd *models.SubjectCFD) error {
	const query = `UPDATE subject_cfds
        SET exam_grade = :exam_grade, exam_grade_raw = :exam_grade_raw, exam_weight = :exam_weight, cfd_raw = :cfd_raw, cfd_grade = :cfd_grade
        WHERE id = :id AND is_finalized = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, cfd); err != nil {
		return fmt.Errorf("update cfd exam: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent CFS snapshot of a student.
func (r *CFDRepository) LatestSnapshot(ctx context.Context, studentID string) (*models.CFSSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM cfs_snapshots WHERE student_id = $1 ORDER BY created_at DESC LIMIT 1`
	var snapshot models.CFSSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, studentID); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveSnapshot upserts the snapshot of an academic year and finalizes the
// listed CFDs in the same transaction.
func (r *CFDRepository) SaveSnapshot(ctx context.Context, snapshot *models.CFSSnapshot, cfdIDs []string) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	const upsert = `INSERT INTO cfs_snapshots (id, student_id, academic_year, graduation_cohort_year, cfs_value, dges_value, formula_used, rule_version, cfd_snapshot, is_finalized, created_at)
        VALUES (:id, :student_id, :academic_year, :graduation_cohort_year, :cfs_value, :dges_value, :formula_used, :rule_version, :cfd_snapshot, :is_finalized, :created_at)
        ON CONFLICT (student_id, academic_year)
        DO UPDATE SET graduation_cohort_year = EXCLUDED.graduation_cohort_year, cfs_value = EXCLUDED.cfs_value, dges_value = EXCLUDED.dges_value,
            formula_used = EXCLUDED.formula_used, rule_version = EXCLUDED.rule_version, cfd_snapshot = EXCLUDED.cfd_snapshot,
            is_finalized = EXCLUDED.is_finalized, created_at = EXCLUDED.created_at`
	if _, err := tx.NamedExecContext(ctx, upsert, snapshot); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert cfs snapshot: %w", err)
	}
	if len(cfdIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE subject_cfds SET is_finalized = TRUE WHERE id = ANY($1)`, pq.Array(cfdIDs)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("finalize cfds: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
