package repository

import (
	"context"
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

var cfdCols = []string{"id", "student_id", "subject_id", "academic_year", "cif_raw", "cif_grade", "exam_grade", "exam_grade_raw", "exam_weight", "cfd_raw", "cfd_grade", "is_finalized"}

func TestCFDRepositoryListByStudentKeysBySubjectYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCFDRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subject_cfds WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows(cfdCols).
			AddRow("cfd-1", "stu-1", "mat", "2026-2027", "15", 15, 13, 127, "25", "14.425", 14, false))

	cfds, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	cfd, ok := cfds[CFDKey("mat", "2026-2027")]
	require.True(t, ok)
	assert.Equal(t, 127, *cfd.ExamGradeRaw)
	assert.True(t, cfd.ExamWeight.Equal(decimal.NewFromInt(25)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCFDRepositoryUpsertSkipsFinalized(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCFDRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE subject_cfds.is_finalized = FALSE")).WillReturnResult(sqlmock.NewResult(0, 1))

	cfd := &models.SubjectCFD{StudentID: "stu-1", SubjectID: "mat", AcademicYear: "2026-2027", CIFGrade: 15, CFDGrade: 15}
	require.NoError(t, repo.Upsert(context.Background(), cfd))
	assert.NotEmpty(t, cfd.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCFDRepositorySaveSnapshotFinalizesCFDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCFDRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cfs_snapshots")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subject_cfds SET is_finalized = TRUE WHERE id = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	dges := 150
	snapshot := &models.CFSSnapshot{
		StudentID:            "stu-1",
		AcademicYear:         "2026-2027",
		GraduationCohortYear: 2027,
		CFSValue:             decimal.RequireFromString("15.0"),
		DGESValue:            &dges,
		FormulaUsed:          grades.FormulaWeightedMean,
		RuleVersion:          grades.RuleVersion,
		CFDSnapshot:          models.CFDSnapshot{Formula: grades.FormulaWeightedMean, Cohort: 2027},
		IsFinalized:          true,
	}
	require.NoError(t, repo.SaveSnapshot(context.Background(), snapshot, []string{"cfd-1", "cfd-2"}))
	assert.NotEmpty(t, snapshot.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCFDRepositoryLatestSnapshotDecodesDocument(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCFDRepository(db)

	doc := []byte(`{"subjects":[{"subject_id":"mat","cfd_grade":15,"duration_years":3,"weight":3,"has_exam":true,"exam_grade":14,"affects_cfs":true}],"formula":"weighted_mean","cohort":2027}`)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cfs_snapshots WHERE student_id = $1 ORDER BY created_at DESC")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "academic_year", "graduation_cohort_year", "cfs_value", "dges_value", "formula_used", "rule_version", "cfd_snapshot", "is_finalized", "created_at"}).
			AddRow("snap-1", "stu-1", "2026-2027", 2027, "15.0", 150, "weighted_mean", grades.RuleVersion, doc, true, time.Now()))

	snapshot, err := repo.LatestSnapshot(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, snapshot.CFDSnapshot.Subjects, 1)
	assert.Equal(t, 3, snapshot.CFDSnapshot.Subjects[0].Weight)
	assert.Equal(t, grades.FormulaWeightedMean, snapshot.FormulaUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnualGradeRepositoryListByEnrollmentsPartial(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnualGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ag.enrollment_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "enrollment_id", "raw_annual", "annual_grade", "is_locked", "subject_id", "subject_name"}).
			AddRow("ag-1", "enr-1", "14.6", 15, false, "mat", "Matemática A"))

	annual, err := repo.ListByEnrollments(context.Background(), []string{"enr-1", "enr-2"})
	require.NoError(t, err)
	require.Contains(t, annual, "enr-1")
	assert.NotContains(t, annual, "enr-2")
	assert.Equal(t, 15, annual["enr-1"].AnnualGrade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnualGradeRepositoryUpsertKeepsLock(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnualGradeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("is_locked = annual_grades.is_locked OR EXCLUDED.is_locked")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), &models.AnnualGrade{EnrollmentID: "enr-1", AnnualGrade: 14}))
	require.NoError(t, mock.ExpectationsWereMet())
}
