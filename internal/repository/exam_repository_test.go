package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
)

func newExamRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestExamRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exams")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	exam := &models.Exam{
		Name:           "Unit Test 1",
		Subject:        "Math",
		ClassSectionID: "cs-1",
		TeacherID:      "t-1",
		MaxMarks:       50,
		Marks:          models.MarkList{{StudentID: "s-1", StudentName: "Asha", RollNo: "1", Marks: 42}},
	}
	err := repo.Create(context.Background(), exam)
	require.NoError(t, err)
	assert.NotEmpty(t, exam.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Exam{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExamRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "subject", "class_section_id", "class_section_name", "teacher_id", "teacher_name", "max_marks", "marks", "created_at", "updated_at"}).
		AddRow("ex-1", "Unit Test 1", "Math", "cs-1", "Grade 5 A", "t-1", "Mr Rao", 50, []byte(`[{"student_id":"s-1","student_name":"Asha","roll_no":"1","marks":42}]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE id = $1")).
		WithArgs("ex-1").
		WillReturnRows(rows)

	exam, err := repo.FindByID(context.Background(), "ex-1")
	require.NoError(t, err)
	assert.Equal(t, 50, exam.MaxMarks)
	require.Len(t, exam.Marks, 1)
	assert.Equal(t, 42.0, exam.Marks[0].Marks)
}

func TestExamRepositoryListByClassSection(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "subject", "class_section_id", "class_section_name", "teacher_id", "teacher_name", "max_marks", "marks", "created_at", "updated_at"}).
		AddRow("ex-1", "Unit Test 1", "Math", "cs-1", "Grade 5 A", "t-1", "Mr Rao", 50, []byte(`[]`), now, now).
		AddRow("ex-2", "Unit Test 2", "Science", "cs-1", "Grade 5 A", "t-2", "Ms Iyer", 100, []byte(`[]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE class_section_id = $1 ORDER BY created_at ASC")).
		WithArgs("cs-1").
		WillReturnRows(rows)

	exams, err := repo.ListByClassSection(context.Background(), "cs-1")
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, "Science", exams[1].Subject)
}
