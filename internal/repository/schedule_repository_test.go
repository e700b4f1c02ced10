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

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_schedules")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	schedule := &models.ClassSchedule{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days: models.ScheduleDays{
			{Day: "Monday", Periods: []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"}}},
		},
	}
	err := repo.Create(context.Background(), schedule)
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)
	assert.False(t, schedule.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateDaysNotFound(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_schedules SET days")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDays(context.Background(), "missing", models.ScheduleDays{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByClassSection(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "class_section_id", "class_section_name", "days", "created_at", "updated_at"}).
		AddRow("sch-2", "cs-1", "Grade 5 A", []byte(`[{"day":"Monday","periods":[]}]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_schedules WHERE class_section_id = $1 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("cs-1").
		WillReturnRows(rows)

	schedule, err := repo.FindByClassSection(context.Background(), "cs-1")
	require.NoError(t, err)
	assert.Equal(t, "sch-2", schedule.ID)
	require.Len(t, schedule.Days, 1)
	assert.Equal(t, "Monday", schedule.Days[0].Day)
}

func TestScheduleRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "class_section_id", "class_section_name", "days", "created_at", "updated_at"}).
		AddRow("sch-1", "cs-1", "Grade 5 A", []byte(`[]`), now, now).
		AddRow("sch-2", "cs-2", "Grade 5 B", []byte(`[]`), now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_schedules ORDER BY created_at ASC")).
		WillReturnRows(rows)

	schedules, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, "cs-2", schedules[1].ClassSectionID)
}
