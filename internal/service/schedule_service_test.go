package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

type fakeScheduleRepo struct {
	schedules map[string]*models.ClassSchedule
	nextID    int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[string]*models.ClassSchedule)}
}

func (f *fakeScheduleRepo) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	if schedule.ID == "" {
		f.nextID++
		schedule.ID = fmt.Sprintf("sch-%d", f.nextID)
	}
	stored := *schedule
	f.schedules[schedule.ID] = &stored
	return nil
}

func (f *fakeScheduleRepo) UpdateDays(ctx context.Context, id string, days models.ScheduleDays) error {
	schedule, ok := f.schedules[id]
	if !ok {
		return sql.ErrNoRows
	}
	schedule.Days = days
	return nil
}

func (f *fakeScheduleRepo) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *schedule
	return &copied, nil
}

func (f *fakeScheduleRepo) FindByClassSection(ctx context.Context, classSectionID string) (*models.ClassSchedule, error) {
	var newest *models.ClassSchedule
	for _, schedule := range f.schedules {
		if schedule.ClassSectionID != classSectionID {
			continue
		}
		if newest == nil || schedule.CreatedAt.After(newest.CreatedAt) {
			newest = schedule
		}
	}
	if newest == nil {
		return nil, sql.ErrNoRows
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeScheduleRepo) ListAll(ctx context.Context) ([]models.ClassSchedule, error) {
	var result []models.ClassSchedule
	for _, schedule := range f.schedules {
		result = append(result, *schedule)
	}
	return result, nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	delete(f.schedules, id)
	return nil
}

func fullWeek() models.ScheduleDays {
	days := make(models.ScheduleDays, 0, models.SchoolWeekDays)
	for _, name := range models.Weekdays {
		days = append(days, models.ScheduleDay{Day: name, Periods: []models.Period{}})
	}
	return days
}

func TestScheduleCreateAndGet(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, nil)

	days := fullWeek()
	days[0].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1", TeacherName: "Mr Rao"}}

	schedule, err := svc.Create(context.Background(), CreateScheduleRequest{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             days,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)

	loaded, err := svc.Get(context.Background(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", loaded.Days[0].Periods[0].Subject)
}

func TestScheduleCreateRejectsShortWeek(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             fullWeek()[:5],
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleCreateRejectsWrongDayNames(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, nil)

	days := fullWeek()
	days[5].Day = "Sunday"
	_, err := svc.Create(context.Background(), CreateScheduleRequest{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             days,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleUpdateReplacesWholeGrid(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, nil, nil)

	schedule, err := svc.Create(context.Background(), CreateScheduleRequest{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             fullWeek(),
	})
	require.NoError(t, err)

	days := fullWeek()
	days[2].Periods = []models.Period{{StartTime: "10:00", EndTime: "11:00", Subject: "History", TeacherID: "t-2"}}
	updated, err := svc.Update(context.Background(), schedule.ID, UpdateScheduleRequest{Days: days})
	require.NoError(t, err)
	assert.Equal(t, "History", updated.Days[2].Periods[0].Subject)
	assert.Empty(t, updated.Days[0].Periods)
}

func TestScheduleUpdateNotFound(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateScheduleRequest{Days: fullWeek()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAddPeriodDefaults(t *testing.T) {
	days := fullWeek()

	days, err := AddPeriod(days, 0)
	require.NoError(t, err)
	require.Len(t, days[0].Periods, 1)
	assert.Equal(t, "08:00", days[0].Periods[0].StartTime)
	assert.Equal(t, "09:00", days[0].Periods[0].EndTime)

	// a second slot starts where the previous one ends
	days, err = AddPeriod(days, 0)
	require.NoError(t, err)
	require.Len(t, days[0].Periods, 2)
	assert.Equal(t, "09:00", days[0].Periods[1].StartTime)
	assert.Equal(t, "10:00", days[0].Periods[1].EndTime)
}

func TestAddPeriodClampsAtMidnight(t *testing.T) {
	days := fullWeek()
	days[0].Periods = []models.Period{{StartTime: "22:00", EndTime: "23:30"}}

	days, err := AddPeriod(days, 0)
	require.NoError(t, err)
	assert.Equal(t, "23:30", days[0].Periods[1].StartTime)
	assert.Equal(t, "23:59", days[0].Periods[1].EndTime)
}

func TestAddPeriodDayIndexOutOfRange(t *testing.T) {
	_, err := AddPeriod(fullWeek(), 6)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRemovePeriod(t *testing.T) {
	days := fullWeek()
	days[1].Periods = []models.Period{
		{StartTime: "08:00", EndTime: "09:00", Subject: "Math"},
		{StartTime: "09:00", EndTime: "10:00", Subject: "Science"},
	}

	days, err := RemovePeriod(days, 1, 0)
	require.NoError(t, err)
	require.Len(t, days[1].Periods, 1)
	assert.Equal(t, "Science", days[1].Periods[0].Subject)

	_, err = RemovePeriod(days, 1, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
