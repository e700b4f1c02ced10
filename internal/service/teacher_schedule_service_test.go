package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

func scheduleWith(id, classID, className string, dayIndex int, periods ...models.Period) models.ClassSchedule {
	days := fullWeek()
	days[dayIndex].Periods = periods
	return models.ClassSchedule{
		ID:               id,
		ClassSectionID:   classID,
		ClassSectionName: className,
		Days:             days,
	}
}

func TestProjectWeekCollectsAcrossClasses(t *testing.T) {
	schedules := []models.ClassSchedule{
		scheduleWith("sch-1", "cs-1", "Grade 5 A", 0,
			models.Period{StartTime: "10:00", EndTime: "11:00", Subject: "Math", TeacherID: "t-1"},
		),
		scheduleWith("sch-2", "cs-2", "Grade 6 B", 0,
			models.Period{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"},
			models.Period{StartTime: "09:00", EndTime: "10:00", Subject: "Science", TeacherID: "t-2"},
		),
	}

	view := ProjectWeek("t-1", schedules)
	require.Len(t, view.Days, models.SchoolWeekDays)

	monday := view.Days[0]
	assert.Equal(t, "Monday", monday.Day)
	require.Len(t, monday.Periods, 2)
	// sorted by start time across source classes
	assert.Equal(t, "08:00", monday.Periods[0].StartTime)
	assert.Equal(t, "cs-2", monday.Periods[0].ClassSectionID)
	assert.Equal(t, "Grade 6 B", monday.Periods[0].ClassSectionName)
	assert.Equal(t, "sch-2", monday.Periods[0].SourceScheduleID)
	assert.Equal(t, "10:00", monday.Periods[1].StartTime)
	assert.Equal(t, "cs-1", monday.Periods[1].ClassSectionID)
}

func TestProjectWeekEmptyDaysStayInitialized(t *testing.T) {
	view := ProjectWeek("t-9", nil)
	require.Len(t, view.Days, models.SchoolWeekDays)
	for i, day := range view.Days {
		assert.Equal(t, models.Weekdays[i], day.Day)
		assert.NotNil(t, day.Periods)
		assert.Empty(t, day.Periods)
	}
}

func TestProjectWeekIgnoresOtherTeachers(t *testing.T) {
	schedules := []models.ClassSchedule{
		scheduleWith("sch-1", "cs-1", "Grade 5 A", 3,
			models.Period{StartTime: "08:00", EndTime: "09:00", Subject: "Art", TeacherID: "t-2"},
		),
	}
	view := ProjectWeek("t-1", schedules)
	for _, day := range view.Days {
		assert.Empty(t, day.Periods)
	}
}

func TestProjectForTeacherRequiresID(t *testing.T) {
	svc := NewTeacherScheduleService(newFakeScheduleRepo(), nil)
	_, err := svc.ProjectForTeacher(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProjectForTeacherReflectsLatestWrites(t *testing.T) {
	repo := newFakeScheduleRepo()
	scheduleSvc := NewScheduleService(repo, nil, nil)
	projector := NewTeacherScheduleService(repo, nil)

	days := fullWeek()
	days[0].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"}}
	schedule, err := scheduleSvc.Create(context.Background(), CreateScheduleRequest{
		ClassSectionID:   "cs-1",
		ClassSectionName: "Grade 5 A",
		Days:             days,
	})
	require.NoError(t, err)

	view, err := projector.ProjectForTeacher(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, view.Days[0].Periods, 1)

	// reassigning the period is visible on the next projection, no cache
	days = fullWeek()
	days[0].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-2"}}
	_, err = scheduleSvc.Update(context.Background(), schedule.ID, UpdateScheduleRequest{Days: days})
	require.NoError(t, err)

	view, err = projector.ProjectForTeacher(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Empty(t, view.Days[0].Periods)
}
