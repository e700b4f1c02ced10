package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
)

type fakeClassLister struct {
	sections []models.ClassSection
}

func (f *fakeClassLister) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSection, int, error) {
	return f.sections, len(f.sections), nil
}

func testDashboardService(t *testing.T) (*DashboardService, *fakeAttendanceRepo, *fakeScheduleRepo, *fakeExamRepo) {
	t.Helper()
	attendanceRepo := newFakeAttendanceRepo()
	scheduleRepo := newFakeScheduleRepo()
	examRepo := newFakeExamRepo()
	classes := testClassReader()

	attendanceSvc := NewAttendanceService(attendanceRepo, classes, nil, nil)
	examSvc := NewExamService(examRepo, classes, nil, nil)
	projector := NewTeacherScheduleService(scheduleRepo, nil)
	cacheSvc := NewCacheService(nil, nil, time.Minute, nil, false)

	svc := NewDashboardService(DashboardServiceParams{
		Classes:    &fakeClassLister{sections: []models.ClassSection{{ID: "cs-1", Name: "Grade 5 A"}}},
		Attendance: attendanceSvc,
		Timetable:  projector,
		Exams:      examSvc,
		Cache:      cacheSvc,
	})
	return svc, attendanceRepo, scheduleRepo, examRepo
}

func TestPrincipalDashboard(t *testing.T) {
	svc, attendanceRepo, _, _ := testDashboardService(t)
	attendanceRepo.sessions["a"] = &models.AttendanceSession{
		ID: "a", ClassSectionID: "cs-1",
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PresentCount: 3, AbsentCount: 1,
	}

	payload, cached, err := svc.Principal(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, payload.ClassSectionCount)
	require.Len(t, payload.ClassAttendance, 1)
	assert.InDelta(t, 75.0, payload.ClassAttendance[0].AverageAttendance, 0.0001)
}

func TestTeacherDashboardPicksTodayPeriods(t *testing.T) {
	svc, attendanceRepo, scheduleRepo, examRepo := testDashboardService(t)

	days := fullWeek()
	days[0].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"}}
	require.NoError(t, scheduleRepo.Create(context.Background(), &models.ClassSchedule{
		ClassSectionID: "cs-1", ClassSectionName: "Grade 5 A", Days: days,
	}))
	attendanceRepo.sessions["a"] = &models.AttendanceSession{ID: "a", ClassSectionID: "cs-1", TeacherID: "t-1", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, examRepo.Create(context.Background(), &models.Exam{Subject: "Math", TeacherID: "t-1", ClassSectionID: "cs-1", MaxMarks: 50}))

	// 2026-03-02 is a Monday
	payload, cached, err := svc.Teacher(context.Background(), "t-1", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, payload.TodayPeriods, 1)
	assert.Equal(t, "Math", payload.TodayPeriods[0].Subject)
	assert.Len(t, payload.RecentSessions, 1)
	assert.Equal(t, 1, payload.ExamCount)
}

func TestTeacherDashboardSundayHasNoPeriods(t *testing.T) {
	svc, _, scheduleRepo, _ := testDashboardService(t)

	days := fullWeek()
	days[5].Periods = []models.Period{{StartTime: "08:00", EndTime: "09:00", Subject: "Math", TeacherID: "t-1"}}
	require.NoError(t, scheduleRepo.Create(context.Background(), &models.ClassSchedule{
		ClassSectionID: "cs-1", ClassSectionName: "Grade 5 A", Days: days,
	}))

	// 2026-03-01 is a Sunday, outside the school week
	payload, _, err := svc.Teacher(context.Background(), "t-1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, payload.TodayPeriods)
}

func TestStudentDashboard(t *testing.T) {
	svc, attendanceRepo, _, examRepo := testDashboardService(t)

	attendanceRepo.sessions["a"] = &models.AttendanceSession{ID: "a", ClassSectionID: "cs-1", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), PresentCount: 1}
	attendanceRepo.records["a"] = []models.AttendanceRecord{{SessionID: "a", StudentID: "s-1", Status: models.AttendanceStatusPresent}}
	require.NoError(t, examRepo.Create(context.Background(), &models.Exam{
		Subject: "Math", ClassSectionID: "cs-1", MaxMarks: 50,
		Marks: models.MarkList{{StudentID: "s-1", Marks: 40}},
	}))

	payload, cached, err := svc.Student(context.Background(), "s-1")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, payload.Attendance.Present)
	assert.Equal(t, 100, payload.Attendance.Percent)
	require.Len(t, payload.SubjectAverages, 1)
	assert.InDelta(t, 80.0, payload.SubjectAverages[0].Average, 0.0001)
}
