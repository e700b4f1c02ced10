package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/dto"
	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

type classLister interface {
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSection, int, error)
}

type attendanceOverviewProvider interface {
	ClassAverage(ctx context.Context, classSectionID string) (*models.ClassAttendanceSummary, error)
	SessionsForTeacher(ctx context.Context, teacherID string) ([]models.AttendanceSession, error)
	StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error)
}

type timetableProjector interface {
	ProjectForTeacher(ctx context.Context, teacherID string) (*models.TeacherWeeklyView, error)
}

type examOverviewProvider interface {
	ListForTeacher(ctx context.Context, teacherID string) ([]models.Exam, error)
	StudentSubjectAverages(ctx context.Context, studentID string) ([]models.StudentSubjectAverage, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Classes    classLister
	Attendance attendanceOverviewProvider
	Timetable  timetableProjector
	Exams      examOverviewProvider
	Cache      *CacheService
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// DashboardService composes role-scoped read models from the core services.
// Payloads are cached with a short TTL; the underlying timetable projection
// itself stays uncached.
type DashboardService struct {
	classes    classLister
	attendance attendanceOverviewProvider
	timetable  timetableProjector
	exams      examOverviewProvider
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cacheTTL   time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		classes:    params.Classes,
		attendance: params.Attendance,
		timetable:  params.Timetable,
		exams:      params.Exams,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cacheTTL:   ttl,
	}
}

// Principal returns the school-wide overview and whether it came from cache.
func (s *DashboardService) Principal(ctx context.Context) (*dto.PrincipalDashboardResponse, bool, error) {
	cacheKey := "dash:principal"
	cached := &dto.PrincipalDashboardResponse{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, true, nil
	}

	sections, total, err := s.classes.List(ctx, models.ClassSectionFilter{PageSize: 100})
	if err != nil {
		return nil, false, err
	}

	summaries := make([]models.ClassAttendanceSummary, 0, len(sections))
	for _, section := range sections {
		summary, err := s.attendance.ClassAverage(ctx, section.ID)
		if err != nil {
			return nil, false, err
		}
		summaries = append(summaries, *summary)
	}

	resp := &dto.PrincipalDashboardResponse{
		Date:              s.now().UTC().Format("2006-01-02"),
		ClassSectionCount: total,
		ClassAttendance:   summaries,
	}
	s.persist(ctx, cacheKey, resp)
	return resp, false, nil
}

// Teacher returns a teacher's dashboard for a given date.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string, date time.Time) (*dto.TeacherDashboardResponse, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	day := date.UTC().Format("2006-01-02")
	cacheKey := fmt.Sprintf("dash:teacher:%s:%s", teacherID, day)
	cached := &dto.TeacherDashboardResponse{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, true, nil
	}

	view, err := s.timetable.ProjectForTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}
	today := []models.TeacherPeriod{}
	if idx := weekdayIndex(date); idx >= 0 {
		today = view.Days[idx].Periods
	}

	sessions, err := s.attendance.SessionsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}
	if len(sessions) > 5 {
		sessions = sessions[:5]
	}

	exams, err := s.exams.ListForTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.TeacherDashboardResponse{
		TeacherID:      teacherID,
		Date:           day,
		TodayPeriods:   today,
		RecentSessions: sessions,
		ExamCount:      len(exams),
	}
	s.persist(ctx, cacheKey, resp)
	return resp, false, nil
}

// Student returns a student's personal standing.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboardResponse, bool, error) {
	if studentID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	cacheKey := fmt.Sprintf("dash:student:%s", studentID)
	cached := &dto.StudentDashboardResponse{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, true, nil
	}

	attendance, err := s.attendance.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	averages, err := s.exams.StudentSubjectAverages(ctx, studentID)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.StudentDashboardResponse{
		StudentID:       studentID,
		Attendance:      *attendance,
		SubjectAverages: averages,
	}
	s.persist(ctx, cacheKey, resp)
	return resp, false, nil
}

func (s *DashboardService) persist(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// weekdayIndex maps a date to the school-week index, or -1 for Sunday.
func weekdayIndex(date time.Time) int {
	switch wd := date.Weekday(); wd {
	case time.Sunday:
		return -1
	default:
		return int(wd) - 1
	}
}
