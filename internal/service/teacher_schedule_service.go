package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

// TeacherScheduleService derives per-teacher weekly timetables by inverting
// the class→teacher relationship across every stored schedule. It is stateless
// and holds no cache: a stale view would show teachers the wrong timetable, so
// the projection is recomputed from the full schedule set on every call.
type TeacherScheduleService struct {
	schedules scheduleRepository
	logger    *zap.Logger
}

// NewTeacherScheduleService constructs the projector.
func NewTeacherScheduleService(schedules scheduleRepository, logger *zap.Logger) *TeacherScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherScheduleService{schedules: schedules, logger: logger}
}

// ProjectForTeacher loads all schedules and returns the teacher's derived
// weekly view. Cost is O(total periods) per call, which is fine at per-page
// invocation rates; a secondary index would only matter at much larger scale.
func (s *TeacherScheduleService) ProjectForTeacher(ctx context.Context, teacherID string) (*models.TeacherWeeklyView, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	schedules, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	return ProjectWeek(teacherID, schedules), nil
}

// ProjectWeek is the pure projection over a schedule set: for every schedule,
// day and period whose teacher matches, a flattened slot carrying the owning
// class is appended to that weekday's bucket; buckets are then sorted by start
// time (lexicographic compare is correct for zero-padded "HH:MM").
func ProjectWeek(teacherID string, schedules []models.ClassSchedule) *models.TeacherWeeklyView {
	view := &models.TeacherWeeklyView{
		TeacherID: teacherID,
		Days:      make([]models.TeacherDay, models.SchoolWeekDays),
	}
	for i, name := range models.Weekdays {
		view.Days[i] = models.TeacherDay{Day: name, Periods: []models.TeacherPeriod{}}
	}

	for _, schedule := range schedules {
		for dayIndex, day := range schedule.Days {
			if dayIndex >= models.SchoolWeekDays {
				break
			}
			for _, period := range day.Periods {
				if period.TeacherID != teacherID {
					continue
				}
				view.Days[dayIndex].Periods = append(view.Days[dayIndex].Periods, models.TeacherPeriod{
					StartTime:        period.StartTime,
					EndTime:          period.EndTime,
					Subject:          period.Subject,
					ClassSectionID:   schedule.ClassSectionID,
					ClassSectionName: schedule.ClassSectionName,
					SourceScheduleID: schedule.ID,
				})
			}
		}
	}

	for i := range view.Days {
		periods := view.Days[i].Periods
		sort.SliceStable(periods, func(a, b int) bool {
			return periods[a].StartTime < periods[b].StartTime
		})
	}

	return view
}
