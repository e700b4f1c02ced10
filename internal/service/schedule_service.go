package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

// defaultDayStart is used for the first period of an empty day.
const defaultDayStart = "08:00"

type scheduleRepository interface {
	Create(ctx context.Context, schedule *models.ClassSchedule) error
	UpdateDays(ctx context.Context, id string, days models.ScheduleDays) error
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	FindByClassSection(ctx context.Context, classSectionID string) (*models.ClassSchedule, error)
	ListAll(ctx context.Context) ([]models.ClassSchedule, error)
	Delete(ctx context.Context, id string) error
}

// CreateScheduleRequest describes payload for creating a class schedule.
type CreateScheduleRequest struct {
	ClassSectionID   string              `json:"class_section_id" validate:"required"`
	ClassSectionName string              `json:"class_section_name" validate:"required"`
	Days             models.ScheduleDays `json:"days" validate:"required"`
}

// UpdateScheduleRequest replaces the full weekly grid of a schedule.
type UpdateScheduleRequest struct {
	Days models.ScheduleDays `json:"days" validate:"required"`
}

// PeriodDraftRequest mutates an in-progress days grid without persisting it.
// The caller owns the draft; the result is committed via create or update.
type PeriodDraftRequest struct {
	Days        models.ScheduleDays `json:"days" validate:"required"`
	DayIndex    int                 `json:"day_index"`
	PeriodIndex int                 `json:"period_index"`
}

// ScheduleService owns the class timetable grid.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// Create stores a new weekly grid for a class section. The days sequence must
// hold exactly one entry per school weekday in fixed order. Duplicate schedules
// for a section are possible; no uniqueness is enforced.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := validateDays(req.Days); err != nil {
		return nil, err
	}

	schedule := models.ClassSchedule{
		ClassSectionID:   req.ClassSectionID,
		ClassSectionName: req.ClassSectionName,
		Days:             req.Days,
	}
	if err := s.repo.Create(ctx, &schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return &schedule, nil
}

// Update replaces the entire days array of an existing schedule. Period edits
// are array operations on the caller's draft persisted as one document write.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := validateDays(req.Days); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDays(ctx, id, req.Days); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return s.Get(ctx, id)
}

// Get loads a schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ClassSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// GetForClassSection returns the newest schedule for a class section.
func (s *ScheduleService) GetForClassSection(ctx context.Context, classSectionID string) (*models.ClassSchedule, error) {
	schedule, err := s.repo.FindByClassSection(ctx, classSectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule for class section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	return schedule, nil
}

// Delete removes a schedule document.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

// AddPeriod appends a blank period to the draft's day. The new slot starts
// where the previous period ends (or at the day-start default) and runs for
// one hour. Pure draft convenience; nothing is persisted.
func AddPeriod(days models.ScheduleDays, dayIndex int) (models.ScheduleDays, error) {
	if dayIndex < 0 || dayIndex >= len(days) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day index out of range")
	}
	periods := days[dayIndex].Periods
	start := defaultDayStart
	if n := len(periods); n > 0 {
		start = periods[n-1].EndTime
	}
	end, err := addMinutes(start, 60)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid period time %q", start))
	}
	days[dayIndex].Periods = append(periods, models.Period{StartTime: start, EndTime: end})
	return days, nil
}

// RemovePeriod removes one period from the draft's day. No minimum count is
// enforced at this layer.
func RemovePeriod(days models.ScheduleDays, dayIndex, periodIndex int) (models.ScheduleDays, error) {
	if dayIndex < 0 || dayIndex >= len(days) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day index out of range")
	}
	periods := days[dayIndex].Periods
	if periodIndex < 0 || periodIndex >= len(periods) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period index out of range")
	}
	days[dayIndex].Periods = append(periods[:periodIndex], periods[periodIndex+1:]...)
	return days, nil
}

func validateDays(days models.ScheduleDays) error {
	if len(days) != models.SchoolWeekDays {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("days must hold exactly %d entries", models.SchoolWeekDays))
	}
	for i, day := range days {
		if day.Day != models.Weekdays[i] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d must be %s", i, models.Weekdays[i]))
		}
	}
	return nil
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%02d:%02d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock %q out of range", value)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func addMinutes(value string, delta int) (string, error) {
	total, err := parseClock(value)
	if err != nil {
		return "", err
	}
	total += delta
	if max := 24*60 - 1; total > max {
		total = max
	}
	return formatClock(total), nil
}
