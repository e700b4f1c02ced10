package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

type attendanceRepository interface {
	FindSessionByDate(ctx context.Context, classSectionID string, dayStart, dayEnd time.Time) (*models.AttendanceSession, error)
	FindSessionByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	ListSessionsByTeacher(ctx context.Context, teacherID string) ([]models.AttendanceSession, error)
	ListSessionsByClass(ctx context.Context, classSectionID string) ([]models.AttendanceSession, error)
	CreateSessionWithRecords(ctx context.Context, session *models.AttendanceSession, records []models.AttendanceRecord) error
	ReplaceRecords(ctx context.Context, session *models.AttendanceSession, records []models.AttendanceRecord) error
	DeleteSession(ctx context.Context, sessionID string) error
	ListRecordsBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	ListRecordsByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
}

type classSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	ListStudents(ctx context.Context, classSectionID string) ([]models.Student, error)
}

// MarkAttendanceRequest carries one submission of a class+date working set.
// Statuses is authoritative: exactly one record per entry is written.
type MarkAttendanceRequest struct {
	TeacherID      string                             `json:"teacher_id" validate:"required"`
	ClassSectionID string                             `json:"class_section_id" validate:"required"`
	Date           string                             `json:"date" validate:"required"`
	Statuses       map[string]models.AttendanceStatus `json:"statuses" validate:"required,min=1"`
}

// AttendanceService owns sessions and their record sets. A session's cached
// present/absent counts always match its child records: every write path goes
// through a transactional replace of the whole record set.
type AttendanceService struct {
	repo      attendanceRepository
	classes   classSectionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, classes classSectionReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// DefaultWorkingSet seeds a draft status map with every roster student marked
// present. The caller toggles entries before submission.
func DefaultWorkingSet(roster []models.Student) map[string]models.AttendanceStatus {
	statuses := make(map[string]models.AttendanceStatus, len(roster))
	for _, student := range roster {
		statuses[student.ID] = models.AttendanceStatusPresent
	}
	return statuses
}

// SetAll overwrites every entry of a working set with one status.
func SetAll(statuses map[string]models.AttendanceStatus, status models.AttendanceStatus) {
	for id := range statuses {
		statuses[id] = status
	}
}

// Mark creates or re-marks the session for a class section and calendar day.
// If no session exists in the day's bounds a new one is created; otherwise the
// existing session's counts are updated and its record set replaced wholesale.
// Last writer wins; there is no record-level locking.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	for studentID, status := range req.Statuses {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported status %q for student %s", status, studentID))
		}
	}

	section, err := s.classes.FindByID(ctx, req.ClassSectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class section")
	}

	present, absent := countStatuses(req.Statuses)
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	existing, err := s.repo.FindSessionByDate(ctx, req.ClassSectionID, dayStart, dayEnd)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up session")
	}

	if existing == nil {
		session := &models.AttendanceSession{
			ClassSectionID:   req.ClassSectionID,
			ClassSectionName: section.Name,
			TeacherID:        req.TeacherID,
			Date:             dayStart,
			PresentCount:     present,
			AbsentCount:      absent,
		}
		records := buildRecords(req.Statuses)
		if err := s.repo.CreateSessionWithRecords(ctx, session, records); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}
		return session, nil
	}

	existing.TeacherID = req.TeacherID
	existing.PresentCount = present
	existing.AbsentCount = absent
	records := buildRecords(req.Statuses)
	if err := s.repo.ReplaceRecords(ctx, existing, records); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to re-mark session")
	}
	return existing, nil
}

// DeleteSession removes a session and all its records. Only the marking
// teacher may delete; requesterID is empty for principal callers.
func (s *AttendanceService) DeleteSession(ctx context.Context, sessionID, requesterID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if requesterID != "" && session.TeacherID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "session belongs to another teacher")
	}
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// GetSession loads a session by id.
func (s *AttendanceService) GetSession(ctx context.Context, sessionID string) (*models.AttendanceSession, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// SessionsForTeacher lists sessions marked by a teacher.
func (s *AttendanceService) SessionsForTeacher(ctx context.Context, teacherID string) ([]models.AttendanceSession, error) {
	sessions, err := s.repo.ListSessionsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher sessions")
	}
	return sessions, nil
}

// SessionsForClass lists a class section's sessions in processing order.
func (s *AttendanceService) SessionsForClass(ctx context.Context, classSectionID string) ([]models.AttendanceSession, error) {
	sessions, err := s.repo.ListSessionsByClass(ctx, classSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	return sessions, nil
}

// RecordsForSession returns a session's record set. When requesterID is set,
// the session must belong to that teacher.
func (s *AttendanceService) RecordsForSession(ctx context.Context, sessionID, requesterID string) ([]models.AttendanceRecord, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && session.TeacherID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another teacher")
	}
	records, err := s.repo.ListRecordsBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session records")
	}
	return records, nil
}

// StudentSummary totals one student's records and derives the personal
// attendance percentage, rounded to the nearest integer.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error) {
	records, err := s.repo.ListRecordsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student records")
	}
	summary := &models.StudentAttendanceSummary{StudentID: studentID}
	for _, record := range records {
		switch record.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		}
	}
	summary.Total = summary.Present + summary.Absent
	if summary.Total > 0 {
		summary.Percent = int(math.Round(float64(summary.Present) / float64(summary.Total) * 100))
	}
	return summary, nil
}

// ClassAverage computes the running-mean attendance over a class section's
// sessions in stable order. Each step folds the session's own percentage in as
// (prevAvg*(n-1) + pct) / n, which weighs sessions equally regardless of size.
func (s *AttendanceService) ClassAverage(ctx context.Context, classSectionID string) (*models.ClassAttendanceSummary, error) {
	sessions, err := s.repo.ListSessionsByClass(ctx, classSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	summary := &models.ClassAttendanceSummary{ClassSectionID: classSectionID}
	for _, session := range sessions {
		total := session.PresentCount + session.AbsentCount
		if total == 0 {
			continue
		}
		pct := float64(session.PresentCount) / float64(total) * 100
		summary.Sessions++
		n := float64(summary.Sessions)
		summary.AverageAttendance = (summary.AverageAttendance*(n-1) + pct) / n
	}
	return summary, nil
}

func countStatuses(statuses map[string]models.AttendanceStatus) (present, absent int) {
	for _, status := range statuses {
		if status == models.AttendanceStatusPresent {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}

// buildRecords flattens the working set into records in student-id order so
// that replacement writes are deterministic.
func buildRecords(statuses map[string]models.AttendanceStatus) []models.AttendanceRecord {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]models.AttendanceRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, models.AttendanceRecord{
			StudentID: id,
			Status:    statuses[id],
		})
	}
	return records
}
