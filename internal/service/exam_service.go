package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

// passThreshold is the fixed pass policy: a mark counts as passing when
// marks/maxMarks >= 0.33.
const passThreshold = 0.33

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListByClassSection(ctx context.Context, classSectionID string) ([]models.Exam, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Exam, error)
	ListAll(ctx context.Context) ([]models.Exam, error)
	Delete(ctx context.Context, id string) error
}

// CreateExamRequest snapshots the current class roster into a new exam.
// Marks maps studentId to the awarded mark; roster students missing from the
// map are recorded with zero.
type CreateExamRequest struct {
	Name           string             `json:"name" validate:"required"`
	Subject        string             `json:"subject" validate:"required"`
	ClassSectionID string             `json:"class_section_id" validate:"required"`
	TeacherID      string             `json:"teacher_id" validate:"required"`
	TeacherName    string             `json:"teacher_name" validate:"required"`
	MaxMarks       int                `json:"max_marks" validate:"required,gt=0"`
	Marks          map[string]float64 `json:"marks"`
}

// UpdateExamRequest overwrites name, max marks and the entire mark list.
type UpdateExamRequest struct {
	Name     string          `json:"name" validate:"required"`
	MaxMarks int             `json:"max_marks" validate:"required,gt=0"`
	Marks    models.MarkList `json:"marks" validate:"required,min=1"`
}

// ExamService owns exam documents and their derived statistics.
type ExamService struct {
	repo      examRepository
	classes   classSectionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, classes classSectionReader, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// Create stores a new exam with a full roster snapshot. The snapshot does not
// auto-update if the roster later changes. Any invalid mark rejects the whole
// operation; nothing is written.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	section, err := s.classes.FindByID(ctx, req.ClassSectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class section")
	}

	roster, err := s.classes.ListStudents(ctx, req.ClassSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if len(roster) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class section has no students")
	}

	marks := make(models.MarkList, 0, len(roster))
	for _, student := range roster {
		marks = append(marks, models.MarkEntry{
			StudentID:   student.ID,
			StudentName: student.FullName,
			RollNo:      student.RollNo,
			Marks:       req.Marks[student.ID],
		})
	}
	if err := validateMarks(marks, req.MaxMarks); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Name:             req.Name,
		Subject:          req.Subject,
		ClassSectionID:   req.ClassSectionID,
		ClassSectionName: section.Name,
		TeacherID:        req.TeacherID,
		TeacherName:      req.TeacherName,
		MaxMarks:         req.MaxMarks,
		Marks:            marks,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// Update overwrites an exam wholesale after revalidating every entry. Only the
// exam's owning teacher may edit; requesterID is empty for principal callers.
func (s *ExamService) Update(ctx context.Context, id, requesterID string, req UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if err := validateMarks(req.Marks, req.MaxMarks); err != nil {
		return nil, err
	}

	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != "" && exam.TeacherID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exam belongs to another teacher")
	}

	exam.Name = req.Name
	exam.MaxMarks = req.MaxMarks
	exam.Marks = req.Marks
	if err := s.repo.Update(ctx, exam); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	return exam, nil
}

// Get loads an exam by id.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Delete removes an exam. Same ownership rule as Update.
func (s *ExamService) Delete(ctx context.Context, id, requesterID string) error {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if requesterID != "" && exam.TeacherID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "exam belongs to another teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	return nil
}

// ListForClassSection returns a class section's exams in creation order.
func (s *ExamService) ListForClassSection(ctx context.Context, classSectionID string) ([]models.Exam, error) {
	exams, err := s.repo.ListByClassSection(ctx, classSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class exams")
	}
	return exams, nil
}

// ListForTeacher returns a teacher's exams, newest first.
func (s *ExamService) ListForTeacher(ctx context.Context, teacherID string) ([]models.Exam, error) {
	exams, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher exams")
	}
	return exams, nil
}

// Stats loads an exam and computes its read-time statistics.
func (s *ExamService) Stats(ctx context.Context, examID string) (*models.ExamStats, error) {
	exam, err := s.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	stats := ComputeExamStats(exam)
	return &stats, nil
}

// SubjectAverages computes the class section's "Subject Performance" figures:
// exams are grouped by subject and each subject's figure is the mean of the
// per-exam normalized averages. This is deliberately a two-level average of
// averages, not a pooled mean over raw marks; changing it would change the
// numbers users see.
func (s *ExamService) SubjectAverages(ctx context.Context, classSectionID string) ([]models.SubjectAverage, error) {
	exams, err := s.repo.ListByClassSection(ctx, classSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class exams")
	}
	return ComputeSubjectAverages(exams), nil
}

// StudentSubjectAverages averages one student's own percentage per subject
// across every exam they appear in. Single-level: the student holds one mark
// per exam.
func (s *ExamService) StudentSubjectAverages(ctx context.Context, studentID string) ([]models.StudentSubjectAverage, error) {
	exams, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, exam := range exams {
		if exam.MaxMarks <= 0 {
			continue
		}
		for _, entry := range exam.Marks {
			if entry.StudentID != studentID {
				continue
			}
			sums[exam.Subject] += entry.Marks / float64(exam.MaxMarks) * 100
			counts[exam.Subject]++
			break
		}
	}

	subjects := make([]string, 0, len(sums))
	for subject := range sums {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	averages := make([]models.StudentSubjectAverage, 0, len(subjects))
	for _, subject := range subjects {
		averages = append(averages, models.StudentSubjectAverage{
			Subject:   subject,
			Average:   sums[subject] / float64(counts[subject]),
			ExamCount: counts[subject],
		})
	}
	return averages, nil
}

// ComputeExamStats derives a single exam's statistics. Average and pass rate
// are normalized against max marks; highest, lowest and median are raw marks.
func ComputeExamStats(exam *models.Exam) models.ExamStats {
	stats := models.ExamStats{ExamID: exam.ID, Entries: len(exam.Marks)}
	if len(exam.Marks) == 0 || exam.MaxMarks <= 0 {
		return stats
	}

	raw := make([]float64, 0, len(exam.Marks))
	var sum float64
	passed := 0
	for _, entry := range exam.Marks {
		raw = append(raw, entry.Marks)
		sum += entry.Marks
		if entry.Marks/float64(exam.MaxMarks) >= passThreshold {
			passed++
		}
	}
	sort.Float64s(raw)

	stats.Average = sum / float64(len(raw)) / float64(exam.MaxMarks) * 100
	stats.Highest = raw[len(raw)-1]
	stats.Lowest = raw[0]
	stats.Median = median(raw)
	stats.PassRate = float64(passed) / float64(len(raw))
	return stats
}

// ComputeSubjectAverages groups exams by subject and averages each exam's own
// normalized percentage.
func ComputeSubjectAverages(exams []models.Exam) []models.SubjectAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, exam := range exams {
		if len(exam.Marks) == 0 || exam.MaxMarks <= 0 {
			continue
		}
		var sum float64
		for _, entry := range exam.Marks {
			sum += entry.Marks
		}
		pct := sum / float64(len(exam.Marks)) / float64(exam.MaxMarks) * 100
		sums[exam.Subject] += pct
		counts[exam.Subject]++
	}

	subjects := make([]string, 0, len(sums))
	for subject := range sums {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	averages := make([]models.SubjectAverage, 0, len(subjects))
	for _, subject := range subjects {
		averages = append(averages, models.SubjectAverage{
			Subject:   subject,
			Average:   sums[subject] / float64(counts[subject]),
			ExamCount: counts[subject],
		})
	}
	return averages
}

func validateMarks(marks models.MarkList, maxMarks int) error {
	if len(marks) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "exam requires at least one mark entry")
	}
	for _, entry := range marks {
		if math.IsNaN(entry.Marks) || math.IsInf(entry.Marks, 0) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mark for student %s is not a finite number", entry.StudentID))
		}
		if entry.Marks < 0 || entry.Marks > float64(maxMarks) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mark %.2f for student %s is outside 0..%d", entry.Marks, entry.StudentID, maxMarks))
		}
	}
	return nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
