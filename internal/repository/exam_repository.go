package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edumesh/school-ops-api/internal/models"
)

// ExamRepository persists exam documents. The embedded mark list rides in a
// JSONB column and is always written as a whole.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examColumns = `id, name, subject, class_section_id, class_section_name, teacher_id, teacher_name, max_marks, marks, created_at, updated_at`

// Create stores a new exam with its full roster snapshot.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	const query = `INSERT INTO exams (id, name, subject, class_section_id, class_section_name, teacher_id, teacher_name, max_marks, marks, created_at, updated_at) VALUES (:id, :name, :subject, :class_section_id, :class_section_name, :teacher_id, :teacher_name, :max_marks, :marks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update overwrites an exam's name, max marks and entire mark list.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, max_marks = :max_marks, marks = :marks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads an exam by id.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE id = $1`, examColumns)
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByClassSection returns a class section's exams in creation order.
func (r *ExamRepository) ListByClassSection(ctx context.Context, classSectionID string) ([]models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE class_section_id = $1 ORDER BY created_at ASC`, examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, classSectionID); err != nil {
		return nil, fmt.Errorf("list exams by class: %w", err)
	}
	return exams, nil
}

// ListByTeacher returns the exams created by one teacher, newest first.
func (r *ExamRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams WHERE teacher_id = $1 ORDER BY created_at DESC`, examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, teacherID); err != nil {
		return nil, fmt.Errorf("list exams by teacher: %w", err)
	}
	return exams, nil
}

// ListAll returns every stored exam. Per-student aggregation scans the full
// collection because marks live inside the exam documents.
func (r *ExamRepository) ListAll(ctx context.Context) ([]models.Exam, error) {
	query := fmt.Sprintf(`SELECT %s FROM exams ORDER BY created_at ASC`, examColumns)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Delete removes an exam by id.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}
