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

// ScheduleRepository provides persistence for class schedules. The weekly grid
// is stored as one JSONB document per class section; updates replace the whole
// days column in a single write.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, class_section_id, class_section_name, days, created_at, updated_at`

// Create stores a new class schedule document.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO class_schedules (id, class_section_id, class_section_name, days, created_at, updated_at) VALUES (:id, :class_section_id, :class_section_name, :days, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create class schedule: %w", err)
	}
	return nil
}

// UpdateDays replaces the full weekly grid of an existing schedule.
func (r *ScheduleRepository) UpdateDays(ctx context.Context, id string, days models.ScheduleDays) error {
	res, err := r.db.ExecContext(ctx, `UPDATE class_schedules SET days = $2, updated_at = $3 WHERE id = $1`, id, days, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update class schedule days: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update class schedule days: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE id = $1`, scheduleColumns)
	var schedule models.ClassSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindByClassSection returns the most recent schedule for a class section.
// Duplicates are possible; the newest document wins for display.
func (r *ScheduleRepository) FindByClassSection(ctx context.Context, classSectionID string) (*models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules WHERE class_section_id = $1 ORDER BY created_at DESC LIMIT 1`, scheduleColumns)
	var schedule models.ClassSchedule
	if err := r.db.GetContext(ctx, &schedule, query, classSectionID); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListAll returns every stored schedule. The teacher projection scans the full
// collection on every call; there is no server-side join or secondary index.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules ORDER BY created_at ASC`, scheduleColumns)
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list class schedules: %w", err)
	}
	return schedules, nil
}

// Delete removes a schedule by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class schedule: %w", err)
	}
	return nil
}
