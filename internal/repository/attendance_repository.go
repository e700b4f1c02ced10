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

// AttendanceRepository handles persistence for attendance sessions and their
// child records. Record sets are always replaced wholesale inside one
// transaction, so the session's cached counts and its records never diverge.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const sessionColumns = `id, class_section_id, class_section_name, teacher_id, date, present_count, absent_count, created_at, updated_at`

const recordColumns = `id, session_id, student_id, status, date, class_section_id, teacher_id, created_at`

// FindSessionByDate returns the session for a class section within the given
// day bounds (dayStart <= date < dayEnd). sql.ErrNoRows signals an unmarked day.
func (r *AttendanceRepository) FindSessionByDate(ctx context.Context, classSectionID string, dayStart, dayEnd time.Time) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE class_section_id = $1 AND date >= $2 AND date < $3 LIMIT 1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, classSectionID, dayStart, dayEnd); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSessionByID loads a session by id.
func (r *AttendanceRepository) FindSessionByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE id = $1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessionsByTeacher returns sessions marked by a teacher, newest first.
func (r *AttendanceRepository) ListSessionsByTeacher(ctx context.Context, teacherID string) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE teacher_id = $1 ORDER BY date DESC, id ASC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID); err != nil {
		return nil, fmt.Errorf("list sessions by teacher: %w", err)
	}
	return sessions, nil
}

// ListSessionsByClass returns a class section's sessions in stable processing
// order (date ascending, id as tiebreak). The running class average depends on
// this order being deterministic.
func (r *AttendanceRepository) ListSessionsByClass(ctx context.Context, classSectionID string) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE class_section_id = $1 ORDER BY date ASC, id ASC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, classSectionID); err != nil {
		return nil, fmt.Errorf("list sessions by class: %w", err)
	}
	return sessions, nil
}

// CreateSessionWithRecords inserts a new session together with its full record
// set in one transaction.
func (r *AttendanceRepository) CreateSessionWithRecords(ctx context.Context, session *models.AttendanceSession, records []models.AttendanceRecord) error {
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertSession = `INSERT INTO attendance_sessions (id, class_section_id, class_section_name, teacher_id, date, present_count, absent_count, created_at, updated_at) VALUES (:id, :class_section_id, :class_section_name, :teacher_id, :date, :present_count, :absent_count, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertSession, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err = r.insertRecords(ctx, tx, session, records); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// ReplaceRecords rewrites a session's cached counts and its whole child record
// set atomically: update counts, delete every old record, insert the new set.
func (r *AttendanceRepository) ReplaceRecords(ctx context.Context, session *models.AttendanceSession, records []models.AttendanceRecord) error {
	session.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace records: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateSession = `UPDATE attendance_sessions SET teacher_id = :teacher_id, present_count = :present_count, absent_count = :absent_count, updated_at = :updated_at WHERE id = :id`
	var res sql.Result
	if res, err = tx.NamedExecContext(ctx, updateSession, session); err != nil {
		return fmt.Errorf("update session counts: %w", err)
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("update session counts: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE session_id = $1`, session.ID); err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}

	if err = r.insertRecords(ctx, tx, session, records); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace records: %w", err)
	}
	return nil
}

// DeleteSession removes the child records and then the session document as one
// logical operation.
func (r *AttendanceRepository) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}

	var res sql.Result
	if res, err = tx.ExecContext(ctx, `DELETE FROM attendance_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete session: %w", err)
	}
	return nil
}

// ListRecordsBySession returns the record set for one session.
func (r *AttendanceRepository) ListRecordsBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE session_id = $1 ORDER BY student_id ASC`, recordColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list records by session: %w", err)
	}
	return records, nil
}

// ListRecordsByStudent returns every record for one student across sessions.
func (r *AttendanceRepository) ListRecordsByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE student_id = $1 ORDER BY date ASC`, recordColumns)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list records by student: %w", err)
	}
	return records, nil
}

func (r *AttendanceRepository) insertRecords(ctx context.Context, tx *sqlx.Tx, session *models.AttendanceSession, records []models.AttendanceRecord) error {
	now := time.Now().UTC()
	const insertRecord = `INSERT INTO attendance_records (id, session_id, student_id, status, date, class_section_id, teacher_id, created_at) VALUES (:id, :session_id, :student_id, :status, :date, :class_section_id, :teacher_id, :created_at)`
	for i := range records {
		record := records[i]
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		record.SessionID = session.ID
		record.Date = session.Date
		record.ClassSectionID = session.ClassSectionID
		record.TeacherID = session.TeacherID
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertRecord, &record); err != nil {
			return fmt.Errorf("insert attendance record: %w", err)
		}
		records[i] = record
	}
	return nil
}
