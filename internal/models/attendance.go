package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// AttendanceSession aggregates one class section's attendance for one calendar
// day. PresentCount and AbsentCount are denormalized and must always equal the
// counts over the session's child records.
type AttendanceSession struct {
	ID               string    `db:"id" json:"id"`
	ClassSectionID   string    `db:"class_section_id" json:"class_section_id"`
	ClassSectionName string    `db:"class_section_name" json:"class_section_name"`
	TeacherID        string    `db:"teacher_id" json:"teacher_id"`
	Date             time.Time `db:"date" json:"date"`
	PresentCount     int       `db:"present_count" json:"present_count"`
	AbsentCount      int       `db:"absent_count" json:"absent_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord is one student's status within a session. Date, class
// section and teacher are denormalized copies of the owning session's fields.
type AttendanceRecord struct {
	ID             string           `db:"id" json:"id"`
	SessionID      string           `db:"session_id" json:"session_id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Date           time.Time        `db:"date" json:"date"`
	ClassSectionID string           `db:"class_section_id" json:"class_section_id"`
	TeacherID      string           `db:"teacher_id" json:"teacher_id"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// StudentAttendanceSummary totals one student's records across all sessions.
type StudentAttendanceSummary struct {
	StudentID string `json:"student_id"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// ClassAttendanceSummary carries the running-average attendance for a class.
type ClassAttendanceSummary struct {
	ClassSectionID    string  `json:"class_section_id"`
	Sessions          int     `json:"sessions"`
	AverageAttendance float64 `json:"average_attendance"`
}
