package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MarkEntry is one student's result inside an exam's embedded mark list. The
// student name and roll number are a roster snapshot taken at creation time.
type MarkEntry struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	RollNo      string  `json:"roll_no"`
	Marks       float64 `json:"marks"`
}

// MarkList is the embedded mark sequence persisted as a JSONB column. It is
// the sole source of truth; there are no per-student mark documents.
type MarkList []MarkEntry

// Value implements driver.Valuer.
func (m MarkList) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *MarkList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported scan type for mark list: %T", src)
	}
}

// Exam represents one administered exam with its full mark snapshot.
type Exam struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Subject          string    `db:"subject" json:"subject"`
	ClassSectionID   string    `db:"class_section_id" json:"class_section_id"`
	ClassSectionName string    `db:"class_section_name" json:"class_section_name"`
	TeacherID        string    `db:"teacher_id" json:"teacher_id"`
	TeacherName      string    `db:"teacher_name" json:"teacher_name"`
	MaxMarks         int       `db:"max_marks" json:"max_marks"`
	Marks            MarkList  `db:"marks" json:"marks"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ExamStats carries derived statistics for a single exam. Computed at read
// time, never persisted.
type ExamStats struct {
	ExamID   string  `json:"exam_id"`
	Average  float64 `json:"average"`
	Highest  float64 `json:"highest"`
	Lowest   float64 `json:"lowest"`
	Median   float64 `json:"median"`
	PassRate float64 `json:"pass_rate"`
	Entries  int     `json:"entries"`
}

// SubjectAverage is the class-level "Subject Performance" figure: the mean of
// each exam's own normalized average, not a pooled mean over raw marks.
type SubjectAverage struct {
	Subject   string  `json:"subject"`
	Average   float64 `json:"average"`
	ExamCount int     `json:"exam_count"`
}

// StudentSubjectAverage is one student's mean percentage per subject.
type StudentSubjectAverage struct {
	Subject   string  `json:"subject"`
	Average   float64 `json:"average"`
	ExamCount int     `json:"exam_count"`
}
