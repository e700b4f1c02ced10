package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Weekdays is the fixed school-week order. Every schedule carries exactly one
// ScheduleDay per entry, in this order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// SchoolWeekDays is the number of teaching days per week.
const SchoolWeekDays = 6

// Period is a single timetable slot. Times are 24h "HH:MM" wall-clock strings
// with no timezone; lexicographic comparison orders them correctly.
type Period struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Subject     string `json:"subject"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

// ScheduleDay holds the ordered periods for one weekday.
type ScheduleDay struct {
	Day     string   `json:"day"`
	Periods []Period `json:"periods"`
}

// ScheduleDays is the 6-entry weekly grid persisted as a single JSONB document
// column. Decoding happens at the store boundary; malformed documents fail fast.
type ScheduleDays []ScheduleDay

// Value implements driver.Valuer.
func (d ScheduleDays) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *ScheduleDays) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = nil
		return nil
	default:
		return fmt.Errorf("unsupported scan type for schedule days: %T", src)
	}
}

// ClassSchedule is the weekly timetable grid owned by a class section. The
// class name is a denormalized display copy and may drift from the section.
type ClassSchedule struct {
	ID               string       `db:"id" json:"id"`
	ClassSectionID   string       `db:"class_section_id" json:"class_section_id"`
	ClassSectionName string       `db:"class_section_name" json:"class_section_name"`
	Days             ScheduleDays `db:"days" json:"days"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// TeacherPeriod is one flattened slot in a teacher's derived weekly view,
// carrying the owning class's identity.
type TeacherPeriod struct {
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Subject          string `json:"subject"`
	ClassSectionID   string `json:"class_section_id"`
	ClassSectionName string `json:"class_section_name"`
	SourceScheduleID string `json:"source_schedule_id"`
}

// TeacherDay groups a teacher's periods for one weekday.
type TeacherDay struct {
	Day     string          `json:"day"`
	Periods []TeacherPeriod `json:"periods"`
}

// TeacherWeeklyView is the derived per-teacher timetable. It is never
// persisted; it is recomputed from the full schedule set on every call.
type TeacherWeeklyView struct {
	TeacherID string       `json:"teacher_id"`
	Days      []TeacherDay `json:"days"`
}
