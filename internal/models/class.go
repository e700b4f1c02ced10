package models

import "time"

// ClassSection represents a specific class+section combination, the unit to
// which a timetable, roster and attendance sessions belong.
type ClassSection struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	Section   string    `db:"section" json:"section"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student represents a pupil enrolled in a class section.
type Student struct {
	ID             string    `db:"id" json:"id"`
	UserID         *string   `db:"user_id" json:"user_id,omitempty"`
	FullName       string    `db:"full_name" json:"full_name"`
	RollNo         string    `db:"roll_no" json:"roll_no"`
	ClassSectionID string    `db:"class_section_id" json:"class_section_id"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassSectionFilter defines filter criteria for listing class sections.
type ClassSectionFilter struct {
	Grade     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
