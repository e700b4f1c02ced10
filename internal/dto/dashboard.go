package dto

import "github.com/edumesh/school-ops-api/internal/models"

// PrincipalDashboardResponse summarises school-wide attendance standing.
type PrincipalDashboardResponse struct {
	Date              string                          `json:"date"`
	ClassSectionCount int                             `json:"class_section_count"`
	ClassAttendance   []models.ClassAttendanceSummary `json:"class_attendance"`
}

// TeacherDashboardResponse carries a teacher's day at a glance.
type TeacherDashboardResponse struct {
	TeacherID      string                     `json:"teacher_id"`
	Date           string                     `json:"date"`
	TodayPeriods   []models.TeacherPeriod     `json:"today_periods"`
	RecentSessions []models.AttendanceSession `json:"recent_sessions"`
	ExamCount      int                        `json:"exam_count"`
}

// StudentDashboardResponse carries a student's personal standing.
type StudentDashboardResponse struct {
	StudentID       string                          `json:"student_id"`
	Attendance      models.StudentAttendanceSummary `json:"attendance"`
	SubjectAverages []models.StudentSubjectAverage  `json:"subject_averages"`
}
