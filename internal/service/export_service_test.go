package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

func testExportService(t *testing.T) (*ExportService, *AttendanceService, *ExamService) {
	t.Helper()
	classes := testClassReader()
	attendanceSvc := NewAttendanceService(newFakeAttendanceRepo(), classes, nil, nil)
	examSvc := NewExamService(newFakeExamRepo(), classes, nil, nil)
	return NewExportService(attendanceSvc, examSvc, classes, nil), attendanceSvc, examSvc
}

func TestSessionRegisterCSV(t *testing.T) {
	svc, attendanceSvc, _ := testExportService(t)

	session, err := attendanceSvc.Mark(context.Background(), MarkAttendanceRequest{
		TeacherID:      "t-1",
		ClassSectionID: "cs-1",
		Date:           "2026-03-02",
		Statuses: map[string]models.AttendanceStatus{
			"s-1": models.AttendanceStatusPresent,
			"s-2": models.AttendanceStatusAbsent,
		},
	})
	require.NoError(t, err)

	result, err := svc.SessionRegister(context.Background(), session.ID, "t-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "attendance-cs-1-2026-03-02.csv", result.Filename)

	content := string(result.Content)
	assert.Contains(t, content, "Roll No")
	assert.Contains(t, content, "Asha")
	assert.Contains(t, content, "present")
	assert.Contains(t, content, "Bilal")
	assert.Contains(t, content, "absent")
}

func TestSessionRegisterPDF(t *testing.T) {
	svc, attendanceSvc, _ := testExportService(t)

	session, err := attendanceSvc.Mark(context.Background(), MarkAttendanceRequest{
		TeacherID:      "t-1",
		ClassSectionID: "cs-1",
		Date:           "2026-03-02",
		Statuses:       map[string]models.AttendanceStatus{"s-1": models.AttendanceStatusPresent},
	})
	require.NoError(t, err)

	result, err := svc.SessionRegister(context.Background(), session.ID, "", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExamResultSheetCSV(t *testing.T) {
	svc, _, examSvc := testExportService(t)

	exam, err := examSvc.Create(context.Background(), CreateExamRequest{
		Name:           "Unit Test 1",
		Subject:        "Math",
		ClassSectionID: "cs-1",
		TeacherID:      "t-1",
		TeacherName:    "Mr Rao",
		MaxMarks:       50,
		Marks:          map[string]float64{"s-1": 40, "s-2": 20, "s-3": 30},
	})
	require.NoError(t, err)

	result, err := svc.ExamResultSheet(context.Background(), exam.ID, ExportFormatCSV)
	require.NoError(t, err)

	content := string(result.Content)
	assert.Contains(t, content, "Asha")
	assert.Contains(t, content, "40.0")
	assert.Contains(t, content, "Class average")
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc, _, examSvc := testExportService(t)

	exam, err := examSvc.Create(context.Background(), CreateExamRequest{
		Name:           "Unit Test 1",
		Subject:        "Math",
		ClassSectionID: "cs-1",
		TeacherID:      "t-1",
		TeacherName:    "Mr Rao",
		MaxMarks:       50,
	})
	require.NoError(t, err)

	_, err = svc.ExamResultSheet(context.Background(), exam.ID, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionRegisterOwnership(t *testing.T) {
	svc, attendanceSvc, _ := testExportService(t)

	session, err := attendanceSvc.Mark(context.Background(), MarkAttendanceRequest{
		TeacherID:      "t-1",
		ClassSectionID: "cs-1",
		Date:           "2026-03-02",
		Statuses:       map[string]models.AttendanceStatus{"s-1": models.AttendanceStatusPresent},
	})
	require.NoError(t, err)

	_, err = svc.SessionRegister(context.Background(), session.ID, "t-2", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
