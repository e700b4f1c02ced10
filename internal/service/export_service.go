package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
	"github.com/edumesh/school-ops-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult couples rendered bytes with their content type and filename.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

type sessionRegisterProvider interface {
	GetSession(ctx context.Context, sessionID string) (*models.AttendanceSession, error)
	RecordsForSession(ctx context.Context, sessionID, requesterID string) ([]models.AttendanceRecord, error)
}

type examSheetProvider interface {
	Get(ctx context.Context, id string) (*models.Exam, error)
}

// ExportService renders attendance registers and exam result sheets.
type ExportService struct {
	attendance sessionRegisterProvider
	exams      examSheetProvider
	classes    classSectionReader
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(attendance sessionRegisterProvider, exams examSheetProvider, classes classSectionReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		exams:      exams,
		classes:    classes,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// SessionRegister renders one session's attendance register.
func (s *ExportService) SessionRegister(ctx context.Context, sessionID, requesterID string, format ExportFormat) (*ExportResult, error) {
	session, err := s.attendance.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.RecordsForSession(ctx, sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	names := map[string]models.Student{}
	if roster, err := s.classes.ListStudents(ctx, session.ClassSectionID); err == nil {
		for _, student := range roster {
			names[student.ID] = student
		}
	} else {
		s.logger.Warn("register export missing roster names", zap.Error(err))
	}

	dataset := export.Dataset{Headers: []string{"Roll No", "Student", "Status"}}
	for _, record := range records {
		row := map[string]string{
			"Roll No": record.StudentID,
			"Student": record.StudentID,
			"Status":  string(record.Status),
		}
		if student, ok := names[record.StudentID]; ok {
			row["Roll No"] = student.RollNo
			row["Student"] = student.FullName
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	title := fmt.Sprintf("Attendance %s %s", session.ClassSectionName, session.Date.Format("2006-01-02"))
	base := fmt.Sprintf("attendance-%s-%s", session.ClassSectionID, session.Date.Format("2006-01-02"))
	return s.render(dataset, title, base, format)
}

// ExamResultSheet renders one exam's marks with its summary row.
func (s *ExportService) ExamResultSheet(ctx context.Context, examID string, format ExportFormat) (*ExportResult, error) {
	exam, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"Roll No", "Student", "Marks", "Max"}}
	for _, entry := range exam.Marks {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll No": entry.RollNo,
			"Student": entry.StudentName,
			"Marks":   fmt.Sprintf("%.1f", entry.Marks),
			"Max":     fmt.Sprintf("%d", exam.MaxMarks),
		})
	}
	stats := ComputeExamStats(exam)
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Roll No": "",
		"Student": "Class average",
		"Marks":   fmt.Sprintf("%.1f%%", stats.Average),
		"Max":     fmt.Sprintf("pass %.0f%%", stats.PassRate*100),
	})

	title := fmt.Sprintf("%s - %s (%s)", exam.Name, exam.Subject, exam.ClassSectionName)
	base := fmt.Sprintf("exam-%s", exam.ID)
	return s.render(dataset, title, base, format)
}

func (s *ExportService) render(dataset export.Dataset, title, base string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
