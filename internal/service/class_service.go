package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/edumesh/school-ops-api/internal/models"
	appErrors "github.com/edumesh/school-ops-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSection, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	ListStudents(ctx context.Context, classSectionID string) ([]models.Student, error)
	FindStudentByID(ctx context.Context, id string) (*models.Student, error)
}

// ClassService exposes class sections and rosters.
type ClassService struct {
	repo   classRepository
	logger *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, logger: logger}
}

// List returns class sections with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSection, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sections")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return sections, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one class section.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassSection, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class section")
	}
	return section, nil
}

// Students returns the active roster of a class section.
func (s *ClassService) Students(ctx context.Context, classSectionID string) ([]models.Student, error) {
	if _, err := s.Get(ctx, classSectionID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, classSectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}

// WorkingSet returns a roster seeded as a draft attendance map, every student
// defaulting to present.
func (s *ClassService) WorkingSet(ctx context.Context, classSectionID string) (map[string]models.AttendanceStatus, error) {
	roster, err := s.Students(ctx, classSectionID)
	if err != nil {
		return nil, err
	}
	return DefaultWorkingSet(roster), nil
}
