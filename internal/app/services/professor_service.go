package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
)

// ProfessorService handles professor search and detail lookups
type ProfessorService struct {
	professors  *repositories.ProfessorRepository
	departments *repositories.DepartmentRepository
	links       *repositories.ProfessorDepartmentRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewProfessorService creates a new professor service
func NewProfessorService(repos *repositories.Repositories, c cache.Cache, cacheTTL time.Duration, logger zerolog.Logger) *ProfessorService {
	return &ProfessorService{
		professors:  repos.ProfessorRepository,
		departments: repos.DepartmentRepository,
		links:       repos.ProfessorDepartmentRepository,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Search returns professors whose name contains query, ordered by name, with
// their primary department attached
func (s *ProfessorService) Search(ctx context.Context, query string) ([]models.Professor, error) {
	key := cache.SearchKey(cache.ProfessorSearchPrefix, query)
	var cached []models.Professor
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Professor search cache read failed")
	} else if ok {
		return cached, nil
	}

	professors, err := s.professors.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.attachDepartments(ctx, professors); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, professors, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Professor search cache write failed")
	}
	return professors, nil
}

// Get returns a professor with the primary department and every linked department
func (s *ProfessorService) Get(ctx context.Context, id string) (*models.Professor, error) {
	professor, err := s.professors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	departmentIDs, err := s.links.DepartmentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	lookup := departmentIDs
	if professor.DepartmentID != nil {
		lookup = append([]string{*professor.DepartmentID}, departmentIDs...)
	}
	departments, err := s.departments.GetByIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if professor.DepartmentID != nil {
		if d, ok := departments[*professor.DepartmentID]; ok {
			professor.Department = &d
		}
	}
	for _, depID := range departmentIDs {
		if d, ok := departments[depID]; ok {
			professor.Departments = append(professor.Departments, d)
		}
	}
	return professor, nil
}

func (s *ProfessorService) attachDepartments(ctx context.Context, professors []models.Professor) error {
	var ids []string
	for _, p := range professors {
		if p.DepartmentID != nil {
			ids = append(ids, *p.DepartmentID)
		}
	}
	departments, err := s.departments.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range professors {
		if professors[i].DepartmentID == nil {
			continue
		}
		if d, ok := departments[*professors[i].DepartmentID]; ok {
			professors[i].Department = &d
		}
	}
	return nil
}
