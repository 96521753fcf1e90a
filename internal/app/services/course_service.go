package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/cache"
)

// CourseProfile is a course with its reviews and per-professor statistics
type CourseProfile struct {
	Course     *models.Course                `json:"course"`
	Reviews    []models.Review               `json:"reviews"`
	Professors []models.ProfessorCourseStats `json:"professors"`
}

// CourseService handles course search and course profiles
type CourseService struct {
	courses     *repositories.CourseRepository
	departments *repositories.DepartmentRepository
	reviews     *repositories.ReviewRepository
	professors  *repositories.ProfessorRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewCourseService creates a new course service
func NewCourseService(repos *repositories.Repositories, c cache.Cache, cacheTTL time.Duration, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courses:     repos.CourseRepository,
		departments: repos.DepartmentRepository,
		reviews:     repos.ReviewRepository,
		professors:  repos.ProfessorRepository,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Search matches query against course code or name, ordered by code
func (s *CourseService) Search(ctx context.Context, query string) ([]models.Course, error) {
	key := cache.SearchKey(cache.CourseSearchPrefix, query)
	var cached []models.Course
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Course search cache read failed")
	} else if ok {
		return cached, nil
	}

	courses, err := s.courses.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.DepartmentID)
	}
	departments, err := s.departments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if d, ok := departments[courses[i].DepartmentID]; ok {
			courses[i].Department = &d
		}
	}

	if err := s.cache.Set(ctx, key, courses, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Course search cache write failed")
	}
	return courses, nil
}

// Profile loads a course by exact code together with its reviews, newest
// first, and per-professor statistics in the order professors first appear.
func (s *CourseService) Profile(ctx context.Context, code string) (*CourseProfile, error) {
	course, err := s.courses.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if d, err := s.departments.GetByID(ctx, course.DepartmentID); err == nil {
		course.Department = d
	}

	reviews, err := s.reviews.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	professorIDs := make([]string, len(reviews))
	for i, r := range reviews {
		professorIDs[i] = r.ProfessorID
	}
	professors, err := s.professors.GetByIDs(ctx, professorIDs)
	if err != nil {
		return nil, err
	}

	for i := range reviews {
		if p, ok := professors[reviews[i].ProfessorID]; ok {
			reviews[i].Professor = &p
		}
	}

	return &CourseProfile{
		Course:     course,
		Reviews:    reviews,
		Professors: groupByProfessor(reviews, professors),
	}, nil
}

// groupByProfessor buckets reviews per professor in first-seen order and
// computes the same aggregates as the professor record, scoped to one course.
func groupByProfessor(reviews []models.Review, professors map[string]models.Professor) []models.ProfessorCourseStats {
	var order []string
	groups := make(map[string][]models.Review)
	for _, r := range reviews {
		if _, seen := groups[r.ProfessorID]; !seen {
			order = append(order, r.ProfessorID)
		}
		groups[r.ProfessorID] = append(groups[r.ProfessorID], r)
	}

	stats := make([]models.ProfessorCourseStats, 0, len(order))
	for _, id := range order {
		entry := models.ProfessorCourseStats{
			Aggregates: ComputeAggregates(groups[id]),
			Reviews:    groups[id],
		}
		if p, ok := professors[id]; ok {
			entry.Professor = &p
		}
		stats = append(stats, entry)
	}
	return stats
}
