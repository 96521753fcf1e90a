package repositories

import (
	"context"
	"fmt"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	store recordstore.Store
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(store recordstore.Store) *CourseRepository {
	return &CourseRepository{store: store}
}

func courseRow(c models.Course) recordstore.Row {
	return recordstore.Row{
		"code":          c.Code,
		"name":          c.Name,
		"department_id": c.DepartmentID,
	}
}

// GetByCode retrieves a course by its exact code
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	row, err := r.store.FindOne(ctx, recordstore.Courses, recordstore.Eq("code", code))
	if err != nil {
		return nil, notFound(err, apperrors.ErrCourseNotFound)
	}
	var course models.Course
	if err := recordstore.Decode(row, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	row, err := r.store.FindOne(ctx, recordstore.Courses, recordstore.Eq("id", id))
	if err != nil {
		return nil, notFound(err, apperrors.ErrCourseNotFound)
	}
	var course models.Course
	if err := recordstore.Decode(row, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a single course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	rows, err := r.store.Insert(ctx, recordstore.Courses, courseRow(*course))
	if err != nil {
		return err
	}
	return recordstore.Decode(rows[0], course)
}

// UpsertBatch writes courses keyed by code. With ignoreDuplicates, courses whose
// code already exists are left untouched.
func (r *CourseRepository) UpsertBatch(ctx context.Context, courses []models.Course, ignoreDuplicates bool) (recordstore.UpsertResult, error) {
	rows := make([]recordstore.Row, len(courses))
	for i, c := range courses {
		rows[i] = courseRow(c)
	}
	return r.store.Upsert(ctx, recordstore.Courses, rows, recordstore.UpsertOptions{
		ConflictKey:      []string{"code"},
		IgnoreDuplicates: ignoreDuplicates,
	})
}

// Search returns courses whose code or name contains term, ordered by code
func (r *CourseRepository) Search(ctx context.Context, term string) ([]models.Course, error) {
	q := recordstore.Query{}
	if term != "" {
		pattern := recordstore.Contains(term)
		q.Filters = append(q.Filters, recordstore.Or(
			recordstore.ILike("code", pattern),
			recordstore.ILike("name", pattern),
		))
	}
	rows, err := r.store.Find(ctx, recordstore.Courses, q.OrderBy(recordstore.Asc("code")))
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	return recordstore.DecodeAll[models.Course](rows)
}

// GetByDepartments returns the courses of the given departments ordered by code
func (r *CourseRepository) GetByDepartments(ctx context.Context, departmentIDs []string) ([]models.Course, error) {
	if len(departmentIDs) == 0 {
		return []models.Course{}, nil
	}
	rows, err := r.store.Find(ctx, recordstore.Courses,
		recordstore.Where(recordstore.In("department_id", uniqueStrings(departmentIDs))).
			OrderBy(recordstore.Asc("code")))
	if err != nil {
		return nil, fmt.Errorf("failed to load department courses: %w", err)
	}
	return recordstore.DecodeAll[models.Course](rows)
}

// GetByIDs retrieves the given courses keyed by ID
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Course, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]models.Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.store.Find(ctx, recordstore.Courses, recordstore.Where(recordstore.In("id", ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	courses, err := recordstore.DecodeAll[models.Course](rows)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		out[c.ID] = c
	}
	return out, nil
}
