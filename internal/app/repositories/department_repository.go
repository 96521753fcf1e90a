package repositories

import (
	"context"
	"fmt"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	store recordstore.Store
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(store recordstore.Store) *DepartmentRepository {
	return &DepartmentRepository{
		store: store,
	}
}

// GetAll retrieves all departments ordered by name
func (r *DepartmentRepository) GetAll(ctx context.Context) ([]models.Department, error) {
	rows, err := r.store.Find(ctx, recordstore.Departments, recordstore.Query{}.OrderBy(recordstore.Asc("name")))
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return recordstore.DecodeAll[models.Department](rows)
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*models.Department, error) {
	row, err := r.store.FindOne(ctx, recordstore.Departments, recordstore.Eq("id", id))
	if err != nil {
		return nil, notFound(err, apperrors.ErrDepartmentNotFound)
	}
	var department models.Department
	if err := recordstore.Decode(row, &department); err != nil {
		return nil, err
	}
	return &department, nil
}

// GetByIDs retrieves the given departments keyed by ID
func (r *DepartmentRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Department, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]models.Department, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.store.Find(ctx, recordstore.Departments, recordstore.Where(recordstore.In("id", ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	departments, err := recordstore.DecodeAll[models.Department](rows)
	if err != nil {
		return nil, err
	}
	for _, d := range departments {
		out[d.ID] = d
	}
	return out, nil
}

// Create inserts a department and fills in its generated fields
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	rows, err := r.store.Insert(ctx, recordstore.Departments, recordstore.Row{
		"name": department.Name,
		"code": department.Code,
	})
	if err != nil {
		return err
	}
	return recordstore.Decode(rows[0], department)
}

// EnsureAll inserts the departments whose names are not yet known and reports
// how many were created.
func (r *DepartmentRepository) EnsureAll(ctx context.Context, departments []models.Department) (int, error) {
	rows := make([]recordstore.Row, 0, len(departments))
	for _, d := range departments {
		rows = append(rows, recordstore.Row{"name": d.Name, "code": d.Code})
	}
	res, err := r.store.Upsert(ctx, recordstore.Departments, rows, recordstore.UpsertOptions{
		ConflictKey:      []string{"name"},
		IgnoreDuplicates: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed departments: %w", err)
	}
	return res.Inserted, nil
}
