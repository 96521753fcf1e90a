package repositories

import (
	"context"
	"fmt"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// ProfessorDepartmentRepository handles the professor to department junction
type ProfessorDepartmentRepository struct {
	store recordstore.Store
}

// NewProfessorDepartmentRepository creates a new junction repository
func NewProfessorDepartmentRepository(store recordstore.Store) *ProfessorDepartmentRepository {
	return &ProfessorDepartmentRepository{store: store}
}

// InsertBatch links professors to departments in one call. A pair that already
// exists fails the whole batch with recordstore.ErrConflict.
func (r *ProfessorDepartmentRepository) InsertBatch(ctx context.Context, links []models.ProfessorDepartment) (int, error) {
	rows := make([]recordstore.Row, len(links))
	for i, l := range links {
		rows[i] = recordstore.Row{
			"professor_id":  l.ProfessorID,
			"department_id": l.DepartmentID,
		}
	}
	created, err := r.store.Insert(ctx, recordstore.ProfessorDepartments, rows...)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

// DepartmentIDs returns every department the professor is linked to
func (r *ProfessorDepartmentRepository) DepartmentIDs(ctx context.Context, professorID string) ([]string, error) {
	rows, err := r.store.Find(ctx, recordstore.ProfessorDepartments,
		recordstore.Where(recordstore.Eq("professor_id", professorID)))
	if err != nil {
		return nil, fmt.Errorf("failed to load professor departments: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.String("department_id"))
	}
	return uniqueStrings(ids), nil
}

// Count returns the total number of links
func (r *ProfessorDepartmentRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, recordstore.ProfessorDepartments)
}
