package repositories

import (
	"context"
	"fmt"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// ProfessorRepository handles database operations for professors
type ProfessorRepository struct {
	store recordstore.Store
}

// NewProfessorRepository creates a new professor repository
func NewProfessorRepository(store recordstore.Store) *ProfessorRepository {
	return &ProfessorRepository{store: store}
}

// GetByID retrieves a professor by ID
func (r *ProfessorRepository) GetByID(ctx context.Context, id string) (*models.Professor, error) {
	row, err := r.store.FindOne(ctx, recordstore.Professors, recordstore.Eq("id", id))
	if err != nil {
		return nil, notFound(err, apperrors.ErrProfessorNotFound)
	}
	var professor models.Professor
	if err := recordstore.Decode(row, &professor); err != nil {
		return nil, err
	}
	return &professor, nil
}

// GetByIDs retrieves the given professors keyed by ID
func (r *ProfessorRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Professor, error) {
	ids = uniqueStrings(ids)
	out := make(map[string]models.Professor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.store.Find(ctx, recordstore.Professors, recordstore.Where(recordstore.In("id", ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to load professors: %w", err)
	}
	professors, err := recordstore.DecodeAll[models.Professor](rows)
	if err != nil {
		return nil, err
	}
	for _, p := range professors {
		out[p.ID] = p
	}
	return out, nil
}

// Search returns professors whose name contains term, ordered by name
func (r *ProfessorRepository) Search(ctx context.Context, term string) ([]models.Professor, error) {
	q := recordstore.Query{}
	if term != "" {
		q.Filters = append(q.Filters, recordstore.ILike("name", recordstore.Contains(term)))
	}
	rows, err := r.store.Find(ctx, recordstore.Professors, q.OrderBy(recordstore.Asc("name")))
	if err != nil {
		return nil, fmt.Errorf("failed to search professors: %w", err)
	}
	return recordstore.DecodeAll[models.Professor](rows)
}

// GetAll returns every professor, oldest first
func (r *ProfessorRepository) GetAll(ctx context.Context) ([]models.Professor, error) {
	rows, err := r.store.Find(ctx, recordstore.Professors, recordstore.Query{}.OrderBy(recordstore.Asc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("failed to list professors: %w", err)
	}
	return recordstore.DecodeAll[models.Professor](rows)
}

// GetWithDepartment returns professors that have a primary department set
func (r *ProfessorRepository) GetWithDepartment(ctx context.Context) ([]models.Professor, error) {
	rows, err := r.store.Find(ctx, recordstore.Professors,
		recordstore.Where(recordstore.NotNull("department_id")).OrderBy(recordstore.Asc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("failed to list professors with departments: %w", err)
	}
	return recordstore.DecodeAll[models.Professor](rows)
}

// CreateBatch inserts professors in one call. Aggregates start at zero.
func (r *ProfessorRepository) CreateBatch(ctx context.Context, professors []models.Professor) ([]models.Professor, error) {
	rows := make([]recordstore.Row, len(professors))
	for i, p := range professors {
		title := p.Title
		if title == "" {
			title = models.DefaultProfessorTitle
		}
		rows[i] = recordstore.Row{
			"name":                     p.Name,
			"department_id":            p.DepartmentID,
			"title":                    title,
			"average_rating":           0,
			"difficulty_rating":        0,
			"would_take_again_percent": 0,
			"total_reviews":            0,
		}
	}
	created, err := r.store.Insert(ctx, recordstore.Professors, rows...)
	if err != nil {
		return nil, err
	}
	return recordstore.DecodeAll[models.Professor](created)
}

// UpdateAggregates writes all four aggregate fields in a single update
func (r *ProfessorRepository) UpdateAggregates(ctx context.Context, id string, agg models.Aggregates) error {
	rows, err := r.store.Update(ctx, recordstore.Professors, recordstore.Row{
		"average_rating":           agg.AverageRating,
		"difficulty_rating":        agg.DifficultyRating,
		"would_take_again_percent": agg.WouldTakeAgainPercent,
		"total_reviews":            agg.TotalReviews,
	}, recordstore.Eq("id", id))
	if err != nil {
		return fmt.Errorf("failed to update professor aggregates: %w", err)
	}
	if len(rows) == 0 {
		return apperrors.ErrProfessorNotFound
	}
	return nil
}
