package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/dberrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// ProfessorSource lists professors that have a primary department
type ProfessorSource interface {
	GetWithDepartment(ctx context.Context) ([]models.Professor, error)
}

// LinkWriter stores professor to department links
type LinkWriter interface {
	InsertBatch(ctx context.Context, links []models.ProfessorDepartment) (int, error)
	Count(ctx context.Context) (int64, error)
}

// PopulateReport summarizes a junction population run
type PopulateReport struct {
	Professors int `json:"professors"`
	Inserted   int `json:"inserted"`
	// Duplicates counts rows of batches rejected because a link already existed
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
	// Total is the junction's row count after the run
	Total int64 `json:"total"`
}

// ProfessorDepartmentPopulator copies each professor's primary department into
// the professor_departments junction.
type ProfessorDepartmentPopulator struct {
	professors ProfessorSource
	links      LinkWriter
	batchSize  int
	logger     zerolog.Logger
}

// NewProfessorDepartmentPopulator creates a populator
func NewProfessorDepartmentPopulator(professors ProfessorSource, links LinkWriter, batchSize int, logger zerolog.Logger) *ProfessorDepartmentPopulator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ProfessorDepartmentPopulator{
		professors: professors,
		links:      links,
		batchSize:  batchSize,
		logger:     logger.With().Str("component", "professor_departments").Logger(),
	}
}

// Populate inserts the links in batches. A batch that hits an existing link is
// counted as duplicates as a whole; other failures are counted as errors.
func (p *ProfessorDepartmentPopulator) Populate(ctx context.Context) (PopulateReport, error) {
	var report PopulateReport

	professors, err := p.professors.GetWithDepartment(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load professors: %w", err)
	}
	report.Professors = len(professors)
	if len(professors) == 0 {
		p.logger.Info().Msg("No professors found with a department")
		return report, nil
	}

	links := make([]models.ProfessorDepartment, 0, len(professors))
	for _, prof := range professors {
		links = append(links, models.ProfessorDepartment{
			ProfessorID:  prof.ID,
			DepartmentID: *prof.DepartmentID,
		})
	}

	for start := 0; start < len(links); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch := links[start:min(start+p.batchSize, len(links))]
		number := start/p.batchSize + 1

		inserted, err := p.links.InsertBatch(ctx, batch)
		switch {
		case err == nil:
			report.Inserted += inserted
			p.logger.Debug().Int("batch", number).Int("inserted", inserted).Msg("Inserted links")
		case errors.Is(err, recordstore.ErrConflict) || dberrors.LooksLikeDuplicate(err):
			report.Duplicates += len(batch)
			p.logger.Info().Int("batch", number).Int("size", len(batch)).Msg("Skipped duplicate batch")
		default:
			report.Errors += len(batch)
			p.logger.Error().Err(err).Int("batch", number).Msg("Failed to insert batch")
		}
	}

	total, err := p.links.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to count professor departments: %w", err)
	}
	report.Total = total

	p.logger.Info().
		Int("inserted", report.Inserted).
		Int("duplicates", report.Duplicates).
		Int64("total", report.Total).
		Msg("Professor departments populated")
	return report, nil
}
