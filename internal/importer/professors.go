package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// ProfessorWriter creates professor rows
type ProfessorWriter interface {
	CreateBatch(ctx context.Context, professors []models.Professor) ([]models.Professor, error)
}

// ProfessorReport summarizes a roster import
type ProfessorReport struct {
	Imported int `json:"imported"`
	// Skipped counts names under departments that do not exist
	Skipped int `json:"skipped"`
	// Errors counts names in batches the store rejected
	Errors int `json:"errors"`
}

// ProfessorImporter loads a {department name -> professor names} roster
type ProfessorImporter struct {
	departments DepartmentLister
	professors  ProfessorWriter
	batchSize   int
	logger      zerolog.Logger
}

// NewProfessorImporter creates a roster importer
func NewProfessorImporter(departments DepartmentLister, professors ProfessorWriter, batchSize int, logger zerolog.Logger) *ProfessorImporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ProfessorImporter{
		departments: departments,
		professors:  professors,
		batchSize:   batchSize,
		logger:      logger.With().Str("component", "professor_importer").Logger(),
	}
}

// Import creates a professor per roster name with the default title and zero
// aggregates. Department names must match exactly.
func (imp *ProfessorImporter) Import(ctx context.Context, roster Catalog) (ProfessorReport, error) {
	var report ProfessorReport

	departments, err := imp.departments.GetAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load departments: %w", err)
	}
	idx := newDepartmentIndex(departments, false)

	for _, group := range roster.Groups {
		dept, ok := idx.lookup(group.Label)
		if !ok {
			report.Skipped += len(group.Entries)
			imp.logger.Warn().Str("department", group.Label).Int("professors", len(group.Entries)).
				Msg("Department not found, skipping")
			continue
		}

		imp.logger.Info().Str("department", dept.Name).Int("professors", len(group.Entries)).Msg("Importing professors")

		rows := make([]models.Professor, 0, len(group.Entries))
		for _, name := range group.Entries {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			deptID := dept.ID
			rows = append(rows, models.Professor{
				Name:         name,
				DepartmentID: &deptID,
				Title:        models.DefaultProfessorTitle,
			})
		}

		for start := 0; start < len(rows); start += imp.batchSize {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			batch := rows[start:min(start+imp.batchSize, len(rows))]
			created, err := imp.professors.CreateBatch(ctx, batch)
			if err != nil {
				report.Errors += len(batch)
				imp.logger.Error().Err(err).Str("department", dept.Name).Msg("Failed to import batch")
				continue
			}
			report.Imported += len(created)
		}
	}

	imp.logger.Info().
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("errors", report.Errors).
		Msg("Professor import complete")
	return report, nil
}
