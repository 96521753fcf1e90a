package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
)

// DefaultBatchSize bounds how many rows are written per store call
const DefaultBatchSize = 100

// maxLoggedErrors caps per-item error logging; later errors are only counted
const maxLoggedErrors = 10

// CourseWriter is the course storage the importer needs
type CourseWriter interface {
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	UpsertBatch(ctx context.Context, courses []models.Course, ignoreDuplicates bool) (recordstore.UpsertResult, error)
}

// CourseReport summarizes a course import
type CourseReport struct {
	Strategy Strategy `json:"strategy"`
	// Unique is the number of candidate courses staged after dedup
	Unique   int `json:"unique"`
	Imported int `json:"imported"`
	// Existing counts candidates whose code was already stored
	Existing int `json:"existing"`
	Errors   int `json:"errors"`
	// UnknownDepartments counts labels that matched no department
	UnknownDepartments int `json:"unknown_departments"`
}

// CourseImporter stages courses from a catalog and writes them in batches
type CourseImporter struct {
	departments DepartmentLister
	courses     CourseWriter
	strategy    Strategy
	batchSize   int
	logger      zerolog.Logger
}

// NewCourseImporter creates a course importer. A batchSize of zero or less
// means DefaultBatchSize.
func NewCourseImporter(departments DepartmentLister, courses CourseWriter, strategy Strategy, batchSize int, logger zerolog.Logger) *CourseImporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CourseImporter{
		departments: departments,
		courses:     courses,
		strategy:    strategy,
		batchSize:   batchSize,
		logger:      logger.With().Str("component", "course_importer").Str("strategy", strategy.String()).Logger(),
	}
}

// Stage resolves department labels and parses lines into unique candidate
// courses, in catalog order. Unparsable lines are dropped without being counted.
func (imp *CourseImporter) Stage(ctx context.Context, catalog Catalog) ([]models.Course, int, error) {
	departments, err := imp.departments.GetAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load departments: %w", err)
	}
	idx := newDepartmentIndex(departments, true)

	seen := make(map[string]struct{})
	var staged []models.Course
	unknown := 0

	for _, group := range catalog.Groups {
		label := CleanLabel(group.Label)
		dept, ok := idx.lookup(label)
		if !ok {
			unknown++
			imp.logger.Warn().Str("department", label).Msg("Department not found, skipping")
			continue
		}

		for _, line := range group.Entries {
			listing, ok := imp.strategy.Parse(line)
			if !ok {
				imp.logger.Debug().Str("line", line).Msg("Skipping unparsable listing")
				continue
			}

			key := listing.Code
			if imp.strategy == StrategyStrict {
				key += "|" + dept.ID
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			staged = append(staged, models.Course{
				Code:         listing.Code,
				Name:         listing.Name,
				DepartmentID: dept.ID,
			})
		}
	}
	return staged, unknown, nil
}

// Import stages the catalog and writes the candidates
func (imp *CourseImporter) Import(ctx context.Context, catalog Catalog) (CourseReport, error) {
	report := CourseReport{Strategy: imp.strategy}

	staged, unknown, err := imp.Stage(ctx, catalog)
	if err != nil {
		return report, err
	}
	report.Unique = len(staged)
	report.UnknownDepartments = unknown
	imp.logger.Info().Int("unique", report.Unique).Msg("Staged unique courses")

	for start := 0; start < len(staged); start += imp.batchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		end := min(start+imp.batchSize, len(staged))
		batch := staged[start:end]

		if imp.strategy == StrategyPermissive {
			imp.upsertBatch(ctx, batch, start/imp.batchSize+1, &report)
		} else {
			imp.insertEach(ctx, batch, &report)
		}
	}

	imp.logger.Info().
		Int("unique", report.Unique).
		Int("imported", report.Imported).
		Int("existing", report.Existing).
		Int("errors", report.Errors).
		Int("unknownDepartments", report.UnknownDepartments).
		Msg("Course import complete")
	return report, nil
}

// insertEach checks and inserts every course of the batch on its own
func (imp *CourseImporter) insertEach(ctx context.Context, batch []models.Course, report *CourseReport) {
	for i := range batch {
		course := batch[i]

		_, err := imp.courses.GetByCode(ctx, course.Code)
		switch {
		case err == nil:
			report.Existing++
			continue
		case !errors.Is(err, apperrors.ErrResourceNotFound):
			imp.itemError(report, course.Code, err)
			continue
		}

		if err := imp.courses.Create(ctx, &course); err != nil {
			if errors.Is(err, recordstore.ErrConflict) {
				report.Existing++
				continue
			}
			imp.itemError(report, course.Code, err)
			continue
		}

		report.Imported++
		if report.Imported%100 == 0 {
			imp.logger.Info().Int("imported", report.Imported).Msg("Import progress")
		}
	}
}

// upsertBatch writes the batch in one call; a failure counts every row
func (imp *CourseImporter) upsertBatch(ctx context.Context, batch []models.Course, number int, report *CourseReport) {
	res, err := imp.courses.UpsertBatch(ctx, batch, true)
	if err != nil {
		report.Errors += len(batch)
		imp.logger.Error().Err(err).Int("batch", number).Int("size", len(batch)).Msg("Failed to import batch")
		return
	}
	report.Imported += res.Inserted
	report.Existing += res.Skipped
}

func (imp *CourseImporter) itemError(report *CourseReport, code string, err error) {
	report.Errors++
	if report.Errors <= maxLoggedErrors {
		imp.logger.Error().Err(err).Str("code", code).Msg("Failed to import course")
	}
}
