package importer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// Placeholders for professors without a resolvable department
const (
	UnknownDepartmentName = "Unknown"
	UnknownDepartmentCode = "UNKN"
)

// ProfessorLister lists every professor
type ProfessorLister interface {
	GetAll(ctx context.Context) ([]models.Professor, error)
}

// DepartmentResolver looks departments up by ID
type DepartmentResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Department, error)
}

// DuplicateGroup is a set of professors sharing one exact name
type DuplicateGroup struct {
	Name            string   `json:"name"`
	Records         int      `json:"records"`
	Departments     []string `json:"departments"`
	DepartmentCodes []string `json:"department_codes"`
	PrimaryID       string   `json:"primary_id"`
	MergeIDs        []string `json:"merge_ids"`
}

// DuplicateReport lists duplicate groups in first-seen order
type DuplicateReport struct {
	Groups []DuplicateGroup `json:"groups"`
	// TotalDuplicateRecords is the number of rows that would be merged away
	TotalDuplicateRecords int `json:"total_duplicate_records"`
}

// DuplicateDetector reports professors that share a name. It never writes.
type DuplicateDetector struct {
	professors  ProfessorLister
	departments DepartmentResolver
	logger      zerolog.Logger
}

// NewDuplicateDetector creates a detector
func NewDuplicateDetector(professors ProfessorLister, departments DepartmentResolver, logger zerolog.Logger) *DuplicateDetector {
	return &DuplicateDetector{
		professors:  professors,
		departments: departments,
		logger:      logger.With().Str("component", "duplicates").Logger(),
	}
}

// Records joins every professor with its primary department
func (d *DuplicateDetector) Records(ctx context.Context) ([]models.ProfessorRecord, error) {
	professors, err := d.professors.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load professors: %w", err)
	}

	ids := make([]string, 0, len(professors))
	for _, p := range professors {
		if p.DepartmentID != nil {
			ids = append(ids, *p.DepartmentID)
		}
	}
	departments, err := d.departments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}

	records := make([]models.ProfessorRecord, 0, len(professors))
	for _, p := range professors {
		rec := models.ProfessorRecord{
			ID:             p.ID,
			Name:           p.Name,
			DepartmentName: UnknownDepartmentName,
			DepartmentCode: UnknownDepartmentCode,
		}
		if p.DepartmentID != nil {
			if dept, ok := departments[*p.DepartmentID]; ok {
				rec.DepartmentName = dept.Name
				rec.DepartmentCode = dept.Code
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// GroupDuplicates groups records by exact name and keeps groups of two or more
func GroupDuplicates(records []models.ProfessorRecord) DuplicateReport {
	order := make([]string, 0)
	byName := make(map[string][]models.ProfessorRecord)
	for _, r := range records {
		if _, ok := byName[r.Name]; !ok {
			order = append(order, r.Name)
		}
		byName[r.Name] = append(byName[r.Name], r)
	}

	report := DuplicateReport{Groups: []DuplicateGroup{}}
	for _, name := range order {
		group := byName[name]
		if len(group) < 2 {
			continue
		}

		g := DuplicateGroup{
			Name:      name,
			Records:   len(group),
			PrimaryID: group[0].ID,
		}
		for _, r := range group {
			g.Departments = appendDistinct(g.Departments, r.DepartmentName)
			g.DepartmentCodes = appendDistinct(g.DepartmentCodes, r.DepartmentCode)
		}
		for _, r := range group[1:] {
			g.MergeIDs = append(g.MergeIDs, r.ID)
		}

		report.Groups = append(report.Groups, g)
		report.TotalDuplicateRecords += len(group) - 1
	}
	return report
}

func appendDistinct(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// Detect builds the duplicate report
func (d *DuplicateDetector) Detect(ctx context.Context) (DuplicateReport, error) {
	records, err := d.Records(ctx)
	if err != nil {
		return DuplicateReport{}, err
	}
	report := GroupDuplicates(records)
	d.logger.Info().
		Int("groups", len(report.Groups)).
		Int("duplicateRecords", report.TotalDuplicateRecords).
		Msg("Duplicate analysis complete")
	return report, nil
}
