package importer

import (
	"context"
	"strings"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// DepartmentLister supplies the known departments
type DepartmentLister interface {
	GetAll(ctx context.Context) ([]models.Department, error)
}

// CleanLabel strips surrounding quote characters and whitespace from a label
func CleanLabel(label string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(label), `"'`))
}

// departmentIndex resolves labels to departments by name
type departmentIndex struct {
	byName   map[string]models.Department
	foldCase bool
}

func newDepartmentIndex(departments []models.Department, foldCase bool) departmentIndex {
	idx := departmentIndex{byName: make(map[string]models.Department, len(departments)), foldCase: foldCase}
	for _, d := range departments {
		key := idx.key(d.Name)
		if _, dup := idx.byName[key]; !dup {
			idx.byName[key] = d
		}
	}
	return idx
}

func (idx departmentIndex) key(name string) string {
	if idx.foldCase {
		return strings.ToLower(name)
	}
	return name
}

func (idx departmentIndex) lookup(name string) (models.Department, bool) {
	d, ok := idx.byName[idx.key(name)]
	return d, ok
}
