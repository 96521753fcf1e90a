// Package seed loads the department list the importers and the API rely on.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

// DepartmentFile is the YAML layout of configs/departments.yaml
type DepartmentFile struct {
	Departments []struct {
		Name string `yaml:"name"`
		Code string `yaml:"code"`
	} `yaml:"departments"`
}

// DepartmentEnsurer creates departments whose names are not yet stored
type DepartmentEnsurer interface {
	EnsureAll(ctx context.Context, departments []models.Department) (int, error)
}

// LoadDepartments reads and validates a department file
func LoadDepartments(path string) ([]models.Department, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read department file: %w", err)
	}
	return ParseDepartments(raw)
}

// ParseDepartments decodes department YAML. Names must be present and unique.
func ParseDepartments(raw []byte) ([]models.Department, error) {
	var file DepartmentFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse department file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Departments))
	departments := make([]models.Department, 0, len(file.Departments))
	for i, d := range file.Departments {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("department #%d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("department %q is listed twice", name)
		}
		seen[name] = struct{}{}
		departments = append(departments, models.Department{
			Name: name,
			Code: strings.ToUpper(strings.TrimSpace(d.Code)),
		})
	}
	return departments, nil
}

// CreateDefaultData inserts the departments of path that do not exist yet
func CreateDefaultData(ctx context.Context, repo DepartmentEnsurer, path string, lgr zerolog.Logger) (int, error) {
	departments, err := LoadDepartments(path)
	if err != nil {
		return 0, err
	}

	lgr.Info().Int("departments", len(departments)).Str("file", path).Msg("Checking/Creating default departments...")
	created, err := repo.EnsureAll(ctx, departments)
	if err != nil {
		return 0, err
	}
	lgr.Info().Int("created", created).Msg("Default departments ready")
	return created, nil
}
