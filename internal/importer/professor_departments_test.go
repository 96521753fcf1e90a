package importer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/app/models"
)

func TestPopulateProfessorDepartments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	compID := e.comp.ID
	_, err := e.repos.ProfessorRepository.CreateBatch(ctx, []models.Professor{
		{Name: "Dr. A", DepartmentID: &compID},
		{Name: "Dr. B", DepartmentID: &compID},
		{Name: "Dr. Nowhere"},
	})
	require.NoError(t, err)

	populator := NewProfessorDepartmentPopulator(e.repos.ProfessorRepository, e.repos.ProfessorDepartmentRepository, 0, zerolog.Nop())

	report, err := populator.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, PopulateReport{Professors: 2, Inserted: 2, Total: 2}, report)

	rerun, err := populator.Populate(ctx)
	require.NoError(t, err)
	assert.Equal(t, PopulateReport{Professors: 2, Duplicates: 2, Total: 2}, rerun)
}

func TestPopulateProfessorDepartments_Empty(t *testing.T) {
	e := newEnv(t)

	report, err := NewProfessorDepartmentPopulator(e.repos.ProfessorRepository, e.repos.ProfessorDepartmentRepository, 0, zerolog.Nop()).
		Populate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PopulateReport{}, report)
}
