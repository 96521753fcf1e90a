package importer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/memstore"
)

func (e *env) professorImporter(batchSize int) *ProfessorImporter {
	return NewProfessorImporter(e.repos.DepartmentRepository, e.repos.ProfessorRepository, batchSize, zerolog.Nop())
}

func TestProfessorImport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	report, err := e.professorImporter(0).Import(ctx, catalogOf(
		Group{Label: "Computer Science", Entries: []string{"Dr. Ada Lovelace", "  ", "Dr. Alan Turing"}},
		Group{Label: "computer science", Entries: []string{"Dr. Grace Hopper"}},
		Group{Label: "Mathematics", Entries: []string{"Dr. Emmy Noether"}},
	))
	require.NoError(t, err)
	assert.Equal(t, ProfessorReport{Imported: 3, Skipped: 1}, report)

	professors, err := e.repos.ProfessorRepository.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, professors, 3)

	first := professors[0]
	assert.Equal(t, "Dr. Ada Lovelace", first.Name)
	assert.Equal(t, models.DefaultProfessorTitle, first.Title)
	require.NotNil(t, first.DepartmentID)
	assert.Equal(t, e.comp.ID, *first.DepartmentID)
	assert.Zero(t, first.TotalReviews)
	assert.Equal(t, e.math.ID, *professors[2].DepartmentID)
}

func TestProfessorImport_FailedBatchIsCounted(t *testing.T) {
	e := newEnv(t)
	e.store.SetFault(func(op, collection string, rows []recordstore.Row) error {
		if op == memstore.OpInsert && rowsContain(rows, "name", "Dr. B") {
			return recordstore.ErrTransient
		}
		return nil
	})

	report, err := e.professorImporter(2).Import(context.Background(), catalogOf(
		Group{Label: "Computer Science", Entries: []string{"Dr. A", "Dr. B", "Dr. C"}},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 2, report.Errors)
}
