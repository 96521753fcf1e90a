package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aggiereview/aggiereview/internal/app/models"
	"github.com/aggiereview/aggiereview/internal/app/repositories"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/memstore"
)

type env struct {
	store *memstore.Store
	repos *repositories.Repositories
	comp  models.Department
	math  models.Department
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repositories.NewMemoryStore()
	e := &env{store: store, repos: repositories.NewRepositories(store)}

	e.comp = models.Department{Name: "Computer Science", Code: "COMP"}
	require.NoError(t, e.repos.DepartmentRepository.Create(context.Background(), &e.comp))
	e.math = models.Department{Name: "Mathematics", Code: "MATH"}
	require.NoError(t, e.repos.DepartmentRepository.Create(context.Background(), &e.math))
	return e
}

func (e *env) courseCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.Count(context.Background(), recordstore.Courses)
	require.NoError(t, err)
	return n
}

func catalogOf(groups ...Group) Catalog {
	return Catalog{Groups: groups}
}

// rowsContain reports whether any row has column == value
func rowsContain(rows []recordstore.Row, column, value string) bool {
	for _, r := range rows {
		if r.String(column) == value {
			return true
		}
	}
	return false
}
