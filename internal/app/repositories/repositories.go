package repositories

import (
	"errors"

	"github.com/aggiereview/aggiereview/internal/pkg/recordstore"
	"github.com/aggiereview/aggiereview/internal/pkg/recordstore/memstore"
)

// UniqueKeys mirrors the unique constraints declared in migrations/.
var UniqueKeys = map[string][][]string{
	recordstore.Departments:          {{"name"}},
	recordstore.Courses:              {{"code"}},
	recordstore.ProfessorDepartments: {{"professor_id", "department_id"}},
	recordstore.Reviews:              {{"user_id", "professor_id", "course_id"}},
	recordstore.Profiles:             {{"email"}},
}

// NewMemoryStore creates an in-memory record store with the application's unique keys.
func NewMemoryStore(opts ...memstore.Option) *memstore.Store {
	for collection, keys := range UniqueKeys {
		for _, cols := range keys {
			opts = append(opts, memstore.WithUniqueKey(collection, cols...))
		}
	}
	return memstore.New(opts...)
}

// Repositories holds all the repository instances
type Repositories struct {
	Store                         recordstore.Store
	DepartmentRepository          *DepartmentRepository
	CourseRepository              *CourseRepository
	ProfessorRepository           *ProfessorRepository
	ProfessorDepartmentRepository *ProfessorDepartmentRepository
	ReviewRepository              *ReviewRepository
	ProfileRepository             *ProfileRepository
	VerificationCodeRepository    *VerificationCodeRepository
}

// NewRepositories initializes all repositories on top of one record store
func NewRepositories(store recordstore.Store) *Repositories {
	return &Repositories{
		Store:                         store,
		DepartmentRepository:          NewDepartmentRepository(store),
		CourseRepository:              NewCourseRepository(store),
		ProfessorRepository:           NewProfessorRepository(store),
		ProfessorDepartmentRepository: NewProfessorDepartmentRepository(store),
		ReviewRepository:              NewReviewRepository(store),
		ProfileRepository:             NewProfileRepository(store),
		VerificationCodeRepository:    NewVerificationCodeRepository(store),
	}
}

// notFound swaps the store's generic not-found error for a domain one
func notFound(err, domainErr error) error {
	if errors.Is(err, recordstore.ErrNotFound) {
		return domainErr
	}
	return err
}

// uniqueStrings returns ids without blanks or repeats, keeping first-seen order
func uniqueStrings(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
