// Package recordstore defines the generic record store capability the application
// persists through: named collections of JSON-like rows addressed by filters.
package recordstore

import (
	"context"
	"fmt"

	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
)

// Store errors. Each wraps the matching apperrors sentinel so callers can branch
// on either.
var (
	ErrNotFound  = fmt.Errorf("record %w", apperrors.ErrResourceNotFound)
	ErrConflict  = fmt.Errorf("unique constraint %w", apperrors.ErrConflict)
	ErrTransient = apperrors.ErrTransient
)

// Collection names used by the application.
const (
	Departments          = "departments"
	Courses              = "courses"
	Professors           = "professors"
	ProfessorDepartments = "professor_departments"
	Reviews              = "reviews"
	Profiles             = "profiles"
	VerificationCodes    = "verification_codes"
)

// Row is a single record keyed by column name.
type Row map[string]any

// UpsertOptions controls conflict handling for Upsert.
type UpsertOptions struct {
	// ConflictKey lists the columns of the unique constraint to resolve against.
	ConflictKey []string
	// IgnoreDuplicates leaves conflicting rows untouched instead of overwriting them.
	IgnoreDuplicates bool
}

// UpsertResult reports what an Upsert did.
type UpsertResult struct {
	Rows     []Row
	Inserted int
	Skipped  int
}

// Store is the persistence capability. Implementations must return ErrNotFound
// from FindOne when nothing matches or when a key cannot reference any record
// (malformed id, dangling reference), ErrConflict on a uniqueness violation and
// an error wrapping ErrTransient for any other failure.
type Store interface {
	Find(ctx context.Context, collection string, q Query) ([]Row, error)
	FindOne(ctx context.Context, collection string, filters ...Filter) (Row, error)
	Insert(ctx context.Context, collection string, rows ...Row) ([]Row, error)
	Upsert(ctx context.Context, collection string, rows []Row, opts UpsertOptions) (UpsertResult, error)
	Update(ctx context.Context, collection string, patch Row, filters ...Filter) ([]Row, error)
	Delete(ctx context.Context, collection string, filters ...Filter) ([]Row, error)
	Count(ctx context.Context, collection string, filters ...Filter) (int64, error)
}
