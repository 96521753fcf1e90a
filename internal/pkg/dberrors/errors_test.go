package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: UniqueViolationCode, ConstraintName: "courses_code_key"}
	wrapped := fmt.Errorf("insert: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.Equal(t, "courses_code_key", ConstraintName(wrapped))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.Empty(t, ConstraintName(errors.New("boom")))
}

func TestReferenceErrors(t *testing.T) {
	badUUID := fmt.Errorf("select: %w", &pgconn.PgError{Code: InvalidTextRepresentationCode,
		Message: `invalid input syntax for type uuid: "not-a-uuid"`})
	missingRef := &pgconn.PgError{Code: ForeignKeyViolationCode, ConstraintName: "reviews_course_id_fkey"}

	assert.True(t, IsInvalidTextRepresentation(badUUID))
	assert.False(t, IsForeignKeyViolation(badUUID))
	assert.False(t, IsUniqueViolation(badUUID))

	assert.True(t, IsForeignKeyViolation(missingRef))
	assert.False(t, IsInvalidTextRepresentation(missingRef))
	assert.Equal(t, "reviews_course_id_fkey", ConstraintName(missingRef))

	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.False(t, IsInvalidTextRepresentation(nil))
}

func TestLooksLikeDuplicate(t *testing.T) {
	assert.True(t, LooksLikeDuplicate(&pgconn.PgError{Code: UniqueViolationCode}))
	assert.True(t, LooksLikeDuplicate(errors.New(`ERROR: duplicate key value violates unique constraint`)))
	assert.False(t, LooksLikeDuplicate(errors.New("connection refused")))
	assert.False(t, LooksLikeDuplicate(nil))
}
