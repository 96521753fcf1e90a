package dberrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the store distinguishes
const (
	UniqueViolationCode           = "23505"
	ForeignKeyViolationCode       = "23503"
	InvalidTextRepresentationCode = "22P02"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation checks if the error is a PostgreSQL unique violation on any constraint.
func IsUniqueViolation(err error) bool {
	return hasCode(err, UniqueViolationCode)
}

// IsForeignKeyViolation reports a write referencing a row that does not exist.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, ForeignKeyViolationCode)
}

// IsInvalidTextRepresentation reports a value the column type cannot parse,
// such as a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	return hasCode(err, InvalidTextRepresentationCode)
}

// ConstraintName returns the violated constraint, if the error carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// LooksLikeDuplicate matches errors by message when no SQLSTATE is available,
// e.g. errors that crossed a process boundary as plain text.
func LooksLikeDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return IsUniqueViolation(err) || strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
