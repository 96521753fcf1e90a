package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsUnwrapToKind(t *testing.T) {
	assert.ErrorIs(t, ErrProfessorNotFound, ErrResourceNotFound)
	assert.ErrorIs(t, ErrEmailAlreadyExists, ErrConflict)
	assert.ErrorIs(t, ErrEmailNotVerified, ErrPermissionDenied)
	assert.ErrorIs(t, fmt.Errorf("load: %w", ErrInvalidEmailToken), ErrValidationFailed)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "course not found", UserMessage(fmt.Errorf("profile: %w", ErrCourseNotFound), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("raw"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(NewCustomError(ErrConflict, ""), "fallback"))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("comment", "too short")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.EqualError(t, err, "too short")

	var custom *CustomError
	assert.True(t, errors.As(err, &custom))
	assert.Equal(t, "comment", custom.Details["field"])
}
