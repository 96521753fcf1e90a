package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Store errors that are neither a missing record nor a constraint violation
	ErrTransient = errors.New("record store unavailable")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Rate limiting
	ErrTooManyRequests = errors.New("too many requests")
)

// Domain errors. Each unwraps to the general kind above so the HTTP layer can map
// it to a status code while still showing the specific message.
var (
	ErrProfileNotFound    = NewCustomError(ErrResourceNotFound, "profile not found")
	ErrEmailAlreadyExists = NewCustomError(ErrConflict, "An account with this email already exists")

	ErrDepartmentNotFound = NewCustomError(ErrResourceNotFound, "department not found")
	ErrCourseNotFound     = NewCustomError(ErrResourceNotFound, "course not found")
	ErrProfessorNotFound  = NewCustomError(ErrResourceNotFound, "professor not found")
	ErrReviewNotFound     = NewCustomError(ErrResourceNotFound, "review not found")
)

// Email verification errors
var (
	ErrEmailNotVerified  = NewCustomError(ErrPermissionDenied, "Please verify your email before signing in")
	ErrInvalidEmailToken = NewCustomError(ErrValidationFailed, "Invalid or expired verification code")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation failure carrying the message shown to the user
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// UserMessage returns the message of the outermost CustomError in the chain, or fallback.
func UserMessage(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
