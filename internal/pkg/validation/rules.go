package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aggiereview/aggiereview/internal/pkg/apperrors"
)

// Validation rule values
var (
	// InstitutionalDomain is the email suffix every account must use
	InstitutionalDomain = "@aggies.ncat.edu"

	PasswordMinLength = 6

	// CommentMinLength counts characters, not bytes
	CommentMinLength = 20

	RatingMin = 1
	RatingMax = 5

	NameMaxLength = 100
)

// User-facing messages
const (
	MsgPasswordTooShort = "Password must be at least 6 characters"
	MsgFullNameRequired = "Please enter your full name"
	MsgReviewIncomplete = "Please fill in all required fields. Comment must be at least 20 characters."
	MsgProfessorMissing = "Please select a professor"
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	EmailLocalPart *regexp.Regexp
	Code           *regexp.Regexp
}{
	EmailLocalPart: regexp.MustCompile(`^[a-z0-9._%+\-]+$`),
	Code:           regexp.MustCompile(`^\d{6}$`),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// Numeric validation
type NumericValidation struct {
	Value    int
	Min      int
	Max      int
	Required bool
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(value int) *NumericValidation {
	return &NumericValidation{
		Value:    value,
		Required: true,
	}
}

// WithMin sets minimum value
func (v *NumericValidation) WithMin(min int) *NumericValidation {
	v.Min = min
	return v
}

// WithMax sets maximum value
func (v *NumericValidation) WithMax(max int) *NumericValidation {
	v.Max = max
	return v
}

// WithRequired sets if field is required
func (v *NumericValidation) WithRequired(required bool) *NumericValidation {
	v.Required = required
	return v
}

// Validate performs validation. Zero means unset, which fails a required check.
func (v *NumericValidation) Validate() bool {
	if v.Required && v.Value == 0 {
		return false
	}
	if v.Min != 0 && v.Value < v.Min {
		return false
	}
	if v.Max != 0 && v.Value > v.Max {
		return false
	}
	return true
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InstitutionalEmailMessage is the error shown for an email outside domain
func InstitutionalEmailMessage(domain string) string {
	return fmt.Sprintf("You must use a valid NC A&T email (%s)", domain)
}

// ValidateInstitutionalEmail checks that email (case-insensitively) ends with domain
// and has a plausible local part.
func ValidateInstitutionalEmail(email, domain string) error {
	normalized := NormalizeEmail(email)
	domain = strings.ToLower(domain)
	local, ok := strings.CutSuffix(normalized, domain)
	if !ok || !CompiledPatterns.EmailLocalPart.MatchString(local) {
		return apperrors.NewValidationError("email", InstitutionalEmailMessage(domain))
	}
	return nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(password string) error {
	if !NewStringValidation(password).WithMinLength(PasswordMinLength).Validate() {
		return apperrors.NewValidationError("password", MsgPasswordTooShort)
	}
	return nil
}

// ValidateFullName requires a non-blank display name
func ValidateFullName(name string) error {
	if !NewStringValidation(strings.TrimSpace(name)).WithMaxLength(NameMaxLength).Validate() {
		return apperrors.NewValidationError("full_name", MsgFullNameRequired)
	}
	return nil
}

// ValidateVerificationCode requires a six digit code
func ValidateVerificationCode(code string) error {
	if !NewStringValidation(strings.TrimSpace(code)).WithPattern(CompiledPatterns.Code).Validate() {
		return apperrors.NewValidationError("code", "Verification code must be 6 digits")
	}
	return nil
}

// ValidateScore checks a 1-5 score; field names the score in the message
func ValidateScore(field string, value int) error {
	if value == 0 {
		return apperrors.NewValidationError(field, MsgReviewIncomplete)
	}
	if !NewNumericValidation(value).WithMin(RatingMin).WithMax(RatingMax).Validate() {
		return apperrors.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d", field, RatingMin, RatingMax))
	}
	return nil
}

// ValidateComment enforces the minimum review comment length
func ValidateComment(comment string) error {
	if !NewStringValidation(comment).WithMinLength(CommentMinLength).Validate() {
		return apperrors.NewValidationError("comment", MsgReviewIncomplete)
	}
	return nil
}
