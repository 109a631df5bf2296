// internal/core/validation.go
package core

import (
	"regexp"
)

// Regular expression for valid table/column names (alphanumeric + underscore)
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if a string is a valid SQL identifier for use in
// schema definitions. Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return len(name) > 0 && len(name) <= 64 && nameValidationRegex.MatchString(name)
}

// ValidationError reports a malformed or missing input field. Required,
// when set, lists the fields a request must carry.
type ValidationError struct {
	Field    string
	Message  string
	Required []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a *ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewMissingFieldsError reports that one or more of required was absent.
func NewMissingFieldsError(required ...string) *ValidationError {
	return &ValidationError{Message: "Missing required fields", Required: required}
}
