// Package apperr defines the application error taxonomy.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports required fields missing from a form submission.
// The submission is rejected whole; nothing is persisted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validation builds a ValidationError for the given field names.
func Validation(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps err into a *ValidationError, or returns nil.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
