// Package errs holds the error kinds shared by the scheduling core and the HTTP handlers.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when a TV, campaign, ad or assignment does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input: an empty interval, a missing required field, etc.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
