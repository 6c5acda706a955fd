// Package serviceerr defines the failure taxonomy shared by the auth and
// catalog components. Sentinel errors are checked with errors.Is; the
// structured ValidationError is extracted with errors.As.
package serviceerr

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrConflict = errors.New("already exists")
var ErrNotFound = errors.New("not found")
var ErrNetwork = errors.New("network failure")
var ErrUnknown = errors.New("unknown failure")

// ValidationError reports malformed input caught before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError anywhere in its
// chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
