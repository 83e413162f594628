package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError through errors.Is, so
// callers can branch on "some field was invalid" without knowing which.
var ErrValidation = errors.New("validation failed")

// Field names carried by ValidationError.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// ValidationError reports the first domain rule a raw value violated.
// It is produced only by validating factories and travels as the failure
// side of a result.Result; it is never panicked.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}
