package domain

import (
	"errors"
	"fmt"
)

// ValidationError rejects a request whose filter values are malformed.
// The whole request fails; malformed filters are never silently ignored.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single filter field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SignalUnavailableError means the underlying catalog/sales/pricing source
// could not produce the dataset. The request fails as a whole; partial or
// zeroed results must never be returned in its place.
type SignalUnavailableError struct {
	Op  string
	Err error
}

func (e *SignalUnavailableError) Error() string {
	return fmt.Sprintf("signal source unavailable during %s: %v", e.Op, e.Err)
}

func (e *SignalUnavailableError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsSignalUnavailable reports whether err is a SignalUnavailableError.
func IsSignalUnavailable(err error) bool {
	var se *SignalUnavailableError
	return errors.As(err, &se)
}
