package session

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrStaleWrite is returned when a write for the same record is already in flight.
	ErrStaleWrite = errors.New("a save for this record is still in progress")
	ErrNoSession  = errors.New("no open session")
	ErrSaving     = errors.New("session is saving")
	ErrNotFound   = errors.New("record not found")
)

// ValidationError names the form field that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
