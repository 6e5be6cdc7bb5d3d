package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Services wrap these with entity-specific
// sentinels (fmt.Errorf("%w: ...")) so handlers can match either the kind or
// the concrete error with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateSubmission = errors.New("working hours already submitted for this date")
	ErrNotFound            = errors.New("record not found")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrForbidden           = errors.New("access denied")
)

// ErrOptimisticLock the row was changed by another request since it was read
var ErrOptimisticLock = errors.New("record was modified concurrently, reload and retry")

// ValidationError carries the offending field for form rendering.
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

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a *ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound returns a sentinel that matches both itself and ErrNotFound.
func NotFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}
