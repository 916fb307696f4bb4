package task

import (
	"errors"
	"fmt"
)

// ConstructionError reports a task or strategy definition that cannot be
// used. It is raised synchronously at construction or registration time,
// before any evaluation starts, and is never routed through a future.
type ConstructionError struct {
	// Subject names the definition element at fault: an argument name,
	// a task name, or a result type.
	Subject string

	// Reason is the human-readable description of what is wrong.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("construction: %s: %s: %v", e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("construction: %s: %s", e.Subject, e.Reason)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// NewConstructionError creates a new construction error for the named
// definition element.
func NewConstructionError(subject, reason string, err error) *ConstructionError {
	return &ConstructionError{
		Subject: subject,
		Reason:  reason,
		Err:     err,
	}
}

// IsConstructionError returns true if err or any error in its chain is a
// ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
