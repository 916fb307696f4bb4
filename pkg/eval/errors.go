package eval

import (
	"fmt"
	"runtime/debug"
)

// PanicError wraps a panic recovered from a task process function or a
// submitted computation, so the panic travels the failure channel instead
// of crashing the resolving goroutine.
type PanicError struct {
	// Value is the recovered panic value.
	Value any

	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

// NewPanicError captures the current stack and wraps the panic value v.
func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during evaluation: %v", e.Value)
}
