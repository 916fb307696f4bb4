package eval

import (
	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// ForwardingContext is the embeddable decorator base. It holds the wrapped
// inner context exclusively and implements the full protocol by
// delegation; decorators embed it and override the operations they need.
type ForwardingContext struct {
	inner Context
}

// Forward wraps inner for embedding in a decorator.
func Forward(inner Context) ForwardingContext {
	return ForwardingContext{inner: inner}
}

// Inner returns the wrapped context.
func (f ForwardingContext) Inner() Context {
	return f.inner
}

// EvaluateInternal delegates to the wrapped context.
func (f ForwardingContext) EvaluateInternal(t task.Task, ctx Context) future.Value {
	return f.inner.EvaluateInternal(t, ctx)
}

// InvokeProcessFn delegates to the wrapped context.
func (f ForwardingContext) InvokeProcessFn(id task.ID, fn ProcessFn) future.Value {
	return f.inner.InvokeProcessFn(id, fn)
}

// Value delegates to the wrapped context.
func (f ForwardingContext) Value(fn ProcessFn) future.Value {
	return f.inner.Value(fn)
}

// Promise delegates to the wrapped context.
func (f ForwardingContext) Promise() future.Promise {
	return f.inner.Promise()
}
