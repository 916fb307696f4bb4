package eval

import (
	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// ProcessFn is a deferred leaf computation: a task's process function with
// its inputs already bound.
type ProcessFn func() (any, error)

// Context is the evaluation protocol. Implementations are either a root
// context that performs real expansion and invocation, or a decorator that
// wraps an inner context and overrides a subset of the operations.
// Contexts must be safe for concurrent use.
type Context interface {
	// EvaluateInternal produces the value of t, expanding its upstream
	// dependencies as needed. ctx is the outermost composed context;
	// implementations must route recursive evaluation and process-fn
	// invocation through ctx so every decorator observes every task.
	EvaluateInternal(t task.Task, ctx Context) future.Value

	// InvokeProcessFn runs a task's leaf computation once its inputs have
	// completed and returns the computation's future value.
	InvokeProcessFn(id task.ID, fn ProcessFn) future.Value

	// Value lifts fn into the context's execution model and returns its
	// future value.
	Value(fn ProcessFn) future.Value

	// Promise allocates a new unresolved future pair.
	Promise() future.Promise
}

// Evaluate evaluates t in ctx. It is the evaluation entry point: it seeds
// EvaluateInternal with ctx itself so recursive expansion re-enters the
// full pipeline.
func Evaluate(ctx Context, t task.Task) future.Value {
	return ctx.EvaluateInternal(t, ctx)
}
