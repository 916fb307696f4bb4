package eval

import (
	"sync"
	"sync/atomic"

	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// Sync returns a root context that runs every computation on the
// goroutine that requests it. Useful for tests and for callers that manage
// their own concurrency.
func Sync() Context {
	return &rootContext{exec: execFunc(func(fn func()) { fn() })}
}

// Async returns a root context that submits computations to exec. A nil
// exec runs each computation on its own goroutine.
func Async(exec Executor) Context {
	if exec == nil {
		exec = execFunc(func(fn func()) { go fn() })
	}
	return &rootContext{exec: exec}
}

// rootContext is the innermost context: it performs real upstream
// expansion and process-fn invocation. Everything above it decorates.
type rootContext struct {
	exec Executor
}

// EvaluateInternal expands t and produces its value: upstream tasks are
// evaluated recursively through ctx, their results are collected in input
// order, and the process fn is invoked through ctx once all inputs
// completed. The first upstream failure fails the result without invoking
// the process fn.
func (r *rootContext) EvaluateInternal(t task.Task, ctx Context) future.Value {
	id, upstreams, err := expand(t)
	if err != nil {
		return future.ImmediateError(err)
	}

	values := make([]future.Value, len(upstreams))
	for i, u := range upstreams {
		values[i] = Evaluate(ctx, u)
	}

	result := ctx.Promise()
	collectInputs(values,
		func(inputs []any) {
			processed := ctx.InvokeProcessFn(id, func() (any, error) {
				return t.Process(inputs)
			})
			future.Chain(processed, result)
		},
		result.Fail,
	)
	return result.Value()
}

// InvokeProcessFn lifts the bound computation into the executor.
func (r *rootContext) InvokeProcessFn(_ task.ID, fn ProcessFn) future.Value {
	return r.Value(fn)
}

// Value runs fn on the executor and routes its outcome into a fresh
// promise.
func (r *rootContext) Value(fn ProcessFn) future.Value {
	p := future.NewPromise()
	r.exec.Submit(func() {
		resolve(p, fn)
	})
	return p.Value()
}

// Promise allocates a new unresolved future pair.
func (r *rootContext) Promise() future.Promise {
	return future.NewPromise()
}

// expand forces the task's upstream list and identity, converting a panic
// in user definition code into an error.
func expand(t task.Task) (id task.ID, upstreams []task.Task, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewPanicError(rec)
		}
	}()
	upstreams = t.Upstreams()
	id = t.ID()
	return id, upstreams, nil
}

// resolve runs fn and feeds its outcome into p. A panic inside fn fails
// the promise; a panic raised later by a completion callback is not fn's
// and propagates unchanged.
func resolve(p future.Promise, fn ProcessFn) {
	settled := false
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if settled {
			panic(rec)
		}
		p.Fail(NewPanicError(rec))
	}()

	v, err := fn()
	settled = true
	if err != nil {
		p.Fail(err)
		return
	}
	p.Set(v)
}

// collectInputs gathers the terminal states of values. ready runs exactly
// once with one input per value, in order, after all of them complete;
// failed runs exactly once with the first observed error. The two are
// mutually exclusive.
func collectInputs(values []future.Value, ready func(inputs []any), failed func(err error)) {
	if len(values) == 0 {
		ready(nil)
		return
	}

	inputs := make([]any, len(values))
	var pending atomic.Int64
	pending.Store(int64(len(values)))
	var once sync.Once

	for i, v := range values {
		i := i
		v.Consume(func(val any) {
			inputs[i] = val
			if pending.Add(-1) == 0 {
				once.Do(func() { ready(inputs) })
			}
		})
		v.OnFail(func(err error) {
			once.Do(func() { failed(err) })
		})
	}
}
