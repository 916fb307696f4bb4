package observer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/eval"
	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// Context is the observing evaluation decorator. It emits WillEvaluate
// before delegating expansion and Starting before delegating process-fn
// invocation, then reports Completed or Failed with the elapsed time when
// the invocation reaches its terminal state.
//
// Composition order is part of the pipeline's observable behavior: an
// observer composed outside a memoizing context sees WillEvaluate for
// short-circuited tasks, one composed inside it does not.
type Context struct {
	eval.ForwardingContext
	obs Observer
}

// Compose wraps inner so obs sees every expansion and invocation that
// passes through the pipeline. Hooks are guarded: a panicking hook is
// logged to log and never affects the evaluation outcome.
func Compose(inner eval.Context, obs Observer, log zerolog.Logger) *Context {
	return &Context{
		ForwardingContext: eval.Forward(inner),
		obs:               Guard(obs, log),
	}
}

// Layer adapts Compose for session pipelines.
func Layer(obs Observer, log zerolog.Logger) eval.Layer {
	return func(inner eval.Context) eval.Context {
		return Compose(inner, obs, log)
	}
}

// EvaluateInternal emits WillEvaluate and delegates.
func (c *Context) EvaluateInternal(t task.Task, ctx eval.Context) future.Value {
	id, err := taskID(t)
	if err != nil {
		return future.ImmediateError(err)
	}
	c.obs.WillEvaluate(id)
	return c.Inner().EvaluateInternal(t, ctx)
}

// InvokeProcessFn emits Starting, delegates, and reports the terminal
// state with the time elapsed since Starting. The callbacks may run on
// whichever goroutine resolves the invocation.
func (c *Context) InvokeProcessFn(id task.ID, fn eval.ProcessFn) future.Value {
	c.obs.Starting(id)
	start := time.Now()
	v := c.Inner().InvokeProcessFn(id, fn)
	v.Consume(func(val any) {
		c.obs.Completed(id, val, time.Since(start))
	})
	v.OnFail(func(err error) {
		c.obs.Failed(id, err, time.Since(start))
	})
	return v
}

// taskID forces t's identity, converting a panic in user definition code
// into an error.
func taskID(t task.Task) (id task.ID, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = eval.NewPanicError(rec)
		}
	}()
	return t.ID(), nil
}
