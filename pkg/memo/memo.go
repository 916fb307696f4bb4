package memo

import (
	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/eval"
	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// Config configures a memoizing Context.
type Config struct {
	// Strategies supplies per-result-type strategies. Nil behaves like an
	// empty registry: every result type resolves to the no-op strategy
	// and only run-level deduplication applies.
	Strategies *StrategyRegistry

	// Logger receives expand and short-circuit decisions at debug level.
	// The zero value disables logging.
	Logger zerolog.Logger
}

// Context is the memoizing evaluation decorator. Its bundle registry is
// run state: compose a fresh Context per run, or let Layer do it per
// session.
type Context struct {
	eval.ForwardingContext
	cfg     Config
	bundles *bundleRegistry
}

// Compose wraps inner with memoization.
func Compose(inner eval.Context, cfg Config) *Context {
	if cfg.Strategies == nil {
		cfg.Strategies = NewStrategyRegistry()
	}
	return &Context{
		ForwardingContext: eval.Forward(inner),
		cfg:               cfg,
		bundles:           newBundleRegistry(),
	}
}

// Layer adapts Compose for session pipelines: every session composes a
// fresh Context, with its own bundle registry, over the shared strategy
// registry in cfg.
func Layer(cfg Config) eval.Layer {
	return func(inner eval.Context) eval.Context {
		return Compose(inner, cfg)
	}
}

// EvaluateInternal returns the bundle value for t, creating the bundle and
// evaluating it on first call. Strategy-resolution failures produce an
// already-failed value; they never raise.
func (c *Context) EvaluateInternal(t task.Task, ctx eval.Context) future.Value {
	id, err := taskID(t)
	if err != nil {
		return future.ImmediateError(err)
	}

	b, err := c.bundles.getOrCreate(id, func() (*evalBundle, error) {
		strategy, err := c.cfg.Strategies.strategyFor(t.Result())
		if err != nil {
			return nil, err
		}
		return &evalBundle{
			task:     t,
			strategy: strategy,
			promise:  ctx.Promise(),
			inner:    c.Inner(),
			outer:    ctx,
			log:      c.cfg.Logger,
		}, nil
	})
	if err != nil {
		return future.ImmediateError(err)
	}

	b.evaluate()
	return b.promise.Value()
}

// InvokeProcessFn persists a successful result through the bundle's
// strategy before completing downstream consumers. A store error or panic
// fails the value, so a task is never left completed but unmemoized. The
// bundle may not be registered yet when the invocation arrives; the
// registry wait blocks until it is.
func (c *Context) InvokeProcessFn(id task.ID, fn eval.ProcessFn) future.Value {
	b := c.bundles.await(id, c.cfg.Logger)

	invoked := c.Inner().InvokeProcessFn(id, fn)
	stored := c.Promise()
	invoked.Consume(func(v any) {
		if err := storeGuarded(b.strategy, b.task, v); err != nil {
			c.cfg.Logger.Debug().Stringer("task", id).Err(err).Msg("memoization store failed")
			stored.Fail(err)
			return
		}
		stored.Set(v)
	})
	invoked.OnFail(stored.Fail)
	return stored.Value()
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
