package future

import (
	"sync"
)

// Value is the read side of a single-assignment future. A Value transitions
// at most once from pending to completed or failed, and the two terminal
// states are mutually exclusive: a consumer callback fires on completion,
// a failure callback fires on failure, never both.
type Value interface {
	// State reports the current lifecycle state of the value.
	State() State

	// Consume registers fn to receive the result when the value completes.
	// If the value is already completed, fn runs synchronously before
	// Consume returns. If the value failed or later fails, fn never runs.
	Consume(fn func(v any))

	// OnFail registers fn to receive the error when the value fails.
	// If the value already failed, fn runs synchronously before OnFail
	// returns. If the value completed or later completes, fn never runs.
	OnFail(fn func(err error))
}

// Promise is the write side of a single-assignment future. Exactly one of
// Set or Fail may be called, exactly once; a second terminal call is a
// programming error and panics.
type Promise interface {
	// Value returns the read side of this promise.
	Value() Value

	// Set resolves the promise with v and runs all registered consumers
	// on the calling goroutine.
	Set(v any)

	// Fail fails the promise with err and runs all registered failure
	// callbacks on the calling goroutine. err must not be nil.
	Fail(err error)
}

// NewPromise returns a new unresolved future pair.
func NewPromise() Promise {
	return &promise{c: &cell{state: StatePending}}
}

// Immediate returns a Value that is already completed with v.
func Immediate(v any) Value {
	return &cell{state: StateCompleted, value: v}
}

// ImmediateError returns a Value that has already failed with err.
func ImmediateError(err error) Value {
	if err == nil {
		panic("future: ImmediateError with nil error")
	}
	return &cell{state: StateFailed, err: err}
}

// Chain forwards the terminal state of from into to: completion sets it,
// failure fails it. The promise must not be resolved elsewhere once chained.
func Chain(from Value, to Promise) {
	from.Consume(to.Set)
	from.OnFail(to.Fail)
}

// cell holds the shared state behind a future pair. Terminal transitions
// collect the pending callbacks under the lock and invoke them after
// releasing it, so callbacks may safely register further callbacks or
// resolve other promises.
type cell struct {
	mu        sync.Mutex
	state     State
	value     any
	err       error
	consumers []func(v any)
	failures  []func(err error)
}

func (c *cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *cell) Consume(fn func(v any)) {
	c.mu.Lock()
	switch c.state {
	case StateCompleted:
		v := c.value
		c.mu.Unlock()
		fn(v)
	case StateFailed:
		c.mu.Unlock()
	default:
		c.consumers = append(c.consumers, fn)
		c.mu.Unlock()
	}
}

func (c *cell) OnFail(fn func(err error)) {
	c.mu.Lock()
	switch c.state {
	case StateFailed:
		err := c.err
		c.mu.Unlock()
		fn(err)
	case StateCompleted:
		c.mu.Unlock()
	default:
		c.failures = append(c.failures, fn)
		c.mu.Unlock()
	}
}

func (c *cell) set(v any) {
	c.mu.Lock()
	if c.state != StatePending {
		state := c.state
		c.mu.Unlock()
		panic("future: Set on a " + string(state) + " value")
	}
	c.state = StateCompleted
	c.value = v
	fns := c.consumers
	c.consumers = nil
	c.failures = nil
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (c *cell) fail(err error) {
	if err == nil {
		panic("future: Fail with nil error")
	}
	c.mu.Lock()
	if c.state != StatePending {
		state := c.state
		c.mu.Unlock()
		panic("future: Fail on a " + string(state) + " value")
	}
	c.state = StateFailed
	c.err = err
	fns := c.failures
	c.consumers = nil
	c.failures = nil
	c.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

type promise struct {
	c *cell
}

func (p *promise) Value() Value {
	return p.c
}

func (p *promise) Set(v any) {
	p.c.set(v)
}

func (p *promise) Fail(err error) {
	p.c.fail(err)
}
