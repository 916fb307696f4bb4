package future

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPromise_SetDeliversToConsumer(t *testing.T) {
	p := NewPromise()

	var got any
	p.Value().Consume(func(v any) { got = v })

	if p.Value().State() != StatePending {
		t.Fatalf("Expected pending state before Set, got %s", p.Value().State())
	}

	p.Set(42)

	if got != 42 {
		t.Errorf("Expected consumer to receive 42, got %v", got)
	}
	if p.Value().State() != StateCompleted {
		t.Errorf("Expected completed state, got %s", p.Value().State())
	}
}

func TestPromise_FailDeliversToOnFail(t *testing.T) {
	p := NewPromise()
	want := errors.New("boom")

	var got error
	p.Value().OnFail(func(err error) { got = err })

	p.Fail(want)

	if !errors.Is(got, want) {
		t.Errorf("Expected failure callback to receive %v, got %v", want, got)
	}
	if p.Value().State() != StateFailed {
		t.Errorf("Expected failed state, got %s", p.Value().State())
	}
}

func TestValue_ConsumeAfterCompletionRunsSynchronously(t *testing.T) {
	p := NewPromise()
	p.Set("done")

	var got any
	p.Value().Consume(func(v any) { got = v })

	if got != "done" {
		t.Errorf("Expected late consumer to run synchronously, got %v", got)
	}
}

func TestValue_OnFailAfterFailureRunsSynchronously(t *testing.T) {
	p := NewPromise()
	want := errors.New("late")
	p.Fail(want)

	var got error
	p.Value().OnFail(func(err error) { got = err })

	if !errors.Is(got, want) {
		t.Errorf("Expected late failure callback to receive %v, got %v", want, got)
	}
}

func TestValue_TerminalStatesAreExclusive(t *testing.T) {
	p := NewPromise()

	consumed := false
	failed := false
	p.Value().Consume(func(any) { consumed = true })
	p.Value().OnFail(func(error) { failed = true })

	p.Fail(errors.New("boom"))

	if consumed {
		t.Errorf("Expected consumer not to run on failure")
	}
	if !failed {
		t.Errorf("Expected failure callback to run")
	}

	// Consumers registered after failure are dropped silently.
	p.Value().Consume(func(any) { consumed = true })
	if consumed {
		t.Errorf("Expected late consumer not to run on a failed value")
	}
}

func TestPromise_DoubleSetPanics(t *testing.T) {
	p := NewPromise()
	p.Set(1)

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic on second Set")
		}
	}()
	p.Set(2)
}

func TestPromise_FailAfterSetPanics(t *testing.T) {
	p := NewPromise()
	p.Set(1)

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic on Fail after Set")
		}
	}()
	p.Fail(errors.New("too late"))
}

func TestPromise_FailWithNilErrorPanics(t *testing.T) {
	p := NewPromise()

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic on Fail(nil)")
		}
	}()
	p.Fail(nil)
}

func TestChain_PropagatesCompletion(t *testing.T) {
	from := NewPromise()
	to := NewPromise()
	Chain(from.Value(), to)

	from.Set("flow")

	got, err := Await(context.Background(), to.Value())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "flow" {
		t.Errorf("Expected chained value %q, got %v", "flow", got)
	}
}

func TestChain_PropagatesFailure(t *testing.T) {
	from := NewPromise()
	to := NewPromise()
	Chain(from.Value(), to)

	want := errors.New("upstream broke")
	from.Fail(want)

	_, err := Await(context.Background(), to.Value())
	if !errors.Is(err, want) {
		t.Errorf("Expected chained error %v, got %v", want, err)
	}
}

func TestImmediate_IsAlreadyCompleted(t *testing.T) {
	v := Immediate("now")

	if v.State() != StateCompleted {
		t.Fatalf("Expected completed state, got %s", v.State())
	}

	var got any
	v.Consume(func(val any) { got = val })
	if got != "now" {
		t.Errorf("Expected immediate value %q, got %v", "now", got)
	}
}

func TestImmediateError_IsAlreadyFailed(t *testing.T) {
	want := errors.New("never was")
	v := ImmediateError(want)

	if v.State() != StateFailed {
		t.Fatalf("Expected failed state, got %s", v.State())
	}

	var got error
	v.OnFail(func(err error) { got = err })
	if !errors.Is(got, want) {
		t.Errorf("Expected immediate error %v, got %v", want, got)
	}
}

func TestAwait_ReturnsCompletedValue(t *testing.T) {
	p := NewPromise()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Set(7)
	}()

	got, err := Await(context.Background(), p.Value())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != 7 {
		t.Errorf("Expected 7, got %v", got)
	}
}

func TestAwait_ContextCancellation(t *testing.T) {
	p := NewPromise()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Await(ctx, p.Value())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestValue_ReentrantCallbackRegistration(t *testing.T) {
	p := NewPromise()

	var order []string
	p.Value().Consume(func(v any) {
		order = append(order, "outer")
		// Registering on an already-completed value from inside a callback
		// must run synchronously without deadlocking.
		p.Value().Consume(func(any) { order = append(order, "inner") })
	})

	p.Set(true)

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("Expected [outer inner], got %v", order)
	}
}

func TestValue_ConcurrentConsumersEachFireOnce(t *testing.T) {
	p := NewPromise()

	const n = 64
	var registered sync.WaitGroup
	var fired atomic.Int64

	registered.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer registered.Done()
			p.Value().Consume(func(any) { fired.Add(1) })
		}()
	}
	registered.Wait()

	p.Set("go")

	// All consumers were registered before Set, so they all ran on the
	// resolving goroutine before Set returned.
	if fired.Load() != n {
		t.Errorf("Expected %d consumer invocations, got %d", n, fired.Load())
	}
}

func TestState_IsTerminal(t *testing.T) {
	if StatePending.IsTerminal() {
		t.Errorf("Expected pending to be non-terminal")
	}
	if !StateCompleted.IsTerminal() {
		t.Errorf("Expected completed to be terminal")
	}
	if !StateFailed.IsTerminal() {
		t.Errorf("Expected failed to be terminal")
	}
}
