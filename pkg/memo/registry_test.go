package memo

import (
	"errors"
	"sync"
	"testing"

	"github.com/evalgraph/evalgraph/pkg/task"
)

func TestStrategyRegistry_ExplicitBeatsProvider(t *testing.T) {
	explicit := InMemory()
	reg := NewStrategyRegistry()
	reg.RegisterProvider("R", func() (Strategy, error) {
		t.Errorf("Expected the provider not to be invoked when an explicit strategy exists")
		return nil, nil
	})
	reg.Register("R", explicit)

	got, err := reg.strategyFor("R")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != explicit {
		t.Errorf("Expected the explicit strategy, got %T", got)
	}
}

func TestStrategyRegistry_ProviderInvokedAtMostOnce(t *testing.T) {
	var mu sync.Mutex
	invocations := 0
	built := InMemory()

	reg := NewStrategyRegistry()
	reg.RegisterProvider("R", func() (Strategy, error) {
		mu.Lock()
		invocations++
		mu.Unlock()
		return built, nil
	})

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if got, err := reg.strategyFor("R"); err != nil || got != built {
				t.Errorf("Expected the built strategy, got %T (err %v)", got, err)
			}
		}()
	}
	wg.Wait()

	if invocations != 1 {
		t.Errorf("Expected one provider invocation, got %d", invocations)
	}
}

func TestStrategyRegistry_AbsenceResolvesToNoop(t *testing.T) {
	reg := NewStrategyRegistry()

	got, err := reg.strategyFor("NeverRegistered")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != Noop() {
		t.Errorf("Expected the no-op strategy, got %T", got)
	}

	// The outcome is cached; later resolutions see the same answer.
	again, err := reg.strategyFor("NeverRegistered")
	if err != nil || again != Noop() {
		t.Errorf("Expected the cached no-op outcome, got %T (err %v)", again, err)
	}
}

func TestStrategyRegistry_NilStrategyFromProviderMeansNoop(t *testing.T) {
	reg := NewStrategyRegistry()
	reg.RegisterProvider("OptOut", func() (Strategy, error) { return nil, nil })

	got, err := reg.strategyFor("OptOut")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != Noop() {
		t.Errorf("Expected the no-op strategy for an opt-out provider, got %T", got)
	}
}

func TestStrategyRegistry_ProviderErrorIsCachedAndNeverRetried(t *testing.T) {
	invocations := 0
	reg := NewStrategyRegistry()
	reg.RegisterProvider("Broken", func() (Strategy, error) {
		invocations++
		return nil, errors.New("backend unreachable")
	})

	_, first := reg.strategyFor("Broken")
	_, second := reg.strategyFor("Broken")

	if !task.IsConstructionError(first) {
		t.Errorf("Expected a construction error, got: %v", first)
	}
	if !errors.Is(second, first) && second.Error() != first.Error() {
		t.Errorf("Expected the cached error on retry, got: %v", second)
	}
	if invocations != 1 {
		t.Errorf("Expected the failed provider never to be retried, got %d invocations", invocations)
	}
}

func TestStrategyRegistry_ProviderPanicBecomesError(t *testing.T) {
	reg := NewStrategyRegistry()
	reg.RegisterProvider("Haunted", func() (Strategy, error) { panic("factory exploded") })

	_, err := reg.strategyFor("Haunted")
	if !task.IsConstructionError(err) {
		t.Errorf("Expected a construction error from the panicking provider, got: %v", err)
	}
}
