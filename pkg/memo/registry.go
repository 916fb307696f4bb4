package memo

import (
	"fmt"
	"sync"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Provider constructs the strategy for a result type on first use.
// Returning a nil strategy with a nil error declares that the result type
// opts out of memoization.
type Provider func() (Strategy, error)

// StrategyRegistry maps result types to memoization strategies.
//
// Explicitly registered strategies always win. Otherwise the provider
// registered for the result type is invoked at most once and its outcome
// is cached: the constructed strategy, the construction error, or absence,
// which maps to the no-op strategy. A cached error is returned to every
// later resolution of that result type; providers are never retried.
//
// A registry is configuration, not run state: build it at startup and
// share it across sessions.
type StrategyRegistry struct {
	mu        sync.Mutex
	explicit  map[task.ResultType]Strategy
	providers map[task.ResultType]Provider
	outcomes  map[task.ResultType]*discovery
}

// discovery is the cached outcome of one provider invocation.
type discovery struct {
	strategy Strategy
	err      error
}

// NewStrategyRegistry returns an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		explicit:  make(map[task.ResultType]Strategy),
		providers: make(map[task.ResultType]Provider),
		outcomes:  make(map[task.ResultType]*discovery),
	}
}

// Register binds strategy to rt, taking precedence over any provider.
func (r *StrategyRegistry) Register(rt task.ResultType, strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.explicit[rt] = strategy
}

// RegisterProvider binds a lazily invoked strategy factory to rt.
func (r *StrategyRegistry) RegisterProvider(rt task.ResultType, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[rt] = provider
}

// strategyFor resolves the strategy for rt, invoking and caching the
// provider outcome on first resolution.
func (r *StrategyRegistry) strategyFor(rt task.ResultType) (Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.explicit[rt]; ok {
		return s, nil
	}
	if d, ok := r.outcomes[rt]; ok {
		return d.strategy, d.err
	}

	d := &discovery{}
	if provider, ok := r.providers[rt]; ok {
		s, err := invokeProvider(provider)
		switch {
		case err != nil:
			d.err = task.NewConstructionError(string(rt), "strategy provider failed", err)
		case s == nil:
			d.strategy = Noop()
		default:
			d.strategy = s
		}
	} else {
		d.strategy = Noop()
	}
	r.outcomes[rt] = d
	return d.strategy, d.err
}

// invokeProvider converts a provider panic into an error.
func invokeProvider(p Provider) (s Strategy, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("provider panic: %v", rec)
		}
	}()
	return p()
}
