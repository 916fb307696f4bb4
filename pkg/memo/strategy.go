package memo

import (
	"fmt"
	"sync"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Strategy is a per-result-type memoization backend. Implementations own
// their storage lifetime and must be safe for concurrent use. The engine
// calls Lookup before expanding a task and Store after the task's process
// function succeeds; a failed task is never stored.
type Strategy interface {
	// Lookup returns the memoized value for t, if one exists.
	Lookup(t task.Task) (v any, ok bool, err error)

	// Store records the successfully produced value for t.
	Store(t task.Task, v any) error
}

// Noop returns the strategy used when no strategy is registered for a
// result type: it never hits and stores nothing. Run-level deduplication
// of evaluations applies regardless of strategy.
func Noop() Strategy {
	return noopStrategy{}
}

type noopStrategy struct{}

func (noopStrategy) Lookup(task.Task) (any, bool, error) {
	return nil, false, nil
}

func (noopStrategy) Store(task.Task, any) error {
	return nil
}

// InMemoryStrategy memoizes values in a map keyed by task identity. It is
// safe for concurrent use. Sharing one instance across sessions gives
// process-lifetime result reuse; tests use it to observe and pre-seed
// memoized state.
type InMemoryStrategy struct {
	mu      sync.RWMutex
	entries map[task.ID]any
}

// InMemory returns an empty in-memory strategy.
func InMemory() *InMemoryStrategy {
	return &InMemoryStrategy{entries: make(map[task.ID]any)}
}

// Lookup returns the stored value for t's identity, if any.
func (s *InMemoryStrategy) Lookup(t task.Task) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[t.ID()]
	return v, ok, nil
}

// Store records v under t's identity, replacing any previous value.
func (s *InMemoryStrategy) Store(t task.Task, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[t.ID()] = v
	return nil
}

// Len reports the number of memoized entries.
func (s *InMemoryStrategy) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// lookupGuarded runs Lookup, converting a panic into an error so a
// strategy bug fails the task instead of the resolving goroutine.
func lookupGuarded(s Strategy, t task.Task) (v any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, ok = nil, false
			err = fmt.Errorf("memoization lookup panic: %v", rec)
		}
	}()
	return s.Lookup(t)
}

// storeGuarded runs Store with the same panic conversion as lookupGuarded.
func storeGuarded(s Strategy, t task.Task, v any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("memoization store panic: %v", rec)
		}
	}()
	return s.Store(t, v)
}
