package memo

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/eval"
	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// bundleWaitWarning is how long a bundle-visibility wait may run before a
// warning is logged. The wait itself never times out: registration always
// precedes or closely trails invocation, and failing the task here would
// break the engine's at-most-once contract.
const bundleWaitWarning = 10 * time.Second

// evalBundle binds one task identity to its strategy and its single
// promise for the lifetime of a run. evaluate runs at most once; every
// caller shares the promise's value.
type evalBundle struct {
	task     task.Task
	strategy Strategy
	promise  future.Promise
	inner    eval.Context
	outer    eval.Context
	log      zerolog.Logger
	once     sync.Once
}

// evaluate decides between short-circuit and expansion, exactly once per
// bundle. Later calls return immediately; callers read the promise.
func (b *evalBundle) evaluate() {
	b.once.Do(b.run)
}

func (b *evalBundle) run() {
	v, ok, err := lookupGuarded(b.strategy, b.task)
	if err != nil {
		b.log.Debug().Stringer("task", b.task.ID()).Err(err).Msg("memoization lookup failed")
		b.promise.Fail(err)
		return
	}
	if ok {
		b.log.Debug().Stringer("task", b.task.ID()).Msg("not expanding, memoization lookup hit")
		b.promise.Set(v)
		return
	}
	b.log.Debug().Stringer("task", b.task.ID()).Msg("expanding")
	future.Chain(b.inner.EvaluateInternal(b.task, b.outer), b.promise)
}

// bundleRegistry holds one run's bundles keyed by task identity.
// Registration signals pending waiters, so a process-fn invocation that
// races ahead of its bundle's registration blocks until the bundle is
// visible instead of failing.
type bundleRegistry struct {
	mu      sync.Mutex
	bundles map[task.ID]*evalBundle
	waiters map[task.ID][]chan *evalBundle
}

func newBundleRegistry() *bundleRegistry {
	return &bundleRegistry{
		bundles: make(map[task.ID]*evalBundle),
		waiters: make(map[task.ID][]chan *evalBundle),
	}
}

// getOrCreate returns the bundle for id, running create under the registry
// lock when none exists yet. The first writer wins; every concurrent
// caller observes the same bundle. A create error leaves the registry
// unchanged.
func (r *bundleRegistry) getOrCreate(id task.ID, create func() (*evalBundle, error)) (*evalBundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bundles[id]; ok {
		return b, nil
	}
	b, err := create()
	if err != nil {
		return nil, err
	}
	r.bundles[id] = b
	for _, ch := range r.waiters[id] {
		ch <- b
	}
	delete(r.waiters, id)
	return b, nil
}

// await returns the bundle for id, blocking until it is registered. A
// warning is logged once if the wait runs unexpectedly long; the wait
// itself never gives up.
func (r *bundleRegistry) await(id task.ID, log zerolog.Logger) *evalBundle {
	r.mu.Lock()
	if b, ok := r.bundles[id]; ok {
		r.mu.Unlock()
		return b
	}
	ch := make(chan *evalBundle, 1)
	r.waiters[id] = append(r.waiters[id], ch)
	r.mu.Unlock()

	warn := time.NewTimer(bundleWaitWarning)
	defer warn.Stop()
	for {
		select {
		case b := <-ch:
			return b
		case <-warn.C:
			log.Warn().Stringer("task", id).
				Dur("waited", bundleWaitWarning).
				Msg("process fn invoked before its bundle registered, still waiting")
		}
	}
}
