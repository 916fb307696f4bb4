package eval

import (
	"sync"
)

// Executor runs computations for an asynchronous root context. Submit must
// not block on queue capacity: evaluation submits follow-up work from
// completion callbacks, so a bounded blocking queue can deadlock deep
// graphs.
type Executor interface {
	// Submit schedules fn to run.
	Submit(fn func())
}

// execFunc adapts a plain function to the Executor interface.
type execFunc func(fn func())

func (e execFunc) Submit(fn func()) {
	e(fn)
}

// FixedPool is an Executor backed by a fixed number of worker goroutines
// draining an unbounded FIFO queue. The queue grows with submitted work,
// which keeps Submit non-blocking at the cost of memory under sustained
// overload.
type FixedPool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	wg     sync.WaitGroup
}

// NewFixedPool starts a pool of n workers. Values below 1 are treated
// as 1.
func NewFixedPool(n int) *FixedPool {
	if n < 1 {
		n = 1
	}
	p := &FixedPool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Submit queues fn for execution. Submitting to a closed pool panics.
func (p *FixedPool) Submit(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("eval: Submit on a closed pool")
	}
	p.queue = append(p.queue, fn)
	p.mu.Unlock()
	p.cond.Signal()
}

// Close stops the pool after the queued work drains and waits for the
// workers to exit. Close is idempotent.
func (p *FixedPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *FixedPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		fn := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		fn()
	}
}
