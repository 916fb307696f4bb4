package observer

import (
	"time"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Observer receives the four evaluation hook points. WillEvaluate fires
// before a task is expanded; Starting fires before its process function is
// invoked; exactly one of Completed or Failed fires when the invocation
// reaches a terminal state, possibly on a different goroutine than the one
// that fired Starting. Implementations must be safe for concurrent use.
type Observer interface {
	// WillEvaluate reports that the task is about to be expanded.
	WillEvaluate(id task.ID)

	// Starting reports that the task's process function is about to run.
	Starting(id task.ID)

	// Completed reports the produced value and the time between Starting
	// and completion.
	Completed(id task.ID, v any, elapsed time.Duration)

	// Failed reports the failure and the time between Starting and the
	// failure.
	Failed(id task.ID, err error, elapsed time.Duration)
}

// BaseObserver is a no-op Observer. Embed it so an implementation only
// declares the hooks it cares about.
type BaseObserver struct{}

// WillEvaluate does nothing.
func (BaseObserver) WillEvaluate(task.ID) {}

// Starting does nothing.
func (BaseObserver) Starting(task.ID) {}

// Completed does nothing.
func (BaseObserver) Completed(task.ID, any, time.Duration) {}

// Failed does nothing.
func (BaseObserver) Failed(task.ID, error, time.Duration) {}

// Multi fans every hook out to each observer, in argument order. With no
// arguments it returns a no-op observer.
func Multi(obs ...Observer) Observer {
	switch len(obs) {
	case 0:
		return BaseObserver{}
	case 1:
		return obs[0]
	default:
		return multiObserver(append([]Observer(nil), obs...))
	}
}

type multiObserver []Observer

func (m multiObserver) WillEvaluate(id task.ID) {
	for _, o := range m {
		o.WillEvaluate(id)
	}
}

func (m multiObserver) Starting(id task.ID) {
	for _, o := range m {
		o.Starting(id)
	}
}

func (m multiObserver) Completed(id task.ID, v any, elapsed time.Duration) {
	for _, o := range m {
		o.Completed(id, v, elapsed)
	}
}

func (m multiObserver) Failed(id task.ID, err error, elapsed time.Duration) {
	for _, o := range m {
		o.Failed(id, err, elapsed)
	}
}
