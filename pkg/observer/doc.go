// Package observer turns evaluation activity into logs, metrics, and traces.
//
// The package contributes an evaluation decorator that reports the
// lifecycle of every task flowing through it to an Observer:
//
//  1. WillEvaluate - a task is about to be expanded
//  2. Starting - its process function is about to run
//  3. Completed - the process function produced a value
//  4. Failed - the process function failed
//
// Observers are passive. They cannot change values, swallow failures, or
// reorder evaluation; a hook that panics is logged and otherwise ignored.
//
// # Usage
//
// Compose the decorator into an evaluation session:
//
//	obs, shutdown, err := cfg.Build(nil)
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
//
//	session := eval.NewSession(eval.Async(nil),
//	    observer.Layer(obs, log),
//	    memo.Layer(memoCfg),
//	)
//
// Layer order is part of the configuration: placed outside the memoization
// layer (as above) the observer sees every evaluation request including
// cache hits; placed inside, it sees only the work that actually runs.
//
// # Built-in observers
//
// LogObserver writes structured zerolog events. MetricsObserver exports
// Prometheus counters and histograms labeled by task name:
//
//	evalgraph_evaluations_total{task}
//	evalgraph_invocations_total{task}
//	evalgraph_completions_total{task,outcome}
//	evalgraph_process_duration_seconds{task,outcome}
//
// TraceObserver opens an OpenTelemetry span per process function and
// closes it with the outcome status. Multi fans hooks out to several
// observers in order.
//
// Custom observers embed BaseObserver and override the hooks they care
// about:
//
//	type slowTaskAlert struct {
//	    observer.BaseObserver
//	}
//
//	func (a *slowTaskAlert) Completed(id task.ID, _ any, elapsed time.Duration) {
//	    if elapsed > time.Minute {
//	        alert(id, elapsed)
//	    }
//	}
package observer
