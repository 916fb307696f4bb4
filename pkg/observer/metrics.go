package observer

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// MetricsObserver exports evaluation activity as Prometheus metrics.
// Counters and histograms are labeled by task name rather than the full
// task ID so label cardinality stays bounded by the number of task
// definitions, not the number of argument combinations.
type MetricsObserver struct {
	evaluationsTotal *prometheus.CounterVec
	invocationsTotal *prometheus.CounterVec
	completionsTotal *prometheus.CounterVec
	processDuration  *prometheus.HistogramVec
}

// NewMetricsObserver creates a metrics observer and registers its
// collectors with reg. A nil reg registers with the Prometheus default
// registerer. When cfg.Enabled is false the returned observer records
// nothing.
func NewMetricsObserver(cfg MetricsConfig, reg prometheus.Registerer) (*MetricsObserver, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &MetricsObserver{}, nil
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "evalgraph"
	}
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsObserver{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of task evaluations requested",
			},
			[]string{"task"},
		),
		invocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of process functions invoked",
			},
			[]string{"task"},
		),
		completionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Total number of process functions finished",
			},
			[]string{"task", "outcome"},
		),
		processDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "process_duration_seconds",
				Help:      "Duration of process function execution in seconds",
				Buckets:   buckets,
			},
			[]string{"task", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.evaluationsTotal,
		m.invocationsTotal,
		m.completionsTotal,
		m.processDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// WillEvaluate counts an evaluation request for the task.
func (m *MetricsObserver) WillEvaluate(id task.ID) {
	if m.evaluationsTotal == nil {
		return
	}
	m.evaluationsTotal.WithLabelValues(id.Name).Inc()
}

// Starting counts a process function invocation.
func (m *MetricsObserver) Starting(id task.ID) {
	if m.invocationsTotal == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(id.Name).Inc()
}

// Completed counts a successful process function and records its duration.
func (m *MetricsObserver) Completed(id task.ID, _ any, elapsed time.Duration) {
	if m.completionsTotal == nil {
		return
	}
	m.completionsTotal.WithLabelValues(id.Name, "success").Inc()
	m.processDuration.WithLabelValues(id.Name, "success").Observe(elapsed.Seconds())
}

// Failed counts a failed process function and records its duration.
func (m *MetricsObserver) Failed(id task.ID, _ error, elapsed time.Duration) {
	if m.completionsTotal == nil {
		return
	}
	m.completionsTotal.WithLabelValues(id.Name, "failure").Inc()
	m.processDuration.WithLabelValues(id.Name, "failure").Observe(elapsed.Seconds())
}
