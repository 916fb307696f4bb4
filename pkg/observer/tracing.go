package observer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Common attribute keys for evaluation tracing.
var (
	AttrTaskName = attribute.Key("task.name")
	AttrTaskKey  = attribute.Key("task.key")
)

// TraceObserver exports evaluation activity as OpenTelemetry spans. Each
// WillEvaluate hook produces an instantaneous "task.evaluate" span; each
// process function produces a "task.process" span opened at Starting and
// closed at Completed or Failed with the matching status.
//
// The evaluation hooks carry no context, so spans are matched to their
// terminal hook by task ID. Concurrent invocations of the same ID are
// handled last-in-first-out.
type TraceObserver struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer

	mu      sync.Mutex
	pending map[task.ID][]trace.Span
}

// NewTraceObserver creates a trace observer owning its own tracer
// provider, configured from cfg. When cfg.Enabled is false the observer
// generates spans against a provider with no exporter.
func NewTraceObserver(cfg TracingConfig) (*TraceObserver, error) {
	if !cfg.Enabled {
		provider := sdktrace.NewTracerProvider()
		return &TraceObserver{
			provider: provider,
			tracer:   provider.Tracer("evalgraph"),
			pending:  make(map[task.ID][]trace.Span),
		}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "evalgraph"
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "", "none":
		// Spans are generated but not exported.
		exporter = nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	sampler := sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(cfg.SamplingRate),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)

	return &TraceObserver{
		provider: provider,
		tracer:   provider.Tracer(serviceName),
		pending:  make(map[task.ID][]trace.Span),
	}, nil
}

// TraceObserverFor creates a trace observer against an externally owned
// tracer provider. Shutdown and ForceFlush become no-ops; the provider's
// owner is responsible for its lifecycle.
func TraceObserverFor(tp trace.TracerProvider) *TraceObserver {
	return &TraceObserver{
		tracer:  tp.Tracer("evalgraph"),
		pending: make(map[task.ID][]trace.Span),
	}
}

// WillEvaluate emits an instantaneous span marking the evaluation request.
func (o *TraceObserver) WillEvaluate(id task.ID) {
	_, span := o.tracer.Start(context.Background(), "task.evaluate",
		trace.WithAttributes(
			AttrTaskName.String(id.Name),
			AttrTaskKey.String(id.Key),
		))
	span.End()
}

// Starting opens a span for the process function invocation.
func (o *TraceObserver) Starting(id task.ID) {
	_, span := o.tracer.Start(context.Background(), "task.process",
		trace.WithAttributes(
			AttrTaskName.String(id.Name),
			AttrTaskKey.String(id.Key),
		))
	o.mu.Lock()
	o.pending[id] = append(o.pending[id], span)
	o.mu.Unlock()
}

// Completed closes the invocation span with an Ok status.
func (o *TraceObserver) Completed(id task.ID, _ any, _ time.Duration) {
	span := o.pop(id)
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}

// Failed closes the invocation span, recording err and an Error status.
func (o *TraceObserver) Failed(id task.ID, err error, _ time.Duration) {
	span := o.pop(id)
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (o *TraceObserver) pop(id task.ID) trace.Span {
	o.mu.Lock()
	defer o.mu.Unlock()
	spans := o.pending[id]
	if len(spans) == 0 {
		return nil
	}
	span := spans[len(spans)-1]
	if len(spans) == 1 {
		delete(o.pending, id)
	} else {
		o.pending[id] = spans[:len(spans)-1]
	}
	return span
}

// Shutdown gracefully shuts down the owned tracer provider, flushing any
// pending spans.
func (o *TraceObserver) Shutdown(ctx context.Context) error {
	if o.provider == nil {
		return nil
	}
	return o.provider.Shutdown(ctx)
}

// ForceFlush forces all pending spans to be exported immediately.
func (o *TraceObserver) ForceFlush(ctx context.Context) error {
	if o.provider == nil {
		return nil
	}
	return o.provider.ForceFlush(ctx)
}
