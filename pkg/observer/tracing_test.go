package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/evalgraph/evalgraph/pkg/eval"
	"github.com/evalgraph/evalgraph/pkg/task"
)

func recordedSpans(t *testing.T, run func(obs *TraceObserver)) []sdktrace.ReadOnlySpan {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Fatalf("Expected no error shutting down the provider, got: %v", err)
		}
	}()

	run(TraceObserverFor(tp))
	return recorder.Ended()
}

func TestTraceObserver_SpansFollowLifecycle(t *testing.T) {
	spans := recordedSpans(t, func(obs *TraceObserver) {
		oc := Compose(eval.Sync(), obs, zerolog.Nop())
		awaitValue(t, eval.Evaluate(oc, chain(t)))
	})

	var evaluates, processes int
	for _, span := range spans {
		switch span.Name() {
		case "task.evaluate":
			evaluates++
		case "task.process":
			processes++
			if span.Status().Code != codes.Ok {
				t.Errorf("Expected an Ok status on a successful process span, got %v", span.Status().Code)
			}
			var named bool
			for _, attr := range span.Attributes() {
				if attr.Key == AttrTaskName {
					named = true
				}
			}
			if !named {
				t.Errorf("Expected the process span to carry the task name")
			}
		default:
			t.Errorf("Unexpected span %q", span.Name())
		}
	}
	if evaluates != 3 || processes != 3 {
		t.Errorf("Expected 3 evaluate and 3 process spans, got %d and %d", evaluates, processes)
	}
}

func TestTraceObserver_FailureRecordsError(t *testing.T) {
	doomed := newTask(t, task.Def{
		Name:    "doomed",
		Process: func([]any) (any, error) { return nil, errors.New("boom") },
	})

	spans := recordedSpans(t, func(obs *TraceObserver) {
		oc := Compose(eval.Sync(), obs, zerolog.Nop())
		awaitError(t, eval.Evaluate(oc, doomed))
	})

	var found bool
	for _, span := range spans {
		if span.Name() != "task.process" {
			continue
		}
		found = true
		if span.Status().Code != codes.Error {
			t.Errorf("Expected an Error status, got %v", span.Status().Code)
		}
		if span.Status().Description != "boom" {
			t.Errorf("Expected the status to carry the cause, got %q", span.Status().Description)
		}
		if len(span.Events()) == 0 {
			t.Errorf("Expected a recorded exception event")
		}
	}
	if !found {
		t.Fatalf("Expected a process span for the failing task")
	}
}

func TestTraceObserver_UnmatchedTerminalHookIsIgnored(t *testing.T) {
	spans := recordedSpans(t, func(obs *TraceObserver) {
		obs.Completed(task.ID{Name: "stray", Key: "k"}, nil, 0)
		obs.Failed(task.ID{Name: "stray", Key: "k"}, errors.New("x"), 0)
	})

	if len(spans) != 0 {
		t.Errorf("Expected no spans without a Starting hook, got %d", len(spans))
	}
}

func TestNewTraceObserver_UnsupportedExporter(t *testing.T) {
	_, err := NewTraceObserver(TracingConfig{Enabled: true, Exporter: "jaeger"})
	if err == nil {
		t.Fatalf("Expected an error for an unsupported exporter")
	}
}

func TestNewTraceObserver_DisabledIsUsable(t *testing.T) {
	obs, err := NewTraceObserver(TracingConfig{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	id := task.ID{Name: "x", Key: "k"}
	obs.WillEvaluate(id)
	obs.Starting(id)
	obs.Completed(id, nil, 0)

	if err := obs.ForceFlush(context.Background()); err != nil {
		t.Errorf("Expected no error from ForceFlush, got: %v", err)
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("Expected no error from Shutdown, got: %v", err)
	}
}
