package task

import (
	"sync"
)

// ResultType identifies the kind of value a task produces. Memoization
// strategies are registered per result type.
type ResultType string

// Task is one node in an evaluation graph. Implementations must be
// immutable once constructed and safe for concurrent use.
type Task interface {
	// ID returns the structural identity of the task. The identity is
	// computed once, on first use; computing it forces the upstream list.
	ID() ID

	// Result returns the result-type identifier used for memoization
	// strategy dispatch.
	Result() ResultType

	// Upstreams returns the direct upstream dependencies in input order.
	Upstreams() []Task

	// Process runs the task's own computation with one completed upstream
	// result per upstream, in Upstreams order. The engine never calls
	// Process before every upstream has completed.
	Process(inputs []any) (any, error)
}

// Arg is a named constructor argument. Arguments are part of the task's
// structural identity and must round-trip through the definition's
// Transport.
type Arg struct {
	// Name identifies the argument in identity digests and error messages.
	Name string

	// Value is the captured argument value.
	Value any
}

// Def describes a task for New.
type Def struct {
	// Name is the task name. Required.
	Name string

	// Result is the result-type identifier for memoization dispatch.
	// Tasks with an empty result type are never memoized.
	Result ResultType

	// Args are the named constructor arguments captured by the task.
	Args []Arg

	// Upstreams supplies the direct dependencies in input order. Nil
	// means the task is a leaf. The function runs once, on first use,
	// so deferred references resolve after all definitions exist.
	Upstreams func() []Task

	// Process is the task's computation. Required. It receives one input
	// per upstream, in Upstreams order.
	Process func(inputs []any) (any, error)

	// Transport overrides the codec used to validate Args. Nil selects
	// DefaultTransport.
	Transport Transport
}

// New validates def and returns an immutable Task. It fails fast with a
// ConstructionError when the name is empty, the process function is nil,
// or any argument does not survive a round trip through the transport;
// the error names the offending argument.
func New(def Def) (Task, error) {
	if def.Name == "" {
		return nil, NewConstructionError("task", "name must not be empty", nil)
	}
	if def.Process == nil {
		return nil, NewConstructionError(def.Name, "process function must not be nil", nil)
	}

	transport := def.Transport
	if transport == nil {
		transport = DefaultTransport
	}
	for _, a := range def.Args {
		if a.Name == "" {
			return nil, NewConstructionError(def.Name, "argument name must not be empty", nil)
		}
		if _, err := RoundTrip(transport, a.Value); err != nil {
			return nil, NewConstructionError(a.Name, "argument does not round-trip through the transport", err)
		}
	}

	upstreams := def.Upstreams
	if upstreams == nil {
		upstreams = func() []Task { return nil }
	}

	return &defTask{
		name:    def.Name,
		result:  def.Result,
		args:    append([]Arg(nil), def.Args...),
		fn:      def.Process,
		resolve: upstreams,
	}, nil
}

// defTask is the Task produced by New. The upstream list and the identity
// are resolved lazily and then pinned, so both stay stable for the
// lifetime of the task.
type defTask struct {
	name   string
	result ResultType
	args   []Arg
	fn     func(inputs []any) (any, error)

	upOnce    sync.Once
	resolve   func() []Task
	upstreams []Task

	idOnce sync.Once
	id     ID
}

// Name returns the declared task name without forcing the identity.
func (t *defTask) Name() string {
	return t.name
}

func (t *defTask) ID() ID {
	t.idOnce.Do(func() {
		upstreams := t.Upstreams()
		ids := make([]ID, len(upstreams))
		for i, u := range upstreams {
			ids[i] = u.ID()
		}
		t.id = computeID(t.name, t.args, ids)
	})
	return t.id
}

func (t *defTask) Result() ResultType {
	return t.result
}

func (t *defTask) Upstreams() []Task {
	t.upOnce.Do(func() {
		t.upstreams = t.resolve()
	})
	return t.upstreams
}

func (t *defTask) Process(inputs []any) (any, error) {
	return t.fn(inputs)
}

func (t *defTask) String() string {
	return t.ID().String()
}
