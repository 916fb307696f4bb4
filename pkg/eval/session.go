package eval

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/future"
	"github.com/evalgraph/evalgraph/pkg/task"
)

// Layer wraps a context with one decorator. NewSession applies layers so
// that the first layer becomes the outermost decorator, mirroring how a
// hand-composed pipeline reads.
type Layer func(inner Context) Context

// Session scopes one evaluation run: it owns a run ID and a pipeline
// composed freshly from the given layers, so per-run decorator state such
// as a memoization bundle registry is never shared between sessions.
// Concurrent Evaluate calls on one session share its registries; separate
// runs need separate sessions.
type Session struct {
	id  string
	ctx Context
	log zerolog.Logger
}

// NewSession composes base with layers into a new session with a unique
// run ID. Layers apply first-is-outermost.
func NewSession(base Context, layers ...Layer) *Session {
	return NewSessionWithLogger(zerolog.Nop(), base, layers...)
}

// NewSessionWithLogger is NewSession with run-scoped debug logging.
func NewSessionWithLogger(log zerolog.Logger, base Context, layers ...Layer) *Session {
	ctx := base
	for i := len(layers) - 1; i >= 0; i-- {
		ctx = layers[i](ctx)
	}
	return &Session{
		id:  uuid.New().String(),
		ctx: ctx,
		log: log,
	}
}

// ID returns the run identifier.
func (s *Session) ID() string {
	return s.id
}

// Context returns the composed pipeline, for callers that evaluate
// through the package-level Evaluate or compose further.
func (s *Session) Context() Context {
	return s.ctx
}

// Evaluate evaluates t through the session pipeline and returns its
// future value. The log line carries only the run ID: forcing the task's
// identity here would bypass the pipeline's panic recovery for identities
// that cannot be computed.
func (s *Session) Evaluate(t task.Task) future.Value {
	s.log.Debug().
		Str("run_id", s.id).
		Msg("evaluating task graph")
	return Evaluate(s.ctx, t)
}
