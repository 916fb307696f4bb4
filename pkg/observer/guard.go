package observer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Guard wraps obs so a panicking hook can never abort evaluation: every
// panic is recovered and logged to log at warn level. A nil obs yields a
// no-op observer. Compose guards its observer automatically; Guard is
// exported for callers that invoke hooks themselves.
func Guard(obs Observer, log zerolog.Logger) Observer {
	if obs == nil {
		return BaseObserver{}
	}
	return guarded{obs: obs, log: log}
}

type guarded struct {
	obs Observer
	log zerolog.Logger
}

func (g guarded) WillEvaluate(id task.ID) {
	defer g.recoverHook("will-evaluate", id)
	g.obs.WillEvaluate(id)
}

func (g guarded) Starting(id task.ID) {
	defer g.recoverHook("starting", id)
	g.obs.Starting(id)
}

func (g guarded) Completed(id task.ID, v any, elapsed time.Duration) {
	defer g.recoverHook("completed", id)
	g.obs.Completed(id, v, elapsed)
}

func (g guarded) Failed(id task.ID, err error, elapsed time.Duration) {
	defer g.recoverHook("failed", id)
	g.obs.Failed(id, err, elapsed)
}

func (g guarded) recoverHook(hook string, id task.ID) {
	if rec := recover(); rec != nil {
		g.log.Warn().
			Stringer("task", id).
			Str("hook", hook).
			Interface("panic", rec).
			Msg("observer hook failed")
	}
}
