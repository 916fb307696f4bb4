package stores

import (
	"time"

	"github.com/evalgraph/evalgraph/pkg/task"
)

// Entry is one persisted memoization record: the identity of the task
// that produced the value, the decoded value itself, and when it was
// stored.
type Entry struct {
	// ResultType is the dispatch type the entry was stored under.
	ResultType task.ResultType

	// TaskName is the name component of the producing task's identity.
	TaskName string

	// TaskKey is the argument digest component of the identity.
	TaskKey string

	// Value is the decoded task result.
	Value any

	// StoredAt records when the entry was last written.
	StoredAt time.Time
}

// ID reassembles the producing task's identity.
func (e *Entry) ID() task.ID {
	return task.ID{Name: e.TaskName, Key: e.TaskKey}
}
