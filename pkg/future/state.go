package future

// State represents the lifecycle state of a Value.
type State string

const (
	// StatePending indicates the value has not reached a terminal state yet.
	StatePending State = "pending"

	// StateCompleted indicates the value resolved successfully.
	StateCompleted State = "completed"

	// StateFailed indicates the value failed with an error.
	StateFailed State = "failed"
)

// IsTerminal returns true if the state is final.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
