package stream

// State is the lifecycle state of a download session.
type State int32

const (
	StateIdle State = iota
	StateResolving
	StatePiping
	StateCompleted
	StateFailed
	StateAborted
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateResolving: "resolving",
	StatePiping:    "piping",
	StateCompleted: "completed",
	StateFailed:    "failed",
	StateAborted:   "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateAborted
}
