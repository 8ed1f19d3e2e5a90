// Package reader drives the read-aloud pipeline: it feeds chunks through
// the TTS engine and the playback sequencer, strictly in order, with a
// small state machine governing the run lifecycle.
package reader

// State represents the orchestrator's position in a run.
type State int

const (
	// StateIdle is the initial state before any backend is resolved.
	StateIdle State = iota
	// StateLoading is backend resolution and validation.
	StateLoading
	// StateGenerating is chunk synthesis in progress.
	StateGenerating
	// StatePlaying is chunk playback in progress.
	StatePlaying
	// StateUnloading is advisory resource teardown.
	StateUnloading
	// StateDone is successful completion.
	StateDone
	// StateFailed is the terminal failure state.
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateGenerating:
		return "generating"
	case StatePlaying:
		return "playing"
	case StateUnloading:
		return "unloading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stateMachine enforces the legal run transitions. Playback alternates
// with generation until the chunk sequence is exhausted; failure is
// reachable from loading, generating, and playing.
type stateMachine struct {
	current     State
	transitions map[State][]State
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:       {StateLoading},
			StateLoading:    {StateGenerating, StateUnloading, StateFailed},
			StateGenerating: {StatePlaying, StateFailed},
			StatePlaying:    {StateGenerating, StateUnloading, StateFailed},
			StateUnloading:  {StateDone},
		},
	}
}

// transition moves to the target state if legal and reports whether it
// happened.
func (sm *stateMachine) transition(to State) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			sm.current = to
			return true
		}
	}
	return false
}

// state returns the current state.
func (sm *stateMachine) state() State {
	return sm.current
}
