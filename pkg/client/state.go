package client

import "github.com/helmcode/neuropath/pkg/model"

// Phase of an orchestrator.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot. Idle with a non-empty Error is the
// idle-with-error state.
type State struct {
	Phase  Phase
	Result *model.AnalysisResult
	Error  string
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Submit starts a request: loading, previous error cleared. The previous
// result stays visible until a new one arrives.
func (s State) Submit() State {
	return State{Phase: PhaseLoading, Result: s.Result}
}

// Succeed stores result and leaves loading.
func (s State) Succeed(result *model.AnalysisResult) State {
	return State{Phase: PhaseDone, Result: result}
}

// Fail leaves loading with a user-facing message.
func (s State) Fail(msg string) State {
	return State{Phase: PhaseIdle, Result: s.Result, Error: msg}
}

// Reset returns to the initial state.
func (s State) Reset() State {
	return State{}
}
