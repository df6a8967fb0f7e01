// Package client drives one analysis at a time against the relay and keeps
// the loading, error and result state that a front end renders.
package client

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/helmcode/neuropath/pkg/model"
)

// User-facing messages.
const (
	MsgFailed      = "Failed to analyze decision. Please try again."
	MsgRateLimited = "Rate limit exceeded. Please wait a moment and try again."
	MsgUnavailable = "Service temporarily unavailable. Please try again later."
)

// ErrInFlight is returned when Analyze is called while another call runs.
var ErrInFlight = errors.New("analysis already in progress")

// Relay sends a request to the relay service.
type Relay interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
}

// RelayError is a structured error payload answered by the relay.
type RelayError struct {
	Message string
	Status  int
}

func (e *RelayError) Error() string { return e.Message }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers fn to receive every state transition in order.
// fn runs synchronously and must not call back into the Orchestrator.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, fn) }
}

type Orchestrator struct {
	relay     Relay
	observers []func(State)

	mu    sync.Mutex
	state State
}

func New(relay Relay, opts ...Option) *Orchestrator {
	o := &Orchestrator{relay: relay}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Analyze submits one request. On failure the user-facing message is both
// stored in State().Error and returned as the error text. Cancelling ctx
// aborts the in-flight call.
func (o *Orchestrator) Analyze(ctx context.Context, decision, decisionContext, priorities string) (*model.AnalysisResult, error) {
	if !o.transition(func(s State) (State, bool) {
		if s.Loading() {
			return s, false
		}
		return s.Submit(), true
	}) {
		return nil, ErrInFlight
	}

	result, err := o.relay.Analyze(ctx, model.AnalysisRequest{
		Decision:   decision,
		Context:    decisionContext,
		Priorities: priorities,
	})
	if err != nil {
		msg := userMessage(err)
		o.transition(func(s State) (State, bool) { return s.Fail(msg), true })
		return nil, &Failure{Message: msg, Err: err}
	}

	o.transition(func(s State) (State, bool) { return s.Succeed(result), true })
	return result, nil
}

// Reset clears result and error. It is a no-op while a call is in flight.
func (o *Orchestrator) Reset() {
	o.transition(func(s State) (State, bool) {
		if s.Loading() {
			return s, false
		}
		return s.Reset(), true
	})
}

func (o *Orchestrator) transition(fn func(State) (State, bool)) bool {
	o.mu.Lock()
	next, ok := fn(o.state)
	if ok {
		o.state = next
		for _, obs := range o.observers {
			obs(next)
		}
	}
	o.mu.Unlock()
	return ok
}

// Failure is returned by Analyze; Message is what State().Error holds.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

func userMessage(err error) string {
	var re *RelayError
	if !errors.As(err, &re) {
		return MsgFailed
	}
	switch re.Status {
	case http.StatusTooManyRequests:
		return MsgRateLimited
	case http.StatusPaymentRequired:
		return MsgUnavailable
	default:
		if re.Message == "" {
			return MsgFailed
		}
		return re.Message
	}
}
