package domain

import (
	"context"
	"time"
)

// TransitionEvent is published whenever a turn moves (or fails to move) the
// session. It is the unit the analytics collaborator consumes.
type TransitionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	PathwayID  string    `json:"pathway_id"`
	TurnIndex  int       `json:"turn_index"`
	NodeBefore string    `json:"node_before"`
	NodeAfter  string    `json:"node_after"`
	// VariablesDelta holds only the keys written during this turn.
	VariablesDelta map[string]any `json:"variables_delta,omitempty"`
}

// AppActionEvent reports one app action execution.
type AppActionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	NodeID    string        `json:"node_id"`
	App       string        `json:"app"`
	Action    string        `json:"action"`
	Duration  time.Duration `json:"duration"`
	IsError   bool          `json:"is_error"`
}

// ModelCallEvent reports one language model round-trip.
type ModelCallEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"session_id"`
	NodeID    string        `json:"node_id"`
	Duration  time.Duration `json:"duration"`
	Retried   bool          `json:"retried"`
	IsError   bool          `json:"is_error"`
}

// CallEndedEvent reports that a session reached a terminal state.
type CallEndedEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"session_id"`
	PathwayID string     `json:"pathway_id"`
	Status    CallStatus `json:"status"`
	Turns     int        `json:"turns"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional and must be fast; they run inline on the session's turn.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *TransitionEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnAppAction  func(context.Context, *AppActionEvent)
	OnModelCall  func(context.Context, *ModelCallEvent)
	OnCallEnd    func(context.Context, *CallEndedEvent)
}
