package domain

// CallStatus defines the lifecycle phase of a session.
type CallStatus string

const (
	StatusActive      CallStatus = "active"      // Normal operation
	StatusEnded       CallStatus = "ended"       // An end_call node completed
	StatusTransferred CallStatus = "transferred" // A transfer node completed
	StatusCancelled   CallStatus = "cancelled"   // The host cancelled the call
)

// State is the mutable per-call snapshot. It is created at call start,
// mutated every turn, and discarded at call end. It is exclusively owned by
// the goroutine driving that call, so it carries no locks.
type State struct {
	// SessionID identifies the call.
	SessionID string `json:"session_id"`

	// UserID identifies the account whose integration credentials app
	// actions run under.
	UserID string `json:"user_id,omitempty"`

	// CurrentNodeID always indexes an existing node of the pathway.
	CurrentNodeID string `json:"current_node_id"`

	Status CallStatus `json:"status"`

	// TurnIndex counts completed turns, monotonically increasing.
	TurnIndex int `json:"turn_index"`

	// Variables accumulates typed facts from conversation and action
	// results. Keys only grow or get overwritten, never deleted.
	Variables map[string]any `json:"variables"`

	// History tracks the node path taken, for debugging and analytics.
	History []string `json:"history"`
}

// NewState creates a clean state for one call, positioned at the entry node.
func NewState(sessionID, userID, entryNodeID string) *State {
	return &State{
		SessionID:     sessionID,
		UserID:        userID,
		CurrentNodeID: entryNodeID,
		Status:        StatusActive,
		Variables:     make(map[string]any),
		History:       []string{entryNodeID},
	}
}

// SetVariables merges a delta into the variable map, last write wins.
// Merging is all-or-nothing at the call site: the engine only calls this
// after an awaited operation fully succeeded.
func (s *State) SetVariables(delta map[string]any) {
	for k, v := range delta {
		s.Variables[k] = v
	}
}
