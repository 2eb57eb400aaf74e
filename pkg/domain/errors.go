package domain

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by credential stores when the user has not
// linked the requested app. It surfaces to the caller as an actionable
// message, never as a crash.
var ErrNotConnected = errors.New("app not connected for user")

// ErrSessionEnded is returned when a turn is fed to a session that already
// reached a terminal node or was cancelled.
var ErrSessionEnded = errors.New("session already ended")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// EntryPointError is fatal at load time: the pathway has no usable start.
type EntryPointError struct {
	PathwayID string
	Detail    string
}

func (e *EntryPointError) Error() string {
	return fmt.Sprintf("pathway %q has no entry point: %s", e.PathwayID, e.Detail)
}

// ErrNoEntryPoint allows errors.Is checks against any EntryPointError.
var ErrNoEntryPoint = errors.New("no entry point")

// Is makes EntryPointError match ErrNoEntryPoint.
func (e *EntryPointError) Is(target error) bool {
	return target == ErrNoEntryPoint
}

// DanglingEdgeError records a transition toward a node that does not exist.
// It is logged and the session stays put; it never terminates a call.
type DanglingEdgeError struct {
	Source string
	Target string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s targets a node that does not exist", e.Source, e.Target)
}

// Warning codes reported by Pathway.Validate.
const (
	WarnDanglingEdge  = "dangling_edge"
	WarnOrphanNode    = "orphan_node"
	WarnDuplicateNode = "duplicate_node"
)

// Warning is a non-fatal validation finding.
type Warning struct {
	Code   string `json:"code"`
	NodeID string `json:"node_id"`
	Detail string `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %s", w.Code, w.NodeID, w.Detail)
}
