package runtime

import (
	"fmt"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// Session is the runtime instance of a pathway bound to one active call.
// The pathway is shared read-only across sessions; the state and handler
// cache are exclusively owned by the goroutine driving this call, so nothing
// here is locked.
type Session struct {
	Pathway *domain.Pathway
	State   *domain.State

	// handlers memoizes per-node runtime state so revisiting a node (a loop
	// in the graph) resumes its conversational memory instead of starting
	// from a blank transcript.
	handlers map[string]*nodeHandler
}

// nodeHandler is the cached runtime companion of one node. It borrows the
// node definition and lives for the call duration.
type nodeHandler struct {
	node *domain.Node

	// entered flags whether the node's greeting has been spoken.
	entered bool

	// history is the per-node transcript fed to the model while the call
	// sits on this node.
	history []ports.Message
}

// NewSession binds a validated pathway to a fresh call.
func (e *Engine) NewSession(p *domain.Pathway, sessionID, userID string) (*Session, error) {
	if p.EntryPoint == "" {
		// Loaders normally validate; cover direct construction too.
		if _, err := p.Validate(); err != nil {
			return nil, err
		}
	}
	if p.NodeByID(p.EntryPoint) == nil {
		return nil, fmt.Errorf("pathway %q entry point %q not found: %w", p.ID, p.EntryPoint, domain.ErrNoEntryPoint)
	}

	return &Session{
		Pathway:  p,
		State:    domain.NewState(sessionID, userID, p.EntryPoint),
		handlers: make(map[string]*nodeHandler),
	}, nil
}

// handler returns the cached handler for a node, building it on first use.
func (s *Session) handler(nodeID string) *nodeHandler {
	if h, ok := s.handlers[nodeID]; ok {
		return h
	}
	h := &nodeHandler{node: s.Pathway.NodeByID(nodeID)}
	s.handlers[nodeID] = h
	return h
}
