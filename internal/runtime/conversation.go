package runtime

import (
	"context"
	"strings"
	"time"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// enterConversation handles arrival on a conversation node: the greeting is
// spoken once, on first entry only. Revisits reuse the cached handler and
// stay silent until the caller speaks.
func (e *Engine) enterConversation(ctx context.Context, s *Session, node *domain.Node, h *nodeHandler) []domain.Effect {
	if h.entered {
		return nil
	}
	h.entered = true

	if node.Conversation == nil || node.Conversation.Greeting == "" {
		return nil
	}
	greeting := e.interpolate(node.Conversation.Greeting, s.State.Variables)
	h.history = append(h.history, ports.Message{Role: ports.RoleAssistant, Content: greeting})
	return []domain.Effect{domain.Speak(greeting)}
}

// stepConversation runs one caller utterance through a conversation node:
// variable extraction and the reply come out of a single model call, along
// with any invoked transition capability.
func (e *Engine) stepConversation(ctx context.Context, s *Session, node *domain.Node, h *nodeHandler, utterance string, delta map[string]any) (string, []domain.Effect, error) {
	h.entered = true

	cfg := node.Conversation
	if cfg == nil {
		cfg = &domain.ConversationConfig{}
	}

	edges := s.Pathway.OutgoingEdges(node.ID)
	caps := capabilitiesFor(edges)

	h.history = append(h.history, ports.Message{Role: ports.RoleUser, Content: utterance})

	req := &ports.CompletionRequest{
		Instructions: e.conversationInstructions(cfg, s),
		History:      h.history,
		Extract:      cfg.Extract,
		Capabilities: capsOnly(caps),
	}

	res, err := e.completeWithRetry(ctx, s, node, req)
	if err != nil {
		if ctx.Err() != nil {
			// Host cancellation: abort without partial mutation.
			return "", nil, ctx.Err()
		}
		e.logger.Warn("model call failed after retry; apologizing",
			"session_id", s.State.SessionID, "node", node.ID, "err", err)
		return "", []domain.Effect{domain.Speak(e.apology)}, nil
	}

	// Merge only declared, confidently-typed fields. The merge is
	// all-or-nothing with respect to the call: a failed call above never
	// reaches this point.
	e.mergeVars(s, delta, coerceExtracted(cfg.Extract, res.Extracted, e.logger))

	var effects []domain.Effect
	if reply := strings.TrimSpace(res.Reply); reply != "" {
		h.history = append(h.history, ports.Message{Role: ports.RoleAssistant, Content: reply})
		effects = append(effects, domain.Speak(reply))
	}

	next := e.resolveInvoked(s, node, edges, caps, res.Invoked)
	return next, effects, nil
}

// conversationInstructions assembles the system prompt for a node.
func (e *Engine) conversationInstructions(cfg *domain.ConversationConfig, s *Session) string {
	var b strings.Builder
	b.WriteString("You are handling a live phone call. Keep replies short and natural to speak aloud.\n")
	if prompt := e.interpolate(cfg.Prompt, s.State.Variables); prompt != "" {
		b.WriteString("\n")
		b.WriteString(prompt)
		b.WriteString("\n")
	}
	b.WriteString("\nMove the call forward by invoking a transition tool only when its condition is met.")
	return b.String()
}

// completeWithRetry performs the bounded model call. A first failure is
// retried once with a reduced prompt budget; the second failure surfaces to
// the caller, who converts it into an apology rather than a crash.
func (e *Engine) completeWithRetry(ctx context.Context, s *Session, node *domain.Node, req *ports.CompletionRequest) (*ports.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := e.completeOnce(ctx, req)
	retried := false

	if err != nil && ctx.Err() == nil {
		retried = true
		trimmed := *req
		if len(req.History) > retryHistoryBudget {
			trimmed.History = req.History[len(req.History)-retryHistoryBudget:]
		}
		e.logger.Debug("retrying model call with reduced prompt",
			"session_id", s.State.SessionID, "node", node.ID, "history", len(trimmed.History))
		res, err = e.completeOnce(ctx, &trimmed)
	}

	if e.hooks.OnModelCall != nil {
		e.hooks.OnModelCall(ctx, &domain.ModelCallEvent{
			Timestamp: time.Now(),
			SessionID: s.State.SessionID,
			NodeID:    node.ID,
			Duration:  time.Since(start),
			Retried:   retried,
			IsError:   err != nil,
		})
	}
	return res, err
}

func (e *Engine) completeOnce(ctx context.Context, req *ports.CompletionRequest) (*ports.CompletionResult, error) {
	cctx, cancel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancel()
	return e.model.Complete(cctx, req)
}

// resolveInvoked maps the model's capability invocations to a target node.
// At most one invocation is honored: the first by edge declaration order.
// Extra invocations and names that match no edge are logged and dropped, and
// a capability whose edge targets a missing node leaves the session in place.
func (e *Engine) resolveInvoked(s *Session, node *domain.Node, edges []domain.Edge, caps []edgeCapability, invoked []string) string {
	if len(invoked) == 0 {
		return ""
	}

	invokedSet := make(map[string]struct{}, len(invoked))
	for _, name := range invoked {
		invokedSet[name] = struct{}{}
	}
	for _, name := range invoked {
		if _, known := capByName(caps, name); !known {
			e.logger.Warn("model invoked unknown capability; dropped",
				"session_id", s.State.SessionID, "node", node.ID, "capability", name)
		}
	}

	chosen := -1
	for i, c := range caps {
		if _, ok := invokedSet[c.Name]; ok {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return ""
	}

	// First by declaration order wins; report the discarded rest.
	for _, c := range caps {
		if _, ok := invokedSet[c.Name]; ok && c.Name != caps[chosen].Name {
			e.logger.Warn("additional capability invocation dropped (first wins)",
				"session_id", s.State.SessionID, "node", node.ID,
				"kept", caps[chosen].Name, "dropped", c.Name)
		}
	}

	target := edges[chosen].Target
	if s.Pathway.NodeByID(target) == nil {
		derr := &domain.DanglingEdgeError{Source: node.ID, Target: target}
		e.logger.Error("dangling edge; staying on node",
			"session_id", s.State.SessionID, "node", node.ID, "err", derr)
		return ""
	}
	return target
}

func capByName(caps []edgeCapability, name string) (edgeCapability, bool) {
	for _, c := range caps {
		if c.Name == name {
			return c, true
		}
	}
	return edgeCapability{}, false
}
