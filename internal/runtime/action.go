package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evocall/pathway/pkg/domain"
)

// stepAppAction executes an app_action node. Whatever the outcome, the
// session then follows the node's single outgoing edge: app actions are
// unconditional, and a failing integration must never strand the call.
func (e *Engine) stepAppAction(ctx context.Context, s *Session, node *domain.Node, delta map[string]any) (string, []domain.Effect, error) {
	if err := ctx.Err(); err != nil {
		// Cancellation check before the awaited call: nothing mutated yet.
		return "", nil, err
	}

	cfg := node.AppAction
	if cfg == nil {
		cfg = &domain.AppActionConfig{}
	}

	start := time.Now()
	res := e.executeAppAction(ctx, s, node, cfg)

	if e.hooks.OnAppAction != nil {
		e.hooks.OnAppAction(ctx, &domain.AppActionEvent{
			Timestamp: time.Now(),
			SessionID: s.State.SessionID,
			NodeID:    node.ID,
			App:       cfg.App,
			Action:    cfg.Action,
			Duration:  time.Since(start),
			IsError:   !res.Succeeded(),
		})
	}

	var effects []domain.Effect
	if res.Succeeded() {
		if len(res.Result) > 0 {
			e.mergeVars(s, delta, map[string]any{"app_action_" + node.ID: res.Result})
		}
		msg := res.UserMessage
		if msg == "" {
			msg = defaultConfirmation
		}
		effects = append(effects, domain.Speak(e.interpolate(msg, s.State.Variables)))
	} else {
		e.logger.Warn("app action failed",
			"session_id", s.State.SessionID, "node", node.ID,
			"app", cfg.App, "action", cfg.Action, "err", res.Err)
		msg := res.UserMessage
		if msg == "" {
			msg = defaultActionApology
		}
		effects = append(effects, domain.Speak(e.interpolate(msg, s.State.Variables)))
	}

	return e.forcedEdge(s, node), effects, nil
}

// forcedEdge resolves the unconditional transition out of an app_action
// node: the first declared edge wins. A missing edge is a configuration
// warning and the session stays on the node; a dangling target likewise.
func (e *Engine) forcedEdge(s *Session, node *domain.Node) string {
	edges := s.Pathway.OutgoingEdges(node.ID)
	if len(edges) == 0 {
		e.logger.Warn("app_action node has no outgoing edge; session stays put",
			"session_id", s.State.SessionID, "node", node.ID)
		return ""
	}
	target := edges[0].Target
	if s.Pathway.NodeByID(target) == nil {
		derr := &domain.DanglingEdgeError{Source: node.ID, Target: target}
		e.logger.Error("dangling edge; staying on node",
			"session_id", s.State.SessionID, "node", node.ID, "err", derr)
		return ""
	}
	return target
}

// executeAppAction resolves the executor and credential and invokes the
// integration under a bounded timeout. Every failure mode (unknown app,
// missing credential, transport error, executor panic) collapses into an
// error-status result.
func (e *Engine) executeAppAction(ctx context.Context, s *Session, node *domain.Node, cfg *domain.AppActionConfig) (res *domain.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("executor panicked",
				"session_id", s.State.SessionID, "node", node.ID, "app", cfg.App, "panic", r)
			res = domain.ErrorResult(fmt.Errorf("executor panic: %v", r))
		}
	}()

	if e.executors == nil {
		return domain.ErrorResult(fmt.Errorf("no executor registry configured"))
	}
	exec, ok := e.executors.Resolve(cfg.App)
	if !ok {
		return domain.ErrorResult(fmt.Errorf("no executor registered for app %q", cfg.App))
	}

	params := make(map[string]any, len(cfg.FieldMappings))
	for field, tmpl := range cfg.FieldMappings {
		params[field] = e.interpolate(tmpl, s.State.Variables)
	}

	var cred *domain.Credential
	if e.creds != nil && s.State.UserID != "" {
		lctx, lcancel := context.WithTimeout(ctx, e.actionTimeout)
		var err error
		cred, err = e.creds.GetValidCredential(lctx, s.State.UserID, cfg.App)
		lcancel()
		if err != nil {
			if errors.Is(err, domain.ErrNotConnected) {
				return &domain.ActionResult{
					Status:      domain.ActionError,
					UserMessage: fmt.Sprintf("It looks like the %s account isn't connected yet, so I'll skip that step.", cfg.App),
					Err:         err.Error(),
				}
			}
			return domain.ErrorResult(fmt.Errorf("credential lookup for %s: %w", cfg.App, err))
		}
	}

	cctx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	out, err := exec.Execute(cctx, cfg.Action, params, cred)
	if err != nil {
		return domain.ErrorResult(err)
	}
	if out == nil {
		return domain.ErrorResult(fmt.Errorf("executor for %q returned no result", cfg.App))
	}
	return out
}
