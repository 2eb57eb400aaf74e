package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/evocall/pathway/internal/logging"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

const (
	defaultModelTimeout  = 15 * time.Second
	defaultActionTimeout = 10 * time.Second

	// retryHistoryBudget is the number of transcript messages kept when a
	// timed-out model call is retried with a reduced prompt.
	retryHistoryBudget = 4

	// maxHopsPerTurn bounds how many nodes a single turn may traverse.
	// A chain of app_action nodes wired in a cycle with always edges would
	// otherwise spin forever inside one turn.
	maxHopsPerTurn = 16
)

const (
	defaultApology       = "I'm sorry, I'm having a little trouble right now. Could you say that again?"
	defaultActionApology = "I wasn't able to complete that step just now, but let's keep going."
	defaultConfirmation  = "All set."
	defaultWrapUp        = "Thanks for your time today. Goodbye!"
)

// Engine drives sessions through their pathway graph. It holds only shared,
// read-only collaborators, so one Engine serves any number of concurrent
// sessions.
type Engine struct {
	model     ports.LanguageModel
	executors ports.ExecutorRegistry
	creds     ports.CredentialStore
	sink      ports.EventSink
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	modelTimeout  time.Duration
	actionTimeout time.Duration
	maxTurns      int
	apology       string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithExecutors wires the app action executor registry.
func WithExecutors(reg ports.ExecutorRegistry) EngineOption {
	return func(e *Engine) { e.executors = reg }
}

// WithCredentialStore wires the credential store collaborator.
func WithCredentialStore(store ports.CredentialStore) EngineOption {
	return func(e *Engine) { e.creds = store }
}

// WithEventSink wires the analytics sink that receives transition events.
func WithEventSink(sink ports.EventSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithModelTimeout bounds each language model call.
func WithModelTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.modelTimeout = d }
}

// WithActionTimeout bounds each app action execution.
func WithActionTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.actionTimeout = d }
}

// WithMaxTurns enables a safety bound on turns per session. When reached the
// engine wraps up and terminates instead of looping forever on a node with no
// outgoing edges. Zero (the default) disables the bound.
func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) { e.maxTurns = n }
}

// WithApology overrides the generic apology spoken when the model is
// unreachable.
func WithApology(text string) EngineOption {
	return func(e *Engine) { e.apology = text }
}

// NewEngine creates an engine around the given language model.
func NewEngine(model ports.LanguageModel, opts ...EngineOption) *Engine {
	e := &Engine{
		model:         model,
		logger:        logging.NewNop(),
		modelTimeout:  defaultModelTimeout,
		actionTimeout: defaultActionTimeout,
		apology:       defaultApology,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes one caller turn to completion: extraction, reply or action,
// and transition. It returns the ordered effect list for the telephony host.
//
// A turn may traverse several nodes: a conversation transition lands on an
// app_action node, the action runs, and its forced edge may chain into a
// terminal node, all within the same turn. The turn settles when it reaches
// a conversation node waiting for the next utterance, or a terminal state.
//
// An empty utterance only enters the current node (speaking its greeting if
// unseen); the host uses that for the opening turn of a call.
func (e *Engine) Turn(ctx context.Context, s *Session, utterance string) ([]domain.Effect, error) {
	if s.State.Status != domain.StatusActive {
		return nil, domain.ErrSessionEnded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.maxTurns > 0 && s.State.TurnIndex >= e.maxTurns {
		e.logger.Warn("max turn bound reached; wrapping up call",
			"session_id", s.State.SessionID, "turns", s.State.TurnIndex)
		s.State.Status = domain.StatusEnded
		e.emitCallEnd(ctx, s)
		effects := []domain.Effect{domain.SpeakFinal(defaultWrapUp), domain.Terminate()}
		return e.settleTurn(ctx, s, s.State.CurrentNodeID, nil, effects)
	}

	nodeBefore := s.State.CurrentNodeID
	delta := make(map[string]any)
	var effects []domain.Effect
	input := utterance

	for hop := 0; ; hop++ {
		if hop >= maxHopsPerTurn {
			e.logger.Warn("turn traversed too many nodes; settling",
				"session_id", s.State.SessionID, "node", s.State.CurrentNodeID)
			break
		}

		node := s.Pathway.NodeByID(s.State.CurrentNodeID)
		if node == nil {
			// Guarded everywhere a transition is applied; reaching this
			// means the session was constructed against a different graph.
			return effects, fmt.Errorf("current node %q not in pathway %q", s.State.CurrentNodeID, s.Pathway.ID)
		}
		h := s.handler(node.ID)

		var next string
		switch node.Kind {
		case domain.KindConversation:
			if hop > 0 || input == "" {
				// Entered via transition (or the opening turn): greet once,
				// then settle and wait for the caller.
				effects = append(effects, e.enterConversation(ctx, s, node, h)...)
				return e.settleTurn(ctx, s, nodeBefore, delta, effects)
			}
			var convEffects []domain.Effect
			var err error
			next, convEffects, err = e.stepConversation(ctx, s, node, h, input, delta)
			effects = append(effects, convEffects...)
			if err != nil {
				return nil, err
			}
			input = "" // consumed by this node

		case domain.KindAppAction:
			var actEffects []domain.Effect
			var err error
			next, actEffects, err = e.stepAppAction(ctx, s, node, delta)
			effects = append(effects, actEffects...)
			if err != nil {
				return nil, err
			}

		case domain.KindEndCall:
			farewell := ""
			if node.EndCall != nil {
				farewell = e.interpolate(node.EndCall.Farewell, s.State.Variables)
			}
			if farewell != "" {
				effects = append(effects, domain.SpeakFinal(farewell))
			}
			effects = append(effects, domain.Terminate())
			s.State.Status = domain.StatusEnded
			e.emitCallEnd(ctx, s)
			return e.settleTurn(ctx, s, nodeBefore, delta, effects)

		case domain.KindTransfer:
			dest := ""
			if node.Transfer != nil {
				dest = e.interpolate(node.Transfer.Destination, s.State.Variables)
			}
			effects = append(effects, domain.Redirect(dest))
			s.State.Status = domain.StatusTransferred
			e.emitCallEnd(ctx, s)
			return e.settleTurn(ctx, s, nodeBefore, delta, effects)

		default:
			e.logger.Warn("unknown node kind; staying put",
				"node", node.ID, "kind", node.Kind)
			next = ""
		}

		if next == "" {
			break
		}
		e.transitionTo(ctx, s, next)
	}

	return e.settleTurn(ctx, s, nodeBefore, delta, effects)
}

// transitionTo moves the session to an already-verified target node.
func (e *Engine) transitionTo(ctx context.Context, s *Session, target string) {
	from := s.State.CurrentNodeID
	s.State.CurrentNodeID = target
	s.State.History = append(s.State.History, target)
	e.logger.Debug("transition", "session_id", s.State.SessionID, "from", from, "to", target)

	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.TransitionEvent{
			Timestamp:  time.Now(),
			SessionID:  s.State.SessionID,
			PathwayID:  s.Pathway.ID,
			TurnIndex:  s.State.TurnIndex,
			NodeBefore: from,
			NodeAfter:  target,
		})
	}
}

// settleTurn finalizes a turn: bumps the turn index and reports the
// transition event to hooks and the analytics sink.
func (e *Engine) settleTurn(ctx context.Context, s *Session, nodeBefore string, delta map[string]any, effects []domain.Effect) ([]domain.Effect, error) {
	ev := &domain.TransitionEvent{
		Timestamp:      time.Now(),
		SessionID:      s.State.SessionID,
		PathwayID:      s.Pathway.ID,
		TurnIndex:      s.State.TurnIndex,
		NodeBefore:     nodeBefore,
		NodeAfter:      s.State.CurrentNodeID,
		VariablesDelta: delta,
	}
	s.State.TurnIndex++

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, ev)
	}
	if e.sink != nil {
		if err := e.sink.Publish(ctx, ev); err != nil {
			e.logger.Warn("event sink publish failed", "session_id", s.State.SessionID, "err", err)
		}
	}
	return effects, nil
}

func (e *Engine) emitCallEnd(ctx context.Context, s *Session) {
	if e.hooks.OnCallEnd == nil {
		return
	}
	e.hooks.OnCallEnd(ctx, &domain.CallEndedEvent{
		Timestamp: time.Now(),
		SessionID: s.State.SessionID,
		PathwayID: s.Pathway.ID,
		Status:    s.State.Status,
		Turns:     s.State.TurnIndex + 1,
	})
}

// mergeVars applies a variable delta to the session and records it in the
// turn delta. Both writes happen together so the published delta always
// matches what the session absorbed.
func (e *Engine) mergeVars(s *Session, delta, vars map[string]any) {
	if len(vars) == 0 {
		return
	}
	s.State.SetVariables(vars)
	for k, v := range vars {
		delta[k] = v
	}
}
