package pathway

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/evocall/pathway/internal/runtime"
	"github.com/evocall/pathway/pkg/adapters/file"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
	"github.com/evocall/pathway/pkg/session"
)

// Version of the library.
const Version = "0.3.0"

// Session is the runtime instance of a pathway bound to one call.
type Session = runtime.Session

// Engine is the high-level entry point. It wraps the internal runtime and
// provides a simplified API for hosts embedding the library.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.PathwayLoader

	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom PathwayLoader, bypassing the default file
// loader.
func WithLoader(l ports.PathwayLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithExecutors wires the app action executor registry.
func WithExecutors(reg ports.ExecutorRegistry) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithExecutors(reg))
	}
}

// WithCredentialStore wires the integration credential store.
func WithCredentialStore(store ports.CredentialStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithCredentialStore(store))
	}
}

// WithEventSink wires the analytics sink receiving transition events.
func WithEventSink(sink ports.EventSink) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithEventSink(sink))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHooks(hooks))
	}
}

// WithModelTimeout bounds each language model call.
func WithModelTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithModelTimeout(d))
	}
}

// WithActionTimeout bounds each app action execution.
func WithActionTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithActionTimeout(d))
	}
}

// WithMaxTurns enables a safety bound on turns per session. Zero (the
// default) disables it.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithMaxTurns(n))
	}
}

// New initializes an Engine around a language model. By default pathways are
// loaded from YAML documents under pathwaysDir; pass WithLoader to source
// them elsewhere, in which case pathwaysDir may be empty.
func New(pathwaysDir string, model ports.LanguageModel, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if eng.loader == nil {
		eng.loader = file.NewLoader(pathwaysDir, file.WithLogger(eng.logger))
	}

	runtimeOpts := append([]runtime.EngineOption{
		runtime.WithLogger(eng.logger),
	}, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(model, runtimeOpts...)
	return eng, nil
}

// LoadPathway loads and validates a pathway definition.
func (e *Engine) LoadPathway(ctx context.Context, pathwayID string) (*domain.Pathway, error) {
	return e.loader.Load(ctx, pathwayID)
}

// NewSession loads the pathway and binds a fresh session to it, positioned
// at the entry point. The opening greeting is spoken by the first Turn call
// with an empty utterance.
func (e *Engine) NewSession(ctx context.Context, pathwayID, sessionID, userID string) (*Session, error) {
	p, err := e.loader.Load(ctx, pathwayID)
	if err != nil {
		return nil, err
	}
	return e.runtime.NewSession(p, sessionID, userID)
}

// Turn processes one caller turn to completion and returns the ordered
// effects for the telephony host. An empty utterance runs the opening turn.
func (e *Engine) Turn(ctx context.Context, s *Session, utterance string) ([]domain.Effect, error) {
	return e.runtime.Turn(ctx, s, utterance)
}

// Sessions creates a session manager bound to this engine, for hosts that
// want managed concurrent sessions (e.g. the HTTP harness).
func (e *Engine) Sessions() *session.Manager {
	return session.NewManager(e.runtime, e.loader, session.WithLogger(e.logger))
}

// Loader returns the underlying PathwayLoader used by the engine.
func (e *Engine) Loader() ports.PathwayLoader {
	return e.loader
}
