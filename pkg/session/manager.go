package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/evocall/pathway/internal/logging"
	"github.com/evocall/pathway/internal/runtime"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// entry holds one live session, its mutex, and the reference count.
type entry struct {
	mu      sync.Mutex
	refs    int
	session *runtime.Session
}

// Manager owns the live sessions of one process. Sessions hold in-memory
// per-node conversational state, so they are pinned to the replica that
// started them; the manager serializes concurrent requests for the same
// session and garbage collects the per-session locks via reference counting.
type Manager struct {
	engine *runtime.Engine
	loader ports.PathwayLoader
	logger *slog.Logger

	mu       sync.Mutex // guards the map
	sessions map[string]*entry
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager around an engine and a pathway loader.
func NewManager(engine *runtime.Engine, loader ports.PathwayLoader, opts ...Option) *Manager {
	m := &Manager{
		engine:   engine,
		loader:   loader,
		logger:   logging.NewNop(),
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the pathway, creates a session on its entry point, and runs
// the opening turn. The returned effects carry the entry greeting, if any.
func (m *Manager) Start(ctx context.Context, pathwayID, userID string) (string, []domain.Effect, error) {
	pathway, err := m.loader.Load(ctx, pathwayID)
	if err != nil {
		return "", nil, err
	}

	sessionID := uuid.NewString()
	sess, err := m.engine.NewSession(pathway, sessionID, userID)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.sessions[sessionID] = &entry{session: sess}
	m.mu.Unlock()

	var effects []domain.Effect
	err = m.withSession(ctx, sessionID, func(ctx context.Context, sess *runtime.Session) error {
		var turnErr error
		effects, turnErr = m.engine.Turn(ctx, sess, "")
		return turnErr
	})
	if err != nil {
		m.remove(sessionID)
		return "", nil, err
	}

	m.logger.Info("session started",
		"session_id", sessionID, "pathway_id", pathwayID, "user_id", userID)
	return sessionID, effects, nil
}

// Turn feeds one caller utterance to the session.
func (m *Manager) Turn(ctx context.Context, sessionID, utterance string) ([]domain.Effect, error) {
	var effects []domain.Effect
	err := m.withSession(ctx, sessionID, func(ctx context.Context, sess *runtime.Session) error {
		var turnErr error
		effects, turnErr = m.engine.Turn(ctx, sess, utterance)
		return turnErr
	})
	return effects, err
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.State, error) {
	var snap domain.State
	err := m.withSession(ctx, sessionID, func(_ context.Context, sess *runtime.Session) error {
		snap = *sess.State
		snap.Variables = make(map[string]any, len(sess.State.Variables))
		for k, v := range sess.State.Variables {
			snap.Variables[k] = v
		}
		snap.History = append([]string(nil), sess.State.History...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// End cancels a session (if still active) and removes it. Ending an unknown
// session returns domain.ErrSessionNotFound.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	err := m.withSession(ctx, sessionID, func(_ context.Context, sess *runtime.Session) error {
		if sess.State.Status == domain.StatusActive {
			sess.State.Status = domain.StatusCancelled
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.remove(sessionID)
	m.logger.Info("session ended", "session_id", sessionID)
	return nil
}

// List returns the known session ids, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// withSession runs fn while holding the session's lock.
func (m *Manager) withSession(ctx context.Context, sessionID string, fn func(context.Context, *runtime.Session) error) error {
	e, ok := m.acquire(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		m.release(sessionID)
	}()
	return fn(ctx, e.session)
}

// acquire increments the entry's reference count so a concurrent End cannot
// reap the lock out from under a waiting caller.
func (m *Manager) acquire(sessionID string) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.refs++
	return e, true
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[sessionID]; ok {
		e.refs--
	}
}

// remove deletes the session from the map. In-flight holders finish their
// critical section on the detached entry.
func (m *Manager) remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
