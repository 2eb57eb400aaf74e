package apps

import (
	"context"
	"sync"

	"github.com/evocall/pathway/pkg/domain"
)

// Static is a canned executor for the CLI simulator and tests: each action
// returns a pre-registered result without touching any integration. Actions
// without a canned result succeed with an echo of their parameters.
type Static struct {
	mu      sync.Mutex
	results map[string]*domain.ActionResult
	calls   []StaticCall
}

// StaticCall records one Execute invocation.
type StaticCall struct {
	Action string
	Params map[string]any
}

// NewStatic creates a Static executor.
func NewStatic() *Static {
	return &Static{
		results: make(map[string]*domain.ActionResult),
	}
}

// On sets the canned result for an action.
func (s *Static) On(action string, result *domain.ActionResult) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[action] = result
	return s
}

// Calls returns the recorded invocations.
func (s *Static) Calls() []StaticCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StaticCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Execute implements ports.AppExecutor.
func (s *Static) Execute(ctx context.Context, action string, params map[string]any, cred *domain.Credential) (*domain.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, StaticCall{Action: action, Params: params})

	if res, ok := s.results[action]; ok {
		return res, nil
	}
	return &domain.ActionResult{
		Status: domain.ActionSuccess,
		Result: map[string]any{"echo": params},
	}, nil
}
