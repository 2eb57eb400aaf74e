package testutils

import (
	"context"
	"sync"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// ScriptedModel is a LanguageModel double that returns canned results in
// order and records every request it receives. When the script runs out it
// keeps returning the last entry.
type ScriptedModel struct {
	mu       sync.Mutex
	script   []ScriptEntry
	pos      int
	Requests []*ports.CompletionRequest
}

// ScriptEntry is one canned model turn.
type ScriptEntry struct {
	Reply     string
	Extracted map[string]any
	Invoked   []string
	Err       error
}

// NewScriptedModel builds a model double from the given turns.
func NewScriptedModel(entries ...ScriptEntry) *ScriptedModel {
	return &ScriptedModel{script: entries}
}

// Complete implements ports.LanguageModel.
func (m *ScriptedModel) Complete(ctx context.Context, req *ports.CompletionRequest) (*ports.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if len(m.script) == 0 {
		return &ports.CompletionResult{Reply: "Okay."}, nil
	}
	entry := m.script[m.pos]
	if m.pos < len(m.script)-1 {
		m.pos++
	}
	if entry.Err != nil {
		return nil, entry.Err
	}
	return &ports.CompletionResult{
		Reply:     entry.Reply,
		Extracted: entry.Extracted,
		Invoked:   entry.Invoked,
	}, nil
}

// Calls returns how many completions were requested.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// StubExecutor is an AppExecutor double with a fixed outcome.
type StubExecutor struct {
	mu     sync.Mutex
	Result *domain.ActionResult
	Err    error
	Panics bool

	LastAction string
	LastParams map[string]any
	LastCred   *domain.Credential
	CallCount  int
}

// Execute implements ports.AppExecutor.
func (x *StubExecutor) Execute(ctx context.Context, action string, params map[string]any, cred *domain.Credential) (*domain.ActionResult, error) {
	x.mu.Lock()
	x.LastAction = action
	x.LastParams = params
	x.LastCred = cred
	x.CallCount++
	x.mu.Unlock()

	if x.Panics {
		panic("stub executor exploded")
	}
	if x.Err != nil {
		return nil, x.Err
	}
	if x.Result != nil {
		return x.Result, nil
	}
	return &domain.ActionResult{Status: domain.ActionSuccess}, nil
}

// StaticRegistry maps app names to executors.
type StaticRegistry map[string]ports.AppExecutor

// Resolve implements ports.ExecutorRegistry.
func (r StaticRegistry) Resolve(app string) (ports.AppExecutor, bool) {
	x, ok := r[app]
	return x, ok
}
