// Package apps provides the app action executors and the registry that
// resolves them by integration name. Executors never fail a call: every
// failure mode comes back as an error-status ActionResult for the engine to
// narrate and move past.
package apps

import (
	"sort"
	"sync"

	"github.com/evocall/pathway/pkg/ports"
)

// Registry maps app names to executors. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]ports.AppExecutor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]ports.AppExecutor),
	}
}

// Register adds an executor for an app name.
// If an executor with the same name exists, it is overwritten.
func (r *Registry) Register(app string, executor ports.AppExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[app] = executor
}

// Resolve implements ports.ExecutorRegistry.
func (r *Registry) Resolve(app string) (ports.AppExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[app]
	return executor, ok
}

// Apps lists the registered app names, sorted.
func (r *Registry) Apps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
