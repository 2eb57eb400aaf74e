package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/evocall/pathway/pkg/domain"
)

// Loader implements ports.PathwayLoader over an in-memory map. Intended for
// tests and the CLI simulator.
type Loader struct {
	mu       sync.RWMutex
	pathways map[string]*domain.Pathway
}

// NewLoader creates a loader holding the given pathways. Each is validated
// up front so sessions always receive a resolvable entry point.
func NewLoader(pathways ...*domain.Pathway) (*Loader, error) {
	l := &Loader{pathways: make(map[string]*domain.Pathway, len(pathways))}
	for _, p := range pathways {
		if p.ID == "" {
			return nil, fmt.Errorf("pathway missing id")
		}
		if _, err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pathway %s: %w", p.ID, err)
		}
		l.pathways[p.ID] = p
	}
	return l, nil
}

// Add registers another pathway after construction.
func (l *Loader) Add(p *domain.Pathway) error {
	if _, err := p.Validate(); err != nil {
		return fmt.Errorf("pathway %s: %w", p.ID, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pathways[p.ID] = p
	return nil
}

// Load retrieves a pathway by id.
func (l *Loader) Load(ctx context.Context, pathwayID string) (*domain.Pathway, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.pathways[pathwayID]
	if !ok {
		return nil, fmt.Errorf("pathway not found: %s", pathwayID)
	}
	return p, nil
}
