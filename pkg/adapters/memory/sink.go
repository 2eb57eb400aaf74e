package memory

import (
	"context"
	"sync"

	"github.com/evocall/pathway/pkg/domain"
)

// Sink implements ports.EventSink by recording events in memory.
type Sink struct {
	mu     sync.Mutex
	events []*domain.TransitionEvent
}

// NewSink creates an empty recording sink.
func NewSink() *Sink {
	return &Sink{}
}

// Publish records the event.
func (s *Sink) Publish(ctx context.Context, ev *domain.TransitionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a snapshot of everything published so far.
func (s *Sink) Events() []*domain.TransitionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.TransitionEvent, len(s.events))
	copy(out, s.events)
	return out
}
