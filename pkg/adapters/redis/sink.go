package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/evocall/pathway/pkg/domain"
)

const defaultStream = "pathway:transitions"

// Sink implements ports.EventSink by appending each transition event to a
// Redis stream. Consumers (analytics, billing) read with XREAD at their own
// pace; the engine never blocks on them.
type Sink struct {
	client *backend.Client
	stream string
	maxLen int64
}

// SinkOption configures the sink.
type SinkOption func(*Sink)

// WithStream overrides the stream key.
func WithStream(stream string) SinkOption {
	return func(s *Sink) { s.stream = stream }
}

// WithMaxLen caps the stream length (approximate trimming).
func WithMaxLen(n int64) SinkOption {
	return func(s *Sink) { s.maxLen = n }
}

// NewSink creates a sink on an existing client.
func NewSink(client *backend.Client, opts ...SinkOption) *Sink {
	s := &Sink{
		client: client,
		stream: defaultStream,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish appends the event as a single JSON field so consumers decode one
// blob instead of reassembling typed fields.
func (s *Sink) Publish(ctx context.Context, ev *domain.TransitionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal transition event: %w", err)
	}

	args := &backend.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"session_id": ev.SessionID,
			"event":      string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis xadd transition event: %w", err)
	}
	return nil
}
