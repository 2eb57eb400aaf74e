package ports

import (
	"context"

	"github.com/evocall/pathway/pkg/domain"
)

// EventSink receives the durable analytics stream. The engine itself
// persists nothing; transition events describe everything an observability
// collaborator needs to reconstruct a call.
//
// Publish errors are logged and swallowed by the engine: analytics must
// never affect a live call.
type EventSink interface {
	Publish(ctx context.Context, ev *domain.TransitionEvent) error
}
