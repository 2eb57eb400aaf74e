package ports

import (
	"context"

	"github.com/evocall/pathway/pkg/domain"
)

// PathwayLoader is the configuration store seam. The engine reads a pathway
// exactly once at session start; implementations must return definitions that
// are safe to share by reference across sessions (validated, never mutated).
type PathwayLoader interface {
	// Load retrieves and validates the pathway with the given id.
	Load(ctx context.Context, pathwayID string) (*domain.Pathway, error)
}
