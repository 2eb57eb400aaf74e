package ports

import (
	"context"

	"github.com/evocall/pathway/pkg/domain"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Capability is one named, invocable transition offered to the model.
// Each corresponds to exactly one outgoing edge of the current node; the
// model invokes it (or not) as part of producing its conversational turn,
// which avoids a second classification round-trip.
type Capability struct {
	// Name is deterministic for a given edge so repeated turns offer a
	// stable tool surface.
	Name string `json:"name"`

	// Description tells the model when the transition applies.
	Description string `json:"description"`
}

// CompletionRequest is one synchronous model call. All engine suspension is
// encapsulated here: the call produces the reply, the extracted fields, and
// the invoked capability in a single round-trip.
type CompletionRequest struct {
	// Instructions is the node prompt plus engine framing.
	Instructions string

	// History is the per-node transcript, oldest first.
	History []Message

	// Extract lists the structured facts the model should return when it
	// can infer them confidently. Unknown fields are omitted, not defaulted.
	Extract []domain.ExtractionSpec

	// Capabilities is the finite, named set of transitions on offer.
	Capabilities []Capability
}

// CompletionResult is the discriminated outcome of one model call.
type CompletionResult struct {
	// Reply is the assistant text to speak.
	Reply string

	// Extracted holds the confidently-inferred fields, keyed by spec name.
	Extracted map[string]any

	// Invoked lists the capability names the model called, in model order.
	// The engine honors at most one (first by edge declaration order).
	Invoked []string
}

// LanguageModel is the language model service seam.
type LanguageModel interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}
