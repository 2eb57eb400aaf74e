package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/pkg/domain"
)

func fixture(t *testing.T) *domain.Pathway {
	t.Helper()
	p := &domain.Pathway{
		ID: "bookings",
		Nodes: []domain.Node{
			{ID: "greet", Kind: domain.KindConversation, Start: true, Conversation: &domain.ConversationConfig{Prompt: "x"}},
			{ID: "book-it", Kind: domain.KindAppAction, Name: "Create booking", AppAction: &domain.AppActionConfig{App: "calendar", Action: "create_event"}},
			{ID: "bye", Kind: domain.KindEndCall, EndCall: &domain.EndCallConfig{Farewell: "Bye"}},
		},
		Edges: []domain.Edge{
			{Source: "greet", Target: "book-it", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: `caller says "book it"`}},
			{Source: "book-it", Target: "bye"},
		},
	}
	_, err := p.Validate()
	require.NoError(t, err)
	return p
}

func TestGenerateMermaidShapes(t *testing.T) {
	out := GenerateMermaid(fixture(t), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	// Entry point wins over the conversation shape.
	assert.Contains(t, out, `greet(("greet"))`)
	assert.Contains(t, out, `book_it[["Create booking"]]`)
	assert.Contains(t, out, `bye(["bye"])`)
}

func TestGenerateMermaidEdges(t *testing.T) {
	out := GenerateMermaid(fixture(t), nil)

	// AI edges carry the prompt label with quotes escaped.
	assert.Contains(t, out, `greet -- "caller says 'book it'" --> book_it`)
	// Always edges are plain arrows.
	assert.Contains(t, out, "book_it --> bye")
}

func TestGenerateMermaidOverlay(t *testing.T) {
	out := GenerateMermaid(fixture(t), &Overlay{
		VisitedNodes: []string{"greet", "greet", "book-it"},
		CurrentNode:  "bye",
	})

	assert.Equal(t, 1, strings.Count(out, "class greet visited;"), "visited nodes are deduplicated")
	assert.Contains(t, out, "class book_it visited;")
	assert.Contains(t, out, "class bye current;")
}
