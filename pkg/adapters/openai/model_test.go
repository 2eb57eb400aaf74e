package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

func TestBuildMessagesRolesAndOrder(t *testing.T) {
	msgs := buildMessages(&ports.CompletionRequest{
		Instructions: "Be brief.",
		History: []ports.Message{
			{Role: ports.RoleAssistant, Content: "Hi!"},
			{Role: ports.RoleUser, Content: "Book a table."},
		},
	})

	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfAssistant)
	assert.NotNil(t, msgs[2].OfUser)
}

func TestBuildTools(t *testing.T) {
	tools := buildTools([]ports.Capability{
		{Name: "wants_booking", Description: "the caller wants to book"},
	})

	require.Len(t, tools, 1)
	assert.Equal(t, "wants_booking", tools[0].Function.Name)
	assert.Equal(t, "object", tools[0].Function.Parameters["type"])

	assert.Nil(t, buildTools(nil), "terminal nodes offer no tools")
}

func TestExtractionSchema(t *testing.T) {
	schema := extractionSchema([]domain.ExtractionSpec{
		{Name: "guest_name", Description: "the caller's name", Type: domain.VarString},
		{Name: "party_size", Description: "seats needed", Type: domain.VarNumber},
		{Name: "confirmed", Description: "caller confirmed", Type: domain.VarBoolean},
	})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, props, 4)
	assert.Equal(t, "number", props["party_size"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["confirmed"].(map[string]any)["type"])

	// Only the reply is mandatory: unknown fields are omitted, not guessed.
	assert.Equal(t, []string{"reply"}, schema["required"])
}

func TestParseContent(t *testing.T) {
	t.Run("structured payload", func(t *testing.T) {
		reply, extracted := parseContent(`{"reply":"Got it.","party_size":4}`, true)
		assert.Equal(t, "Got it.", reply)
		assert.Equal(t, map[string]any{"party_size": float64(4)}, extracted)
	})

	t.Run("reply only", func(t *testing.T) {
		reply, extracted := parseContent(`{"reply":"Hello."}`, true)
		assert.Equal(t, "Hello.", reply)
		assert.Nil(t, extracted)
	})

	t.Run("plain text despite schema", func(t *testing.T) {
		reply, extracted := parseContent("Just words.", true)
		assert.Equal(t, "Just words.", reply)
		assert.Nil(t, extracted)
	})

	t.Run("malformed json falls back to raw text", func(t *testing.T) {
		reply, extracted := parseContent(`{"reply": `, true)
		assert.Equal(t, `{"reply": `, reply)
		assert.Nil(t, extracted)
	})

	t.Run("unstructured mode passes through", func(t *testing.T) {
		reply, extracted := parseContent(`{"reply":"x"}`, false)
		assert.Equal(t, `{"reply":"x"}`, reply)
		assert.Nil(t, extracted)
	})
}
