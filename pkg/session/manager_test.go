package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/internal/runtime"
	"github.com/evocall/pathway/internal/testutils"
	"github.com/evocall/pathway/pkg/adapters/memory"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/session"
)

func newManager(t *testing.T, model *testutils.ScriptedModel) *session.Manager {
	t.Helper()
	loader, err := memory.NewLoader(&domain.Pathway{
		ID: "support",
		Nodes: []domain.Node{
			{ID: "greet", Kind: domain.KindConversation, Start: true, Conversation: &domain.ConversationConfig{
				Prompt:   "Help the caller.",
				Greeting: "Hello, how can I help?",
				Extract: []domain.ExtractionSpec{
					{Name: "topic", Description: "what the caller needs", Type: domain.VarString},
				},
			}},
			{ID: "bye", Kind: domain.KindEndCall, EndCall: &domain.EndCallConfig{Farewell: "Bye!"}},
		},
		Edges: []domain.Edge{
			{Source: "greet", Target: "bye", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "the caller is done"}},
		},
	})
	require.NoError(t, err)
	return session.NewManager(runtime.NewEngine(model), loader)
}

func TestManagerStartSpeaksGreeting(t *testing.T) {
	m := newManager(t, testutils.NewScriptedModel())

	id, effects, err := m.Start(context.Background(), "support", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, effects, 1)
	assert.Equal(t, "Hello, how can I help?", effects[0].Text)

	assert.Equal(t, []string{id}, m.List())
}

func TestManagerStartUnknownPathway(t *testing.T) {
	m := newManager(t, testutils.NewScriptedModel())

	_, _, err := m.Start(context.Background(), "missing", "user-1")
	require.Error(t, err)
	assert.Empty(t, m.List())
}

func TestManagerTurnAndSnapshot(t *testing.T) {
	model := testutils.NewScriptedModel(
		testutils.ScriptEntry{Reply: "Sure, tell me more.", Extracted: map[string]any{"topic": "billing"}},
	)
	m := newManager(t, model)
	ctx := context.Background()

	id, _, err := m.Start(ctx, "support", "user-1")
	require.NoError(t, err)

	effects, err := m.Turn(ctx, id, "I have a billing question")
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, "Sure, tell me more.", effects[0].Text)

	snap, err := m.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "greet", snap.CurrentNodeID)
	assert.Equal(t, 2, snap.TurnIndex)
	assert.Equal(t, "billing", snap.Variables["topic"])

	// The snapshot is detached from the live state.
	snap.Variables["topic"] = "mutated"
	again, err := m.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "billing", again.Variables["topic"])
}

func TestManagerUnknownSession(t *testing.T) {
	m := newManager(t, testutils.NewScriptedModel())
	ctx := context.Background()

	_, err := m.Turn(ctx, "nope", "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = m.Snapshot(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.ErrorIs(t, m.End(ctx, "nope"), domain.ErrSessionNotFound)
}

func TestManagerEndCancelsAndRemoves(t *testing.T) {
	m := newManager(t, testutils.NewScriptedModel())
	ctx := context.Background()

	id, _, err := m.Start(ctx, "support", "user-1")
	require.NoError(t, err)

	require.NoError(t, m.End(ctx, id))
	assert.Empty(t, m.List())

	_, err = m.Turn(ctx, id, "hello?")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManagerSerializesConcurrentTurns(t *testing.T) {
	m := newManager(t, testutils.NewScriptedModel(
		testutils.ScriptEntry{Reply: "Okay."},
	))
	ctx := context.Background()

	id, _, err := m.Start(ctx, "support", "user-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Turn(ctx, id, "still here")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := m.Snapshot(ctx, id)
	require.NoError(t, err)
	// Start settles one turn, then each utterance settles exactly one more.
	assert.Equal(t, 11, snap.TurnIndex)
}
