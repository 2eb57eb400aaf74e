package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evocall/pathway/pkg/domain"
)

func TestValidate_EntryPointPrecedence(t *testing.T) {
	t.Run("Explicit Field Wins", func(t *testing.T) {
		p := &domain.Pathway{
			ID:         "p",
			EntryPoint: "second",
			Nodes: []domain.Node{
				{ID: "first", Kind: domain.KindConversation, Start: true},
				{ID: "second", Kind: domain.KindConversation},
			},
		}
		_, err := p.Validate()
		require.NoError(t, err)
		assert.Equal(t, "second", p.EntryPoint)
	})

	t.Run("Start Flag", func(t *testing.T) {
		p := &domain.Pathway{
			ID: "p",
			Nodes: []domain.Node{
				{ID: "first", Kind: domain.KindConversation},
				{ID: "flagged", Kind: domain.KindConversation, Start: true},
			},
		}
		_, err := p.Validate()
		require.NoError(t, err)
		assert.Equal(t, "flagged", p.EntryPoint)
	})

	t.Run("First Conversation Node", func(t *testing.T) {
		p := &domain.Pathway{
			ID: "p",
			Nodes: []domain.Node{
				{ID: "hangup", Kind: domain.KindEndCall},
				{ID: "talk", Kind: domain.KindConversation},
			},
		}
		_, err := p.Validate()
		require.NoError(t, err)
		assert.Equal(t, "talk", p.EntryPoint)
	})

	t.Run("No Entry Point Is Fatal", func(t *testing.T) {
		p := &domain.Pathway{
			ID:    "p",
			Nodes: []domain.Node{{ID: "hangup", Kind: domain.KindEndCall}},
		}
		_, err := p.Validate()
		assert.ErrorIs(t, err, domain.ErrNoEntryPoint)
	})

	t.Run("Explicit Entry Point Must Exist", func(t *testing.T) {
		p := &domain.Pathway{
			ID:         "p",
			EntryPoint: "ghost",
			Nodes:      []domain.Node{{ID: "talk", Kind: domain.KindConversation}},
		}
		_, err := p.Validate()
		assert.ErrorIs(t, err, domain.ErrNoEntryPoint)
	})
}

func TestValidate_Warnings(t *testing.T) {
	p := &domain.Pathway{
		ID: "p",
		Nodes: []domain.Node{
			{ID: "talk", Kind: domain.KindConversation},
			{ID: "island", Kind: domain.KindConversation},
		},
		Edges: []domain.Edge{
			{Source: "talk", Target: "ghost"},
		},
	}

	warnings, err := p.Validate()
	require.NoError(t, err, "dangling edges and orphans are non-fatal")

	var codes []string
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, domain.WarnDanglingEdge)
	assert.Contains(t, codes, domain.WarnOrphanNode)
}

func TestOutgoingEdges_PreservesDeclarationOrder(t *testing.T) {
	p := &domain.Pathway{
		ID: "p",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindConversation},
			{ID: "b", Kind: domain.KindConversation},
			{ID: "c", Kind: domain.KindConversation},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
			{Source: "a", Target: "c"},
		},
	}

	out := p.OutgoingEdges("a")
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Target)
	assert.Equal(t, "c", out[1].Target)
	assert.Empty(t, p.OutgoingEdges("c"))
}

func TestState_SetVariablesLastWriteWins(t *testing.T) {
	s := domain.NewState("call-1", "user-1", "start")
	s.SetVariables(map[string]any{"name": "Ada", "count": 1})
	s.SetVariables(map[string]any{"count": 2})

	assert.Equal(t, "Ada", s.Variables["name"])
	assert.Equal(t, 2, s.Variables["count"])
	assert.Len(t, s.Variables, 2)
}
