package runtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evocall/pathway/pkg/domain"
)

func TestCapabilitiesFor_Naming(t *testing.T) {
	edges := []domain.Edge{
		{Source: "ask", Target: "book", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "The caller wants to book an appointment!"}},
		{Source: "ask", Target: "bye", Condition: domain.Condition{Kind: domain.ConditionAlways}},
	}

	caps := capabilitiesFor(edges)
	assert.Equal(t, "the_caller_wants_to_book_an_appointment", caps[0].Name)
	assert.Equal(t, "proceed_to_bye", caps[1].Name)
	assert.Contains(t, caps[0].Description, "wants to book")
}

func TestCapabilitiesFor_Deterministic(t *testing.T) {
	edges := []domain.Edge{
		{Source: "a", Target: "b", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "yes"}},
	}
	assert.Equal(t, capabilitiesFor(edges), capabilitiesFor(edges))
}

func TestCapabilitiesFor_CollisionGetsSuffix(t *testing.T) {
	edges := []domain.Edge{
		{Source: "a", Target: "b", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "caller agrees"}},
		{Source: "a", Target: "c", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "caller agrees"}},
	}

	caps := capabilitiesFor(edges)
	assert.Equal(t, "caller_agrees", caps[0].Name)
	assert.Equal(t, "caller_agrees_1", caps[1].Name)
}

func TestCapabilitiesFor_EmptyPromptGetsPositionalName(t *testing.T) {
	edges := []domain.Edge{
		{Source: "a", Target: "b", Condition: domain.Condition{Kind: domain.ConditionAI}},
	}
	caps := capabilitiesFor(edges)
	assert.Equal(t, "transition_0", caps[0].Name)
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Hello, World":     "hello_world",
		"  padded  ":       "padded",
		"already_snake":    "already_snake",
		"UPPER case 123":   "upper_case_123",
		"":                 "",
		"!!!":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug(in), "slug(%q)", in)
	}

	long := slug(strings.Repeat("caller wants something ", 10))
	assert.LessOrEqual(t, len(long), maxSlugLen)
}
