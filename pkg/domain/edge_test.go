package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/evocall/pathway/pkg/domain"
)

func TestCondition_UnmarshalYAML(t *testing.T) {
	t.Run("Scalar Shorthand", func(t *testing.T) {
		var e domain.Edge
		err := yaml.Unmarshal([]byte("source: a\ntarget: b\ncondition: always\n"), &e)
		require.NoError(t, err)
		assert.True(t, e.Condition.Always())
	})

	t.Run("Mapping Form", func(t *testing.T) {
		var e domain.Edge
		err := yaml.Unmarshal([]byte("source: a\ntarget: b\ncondition:\n  kind: ai\n  prompt: caller wants to book\n"), &e)
		require.NoError(t, err)
		assert.False(t, e.Condition.Always())
		assert.Equal(t, domain.ConditionAI, e.Condition.Kind)
		assert.Equal(t, "caller wants to book", e.Condition.Prompt)
	})

	t.Run("Omitted Condition Is Always", func(t *testing.T) {
		var e domain.Edge
		err := yaml.Unmarshal([]byte("source: a\ntarget: b\n"), &e)
		require.NoError(t, err)
		assert.True(t, e.Condition.Always())
	})

	t.Run("Unknown Kind Rejected", func(t *testing.T) {
		var e domain.Edge
		err := yaml.Unmarshal([]byte("source: a\ntarget: b\ncondition:\n  kind: regex\n"), &e)
		assert.Error(t, err)
	})

	t.Run("Unknown Shorthand Rejected", func(t *testing.T) {
		var e domain.Edge
		err := yaml.Unmarshal([]byte("source: a\ntarget: b\ncondition: sometimes\n"), &e)
		assert.Error(t, err)
	})
}
