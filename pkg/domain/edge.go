package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConditionKind constants.
const (
	// ConditionAlways is trivially true. Used for deterministic handoffs,
	// e.g. the single edge out of an app_action node.
	ConditionAlways = "always"
	// ConditionAI is judged by the language model as part of producing its
	// conversational turn: the edge is exposed as a named transition
	// capability the model may invoke.
	ConditionAI = "ai"
)

// Edge defines a guarded directed transition between two nodes.
// Declaration order is load-bearing: when several edges out of a node are
// satisfiable in the same turn, the earliest declared one wins.
type Edge struct {
	Source    string    `json:"source" yaml:"source"`
	Target    string    `json:"target" yaml:"target"`
	Condition Condition `json:"condition" yaml:"condition"`
}

// Condition guards an Edge.
type Condition struct {
	Kind string `json:"kind" yaml:"kind"`

	// Prompt describes when an AI-judged edge should be taken, e.g.
	// "the caller wants to book an appointment". Empty for always edges.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Always reports whether the condition is the unconditional kind.
// The zero Condition counts as always, so `condition:` may be omitted
// in pathway documents.
func (c Condition) Always() bool {
	return c.Kind == "" || c.Kind == ConditionAlways
}

// UnmarshalYAML accepts either the scalar shorthand `condition: always`
// or the full mapping form with kind and prompt.
func (c *Condition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value != ConditionAlways && value.Value != "" {
			return fmt.Errorf("unknown condition shorthand %q (expected 'always')", value.Value)
		}
		c.Kind = ConditionAlways
		return nil
	}

	type plain Condition
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Condition(p)
	if c.Kind != "" && c.Kind != ConditionAlways && c.Kind != ConditionAI {
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	return nil
}
