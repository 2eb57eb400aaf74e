package runtime

import (
	"fmt"
	"strings"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

// maxSlugLen keeps capability names within tool-name limits of model
// providers.
const maxSlugLen = 48

// edgeCapability pairs one outgoing edge with the transition capability that
// represents it. The slice index matches the edge's declaration index.
type edgeCapability struct {
	Name        string
	Description string
}

// capabilitiesFor builds one capability per outgoing edge, named
// deterministically from its condition so the model sees a stable tool
// surface across turns. Name collisions get a positional suffix.
func capabilitiesFor(edges []domain.Edge) []edgeCapability {
	caps := make([]edgeCapability, 0, len(edges))
	seen := make(map[string]bool, len(edges))

	for i, edge := range edges {
		var name, desc string
		if edge.Condition.Always() {
			name = "proceed_to_" + slug(edge.Target)
			desc = fmt.Sprintf("Move the conversation to the %s step once this part of the call is done.", edge.Target)
		} else {
			name = slug(edge.Condition.Prompt)
			desc = "Invoke when: " + edge.Condition.Prompt
		}
		if name == "" {
			name = fmt.Sprintf("transition_%d", i)
		}
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = true

		caps = append(caps, edgeCapability{Name: name, Description: desc})
	}
	return caps
}

// capsOnly converts to the port type offered to the model.
func capsOnly(caps []edgeCapability) []ports.Capability {
	out := make([]ports.Capability, len(caps))
	for i, c := range caps {
		out[i] = ports.Capability{Name: c.Name, Description: c.Description}
	}
	return out
}

// slug lowercases and snake-cases free text into a tool-safe identifier.
func slug(text string) string {
	var b strings.Builder
	lastUnderscore := true // trims leading separators
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
