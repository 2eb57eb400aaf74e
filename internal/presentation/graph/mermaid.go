package graph

import (
	"fmt"
	"strings"

	"github.com/evocall/pathway/pkg/domain"
)

// Overlay contains dynamic session data to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart from a pathway.
// It applies semantic styling:
// - Entry point: ((Circle))
// - app_action: [[Subroutine]]
// - conversation: [/Parallelogram/]
// - end_call, transfer: ([Stadium])
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(p *domain.Pathway, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range p.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == p.EntryPoint:
			opener, closer = "((", "))"
		case node.Kind == domain.KindAppAction:
			opener, closer = "[[", "]]"
		case node.Kind == domain.KindConversation:
			opener, closer = "[/", "/]"
		case node.Kind == domain.KindEndCall, node.Kind == domain.KindTransfer:
			opener, closer = "([", "])"
		}

		label := node.Name
		if label == "" {
			label = node.ID
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, edge := range p.Edges {
		safeFrom := sanitizeMermaidID(edge.Source)
		safeTo := sanitizeMermaidID(edge.Target)

		arrow := "-->"
		if !edge.Condition.Always() {
			// Escape double quotes in the prompt for the Mermaid label.
			safePrompt := strings.ReplaceAll(edge.Condition.Prompt, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safePrompt)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
