package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turingviz/pkg/diagram"
)

// GenerateMermaid produces a Mermaid flowchart from a diagram model.
// It applies semantic styling:
// - Start: ((Circle))
// - Accept: (((Double circle)))
// - Default: (Rounded)
// The current state and the last applied edge are highlighted when the
// model carries them.
func GenerateMermaid(m diagram.Model) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range m.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "(", ")"
		switch {
		case node.Accept:
			opener, closer = "(((", ")))"
		case node.Start:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Label), closer)
	}

	var active []int
	for i, e := range m.Edges {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(e.Source), escapeLabel(e.Label), sanitizeMermaidID(e.Target))
		if e.Active {
			active = append(active, i)
		}
	}

	var current string
	for _, node := range m.Nodes {
		if node.Current {
			current = node.ID
		}
	}
	if current == "" && len(active) == 0 {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	if current != "" {
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(current))
	}
	for _, i := range active {
		fmt.Fprintf(&sb, "    linkStyle %d stroke:#fbc02d,stroke-width:3px;\n", i)
	}
	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// escapeLabel replaces double quotes; Mermaid has no escape inside "...".
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
