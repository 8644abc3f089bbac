package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/layout"
)

// GenerateDOT produces a Graphviz digraph from a diagram model.
// When pos is non-nil, nodes are pinned ("x,y!") so `neato -n` reproduces
// the computed layout; DOT's y axis points up, so y is negated.
func GenerateDOT(m diagram.Model, pos layout.Positions) string {
	var sb strings.Builder
	sb.WriteString("digraph machine {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=circle, fontname=\"Helvetica\"];\n")

	for _, node := range m.Nodes {
		attrs := []string{"label=" + strconv.Quote(node.Label)}
		if node.Accept {
			attrs = append(attrs, "shape=doublecircle")
		}
		if node.Current {
			attrs = append(attrs, "style=filled", "fillcolor=\"#ffeb3b\"")
		}
		if p, ok := pos[node.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", diagram.FormatNumber(p.X), diagram.FormatNumber(-p.Y)))
		}
		fmt.Fprintf(&sb, "    %s [%s];\n", strconv.Quote(node.ID), strings.Join(attrs, ", "))
	}

	for _, node := range m.Nodes {
		if node.Start {
			sb.WriteString("    __start [shape=point];\n")
			fmt.Fprintf(&sb, "    __start -> %s;\n", strconv.Quote(node.ID))
			break
		}
	}

	for _, e := range m.Edges {
		attrs := []string{"label=" + strconv.Quote(e.Label)}
		if e.Active {
			attrs = append(attrs, "color=\"#fbc02d\"", "penwidth=3")
		}
		fmt.Fprintf(&sb, "    %s -> %s [%s];\n", strconv.Quote(e.Source), strconv.Quote(e.Target), strings.Join(attrs, ", "))
	}

	sb.WriteString("}\n")
	return sb.String()
}
