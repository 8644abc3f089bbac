// Package diagram builds the state-diagram model of a transition table and
// the analytic SVG paths of its edges.
package diagram

import (
	"sort"
	"strings"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Shape is the routing class of an edge.
type Shape string

const (
	ShapeLoop     Shape = "loop"     // source == target
	ShapeArc      Shape = "arc"      // a reverse edge target -> source exists
	ShapeStraight Shape = "straight" // one-way edge
)

// Node is one state of the diagram.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Accept  bool   `json:"accept,omitempty"`
	Start   bool   `json:"start,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// Edge is one transition rule of the diagram.
type Edge struct {
	Source string        `json:"source"`
	Target string        `json:"target"`
	Symbol domain.Symbol `json:"symbol"`
	Action domain.Action `json:"action"`
	Label  string        `json:"label"`
	Shape  Shape         `json:"shape"`
	Active bool          `json:"active,omitempty"`
}

// Model is an immutable node/edge description. Methods return copies.
type Model struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Source is what Build needs from a transition table.
type Source interface {
	States() []string
	Rules() []domain.Rule
	Accepting(state string) bool
	Start() string
}

// Build creates one node per declared state and one edge per rule, and
// classifies every edge shape in a single pass over the ordered pairs.
func Build(src Source) Model {
	states := src.States()
	rules := src.Rules()

	m := Model{
		Nodes: make([]Node, 0, len(states)),
		Edges: make([]Edge, 0, len(rules)),
	}
	for _, s := range states {
		m.Nodes = append(m.Nodes, Node{
			ID:     s,
			Label:  s,
			Accept: src.Accepting(s),
			Start:  s == src.Start(),
		})
	}

	pairs := make(map[[2]string]int, len(rules))
	for _, r := range rules {
		pairs[[2]string{r.From, r.Action.Next}]++
	}
	for _, r := range rules {
		m.Edges = append(m.Edges, Edge{
			Source: r.From,
			Target: r.Action.Next,
			Symbol: r.Read,
			Action: r.Action,
			Label:  r.Label(),
			Shape:  classify(r.From, r.Action.Next, pairs),
		})
	}
	return m
}

func classify(source, target string, pairs map[[2]string]int) Shape {
	switch {
	case source == target:
		return ShapeLoop
	case pairs[[2]string{target, source}] > 0:
		return ShapeArc
	default:
		return ShapeStraight
	}
}

// Highlight returns a copy with the current node marked and, when active is
// not nil, the edge matching its source, symbol and target marked active.
func (m Model) Highlight(current string, active *domain.Rule) Model {
	out := m.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Current = out.Nodes[i].ID == current
	}
	for i := range out.Edges {
		e := &out.Edges[i]
		e.Active = active != nil &&
			e.Source == active.From &&
			e.Symbol == active.Read &&
			e.Target == active.Action.Next
	}
	return out
}

// Clone returns a deep copy.
func (m Model) Clone() Model {
	return Model{
		Nodes: append([]Node(nil), m.Nodes...),
		Edges: append([]Edge(nil), m.Edges...),
	}
}

// Node returns the node with the given id.
func (m Model) Node(id string) (Node, bool) {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIDs returns the node identifiers in model order.
func (m Model) NodeIDs() []string {
	out := make([]string, len(m.Nodes))
	for i, n := range m.Nodes {
		out[i] = n.ID
	}
	return out
}

// Links returns the distinct ordered (source, target) pairs, loops excluded.
func (m Model) Links() [][2]string {
	seen := make(map[[2]string]struct{}, len(m.Edges))
	var out [][2]string
	for _, e := range m.Edges {
		if e.Source == e.Target {
			continue
		}
		k := [2]string{e.Source, e.Target}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Signature identifies the graph structure. Highlighting does not change it.
func (m Model) Signature() string {
	var sb strings.Builder
	for _, id := range m.NodeIDs() {
		sb.WriteString(id)
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
	links := m.Links()
	keys := make([]string, len(links))
	for i, l := range links {
		keys[i] = l[0] + ">" + l[1]
	}
	sort.Strings(keys)
	sb.WriteString(strings.Join(keys, ";"))
	return sb.String()
}
