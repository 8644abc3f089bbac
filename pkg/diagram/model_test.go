package diagram_test

import (
	"testing"

	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	states []string
	rules  []domain.Rule
	accept map[string]bool
}

func (s stubSource) States() []string            { return s.states }
func (s stubSource) Rules() []domain.Rule        { return s.rules }
func (s stubSource) Accepting(state string) bool { return s.accept[state] }
func (s stubSource) Start() string               { return s.states[0] }

func rule(from string, read domain.Symbol, write domain.Symbol, move domain.Move, next string) domain.Rule {
	return domain.Rule{From: from, Read: read, Action: domain.Action{Write: write, Move: move, Next: next}}
}

func sample() stubSource {
	return stubSource{
		states: []string{"q0", "q1", "q2"},
		rules: []domain.Rule{
			rule("q0", "0", "0", domain.MoveRight, "q0"),
			rule("q0", "1", "0", domain.MoveRight, "q1"),
			rule("q1", "1", "1", domain.MoveLeft, "q0"),
			rule("q1", "_", "_", domain.MoveRight, "q2"),
			rule("q0", "_", "_", domain.MoveRight, "q1"),
		},
		accept: map[string]bool{"q2": true},
	}
}

func TestBuild_Shapes(t *testing.T) {
	m := diagram.Build(sample())

	require.Len(t, m.Nodes, 3)
	require.Len(t, m.Edges, 5)

	assert.Equal(t, diagram.ShapeLoop, m.Edges[0].Shape)
	assert.Equal(t, diagram.ShapeArc, m.Edges[1].Shape)
	assert.Equal(t, diagram.ShapeArc, m.Edges[2].Shape)
	assert.Equal(t, diagram.ShapeStraight, m.Edges[3].Shape)
	assert.Equal(t, m.Edges[1].Shape, m.Edges[4].Shape, "parallel edges share the shape")

	assert.Equal(t, "1/0,R", m.Edges[1].Label)
	assert.True(t, m.Nodes[0].Start)
	assert.True(t, m.Nodes[2].Accept)
	assert.False(t, m.Nodes[1].Accept)
}

func TestBuild_ShapeInvariant(t *testing.T) {
	m := diagram.Build(sample())
	pairs := map[[2]string]bool{}
	for _, e := range m.Edges {
		pairs[[2]string{e.Source, e.Target}] = true
	}

	for _, e := range m.Edges {
		switch e.Shape {
		case diagram.ShapeLoop:
			assert.Equal(t, e.Source, e.Target)
		case diagram.ShapeArc:
			assert.NotEqual(t, e.Source, e.Target)
			assert.True(t, pairs[[2]string{e.Target, e.Source}])
		case diagram.ShapeStraight:
			assert.NotEqual(t, e.Source, e.Target)
			assert.False(t, pairs[[2]string{e.Target, e.Source}])
		}
	}
}

func TestHighlight(t *testing.T) {
	m := diagram.Build(sample())
	active := rule("q0", "1", "0", domain.MoveRight, "q1")

	h := m.Highlight("q1", &active)

	n, ok := h.Node("q1")
	require.True(t, ok)
	assert.True(t, n.Current)

	var activeCount int
	for i, e := range h.Edges {
		if e.Active {
			activeCount++
			assert.Equal(t, 1, i)
		}
	}
	assert.Equal(t, 1, activeCount, "only the edge matching from, symbol and next")

	for _, e := range m.Edges {
		assert.False(t, e.Active, "Highlight must not mutate the receiver")
	}
	for _, e := range m.Highlight("q0", nil).Edges {
		assert.False(t, e.Active)
	}
}

func TestSignature(t *testing.T) {
	m := diagram.Build(sample())
	active := rule("q0", "1", "0", domain.MoveRight, "q1")

	assert.Equal(t, m.Signature(), m.Highlight("q1", &active).Signature())

	other := sample()
	other.rules = other.rules[:2]
	assert.NotEqual(t, m.Signature(), diagram.Build(other).Signature())
}

func TestLinks_SkipLoopsAndDuplicates(t *testing.T) {
	m := diagram.Build(sample())
	assert.Equal(t, [][2]string{{"q0", "q1"}, {"q1", "q0"}, {"q1", "q2"}}, m.Links())
}
