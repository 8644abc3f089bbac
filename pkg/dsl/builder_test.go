package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_MatchesCatalog(t *testing.T) {
	want := memory.BusyBeaver()

	b := New("busy-beaver-2").
		Name(want.Name).
		Description(want.Description).
		Alphabet("0", "1").
		Blank("0")

	b.State("A").Start().
		Right("0", "1", "B").
		Left("1", "1", "B").
		State("B").
		Left("0", "1", "A").
		Right("1", "1", "H").
		State("H").Accept()

	got, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuilder_DefaultStart(t *testing.T) {
	b := New("tiny")
	b.State("q0").Right("_", "_", "q1")
	b.State("q1").Accept().Accept().At(10, 20)

	def, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "q0", def.Start)
	assert.Equal(t, []string{"q1"}, def.Accept, "accept is a set")
	assert.Equal(t, domain.Point{X: 10, Y: 20}, def.Positions["q1"])
}

func TestBuilder_Invalid(t *testing.T) {
	b := New("broken")
	b.State("q0").Right("a", "a", "nowhere")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransitionTarget)

	_, err = New("empty").Build()
	assert.ErrorIs(t, err, domain.ErrEmptyDefinition)
}

func TestBuilder_BuildLoader(t *testing.T) {
	b := New("tiny")
	b.State("q0").Accept()

	loader, err := b.BuildLoader()
	require.NoError(t, err)

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, ids)
}

func TestBuilder_StateIsIdempotent(t *testing.T) {
	b := New("x")
	first := b.State("q0")
	assert.Same(t, first, b.State("q0"))

	def, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"q0"}, def.States)
}
