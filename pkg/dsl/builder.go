package dsl

import (
	"fmt"

	"github.com/aretw0/turingviz/internal/runtime"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	def    domain.Definition
	states map[string]*StateBuilder
}

// New creates a new definition builder.
func New(id string) *Builder {
	return &Builder{
		def:    domain.Definition{ID: id},
		states: make(map[string]*StateBuilder),
	}
}

// Name sets the display name.
func (b *Builder) Name(name string) *Builder {
	b.def.Name = name
	return b
}

// Description sets the description.
func (b *Builder) Description(text string) *Builder {
	b.def.Description = text
	return b
}

// Alphabet declares the tape symbols, enabling symbol checks.
func (b *Builder) Alphabet(symbols ...domain.Symbol) *Builder {
	b.def.Alphabet = append(b.def.Alphabet, symbols...)
	return b
}

// Blank sets the blank symbol.
func (b *Builder) Blank(s domain.Symbol) *Builder {
	b.def.Blank = s
	return b
}

// Input sets the default tape content.
func (b *Builder) Input(input string) *Builder {
	b.def.Input = input
	return b
}

// State declares a state, in call order.
// If the state already exists, it returns the existing builder.
func (b *Builder) State(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.def.States = append(b.def.States, id)
	return sb
}

// Build validates and returns the definition.
// The first declared state is the start state unless one was marked.
func (b *Builder) Build() (domain.Definition, error) {
	def := b.def.Clone()
	if def.Start == "" && len(def.States) > 0 {
		def.Start = def.States[0]
	}
	if err := runtime.Validate(def); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid definition %s: %w", def.ID, err)
	}
	return def, nil
}

// BuildLoader compiles the definition into a single-entry memory loader.
func (b *Builder) BuildLoader() (*memory.Loader, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}

	loader, err := memory.NewLoader(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id      string
	builder *Builder
}

// Start marks the state as the start state.
func (s *StateBuilder) Start() *StateBuilder {
	s.builder.def.Start = s.id
	return s
}

// Accept adds the state to the accept set.
func (s *StateBuilder) Accept() *StateBuilder {
	if !s.builder.def.IsAccept(s.id) {
		s.builder.def.Accept = append(s.builder.def.Accept, s.id)
	}
	return s
}

// At pins the diagram position of the state.
func (s *StateBuilder) At(x, y float64) *StateBuilder {
	if s.builder.def.Positions == nil {
		s.builder.def.Positions = make(map[string]domain.Point)
	}
	s.builder.def.Positions[s.id] = domain.Point{X: x, Y: y}
	return s
}

// On adds the transition (state, read) -> (write, move, next).
// A later call for the same read symbol replaces the earlier one.
func (s *StateBuilder) On(read, write domain.Symbol, move domain.Move, next string) *StateBuilder {
	def := &s.builder.def
	if def.Transitions == nil {
		def.Transitions = make(map[string]map[domain.Symbol]domain.Action)
	}
	row, ok := def.Transitions[s.id]
	if !ok {
		row = make(map[domain.Symbol]domain.Action)
		def.Transitions[s.id] = row
	}
	row[read] = domain.Action{Write: write, Move: move, Next: next}
	return s
}

// Right is On with a right move.
func (s *StateBuilder) Right(read, write domain.Symbol, next string) *StateBuilder {
	return s.On(read, write, domain.MoveRight, next)
}

// Left is On with a left move.
func (s *StateBuilder) Left(read, write domain.Symbol, next string) *StateBuilder {
	return s.On(read, write, domain.MoveLeft, next)
}

// State switches to (or declares) another state, keeping the chain going.
func (s *StateBuilder) State(id string) *StateBuilder {
	return s.builder.State(id)
}

// Done returns the parent builder.
func (s *StateBuilder) Done() *Builder {
	return s.builder
}
