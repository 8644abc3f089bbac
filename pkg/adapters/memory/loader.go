package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Loader implements ports.MachineLoader over definitions held in memory.
type Loader struct {
	defs map[string]domain.Definition
}

// NewLoader creates a loader from definitions. IDs must be unique and non-empty.
func NewLoader(defs ...domain.Definition) (*Loader, error) {
	l := &Loader{defs: make(map[string]domain.Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("definition missing ID")
		}
		if _, dup := l.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate definition %q", d.ID)
		}
		l.defs[d.ID] = d.Clone()
	}
	return l, nil
}

// NewBuiltinLoader serves the bundled machines.
func NewBuiltinLoader() *Loader {
	l, _ := NewLoader(Builtin()...)
	return l
}

// Get returns a copy of the definition.
func (l *Loader) Get(_ context.Context, id string) (domain.Definition, error) {
	d, ok := l.defs[id]
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, id)
	}
	return d.Clone(), nil
}

// List returns all definition IDs.
func (l *Loader) List(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.defs))
	for k := range l.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
