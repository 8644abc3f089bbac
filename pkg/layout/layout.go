// Package layout positions diagram nodes, either verbatim from fixed
// coordinates or with an iterative force simulation.
package layout

import (
	"context"

	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
)

// Mode names the positioning regime of an Engine.
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeForce Mode = "force"
)

// Positions maps node ids to coordinates.
type Positions map[string]domain.Point

// Clone returns an independent copy.
func (p Positions) Clone() Positions {
	if p == nil {
		return nil
	}
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Graph is the structure a strategy lays out.
type Graph struct {
	Nodes []string
	Links [][2]string
}

// FromModel extracts the layout graph of a diagram.
func FromModel(m diagram.Model) Graph {
	return Graph{Nodes: m.NodeIDs(), Links: m.Links()}
}

// Strategy computes node positions for a graph.
// Implementations return partial positions together with ctx.Err() when cancelled.
type Strategy interface {
	Mode() Mode
	Layout(ctx context.Context, g Graph) (Positions, error)
}
