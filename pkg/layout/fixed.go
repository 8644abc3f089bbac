package layout

import (
	"context"

	"github.com/aretw0/turingviz/pkg/domain"
)

// Fixed returns the configured coordinates verbatim.
// Nodes without coordinates are left out of the result.
type Fixed struct {
	positions Positions
}

// NewFixed copies positions into a fixed strategy.
func NewFixed(positions map[string]domain.Point) *Fixed {
	return &Fixed{positions: Positions(positions).Clone()}
}

func (f *Fixed) Mode() Mode { return ModeFixed }

func (f *Fixed) Layout(_ context.Context, g Graph) (Positions, error) {
	out := make(Positions, len(g.Nodes))
	for _, id := range g.Nodes {
		if p, ok := f.positions[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
