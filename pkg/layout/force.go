package layout

import (
	"context"
	"log/slog"

	"github.com/aretw0/turingviz/internal/logging"
)

// ForceConfig parameterises the force simulation.
type ForceConfig struct {
	Width         float64 `json:"width" yaml:"width"`
	Height        float64 `json:"height" yaml:"height"`
	LinkDistance  float64 `json:"link_distance" yaml:"link_distance"`
	Charge        float64 `json:"charge" yaml:"charge"`
	CollideRadius float64 `json:"collide_radius" yaml:"collide_radius"`
	AlphaDecay    float64 `json:"alpha_decay" yaml:"alpha_decay"`
	AlphaMin      float64 `json:"alpha_min" yaml:"alpha_min"`
	VelocityDecay float64 `json:"velocity_decay" yaml:"velocity_decay"`
	MaxTicks      int     `json:"max_ticks" yaml:"max_ticks"`
	Seed          int64   `json:"seed" yaml:"seed"`
}

// DefaultForceConfig returns the standard 800x600 diagram settings.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		Width:         800,
		Height:        600,
		LinkDistance:  100,
		Charge:        -400,
		CollideRadius: 35,
		AlphaDecay:    0.05,
		AlphaMin:      0.001,
		VelocityDecay: 0.4,
		MaxTicks:      300,
		Seed:          1,
	}
}

// Force runs a simulation to convergence.
type Force struct {
	cfg     ForceConfig
	initial Positions
	logger  *slog.Logger
}

// NewForce creates a force strategy. initial optionally seeds node positions.
func NewForce(cfg ForceConfig, initial Positions, logger *slog.Logger) *Force {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Force{cfg: cfg, initial: initial.Clone(), logger: logger}
}

func (f *Force) Mode() Mode { return ModeForce }

// Layout ticks until the simulation freezes. Cancellation is checked
// between ticks; the positions reached so far are returned with ctx.Err().
func (f *Force) Layout(ctx context.Context, g Graph) (Positions, error) {
	sim := NewSimulation(g, f.cfg, f.initial)
	for !sim.Settled() {
		if err := ctx.Err(); err != nil {
			f.logger.Debug("layout cancelled", "ticks", sim.Ticks(), "alpha", sim.Alpha())
			return sim.Positions(), err
		}
		sim.Tick()
	}
	f.logger.Debug("layout settled", "nodes", len(g.Nodes), "ticks", sim.Ticks())
	return sim.Positions(), nil
}
