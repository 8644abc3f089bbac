package layout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
)

// Engine selects a strategy at construction and caches its result per
// graph signature, so highlighting changes never re-run the simulation.
type Engine struct {
	mu        sync.Mutex
	strategy  Strategy
	signature string
	cached    Positions

	cfg     ForceConfig
	initial Positions
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithForceConfig overrides the simulation parameters.
func WithForceConfig(cfg ForceConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithInitialPositions seeds the force simulation.
func WithInitialPositions(p map[string]domain.Point) Option {
	return func(e *Engine) {
		e.initial = Positions(p).Clone()
	}
}

// WithStrategy bypasses strategy selection.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine. Fixed mode is chosen when fixed coordinates are
// supplied, force mode otherwise.
func New(fixed map[string]domain.Point, opts ...Option) *Engine {
	e := &Engine{
		cfg:    DefaultForceConfig(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.strategy == nil {
		if len(fixed) > 0 {
			e.strategy = NewFixed(fixed)
		} else {
			e.strategy = NewForce(e.cfg, e.initial, e.logger)
		}
	}
	return e
}

// Mode returns the active positioning regime.
func (e *Engine) Mode() Mode { return e.strategy.Mode() }

// Positions returns the layout of m, computing it only when the graph
// signature changed since the last successful run. Cancelled runs return
// their partial positions with the context error and are not cached.
func (e *Engine) Positions(ctx context.Context, m diagram.Model) (Positions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sig := m.Signature()
	if e.cached != nil && sig == e.signature {
		return e.cached.Clone(), nil
	}

	pos, err := e.strategy.Layout(ctx, FromModel(m))
	if err != nil {
		return pos, err
	}
	e.signature = sig
	e.cached = pos
	e.logger.Debug("layout computed", "mode", e.strategy.Mode(), "nodes", len(pos))
	return pos.Clone(), nil
}

// Invalidate drops the cached layout.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cached = nil
	e.signature = ""
}
