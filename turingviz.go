package turingviz

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/internal/runtime"
	"github.com/aretw0/turingviz/pkg/diagram"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/layout"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/tape"
	"github.com/aretw0/turingviz/pkg/view"
)

// Machine is the high-level entry point of the library: one tape, one
// executor, one diagram model and one layout engine for a single definition.
// Its methods are safe for concurrent use; steps never interleave.
type Machine struct {
	mu     sync.Mutex
	table  *runtime.Table
	exec   *runtime.Executor
	model  diagram.Model
	layout *layout.Engine
	input  string

	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	trace      bool
	traceLimit int
	positions  map[string]domain.Point
	forceCfg   *layout.ForceConfig
	radius     float64
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithTrace toggles step-back recording (enabled by default).
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// WithTraceLimit bounds the step-back depth (0 means unbounded).
func WithTraceLimit(n int) Option {
	return func(m *Machine) {
		m.traceLimit = n
	}
}

// WithPositions pins diagram coordinates, overriding the definition's.
func WithPositions(p map[string]domain.Point) Option {
	return func(m *Machine) {
		m.positions = p
	}
}

// WithForceConfig overrides the force layout parameters.
func WithForceConfig(cfg layout.ForceConfig) Option {
	return func(m *Machine) {
		m.forceCfg = &cfg
	}
}

// WithNodeRadius sets the radius used for edge routing and rendering.
func WithNodeRadius(r float64) Option {
	return func(m *Machine) {
		m.radius = r
	}
}

// New validates def and builds a machine loaded with def.Input.
// Validation errors are joined; test them with errors.Is.
func New(def domain.Definition, opts ...Option) (*Machine, error) {
	m := &Machine{
		trace:  true,
		radius: diagram.NodeRadius,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	m.logger = m.logger.With("machine", def.ID)

	table, err := runtime.NewTable(def)
	if err != nil {
		return nil, err
	}
	m.table = table

	execOpts := []runtime.Option{
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
	}
	if m.trace {
		execOpts = append(execOpts, runtime.WithTrace(m.traceLimit))
	}
	m.input = def.Input
	m.exec = runtime.NewExecutor(table, tape.New(def.Input, table.Blank()), execOpts...)
	m.model = diagram.Build(table)

	fixed := m.positions
	if fixed == nil {
		fixed = def.Positions
	}
	layoutOpts := []layout.Option{layout.WithLogger(m.logger)}
	if m.forceCfg != nil {
		layoutOpts = append(layoutOpts, layout.WithForceConfig(*m.forceCfg))
	}
	m.layout = layout.New(fixed, layoutOpts...)

	return m, nil
}

// ID returns the definition identifier.
func (m *Machine) ID() string { return m.table.ID() }

// Definition returns a copy of the machine definition.
func (m *Machine) Definition() domain.Definition { return m.table.Definition() }

// Input returns the input the tape was last loaded with.
func (m *Machine) Input() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// Step applies one transition; false means the machine is (now) halted.
func (m *Machine) Step(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.Step(ctx)
}

// StepBack undoes the last transition; false when there is nothing to undo.
func (m *Machine) StepBack(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.StepBack(ctx)
}

// Reset returns to the start state. The tape keeps what was written.
func (m *Machine) Reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exec.Reset(ctx)
}

// Restart loads a fresh tape with input and resets the executor.
func (m *Machine) Restart(ctx context.Context, input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = input
	m.exec.Load(ctx, tape.New(input, m.table.Blank()))
}

// Halted reports whether the machine reached its terminal status.
func (m *Machine) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.Halted()
}

// IsAccepting is true iff the machine halted in an accept state.
func (m *Machine) IsAccepting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.IsAccepting()
}

// CanStepBack reports whether StepBack would succeed.
func (m *Machine) CanStepBack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.CanStepBack()
}

// Snapshot returns the read-only view of the current configuration.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.Snapshot()
}

// TapeWindow returns width cells around center.
func (m *Machine) TapeWindow(center, width int) []view.Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	return view.TapeWindow(m.exec.Tape(), center, width)
}

// HeadWindow returns width cells centred on the head.
func (m *Machine) HeadWindow(width int) []view.Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	return view.HeadWindow(m.exec.Tape(), width)
}

// Checkpoint captures the configuration and the undo trace.
func (m *Machine) Checkpoint() (domain.Checkpoint, []domain.Checkpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.Checkpoint(), m.exec.Trace()
}

// Restore replaces the configuration and the undo trace.
func (m *Machine) Restore(cp domain.Checkpoint, trace []domain.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exec.Restore(cp, trace)
}

// Resume positions the machine on a saved configuration reached from input.
// Unlike Restart it fires no lifecycle hooks.
func (m *Machine) Resume(input string, cp domain.Checkpoint, trace []domain.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.exec.Restore(cp, trace); err != nil {
		return err
	}
	m.input = input
	return nil
}

// Model returns the diagram highlighted with the current state and the
// rule applied by the last step.
func (m *Machine) Model() diagram.Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.highlighted()
}

func (m *Machine) highlighted() diagram.Model {
	var active *domain.Rule
	if r, ok := m.exec.LastRule(); ok {
		active = &r
	}
	return m.model.Highlight(m.exec.State(), active)
}

// LayoutMode returns the positioning regime chosen at construction.
func (m *Machine) LayoutMode() layout.Mode { return m.layout.Mode() }

// Layout returns the node positions, running the simulation on first use.
func (m *Machine) Layout(ctx context.Context) (layout.Positions, error) {
	return m.layout.Positions(ctx, m.model)
}

// Diagram returns the renderable, highlighted diagram.
func (m *Machine) Diagram(ctx context.Context) (view.Diagram, error) {
	pos, err := m.layout.Positions(ctx, m.model)
	if err != nil {
		return view.Diagram{}, err
	}
	opts := []view.Option{view.WithRadius(m.radius), view.WithLogger(m.logger)}
	if m.forceCfg != nil {
		opts = append(opts, view.WithCanvas(m.forceCfg.Width, m.forceCfg.Height))
	}
	return view.Render(m.Model(), pos, opts...), nil
}

// WriteSVG renders the current diagram to w.
func (m *Machine) WriteSVG(ctx context.Context, w io.Writer) error {
	d, err := m.Diagram(ctx)
	if err != nil {
		return err
	}
	return view.WriteSVG(w, d)
}

// NewLoop returns a run loop driving this machine.
func (m *Machine) NewLoop(opts ...runner.Option) *runner.Loop {
	return runner.New(m, append([]runner.Option{runner.WithLogger(m.logger)}, opts...)...)
}

// Run steps the machine on the loop interval until it halts, ctx is
// cancelled or the step limit is reached.
func (m *Machine) Run(ctx context.Context, opts ...runner.Option) runner.Result {
	l := m.NewLoop(opts...)
	l.Start(ctx)
	return l.Wait()
}
