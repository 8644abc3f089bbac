package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/tape"
)

// Executor applies a transition table to a tape.
// It is not safe for concurrent use; the turingviz.Machine facade serialises access.
type Executor struct {
	table  *Table
	tape   *tape.Tape
	state  string
	halted bool
	steps  int
	last   *domain.Rule
	trace  *Trace
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithTrace enables step-back recording. limit <= 0 keeps every checkpoint.
func WithTrace(limit int) Option {
	return func(e *Executor) {
		e.trace = NewTrace(limit)
	}
}

// NewExecutor creates an executor positioned on the start state of table.
func NewExecutor(table *Table, t *tape.Tape, opts ...Option) *Executor {
	if t == nil {
		t = tape.New("", table.Blank())
	}
	e := &Executor{
		table:  table,
		tape:   t,
		state:  table.Start(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step applies one transition. It returns false without effect when the
// machine is already halted, and false after halting when no transition
// matches the current (state, symbol) pair.
func (e *Executor) Step(ctx context.Context) bool {
	if e.halted {
		return false
	}

	// 1. Lookup
	read := e.tape.Read()
	act, ok := e.table.Lookup(e.state, read)
	if !ok {
		e.halted = true
		accepting := e.IsAccepting()
		e.logger.Debug("machine halted",
			"machine", e.table.ID(),
			"state", e.state,
			"read", read,
			"accepting", accepting,
			"steps", e.steps)
		if e.hooks.OnHalt != nil {
			e.hooks.OnHalt(ctx, &domain.HaltEvent{
				EventBase: e.event(domain.EventHalt),
				State:     e.state,
				Read:      read,
				Accepting: accepting,
				Steps:     e.steps,
			})
		}
		return false
	}

	// 2. Record the configuration we are leaving
	if e.trace != nil {
		e.trace.Push(e.Checkpoint())
	}

	// 3. Apply
	rule := domain.Rule{From: e.state, Read: read, Action: act}
	e.tape.Write(act.Write)
	e.tape.Move(act.Move)
	e.state = act.Next
	e.steps++
	e.last = &rule

	if e.hooks.OnStep != nil {
		e.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: e.event(domain.EventStep),
			Rule:      rule,
			Head:      e.tape.Head(),
			Steps:     e.steps,
		})
	}
	return true
}

// StepBack restores the configuration preceding the last applied transition.
// LastRule then reports the transition that led to the restored configuration.
// It returns false, with no effect, when the trace is empty or disabled.
func (e *Executor) StepBack(ctx context.Context) bool {
	if e.trace == nil {
		return false
	}
	cp, ok := e.trace.Pop()
	if !ok {
		return false
	}
	e.apply(cp)
	e.last = nil
	if prev, ok := e.trace.Peek(); ok {
		e.last = e.appliedRule(prev, cp)
	}

	if e.hooks.OnUndo != nil {
		e.hooks.OnUndo(ctx, &domain.ControlEvent{
			EventBase: e.event(domain.EventUndo),
			State:     e.state,
			Steps:     e.steps,
		})
	}
	return true
}

// Reset returns to the start state and clears the halted flag and the trace.
// The tape is kept as it is; use a fresh tape to start over from an input.
func (e *Executor) Reset(ctx context.Context) {
	e.state = e.table.Start()
	e.halted = false
	e.steps = 0
	e.last = nil
	if e.trace != nil {
		e.trace.Clear()
	}

	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.ControlEvent{
			EventBase: e.event(domain.EventReset),
			State:     e.state,
		})
	}
}

// Load replaces the tape and resets the executor onto it.
func (e *Executor) Load(ctx context.Context, t *tape.Tape) {
	e.tape = t
	e.Reset(ctx)
}

// Checkpoint captures the current configuration.
func (e *Executor) Checkpoint() domain.Checkpoint {
	return domain.Checkpoint{
		State:  e.state,
		Halted: e.halted,
		Steps:  e.steps,
		Tape:   e.tape.Image(),
	}
}

// Restore replaces the configuration with cp and, when tracing is enabled,
// the undo stack with trace.
func (e *Executor) Restore(cp domain.Checkpoint, trace []domain.Checkpoint) error {
	if !e.table.HasState(cp.State) {
		return fmt.Errorf("restore checkpoint: state %q: %w", cp.State, domain.ErrUnknownState)
	}
	for i, t := range trace {
		if !e.table.HasState(t.State) {
			return fmt.Errorf("restore trace entry %d: state %q: %w", i, t.State, domain.ErrUnknownState)
		}
	}
	e.apply(cp)
	e.last = nil
	if len(trace) > 0 {
		e.last = e.appliedRule(trace[len(trace)-1], cp)
	}
	if e.trace != nil {
		e.trace.Load(trace)
	}
	return nil
}

// appliedRule recovers the rule that took prev to cp, or nil when cp is not
// the direct successor of prev.
func (e *Executor) appliedRule(prev, cp domain.Checkpoint) *domain.Rule {
	if cp.Steps != prev.Steps+1 {
		return nil
	}
	read := prev.Tape.Read()
	act, ok := e.table.Lookup(prev.State, read)
	if !ok || act.Next != cp.State {
		return nil
	}
	return &domain.Rule{From: prev.State, Read: read, Action: act}
}

func (e *Executor) apply(cp domain.Checkpoint) {
	e.tape.Restore(cp.Tape)
	e.state = cp.State
	e.halted = cp.Halted
	e.steps = cp.Steps
}

// Trace returns a copy of the undo stack, oldest first (nil when disabled).
func (e *Executor) Trace() []domain.Checkpoint {
	if e.trace == nil {
		return nil
	}
	return e.trace.Checkpoints()
}

// CanStepBack reports whether StepBack would succeed.
func (e *Executor) CanStepBack() bool {
	return e.trace != nil && e.trace.Len() > 0
}

// State returns the current state.
func (e *Executor) State() string { return e.state }

// Halted reports whether the machine reached the terminal status.
func (e *Executor) Halted() bool { return e.halted }

// Steps returns the number of transitions applied since the last reset.
func (e *Executor) Steps() int { return e.steps }

// Tape returns the tape the executor writes to.
func (e *Executor) Tape() *tape.Tape { return e.tape }

// Table returns the transition table.
func (e *Executor) Table() *Table { return e.table }

// IsAccepting is true iff the machine is halted in an accept state.
func (e *Executor) IsAccepting() bool {
	return e.halted && e.table.Accepting(e.state)
}

// Status returns the coarse execution status.
func (e *Executor) Status() domain.ExecutionStatus {
	if e.halted {
		return domain.StatusHalted
	}
	return domain.StatusRunning
}

// LastRule returns the rule applied by the most recent successful step.
func (e *Executor) LastRule() (domain.Rule, bool) {
	if e.last == nil {
		return domain.Rule{}, false
	}
	return *e.last, true
}

// Snapshot returns a read-only view of the configuration.
func (e *Executor) Snapshot() domain.Snapshot {
	img := e.tape.Image()
	return domain.Snapshot{
		Machine:   e.table.ID(),
		State:     e.state,
		Status:    e.Status(),
		Halted:    e.halted,
		Accepting: e.IsAccepting(),
		Tape:      img.String(),
		Origin:    img.Origin,
		Head:      img.Head,
		Steps:     e.steps,
	}
}

func (e *Executor) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		Machine:   e.table.ID(),
	}
}
