package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turingviz/internal/logging"
)

// Stepper is what the loop drives.
type Stepper interface {
	Step(ctx context.Context) bool
	Halted() bool
	IsAccepting() bool
}

// Reason tells why a loop exited.
type Reason string

const (
	ReasonHalted    Reason = "halted"
	ReasonStopped   Reason = "stopped"
	ReasonCancelled Reason = "cancelled"
	ReasonStepLimit Reason = "step_limit"
)

// Result summarises a finished loop.
type Result struct {
	Steps     int    `json:"steps"`
	Halted    bool   `json:"halted"`
	Accepting bool   `json:"accepting"`
	Reason    Reason `json:"reason"`
}

// Tick is handed to the OnTick callback after each step attempt.
type Tick struct {
	Steps    int
	Advanced bool
}

// Loop is a cancellable repeating task. A Loop may be started again after
// it has exited.
type Loop struct {
	stepper  Stepper
	interval time.Duration
	maxSteps int
	onTick   func(context.Context, Tick)
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	result  Result
}

// New creates a loop driving s.
func New(s Stepper, opts ...Option) *Loop {
	l := &Loop{
		stepper:  s,
		interval: DefaultInterval,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the loop. It returns false, doing nothing, when the loop
// is already running.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	l.running = true
	l.stopped = false
	l.cancel = cancel
	l.done = make(chan struct{})
	l.result = Result{}

	go l.run(ctx, l.done)
	return true
}

// Stop requests the loop to exit before its next tick.
// A tick in progress is never interrupted.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.stopped = true
	l.cancel()
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Wait blocks until the loop exits and returns its result.
func (l *Loop) Wait() Result {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	if done != nil {
		<-done
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var res Result
	defer func() {
		res.Halted = l.stepper.Halted()
		res.Accepting = l.stepper.IsAccepting()

		l.mu.Lock()
		if res.Reason == ReasonCancelled && l.stopped {
			res.Reason = ReasonStopped
		}
		l.result = res
		l.running = false
		l.cancel()
		l.mu.Unlock()

		l.logger.Debug("run loop exited", "reason", res.Reason, "steps", res.Steps)
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			res.Reason = ReasonCancelled
			return
		case <-ticker.C:
		}

		// The ticker and the cancellation may be ready together.
		if ctx.Err() != nil {
			res.Reason = ReasonCancelled
			return
		}

		advanced := l.stepper.Step(ctx)
		if advanced {
			res.Steps++
		}
		if l.onTick != nil {
			l.onTick(ctx, Tick{Steps: res.Steps, Advanced: advanced})
		}

		if !advanced {
			res.Reason = ReasonHalted
			return
		}
		if l.maxSteps > 0 && res.Steps >= l.maxSteps {
			res.Reason = ReasonStepLimit
			return
		}
	}
}

// Run drives s until it halts, ctx is cancelled or the step limit is reached.
func Run(ctx context.Context, s Stepper, opts ...Option) Result {
	l := New(s, opts...)
	l.Start(ctx)
	return l.Wait()
}
