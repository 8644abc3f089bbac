package runner

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is the pause between two steps.
const DefaultInterval = 500 * time.Millisecond

// Option defines a functional option for configuring the Loop.
type Option func(*Loop)

// WithInterval sets the tick interval. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithMaxSteps stops the loop after n applied steps (0 means no limit).
func WithMaxSteps(n int) Option {
	return func(l *Loop) {
		l.maxSteps = n
	}
}

// WithOnTick registers the per-tick callback.
func WithOnTick(fn func(context.Context, Tick)) Option {
	return func(l *Loop) {
		l.onTick = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}
