package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turingviz/pkg/domain"
)

// LoggingHooks logs every lifecycle event. Steps are logged at debug level,
// everything else at info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"machine", e.Machine,
				"rule", e.Rule.Label(),
				"from", e.Rule.From,
				"to", e.Rule.Action.Next,
				"head", e.Head,
				"steps", e.Steps,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.InfoContext(ctx, "halt",
				"machine", e.Machine,
				"state", e.State,
				"read", e.Read,
				"accepting", e.Accepting,
				"steps", e.Steps,
			)
		},
		OnUndo: func(ctx context.Context, e *domain.ControlEvent) {
			logger.InfoContext(ctx, "step_back", "machine", e.Machine, "state", e.State, "steps", e.Steps)
		},
		OnReset: func(ctx context.Context, e *domain.ControlEvent) {
			logger.InfoContext(ctx, "reset", "machine", e.Machine, "state", e.State)
		},
	}
}
