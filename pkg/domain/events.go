package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep  EventType = "step"
	EventHalt  EventType = "halt"
	EventUndo  EventType = "undo"
	EventReset EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Machine   string    `json:"machine,omitempty"`
}

// StepEvent is emitted after a transition has been applied.
type StepEvent struct {
	EventBase
	Rule  Rule `json:"rule"`
	Head  int  `json:"head"`
	Steps int  `json:"steps"`
}

// HaltEvent is emitted once, when the machine finds no transition.
type HaltEvent struct {
	EventBase
	State     string `json:"state"`
	Read      Symbol `json:"read"`
	Accepting bool   `json:"accepting"`
	Steps     int    `json:"steps"`
}

// ControlEvent is emitted on step-back and reset.
type ControlEvent struct {
	EventBase
	State string `json:"state"`
	Steps int    `json:"steps"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStep  func(context.Context, *StepEvent)
	OnHalt  func(context.Context, *HaltEvent)
	OnUndo  func(context.Context, *ControlEvent)
	OnReset func(context.Context, *ControlEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:  chain(h.OnStep, other.OnStep),
		OnHalt:  chain(h.OnHalt, other.OnHalt),
		OnUndo:  chain(h.OnUndo, other.OnUndo),
		OnReset: chain(h.OnReset, other.OnReset),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
