package runtime

import "github.com/aretw0/turingviz/pkg/domain"

// Trace is the undo stack of checkpoints. A positive limit bounds its depth;
// when full, the oldest checkpoint is dropped.
type Trace struct {
	items []domain.Checkpoint
	limit int
}

// NewTrace creates an empty trace. limit <= 0 means unbounded.
func NewTrace(limit int) *Trace {
	return &Trace{limit: limit}
}

// Push records a checkpoint.
func (t *Trace) Push(cp domain.Checkpoint) {
	if t.limit > 0 && len(t.items) >= t.limit {
		copy(t.items, t.items[1:])
		t.items = t.items[:len(t.items)-1]
	}
	t.items = append(t.items, cp)
}

// Pop removes and returns the latest checkpoint.
func (t *Trace) Pop() (domain.Checkpoint, bool) {
	if len(t.items) == 0 {
		return domain.Checkpoint{}, false
	}
	last := t.items[len(t.items)-1]
	t.items = t.items[:len(t.items)-1]
	return last, true
}

// Peek returns the latest checkpoint without removing it.
func (t *Trace) Peek() (domain.Checkpoint, bool) {
	if len(t.items) == 0 {
		return domain.Checkpoint{}, false
	}
	return t.items[len(t.items)-1], true
}

// Len returns the number of recorded checkpoints.
func (t *Trace) Len() int { return len(t.items) }

// Limit returns the configured depth limit.
func (t *Trace) Limit() int { return t.limit }

// Clear drops every checkpoint.
func (t *Trace) Clear() { t.items = nil }

// Checkpoints returns a deep copy of the stack, oldest first.
func (t *Trace) Checkpoints() []domain.Checkpoint {
	out := make([]domain.Checkpoint, len(t.items))
	for i, cp := range t.items {
		out[i] = cp.Clone()
	}
	return out
}

// Load replaces the stack, keeping only the newest entries that fit the limit.
func (t *Trace) Load(cps []domain.Checkpoint) {
	if t.limit > 0 && len(cps) > t.limit {
		cps = cps[len(cps)-t.limit:]
	}
	t.items = make([]domain.Checkpoint, len(cps))
	for i, cp := range cps {
		t.items[i] = cp.Clone()
	}
}
