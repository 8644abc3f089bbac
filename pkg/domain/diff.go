package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	State     *string          `json:"state,omitempty"`
	Status    *ExecutionStatus `json:"status,omitempty"`
	Accepting *bool            `json:"accepting,omitempty"`
	Tape      *string          `json:"tape,omitempty"`
	Origin    *int             `json:"origin,omitempty"`
	Head      *int             `json:"head,omitempty"`
	Steps     *int             `json:"steps,omitempty"`
}

// Diff calculates the difference between two snapshots of the same session.
// If old is nil, it returns a diff representing the entire new snapshot (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, old, new *Snapshot) *SnapshotDiff {
	if new == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: sessionID}

	if old == nil || old.State != new.State {
		diff.State = &new.State
	}
	if old == nil || old.Status != new.Status {
		diff.Status = &new.Status
	}
	if old == nil || old.Accepting != new.Accepting {
		diff.Accepting = &new.Accepting
	}
	if old == nil || old.Tape != new.Tape {
		diff.Tape = &new.Tape
	}
	if old == nil || old.Origin != new.Origin {
		diff.Origin = &new.Origin
	}
	if old == nil || old.Head != new.Head {
		diff.Head = &new.Head
	}
	if old == nil || old.Steps != new.Steps {
		diff.Steps = &new.Steps
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Status == nil &&
		d.Accepting == nil &&
		d.Tape == nil &&
		d.Origin == nil &&
		d.Head == nil &&
		d.Steps == nil
}
