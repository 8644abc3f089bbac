package domain

import (
	"strings"
	"time"
)

// ExecutionStatus is the coarse control state of a machine.
type ExecutionStatus string

const (
	StatusRunning ExecutionStatus = "running" // A transition may still apply
	StatusHalted  ExecutionStatus = "halted"  // Terminal: no transition was defined
)

// TapeImage is the serialization of a tape: the contiguous span between the
// lowest and the highest stored cell (gaps filled with blank) plus the head.
type TapeImage struct {
	Origin  int      `json:"origin"`
	Symbols []Symbol `json:"symbols"`
	Head    int      `json:"head"`
	Blank   Symbol   `json:"blank"`
}

// String concatenates the stored span.
func (img TapeImage) String() string {
	var sb strings.Builder
	for _, s := range img.Symbols {
		sb.WriteString(string(s))
	}
	return sb.String()
}

// Read returns the symbol under the head.
func (img TapeImage) Read() Symbol {
	i := img.Head - img.Origin
	if i < 0 || i >= len(img.Symbols) {
		if img.Blank == "" {
			return DefaultBlank
		}
		return img.Blank
	}
	return img.Symbols[i]
}

// Checkpoint is an exact, restorable machine configuration.
// The undo trace is a stack of checkpoints.
type Checkpoint struct {
	State  string    `json:"state"`
	Halted bool      `json:"halted"`
	Steps  int       `json:"steps"`
	Tape   TapeImage `json:"tape"`
}

// Snapshot is the read-only view of a machine handed to renderers and clients.
type Snapshot struct {
	Machine   string          `json:"machine,omitempty"`
	State     string          `json:"state"`
	Status    ExecutionStatus `json:"status"`
	Halted    bool            `json:"halted"`
	Accepting bool            `json:"accepting"`
	Tape      string          `json:"tape"`
	Origin    int             `json:"origin"`
	Head      int             `json:"head"`
	Steps     int             `json:"steps"`
}

// Session is a persisted machine run, owned by exactly one caller at a time.
type Session struct {
	ID        string       `json:"id"`
	MachineID string       `json:"machine_id"`
	Input     string       `json:"input"`
	Current   Checkpoint   `json:"current"`
	Trace     []Checkpoint `json:"trace,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewSession creates a session positioned on a fresh checkpoint.
func NewSession(id, machineID, input string, current Checkpoint) *Session {
	return &Session{
		ID:        id,
		MachineID: machineID,
		Input:     input,
		Current:   current,
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy so stores can isolate their state from callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Current = s.Current.Clone()
	if s.Trace != nil {
		c.Trace = make([]Checkpoint, len(s.Trace))
		for i, cp := range s.Trace {
			c.Trace[i] = cp.Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of the checkpoint.
func (cp Checkpoint) Clone() Checkpoint {
	c := cp
	if cp.Tape.Symbols != nil {
		c.Tape.Symbols = append([]Symbol(nil), cp.Tape.Symbols...)
	}
	return c
}
