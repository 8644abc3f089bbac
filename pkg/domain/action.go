package domain

import "fmt"

// Symbol is a single tape symbol. The blank symbol is never stored on a tape.
type Symbol string

// Move is a head movement.
type Move string

// Standard head moves.
const (
	MoveLeft  Move = "L"
	MoveRight Move = "R"
)

// Valid reports whether m is one of the supported head moves.
func (m Move) Valid() bool {
	return m == MoveLeft || m == MoveRight
}

// Delta returns the head offset for the move (0 for unknown moves).
func (m Move) Delta() int {
	switch m {
	case MoveLeft:
		return -1
	case MoveRight:
		return 1
	default:
		return 0
	}
}

// Action is what the machine does when a (state, symbol) pair matches.
type Action struct {
	Write Symbol `json:"write" yaml:"write" mapstructure:"write"`
	Move  Move   `json:"move" yaml:"move" mapstructure:"move"`
	Next  string `json:"next" yaml:"next" mapstructure:"next"`
}

// Rule is a flattened transition table entry.
type Rule struct {
	From   string `json:"from"`
	Read   Symbol `json:"read"`
	Action Action `json:"action"`
}

// Label renders the rule the way state diagrams print it: "read/write,move".
func (r Rule) Label() string {
	return fmt.Sprintf("%s/%s,%s", r.Read, r.Action.Write, r.Action.Move)
}
