package domain

import "errors"

// Construction errors. They are returned (wrapped and joined) when a
// definition cannot be turned into a transition table.
var (
	// ErrInvalidTransitionTarget is returned when a transition points to an undeclared state.
	ErrInvalidTransitionTarget = errors.New("invalid transition target")

	// ErrUnknownState is returned when transitions are declared for an undeclared state.
	ErrUnknownState = errors.New("unknown state")

	// ErrUnknownStartState is returned when the start state is not declared.
	ErrUnknownStartState = errors.New("unknown start state")

	// ErrUnknownAcceptState is returned when an accept state is not declared.
	ErrUnknownAcceptState = errors.New("unknown accept state")

	// ErrInvalidMove is returned when an action moves neither left nor right.
	ErrInvalidMove = errors.New("invalid head move")

	// ErrUnknownSymbol is returned when a rule reads or writes a symbol outside the alphabet.
	ErrUnknownSymbol = errors.New("symbol not in alphabet")

	// ErrDuplicateState is returned when a state is declared twice.
	ErrDuplicateState = errors.New("duplicate state")

	// ErrEmptyDefinition is returned when a definition declares no states.
	ErrEmptyDefinition = errors.New("definition declares no states")
)

// ErrMissingLayoutNode signals that an edge references a node without coordinates.
// Renderers degrade to "no path" for that edge instead of failing.
var ErrMissingLayoutNode = errors.New("edge endpoint has no layout position")

// ErrMachineNotFound is returned when a definition ID cannot be found by a loader.
var ErrMachineNotFound = errors.New("machine not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")
