package domain

// Defaults shared by the engine and its adapters.
const (
	// DefaultBlank is the blank symbol used when a definition does not declare one.
	DefaultBlank Symbol = "_"

	// DefaultWindowWidth is the number of tape cells rendered when the caller does not ask for a width.
	DefaultWindowWidth = 20
)
