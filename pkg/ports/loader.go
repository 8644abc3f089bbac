package ports

import (
	"context"

	"github.com/aretw0/turingviz/pkg/domain"
)

// MachineLoader defines how definitions are retrieved.
// Definitions are read-only configuration; loaders never write them.
type MachineLoader interface {
	// Get returns the definition with the given ID.
	// It returns an error wrapping domain.ErrMachineNotFound when the ID is unknown.
	Get(ctx context.Context, id string) (domain.Definition, error)

	// List returns the available definition IDs in a deterministic order.
	List(ctx context.Context) ([]string, error)
}
