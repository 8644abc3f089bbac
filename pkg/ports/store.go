package ports

import (
	"context"

	"github.com/aretw0/turingviz/pkg/domain"
)

// SessionStore defines the interface for persisting sessions.
// This allows a machine run to be stopped on one request and resumed on another.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, s *domain.Session) error

	// Load retrieves the session with the given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes the session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
