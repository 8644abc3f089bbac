package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	checkpoint := func(state string, steps int) domain.Checkpoint {
		return domain.Checkpoint{
			State: state,
			Steps: steps,
			Tape: domain.TapeImage{
				Origin:  -1,
				Symbols: []domain.Symbol{"X", "_", "b"},
				Head:    steps - 1,
				Blank:   "_",
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a session with a trace
		s := domain.NewSession(sessionID, "palindrome", "abba", checkpoint("haveA", 2))
		s.Trace = []domain.Checkpoint{checkpoint("start", 0), checkpoint("start", 1)}

		// 2. Save
		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.MachineID, loaded.MachineID)
		assert.Equal(t, s.Input, loaded.Input)
		assert.Equal(t, s.Current, loaded.Current, "checkpoints must survive exactly")
		assert.Equal(t, s.Trace, loaded.Trace)
	})

	t.Run("Isolation", func(t *testing.T) {
		s := domain.NewSession(sessionID+"-iso", "palindrome", "", checkpoint("start", 0))
		require.NoError(t, store.Save(ctx, s))
		defer func() { _ = store.Delete(ctx, s.ID) }()

		s.Current.Tape.Symbols[0] = "Z"

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Symbol("X"), loaded.Current.Tape.Symbols[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "palindrome", "", checkpoint("start", 0))))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "palindrome", "", checkpoint("start", 0)))
		_ = store.Save(ctx, domain.NewSession(id2, "palindrome", "", checkpoint("start", 0)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunMachineLoaderContract verifies a MachineLoader against the IDs it is
// expected to serve. Every served definition must be self-consistent.
func RunMachineLoaderContract(t *testing.T, loader MachineLoader, wantIDs []string) {
	t.Helper()
	ctx := context.Background()

	// 1. Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for _, id := range wantIDs {
			def, err := loader.Get(ctx, id)
			require.NoError(t, err, "unexpected error getting machine %s", id)
			assert.Equal(t, id, def.ID)
			assert.NotEmpty(t, def.States, "machine %s declares no states", id)
		}
	})

	// 2. Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := loader.Get(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	// 3. List
	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, wantIDs, ids, fmt.Sprintf("listed %v", ids))
	})
}
