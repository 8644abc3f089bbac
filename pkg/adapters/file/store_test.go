package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SessionStore = (*Store)(nil)

func TestStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewStore(t.TempDir()))
}

func TestStore_MissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "not", "yet"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.Save(context.Background(), domain.NewSession("s1", "palindrome", "ab", domain.Checkpoint{State: "start"})))
	ids, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	s := domain.NewSession("s1", "palindrome", "ab", domain.Checkpoint{State: "start"})
	require.NoError(t, store.Save(ctx, s))
	s.Current.Steps = 3
	require.NoError(t, store.Save(ctx, s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Current.Steps)
}

func TestStore_InvalidIDs(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		t.Run(id, func(t *testing.T) {
			_, err := store.Load(ctx, id)
			assert.ErrorIs(t, err, ErrInvalidSessionID)
			assert.ErrorIs(t, store.Delete(ctx, id), ErrInvalidSessionID)
			assert.ErrorIs(t, store.Save(ctx, &domain.Session{ID: id}), ErrInvalidSessionID)
		})
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))

	_, err := NewStore(dir).Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewStore_Default(t *testing.T) {
	assert.Equal(t, filepath.FromSlash(DefaultSessionDir), NewStore("").BasePath)
}
