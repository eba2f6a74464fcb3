package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/emergent.relations/internal/docstore"
)

func TestSeedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"User": [{"id": "u1", "team_id": "t1"}],
		"Team": [{"id": "t1", "name": "acme"}, {"name": "generated"}]
	}`), 0o600))

	seed, err := readSeed(path)
	require.NoError(t, err)

	store := docstore.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	written, err := seedStore(t.Context(), store, seed, log)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	teams, err := store.List(t.Context(), "Team", docstore.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	users, err := store.BatchReadByIDs(t.Context(), "User", []string{"u1"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "t1", users[0]["team_id"])
}

func TestReadSeedRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Team": {"id": "t1"}}`), 0o600))

	_, err := readSeed(path)
	assert.Error(t, err)
}
