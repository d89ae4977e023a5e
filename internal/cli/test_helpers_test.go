package cli

import (
	"database/sql"
	"io"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/logging"
	"github.com/runnerr0/protrackr/internal/storage"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// newTestCLIManager builds an initialized manager over an in-memory store
// for command tests, and exposes the store for direct seeding.
func newTestCLIManager(t *testing.T) (*tracking.Manager, *storage.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := tracking.NewManagerWithStore(config.DefaultConfig(), logging.Discard(), store)
	require.NoError(t, m.Initialize())
	return m, store
}

// captureOutput runs fn with stdout redirected and returns what it printed.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}
