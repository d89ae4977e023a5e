package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// schemaObjects returns the names of all tables or indexes in the database.
func schemaObjects(t *testing.T, db *sql.DB, kind string) map[string]bool {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = ?", kind)
	require.NoError(t, err)
	defer rows.Close()

	names := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names[name] = true
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrations_CreateSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	tables := schemaObjects(t, db, "table")
	assert.True(t, tables["slots"])
	assert.True(t, tables["history"])
	assert.True(t, tables["schema_migrations"])

	indexes := schemaObjects(t, db, "index")
	assert.True(t, indexes["idx_history_domain"])
	assert.True(t, indexes["idx_history_ts_domain"])
}

func TestMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, NewMigrationRunner(db).Run())
	require.NoError(t, NewMigrationRunner(db).Run())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count, "each migration is recorded exactly once")
}

func TestMigrations_RecordsVersionName(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var name string
	require.NoError(t, db.QueryRow(
		"SELECT name FROM schema_migrations WHERE version = 1",
	).Scan(&name))
	assert.Equal(t, "initial_schema", name)
}
