package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store bundles the two persistence tiers over one SQLite database.
// Construction requires an already-migrated database, so a reachable Store
// is always initialized; Open is the one-stop path that guarantees it.
type Store struct {
	db      *sql.DB
	kv      *KVStore
	records *RecordStore
}

// NewStore creates a Store from an already-opened and migrated database.
// A database that never ran migrations yields ErrNotInitialized.
func NewStore(db *sql.DB) (*Store, error) {
	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil || applied == 0 {
		return nil, ErrNotInitialized
	}

	kv, err := newKVStore(db)
	if err != nil {
		return nil, fmt.Errorf("init kv tier: %w", err)
	}

	records, err := newRecordStore(db)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("init record tier: %w", err)
	}

	return &Store{db: db, kv: kv, records: records}, nil
}

// Open opens (creating directories as needed) the database at path, runs
// migrations, and returns a ready Store plus the underlying *sql.DB for
// the caller to close.
func Open(path string) (*Store, *sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// KV returns the key/value tier.
func (s *Store) KV() *KVStore { return s.kv }

// Records returns the record tier.
func (s *Store) Records() *RecordStore { return s.records }

// Stats returns aggregate statistics about the tracking database.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&stats.TotalRecords)
	if err != nil {
		return nil, storeErr("count records", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalRecords > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM history").Scan(&oldest, &newest)
		if err != nil {
			return nil, storeErr("record time range", err)
		}
		stats.OldestRecord = time.UnixMilli(oldest)
		stats.NewestRecord = time.UnixMilli(newest)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, COUNT(*) AS cnt, COALESCE(SUM(duration), 0) AS total
		FROM history GROUP BY domain ORDER BY total DESC LIMIT 10
	`)
	if err != nil {
		return nil, storeErr("top domains", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count, &dc.Time); err != nil {
			return nil, err
		}
		stats.TopDomains = append(stats.TopDomains, dc)
	}

	return stats, rows.Err()
}

// PurgeAll deletes all history records and all slots, then re-seeds the
// default block rules. Destructive; callers are expected to confirm first.
func (s *Store) PurgeAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("purge", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{"DELETE FROM history", "DELETE FROM slots"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storeErr("purge", err)
		}
	}

	if err := seedDefaultBlockRules(tx); err != nil {
		return storeErr("purge reseed", err)
	}

	return tx.Commit()
}

// Close releases the prepared statements of both tiers. The underlying
// *sql.DB is not closed; that is the caller's responsibility.
func (s *Store) Close() error {
	s.kv.Close()
	s.records.Close()
	return nil
}
