package storage

import "database/sql"

// migrateV001 creates the initial ProTrackr schema: the slot table backing
// the key/value tier and the append-only history table backing the record
// tier. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		// One row per StorageKey slot. Values are whole JSON documents,
		// fully overwritten on every set.
		`CREATE TABLE IF NOT EXISTS slots (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Completed browsing sessions, keyed by write-time epoch
		// milliseconds. Append-only; rows leave only via retention.
		`CREATE TABLE IF NOT EXISTS history (
			ts         INTEGER PRIMARY KEY,
			url        TEXT NOT NULL,
			domain     TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL DEFAULT '',
			start_time INTEGER NOT NULL,
			duration   INTEGER NOT NULL DEFAULT 0
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_history_domain    ON history(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts_domain ON history(ts, domain)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	// Seed the default block rules slot so privacy-sensitive domains are
	// never tracked out of the box.
	return seedDefaultBlockRules(tx)
}

// seedDefaultBlockRules writes the curated denylist into the block_rules
// slot. Uses INSERT OR IGNORE so re-running (or a user-edited slot) is safe.
func seedDefaultBlockRules(tx *sql.Tx) error {
	// Kept as a literal JSON document: this is exactly what the slot holds.
	const defaultRules = `{
		"domains": [
			"chase.com", "bankofamerica.com", "wellsfargo.com",
			"paypal.com", "venmo.com",
			"1password.com", "bitwarden.com", "lastpass.com",
			"accounts.google.com", "login.microsoftonline.com",
			"irs.gov", "turbotax.intuit.com"
		],
		"patterns": [".*\\.xxx$"]
	}`

	_, err := tx.Exec(
		`INSERT OR IGNORE INTO slots (key, value) VALUES (?, ?)`,
		string(KeyBlockRules), defaultRules,
	)
	return err
}
