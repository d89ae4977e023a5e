package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordStore is the record tier: an append-only log of completed sessions
// keyed by write-time epoch milliseconds. Each call runs in its own
// implicit transaction; there are no cross-call guarantees.
type RecordStore struct {
	db     *sql.DB
	insert *sql.Stmt
	scan   *sql.Stmt
	prune  *sql.Stmt

	now func() time.Time
}

// newRecordStore prepares statements against an already-migrated database.
func newRecordStore(db *sql.DB) (*RecordStore, error) {
	r := &RecordStore{db: db, now: time.Now}

	var err error
	r.insert, err = db.Prepare(`
		INSERT INTO history (ts, url, domain, title, start_time, duration)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert history: %w", err)
	}

	r.scan, err = db.Prepare(`
		SELECT ts, url, domain, title, start_time, duration
		FROM history WHERE ts BETWEEN ? AND ?
		ORDER BY ts ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare scan history: %w", err)
	}

	r.prune, err = db.Prepare(`DELETE FROM history WHERE ts < ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare prune history: %w", err)
	}

	return r, nil
}

// Append persists a record, assigning the current wall clock in epoch ms as
// its primary key when rec.Timestamp is zero. Two appends landing in the
// same millisecond violate the primary key and surface as a StoreError;
// this is a known, rare edge and is deliberately not masked.
func (r *RecordStore) Append(ctx context.Context, rec *HistoryRecord) error {
	if rec.URL == "" {
		return fmt.Errorf("%w: record has no URL", ErrMalformedInput)
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = r.now().UnixMilli()
	}

	_, err := r.insert.ExecContext(ctx,
		rec.Timestamp, rec.URL, rec.Domain, rec.Title, rec.StartTime, rec.Duration,
	)
	if err != nil {
		return storeErr("append history", err)
	}
	return nil
}

// QueryRange returns all records with startTime <= ts <= endTime in
// ascending timestamp order. No matches yields an empty slice, not an error.
func (r *RecordStore) QueryRange(ctx context.Context, startTime, endTime int64) ([]HistoryRecord, error) {
	rows, err := r.scan.QueryContext(ctx, startTime, endTime)
	if err != nil {
		return nil, storeErr("query history", err)
	}
	defer rows.Close()

	records := []HistoryRecord{}
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(
			&rec.Timestamp, &rec.URL, &rec.Domain, &rec.Title,
			&rec.StartTime, &rec.Duration,
		); err != nil {
			return nil, storeErr("scan history", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountUpTo reports how many records have ts strictly below bound without
// loading them. Used by retention previews.
func (r *RecordStore) CountUpTo(ctx context.Context, bound int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM history WHERE ts < ?", bound,
	).Scan(&n)
	if err != nil {
		return 0, storeErr("count history", err)
	}
	return n, nil
}

// DeleteUpTo removes every record with ts strictly below bound and reports
// how many rows were deleted. Used only by retention.
func (r *RecordStore) DeleteUpTo(ctx context.Context, bound int64) (int64, error) {
	res, err := r.prune.ExecContext(ctx, bound)
	if err != nil {
		return 0, storeErr("prune history", err)
	}
	return res.RowsAffected()
}

// Close releases the prepared statements. The underlying *sql.DB is not
// closed; that is the caller's responsibility.
func (r *RecordStore) Close() error {
	for _, stmt := range []*sql.Stmt{r.insert, r.scan, r.prune} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
