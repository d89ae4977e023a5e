package retention

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/protrackr/internal/storage"
)

func newTestSweeper(t *testing.T, days int) (*Sweeper, *storage.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewSweeper(store.KV(), store.Records(), days), store
}

// Summaries spanning 40 days back: after a sweep, exactly the buckets dated
// strictly before the 30-day cutoff are gone, the rest are untouched. The
// bucket sitting exactly on the cutoff is retained.
func TestSweep_RetentionBoundary(t *testing.T) {
	sweeper, store := newTestSweeper(t, 30)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	summary := storage.SummaryMap{}
	for back := 0; back < 40; back++ {
		date := now.AddDate(0, 0, -back).Format("2006-01-02")
		b := storage.NewDayBucket()
		b.TotalTime = int64(back + 1)
		summary[date] = b
	}
	require.NoError(t, store.KV().Set(ctx, storage.KeyDailySummary, summary))

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	// back 31..39 are strictly before the cutoff; back 30 equals it.
	assert.Equal(t, 9, res.BucketsRemoved)

	var after storage.SummaryMap
	found, err := store.KV().Get(ctx, storage.KeyDailySummary, &after)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, after, 31)

	cutoff := now.AddDate(0, 0, -30)
	assert.Contains(t, after, cutoff.Format("2006-01-02"), "cutoff day itself is retained")
	for date, bucket := range after {
		d, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		assert.False(t, d.Before(cutoff), "bucket %s should have been pruned", date)
		assert.NotZero(t, bucket.TotalTime, "retained buckets are unchanged")
	}
}

func TestSweep_DeletesExpiredRecords(t *testing.T) {
	sweeper, store := newTestSweeper(t, 30)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	old := &storage.HistoryRecord{
		URL:       "https://old.example",
		Timestamp: now.AddDate(0, 0, -45).UnixMilli(),
	}
	fresh := &storage.HistoryRecord{
		URL:       "https://fresh.example",
		Timestamp: now.AddDate(0, 0, -5).UnixMilli(),
	}
	require.NoError(t, store.Records().Append(ctx, old))
	require.NoError(t, store.Records().Append(ctx, fresh))

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RecordsRemoved)

	left, err := store.Records().QueryRange(ctx, 0, now.UnixMilli())
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "https://fresh.example", left[0].URL)
}

func TestSweep_LeavesUnparseableDateKeys(t *testing.T) {
	sweeper, store := newTestSweeper(t, 30)
	ctx := context.Background()

	summary := storage.SummaryMap{"not-a-date": storage.NewDayBucket()}
	require.NoError(t, store.KV().Set(ctx, storage.KeyDailySummary, summary))

	res, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.BucketsRemoved)

	var after storage.SummaryMap
	_, err = store.KV().Get(ctx, storage.KeyDailySummary, &after)
	require.NoError(t, err)
	assert.Contains(t, after, "not-a-date")
}

func TestSweep_EmptyStore(t *testing.T) {
	sweeper, _ := newTestSweeper(t, 30)

	res, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.BucketsRemoved)
	assert.Zero(t, res.RecordsRemoved)
}

func TestPreview_DoesNotDelete(t *testing.T) {
	sweeper, store := newTestSweeper(t, 30)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	summary := storage.SummaryMap{
		now.AddDate(0, 0, -40).Format("2006-01-02"): storage.NewDayBucket(),
		now.Format("2006-01-02"):                    storage.NewDayBucket(),
	}
	require.NoError(t, store.KV().Set(ctx, storage.KeyDailySummary, summary))
	require.NoError(t, store.Records().Append(ctx, &storage.HistoryRecord{
		URL: "https://old.example", Timestamp: now.AddDate(0, 0, -35).UnixMilli(),
	}))

	res, err := sweeper.Preview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BucketsRemoved)
	assert.Equal(t, int64(1), res.RecordsRemoved)

	// Nothing actually removed.
	var after storage.SummaryMap
	_, err = store.KV().Get(ctx, storage.KeyDailySummary, &after)
	require.NoError(t, err)
	assert.Len(t, after, 2)

	left, err := store.Records().QueryRange(ctx, 0, now.UnixMilli())
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
