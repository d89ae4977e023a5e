package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/protrackr/internal/storage"
)

// seedAgedData writes one expired and one current day bucket plus matching
// history records. Default retention is 30 days.
func seedAgedData(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	oldDate := now.AddDate(0, 0, -45).Format("2006-01-02")
	newDate := now.Format("2006-01-02")
	summary := storage.SummaryMap{
		oldDate: {TotalTime: 5000, Domains: map[string]storage.DomainStat{}, Categories: map[string]int64{}},
		newDate: {TotalTime: 7000, Domains: map[string]storage.DomainStat{}, Categories: map[string]int64{}},
	}
	require.NoError(t, store.KV().Set(ctx, storage.KeyDailySummary, summary))

	oldRec := &storage.HistoryRecord{
		Timestamp: now.AddDate(0, 0, -45).UnixMilli(),
		URL:       "https://stale.example.com/",
		Domain:    "stale.example.com",
		Duration:  6000,
	}
	newRec := &storage.HistoryRecord{
		Timestamp: now.UnixMilli(),
		URL:       "https://fresh.example.com/",
		Domain:    "fresh.example.com",
		Duration:  6000,
	}
	require.NoError(t, store.Records().Append(ctx, oldRec))
	require.NoError(t, store.Records().Append(ctx, newRec))
}

func TestPrune_RemovesExpiredData(t *testing.T) {
	m, store := newTestCLIManager(t)
	seedAgedData(t, store)

	cmd := &PruneCommand{globals: &GlobalFlags{}, manager: m}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "Removed 1 day buckets and 1 history records")

	records, err := m.ReadHistory(context.Background(), 0, time.Now().UnixMilli())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fresh.example.com", records[0].Domain)

	summary, err := m.ReadSummaries(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary, 1)
}

func TestPrune_DryRunDeletesNothing(t *testing.T) {
	m, store := newTestCLIManager(t)
	seedAgedData(t, store)

	cmd := &PruneCommand{globals: &GlobalFlags{}, manager: m, DryRun: true}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "Would remove 1 day buckets and 1 history records")

	records, err := m.ReadHistory(context.Background(), 0, time.Now().UnixMilli())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	summary, err := m.ReadSummaries(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary, 2)
}

func TestPrune_EmptyStore(t *testing.T) {
	m, _ := newTestCLIManager(t)

	cmd := &PruneCommand{globals: &GlobalFlags{}, manager: m}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "Removed 0 day buckets and 0 history records")
}
