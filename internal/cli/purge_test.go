package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/protrackr/internal/storage"
	"github.com/runnerr0/protrackr/internal/tracking"
)

func TestPurge_RequiresAllFlag(t *testing.T) {
	cmd := &PurgeCommand{globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestPurge_ForceDeletesEverything(t *testing.T) {
	m, _ := newTestCLIManager(t)
	ctx := context.Background()

	require.NoError(t, m.RecordCompletedSession(ctx, tracking.Session{
		URL: "https://github.com/repo", Duration: 9000,
	}))

	cmd := &PurgeCommand{globals: &GlobalFlags{}, manager: m, All: true, Force: true}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "Purged 1 history records")

	records, err := m.ReadHistory(ctx, 0, time.Now().UnixMilli())
	require.NoError(t, err)
	assert.Empty(t, records)

	summary, err := m.ReadSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestPurge_ReseedsBlockRules(t *testing.T) {
	m, store := newTestCLIManager(t)
	ctx := context.Background()

	cmd := &PurgeCommand{globals: &GlobalFlags{}, manager: m, All: true, Force: true}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	var rules storage.BlockRules
	found, err := store.KV().Get(ctx, storage.KeyBlockRules, &rules)
	require.NoError(t, err)
	require.True(t, found, "default block rules should be re-seeded after purge")
	assert.NotEmpty(t, rules.Domains)
}
