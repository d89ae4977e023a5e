package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/protrackr/internal/tracking"
)

func seedSessions(t *testing.T, m *tracking.Manager) {
	t.Helper()
	ctx := context.Background()
	sessions := []tracking.Session{
		{URL: "https://github.com/repo", Title: "Repo", Duration: 9000},
		{URL: "https://github.com/other", Title: "Other", Duration: 3000},
		{URL: "https://stackoverflow.com/q/1", Title: "Question", Duration: 6000},
		{URL: "https://pkg.go.dev/fmt", Title: "fmt", Duration: 2000},
	}
	for _, s := range sessions {
		require.NoError(t, m.RecordCompletedSession(ctx, s))
	}
}

func TestReport_EmptyDay(t *testing.T) {
	m, _ := newTestCLIManager(t)

	cmd := &ReportCommand{globals: &GlobalFlags{}, manager: m, Top: 5}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "Total time:")
	assert.Contains(t, output, "00:00:00")
	assert.Contains(t, output, "No activity recorded.")
}

func TestReport_TodayTotalsAndTopSites(t *testing.T) {
	m, _ := newTestCLIManager(t)
	seedSessions(t, m)

	cmd := &ReportCommand{globals: &GlobalFlags{}, manager: m, Top: 5}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	// 9000+3000+6000+2000 = 20000ms = 20s
	assert.Contains(t, output, "00:00:20")
	assert.Contains(t, output, "Top Sites:")

	// github.com (12s) sorts before stackoverflow.com (6s) before pkg.go.dev (2s)
	githubIdx := strings.Index(output, "github.com")
	soIdx := strings.Index(output, "stackoverflow.com")
	pkgIdx := strings.Index(output, "pkg.go.dev")
	assert.Greater(t, githubIdx, 0)
	assert.Less(t, githubIdx, soIdx)
	assert.Less(t, soIdx, pkgIdx)
}

func TestReport_TopLimitsSiteCount(t *testing.T) {
	m, _ := newTestCLIManager(t)
	seedSessions(t, m)

	cmd := &ReportCommand{globals: &GlobalFlags{}, manager: m, Top: 1}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	assert.Contains(t, output, "github.com")
	assert.NotContains(t, output, "stackoverflow.com")
}

func TestReport_JSONOutput(t *testing.T) {
	m, _ := newTestCLIManager(t)
	seedSessions(t, m)

	cmd := &ReportCommand{globals: &GlobalFlags{JSON: true}, manager: m, Top: 5}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithManager(m))
	})

	var result reportJSON
	require.NoError(t, json.Unmarshal([]byte(output), &result))

	assert.Equal(t, time.Now().Format("2006-01-02"), result.Date)
	assert.Equal(t, int64(20000), result.TotalTime)
	assert.Equal(t, placeholderScore, result.Score)
	require.NotEmpty(t, result.TopSites)
	assert.Equal(t, "github.com", result.TopSites[0].Domain)
	assert.Equal(t, int64(12000), result.TopSites[0].TimeMs)
	assert.Equal(t, int64(2), result.TopSites[0].Visits)
}

func TestReport_RejectsBadDate(t *testing.T) {
	m, _ := newTestCLIManager(t)

	cmd := &ReportCommand{globals: &GlobalFlags{}, manager: m, Date: "03/15/2026", Top: 5}
	err := cmd.executeWithManager(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}
