package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/protrackr/internal/tracking"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	m := c.manager
	if m == nil {
		var err error
		m, _, err = openManager(c.globals)
		if err != nil {
			return err
		}
		defer m.Close()
	}
	return c.executeWithManager(m)
}

// executeWithManager runs the history listing against a provided manager (used by tests).
func (c *HistoryCommand) executeWithManager(m *tracking.Manager) error {
	since, err := parseDuration(c.Since)
	if err != nil {
		return fmt.Errorf("invalid --since: %w", err)
	}

	now := time.Now()
	start := now.Add(-since).UnixMilli()
	end := now.UnixMilli()
	if c.Until != "" {
		until, err := parseDuration(c.Until)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		end = now.Add(-until).UnixMilli()
	}
	if end < start {
		return fmt.Errorf("--until must be within the --since window")
	}

	records, err := m.ReadHistory(context.Background(), start, end)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	// Newest first for display; storage returns ascending.
	if c.Limit > 0 && len(records) > c.Limit {
		records = records[len(records)-c.Limit:]
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No history records in range.")
		return nil
	}

	for _, rec := range records {
		when := time.UnixMilli(rec.Timestamp).Format("2006-01-02 15:04:05")
		title := rec.Title
		if title == "" {
			title = rec.URL
		}
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Printf("%s  %-24s %8s  %s\n",
			when, formatDomain(rec.Domain), formatTime(rec.Duration), title)
	}
	fmt.Printf("\n%s records\n", formatNumber(int64(len(records))))

	return nil
}
