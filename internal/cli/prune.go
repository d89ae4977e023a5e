package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/protrackr/internal/tracking"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	m := c.manager
	if m == nil {
		cfg, err := loadConfig(c.globals)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if c.OlderThan != "" {
			dur, err := parseDuration(c.OlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than: %w", err)
			}
			days := int(dur.Hours() / 24)
			if days < 1 {
				return fmt.Errorf("--older-than must be at least 1d")
			}
			cfg.Retention.Days = days
		}

		m = tracking.NewManager(cfg, newLogger(c.globals, cfg))
		if err := m.Initialize(); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer m.Close()
	}
	return c.executeWithManager(m)
}

// executeWithManager runs the prune against a provided manager (used by tests).
func (c *PruneCommand) executeWithManager(m *tracking.Manager) error {
	ctx := context.Background()

	preview, err := m.PreviewMaintenance(ctx)
	if err != nil {
		return fmt.Errorf("preview prune: %w", err)
	}

	if c.DryRun {
		fmt.Printf("Would remove %s day buckets and %s history records\n",
			formatNumber(int64(preview.BucketsRemoved)), formatNumber(int64(preview.RecordsRemoved)))
		return nil
	}

	if err := m.RunMaintenance(ctx); err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	fmt.Printf("Removed %s day buckets and %s history records\n",
		formatNumber(int64(preview.BucketsRemoved)), formatNumber(int64(preview.RecordsRemoved)))
	return nil
}
