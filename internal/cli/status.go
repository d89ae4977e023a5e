package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string           `json:"version"`
	DatabasePath  string           `json:"database_path"`
	TotalRecords  int64            `json:"total_records"`
	OldestRecord  string           `json:"oldest_record,omitempty"`
	NewestRecord  string           `json:"newest_record,omitempty"`
	RetentionDays int              `json:"retention_days"`
	SignificantMs int64            `json:"significant_ms"`
	DaemonAddr    string           `json:"daemon_addr"`
	DaemonRunning bool             `json:"daemon_running"`
	TopDomains    []domainStatJSON `json:"top_domains,omitempty"`
}

type domainStatJSON struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
	TimeMs int64  `json:"time_ms"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	m := c.manager
	var cfg *config.Config
	if m == nil {
		var err error
		m, cfg, err = openManager(c.globals)
		if err != nil {
			return err
		}
		defer m.Close()
	} else {
		cfg = config.DefaultConfig()
	}
	return c.executeWithManager(m, cfg)
}

// executeWithManager runs the status report against a provided manager (used by tests).
func (c *StatusCommand) executeWithManager(m *tracking.Manager, cfg *config.Config) error {
	stats, err := m.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		dbPath = "(unresolved)"
	}

	daemonAddr := fmt.Sprintf("%s:%d", cfg.Daemon.Host, cfg.Daemon.Port)
	daemonUp := daemonHealthy(daemonAddr)

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:       c.version,
			DatabasePath:  dbPath,
			TotalRecords:  stats.TotalRecords,
			RetentionDays: cfg.Retention.Days,
			SignificantMs: cfg.Tracking.SignificantMs,
			DaemonAddr:    daemonAddr,
			DaemonRunning: daemonUp,
		}
		if stats.TotalRecords > 0 {
			out.OldestRecord = stats.OldestRecord.Format(time.RFC3339)
			out.NewestRecord = stats.NewestRecord.Format(time.RFC3339)
		}
		for _, dc := range stats.TopDomains {
			out.TopDomains = append(out.TopDomains, domainStatJSON{
				Domain: dc.Domain, Count: dc.Count, TimeMs: dc.Time,
			})
		}
		return printJSON(out)
	}

	fmt.Printf("ProTrackr %s\n\n", c.version)
	fmt.Printf("Database:      %s\n", dbPath)
	fmt.Printf("Records:       %s\n", formatNumber(stats.TotalRecords))
	if stats.TotalRecords > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestRecord.Format("2006-01-02 15:04:05"))
		fmt.Printf("Newest:        %s\n", stats.NewestRecord.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Retention:     %s\n", formatDurationHuman(time.Duration(cfg.Retention.Days)*24*time.Hour))
	fmt.Printf("Significant:   %s\n", formatTime(cfg.Tracking.SignificantMs))

	fmt.Printf("Daemon:        %s ", daemonAddr)
	if daemonUp {
		fmt.Println("(running)")
	} else {
		fmt.Println("(not running)")
	}

	if len(stats.TopDomains) > 0 {
		fmt.Println()
		fmt.Println("Top Domains:")
		for _, dc := range stats.TopDomains {
			fmt.Printf("  %-24s %s  (%s records)\n",
				formatDomain(dc.Domain), formatTime(dc.Time), formatNumber(dc.Count))
		}
	}

	return nil
}

// daemonHealthy probes the daemon's health endpoint with a short timeout.
func daemonHealthy(addr string) bool {
	client := &http.Client{Timeout: 500 * time.Millisecond}
	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
