package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/protrackr/internal/storage"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// Execute implements the go-flags Commander interface for TrackCommand.
func (c *TrackCommand) Execute(args []string) error {
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

// executeWithManager records one manual session against a provided manager (used by tests).
func (c *TrackCommand) executeWithManager(m *tracking.Manager) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required")
	}
	dur, err := parseDuration(c.Duration)
	if err != nil {
		return fmt.Errorf("invalid --duration: %w", err)
	}
	if dur <= 0 {
		return fmt.Errorf("--duration must be positive")
	}

	now := time.Now()
	session := tracking.Session{
		URL:       c.URL,
		Title:     c.Title,
		StartTime: now.Add(-dur).UnixMilli(),
		Duration:  dur.Milliseconds(),
	}

	if err := m.RecordCompletedSession(context.Background(), session); err != nil {
		if errors.Is(err, storage.ErrMalformedInput) {
			return fmt.Errorf("invalid session: %w", err)
		}
		return fmt.Errorf("record session: %w", err)
	}

	fmt.Printf("Recorded %s for %s\n", formatTime(dur.Milliseconds()), c.URL)
	return nil
}
