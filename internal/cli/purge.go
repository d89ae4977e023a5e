package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/protrackr/internal/tracking"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all to confirm you want to delete everything")
	}

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

// executeWithManager runs the purge against a provided manager (used by tests).
func (c *PurgeCommand) executeWithManager(m *tracking.Manager) error {
	stats, err := m.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	if !c.Force {
		fmt.Printf("This will permanently delete %s history records and all summaries.\n",
			formatNumber(stats.TotalRecords))
		fmt.Print("Type PURGE to continue: ")

		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "PURGE" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := m.PurgeAll(context.Background()); err != nil {
		return fmt.Errorf("purge: %w", err)
	}

	fmt.Printf("Purged %s history records and all summaries.\n", formatNumber(stats.TotalRecords))
	return nil
}
