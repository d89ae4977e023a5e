package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/protrackr/internal/daemon"
	"github.com/runnerr0/protrackr/internal/logging"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// Execute implements the go-flags Commander interface for ServeCommand.
// It runs the ingest daemon until SIGINT/SIGTERM, flushing any open
// session on the way out.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Port != 0 {
		cfg.Daemon.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}

	log := newLogger(c.globals, cfg)
	if c.LogLevel != "" {
		log = logging.New(logging.ParseLevel(c.LogLevel), os.Stderr)
	}

	m := tracking.NewManager(cfg, log)
	if err := m.Initialize(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer m.Close()

	tracker := tracking.NewTracker(m, cfg.Tracking, log)
	scheduler := tracking.NewScheduler(m, tracker, cfg, log)
	server := daemon.NewServer(m, tracker, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)

	log.Infof("protrackr %s listening on %s:%d", c.version, cfg.Daemon.Host, cfg.Daemon.Port)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("daemon: %w", err)
	}
	return nil
}
