package tracking

import (
	"context"
	"time"

	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/logging"
)

// Scheduler drives the periodic jobs: the idle check and the retention
// maintenance sweep. Jobs are fire-and-forget; a failing tick logs and is
// superseded by the next one, never retried mid-cycle.
type Scheduler struct {
	manager *Manager
	tracker *Tracker
	cfg     *config.Config
	log     *logging.Logger
}

// NewScheduler creates a Scheduler over the shared manager and tracker.
func NewScheduler(manager *Manager, tracker *Tracker, cfg *config.Config, log *logging.Logger) *Scheduler {
	return &Scheduler{manager: manager, tracker: tracker, cfg: cfg, log: log}
}

// Run blocks until ctx is cancelled, firing the idle check and maintenance
// tickers. The current session is flushed on shutdown.
func (s *Scheduler) Run(ctx context.Context) {
	idleEvery := time.Duration(s.cfg.Tracking.IdleCheckMs) * time.Millisecond
	if idleEvery <= 0 {
		idleEvery = 5 * time.Second
	}
	maintainEvery := time.Duration(s.cfg.Retention.PruneIntervalHours) * time.Hour
	if maintainEvery <= 0 {
		maintainEvery = 24 * time.Hour
	}

	idleTick := time.NewTicker(idleEvery)
	defer idleTick.Stop()
	maintainTick := time.NewTicker(maintainEvery)
	defer maintainTick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.tracker.Stop(context.Background())
			return
		case <-idleTick.C:
			s.tracker.CheckIdle(ctx)
		case <-maintainTick.C:
			if err := s.manager.RunMaintenance(ctx); err != nil {
				s.log.Warnf("scheduled maintenance: %v", err)
			}
		}
	}
}
