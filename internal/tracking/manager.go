// Package tracking composes the storage tiers, the aggregation engine, and
// the retention sweeper behind a single facade, and owns the session state
// machine that feeds it.
package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/protrackr/internal/aggregate"
	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/logging"
	"github.com/runnerr0/protrackr/internal/retention"
	"github.com/runnerr0/protrackr/internal/storage"
)

// Session is one completed browsing session reported by an activity source.
type Session struct {
	URL       string `json:"url"`
	Domain    string `json:"domain"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
	Title     string `json:"title"`
}

// Manager is the single entry point to the storage core. It owns one shared
// instance of each subordinate component for the process lifetime and
// guarantees none of them is reached before initialization completes.
type Manager struct {
	cfg *config.Config
	log *logging.Logger

	initOnce sync.Once
	initErr  error

	db      *sql.DB
	store   *storage.Store // injectable for testing; nil means open from config
	engine  *aggregate.Engine
	sweeper *retention.Sweeper

	significantMs int64
	blockDomains  map[string]struct{}
	blockPatterns []*regexp.Regexp
}

// NewManager creates a Manager; the database is opened lazily on the first
// call that needs it.
func NewManager(cfg *config.Config, log *logging.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// NewManagerWithStore creates a Manager over an existing store, bypassing
// the config-driven open. The caller keeps ownership of the database.
func NewManagerWithStore(cfg *config.Config, log *logging.Logger, store *storage.Store) *Manager {
	return &Manager{cfg: cfg, log: log, store: store}
}

// Initialize opens the database, runs migrations, and wires the subordinate
// components. It is idempotent and memoized: concurrent and repeated callers
// all observe the one completion, and its error is sticky.
func (m *Manager) Initialize() error {
	m.initOnce.Do(func() {
		if m.store == nil {
			path, err := m.cfg.DatabasePath()
			if err != nil {
				m.initErr = err
				return
			}
			m.store, m.db, m.initErr = storage.Open(path)
			if m.initErr != nil {
				return
			}
		}

		kv := m.store.KV()
		m.engine = aggregate.NewEngine(kv, aggregate.NewSlotCategorizer(kv))
		m.sweeper = retention.NewSweeper(kv, m.store.Records(), m.cfg.Retention.Days)

		m.initErr = m.loadPolicies(context.Background())
	})
	return m.initErr
}

// loadPolicies caches the block rules and resolves the significance
// threshold (settings slot overrides the configured default).
func (m *Manager) loadPolicies(ctx context.Context) error {
	kv := m.store.KV()

	m.significantMs = m.cfg.Tracking.SignificantMs
	var settings storage.Settings
	if found, err := kv.Get(ctx, storage.KeySettings, &settings); err == nil && found {
		if settings.SignificantMs > 0 {
			m.significantMs = settings.SignificantMs
		}
	}

	m.blockDomains = make(map[string]struct{})
	m.blockPatterns = nil
	var rules storage.BlockRules
	found, err := kv.Get(ctx, storage.KeyBlockRules, &rules)
	if err != nil {
		return fmt.Errorf("load block rules: %w", err)
	}
	if !found {
		return nil
	}
	for _, d := range rules.Domains {
		m.blockDomains[d] = struct{}{}
	}
	for _, p := range rules.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			m.log.Warnf("skipping invalid block pattern %q: %v", p, err)
			continue
		}
		m.blockPatterns = append(m.blockPatterns, re)
	}
	return nil
}

// IsBlocked checks a domain against the cached block rules.
func (m *Manager) IsBlocked(domain string) bool {
	if _, ok := m.blockDomains[domain]; ok {
		return true
	}
	for _, re := range m.blockPatterns {
		if re.MatchString(domain) {
			return true
		}
	}
	return false
}

// RecordCompletedSession routes a finished session into the aggregation
// engine, and additionally into the record store when its duration exceeds
// the significance threshold. Blocked domains are silently skipped.
// Malformed input yields ErrMalformedInput for the caller to log and drop.
func (m *Manager) RecordCompletedSession(ctx context.Context, s Session) error {
	if err := m.Initialize(); err != nil {
		return err
	}

	if s.URL == "" {
		return fmt.Errorf("%w: session has no URL", storage.ErrMalformedInput)
	}
	if s.Domain == "" {
		u, err := url.Parse(s.URL)
		if err != nil || u.Hostname() == "" {
			return fmt.Errorf("%w: invalid session URL %q", storage.ErrMalformedInput, s.URL)
		}
		s.Domain = u.Hostname()
	}

	if m.IsBlocked(s.Domain) {
		m.log.Debugf("dropping session for blocked domain %s", s.Domain)
		return nil
	}

	if _, err := m.engine.Merge(ctx, aggregate.Event{Time: s.Duration, Domain: s.Domain}); err != nil {
		return fmt.Errorf("merge session: %w", err)
	}

	if s.Duration > m.significantMs {
		rec := &storage.HistoryRecord{
			URL:       s.URL,
			Domain:    s.Domain,
			Title:     s.Title,
			StartTime: s.StartTime,
			Duration:  s.Duration,
		}
		if err := m.store.Records().Append(ctx, rec); err != nil {
			// Best-effort path: the aggregate already holds the time.
			m.log.Warnf("history append failed: %v", err)
		}
	}

	return nil
}

// ReadSummary returns the day bucket for an ISO date ("2006-01-02"), or an
// empty bucket when that day has no data.
func (m *Manager) ReadSummary(ctx context.Context, date string) (*storage.DayBucket, error) {
	summary, err := m.ReadSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if b, ok := summary[date]; ok {
		return b, nil
	}
	return storage.NewDayBucket(), nil
}

// ReadSummaries returns the full date-to-bucket mapping.
func (m *Manager) ReadSummaries(ctx context.Context) (storage.SummaryMap, error) {
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	summary := storage.SummaryMap{}
	if _, err := m.store.KV().Get(ctx, storage.KeyDailySummary, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// ReadHistory returns history records in [startTime, endTime] ascending.
func (m *Manager) ReadHistory(ctx context.Context, startTime, endTime int64) ([]storage.HistoryRecord, error) {
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	return m.store.Records().QueryRange(ctx, startTime, endTime)
}

// RunMaintenance sweeps both tiers and stamps the last_sync slot. Sweep
// failures are logged; the stamp is skipped only if everything failed.
func (m *Manager) RunMaintenance(ctx context.Context) error {
	if err := m.Initialize(); err != nil {
		return err
	}

	res, err := m.sweeper.Sweep(ctx)
	if err != nil {
		m.log.Warnf("maintenance sweep: %v", err)
		return err
	}
	m.log.Infof("maintenance: removed %d day buckets, %d history records",
		res.BucketsRemoved, res.RecordsRemoved)

	stamp := map[string]int64{"ts": time.Now().UnixMilli()}
	if err := m.store.KV().Set(ctx, storage.KeyLastSync, stamp); err != nil {
		m.log.Warnf("stamp last_sync: %v", err)
	}
	return nil
}

// PreviewMaintenance reports what RunMaintenance would remove.
func (m *Manager) PreviewMaintenance(ctx context.Context) (retention.Result, error) {
	if err := m.Initialize(); err != nil {
		return retention.Result{}, err
	}
	return m.sweeper.Preview(ctx)
}

// PurgeAll wipes all tracked data and reloads policies from the re-seeded
// defaults.
func (m *Manager) PurgeAll(ctx context.Context) error {
	if err := m.Initialize(); err != nil {
		return err
	}
	if err := m.store.PurgeAll(ctx); err != nil {
		return err
	}
	return m.loadPolicies(ctx)
}

// Stats returns aggregate statistics for status surfaces.
func (m *Manager) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := m.Initialize(); err != nil {
		return nil, err
	}
	return m.store.Stats(ctx)
}

// Close releases the store and the database if this Manager opened them.
func (m *Manager) Close() error {
	if m.store != nil {
		m.store.Close()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
