package tracking

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/runnerr0/protrackr/internal/config"
	"github.com/runnerr0/protrackr/internal/logging"
	"github.com/runnerr0/protrackr/internal/storage"
)

// State is the tracker's current mode.
type State int

const (
	StateIdle State = iota
	StateTracking
)

func (s State) String() string {
	if s == StateTracking {
		return "tracking"
	}
	return "idle"
}

// Current is a snapshot of the tracked session, valid while State is
// StateTracking.
type Current struct {
	State        State  `json:"state"`
	TabID        int    `json:"tabId,omitempty"`
	WindowID     int    `json:"windowId,omitempty"`
	URL          string `json:"url,omitempty"`
	Domain       string `json:"domain,omitempty"`
	Title        string `json:"title,omitempty"`
	StartTime    int64  `json:"startTime,omitempty"`
	LastActivity int64  `json:"lastActivity,omitempty"`
}

// Tracker is the session state machine: Idle or Tracking one tab. All
// transitions (tab activation, navigation, focus loss, idle timeout) are
// serialized through one mutex so there is no free-floating session state.
type Tracker struct {
	manager *Manager
	cfg     config.TrackingConfig
	log     *logging.Logger

	mu  sync.Mutex
	cur Current
	now func() time.Time
}

// NewTracker creates a Tracker feeding completed sessions into manager.
func NewTracker(manager *Manager, cfg config.TrackingConfig, log *logging.Logger) *Tracker {
	return &Tracker{manager: manager, cfg: cfg, log: log, now: time.Now}
}

// trackable reports whether a URL belongs to a page worth tracking.
func trackable(raw string) bool {
	if !strings.HasPrefix(raw, "http") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Hostname() != ""
}

// TabActivated ends any running session and starts tracking the new tab.
// Non-http URLs (new-tab pages, settings screens) transition to Idle.
func (t *Tracker) TabActivated(ctx context.Context, tabID, windowID int, rawURL, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endLocked(ctx)

	if !trackable(rawURL) {
		return
	}
	u, _ := url.Parse(rawURL)
	now := t.now().UnixMilli()
	t.cur = Current{
		State:        StateTracking,
		TabID:        tabID,
		WindowID:     windowID,
		URL:          rawURL,
		Domain:       u.Hostname(),
		Title:        title,
		StartTime:    now,
		LastActivity: now,
	}
}

// TabUpdated handles a navigation inside the tracked tab: the old page's
// session ends and a new one starts. Updates for other tabs are ignored.
func (t *Tracker) TabUpdated(ctx context.Context, tabID int, rawURL, title string) {
	t.mu.Lock()
	if t.cur.State != StateTracking || t.cur.TabID != tabID {
		t.mu.Unlock()
		return
	}
	windowID := t.cur.WindowID
	t.mu.Unlock()

	t.TabActivated(ctx, tabID, windowID, rawURL, title)
}

// WindowFocusLost ends the current session; the user left the browser.
func (t *Tracker) WindowFocusLost(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLocked(ctx)
}

// Touch records user activity, deferring the idle timeout.
func (t *Tracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.State == StateTracking {
		t.cur.LastActivity = t.now().UnixMilli()
	}
}

// CheckIdle ends the session once activity has been absent longer than the
// idle threshold. Meant to run on the idle-check tick.
func (t *Tracker) CheckIdle(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur.State != StateTracking {
		return
	}
	if t.now().UnixMilli()-t.cur.LastActivity >= t.cfg.IdleThresholdMs {
		t.log.Debugf("idle timeout on %s", t.cur.Domain)
		t.endLocked(ctx)
	}
}

// Stop ends any running session; called on shutdown.
func (t *Tracker) Stop(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLocked(ctx)
}

// Snapshot returns the current state for status surfaces.
func (t *Tracker) Snapshot() Current {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// endLocked completes the running session and routes it to the manager.
// Sessions shorter than the minimum are discarded. Caller holds t.mu.
func (t *Tracker) endLocked(ctx context.Context) {
	if t.cur.State != StateTracking {
		return
	}
	cur := t.cur
	t.cur = Current{State: StateIdle}

	duration := t.now().UnixMilli() - cur.StartTime
	if duration < t.cfg.MinSessionMs {
		return
	}

	err := t.manager.RecordCompletedSession(ctx, Session{
		URL:       cur.URL,
		Domain:    cur.Domain,
		StartTime: cur.StartTime,
		Duration:  duration,
		Title:     cur.Title,
	})
	if err != nil {
		if errors.Is(err, storage.ErrMalformedInput) {
			t.log.Warnf("skipping malformed session: %v", err)
			return
		}
		// Tracking keeps going with possibly-partial data.
		t.log.Errorf("record session: %v", err)
	}
}
