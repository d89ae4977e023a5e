// Package retention prunes summaries and history records past the
// retention window.
package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/runnerr0/protrackr/internal/storage"
)

// DefaultDays is the retention window applied when none is configured.
const DefaultDays = 30

// Result reports what a sweep removed.
type Result struct {
	BucketsRemoved int
	RecordsRemoved int64
}

// Sweeper removes day buckets and history records older than the window.
// Sweeps are best-effort: a failure in the summary step does not stop the
// record step, and a failed sweep is simply retried on the next schedule.
type Sweeper struct {
	kv      *storage.KVStore
	records *storage.RecordStore
	days    int

	now func() time.Time
}

// NewSweeper creates a Sweeper with the given window in days; values < 1
// fall back to DefaultDays.
func NewSweeper(kv *storage.KVStore, records *storage.RecordStore, days int) *Sweeper {
	if days < 1 {
		days = DefaultDays
	}
	return &Sweeper{kv: kv, records: records, days: days, now: time.Now}
}

func (s *Sweeper) cutoff() time.Time {
	return s.now().AddDate(0, 0, -s.days)
}

// Sweep prunes both tiers and reports what was removed. Partial failures
// are joined into the returned error alongside the partial Result.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	cutoff := s.cutoff()
	var res Result

	kvErr := s.kv.Update(ctx, storage.KeyDailySummary, func(raw []byte) (any, error) {
		summary := storage.SummaryMap{}
		if raw != nil {
			if err := sonic.Unmarshal(raw, &summary); err != nil {
				return nil, fmt.Errorf("decode summary: %w", err)
			}
		}
		for date := range summary {
			t, err := time.Parse("2006-01-02", date)
			if err != nil {
				// Unparseable keys are left alone rather than dropped.
				continue
			}
			if t.Before(cutoff) {
				delete(summary, date)
				res.BucketsRemoved++
			}
		}
		return summary, nil
	})
	if kvErr != nil {
		kvErr = fmt.Errorf("sweep summaries: %w", kvErr)
	}

	removed, recErr := s.records.DeleteUpTo(ctx, cutoff.UnixMilli())
	if recErr != nil {
		recErr = fmt.Errorf("sweep records: %w", recErr)
	}
	res.RecordsRemoved = removed

	return res, errors.Join(kvErr, recErr)
}

// Preview reports what Sweep would remove without deleting anything.
func (s *Sweeper) Preview(ctx context.Context) (Result, error) {
	cutoff := s.cutoff()
	var res Result

	var summary storage.SummaryMap
	if _, err := s.kv.Get(ctx, storage.KeyDailySummary, &summary); err != nil {
		return res, fmt.Errorf("preview summaries: %w", err)
	}
	for date := range summary {
		t, err := time.Parse("2006-01-02", date)
		if err == nil && t.Before(cutoff) {
			res.BucketsRemoved++
		}
	}

	count, err := s.records.CountUpTo(ctx, cutoff.UnixMilli())
	if err != nil {
		return res, fmt.Errorf("preview records: %w", err)
	}
	res.RecordsRemoved = count

	return res, nil
}
