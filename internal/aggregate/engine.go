// Package aggregate merges completed-session events into per-day summary
// buckets held in the daily_summary slot.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/runnerr0/protrackr/internal/storage"
)

// Event is one unit of aggregation input. Time is the session duration in
// milliseconds; Domain and Category are optional. An empty Category is
// resolved through the engine's Categorizer at merge time.
type Event struct {
	Time     int64
	Domain   string
	Category string
}

// Engine applies delta-style merges to the summary map. Every merge runs as
// a single serialized read-modify-write on the daily_summary slot, so
// concurrent mergers can never lose each other's updates.
type Engine struct {
	kv   *storage.KVStore
	cats Categorizer

	now func() time.Time
}

// NewEngine creates an Engine. A nil categorizer disables category
// accounting for events that don't carry their own label.
func NewEngine(kv *storage.KVStore, cats Categorizer) *Engine {
	return &Engine{kv: kv, cats: cats, now: time.Now}
}

// today returns the merge-moment calendar date. Sessions spanning midnight
// are attributed wholly to the day they ended.
func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

// Merge folds one event into today's bucket and returns the updated bucket.
// An event with zero time changes nothing and returns the current state.
func (e *Engine) Merge(ctx context.Context, ev Event) (*storage.DayBucket, error) {
	day := e.today()

	if ev.Time == 0 {
		return e.readBucket(ctx, day)
	}

	// Resolve the category label before taking the slot lock so it is
	// current at merge time.
	category := ev.Category
	if category == "" && ev.Domain != "" && e.cats != nil {
		category = e.cats.Categorize(ctx, ev.Domain)
	}

	var merged *storage.DayBucket
	err := e.kv.Update(ctx, storage.KeyDailySummary, func(raw []byte) (any, error) {
		summary := storage.SummaryMap{}
		if raw != nil {
			if err := sonic.Unmarshal(raw, &summary); err != nil {
				return nil, fmt.Errorf("decode summary: %w", err)
			}
		}

		bucket, ok := summary[day]
		if !ok {
			bucket = storage.NewDayBucket()
			summary[day] = bucket
		}

		bucket.TotalTime += ev.Time

		if ev.Domain != "" {
			stat := bucket.Domains[ev.Domain]
			stat.Time += ev.Time
			stat.Visits++
			bucket.Domains[ev.Domain] = stat
		}

		if category != "" {
			bucket.Categories[category] += ev.Time
		}

		merged = bucket
		return summary, nil
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}

// readBucket returns the stored bucket for a date, or an empty bucket when
// the date has no data yet.
func (e *Engine) readBucket(ctx context.Context, day string) (*storage.DayBucket, error) {
	var summary storage.SummaryMap
	found, err := e.kv.Get(ctx, storage.KeyDailySummary, &summary)
	if err != nil {
		return nil, err
	}
	if !found || summary[day] == nil {
		return storage.NewDayBucket(), nil
	}
	return summary[day], nil
}
