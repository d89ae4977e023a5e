package storage

import "time"

// Key identifies one of the fixed key/value slots.
type Key string

// Slot keys. The set is closed; callers never invent keys at runtime.
const (
	KeyDailySummary Key = "daily_summary"
	KeySettings     Key = "settings"
	KeyBlockRules   Key = "block_rules"
	KeyCategories   Key = "categories"
	KeyLastSync     Key = "last_sync"
)

// HistoryRecord is one completed browsing session persisted in detail.
// Timestamp is the write-time epoch-ms primary key; records are immutable
// once written and only ever removed by retention.
type HistoryRecord struct {
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`
	Domain    string `json:"domain"`
	Title     string `json:"title"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}

// DomainStat holds accumulated time and visit count for one domain
// within a day bucket.
type DomainStat struct {
	Time   int64 `json:"time"`
	Visits int64 `json:"visits"`
}

// DayBucket is the per-calendar-day aggregate. TotalTime is milliseconds,
// monotonically non-decreasing within a day.
type DayBucket struct {
	TotalTime  int64                 `json:"totalTime"`
	Domains    map[string]DomainStat `json:"domains"`
	Categories map[string]int64      `json:"categories"`
}

// NewDayBucket returns an empty bucket with allocated maps.
func NewDayBucket() *DayBucket {
	return &DayBucket{
		Domains:    make(map[string]DomainStat),
		Categories: make(map[string]int64),
	}
}

// SummaryMap maps ISO dates ("2006-01-02") to day buckets. It is the full
// value of the daily_summary slot; JSON field names match the layout the
// extension wrote, so existing data stays readable.
type SummaryMap map[string]*DayBucket

// BlockRules is the block_rules slot: domains are exact matches, patterns
// are regular expressions applied against the domain.
type BlockRules struct {
	Domains  []string `json:"domains"`
	Patterns []string `json:"patterns"`
}

// CategoryMap is the categories slot, mapping domain to category label.
// Written by the settings UI; read-only from the core's side.
type CategoryMap map[string]string

// Settings is the settings slot. Zero values mean "use the configured
// default".
type Settings struct {
	SignificantMs int64 `json:"significantMs,omitempty"`
	MinSessionMs  int64 `json:"minSessionMs,omitempty"`
}

// DomainCount pairs a domain with its record count and accumulated time.
type DomainCount struct {
	Domain string
	Count  int64
	Time   int64
}

// Stats holds aggregate statistics about the tracking database.
type Stats struct {
	TotalRecords int64
	OldestRecord time.Time
	NewestRecord time.Time
	TopDomains   []DomainCount
}
