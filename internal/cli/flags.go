package cli

import "github.com/runnerr0/protrackr/internal/tracking"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ReportCommand — show one day's tracked time.
type ReportCommand struct {
	Date string `long:"date" description:"Day to report (YYYY-MM-DD, default today)"`
	Top  int    `long:"top" description:"Number of top sites to list" default:"5"`

	globals *GlobalFlags
	version string
	manager *tracking.Manager // injectable for testing; nil means open from config
}

// HistoryCommand — list detailed history records within a range.
type HistoryCommand struct {
	Since string `long:"since" description:"Only records newer than duration (e.g., 7d, 24h)" default:"7d"`
	Until string `long:"until" description:"Only records older than duration"`
	Limit int    `long:"limit" description:"Maximum records to print" default:"50"`

	globals *GlobalFlags
	version string
	manager *tracking.Manager
}

// TrackCommand — manually record a completed browsing session.
type TrackCommand struct {
	URL      string `long:"url" description:"Page URL (required)"`
	Title    string `long:"title" description:"Page title"`
	Duration string `long:"duration" description:"Session length (e.g., 90s, 5m)" default:"1m"`

	globals *GlobalFlags
	version string
	manager *tracking.Manager
}

// ServeCommand — run the local ingest daemon and schedulers.
type ServeCommand struct {
	Port     int    `long:"port" description:"Override daemon port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}

// PruneCommand — apply retention pruning.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
	manager *tracking.Manager
}

// StatusCommand — show database statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	manager *tracking.Manager
}

// PurgeCommand — delete ALL tracked data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	manager *tracking.Manager
}
