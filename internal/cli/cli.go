package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Report  *ReportCommand
	History *HistoryCommand
	Track   *TrackCommand
	Serve   *ServeCommand
	Prune   *PruneCommand
	Status  *StatusCommand
	Purge   *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "protrackr"
	parser.LongDescription = "Local time tracking for browsing: per-site daily summaries, history, and retention."

	cmds := &commands{
		Report:  &ReportCommand{globals: &globals, version: version},
		History: &HistoryCommand{globals: &globals, version: version},
		Track:   &TrackCommand{globals: &globals, version: version},
		Serve:   &ServeCommand{globals: &globals, version: version},
		Prune:   &PruneCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
		Purge:   &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("report", "Show a day's summary", "Show one day's tracked time: totals, top sites, categories.", cmds.Report)
	parser.AddCommand("history", "List history records", "List detailed history records within a time range.", cmds.History)
	parser.AddCommand("track", "Record a completed session", "Manually record a completed browsing session.", cmds.Track)
	parser.AddCommand("serve", "Start the ingest daemon", "Start the local HTTP daemon accepting extension events.", cmds.Serve)
	parser.AddCommand("prune", "Apply retention pruning", "Remove summaries and records older than the retention window.", cmds.Prune)
	parser.AddCommand("status", "Show database statistics", "Show database statistics and configuration summary.", cmds.Status)
	parser.AddCommand("purge", "Delete ALL tracked data", "Delete ALL tracked data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// wantsVersion reports whether args request the version before any
// subcommand; go-flags would otherwise reject a bare --version for
// lacking a command.
func wantsVersion(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version":
			return true
		case "--":
			return false
		}
	}
	return false
}

// Run is the main entry point for the ProTrackr CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, os.Args[1:])
}

// RunWithArgs parses args and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	if wantsVersion(args) {
		fmt.Printf("protrackr %s\n", version)
		return nil
	}

	parser, _, _ := buildParser(version)
	_, err := parser.ParseArgs(args)

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}
