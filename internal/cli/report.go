package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/protrackr/internal/storage"
	"github.com/runnerr0/protrackr/internal/tracking"
)

// placeholderScore is the fixed productivity score until real scoring
// exists. TODO: derive the score from category weights once the category
// map carries them.
const placeholderScore = 75

// reportJSON is the JSON output structure for the report command.
type reportJSON struct {
	Date       string           `json:"date"`
	TotalTime  int64            `json:"total_time_ms"`
	Score      int              `json:"score"`
	TopSites   []siteJSON       `json:"top_sites"`
	Categories map[string]int64 `json:"categories"`
}

type siteJSON struct {
	Domain string `json:"domain"`
	TimeMs int64  `json:"time_ms"`
	Visits int64  `json:"visits"`
}

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
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

// executeWithManager runs the report logic against a provided manager (used by tests).
func (c *ReportCommand) executeWithManager(m *tracking.Manager) error {
	date := c.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", c.Date)
	}

	bucket, err := m.ReadSummary(context.Background(), date)
	if err != nil {
		return fmt.Errorf("read summary: %w", err)
	}

	top := topSites(bucket, c.Top)

	if c.globals != nil && c.globals.JSON {
		out := reportJSON{
			Date:       date,
			TotalTime:  bucket.TotalTime,
			Score:      placeholderScore,
			TopSites:   make([]siteJSON, 0, len(top)),
			Categories: bucket.Categories,
		}
		for _, site := range top {
			out.TopSites = append(out.TopSites, siteJSON{
				Domain: site.domain, TimeMs: site.stat.Time, Visits: site.stat.Visits,
			})
		}
		return printJSON(out)
	}

	fmt.Printf("Report for %s\n", date)
	fmt.Printf("Total time:    %s\n", formatTime(bucket.TotalTime))
	fmt.Printf("Sites:         %d\n", len(bucket.Domains))
	fmt.Printf("Score:         %d\n", placeholderScore)

	if len(top) > 0 {
		fmt.Println()
		fmt.Println("Top Sites:")
		for _, site := range top {
			fmt.Printf("  %-24s %s  (%d visits)\n",
				formatDomain(site.domain), formatTime(site.stat.Time), site.stat.Visits)
		}
	}

	if len(bucket.Categories) > 0 {
		fmt.Println()
		fmt.Println("Categories:")
		for _, cat := range sortedCategories(bucket.Categories) {
			fmt.Printf("  %-24s %s\n", cat, formatTime(bucket.Categories[cat]))
		}
	}

	if bucket.TotalTime == 0 {
		fmt.Println()
		fmt.Println("No activity recorded.")
	}

	return nil
}

type rankedSite struct {
	domain string
	stat   storage.DomainStat
}

// topSites returns the n most-used domains by accumulated time.
func topSites(bucket *storage.DayBucket, n int) []rankedSite {
	sites := make([]rankedSite, 0, len(bucket.Domains))
	for domain, stat := range bucket.Domains {
		sites = append(sites, rankedSite{domain: domain, stat: stat})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].stat.Time != sites[j].stat.Time {
			return sites[i].stat.Time > sites[j].stat.Time
		}
		return sites[i].domain < sites[j].domain
	})
	if n > 0 && len(sites) > n {
		sites = sites[:n]
	}
	return sites
}

// sortedCategories returns category labels ordered by accumulated time.
func sortedCategories(cats map[string]int64) []string {
	labels := make([]string, 0, len(cats))
	for label := range cats {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if cats[labels[i]] != cats[labels[j]] {
			return cats[labels[i]] > cats[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
