package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casedesk/internal/datasource"
	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/export"
	"github.com/vanderheijden86/casedesk/pkg/loader"
	"github.com/vanderheijden86/casedesk/pkg/metrics"
	"github.com/vanderheijden86/casedesk/pkg/table"
	"github.com/vanderheijden86/casedesk/pkg/ui"
)

// listQuery is the filter and sort of --robot-list, applied the way the
// screens apply them.
type listQuery struct {
	Query string
	Tags  []string
	Sort  string
	Desc  bool
}

type robotListOutput struct {
	GeneratedAt string   `json:"generated_at"`
	Source      string   `json:"source"`
	Collection  string   `json:"collection"`
	Query       string   `json:"query,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Sort        string   `json:"sort,omitempty"`
	Direction   string   `json:"direction,omitempty"`
	Total       int      `json:"total"`
	Shown       int      `json:"shown"`
	Records     any      `json:"records"`
}

type robotSummaryOutput struct {
	GeneratedAt   string              `json:"generated_at"`
	Source        string              `json:"source"`
	Dashboard     analysis.Dashboard  `json:"dashboard"`
	LinkedGroups  [][]string          `json:"linked_groups"`
	WatchlistHits map[string][]string `json:"watchlist_hits,omitempty"`
}

type robotMetricsOutput struct {
	GeneratedAt string                `json:"generated_at"`
	Source      string                `json:"source"`
	Timings     []metrics.TimingStats `json:"timings"`
}

func writeRobotJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTags splits a comma separated --tags value.
func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// listRecords filters then sorts records with the screen's columns and
// matcher. An unknown sort column is an error rather than a silent no-op.
func listRecords[R any](records []R, cols []table.Column[R], m table.Matcher[R], q listQuery) ([]R, error) {
	if q.Sort != "" {
		known := make([]string, 0, len(cols))
		found := false
		for _, c := range cols {
			if c.Sortable() {
				known = append(known, c.Key)
			}
			if c.Key == q.Sort && c.Sortable() {
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown sort column %q (want one of %s)", q.Sort, strings.Join(known, ", "))
		}
	}
	f := table.FilterState{Query: q.Query}.SelectAll(q.Tags)
	rows := table.Apply(records, m, f)
	dir := table.SortAscending
	if q.Desc {
		dir = table.SortDescending
	}
	return table.Sort(rows, cols, table.SortState{Column: q.Sort, Direction: dir}), nil
}

func runRobotList(ctx context.Context, w io.Writer, cols *datasource.Collections, name string, q listQuery) error {
	out := robotListOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      cols.Source.String(),
		Collection:  name,
		Query:       q.Query,
		Tags:        q.Tags,
		Sort:        q.Sort,
	}
	if q.Sort != "" {
		out.Direction = "asc"
		if q.Desc {
			out.Direction = "desc"
		}
	}

	switch strings.ToLower(name) {
	case "cases":
		all, err := cols.Cases.List(ctx)
		if err != nil {
			return fmt.Errorf("loading cases: %w", err)
		}
		rows, err := listRecords(all, ui.CaseColumns(), ui.CaseMatcher(), q)
		if err != nil {
			return err
		}
		out.Total, out.Shown, out.Records = len(all), len(rows), rows
	case "watchlist":
		all, err := cols.Watchlist.List(ctx)
		if err != nil {
			return fmt.Errorf("loading watchlist: %w", err)
		}
		rows, err := listRecords(all, ui.WatchlistColumns(), ui.WatchlistMatcher(), q)
		if err != nil {
			return err
		}
		out.Total, out.Shown, out.Records = len(all), len(rows), rows
	case "keywords":
		all, err := cols.Keywords.List(ctx)
		if err != nil {
			return fmt.Errorf("loading keywords: %w", err)
		}
		rows, err := listRecords(all, ui.KeywordColumns(), ui.KeywordMatcher(), q)
		if err != nil {
			return err
		}
		out.Total, out.Shown, out.Records = len(all), len(rows), rows
	default:
		return fmt.Errorf("unknown collection %q (want cases, watchlist or keywords)", name)
	}
	return writeRobotJSON(w, out)
}

func runRobotSummary(ctx context.Context, w io.Writer, cols *datasource.Collections, now time.Time) error {
	snap, err := loader.LoadAll(ctx, sourcesOf(cols))
	if err != nil {
		return err
	}
	links := analysis.LinkCases(snap.Cases, snap.Watchlist)
	out := robotSummaryOutput{
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		Source:       cols.Source.String(),
		Dashboard:    analysis.ComputeDashboard(snap.Cases, snap.Watchlist, snap.Keywords, now),
		LinkedGroups: links.Clusters(),
	}
	if out.LinkedGroups == nil {
		out.LinkedGroups = [][]string{}
	}
	for _, c := range snap.Cases {
		hits := links.WatchlistHits(c.ID)
		if len(hits) == 0 {
			continue
		}
		if out.WatchlistHits == nil {
			out.WatchlistHits = make(map[string][]string)
		}
		ids := make([]string, 0, len(hits))
		for _, h := range hits {
			ids = append(ids, h.ID)
		}
		sort.Strings(ids)
		out.WatchlistHits[c.ID] = ids
	}
	return writeRobotJSON(w, out)
}

// runRobotMetrics loads every collection once with timing enabled and
// reports the latencies.
func runRobotMetrics(ctx context.Context, w io.Writer, cols *datasource.Collections) error {
	metrics.SetEnabled(true)
	metrics.ResetAll()
	if _, err := loader.LoadAll(ctx, sourcesOf(cols)); err != nil {
		return err
	}
	var timings []metrics.TimingStats
	for _, s := range metrics.AllTimingStats() {
		if s.Count > 0 || s.Failures > 0 {
			timings = append(timings, s)
		}
	}
	return writeRobotJSON(w, robotMetricsOutput{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      cols.Source.String(),
		Timings:     timings,
	})
}

func runExportMarkdown(ctx context.Context, w io.Writer, cols *datasource.Collections, path string, now time.Time) error {
	snap, err := loader.LoadAll(ctx, sourcesOf(cols))
	if err != nil {
		return err
	}
	report := export.Report{
		Title:     "Case Report",
		Cases:     snap.Cases,
		Watchlist: snap.Watchlist,
		Keywords:  snap.Keywords,
		Now:       now,
	}
	if err := export.SaveMarkdownToFile(report, path); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(w, "Wrote %d cases to %s\n", len(snap.Cases), path)
	return nil
}

func sourcesOf(cols *datasource.Collections) loader.Sources {
	return loader.Sources{Cases: cols.Cases, Watchlist: cols.Watchlist, Keywords: cols.Keywords}
}
