package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/casedesk/internal/datasource"
	"github.com/vanderheijden86/casedesk/pkg/config"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/loader"
	"github.com/vanderheijden86/casedesk/pkg/ui"
	"github.com/vanderheijden86/casedesk/pkg/version"
	"github.com/vanderheijden86/casedesk/pkg/watcher"
)

type options struct {
	configPath string
	source     string
	url        string
	db         string
	screen     string
	cpuProfile string
	help       bool
	version    bool

	robotList    string
	robotSummary bool
	robotMetrics bool
	list         listQuery
	exportMD     string

	seedCases     string
	seedWatchlist string
	seedKeywords  string
}

func (o options) robot() bool {
	return o.robotList != "" || o.robotSummary || o.robotMetrics || o.exportMD != ""
}

func (o options) seeding() bool {
	return o.seedCases != "" || o.seedWatchlist != "" || o.seedKeywords != ""
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	var tags string
	fs := flag.NewFlagSet("casedesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", config.ConfigPath(), "Config file (watched for changes)")
	fs.StringVar(&o.source, "source", "", "Data source: http or sqlite (overrides config)")
	fs.StringVar(&o.url, "url", "", "Case service base URL (overrides config)")
	fs.StringVar(&o.db, "db", "", "SQLite database path; implies --source sqlite")
	fs.StringVar(&o.screen, "screen", "", "Screen to open first: cases, watchlist or keywords")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")

	fs.StringVar(&o.robotList, "robot-list", "", "Print a collection as JSON: cases, watchlist or keywords")
	fs.StringVar(&o.list.Query, "query", "", "Search text for --robot-list")
	fs.StringVar(&tags, "tags", "", "Comma separated tag filter for --robot-list")
	fs.StringVar(&o.list.Sort, "sort", "", "Column key to sort --robot-list by")
	fs.BoolVar(&o.list.Desc, "desc", false, "Sort --robot-list descending")
	fs.BoolVar(&o.robotSummary, "robot-summary", false, "Print dashboard figures and linked case groups as JSON")
	fs.BoolVar(&o.robotMetrics, "robot-metrics", false, "Load every collection once and print request latencies as JSON")
	fs.StringVar(&o.exportMD, "export-md", "", "Write a markdown case report to file")

	fs.StringVar(&o.seedCases, "seed-cases", "", "Import a JSONL case export into the SQLite database")
	fs.StringVar(&o.seedWatchlist, "seed-watchlist", "", "Import a JSONL watchlist export into the SQLite database")
	fs.StringVar(&o.seedKeywords, "seed-keywords", "", "Import a word,category,score keyword list into the SQLite database")

	if err := fs.Parse(args); err != nil {
		return o, fs, err
	}
	o.list.Tags = parseTags(tags)
	if fs.NArg() > 0 {
		return o, fs, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, fs, nil
}

// resolveConfig applies command line overrides on top of the config file.
func resolveConfig(o options) (config.Config, error) {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.source != "" {
		cfg.Source = o.source
	}
	if o.url != "" {
		cfg.Backend.URL = o.url
	}
	if o.db != "" {
		cfg.SQLite.Path = o.db
		if o.source == "" {
			cfg.Source = string(datasource.SourceTypeSQLite)
		}
	}
	if o.seeding() && o.source == "" {
		cfg.Source = string(datasource.SourceTypeSQLite)
	}
	if o.screen != "" {
		cfg.UI.DefaultScreen = o.screen
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func dataSourceFor(cfg config.Config) (datasource.DataSource, error) {
	typ, err := datasource.ParseSourceType(cfg.Source)
	if err != nil {
		return datasource.DataSource{}, err
	}
	timeout, err := cfg.BackendTimeout()
	if err != nil {
		return datasource.DataSource{}, err
	}
	return datasource.DataSource{
		Type:    typ,
		URL:     cfg.Backend.URL,
		Path:    cfg.ResolvedSQLitePath(),
		Timeout: timeout,
	}, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: casedesk [options]")
		fmt.Fprintln(stdout, "\nA terminal desk for fraud cases, the watchlist and flagged keywords.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if o.version {
		fmt.Fprintf(stdout, "casedesk %s\n", version.Version)
		return 0
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if o.robot() {
		// Keep JSON on stdout clean of loader warnings.
		_ = os.Setenv("CASEDESK_ROBOT", "1")
	}

	cfg, err := resolveConfig(o)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	source, err := dataSourceFor(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cols, err := datasource.Open(source)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening %s: %v\n", source, err)
		return 1
	}
	defer cols.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.seeding() {
		if err := seed(ctx, stdout, cols, o); err != nil {
			fmt.Fprintf(stderr, "Seed failed: %v\n", err)
			return 1
		}
		return 0
	}

	switch {
	case o.robotList != "":
		err = runRobotList(ctx, stdout, cols, o.robotList, o.list)
	case o.robotSummary:
		err = runRobotSummary(ctx, stdout, cols, time.Now())
	case o.robotMetrics:
		err = runRobotMetrics(ctx, stdout, cols)
	case o.exportMD != "":
		err = runExportMarkdown(ctx, stdout, cols, o.exportMD, time.Now())
	}
	if o.robot() {
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(stderr, "Error: casedesk needs a terminal. Use --robot-list or --robot-summary for scripted output.")
		return 1
	}

	var w *watcher.Watcher
	if o.configPath != "" {
		w, err = watcher.NewWatcher(o.configPath)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("main: config watcher disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	opts := ui.Options{
		Cases:      cols.Cases,
		Watchlist:  cols.Watchlist,
		Keywords:   cols.Keywords,
		Config:     cfg,
		ConfigPath: o.configPath,
		BackendURL: backendURLFor(source),
		Watcher:    w,
	}
	// The case service only creates cases from an uploaded recording.
	opts.RequireRecording = source.Type != datasource.SourceTypeSQLite
	if err := runTUIProgram(ui.NewModel(opts)); err != nil {
		fmt.Fprintf(stderr, "Error running casedesk: %v\n", err)
		return 1
	}
	return 0
}

// backendURLFor is the prefix of recording links. SQLite sources have no
// file server.
func backendURLFor(source datasource.DataSource) string {
	if source.Type == datasource.SourceTypeSQLite {
		return ""
	}
	return source.URL
}

func seed(ctx context.Context, w io.Writer, cols *datasource.Collections, o options) error {
	if cols.Store == nil {
		return fmt.Errorf("seeding needs a sqlite source (got %s)", cols.Source)
	}
	if o.seedCases != "" {
		cases, err := loader.LoadCasesFromFile(o.seedCases)
		if err != nil {
			return err
		}
		if err := datasource.Seed(ctx, cols.Store.Cases(), cases...); err != nil {
			return err
		}
		fmt.Fprintf(w, "Imported %d cases into %s\n", len(cases), cols.Store.Path())
	}
	if o.seedWatchlist != "" {
		entries, err := loader.LoadWatchlistFromFile(o.seedWatchlist)
		if err != nil {
			return err
		}
		if err := datasource.Seed(ctx, cols.Store.Watchlist(), entries...); err != nil {
			return err
		}
		fmt.Fprintf(w, "Imported %d watchlist entries into %s\n", len(entries), cols.Store.Path())
	}
	if o.seedKeywords != "" {
		kws, err := loader.LoadKeywordsFromFile(o.seedKeywords)
		if err != nil {
			return err
		}
		if err := datasource.Seed(ctx, cols.Store.Keywords(), kws...); err != nil {
			return err
		}
		fmt.Fprintf(w, "Imported %d keywords into %s\n", len(kws), cols.Store.Path())
	}
	return nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CASEDESK_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CASEDESK_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
