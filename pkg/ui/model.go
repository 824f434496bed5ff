// Package ui is the casedesk terminal interface: one table screen per
// collection, a case detail pane, entry forms and a dashboard line.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/config"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/table"
	"github.com/vanderheijden86/casedesk/pkg/watcher"
)

// Screen is one of the three collection tables.
type Screen int

const (
	ScreenCases Screen = iota
	ScreenWatchlist
	ScreenKeywords
	screenCount
)

func (s Screen) String() string {
	switch s {
	case ScreenCases:
		return "cases"
	case ScreenWatchlist:
		return "watchlist"
	case ScreenKeywords:
		return "keywords"
	default:
		return "unknown"
	}
}

// ParseScreen maps a config screen name to a Screen, defaulting to cases.
func ParseScreen(name string) Screen {
	for s := Screen(0); s < screenCount; s++ {
		if strings.EqualFold(s.String(), name) {
			return s
		}
	}
	return ScreenCases
}

// FileChangedMsg is sent when the config file changes on disk
type FileChangedMsg struct{}

// ConfigReloadedMsg carries a re-read config file.
type ConfigReloadedMsg struct {
	Config config.Config
	Err    error
}

type caseSelectedMsg struct{ Case model.Case }
type watchlistSelectedMsg struct{ Entry model.WatchlistEntry }
type keywordEditMsg struct{ Keyword model.Keyword }

type searchAppliedMsg struct {
	Screen Screen
	Query  string
	Tags   []string
}

type recordDeletedMsg struct {
	Screen Screen
	Label  string
}

// Options wires the UI to its collections and environment.
type Options struct {
	Cases     collection.Sync[string, model.Case]
	Watchlist collection.Sync[string, model.WatchlistEntry]
	Keywords  collection.Sync[int, model.Keyword]

	Config     config.Config
	ConfigPath string
	// BackendURL prefixes recording paths for display and copying.
	BackendURL string
	// RequireRecording makes the .wav file mandatory on new cases.
	RequireRecording bool
	// Watcher, if set, reports config file changes.
	Watcher *watcher.Watcher

	Clipboard func(string) error
	Now       func() time.Time
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadConfigCmd re-reads the config file.
func ReloadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.LoadFrom(path)
		return ConfigReloadedMsg{Config: cfg, Err: err}
	}
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Model is the main Bubble Tea model for casedesk.
type Model struct {
	cases     table.Model[string, model.Case]
	watchlist table.Model[string, model.WatchlistEntry]
	keywords  table.Model[int, model.Keyword]
	active    Screen

	detail     detailPane
	showDetail bool
	form       *entryForm

	dash  analysis.Dashboard
	links *analysis.Links

	statusMsg     string
	statusIsError bool

	cfg        config.Config
	cfgPath    string
	backendURL string
	needWav    bool
	watcher    *watcher.Watcher
	clip       func(string) error
	now        func() time.Time

	theme  Theme
	keys   appKeys
	width  int
	height int
	ready  bool
}

// NewModel builds the app. Collections must all be set.
func NewModel(opts Options) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	styles := theme.TableStyles()

	debounce, err := opts.Config.SearchDebounce()
	if err != nil {
		debug.Log("ui: %v", err)
	}
	timeout, err := opts.Config.BackendTimeout()
	if err != nil {
		debug.Log("ui: %v", err)
	}

	m := Model{
		active:     ParseScreen(opts.Config.UI.DefaultScreen),
		detail:     newDetailPane(theme),
		links:      analysis.LinkCases(nil, nil),
		cfg:        opts.Config,
		cfgPath:    opts.ConfigPath,
		backendURL: opts.BackendURL,
		needWav:    opts.RequireRecording,
		watcher:    opts.Watcher,
		clip:       opts.Clipboard,
		now:        opts.Now,
		theme:      theme,
		keys:       defaultAppKeys(),
	}
	if m.clip == nil {
		m.clip = clipboard.WriteAll
	}
	if m.now == nil {
		m.now = time.Now
	}

	m.cases = table.New(table.Config[string, model.Case]{
		Name:          "Cases",
		Columns:       caseColumns(),
		ID:            caseID,
		Sync:          opts.Cases,
		Matcher:       caseMatcher,
		Filters:       severityFilters,
		OnRowClick:    func(c model.Case) tea.Cmd { return msgCmd(caseSelectedMsg{c}) },
		OnDelete:      func(c model.Case) tea.Cmd { return msgCmd(recordDeletedMsg{ScreenCases, "case " + c.ID}) },
		OnSearch:      searchCmd(ScreenCases),
		StatusOptions: model.CaseStatuses(),
		StatusOf:      statusOf,
		Debounce:      debounce,
		Timeout:       timeout,
		Styles:        &styles,
		EmptyText:     "No cases yet (n to add one)",
	})
	m.watchlist = table.New(table.Config[string, model.WatchlistEntry]{
		Name:       "Watchlist",
		Columns:    watchlistColumns(),
		ID:         watchlistID,
		Sync:       opts.Watchlist,
		Matcher:    watchlistMatcher,
		Filters:    model.RiskLevels(),
		OnRowClick: func(w model.WatchlistEntry) tea.Cmd { return msgCmd(watchlistSelectedMsg{w}) },
		OnDelete: func(w model.WatchlistEntry) tea.Cmd {
			return msgCmd(recordDeletedMsg{ScreenWatchlist, w.Name})
		},
		OnSearch:  searchCmd(ScreenWatchlist),
		Debounce:  debounce,
		Timeout:   timeout,
		Styles:    &styles,
		EmptyText: "Nobody on the watchlist (n to add)",
	})
	m.keywords = table.New(table.Config[int, model.Keyword]{
		Name:      "Keywords",
		Columns:   keywordColumns(),
		ID:        keywordID,
		Sync:      opts.Keywords,
		Matcher:   keywordMatcher,
		Filters:   keywordFilters,
		OnEdit:    func(k model.Keyword) tea.Cmd { return msgCmd(keywordEditMsg{k}) },
		OnDelete:  func(k model.Keyword) tea.Cmd { return msgCmd(recordDeletedMsg{ScreenKeywords, "keyword " + k.Word}) },
		OnSearch:  searchCmd(ScreenKeywords),
		Debounce:  debounce,
		Timeout:   timeout,
		Styles:    &styles,
		EmptyText: "No keywords (n to add)",
	})
	return m
}

func searchCmd(s Screen) func(string, []string) tea.Cmd {
	return func(q string, tags []string) tea.Cmd {
		return msgCmd(searchAppliedMsg{Screen: s, Query: q, Tags: tags})
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.cases.Init(), m.watchlist.Init(), m.keywords.Init()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Active returns the screen shown.
func (m Model) Active() Screen { return m.active }

// Dashboard returns the figures behind the dashboard line.
func (m Model) Dashboard() analysis.Dashboard { return m.dash }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// FormOpen reports whether an entry form has focus.
func (m Model) FormOpen() bool { return m.form != nil }

// DetailCaseID returns the case shown in the detail pane, or "".
func (m Model) DetailCaseID() string {
	if !m.showDetail {
		return ""
	}
	return m.detail.caseID
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m Model) capturing() bool {
	switch m.active {
	case ScreenWatchlist:
		return m.watchlist.Capturing()
	case ScreenKeywords:
		return m.keywords.Capturing()
	default:
		return m.cases.Capturing()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The form receives every message while open: huh advances fields with
	// its own internal messages, not only keys.
	if m.form != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.Type == tea.KeyEsc {
				m.form = nil
				m.setStatus("Cancelled", false)
				return m, nil
			}
			cmd := m.form.Update(msg)
			done := m.finishForm()
			return m, tea.Batch(cmd, done)
		case tea.MouseMsg:
			return m, nil
		case tea.WindowSizeMsg:
		default:
			cmds = append(cmds, m.form.Update(msg), m.finishForm())
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.routeActive(msg)

	case caseSelectedMsg:
		m.showDetail = true
		m.layout()
		m.detail.Show(msg.Case, m.links, m.backendURL)
		return m, tea.Batch(cmds...)

	case watchlistSelectedMsg:
		n := 0
		for _, c := range m.cases.Records().All() {
			for _, w := range m.links.WatchlistHits(c.ID) {
				if w.ID == msg.Entry.ID {
					n++
				}
			}
		}
		m.setStatus(fmt.Sprintf("%s (%s): mentioned in %d case(s), last mention %s",
			msg.Entry.Name, msg.Entry.PhoneNumber, n, FormatTimeRel(msg.Entry.LastMentioned, m.now())), false)
		return m, tea.Batch(cmds...)

	case keywordEditMsg:
		k := msg.Keyword
		m.form = newKeywordForm(&k)
		return m, tea.Batch(append(cmds, m.form.Init())...)

	case searchAppliedMsg:
		m.setStatus(m.describeSearch(msg), false)
		return m, tea.Batch(cmds...)

	case recordDeletedMsg:
		m.setStatus("Deleted "+msg.Label, false)
		m.refresh()
		return m, tea.Batch(cmds...)

	case table.RowErrorMsg:
		debug.Log("ui: %s %s %s: %v", msg.Table, msg.ID, msg.Op, msg.Err)
		m.setStatus(msg.Text(), true)
		return m, tea.Batch(cmds...)

	case FileChangedMsg:
		cmds = append(cmds, ReloadConfigCmd(m.cfgPath))
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, tea.Batch(cmds...)
	}

	changed := dataChanged(msg)
	if label, ok := createdLabel(msg); ok {
		m.setStatus("Added "+label, false)
	}
	var cmd tea.Cmd
	m.cases, cmd = m.cases.Update(msg)
	cmds = append(cmds, cmd)
	m.watchlist, cmd = m.watchlist.Update(msg)
	cmds = append(cmds, cmd)
	m.keywords, cmd = m.keywords.Update(msg)
	cmds = append(cmds, cmd)
	if changed {
		m.refresh()
	}
	return m, tea.Batch(cmds...)
}

// dataChanged reports whether msg may have changed a record set.
func dataChanged(msg tea.Msg) bool {
	switch msg.(type) {
	case table.LoadedMsg[model.Case], table.LoadedMsg[model.WatchlistEntry], table.LoadedMsg[model.Keyword],
		table.CreatedMsg[model.Case], table.CreatedMsg[model.WatchlistEntry], table.CreatedMsg[model.Keyword],
		table.MutationSettledMsg[string, model.Case], table.MutationSettledMsg[string, model.WatchlistEntry],
		table.MutationSettledMsg[int, model.Keyword]:
		return true
	}
	return false
}

// createdLabel names a successfully created record for the status line.
func createdLabel(msg tea.Msg) (string, bool) {
	switch msg := msg.(type) {
	case table.CreatedMsg[model.Case]:
		return "case " + msg.Record.ID, msg.Err == nil
	case table.CreatedMsg[model.WatchlistEntry]:
		return msg.Record.Name, msg.Err == nil
	case table.CreatedMsg[model.Keyword]:
		return "keyword " + msg.Record.Word, msg.Err == nil
	}
	return "", false
}

// refresh recomputes the dashboard and links and redraws the detail pane
// from the live case set.
func (m *Model) refresh() {
	cases := m.cases.Records().All()
	watchlist := m.watchlist.Records().All()
	m.dash = analysis.ComputeDashboard(cases, watchlist, m.keywords.Records().All(), m.now())
	m.links = analysis.LinkCases(cases, watchlist)

	if id := m.detail.caseID; id != "" {
		if c, ok := m.cases.Records().Get(id); ok {
			m.detail.Show(c, m.links, m.backendURL)
		} else {
			m.detail.Clear()
			m.showDetail = false
			m.layout()
		}
	}
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		debug.Log("ui: config reload: %v", msg.Err)
		m.setStatus("Config reload failed: "+msg.Err.Error(), true)
		return
	}
	debounce, _ := msg.Config.SearchDebounce()
	timeout, _ := msg.Config.BackendTimeout()
	m.cases.SetDebounce(debounce)
	m.watchlist.SetDebounce(debounce)
	m.keywords.SetDebounce(debounce)
	m.cases.SetTimeout(timeout)
	m.watchlist.SetTimeout(timeout)
	m.keywords.SetTimeout(timeout)
	m.cfg = msg.Config
	m.layout()
	debug.Log("ui: config reloaded (debounce %s, timeout %s)", debounce, timeout)
	m.setStatus("Config reloaded (search debounce "+formatDuration(debounce)+")", false)
}

func (m Model) describeSearch(msg searchAppliedMsg) string {
	var shown, total int
	switch msg.Screen {
	case ScreenCases:
		shown, total = len(m.cases.Visible()), m.cases.Records().Len()
	case ScreenWatchlist:
		shown, total = len(m.watchlist.Visible()), m.watchlist.Records().Len()
	case ScreenKeywords:
		shown, total = len(m.keywords.Visible()), m.keywords.Records().Len()
	}
	if msg.Query == "" && len(msg.Tags) == 0 {
		return fmt.Sprintf("Showing all %d %s", total, msg.Screen)
	}
	var parts []string
	if msg.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", msg.Query))
	}
	if len(msg.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(msg.Tags, "|"))
	}
	return fmt.Sprintf("%d of %d %s match %s", shown, total, msg.Screen, strings.Join(parts, ", "))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.capturing() {
		return m.routeActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Close) && m.showDetail:
		m.showDetail = false
		m.detail.Clear()
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.NextScreen):
		m.switchScreen((m.active + 1) % screenCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevScreen):
		m.switchScreen((m.active + screenCount - 1) % screenCount)
		return m, nil
	case key.Matches(msg, m.keys.New):
		return m.openNewForm()
	case key.Matches(msg, m.keys.CopyID):
		m.copySelected(copyID)
		return m, nil
	case key.Matches(msg, m.keys.CopyPhone):
		m.copySelected(copyPhone)
		return m, nil
	case key.Matches(msg, m.keys.CopyURL):
		m.copySelected(copyURL)
		return m, nil
	}
	return m.routeActive(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cases.Close()
	m.watchlist.Close()
	m.keywords.Close()
	return m, tea.Quit
}

func (m *Model) switchScreen(s Screen) {
	m.active = s
	if s != ScreenCases {
		m.showDetail = false
	}
	m.layout()
}

func (m Model) routeActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if mm, ok := msg.(tea.MouseMsg); ok && m.showDetail && mm.X >= m.tableWidth() {
		if mm.Button == tea.MouseButtonWheelUp || mm.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.detail.viewport, cmd = m.detail.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.active {
	case ScreenWatchlist:
		m.watchlist, cmd = m.watchlist.Update(msg)
	case ScreenKeywords:
		m.keywords, cmd = m.keywords.Update(msg)
	default:
		m.cases, cmd = m.cases.Update(msg)
	}
	return m, cmd
}

func (m Model) openNewForm() (tea.Model, tea.Cmd) {
	switch m.active {
	case ScreenWatchlist:
		m.form = newWatchlistForm()
	case ScreenKeywords:
		m.form = newKeywordForm(nil)
	default:
		m.form = newCaseForm(m.needWav)
	}
	return m, m.form.Init()
}

// finishForm submits a completed form and closes it. Values that fail
// validation never reach the collection.
func (m *Model) finishForm() tea.Cmd {
	f := m.form
	if f == nil {
		return nil
	}
	if f.Aborted() {
		m.form = nil
		m.setStatus("Cancelled", false)
		return nil
	}
	if !f.Completed() {
		return nil
	}
	m.form = nil

	var (
		p   collection.Payload
		err error
	)
	switch f.kind {
	case formAddCase:
		if p, err = f.values.casePayload(); err == nil {
			m.setStatus("Uploading case…", false)
			return m.cases.Create(p)
		}
	case formAddWatchlist:
		if p, err = f.values.watchlistPayload(); err == nil {
			m.setStatus("Adding "+p.Fields["name"]+"…", false)
			return m.watchlist.Create(p)
		}
	case formAddKeyword:
		if p, err = f.values.keywordPayload(); err == nil {
			m.setStatus("Adding keyword "+p.Fields["word"]+"…", false)
			return m.keywords.Create(p)
		}
	case formEditKeyword:
		var patch collection.Patch
		if patch, err = f.keywordPatch(); err == nil {
			if len(patch) == 0 {
				m.setStatus("No changes", false)
				return nil
			}
			cmd, berr := m.keywords.BeginUpdate(f.keywordID, patch)
			if berr != nil {
				m.setStatus(table.UserMessage(berr), true)
				return nil
			}
			m.setStatus("Saving keyword…", false)
			return cmd
		}
	}
	m.setStatus(err.Error(), true)
	return nil
}

type copyKind int

const (
	copyID copyKind = iota
	copyPhone
	copyURL
)

// copyTarget returns what to copy from the selected row of the active
// screen, and a label for the status line.
func (m Model) copyTarget(kind copyKind) (text, label string, ok bool) {
	switch m.active {
	case ScreenCases:
		c, sel := m.cases.Selected()
		if !sel {
			return "", "", false
		}
		switch kind {
		case copyPhone:
			return c.Source, c.Source, true
		case copyURL:
			if c.FileURL() == "" {
				return "", "", false
			}
			u := strings.TrimRight(m.backendURL, "/") + c.FileURL()
			return u, "recording URL", true
		default:
			return c.ID, c.ID, true
		}
	case ScreenWatchlist:
		w, sel := m.watchlist.Selected()
		if !sel || kind == copyURL {
			return "", "", false
		}
		if kind == copyPhone {
			return w.PhoneNumber, w.PhoneNumber, true
		}
		return w.ID, w.ID, true
	case ScreenKeywords:
		k, sel := m.keywords.Selected()
		if !sel || kind != copyID {
			return "", "", false
		}
		return k.Word, k.Word, true
	}
	return "", "", false
}

func (m *Model) copySelected(kind copyKind) {
	text, label, ok := m.copyTarget(kind)
	if !ok {
		m.setStatus("Nothing to copy", true)
		return
	}
	if err := m.clip(text); err != nil {
		m.setStatus(fmt.Sprintf("❌ Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("📋 Copied %s to clipboard", label), false)
}

func (m Model) tableWidth() int {
	if m.showDetail && m.width >= 80 {
		return m.width * 55 / 100
	}
	return m.width
}

// bodyHeight is the space between the header and the status line.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if ps := m.cfg.UI.PageSize; ps > 0 && ps+5 < h {
		h = ps + 5
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) layout() {
	if !m.ready {
		return
	}
	tw, h := m.tableWidth(), m.bodyHeight()
	for _, setSize := range []func(int, int){m.cases.SetSize, m.watchlist.SetSize, m.keywords.SetSize} {
		setSize(tw, h)
	}
	m.cases.SetTop(1)
	m.watchlist.SetTop(1)
	m.keywords.SetTop(1)
	if m.showDetail {
		dw := m.width - tw - 3
		if tw == m.width {
			dw = m.width - 2
		}
		m.detail.SetSize(dw, h-2)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading casedesk…"
	}

	var body string
	switch {
	case m.form != nil:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.form.View())
	case m.showDetail && m.active == ScreenCases:
		pane := FocusedPanelStyle.Width(m.width - m.tableWidth() - 3).Render(m.detail.View())
		if m.tableWidth() == m.width {
			body = pane
		} else {
			body = lipgloss.JoinHorizontal(lipgloss.Top, m.activeView(), " ", pane)
		}
	default:
		body = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus())
}

func (m Model) activeView() string {
	switch m.active {
	case ScreenWatchlist:
		return m.watchlist.View()
	case ScreenKeywords:
		return m.keywords.View()
	default:
		return m.cases.View()
	}
}

func (m Model) renderHeader() string {
	var tabs []string
	for s := Screen(0); s < screenCount; s++ {
		style := m.theme.Tab
		if s == m.active {
			style = m.theme.TabOn
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	line := strings.Join(tabs, "") + "  " + m.renderDashboard()
	return truncateANSI(line, m.width)
}

// renderDashboard is the one-line summary: active cases, high risk, resolution
// rate, watchlist and keyword counts, and linked-case clusters.
func (m Model) renderDashboard() string {
	d := m.dash
	muted := m.theme.MutedText
	parts := []string{
		fmt.Sprintf("%d cases", d.TotalCases),
		fmt.Sprintf("%d active", d.ActiveCases),
		m.theme.ErrorText.Render(fmt.Sprintf("%d high risk", d.HighRiskCases)),
		fmt.Sprintf("resolved %s %s", RenderMiniBar(d.ResolutionRate, 8, m.theme), RenderPercent(d.ResolutionRate)),
		fmt.Sprintf("%d tracked", d.TrackedIndividuals),
		fmt.Sprintf("%d keywords", d.Keywords),
	}
	if n := len(m.links.Clusters()); n > 0 {
		parts = append(parts, m.theme.InfoText.Render(fmt.Sprintf("%d linked groups", n)))
	}
	return muted.Render(strings.Join(parts, muted.Render(" · ")))
}

func (m Model) renderStatus() string {
	if m.statusMsg == "" {
		return m.theme.MutedText.Render("tab switch · n new · y copy id · Y copy phone · u copy recording · q quit")
	}
	if m.statusIsError {
		return m.theme.ErrorText.Render(truncate(m.statusMsg, max(m.width, 1)))
	}
	return m.theme.SuccessText.Render(truncate(m.statusMsg, max(m.width, 1)))
}

func truncateANSI(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
