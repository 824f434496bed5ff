package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/metrics"
)

const (
	maxAutoWidth = 32
	actionsWidth = 12
)

var owners atomic.Uint64

// LoadedMsg carries a List result.
type LoadedMsg[R any] struct {
	Owner   uint64
	Records []R
	Err     error
}

// CreatedMsg carries a Create result.
type CreatedMsg[R any] struct {
	Owner  uint64
	Record R
	Err    error
}

// RowErrorMsg is a transient notification for the owning screen that a row
// operation failed.
type RowErrorMsg struct {
	Table string
	ID    string
	Op    string
	Err   error
}

// Text is the notification as shown to the user.
func (m RowErrorMsg) Text() string {
	if m.ID == "" {
		return fmt.Sprintf("%s: %s", m.Table, UserMessage(m.Err))
	}
	return fmt.Sprintf("%s %s: %s", m.Table, m.ID, UserMessage(m.Err))
}

// Config configures a table. Leaving OnEdit, OnDelete, OnSearch or
// StatusOptions unset disables the matching affordance.
type Config[K comparable, R any] struct {
	Name    string
	Columns []Column[R]
	ID      func(R) K
	Sync    collection.Sync[K, R]
	Matcher Matcher[R]
	Filters []string

	// OnRowClick receives the selected record on enter or a mouse click.
	OnRowClick func(R) tea.Cmd
	// OnEdit opens the screen's editor for a record.
	OnEdit func(R) tea.Cmd
	// OnDelete enables deletion and is told about each removed record.
	OnDelete func(R) tea.Cmd
	// OnSearch enables the search box and is told about every applied query
	// and tag selection.
	OnSearch func(query string, tags []string) tea.Cmd

	StatusOptions []string
	StatusOf      func(R) string

	Debounce  time.Duration
	Timeout   time.Duration
	Keys      *KeyMap
	Styles    *Styles
	EmptyText string
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
	modeStatus
	modeConfirmDelete
)

// Model is a sortable, filterable table over one collection.
type Model[K comparable, R any] struct {
	cfg       Config[K, R]
	owner     uint64
	records   *RecordSet[K, R]
	coord     *Coordinator[K, R]
	debouncer *Debouncer

	sort   SortState
	filter FilterState
	input  textinput.Model
	mode   mode

	pickerCursor int
	confirmID    K

	cursor int
	offset int
	width  int
	height int
	top    int

	spinner spinner.Model
	keys    KeyMap
	help    help.Model
	styles  Styles
	notice  string
}

// New returns an unloaded table. Config.ID and Config.Sync are required.
func New[K comparable, R any](cfg Config[K, R]) Model[K, R] {
	if cfg.ID == nil || cfg.Sync == nil {
		panic("table: Config.ID and Config.Sync are required")
	}
	owner := owners.Add(1)
	records := NewRecordSet(cfg.ID)

	keys := DefaultKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}
	keys.Edit.SetEnabled(cfg.OnEdit != nil)
	keys.Delete.SetEnabled(cfg.OnDelete != nil)
	keys.Search.SetEnabled(cfg.OnSearch != nil)
	keys.Status.SetEnabled(len(cfg.StatusOptions) > 0)
	keys.Filter.SetEnabled(len(cfg.Filters) > 0)
	keys.ToggleAll.SetEnabled(len(cfg.Filters) > 0)

	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	if cfg.EmptyText == "" {
		cfg.EmptyText = "No records"
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search..."
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Busy

	return Model[K, R]{
		cfg:       cfg,
		owner:     owner,
		records:   records,
		coord:     NewCoordinator(owner, cfg.Sync, records, cfg.Timeout),
		debouncer: NewDebouncer(owner, cfg.Debounce),
		filter:    FilterState{Selected: map[string]struct{}{}},
		input:     ti,
		spinner:   sp,
		keys:      keys,
		help:      help.New(),
		styles:    styles,
	}
}

// Init loads the records and starts the loading spinner.
func (m Model[K, R]) Init() tea.Cmd {
	return tea.Batch(m.Load(), m.spinner.Tick)
}

// Load lists the collection. The result arrives as a LoadedMsg.
func (m Model[K, R]) Load() tea.Cmd {
	sync, owner, timeout := m.cfg.Sync, m.owner, m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		records, err := sync.List(ctx)
		return LoadedMsg[R]{Owner: owner, Records: records, Err: err}
	}
}

// Create sends p to the collection. The created record is appended when the
// CreatedMsg arrives. Creates are never retried.
func (m Model[K, R]) Create(p collection.Payload) tea.Cmd {
	sync, owner, timeout := m.cfg.Sync, m.owner, m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		rec, err := sync.Create(ctx, p)
		return CreatedMsg[R]{Owner: owner, Record: rec, Err: err}
	}
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// Owner identifies this table's messages.
func (m Model[K, R]) Owner() uint64 { return m.owner }

// Name returns the configured table name.
func (m Model[K, R]) Name() string { return m.cfg.Name }

// Records returns the record set.
func (m Model[K, R]) Records() *RecordSet[K, R] { return m.records }

// Coordinator returns the row operation coordinator.
func (m Model[K, R]) Coordinator() *Coordinator[K, R] { return m.coord }

// Task returns the operation state of row id.
func (m Model[K, R]) Task(id K) RowTask { return m.coord.Task(id) }

// SortState returns the active sort.
func (m Model[K, R]) SortState() SortState { return m.sort }

// Filter returns the applied filter.
func (m Model[K, R]) Filter() FilterState { return m.filter }

// InputValue returns the search box text, which may be ahead of the applied
// query while typing.
func (m Model[K, R]) InputValue() string { return m.input.Value() }

// Searching reports whether the search box has focus.
func (m Model[K, R]) Searching() bool { return m.mode == modeSearch }

// Capturing reports whether the table is consuming keys for search or a
// picker, so the screen should not treat them as global shortcuts.
func (m Model[K, R]) Capturing() bool { return m.mode != modeBrowse }

// Notice returns the last local notice, such as a busy-row rejection.
func (m Model[K, R]) Notice() string { return m.notice }

// Cursor returns the selected visible row index.
func (m Model[K, R]) Cursor() int { return m.cursor }

// Visible returns the filtered and sorted rows. It is recomputed from the
// live record set on every call.
func (m Model[K, R]) Visible() []R {
	return Sort(Apply(m.records.All(), m.cfg.Matcher, m.filter), m.cfg.Columns, m.sort)
}

// Selected returns the record under the cursor.
func (m Model[K, R]) Selected() (R, bool) {
	rows := m.Visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		var zero R
		return zero, false
	}
	return rows[m.cursor], true
}

// SetSize sets the rendering area.
func (m *Model[K, R]) SetSize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.clamp()
}

// SetTop sets the screen row the table is drawn at, for mouse hit testing.
func (m *Model[K, R]) SetTop(y int) { m.top = y }

// SetDebounce changes the search quiescence window.
func (m *Model[K, R]) SetDebounce(d time.Duration) { m.debouncer.SetWindow(d) }

// SetTimeout changes the per-call timeout of later remote operations.
func (m *Model[K, R]) SetTimeout(d time.Duration) {
	m.cfg.Timeout = d
	m.coord.SetTimeout(d)
}

// ClickHeader applies a header click on column key. Unknown and unsortable
// columns are ignored. It never calls the collection.
func (m *Model[K, R]) ClickHeader(key string) {
	if c, ok := columnByKey(m.cfg.Columns, key); !ok || !c.Sortable() {
		return
	}
	m.sort = m.sort.Click(key)
}

// ToggleTag toggles one tag filter and applies it immediately.
func (m *Model[K, R]) ToggleTag(tag string) tea.Cmd {
	m.filter = m.filter.Toggle(tag)
	m.clamp()
	return m.searchCmd()
}

// ToggleAllTags selects every declared tag, or clears them all.
func (m *Model[K, R]) ToggleAllTags() tea.Cmd {
	m.filter = m.filter.ToggleAll(m.cfg.Filters)
	m.clamp()
	return m.searchCmd()
}

// SetQuery sets the search box text and applies it without debouncing.
func (m *Model[K, R]) SetQuery(q string) tea.Cmd {
	m.debouncer.Cancel()
	m.input.SetValue(q)
	m.filter.Query = q
	m.clamp()
	return m.searchCmd()
}

// BeginUpdate starts a remote update of row id. See Coordinator.BeginUpdate.
func (m *Model[K, R]) BeginUpdate(id K, patch collection.Patch) (tea.Cmd, error) {
	return m.started(m.coord.BeginUpdate(id, patch))
}

// BeginStatusChange starts a remote status change of row id.
func (m *Model[K, R]) BeginStatusChange(id K, status string) (tea.Cmd, error) {
	return m.started(m.coord.BeginStatusChange(id, status))
}

// BeginDelete starts a remote delete of row id.
func (m *Model[K, R]) BeginDelete(id K) (tea.Cmd, error) {
	return m.started(m.coord.BeginDelete(id))
}

func (m *Model[K, R]) started(cmd tea.Cmd, err error) (tea.Cmd, error) {
	if err != nil {
		m.notice = err.Error()
		return nil, err
	}
	if cmd == nil {
		return nil, nil
	}
	m.notice = ""
	return tea.Batch(cmd, m.spinner.Tick), nil
}

// Close tears the table down: pending searches are dropped and completions
// of in-flight operations are discarded on arrival.
func (m *Model[K, R]) Close() {
	m.debouncer.Cancel()
	m.coord.Close()
}

func (m Model[K, R]) searchCmd() tea.Cmd {
	if m.cfg.OnSearch == nil {
		return nil
	}
	return m.cfg.OnSearch(m.filter.Query, m.filter.Tags())
}

func (m Model[K, R]) rowError(id string, op string, err error) tea.Cmd {
	msg := RowErrorMsg{Table: m.cfg.Name, ID: id, Op: op, Err: err}
	return func() tea.Msg { return msg }
}

func (m Model[K, R]) animating() bool {
	return !m.records.Loaded() || m.coord.AnyBusy()
}

// Update handles table messages and keys.
func (m Model[K, R]) Update(msg tea.Msg) (Model[K, R], tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg[R]:
		if msg.Owner != m.owner {
			return m, nil
		}
		if msg.Err != nil {
			m.records.Fail(msg.Err)
			debug.Log("table %s: load failed: %v", m.cfg.Name, msg.Err)
			return m, m.rowError("", "load", &RemoteError{Op: "load", ID: m.cfg.Name, Err: msg.Err})
		}
		m.records.Load(msg.Records)
		m.clamp()
		return m, nil

	case CreatedMsg[R]:
		if msg.Owner != m.owner {
			return m, nil
		}
		if msg.Err != nil {
			if ve, ok := asValidation(msg.Err); ok {
				return m, m.rowError("", "create", ve)
			}
			return m, m.rowError("", "create", &RemoteError{Op: "create", ID: m.cfg.Name, Err: msg.Err})
		}
		m.records.Append(msg.Record)
		m.clamp()
		return m, nil

	case SearchSettledMsg:
		q, ok := m.debouncer.Settle(msg)
		if !ok {
			return m, nil
		}
		m.filter.Query = q
		m.clamp()
		return m, m.searchCmd()

	case MutationSettledMsg[K, R]:
		if msg.Owner != m.owner {
			return m, nil
		}
		err := m.coord.Settle(msg)
		switch {
		case err == nil:
			m.clamp()
			if msg.Kind == TaskDeleting && m.cfg.OnDelete != nil {
				return m, m.cfg.OnDelete(msg.Record)
			}
			return m, nil
		case errors.Is(err, ErrStaleCompletion):
			return m, nil
		default:
			op := "update"
			if msg.Kind == TaskDeleting {
				op = "delete"
			}
			return m, m.rowError(fmt.Sprint(msg.ID), op, err)
		}

	case spinner.TickMsg:
		if !m.animating() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model[K, R]) handleKey(msg tea.KeyMsg) (Model[K, R], tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilter:
		return m.handleFilterKey(msg)
	case modeStatus:
		return m.handleStatusKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if n := int(s[0] - '1'); n < len(m.cfg.Columns) {
			m.ClickHeader(m.cfg.Columns[n].Key)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.bodyHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.bodyHeight())
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.records.All()))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.records.All()))
	case key.Matches(msg, m.keys.Select):
		if rec, ok := m.Selected(); ok && m.cfg.OnRowClick != nil {
			return m, m.cfg.OnRowClick(rec)
		}
	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.actionable(); ok {
			return m, m.cfg.OnEdit(rec)
		}
	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.actionable(); ok {
			m.confirmID = m.cfg.ID(rec)
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.Status):
		if rec, ok := m.actionable(); ok {
			m.pickerCursor = 0
			if m.cfg.StatusOf != nil {
				if i := slices.Index(m.cfg.StatusOptions, m.cfg.StatusOf(rec)); i >= 0 {
					m.pickerCursor = i
				}
			}
			m.mode = modeStatus
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.pickerCursor = 0
		m.mode = modeFilter
	case key.Matches(msg, m.keys.ToggleAll):
		return m, m.ToggleAllTags()
	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(m.Load(), m.spinner.Tick)
	case key.Matches(msg, m.keys.Back):
		if m.filter.Query != "" || m.input.Value() != "" {
			return m, m.SetQuery("")
		}
	}
	return m, nil
}

// actionable returns the selected record if row actions may start on it.
// Disabled bindings never match, so the callback is known to be set.
func (m *Model[K, R]) actionable() (R, bool) {
	rec, ok := m.Selected()
	if !ok {
		return rec, false
	}
	if t := m.coord.Task(m.cfg.ID(rec)); t.Busy() {
		m.notice = (&ConflictError{ID: m.cfg.ID(rec), Busy: t.Kind}).Error()
		return rec, false
	}
	return rec, true
}

func (m Model[K, R]) handleSearchKey(msg tea.KeyMsg) (Model[K, R], tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, tea.Batch(cmd, m.debouncer.Keystroke(after))
	}
	return m, cmd
}

func (m Model[K, R]) handleFilterKey(msg tea.KeyMsg) (Model[K, R], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerCursor < len(m.cfg.Filters)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.pickerCursor < len(m.cfg.Filters) {
			return m, m.ToggleTag(m.cfg.Filters[m.pickerCursor])
		}
	case key.Matches(msg, m.keys.ToggleAll):
		return m, m.ToggleAllTags()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Filter):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model[K, R]) handleStatusKey(msg tea.KeyMsg) (Model[K, R], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerCursor < len(m.cfg.StatusOptions)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.mode = modeBrowse
		rec, ok := m.Selected()
		if !ok {
			return m, nil
		}
		cmd, _ := m.BeginStatusChange(m.cfg.ID(rec), m.cfg.StatusOptions[m.pickerCursor])
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model[K, R]) handleConfirmKey(msg tea.KeyMsg) (Model[K, R], tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBrowse
		cmd, _ := m.BeginDelete(m.confirmID)
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model[K, R]) handleMouse(msg tea.MouseMsg) (Model[K, R], tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.move(-1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.move(1)
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.mode != modeBrowse {
		return m, nil
	}

	rows := m.Visible()
	y := msg.Y - m.top - m.chromeLines()
	if y == 0 {
		if col := m.columnAt(msg.X, m.widths(rows)); col != "" {
			m.ClickHeader(col)
		}
		return m, nil
	}
	h := m.bodyHeight()
	if i := m.offset + y - 1; y > 0 && i < len(rows) && (h == 0 || y <= h) {
		m.cursor = i
		if m.cfg.OnRowClick != nil {
			return m, m.cfg.OnRowClick(rows[i])
		}
	}
	return m, nil
}

func (m *Model[K, R]) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *Model[K, R]) clamp() {
	n := len(m.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if h > 0 && m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model[K, R]) hasActions() bool {
	return m.cfg.OnEdit != nil || m.cfg.OnDelete != nil || len(m.cfg.StatusOptions) > 0
}

// chromeLines is the number of lines above the header.
func (m Model[K, R]) chromeLines() int {
	n := 0
	if m.cfg.Name != "" {
		n++
	}
	if m.showBar() {
		n++
	}
	return n
}

func (m Model[K, R]) showBar() bool {
	return m.mode == modeSearch || m.input.Value() != "" || len(m.filter.Selected) > 0
}

func (m Model[K, R]) footerLines() int {
	switch m.mode {
	case modeFilter:
		return len(m.cfg.Filters) + 2
	case modeStatus:
		return len(m.cfg.StatusOptions) + 2
	default:
		return 2
	}
}

// bodyHeight is the number of row lines, or 0 for unbounded.
func (m Model[K, R]) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - m.chromeLines() - 1 - m.footerLines()
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model[K, R]) widths(rows []R) []int {
	widths := make([]int, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		if c.Width > 0 {
			widths[i] = c.Width
			continue
		}
		w := runewidth.StringWidth(c.Header) + 2
		for _, r := range rows {
			if cw := runewidth.StringWidth(c.Cell(r)); cw > w {
				w = cw
			}
		}
		widths[i] = min(w, maxAutoWidth)
	}
	return widths
}

func (m Model[K, R]) columnAt(x int, widths []int) string {
	pos := 2
	for i, w := range widths {
		if x >= pos && x < pos+w {
			return m.cfg.Columns[i].Key
		}
		pos += w + 1
	}
	return ""
}

func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// View renders the table.
func (m Model[K, R]) View() string {
	defer metrics.Timer(metrics.TableRender)()

	rows := m.Visible()
	widths := m.widths(rows)
	var lines []string

	if m.cfg.Name != "" {
		count := fmt.Sprintf(" %d/%d", len(rows), m.records.Len())
		lines = append(lines, m.styles.Title.Render(m.cfg.Name)+m.styles.Muted.Render(count))
	}
	if m.showBar() {
		bar := m.input.View()
		if tags := m.filter.Tags(); len(tags) > 0 {
			bar += m.styles.Bar.Render("  tags: " + strings.Join(tags, ", "))
		}
		lines = append(lines, bar)
	}
	lines = append(lines, m.renderHeader(widths))
	lines = append(lines, m.renderBody(rows, widths)...)
	lines = append(lines, m.renderFooter()...)

	out := strings.Join(lines, "\n")
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func (m Model[K, R]) renderHeader(widths []int) string {
	parts := make([]string, 0, len(widths)+1)
	for i, c := range m.cfg.Columns {
		label := c.Header
		style := m.styles.Header
		if m.sort.Column == c.Key {
			label += " " + m.sort.Direction.Indicator()
			style = m.styles.HeaderActive
		}
		parts = append(parts, style.Render(cell(label, widths[i])))
	}
	if m.hasActions() {
		parts = append(parts, m.styles.Header.Render(cell("", actionsWidth)))
	}
	return "  " + strings.Join(parts, " ")
}

func (m Model[K, R]) renderBody(rows []R, widths []int) []string {
	switch {
	case !m.records.Loaded() && m.records.Err() != nil:
		return []string{m.styles.Error.Render("  ✗ " + m.nameOr("records") + ": load failed (r to retry)")}
	case !m.records.Loaded():
		return []string{"  " + m.spinner.View() + m.styles.Muted.Render(" Loading…")}
	case m.records.Len() == 0:
		return []string{m.styles.Muted.Render("  " + m.cfg.EmptyText)}
	case len(rows) == 0:
		return []string{m.styles.Muted.Render("  No records match the current search")}
	}

	end := len(rows)
	if h := m.bodyHeight(); h > 0 && m.offset+h < end {
		end = m.offset + h
	}
	out := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		out = append(out, m.renderRow(rows[i], widths, i == m.cursor))
	}
	return out
}

func (m Model[K, R]) nameOr(fallback string) string {
	if m.cfg.Name != "" {
		return strings.ToLower(m.cfg.Name)
	}
	return fallback
}

func (m Model[K, R]) renderRow(r R, widths []int, selected bool) string {
	parts := make([]string, 0, len(widths)+1)
	for i, c := range m.cfg.Columns {
		parts = append(parts, cell(c.Cell(r), widths[i]))
	}
	line := strings.Join(parts, " ")

	marker := "  "
	if selected {
		marker = "▸ "
	}
	if selected {
		line = m.styles.Selected.Render(line)
	} else {
		line = m.styles.Cell.Render(line)
	}
	if !m.hasActions() {
		return marker + line
	}
	return marker + line + " " + m.renderActions(r, selected)
}

func (m Model[K, R]) renderActions(r R, selected bool) string {
	t := m.coord.Task(m.cfg.ID(r))
	switch {
	case t.Busy():
		return m.spinner.View() + m.styles.Busy.Render(" "+t.Kind.String()+"…")
	case t.Err != nil:
		return m.styles.Error.Render(cell("✗ failed", actionsWidth))
	case selected:
		var hints []string
		for _, b := range []key.Binding{m.keys.Edit, m.keys.Delete, m.keys.Status} {
			if b.Enabled() {
				hints = append(hints, b.Help().Key)
			}
		}
		return m.styles.Muted.Render(cell(strings.Join(hints, " "), actionsWidth))
	default:
		return cell("", actionsWidth)
	}
}

func (m Model[K, R]) renderFooter() []string {
	var lines []string
	switch m.mode {
	case modeFilter:
		lines = append(lines, m.styles.Title.Render("Filter (space toggle, a all/none, esc close)"))
		for i, tag := range m.cfg.Filters {
			box := "[ ]"
			if m.filter.IsSelected(tag) {
				box = "[x]"
			}
			prefix := "  "
			if i == m.pickerCursor {
				prefix = "▸ "
			}
			lines = append(lines, prefix+box+" "+tag)
		}
	case modeStatus:
		lines = append(lines, m.styles.Title.Render("Set status (enter apply, esc close)"))
		for i, s := range m.cfg.StatusOptions {
			prefix := "  "
			if i == m.pickerCursor {
				prefix = "▸ "
			}
			lines = append(lines, prefix+s)
		}
	case modeConfirmDelete:
		lines = append(lines, m.styles.Notice.Render(fmt.Sprintf("Delete %v? (y/n)", m.confirmID)))
	default:
		lines = append(lines, m.styles.Notice.Render(m.notice))
	}
	return append(lines, m.help.View(m.keys))
}
