package table

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/testutil"
)

type caseRow struct {
	ID       int      `json:"id"`
	Status   string   `json:"status"`
	Keywords []string `json:"keywords"`
}

func caseRowID(r caseRow) int { return r.ID }

var caseColumns = []Column[caseRow]{
	{Key: "id", Header: "ID", Value: func(r caseRow) any { return r.ID }},
	{Key: "status", Header: "Status", Value: func(r caseRow) any { return r.Status }},
	{Key: "keywords", Header: "Keywords", Render: func(_ any, r caseRow) string { return strings.Join(r.Keywords, ", ") }},
}

type selectedMsg struct{ rec caseRow }
type searchedMsg struct {
	query string
	tags  []string
}
type deletedMsg struct{ rec caseRow }

// harness drives a table the way the bubbletea runtime would, running
// commands and feeding their messages back into Update.
type harness struct {
	t        *testing.T
	m        Model[int, caseRow]
	fake     *testutil.FakeSync[int, caseRow]
	errs     []RowErrorMsg
	selected []caseRow
	searches []searchedMsg
	deleted  []caseRow
}

func newHarness(t *testing.T, records ...caseRow) *harness {
	t.Helper()
	h := &harness{t: t, fake: testutil.NewFakeSync(caseRowID, records...)}
	h.m = New(Config[int, caseRow]{
		Name:    "Cases",
		Columns: caseColumns,
		ID:      caseRowID,
		Sync:    h.fake,
		Matcher: Matcher[caseRow]{
			Searchable: func(r caseRow) []string { return append([]string{r.Status}, r.Keywords...) },
			Classify:   func(r caseRow) []string { return []string{r.Status} },
		},
		Filters:    []string{"open", "pending", "resolved"},
		OnRowClick: func(r caseRow) tea.Cmd { return func() tea.Msg { return selectedMsg{r} } },
		OnEdit:     func(r caseRow) tea.Cmd { return nil },
		OnDelete:   func(r caseRow) tea.Cmd { return func() tea.Msg { return deletedMsg{r} } },
		OnSearch: func(q string, tags []string) tea.Cmd {
			return func() tea.Msg { return searchedMsg{q, tags} }
		},
		StatusOptions: []string{"open", "pending", "resolved"},
		StatusOf:      func(r caseRow) string { return r.Status },
		Debounce:      5 * time.Millisecond,
	})
	return h
}

func (h *harness) load() {
	h.t.Helper()
	h.run(h.m.Load())
	if !h.m.Records().Loaded() {
		h.t.Fatal("records not loaded")
	}
}

// drain runs cmd and flattens batches, keeping batch order. Commands that do
// not finish quickly (cursor blink) are ignored.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			results := make([][]tea.Msg, len(batch))
			var wg sync.WaitGroup
			for i, c := range batch {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i] = drain(c)
				}()
			}
			wg.Wait()
			var out []tea.Msg
			for _, r := range results {
				out = append(out, r...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		switch msg := msg.(type) {
		case RowErrorMsg:
			h.errs = append(h.errs, msg)
		case selectedMsg:
			h.selected = append(h.selected, msg.rec)
		case searchedMsg:
			h.searches = append(h.searches, msg)
		case deletedMsg:
			h.deleted = append(h.deleted, msg.rec)
		case LoadedMsg[caseRow], CreatedMsg[caseRow], SearchSettledMsg, MutationSettledMsg[int, caseRow]:
			h.run(h.send(msg))
		}
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(msg)
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.run(h.send(keyMsg(k)))
	}
}

func (h *harness) visibleIDs() []int {
	var ids []int
	for _, r := range h.m.Visible() {
		ids = append(ids, r.ID)
	}
	return ids
}

func (h *harness) visibleStatuses() []string {
	var out []string
	for _, r := range h.m.Visible() {
		out = append(out, r.Status)
	}
	return out
}

func scenarioRecords() []caseRow {
	return []caseRow{
		{ID: 1, Status: "open", Keywords: []string{"offshore", "wire"}},
		{ID: 2, Status: "pending", Keywords: []string{"gift card"}},
	}
}

func TestLoadingAndEmptyAreDistinct(t *testing.T) {
	h := newHarness(t)
	if !strings.Contains(h.m.View(), "Loading") {
		t.Fatalf("unloaded view should show loading row:\n%s", h.m.View())
	}
	h.load()
	view := h.m.View()
	if strings.Contains(view, "Loading") || !strings.Contains(view, "No records") {
		t.Fatalf("loaded empty view should show empty row:\n%s", view)
	}
}

func TestLoadFailureRendersErrorRow(t *testing.T) {
	h := newHarness(t)
	h.fake.FailList(&collection.ServerError{Op: "list", StatusCode: 500})
	h.run(h.m.Load())
	if h.m.Records().Loaded() {
		t.Fatal("failed load should leave the set unloaded")
	}
	if !strings.Contains(h.m.View(), "load failed") {
		t.Errorf("expected error row:\n%s", h.m.View())
	}
	if len(h.errs) != 1 || h.errs[0].Text() != "Cases: load failed" {
		t.Errorf("notifications = %+v", h.errs)
	}
}

func TestScenarioAHeaderClickSorts(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()

	h.press("2")
	if got := strings.Join(h.visibleStatuses(), ","); got != "open,pending" {
		t.Fatalf("ascending = %s", got)
	}
	h.press("2")
	if got := strings.Join(h.visibleStatuses(), ","); got != "pending,open" {
		t.Fatalf("descending = %s", got)
	}
	if !strings.Contains(h.m.View(), "Status ▼") {
		t.Errorf("header should show descending indicator:\n%s", h.m.View())
	}
	if len(h.fake.Calls()) != 1 {
		t.Errorf("sorting made remote calls: %+v", h.fake.Calls())
	}
}

func TestHeaderMouseClickSorts(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.m.SetTop(0)

	// Line 0 is the title, line 1 the header. "ID" occupies x=2..5.
	h.run(h.send(tea.MouseMsg{X: 3, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	if s := h.m.SortState(); s.Column != "id" || s.Direction != SortAscending {
		t.Fatalf("sort after header click = %+v", s)
	}
	h.run(h.send(tea.MouseMsg{X: 3, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	if len(h.selected) != 1 || h.selected[0].ID != 2 {
		t.Fatalf("row click selected %+v", h.selected)
	}
}

func TestScenarioBDebouncedSearch(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()

	h.press("/")
	if !h.m.Searching() {
		t.Fatal("expected search mode")
	}
	var pending []tea.Cmd
	for _, r := range "offshore" {
		pending = append(pending, h.send(keyMsg(string(r))))
	}
	if h.m.InputValue() != "offshore" {
		t.Fatalf("input = %q", h.m.InputValue())
	}
	if len(h.m.Visible()) != 2 {
		t.Fatal("filter applied before the debounce window elapsed")
	}

	h.run(tea.Batch(pending...))
	if ids := h.visibleIDs(); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("visible = %v, want [1]", ids)
	}
	if len(h.searches) != 1 || h.searches[0].query != "offshore" {
		t.Fatalf("searches = %+v, want one for offshore", h.searches)
	}

	h.press("esc", "esc")
	if len(h.m.Visible()) != 2 || h.m.Filter().Query != "" {
		t.Errorf("esc in browse mode should clear the search")
	}
}

func TestSearchUsesLiveRecordSet(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.press("/")
	cmd := h.send(keyMsg("w"))
	// A record arrives while the keystroke is pending.
	h.run(h.send(CreatedMsg[caseRow]{Owner: h.m.Owner(), Record: caseRow{ID: 3, Status: "new", Keywords: []string{"wire"}}}))
	h.run(cmd)
	if ids := h.visibleIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("visible = %v, want [1 3]", ids)
	}
}

func TestTagFilterAppliesImmediately(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()

	h.press("f", "down", "space")
	if ids := h.visibleIDs(); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("visible after selecting pending = %v", ids)
	}
	if len(h.searches) != 1 || len(h.searches[0].tags) != 1 || h.searches[0].tags[0] != "pending" {
		t.Fatalf("searches = %+v", h.searches)
	}
	h.press("a")
	if len(h.m.Filter().Selected) != 3 || len(h.m.Visible()) != 2 {
		t.Fatalf("select all: %v", h.m.Filter().Tags())
	}
	h.press("a", "esc")
	if len(h.m.Filter().Selected) != 0 || h.m.Capturing() {
		t.Fatalf("clear all / close: %v capturing=%v", h.m.Filter().Tags(), h.m.Capturing())
	}
}

func TestScenarioCDeleteThenRepeat(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()

	h.press("d")
	if !strings.Contains(h.m.View(), "Delete 1?") {
		t.Fatalf("expected confirmation:\n%s", h.m.View())
	}
	h.press("y")
	if ids := h.visibleIDs(); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("visible after delete = %v", ids)
	}
	if len(h.deleted) != 1 || h.deleted[0].ID != 1 {
		t.Errorf("OnDelete calls = %+v", h.deleted)
	}

	cmd, err := h.m.BeginDelete(1)
	if cmd != nil || err != nil {
		t.Fatalf("repeat delete = %v, %v; want no-op", cmd, err)
	}
	if h.fake.CallCount("delete") != 1 {
		t.Errorf("delete calls = %d", h.fake.CallCount("delete"))
	}
}

func TestScenarioDFailedUpdate(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.fake.FailUpdate(2, &collection.ServerError{Op: "update", StatusCode: 503})

	cmd, err := h.m.BeginUpdate(2, collection.Patch{"status": "resolved"})
	if err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	if !strings.Contains(h.m.View(), "updating") {
		t.Errorf("busy row should show indicator:\n%s", h.m.View())
	}
	h.run(cmd)

	rec, _ := h.m.Records().Get(2)
	if rec.Status != "pending" {
		t.Fatalf("record 2 = %+v, want pending", rec)
	}
	task := h.m.Task(2)
	var re *RemoteError
	if task.Busy() || !errors.As(task.Err, &re) {
		t.Fatalf("task = %+v", task)
	}
	if !strings.Contains(h.m.View(), "✗ failed") {
		t.Errorf("row should show error marker:\n%s", h.m.View())
	}
	if len(h.errs) != 1 || h.errs[0].Text() != "Cases 2: update failed" {
		t.Errorf("notifications = %+v", h.errs)
	}

	// Controls are re-enabled: the status picker opens and a retry is sent.
	h.fake.FailUpdate(2, nil)
	h.press("down", "s", "down", "enter")
	if rec, _ := h.m.Records().Get(2); rec.Status != "resolved" {
		t.Fatalf("retry via status picker left %+v", rec)
	}
	if h.m.Task(2).Err != nil {
		t.Error("successful retry should clear the error")
	}
}

func TestBusyRowIgnoresActions(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()

	first, err := h.m.BeginUpdate(1, collection.Patch{"status": "closed"})
	if err != nil {
		t.Fatalf("BeginUpdate: %v", err)
	}
	h.press("d")
	if h.m.Capturing() {
		t.Fatal("delete confirmation opened on a busy row")
	}
	if !strings.Contains(h.m.Notice(), "busy") {
		t.Errorf("notice = %q", h.m.Notice())
	}
	if _, err := h.m.BeginUpdate(1, collection.Patch{"status": "open"}); !errors.Is(err, ErrAlreadyBusy) {
		t.Fatalf("second update = %v", err)
	}
	h.run(first)
	if n := h.fake.CallCount("update"); n != 1 {
		t.Errorf("remote updates = %d, want 1", n)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.press("2")
	a, b := h.m.View(), h.m.View()
	if a != b {
		t.Fatal("rendering twice produced different output")
	}
	h.run(h.m.Load())
	if c := h.m.View(); c != a {
		t.Fatalf("reloading an unchanged set changed the view:\n%s\nvs\n%s", a, c)
	}
}

func TestCloseDropsLateCompletions(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	cmd, _ := h.m.BeginDelete(2)
	h.m.Close()
	h.run(cmd)
	if !h.m.Records().Has(2) {
		t.Error("completion after Close was applied")
	}
	if len(h.errs) != 0 {
		t.Errorf("stale completion surfaced: %+v", h.errs)
	}
}

func TestMessagesForOtherTablesIgnored(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	other := newHarness(t)
	h.run(h.send(LoadedMsg[caseRow]{Owner: other.m.Owner(), Records: scenarioRecords()}))
	if h.m.Records().Loaded() {
		t.Fatal("table applied another table's load")
	}
}

func TestUnsortableHeaderIgnored(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.press("3")
	if s := h.m.SortState(); s.Active() {
		t.Fatalf("render-only column became the sort column: %+v", s)
	}
	if strings.Contains(h.m.View(), "Keywords ▲") {
		t.Error("unsortable column shows a sort indicator")
	}
	if got := caseColumns[2].Cell(scenarioRecords()[0]); got != "offshore, wire" {
		t.Errorf("render-only cell = %q", got)
	}
}

func TestEnterReportsSelection(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.press("down", "enter")
	if len(h.selected) != 1 || h.selected[0].ID != 2 {
		t.Fatalf("selected = %+v", h.selected)
	}
}

func TestDisabledAffordances(t *testing.T) {
	fake := testutil.NewFakeSync(caseRowID, scenarioRecords()...)
	m := New(Config[int, caseRow]{Columns: caseColumns, ID: caseRowID, Sync: fake})
	m, _ = m.Update(LoadedMsg[caseRow]{Owner: m.Owner(), Records: scenarioRecords()})
	for _, k := range []string{"d", "s", "f", "e", "/"} {
		m, _ = m.Update(keyMsg(k))
		if m.Capturing() {
			t.Errorf("key %q opened a mode without its callback", k)
		}
	}
	if strings.Contains(m.View(), "delete") {
		t.Errorf("help should not offer delete:\n%s", m.View())
	}
	if strings.Contains(m.View(), "search...") {
		t.Errorf("search box shown without OnSearch:\n%s", m.View())
	}
}

func TestSearchEnabledWithCallback(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.press("/")
	if !h.m.Capturing() {
		t.Fatal("/ should open the search box when OnSearch is set")
	}
}

func TestCreateFieldErrorIsValidation(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.fake.OnCreate(func(collection.Payload) (caseRow, error) {
		return caseRow{}, fmt.Errorf("create keyword: %w", &model.ScoreError{Input: "lots"})
	})
	h.run(h.m.Create(collection.Payload{Fields: map[string]string{"score": "lots"}}))

	if len(h.errs) != 1 {
		t.Fatalf("errors = %+v", h.errs)
	}
	var ve *ValidationError
	if !errors.As(h.errs[0].Err, &ve) || ve.Field != "score" {
		t.Fatalf("expected ValidationError on score, got %v", h.errs[0].Err)
	}
	msg := UserMessage(h.errs[0].Err)
	if strings.Contains(msg, "failed") || !strings.Contains(msg, `"lots" is not a number`) {
		t.Errorf("user message = %q", msg)
	}
	if h.m.Records().Len() != 2 {
		t.Error("rejected create must not add a row")
	}
}

func TestCreateRemoteFailureStaysRemote(t *testing.T) {
	h := newHarness(t, scenarioRecords()...)
	h.load()
	h.fake.OnCreate(func(collection.Payload) (caseRow, error) {
		return caseRow{}, &collection.ServerError{Op: "create cases", StatusCode: 500, Detail: "boom"}
	})
	h.run(h.m.Create(collection.Payload{}))
	if len(h.errs) != 1 || UserMessage(h.errs[0].Err) != "create failed" {
		t.Fatalf("errors = %+v", h.errs)
	}
}
