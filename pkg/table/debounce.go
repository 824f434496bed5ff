package table

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDebounce is how long typing must pause before the query is
// applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchSettledMsg is delivered when a keystroke's quiescence window ends.
// Only the message carrying the debouncer's latest sequence is applied.
type SearchSettledMsg struct {
	Owner uint64
	Seq   uint64
	Query string
}

// Debouncer defers query evaluation until typing pauses. Every keystroke
// supersedes the previous one; earlier ticks still fire but are ignored.
type Debouncer struct {
	owner   uint64
	window  time.Duration
	seq     uint64
	pending bool
}

// NewDebouncer returns a debouncer whose messages carry owner. A
// non-positive window uses DefaultSearchDebounce.
func NewDebouncer(owner uint64, window time.Duration) *Debouncer {
	d := &Debouncer{owner: owner}
	d.SetWindow(window)
	return d
}

// Window returns the quiescence window.
func (d *Debouncer) Window() time.Duration { return d.window }

// SetWindow changes the window for later keystrokes.
func (d *Debouncer) SetWindow(w time.Duration) {
	if w <= 0 {
		w = DefaultSearchDebounce
	}
	d.window = w
}

// Pending reports whether a keystroke is waiting for its window to end.
func (d *Debouncer) Pending() bool { return d.pending }

// Keystroke records value as the latest input and schedules its settlement.
func (d *Debouncer) Keystroke(value string) tea.Cmd {
	d.seq++
	d.pending = true
	seq, owner := d.seq, d.owner
	return tea.Tick(d.window, func(time.Time) tea.Msg {
		return SearchSettledMsg{Owner: owner, Seq: seq, Query: value}
	})
}

// Settle returns the query to apply if msg is the latest keystroke's
// settlement.
func (d *Debouncer) Settle(msg SearchSettledMsg) (string, bool) {
	if msg.Owner != d.owner || msg.Seq != d.seq || !d.pending {
		return "", false
	}
	d.pending = false
	return msg.Query, true
}

// Cancel drops any pending settlement.
func (d *Debouncer) Cancel() {
	d.seq++
	d.pending = false
}
