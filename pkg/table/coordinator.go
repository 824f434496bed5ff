package table

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/debug"
)

// TaskKind is the operation in flight on a row.
type TaskKind int

const (
	TaskIdle TaskKind = iota
	TaskUpdating
	TaskDeleting
)

func (k TaskKind) String() string {
	switch k {
	case TaskUpdating:
		return "updating"
	case TaskDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// RowTask is the per-row operation state. Err is the last failure and stays
// until the next successful operation on the row.
type RowTask struct {
	Kind TaskKind
	Err  error
}

// Busy reports whether an operation is in flight.
func (t RowTask) Busy() bool { return t.Kind != TaskIdle }

// MutationSettledMsg carries the outcome of an update or delete back to the
// event loop.
type MutationSettledMsg[K comparable, R any] struct {
	Owner      uint64
	Generation uint64
	ID         K
	Kind       TaskKind
	Patch      collection.Patch
	// Record is the updated record, or the deleted record's last state.
	Record R
	Err    error
}

// Coordinator tracks per-row operations against a collection. Begin* and
// Settle must be called from the event loop; only the returned commands run
// elsewhere.
type Coordinator[K comparable, R any] struct {
	owner      uint64
	sync       collection.Sync[K, R]
	records    *RecordSet[K, R]
	tasks      map[K]RowTask
	generation uint64
	timeout    time.Duration
}

// NewCoordinator returns a coordinator applying results to records. A
// positive timeout bounds each remote call.
func NewCoordinator[K comparable, R any](owner uint64, sync collection.Sync[K, R], records *RecordSet[K, R], timeout time.Duration) *Coordinator[K, R] {
	return &Coordinator[K, R]{
		owner:   owner,
		sync:    sync,
		records: records,
		tasks:   map[K]RowTask{},
		timeout: timeout,
	}
}

// Task returns the state of row id.
func (c *Coordinator[K, R]) Task(id K) RowTask {
	return c.tasks[id]
}

// AnyBusy reports whether any row has an operation in flight.
func (c *Coordinator[K, R]) AnyBusy() bool {
	for _, t := range c.tasks {
		if t.Busy() {
			return true
		}
	}
	return false
}

// Generation returns the current generation.
func (c *Coordinator[K, R]) Generation() uint64 { return c.generation }

// SetTimeout changes the per-call timeout for later operations.
func (c *Coordinator[K, R]) SetTimeout(d time.Duration) { c.timeout = d }

// Close discards all row state. Completions of operations begun before Close
// are dropped when they arrive.
func (c *Coordinator[K, R]) Close() {
	c.generation++
	c.tasks = map[K]RowTask{}
}

func (c *Coordinator[K, R]) guard(id K) error {
	if t := c.tasks[id]; t.Busy() {
		return &ConflictError{ID: id, Busy: t.Kind}
	}
	return nil
}

// BeginUpdate starts a remote update of row id. It fails with a
// ConflictError if the row is busy and with a ValidationError for an empty
// patch. An id not in the record set is a no-op.
func (c *Coordinator[K, R]) BeginUpdate(id K, patch collection.Patch) (tea.Cmd, error) {
	if err := c.guard(id); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if !c.records.Has(id) {
		return nil, nil
	}
	prev := c.tasks[id]
	c.tasks[id] = RowTask{Kind: TaskUpdating, Err: prev.Err}

	sync, owner, gen, timeout := c.sync, c.owner, c.generation, c.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		rec, err := sync.Update(ctx, id, patch)
		return MutationSettledMsg[K, R]{
			Owner: owner, Generation: gen, ID: id, Kind: TaskUpdating,
			Patch: patch, Record: rec, Err: err,
		}
	}, nil
}

// BeginStatusChange is BeginUpdate of the status field alone.
func (c *Coordinator[K, R]) BeginStatusChange(id K, status string) (tea.Cmd, error) {
	return c.BeginUpdate(id, collection.Patch{"status": status})
}

// BeginDelete starts a remote delete of row id. It fails with a
// ConflictError if the row is busy. An id not in the record set is a no-op,
// so repeating a delete that already succeeded does nothing.
func (c *Coordinator[K, R]) BeginDelete(id K) (tea.Cmd, error) {
	if err := c.guard(id); err != nil {
		return nil, err
	}
	snapshot, ok := c.records.Get(id)
	if !ok {
		return nil, nil
	}
	prev := c.tasks[id]
	c.tasks[id] = RowTask{Kind: TaskDeleting, Err: prev.Err}

	sync, owner, gen, timeout := c.sync, c.owner, c.generation, c.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		err := sync.Delete(ctx, id)
		return MutationSettledMsg[K, R]{
			Owner: owner, Generation: gen, ID: id, Kind: TaskDeleting,
			Record: snapshot, Err: err,
		}
	}, nil
}

// Settle applies a completed operation. It returns nil on success, a
// *RemoteError when the remote call failed (the record is left as it was),
// and ErrStaleCompletion when msg belongs to a closed generation or to an
// operation the coordinator no longer tracks.
func (c *Coordinator[K, R]) Settle(msg MutationSettledMsg[K, R]) error {
	if msg.Owner != c.owner || msg.Generation != c.generation {
		debug.Log("table: dropping %s completion for %v (generation %d, current %d)",
			msg.Kind, msg.ID, msg.Generation, c.generation)
		return ErrStaleCompletion
	}
	task, ok := c.tasks[msg.ID]
	if !ok || task.Kind != msg.Kind {
		debug.Log("table: dropping untracked %s completion for %v", msg.Kind, msg.ID)
		return ErrStaleCompletion
	}

	switch msg.Kind {
	case TaskUpdating:
		return c.settleUpdate(msg)
	default:
		return c.settleDelete(msg)
	}
}

func (c *Coordinator[K, R]) settleUpdate(msg MutationSettledMsg[K, R]) error {
	rec, err := msg.Record, msg.Err
	if errors.Is(err, collection.ErrAcknowledged) {
		rec, err = c.mergeCurrent(msg.ID, msg.Patch)
	}
	if err != nil {
		return c.fail(msg.ID, "update", err)
	}
	if c.records.ID(rec) != msg.ID {
		return c.fail(msg.ID, "update", fmt.Errorf("response is for record %v", c.records.ID(rec)))
	}
	c.records.Replace(rec)
	delete(c.tasks, msg.ID)
	return nil
}

func (c *Coordinator[K, R]) mergeCurrent(id K, patch collection.Patch) (R, error) {
	current, ok := c.records.Get(id)
	if !ok {
		var zero R
		return zero, fmt.Errorf("record %v no longer loaded", id)
	}
	return collection.MergePatch(current, patch)
}

func (c *Coordinator[K, R]) settleDelete(msg MutationSettledMsg[K, R]) error {
	if msg.Err != nil {
		return c.fail(msg.ID, "delete", msg.Err)
	}
	c.records.Remove(msg.ID)
	delete(c.tasks, msg.ID)
	return nil
}

func (c *Coordinator[K, R]) fail(id K, op string, err error) error {
	rerr := &RemoteError{Op: op, ID: id, Err: err}
	c.tasks[id] = RowTask{Kind: TaskIdle, Err: rerr}
	debug.Log("table: %v", rerr)
	return rerr
}
