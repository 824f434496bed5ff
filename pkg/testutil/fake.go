package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanderheijden86/casedesk/pkg/collection"
)

// Call is one recorded FakeSync invocation.
type Call struct {
	Op    string
	ID    any
	Patch collection.Patch
}

// FakeSync is an in-memory collection.Sync with scriptable failures and an
// optional gate that holds calls until released.
type FakeSync[K comparable, R any] struct {
	mu      sync.Mutex
	id      func(R) K
	records []R
	calls   []Call

	listErr    error
	updateErrs map[K]error
	deleteErrs map[K]error
	create     func(collection.Payload) (R, error)
	ack        bool
	gate       chan struct{}
}

var errUnknownRecord = errors.New("fake: unknown record")

// NewFakeSync returns a fake holding records, keyed by id.
func NewFakeSync[K comparable, R any](id func(R) K, records ...R) *FakeSync[K, R] {
	return &FakeSync[K, R]{
		id:         id,
		records:    append([]R(nil), records...),
		updateErrs: map[K]error{},
		deleteErrs: map[K]error{},
	}
}

// FailList makes List return err.
func (f *FakeSync[K, R]) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// FailUpdate makes updates of id return err.
func (f *FakeSync[K, R]) FailUpdate(id K, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErrs[id] = err
}

// FailDelete makes deletes of id return err.
func (f *FakeSync[K, R]) FailDelete(id K, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErrs[id] = err
}

// Acknowledge makes successful updates return collection.ErrAcknowledged
// instead of the record, like the cases endpoint.
func (f *FakeSync[K, R]) Acknowledge() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ack = true
}

// OnCreate sets the Create implementation.
func (f *FakeSync[K, R]) OnCreate(fn func(collection.Payload) (R, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.create = fn
}

// Hold blocks every later call until the returned release is called.
func (f *FakeSync[K, R]) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns the recorded calls in order.
func (f *FakeSync[K, R]) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many calls of op were made.
func (f *FakeSync[K, R]) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Records returns the fake's current contents.
func (f *FakeSync[K, R]) Records() []R {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]R(nil), f.records...)
}

func (f *FakeSync[K, R]) enter(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate := f.gate
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return &collection.NetworkError{Op: c.Op, URL: "fake", Err: ctx.Err()}
	}
}

func (f *FakeSync[K, R]) indexOf(id K) int {
	for i, r := range f.records {
		if f.id(r) == id {
			return i
		}
	}
	return -1
}

func (f *FakeSync[K, R]) List(ctx context.Context) ([]R, error) {
	if err := f.enter(ctx, Call{Op: "list"}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]R{}, f.records...), nil
}

func (f *FakeSync[K, R]) Create(ctx context.Context, p collection.Payload) (R, error) {
	var zero R
	if err := f.enter(ctx, Call{Op: "create"}); err != nil {
		return zero, err
	}
	f.mu.Lock()
	create := f.create
	f.mu.Unlock()
	if create == nil {
		return zero, fmt.Errorf("fake: create not scripted")
	}
	rec, err := create(p)
	if err != nil {
		return zero, err
	}
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	return rec, nil
}

func (f *FakeSync[K, R]) Update(ctx context.Context, id K, patch collection.Patch) (R, error) {
	var zero R
	if err := f.enter(ctx, Call{Op: "update", ID: id, Patch: patch}); err != nil {
		return zero, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[id]; err != nil {
		return zero, err
	}
	i := f.indexOf(id)
	if i < 0 {
		return zero, &collection.ServerError{Op: "update", URL: "fake", StatusCode: 404, Detail: errUnknownRecord.Error()}
	}
	merged, err := collection.MergePatch(f.records[i], patch)
	if err != nil {
		return zero, err
	}
	f.records[i] = merged
	if f.ack {
		return zero, collection.ErrAcknowledged
	}
	return merged, nil
}

func (f *FakeSync[K, R]) Delete(ctx context.Context, id K) error {
	if err := f.enter(ctx, Call{Op: "delete", ID: id}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErrs[id]; err != nil {
		return err
	}
	i := f.indexOf(id)
	if i < 0 {
		return &collection.ServerError{Op: "delete", URL: "fake", StatusCode: 404, Detail: errUnknownRecord.Error()}
	}
	f.records = append(f.records[:i], f.records[i+1:]...)
	return nil
}
