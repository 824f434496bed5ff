package collection

import (
	"context"
	"errors"
	"time"

	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/metrics"
)

// Timed wraps a Sync and records per-operation latency in the metrics
// registry. Failed calls count as failures.
type Timed[K comparable, R any] struct {
	inner Sync[K, R]
	name  string
}

// WithTiming wraps s. name labels debug output.
func WithTiming[K comparable, R any](name string, s Sync[K, R]) *Timed[K, R] {
	return &Timed[K, R]{inner: s, name: name}
}

// Unwrap returns the wrapped collection.
func (t *Timed[K, R]) Unwrap() Sync[K, R] { return t.inner }

func (t *Timed[K, R]) List(ctx context.Context) ([]R, error) {
	start := time.Now()
	out, err := t.inner.List(ctx)
	t.record(metrics.CollectionList, "list", start, err)
	return out, err
}

func (t *Timed[K, R]) Create(ctx context.Context, p Payload) (R, error) {
	start := time.Now()
	out, err := t.inner.Create(ctx, p)
	t.record(metrics.CollectionCreate, "create", start, err)
	return out, err
}

func (t *Timed[K, R]) Update(ctx context.Context, id K, patch Patch) (R, error) {
	start := time.Now()
	out, err := t.inner.Update(ctx, id, patch)
	if errors.Is(err, ErrAcknowledged) {
		t.record(metrics.CollectionUpdate, "update", start, nil)
		return out, err
	}
	t.record(metrics.CollectionUpdate, "update", start, err)
	return out, err
}

func (t *Timed[K, R]) Delete(ctx context.Context, id K) error {
	start := time.Now()
	err := t.inner.Delete(ctx, id)
	t.record(metrics.CollectionDelete, "delete", start, err)
	return err
}

func (t *Timed[K, R]) record(m *metrics.TimingMetric, op string, start time.Time, err error) {
	d := time.Since(start)
	m.Record(d)
	if err != nil {
		m.RecordFailure()
		debug.Log("%s %s failed after %v: %v", t.name, op, d, err)
		return
	}
	debug.LogTiming(t.name+" "+op, d)
}
