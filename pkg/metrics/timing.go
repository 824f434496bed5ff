// Package metrics provides performance instrumentation for casedesk.
//
// Timing metrics cover the remote collection calls (list, create, update,
// delete) and table rendering. Metrics are collected in-memory with atomic
// operations and can be disabled via CASEDESK_METRICS=0.
//
// Usage:
//
//	func (c *Client) List(ctx context.Context) ([]Case, error) {
//	    defer metrics.Timer(metrics.CollectionList)()
//	    // ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

// enabled controls whether metrics are collected.
var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CASEDESK_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric tracks timing statistics for a named operation.
// All methods are safe for concurrent use.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	failed  atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 means not set
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record records a single timing measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()

	m.count.Add(1)
	m.totalNs.Add(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordFailure counts a failed operation. Failed calls are still timed
// through Record; this only tracks how many of them there were.
func (m *TimingMetric) RecordFailure() {
	if !Enabled() {
		return
	}
	m.failed.Add(1)
}

// Name returns the metric name.
func (m *TimingMetric) Name() string {
	return m.name
}

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 {
	return m.count.Load()
}

// Failures returns how many recorded operations failed.
func (m *TimingMetric) Failures() int64 {
	return m.failed.Load()
}

// AvgNs returns the average time in nanoseconds, 0 without measurements.
func (m *TimingMetric) AvgNs() int64 {
	count := m.count.Load()
	if count == 0 {
		return 0
	}
	return m.totalNs.Load() / count
}

// Stats returns all timing statistics at once.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	totalNs := m.totalNs.Load()

	var avgNs int64
	if count > 0 {
		avgNs = totalNs / count
	}

	return TimingStats{
		Name:     m.name,
		Count:    count,
		Failures: m.failed.Load(),
		TotalMs:  float64(totalNs) / 1e6,
		AvgMs:    float64(avgNs) / 1e6,
		MaxMs:    float64(m.maxNs.Load()) / 1e6,
		MinMs:    float64(m.minNs.Load()) / 1e6,
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.failed.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name     string  `json:"name"`
	Count    int64   `json:"count"`
	Failures int64   `json:"failures,omitempty"`
	TotalMs  float64 `json:"total_ms"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	MinMs    float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records elapsed time when called.
//
//	defer metrics.Timer(metrics.CollectionUpdate)()
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// TimerWithCallback returns a function that records elapsed time
// and also calls the provided callback with the duration.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Global timing metrics.
var (
	CollectionList   = newTimingMetric("collection_list")
	CollectionCreate = newTimingMetric("collection_create")
	CollectionUpdate = newTimingMetric("collection_update")
	CollectionDelete = newTimingMetric("collection_delete")
	StartupLoad      = newTimingMetric("startup_load")
	TableRender      = newTimingMetric("table_render")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		CollectionList,
		CollectionCreate,
		CollectionUpdate,
		CollectionDelete,
		StartupLoad,
		TableRender,
	}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for all timing metrics that have data.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
