package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")

	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.RecordFailure()

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}
	if s.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", s.Failures)
	}
	if s.MinMs != 2 || s.MaxMs != 4 {
		t.Errorf("expected min 2ms max 4ms, got %v/%v", s.MinMs, s.MaxMs)
	}
	if s.AvgMs != 3 {
		t.Errorf("expected avg 3ms, got %v", s.AvgMs)
	}
}

func TestTimingMetricConcurrent(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(time.Millisecond)
		}()
	}
	wg.Wait()

	if m.Count() != 50 {
		t.Fatalf("expected 50 measurements, got %d", m.Count())
	}
}

func TestDisabledSkipsRecording(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	if m.Count() != 0 {
		t.Fatalf("expected no measurements while disabled, got %d", m.Count())
	}
}

func TestAllTimingStatsOnlyWithData(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	CollectionDelete.Record(time.Millisecond)

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "collection_delete" {
		t.Fatalf("expected only collection_delete, got %+v", stats)
	}
	ResetAll()
}
