package table

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

type pair struct {
	Key int
	Seq int
}

var pairColumns = []Column[pair]{
	{Key: "key", Header: "Key", Value: func(p pair) any { return p.Key }},
	{Key: "seq", Header: "Seq", Value: func(p pair) any { return p.Seq }},
	{Key: "label", Header: "Label"},
}

func TestSortStateClick(t *testing.T) {
	var s SortState
	s = s.Click("status")
	if s.Column != "status" || s.Direction != SortAscending {
		t.Fatalf("first click = %+v", s)
	}
	s = s.Click("status")
	if s.Direction != SortDescending {
		t.Fatalf("second click = %+v", s)
	}
	s = s.Click("status")
	if s.Direction != SortAscending {
		t.Fatalf("third click = %+v", s)
	}
	s = s.Click("status").Click("id")
	if s.Column != "id" || s.Direction != SortAscending {
		t.Fatalf("other column should reset to ascending, got %+v", s)
	}
}

func TestSortDirectionIndicator(t *testing.T) {
	if SortAscending.Indicator() != "▲" || SortDescending.Indicator() != "▼" {
		t.Error("unexpected indicators")
	}
	if SortAscending.Toggle() != SortDescending || SortDescending.Toggle() != SortAscending {
		t.Error("toggle should flip direction")
	}
}

func TestSortOrdersAndKeepsInput(t *testing.T) {
	in := []pair{{3, 0}, {1, 1}, {2, 2}, {1, 3}}
	got := Sort(in, pairColumns, SortState{Column: "key"})
	want := []pair{{1, 1}, {1, 3}, {2, 2}, {3, 0}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascending = %v, want %v", got, want)
		}
	}
	got = Sort(in, pairColumns, SortState{Column: "key", Direction: SortDescending})
	want = []pair{{3, 0}, {2, 2}, {1, 1}, {1, 3}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("descending = %v, want %v", got, want)
		}
	}
	if in[0] != (pair{3, 0}) {
		t.Error("Sort modified its input")
	}
}

func TestSortNoOpCases(t *testing.T) {
	in := []pair{{3, 0}, {1, 1}}
	for _, s := range []SortState{{}, {Column: "missing"}, {Column: "label"}} {
		got := Sort(in, pairColumns, s)
		if got[0] != in[0] || got[1] != in[1] {
			t.Errorf("Sort(%+v) reordered records: %v", s, got)
		}
	}
}

func TestCompareKinds(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	type named string
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", 1, 2, -1},
		{"mixed numbers", 2, 1.5, 1},
		{"uints", uint8(3), uint8(3), 0},
		{"strings", "open", "pending", -1},
		{"named strings", named("b"), named("a"), 1},
		{"times", t0.Add(time.Hour), t0, 1},
		{"bools", false, true, -1},
		{"nil after number", nil, 1, 1},
		{"nils", nil, (*int)(nil), 0},
		{"slice after string", []string{"a"}, "b", 1},
		{"string after number", "1", 1, 1},
		{"time after string", t0, "z", 1},
		{"nil pointer", (*int)(nil), 1, 1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Compare(%v, %v) = %d, want %d", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareIsTotalOrderProperty(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	values := []any{nil, -1, 0, 2.5, uint(3), "a", "b", t0, t0.Add(time.Minute), false, true, []string{"x"}}
	gen := rapid.SampledFrom(values)
	rapid.Check(t, func(t *rapid.T) {
		a, b, c := gen.Draw(t, "a"), gen.Draw(t, "b"), gen.Draw(t, "c")
		if Compare(a, b) != -Compare(b, a) {
			t.Fatalf("Compare(%v, %v) not antisymmetric", a, b)
		}
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			t.Fatalf("not transitive: %v <= %v <= %v but %v > %v", a, b, c, a, c)
		}
	})
}

func TestSortMixedValuesPutsUnorderableLast(t *testing.T) {
	type cell struct {
		V   any
		Seq int
	}
	cols := []Column[cell]{{Key: "v", Value: func(c cell) any { return c.V }}}
	in := []cell{{nil, 0}, {"b", 1}, {2, 2}, {nil, 3}, {"a", 4}, {1, 5}}
	got := Sort(in, cols, SortState{Column: "v"})
	want := []int{5, 2, 4, 1, 0, 3}
	for i, seq := range want {
		if got[i].Seq != seq {
			t.Fatalf("order = %v, want seqs %v", got, want)
		}
	}
}

func TestSortIsStableProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(t, "keys")
		in := make([]pair, len(keys))
		for i, k := range keys {
			in[i] = pair{Key: k, Seq: i}
		}
		dir := SortDirection(rapid.IntRange(0, 1).Draw(t, "dir"))
		out := Sort(in, pairColumns, SortState{Column: "key", Direction: dir})
		if len(out) != len(in) {
			t.Fatalf("length changed: %d -> %d", len(in), len(out))
		}
		for i := 1; i < len(out); i++ {
			c := Compare(out[i-1].Key, out[i].Key)
			if dir == SortDescending {
				c = -c
			}
			if c > 0 {
				t.Fatalf("out of order at %d: %v", i, out)
			}
			if c == 0 && out[i-1].Seq > out[i].Seq {
				t.Fatalf("equal keys lost input order at %d: %v", i, out)
			}
		}
	})
}

func TestClickToggleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := []string{"id", "status", "severity"}
		s := SortState{}
		clicks := rapid.SliceOfN(rapid.SampledFrom(cols), 1, 20).Draw(t, "clicks")
		for _, c := range clicks {
			next := s.Click(c)
			switch {
			case c == s.Column && next.Direction != s.Direction.Toggle():
				t.Fatalf("clicking active column %s did not flip direction", c)
			case c != s.Column && next.Direction != SortAscending:
				t.Fatalf("clicking new column %s did not reset to ascending", c)
			}
			s = next
		}
	})
}
