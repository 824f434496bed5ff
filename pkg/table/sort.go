package table

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// SortDirection represents ascending or descending sort order.
type SortDirection int

const (
	SortAscending  SortDirection = iota // ▲ ascending
	SortDescending                      // ▼ descending
)

// String returns a human-readable label for the sort direction.
func (d SortDirection) String() string {
	if d == SortAscending {
		return "Ascending"
	}
	return "Descending"
}

// Indicator returns the arrow indicator for the sort direction.
func (d SortDirection) Indicator() string {
	if d == SortAscending {
		return "▲"
	}
	return "▼"
}

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// SortState is the active sort column and its direction. An empty Column
// means rows keep their loaded order.
type SortState struct {
	Column    string
	Direction SortDirection
}

// Active reports whether a sort column is set.
func (s SortState) Active() bool {
	return s.Column != ""
}

// Click returns the state after the header of column key is clicked: the
// active column flips direction, any other column starts ascending.
func (s SortState) Click(key string) SortState {
	if key == s.Column {
		return SortState{Column: key, Direction: s.Direction.Toggle()}
	}
	return SortState{Column: key, Direction: SortAscending}
}

// Sort returns records ordered by state. The sort is stable, so ties keep
// their input order. Values that cannot be ordered sort after all others
// when ascending. An inactive state,
// an unknown column or a column without a Value accessor returns a copy in
// input order. records is never modified.
func Sort[R any](records []R, columns []Column[R], state SortState) []R {
	out := slices.Clone(records)
	if !state.Active() {
		return out
	}
	col, ok := columnByKey(columns, state.Column)
	if !ok || !col.Sortable() {
		return out
	}
	sign := 1
	if state.Direction == SortDescending {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b R) int {
		return sign * Compare(col.Value(a), col.Value(b))
	})
	return out
}

type valueKind int

const (
	kindNone valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindString
	kindTime
	kindBool
)

type sortValue struct {
	kind valueKind
	i    int64
	u    uint64
	f    float64
	s    string
	t    time.Time
	b    bool
}

// group ranks kinds against each other: numbers, strings, times, bools,
// then values that cannot be ordered.
func (v sortValue) group() int {
	switch v.kind {
	case kindInt, kindUint, kindFloat:
		return 0
	case kindString:
		return 1
	case kindTime:
		return 2
	case kindBool:
		return 3
	default:
		return 4
	}
}

func (v sortValue) numeric() bool {
	return v.kind == kindInt || v.kind == kindUint || v.kind == kindFloat
}

func (v sortValue) float() float64 {
	switch v.kind {
	case kindInt:
		return float64(v.i)
	case kindUint:
		return float64(v.u)
	default:
		return v.f
	}
}

func normalize(v any) sortValue {
	if v == nil {
		return sortValue{}
	}
	if t, ok := v.(time.Time); ok {
		return sortValue{kind: kindTime, t: t}
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return sortValue{}
		}
		rv = rv.Elem()
		if t, ok := rv.Interface().(time.Time); ok {
			return sortValue{kind: kindTime, t: t}
		}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sortValue{kind: kindInt, i: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return sortValue{kind: kindUint, u: rv.Uint()}
	case reflect.Float32, reflect.Float64:
		return sortValue{kind: kindFloat, f: rv.Float()}
	case reflect.String:
		return sortValue{kind: kindString, s: rv.String()}
	case reflect.Bool:
		return sortValue{kind: kindBool, b: rv.Bool()}
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return sortValue{kind: kindString, s: s.String()}
	}
	return sortValue{}
}

// Compare orders two column values. Numbers compare numerically across
// integer and float types, strings lexically, times chronologically and
// false before true. Values of different kinds order by kind, and nil or
// unorderable values come after everything else and equal each other.
func Compare(a, b any) int {
	va, vb := normalize(a), normalize(b)
	if ga, gb := va.group(), vb.group(); ga != gb {
		return cmp.Compare(ga, gb)
	}
	if va.kind == kindNone {
		return 0
	}
	if va.numeric() && vb.numeric() {
		switch {
		case va.kind == kindInt && vb.kind == kindInt:
			return cmp.Compare(va.i, vb.i)
		case va.kind == kindUint && vb.kind == kindUint:
			return cmp.Compare(va.u, vb.u)
		default:
			return cmp.Compare(va.float(), vb.float())
		}
	}
	switch va.kind {
	case kindString:
		return strings.Compare(va.s, vb.s)
	case kindTime:
		return va.t.Compare(vb.t)
	case kindBool:
		switch {
		case va.b == vb.b:
			return 0
		case !va.b:
			return -1
		default:
			return 1
		}
	}
	return 0
}
