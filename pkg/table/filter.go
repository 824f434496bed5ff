package table

import (
	"sort"
	"strings"
)

// FilterState is the committed search query plus the selected tags. An
// empty Selected set applies no tag filter.
type FilterState struct {
	Query    string
	Selected map[string]struct{}
}

// IsSelected reports whether tag is in the selected set.
func (f FilterState) IsSelected(tag string) bool {
	_, ok := f.Selected[tag]
	return ok
}

// Tags returns the selected tags in sorted order.
func (f FilterState) Tags() []string {
	tags := make([]string, 0, len(f.Selected))
	for t := range f.Selected {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Toggle returns the state with tag added or removed.
func (f FilterState) Toggle(tag string) FilterState {
	next := f.withSelected(len(f.Selected) + 1)
	if f.IsSelected(tag) {
		delete(next.Selected, tag)
	} else {
		next.Selected[tag] = struct{}{}
	}
	return next
}

// SelectAll returns the state with every tag selected.
func (f FilterState) SelectAll(tags []string) FilterState {
	next := f.withSelected(len(tags))
	for _, t := range tags {
		next.Selected[t] = struct{}{}
	}
	return next
}

// Clear returns the state with no tag selected.
func (f FilterState) Clear() FilterState {
	return FilterState{Query: f.Query, Selected: map[string]struct{}{}}
}

// AllSelected reports whether every tag in tags is selected.
func (f FilterState) AllSelected(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	for _, t := range tags {
		if !f.IsSelected(t) {
			return false
		}
	}
	return true
}

// ToggleAll selects every tag, or clears them when all are already
// selected.
func (f FilterState) ToggleAll(tags []string) FilterState {
	if f.AllSelected(tags) {
		return f.Clear()
	}
	return f.SelectAll(tags)
}

func (f FilterState) withSelected(capacity int) FilterState {
	sel := make(map[string]struct{}, capacity)
	for t := range f.Selected {
		sel[t] = struct{}{}
	}
	return FilterState{Query: f.Query, Selected: sel}
}

// Matcher tells the filter which fields of a record are searched and which
// tags a record carries.
type Matcher[R any] struct {
	Searchable func(R) []string
	Classify   func(R) []string
}

// Matches reports whether r passes both the query and the tag filter. The
// query is a case-insensitive substring of any searchable field; an empty
// query matches everything. With tags selected, r must carry at least one of
// them.
func (m Matcher[R]) Matches(r R, f FilterState) bool {
	return m.matchesQuery(r, strings.ToLower(f.Query)) && m.matchesTags(r, f)
}

func (m Matcher[R]) matchesQuery(r R, q string) bool {
	if q == "" {
		return true
	}
	if m.Searchable == nil {
		return false
	}
	for _, field := range m.Searchable(r) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (m Matcher[R]) matchesTags(r R, f FilterState) bool {
	if len(f.Selected) == 0 {
		return true
	}
	if m.Classify == nil {
		return false
	}
	for _, tag := range m.Classify(r) {
		if f.IsSelected(tag) {
			return true
		}
	}
	return false
}

// Apply returns the records that match f, in input order.
func Apply[R any](records []R, m Matcher[R], f FilterState) []R {
	out := make([]R, 0, len(records))
	q := strings.ToLower(f.Query)
	for _, r := range records {
		if m.matchesQuery(r, q) && m.matchesTags(r, f) {
			out = append(out, r)
		}
	}
	return out
}
