package table

// RecordSet is a screen's local copy of a collection: records in load order
// plus an identity index. Before Load it is "not loaded", which renders
// differently from loaded-but-empty.
type RecordSet[K comparable, R any] struct {
	id      func(R) K
	records []R
	index   map[K]int
	loaded  bool
	err     error
}

// NewRecordSet returns an unloaded set keyed by id.
func NewRecordSet[K comparable, R any](id func(R) K) *RecordSet[K, R] {
	return &RecordSet[K, R]{id: id, index: map[K]int{}}
}

// Loaded reports whether a list result has been applied.
func (s *RecordSet[K, R]) Loaded() bool { return s.loaded }

// Err returns the error of the last failed load.
func (s *RecordSet[K, R]) Err() error { return s.err }

// Len returns the number of records.
func (s *RecordSet[K, R]) Len() int { return len(s.records) }

// ID returns the identity of r.
func (s *RecordSet[K, R]) ID(r R) K { return s.id(r) }

// Load replaces the contents with records and marks the set loaded. Later
// duplicates of an identity replace earlier ones in place.
func (s *RecordSet[K, R]) Load(records []R) {
	s.records = make([]R, 0, len(records))
	s.index = make(map[K]int, len(records))
	for _, r := range records {
		k := s.id(r)
		if i, ok := s.index[k]; ok {
			s.records[i] = r
			continue
		}
		s.index[k] = len(s.records)
		s.records = append(s.records, r)
	}
	s.loaded = true
	s.err = nil
}

// Fail records a load error. Records from an earlier successful load stay.
func (s *RecordSet[K, R]) Fail(err error) {
	s.err = err
}

// All returns the records in order. The slice is shared; callers must not
// modify it.
func (s *RecordSet[K, R]) All() []R { return s.records }

// Get returns the record with identity id.
func (s *RecordSet[K, R]) Get(id K) (R, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	return s.records[i], true
}

// Has reports whether id is present.
func (s *RecordSet[K, R]) Has(id K) bool {
	_, ok := s.index[id]
	return ok
}

// Replace swaps in r at the position of the record with the same identity.
// It reports false when no such record exists.
func (s *RecordSet[K, R]) Replace(r R) bool {
	i, ok := s.index[s.id(r)]
	if !ok {
		return false
	}
	s.records[i] = r
	return true
}

// Append adds r at the end, or replaces the record with its identity.
func (s *RecordSet[K, R]) Append(r R) {
	if s.Replace(r) {
		return
	}
	s.index[s.id(r)] = len(s.records)
	s.records = append(s.records, r)
	s.loaded = true
}

// Remove deletes the record with identity id, keeping the order of the
// rest. It reports whether a record was removed.
func (s *RecordSet[K, R]) Remove(id K) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	next := make([]R, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	s.records = next
	delete(s.index, id)
	for k, j := range s.index {
		if j > i {
			s.index[k] = j - 1
		}
	}
	return true
}
