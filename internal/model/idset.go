package model

// IDSet is a set of IDs.
type IDSet map[ID]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was absent before.
func (s IDSet) Add(id ID) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Dedup returns ids without repeated entries, keeping the first occurrence order.
// It never returns nil.
func Dedup(ids []ID) []ID {
	seen := make(IDSet, len(ids))
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if seen.Add(id) {
			out = append(out, id)
		}
	}
	return out
}
