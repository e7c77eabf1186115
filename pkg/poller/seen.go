package poller

import "github.com/Sternrassler/sponsorwatch/pkg/catalog"

// SeenSet records the identities of places already emitted. Identity is the
// place id alone; the set only ever grows.
type SeenSet struct {
	ids map[uint64]struct{}
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[uint64]struct{})}
}

// Contains reports whether the place has been seen.
func (s *SeenSet) Contains(p catalog.Place) bool {
	_, ok := s.ids[p.PlaceID]
	return ok
}

// Add records the place and reports whether it was new.
func (s *SeenSet) Add(p catalog.Place) bool {
	if s.Contains(p) {
		return false
	}
	s.ids[p.PlaceID] = struct{}{}
	return true
}

// Len returns the number of distinct places seen.
func (s *SeenSet) Len() int {
	return len(s.ids)
}
