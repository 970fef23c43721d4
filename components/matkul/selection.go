package matkul

import (
	"sync"

	"github.com/yanizio/nasabah/internal/api"
)

// Selection is the set of chosen course ids.  Aggregates are recomputed
// from the set and the catalog on every call, never cached.  Safe for
// concurrent use.
type Selection struct {
	mu  sync.Mutex
	ids map[api.ID]struct{}
}

// NewSelection returns an empty set.
func NewSelection() *Selection { return &Selection{ids: make(map[api.ID]struct{})} }

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id api.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id api.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Clear empties the set.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = make(map[api.ID]struct{})
	s.mu.Unlock()
}

// Pick returns the selected records in catalog order.  Ids that are not in
// catalog are ignored.
func (s *Selection) Pick(catalog []api.Course) []api.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []api.Course
	for _, c := range catalog {
		if _, ok := s.ids[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Count is len(Pick(catalog)).
func (s *Selection) Count(catalog []api.Course) int { return len(s.Pick(catalog)) }

// Total sums the SKS of the picked records.
func (s *Selection) Total(catalog []api.Course) int {
	n := 0
	for _, c := range s.Pick(catalog) {
		n += int(c.SKS)
	}
	return n
}
