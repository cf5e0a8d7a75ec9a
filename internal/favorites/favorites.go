// Package favorites holds the user's starred asset IDs.
package favorites

// Set is an insertion-ordered, deduplicated set of asset IDs.
// It is not safe for concurrent use.
type Set struct {
	ids []string
}

// New builds a set from stored IDs, dropping duplicates and empty IDs.
func New(ids []string) *Set {
	s := &Set{ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		if id != "" && !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Contains reports whether id is a favorite.
func (s *Set) Contains(id string) bool {
	return s.index(id) >= 0
}

// Toggle adds id if absent and removes it if present. It reports whether id
// is a favorite afterwards.
func (s *Set) Toggle(id string) bool {
	if i := s.index(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// List returns a copy of the IDs in insertion order.
func (s *Set) List() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Set) index(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
