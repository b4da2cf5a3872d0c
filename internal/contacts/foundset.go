package contacts

import "github.com/jonathan/contact-discovery/internal/types"

// Entry is a raw contact occurrence together with the best confidence seen for it
type Entry struct {
	Contact    types.Contact
	Confidence float64
}

// FoundSet accumulates raw contacts for one run.
// Uniqueness is by the full (type, value, source_url) triple; insertion order is kept.
// A FoundSet is not safe for concurrent use; parallel passes merge into it from one goroutine.
type FoundSet struct {
	index   map[types.Contact]int
	entries []Entry
}

// NewFoundSet creates an empty FoundSet
func NewFoundSet() *FoundSet {
	return &FoundSet{index: make(map[types.Contact]int)}
}

// Add records an occurrence and reports whether the triple was new.
// A repeated triple keeps the higher confidence.
func (s *FoundSet) Add(c types.Contact, confidence float64) bool {
	if i, ok := s.index[c]; ok {
		if confidence > s.entries[i].Confidence {
			s.entries[i].Confidence = confidence
		}
		return false
	}
	s.index[c] = len(s.entries)
	s.entries = append(s.entries, Entry{Contact: c, Confidence: confidence})
	return true
}

// Merge adds every entry of other in its insertion order and returns how many were new
func (s *FoundSet) Merge(other *FoundSet) int {
	if other == nil {
		return 0
	}
	added := 0
	for _, e := range other.entries {
		if s.Add(e.Contact, e.Confidence) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct triples
func (s *FoundSet) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order
func (s *FoundSet) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
