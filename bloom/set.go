// Package bloom provides an exact string set fronted by a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Set is an exact set of strings. Membership checks consult a Bloom filter
// first, so the common negative case never touches the map. The filter only
// short-circuits misses; hits are always confirmed against the map, so Set
// has no false positives.
//
// Set is not safe for concurrent use.
type Set struct {
	filter *bloom.BloomFilter
	items  map[string]struct{}
}

// NewSet creates a Set whose filter is sized for n expected items
// with the given false positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		filter: bloom.NewWithEstimates(n, fpRate),
		items:  make(map[string]struct{}),
	}
}

// Add inserts key and reports whether it was newly added.
func (s *Set) Add(key string) bool {
	if s.Has(key) {
		return false
	}
	s.filter.AddString(key)
	s.items[key] = struct{}{}
	return true
}

// Has reports whether key is in the set.
func (s *Set) Has(key string) bool {
	if !s.filter.TestString(key) {
		return false
	}
	_, ok := s.items[key]
	return ok
}

// Len returns the number of items in the set.
func (s *Set) Len() int {
	return len(s.items)
}
