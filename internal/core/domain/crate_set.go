package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Level counts hops from the root frontier of a dependency graph.
// Level 0 are the roots themselves.
type Level uint8

// MaxLevel is the deepest level a traversal may reach.
const MaxLevel Level = 255

// NoLevelBound selects all transitive dependencies instead of a single level.
const NoLevelBound Level = 0

// ParseLevel converts a user supplied dependency level.
// Valid levels are 1 to MaxLevel.
func ParseLevel(n int) (Level, error) {
	if n < 1 || n > int(MaxLevel) {
		return NoLevelBound, zerr.With(ErrInvalidLevel, "level", n)
	}
	return Level(n), nil
}

// CrateSet is a set of case-sensitive crate names.
type CrateSet map[string]struct{}

// NewCrateSet creates a set containing the given names.
func NewCrateSet(names ...string) CrateSet {
	s := make(CrateSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a name into the set.
func (s CrateSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether the name is in the set.
func (s CrateSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s CrateSet) Len() int {
	return len(s)
}

// Merge adds all names of other to s.
func (s CrateSet) Merge(other CrateSet) {
	for n := range other {
		s.Add(n)
	}
}

// Sorted returns the names in lexical order.
func (s CrateSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
