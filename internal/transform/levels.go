package transform

import "sort"

// DefaultLogLevels are the loglevel method names rewritten when none are configured.
var DefaultLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// LevelSet is an immutable set of level method names.
type LevelSet struct {
	names map[string]struct{}
}

// NewLevelSet builds a set from names. Matching is case-sensitive, the same as
// the method names in source.
func NewLevelSet(names ...string) LevelSet {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return LevelSet{names: set}
}

// Has reports whether name is a configured level.
func (s LevelSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of levels.
func (s LevelSet) Len() int {
	return len(s.names)
}

// Names returns the levels in sorted order.
func (s LevelSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
