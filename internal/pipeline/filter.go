package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Default file patterns.
var (
	DefaultInclude = []string{"**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx"}
	DefaultExclude = []string{"node_modules/**", "**/node_modules/**"}
)

// Filter selects unit ids by glob. Exclusion wins over inclusion and an
// empty include list admits everything not excluded.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and builds a filter.
func NewFilter(include, exclude []string) (*Filter, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Match reports whether id passes the filter. Ids containing a NUL byte are
// virtual modules and never match.
func (f *Filter) Match(id string) bool {
	if strings.ContainsRune(id, 0) {
		return false
	}
	name := normalizeID(id)
	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func normalizeID(id string) string {
	name := filepath.ToSlash(id)
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	return name
}
