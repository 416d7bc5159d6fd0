package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bethropolis/logprefix/internal/logger"
)

// Registry maps file extensions to grammars.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Language
	byExt    map[string]*Language
	fallback *Language
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Language),
		byExt:  make(map[string]*Language),
	}
}

// Register adds l under each of its extensions. Extensions are matched
// case-insensitively and must not already belong to another language.
func (r *Registry) Register(l *Language) error {
	if l == nil || l.Name == "" || l.TreeSitterLang == nil {
		return fmt.Errorf("language registration failed: incomplete language %v", l)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[l.Name]; exists {
		return fmt.Errorf("language registration failed: '%s' already registered", l.Name)
	}
	for _, ext := range l.Extensions {
		if prev, taken := r.byExt[strings.ToLower(ext)]; taken {
			return fmt.Errorf("language registration failed: extension %s already belongs to %s", ext, prev.Name)
		}
	}

	r.byName[l.Name] = l
	for _, ext := range l.Extensions {
		r.byExt[strings.ToLower(ext)] = l
	}
	logger.DebugTagf("lang", "Registered language: %s with extensions: %v", l.Name, l.Extensions)
	return nil
}

// SetFallback sets the language used for unknown extensions. It does not
// have to be registered.
func (r *Registry) SetFallback(l *Language) {
	r.mu.Lock()
	r.fallback = l
	r.mu.Unlock()
}

// ForFile returns the language for path by extension, or the fallback.
func (r *Registry) ForFile(path string) *Language {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.byExt[ext]; ok {
		return l
	}
	return r.fallback
}

// ByName returns a registered language.
func (r *Registry) ByName(name string) (*Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	return l, ok
}

// Languages returns the registered languages sorted by name.
func (r *Registry) Languages() []*Language {
	r.mu.RLock()
	out := make([]*Language, 0, len(r.byName))
	for _, l := range r.byName {
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
