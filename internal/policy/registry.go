package policy

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/transform"
)

// ErrUnknownPolicy is returned by Get for an unregistered name.
var ErrUnknownPolicy = errors.New("unknown receiver policy")

// Registry maps policy names to policies.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]transform.ReceiverPolicy
}

// NewRegistry creates a registry holding the built-in policies.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]transform.ReceiverPolicy)}
	for _, p := range []transform.ReceiverPolicy{transform.HeuristicPolicy{}, StrictPolicy{}, AnyPolicy{}} {
		r.policies[p.Name()] = p
	}
	return r
}

// Register adds a policy under its own name.
func (r *Registry) Register(p transform.ReceiverPolicy) error {
	if p == nil {
		return fmt.Errorf("policy registration failed: nil policy")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("policy registration failed: policy name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.policies[name]; exists {
		return fmt.Errorf("policy registration failed: policy named '%s' already registered", name)
	}
	r.policies[name] = p
	logger.DebugTagf("policy", "Registered receiver policy '%s'", name)
	return nil
}

// Get returns the policy registered as name.
func (r *Registry) Get(name string) (transform.ReceiverPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPolicy, name, r.namesLocked())
	}
	return p, nil
}

// Names lists registered policy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.policies))
	for n := range r.policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Lookup resolves name against the built-in registry.
func Lookup(name string) (transform.ReceiverPolicy, error) {
	return defaultRegistry.Get(name)
}

// Available lists the built-in policy names.
func Available() []string {
	return defaultRegistry.Names()
}
