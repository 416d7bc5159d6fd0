// Package policy holds the named receiver policies selectable from config.
package policy

import (
	"strings"

	"github.com/bethropolis/logprefix/internal/transform"
)

// Built-in policy names.
const (
	Heuristic = "heuristic"
	Strict    = "strict"
	Any       = "any"
)

// StrictPolicy accepts only log, logger and this, ignoring case.
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return Strict }

func (StrictPolicy) Accept(identifier string) bool {
	switch strings.ToLower(identifier) {
	case "log", "logger", "this":
		return true
	}
	return false
}

// AnyPolicy accepts every identifier, leaving the method name as the only filter.
type AnyPolicy struct{}

func (AnyPolicy) Name() string { return Any }

func (AnyPolicy) Accept(string) bool { return true }

// extended accepts whatever base accepts plus an explicit list of names.
type extended struct {
	base  transform.ReceiverPolicy
	names map[string]struct{}
}

// Extend returns a policy that also accepts the given identifiers verbatim.
// With no names it returns base unchanged.
func Extend(base transform.ReceiverPolicy, names ...string) transform.ReceiverPolicy {
	if len(names) == 0 {
		return base
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &extended{base: base, names: set}
}

func (e *extended) Name() string { return e.base.Name() + "+names" }

func (e *extended) Accept(identifier string) bool {
	if _, ok := e.names[identifier]; ok {
		return true
	}
	return e.base.Accept(identifier)
}
