package transform

import "strings"

// ReceiverPolicy decides whether a bare identifier receiver names a logger.
// It is only consulted for identifiers; every other receiver shape is accepted.
type ReceiverPolicy interface {
	Name() string
	Accept(identifier string) bool
}

// HeuristicPolicy accepts identifiers that look like loggers: log, logger,
// anything ending in log or logger, and this. Matching ignores case.
type HeuristicPolicy struct{}

var _ ReceiverPolicy = HeuristicPolicy{}

func (HeuristicPolicy) Name() string { return "heuristic" }

func (HeuristicPolicy) Accept(identifier string) bool {
	name := strings.ToLower(identifier)
	switch {
	case name == "this":
		return true
	case strings.HasSuffix(name, "logger"):
		return true
	case strings.HasSuffix(name, "log"):
		return true
	default:
		return false
	}
}
