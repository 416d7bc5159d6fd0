// Package diag carries human-readable warnings from the rewriter to whoever
// drives it.
package diag

import (
	"sync"

	"github.com/bethropolis/logprefix/internal/logger"
)

// Warner receives warning messages.
type Warner interface {
	Warn(msg string)
}

// WarnFunc adapts a function to Warner.
type WarnFunc func(msg string)

// Warn calls f(msg).
func (f WarnFunc) Warn(msg string) { f(msg) }

// Nop discards every warning.
var Nop Warner = WarnFunc(func(string) {})

// Log forwards warnings to the process logger.
var Log Warner = WarnFunc(func(msg string) { logger.WarnTagf("diag", "%s", msg) })

// Collector records warnings. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	warnings []string
}

// Warn appends msg.
func (c *Collector) Warn(msg string) {
	c.mu.Lock()
	c.warnings = append(c.warnings, msg)
	c.mu.Unlock()
}

// Warnings returns a copy of the recorded messages.
func (c *Collector) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warnings...)
}

// Multi fans a warning out to every non-nil warner.
func Multi(warners ...Warner) Warner {
	return WarnFunc(func(msg string) {
		for _, w := range warners {
			if w != nil {
				w.Warn(msg)
			}
		}
	})
}
