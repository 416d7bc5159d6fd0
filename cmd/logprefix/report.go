package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bethropolis/logprefix/internal/event"
)

// reporter prints run progress from the event bus.
type reporter struct {
	mu    sync.Mutex
	out   io.Writer
	errw  io.Writer
	quiet bool
}

func newReporter(out, errw io.Writer, quiet bool) *reporter {
	return &reporter{out: out, errw: errw, quiet: quiet}
}

func (r *reporter) subscribe(m *event.Manager) {
	m.SubscribeAll(r.handle)
}

func (r *reporter) handle(e event.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch data := e.Data.(type) {
	case event.FileTransformedData:
		if r.quiet {
			return false
		}
		okColor.Fprintf(r.out, "rewrote ")
		fmt.Fprintf(r.out, "%s (%d %s)", data.Path, data.Rewrites, plural(data.Rewrites, "call", "calls"))
		if data.Output != "" && data.Output != data.Path {
			dimColor.Fprintf(r.out, " -> %s", data.Output)
		}
		fmt.Fprintln(r.out)
	case event.FileFailedData:
		errColor.Fprintf(r.errw, "failed ")
		fmt.Fprintf(r.errw, "%s: %v\n", data.Path, data.Err)
	case event.WarningData:
		warnColor.Fprintf(r.errw, "warning ")
		fmt.Fprintln(r.errw, data.Message)
	case event.RunFinishedData:
		fmt.Fprintf(r.out, "%d transformed, %d unchanged, %d skipped", data.Transformed, data.Unchanged, data.Skipped)
		if data.Failed > 0 {
			errColor.Fprintf(r.out, ", %d failed", data.Failed)
		}
		dimColor.Fprintf(r.out, " (%d %s in %s)\n", data.Rewrites, plural(data.Rewrites, "call", "calls"), data.Elapsed.Round(time.Millisecond))
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
