package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag" // The slog attribute key used for filtering tags

// filteringHandler wraps a base slog.Handler to drop records by tag or by
// originating package.
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config // Reference to processed config
	attrs       []slog.Attr
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{
		baseHandler: base,
		cfg:         cfg,
	}
}

// Enabled checks if the level is enabled by the base handler.
func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

// allowed applies a disabled set first, then an enabled set if one is configured.
func allowed(value string, enabled, disabled map[string]struct{}) bool {
	value = strings.ToLower(value)
	if disabled != nil {
		if _, found := disabled[value]; found {
			return false
		}
	}
	if enabled != nil {
		if _, found := enabled[value]; !found {
			return false
		}
	}
	return true
}

// Handle applies filtering logic before passing the record to the base handler.
func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil || !h.cfg.filtering() {
		return h.baseHandler.Handle(ctx, r)
	}

	// --- Package Filtering ---
	if r.PC != 0 && (h.cfg.enabledPackagesSet != nil || h.cfg.disabledPackagesSet != nil) {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			pkg := filepath.Base(filepath.Dir(frame.File))
			if !allowed(pkg, h.cfg.enabledPackagesSet, h.cfg.disabledPackagesSet) {
				return nil
			}
		}
	}

	// --- Tag Filtering ---
	tag, tagFound := h.tag(r)
	if tagFound {
		if !allowed(tag, h.cfg.enabledTagsSet, h.cfg.disabledTagsSet) {
			return nil
		}
	} else if h.cfg.enabledTagsSet != nil {
		// Specific tags requested but this record has none
		return nil
	}

	return h.baseHandler.Handle(ctx, r)
}

// tag looks for the tag attribute on the record, then on attributes bound via With.
func (h *filteringHandler) tag(r slog.Record) (string, bool) {
	var value string
	var found bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			value = a.Value.String()
			found = true
			return false
		}
		return true
	})
	if found {
		return value, true
	}
	for _, a := range h.attrs {
		if a.Key == tagKey {
			return a.Value.String(), true
		}
	}
	return "", false
}

// WithAttrs returns a new handler with attributes added.
func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := newFilteringHandler(h.baseHandler.WithAttrs(attrs), h.cfg)
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return next
}

// WithGroup returns a new handler with a group added.
func (h *filteringHandler) WithGroup(name string) slog.Handler {
	next := newFilteringHandler(h.baseHandler.WithGroup(name), h.cfg)
	next.attrs = h.attrs
	return next
}
