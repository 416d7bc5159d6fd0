// Package watch re-runs the pipeline on files as they change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bethropolis/logprefix/internal/logger"
)

// FileRunner processes one changed file under root.
type FileRunner interface {
	RunFile(ctx context.Context, root, path string) error
}

type root struct {
	path string
	dir  bool
}

// Watcher watches root directories recursively, and single files through
// their parent directory.
type Watcher struct {
	runner   FileRunner
	roots    []root
	debounce time.Duration
	ignore   []string // absolute directories never watched, e.g. the output dir

	mu         sync.Mutex
	debouncers map[string]*Debouncer
}

// New creates a watcher. ignoreDirs are skipped while walking and their
// events are dropped.
func New(runner FileRunner, roots []string, debounce time.Duration, ignoreDirs ...string) (*Watcher, error) {
	w := &Watcher{
		runner:     runner,
		debounce:   debounce,
		debouncers: make(map[string]*Debouncer),
	}
	for _, p := range roots {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
		w.roots = append(w.roots, root{path: filepath.Clean(p), dir: info.IsDir()})
	}
	for _, d := range ignoreDirs {
		if d == "" {
			continue
		}
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		w.ignore = append(w.ignore, abs)
	}
	return w, nil
}

// Run blocks until ctx is done, re-running changed files.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			logger.Warnf("failed to close file watcher: %v", err)
		}
		w.stopAll()
	}()

	for _, r := range w.roots {
		if !r.dir {
			if err := fsw.Add(filepath.Dir(r.path)); err != nil {
				return fmt.Errorf("watching %s: %w", r.path, err)
			}
			continue
		}
		if err := w.addTree(fsw, r.path); err != nil {
			return err
		}
	}
	logger.Infof("Watching %d roots for changes", len(w.roots))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("file watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if w.ignored(ev.Name) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && w.rootFor(ev.Name) != nil {
			if err := w.addTree(fsw, ev.Name); err != nil {
				logger.Warnf("%v", err)
			}
		}
		return
	}
	r := w.rootFor(ev.Name)
	if r == nil {
		return
	}
	logger.DebugTagf("watch", "%s: %s", ev.Op, ev.Name)
	w.schedule(ctx, *r, ev.Name)
}

func (w *Watcher) schedule(ctx context.Context, r root, path string) {
	w.mu.Lock()
	d, ok := w.debouncers[path]
	if !ok {
		d = &Debouncer{}
		w.debouncers[path] = d
	}
	w.mu.Unlock()

	d.Debounce(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.runner.RunFile(ctx, r.path, path); err != nil {
			logger.Warnf("%s: %v", path, err)
		}
	})
}

func (w *Watcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range w.debouncers {
		d.Stop()
	}
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != dir && skipDir(d.Name())) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// rootFor returns the root that owns path, or nil.
func (w *Watcher) rootFor(path string) *root {
	path = filepath.Clean(path)
	for i := range w.roots {
		r := &w.roots[i]
		if !r.dir {
			if path == r.path {
				return r
			}
			continue
		}
		if path == r.path || strings.HasPrefix(path, r.path+string(filepath.Separator)) {
			return r
		}
	}
	return nil
}
