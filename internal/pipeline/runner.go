package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bethropolis/logprefix/internal/diag"
	"github.com/bethropolis/logprefix/internal/event"
	"github.com/bethropolis/logprefix/internal/logger"
)

// ErrNoOutput is returned when a run has neither an output directory nor
// in-place or dry-run mode.
var ErrNoOutput = errors.New("no output: set an output directory, in-place or dry-run")

const sourceMappingPrefix = "\n//# sourceMappingURL="

// stripSourceMappingURL drops a trailing sourceMappingURL comment, in either
// the //# or the legacy //@ form, so that the new one replaces it.
func stripSourceMappingURL(code string) string {
	body := strings.TrimRight(code, " \t\r\n")
	start := strings.LastIndexByte(body, '\n') + 1
	last := strings.TrimSpace(body[start:])
	if !strings.HasPrefix(last, "//# sourceMappingURL=") && !strings.HasPrefix(last, "//@ sourceMappingURL=") {
		return code
	}
	return strings.TrimRight(body[:start], "\r\n")
}

// Options controls where a run writes.
type Options struct {
	OutDir          string // mirror of the input tree
	InPlace         bool   // overwrite inputs, wins over OutDir
	DryRun          bool   // write nothing
	InlineSourceMap bool   // embed maps as data URLs instead of .map files
	Jobs            int    // concurrent files, GOMAXPROCS when <= 0
}

func (o Options) validate() error {
	if !o.DryRun && !o.InPlace && o.OutDir == "" {
		return ErrNoOutput
	}
	return nil
}

// Runner applies a Plugin to files on disk and reports progress on an
// event manager.
type Runner struct {
	plugin *Plugin
	opts   Options
	events *event.Manager

	mu    sync.Mutex
	stats event.RunFinishedData
}

// NewRunner creates a runner. events may be nil.
func NewRunner(plugin *Plugin, opts Options, events *event.Manager) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	return &Runner{plugin: plugin, opts: opts, events: events}, nil
}

// EventWarner returns a Warner that publishes warnings on m.
func EventWarner(m *event.Manager) diag.Warner {
	return diag.WarnFunc(func(msg string) {
		m.Dispatch(event.TypeWarning, event.WarningData{Message: msg})
	})
}

type job struct {
	path string // as found on disk
	rel  string // relative to its root, used as the unit id
}

// Run processes every file under roots and returns the run summary. A
// failing file is reported and counted without stopping the run; only
// cancellation or an unreadable root ends it early.
func (r *Runner) Run(ctx context.Context, roots []string) (event.RunFinishedData, error) {
	start := time.Now()
	r.mu.Lock()
	r.stats = event.RunFinishedData{}
	r.mu.Unlock()

	var jobs []job
	for _, root := range roots {
		found, err := r.collect(root)
		if err != nil {
			return r.summary(start), err
		}
		jobs = append(jobs, found...)
	}
	logger.Infof("Processing %d files with %d workers", len(jobs), r.opts.Jobs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(r.opts.Jobs, len(jobs))))
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r.process(gctx, j)
			return nil
		})
	}
	err := g.Wait()

	summary := r.summary(start)
	r.events.Dispatch(event.TypeRunFinished, summary)
	return summary, err
}

// RunFile processes a single file that lives under root.
func (r *Runner) RunFile(ctx context.Context, root, path string) error {
	rel, err := filepath.Rel(rootBase(root), path)
	if err != nil {
		return fmt.Errorf("resolving %s against %s: %w", path, root, err)
	}
	r.process(ctx, job{path: path, rel: filepath.ToSlash(rel)})
	return ctx.Err()
}

// Stream transforms a single unit from in to out. The map, if any, is
// always inlined.
func (r *Runner) Stream(ctx context.Context, in io.Reader, out io.Writer, id string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", id, err)
	}
	res := r.plugin.TransformContext(ctx, string(data), id)
	if res == nil {
		_, err = out.Write(data)
		return err
	}
	code := res.Code
	if res.Map != nil {
		code = stripSourceMappingURL(code) + sourceMappingPrefix + res.Map.DataURL()
	}
	_, err = io.WriteString(out, code)
	return err
}

func rootBase(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

func (r *Runner) collect(root string) ([]job, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	if !info.IsDir() {
		return []job{{path: root, rel: filepath.Base(root)}}, nil
	}

	outDir := ""
	if r.opts.OutDir != "" && !r.opts.InPlace {
		outDir, _ = filepath.Abs(r.opts.OutDir)
	}

	var jobs []job
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if outDir != "" {
				if abs, _ := filepath.Abs(path); abs == outDir {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, job{path: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return jobs, nil
}

func (r *Runner) process(ctx context.Context, j job) {
	if !r.plugin.Filter().Match(j.rel) {
		r.count(func(s *event.RunFinishedData) { s.Skipped++ })
		r.events.Dispatch(event.TypeFileSkipped, event.FileData{Path: j.path})
		return
	}
	if err := r.transformFile(ctx, j); err != nil {
		logger.Errorf("%s: %v", j.path, err)
		r.count(func(s *event.RunFinishedData) { s.Failed++ })
		r.events.Dispatch(event.TypeFileFailed, event.FileFailedData{Path: j.path, Err: err})
	}
}

func (r *Runner) transformFile(ctx context.Context, j job) error {
	info, err := os.Stat(j.path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(j.path)
	if err != nil {
		return err
	}
	out := r.outputPath(j)
	perm := info.Mode().Perm()

	res := r.plugin.TransformContext(ctx, string(data), j.rel)
	if res == nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if out != "" && out != j.path && !r.opts.DryRun {
			if err := writeFile(out, data, perm); err != nil {
				return err
			}
		}
		r.count(func(s *event.RunFinishedData) { s.Unchanged++ })
		r.events.Dispatch(event.TypeFileUnchanged, event.FileData{Path: j.path})
		return nil
	}

	code := res.Code
	mapPath := ""
	if res.Map != nil {
		code = stripSourceMappingURL(code)
		res.Map.File = filepath.Base(j.path)
		res.Map.Sources = []string{filepath.Base(j.path)}
		if out != "" && out != j.path {
			if src, err := filepath.Rel(filepath.Dir(out), j.path); err == nil {
				res.Map.Sources = []string{filepath.ToSlash(src)}
			}
		}
		if r.opts.InlineSourceMap {
			code += sourceMappingPrefix + res.Map.DataURL()
		} else {
			mapPath = out + ".map"
			code += sourceMappingPrefix + filepath.Base(mapPath)
		}
	}

	if r.opts.DryRun {
		out, mapPath = "", ""
	} else {
		if err := writeFile(out, []byte(code), perm); err != nil {
			return err
		}
		if mapPath != "" {
			if err := writeFile(mapPath, []byte(res.Map.String()), 0o644); err != nil {
				return err
			}
		}
	}

	r.count(func(s *event.RunFinishedData) {
		s.Transformed++
		s.Rewrites += res.Rewrites
	})
	r.events.Dispatch(event.TypeFileTransformed, event.FileTransformedData{
		Path:     j.path,
		Output:   out,
		MapPath:  mapPath,
		Rewrites: res.Rewrites,
	})
	return nil
}

func (r *Runner) outputPath(j job) string {
	switch {
	case r.opts.InPlace:
		return j.path
	case r.opts.OutDir != "":
		return filepath.Join(r.opts.OutDir, filepath.FromSlash(j.rel))
	default:
		return j.path
	}
}

func writeFile(path string, data []byte, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (r *Runner) count(update func(*event.RunFinishedData)) {
	r.mu.Lock()
	update(&r.stats)
	r.mu.Unlock()
}

func (r *Runner) summary(start time.Time) event.RunFinishedData {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Elapsed = time.Since(start)
	return s
}
