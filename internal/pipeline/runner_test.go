package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/logprefix/internal/event"
	"github.com/bethropolis/logprefix/internal/transform"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type recorder struct {
	mu     sync.Mutex
	events map[event.Type][]event.Event
}

func record(m *event.Manager) *recorder {
	r := &recorder{events: map[event.Type][]event.Event{}}
	m.SubscribeAll(func(e event.Event) bool {
		r.mu.Lock()
		r.events[e.Type] = append(r.events[e.Type], e)
		r.mu.Unlock()
		return false
	})
	return r
}

func (r *recorder) count(t event.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[t])
}

func newTestRunner(t *testing.T, opts Options, events *event.Manager) *Runner {
	t.Helper()
	plugin, err := NewPlugin(PluginOptions{
		Transform: transform.DefaultConfig(),
		Warner:    EventWarner(events),
	})
	require.NoError(t, err)
	r, err := NewRunner(plugin, opts, events)
	require.NoError(t, err)
	return r
}

func TestRunOutDir(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.js":                "log.debug('x');\n",
		"src/plain.js":              "console.log(1);\n",
		"src/broken.js":             "log.debug(;\n",
		"node_modules/dep/index.js": "log.debug(1);\n",
		"README.md":                 "# readme\n",
	})

	events := event.NewManager()
	rec := record(events)
	r := newTestRunner(t, Options{OutDir: out, Jobs: 2}, events)

	summary, err := r.Run(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Transformed)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.Rewrites)

	got := readFile(t, filepath.Join(out, "src", "app.js"))
	assert.Equal(t, "log.debug(...log.prefix('x'));\n\n//# sourceMappingURL=app.js.map", got)

	var doc struct {
		Version        int      `json:"version"`
		File           string   `json:"file"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
	}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(out, "src", "app.js.map"))), &doc))
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, "app.js", doc.File)
	require.Len(t, doc.Sources, 1)
	assert.True(t, strings.HasSuffix(doc.Sources[0], "src/app.js"), doc.Sources[0])
	assert.Equal(t, []string{"log.debug('x');\n"}, doc.SourcesContent)

	assert.Equal(t, "console.log(1);\n", readFile(t, filepath.Join(out, "src", "plain.js")))
	assert.Equal(t, "log.debug(;\n", readFile(t, filepath.Join(out, "src", "broken.js")))
	assert.NoFileExists(t, filepath.Join(out, "node_modules", "dep", "index.js"))
	assert.NoFileExists(t, filepath.Join(out, "README.md"))

	assert.Equal(t, 1, rec.count(event.TypeFileTransformed))
	assert.Equal(t, 2, rec.count(event.TypeFileUnchanged))
	assert.Equal(t, 2, rec.count(event.TypeFileSkipped))
	assert.Equal(t, 1, rec.count(event.TypeWarning))
	assert.Equal(t, 1, rec.count(event.TypeRunFinished))
}

func TestRunInPlaceInlineMap(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "logger.warn(x as number);"})

	r := newTestRunner(t, Options{InPlace: true, InlineSourceMap: true}, nil)
	summary, err := r.Run(context.Background(), []string{filepath.Join(root, "a.ts")})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Transformed)

	got := readFile(t, filepath.Join(root, "a.ts"))
	assert.True(t, strings.HasPrefix(got, "logger.warn(...logger.prefix(x as number));\n//# sourceMappingURL=data:application/json;charset=utf-8;base64,"), got)
	assert.NoFileExists(t, filepath.Join(root, "a.ts.map"))
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "log.info(1);"})

	r := newTestRunner(t, Options{DryRun: true}, nil)
	summary, err := r.Run(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Transformed)
	assert.Equal(t, "log.info(1);", readFile(t, filepath.Join(root, "a.js")))
}

func TestRunMissingRoot(t *testing.T) {
	r := newTestRunner(t, Options{DryRun: true}, nil)
	_, err := r.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestNewRunnerRequiresOutput(t *testing.T) {
	plugin, err := NewPlugin(PluginOptions{Transform: transform.DefaultConfig()})
	require.NoError(t, err)
	_, err = NewRunner(plugin, Options{}, nil)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRunFile(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, map[string]string{"lib/x.js": "this.logger.error(e);"})

	r := newTestRunner(t, Options{OutDir: out}, nil)
	require.NoError(t, r.RunFile(context.Background(), root, filepath.Join(root, "lib", "x.js")))
	assert.True(t, strings.HasPrefix(readFile(t, filepath.Join(out, "lib", "x.js")), "this.logger.error(...this.logger.prefix(e));"))
}

func TestStream(t *testing.T) {
	r := newTestRunner(t, Options{DryRun: true}, nil)

	var out bytes.Buffer
	require.NoError(t, r.Stream(context.Background(), strings.NewReader("log.debug(a, b);"), &out, "stdin.js"))
	assert.True(t, strings.HasPrefix(out.String(), "log.debug(...log.prefix(a, b));\n//# sourceMappingURL=data:"))

	out.Reset()
	require.NoError(t, r.Stream(context.Background(), strings.NewReader("console.log(1);"), &out, "stdin.js"))
	assert.Equal(t, "console.log(1);", out.String())
}

func TestRunReplacesExistingSourceMappingURL(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "log.debug(1);\n//# sourceMappingURL=a.js.map\n"})

	r := newTestRunner(t, Options{OutDir: out}, nil)
	_, err := r.Run(context.Background(), []string{root})
	require.NoError(t, err)

	got := readFile(t, filepath.Join(out, "a.js"))
	assert.Equal(t, "log.debug(...log.prefix(1));\n//# sourceMappingURL=a.js.map", got)
}

func TestStreamReplacesExistingSourceMappingURL(t *testing.T) {
	r := newTestRunner(t, Options{DryRun: true}, nil)

	var out bytes.Buffer
	in := "log.debug(a);\n//@ sourceMappingURL=data:application/json;base64,e30=\n"
	require.NoError(t, r.Stream(context.Background(), strings.NewReader(in), &out, "stdin.js"))
	assert.Equal(t, 1, strings.Count(out.String(), "sourceMappingURL="), out.String())
	assert.True(t, strings.HasPrefix(out.String(), "log.debug(...log.prefix(a));\n//# sourceMappingURL=data:"))
}

func TestStripSourceMappingURL(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"none", "a();\n", "a();\n"},
		{"trailing", "a();\n//# sourceMappingURL=a.js.map\n", "a();"},
		{"legacy", "a();\r\n//@ sourceMappingURL=a.js.map", "a();"},
		{"only comment", "//# sourceMappingURL=a.js.map", ""},
		{"not last", "//# sourceMappingURL=a.js.map\na();", "//# sourceMappingURL=a.js.map\na();"},
		{"inline after code", "a(); //# sourceMappingURL=a.js.map", "a(); //# sourceMappingURL=a.js.map"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripSourceMappingURL(tt.code))
		})
	}
}
