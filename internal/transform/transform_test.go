package transform

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/logprefix/internal/diag"
	"github.com/bethropolis/logprefix/internal/types"
)

func newTestTransformer(opts ...Option) *Transformer {
	return New(DefaultConfig(), opts...)
}

func TestTransformLiteralArguments(t *testing.T) {
	tr := newTestTransformer()
	res := tr.Transform("log.debug('Here are all of the things', variable, object);", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.debug(...log.prefix('Here are all of the things', variable, object));", res.Code)
	assert.Equal(t, 1, res.Rewrites)
}

func TestTransformUnchanged(t *testing.T) {
	tr := newTestTransformer()
	tests := []struct {
		name string
		code string
	}{
		{"console", "console.log('x');"},
		{"no arguments", "log.debug();"},
		{"unknown receiver", "customFunction.debug('x');"},
		{"unknown method", "log.customMethod('x');"},
		{"plural receiver", "logs.debug('x');"},
		{"plain function", "debug('x');"},
		{"parenthesized receiver", "(customFunction).debug('x');"},
		{"nested parentheses", "((/* c */ logs)).info('x');"},
		{"computed member", "log['debug']('x');"},
		{"tagged template", "log.debug`x`;"},
		{"private method", "class A { #debug(x) {} run() { this.#debug('x'); } }"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, tr.Transform(tt.code, "app.js"))
		})
	}
}

func TestTransformReceivers(t *testing.T) {
	tr := newTestTransformer()
	tests := []struct {
		name string
		code string
		want string
	}{
		{"compound", "this.logger.debug('x');", "this.logger.debug(...this.logger.prefix('x'));"},
		{"this", "this.info('x');", "this.info(...this.prefix('x'));"},
		{"logger", "logger.warn('x');", "logger.warn(...logger.prefix('x'));"},
		{"suffix log", "myLog.info('x');", "myLog.info(...myLog.prefix('x'));"},
		{"suffix logger", "appLogger.error('x');", "appLogger.error(...appLogger.prefix('x'));"},
		{"case insensitive", "LOG.trace('x');", "LOG.trace(...LOG.prefix('x'));"},
		{"call receiver", "getLogger('a').debug(x);", "getLogger('a').debug(...getLogger('a').prefix(x));"},
		{"this chain with custom name", "this.customLogger.debug(1);", "this.customLogger.debug(...this.customLogger.prefix(1));"},
		{"optional chain", "log?.debug('x');", "log?.debug(...log.prefix('x'));"},
		{"spread argument", "log.debug(...args);", "log.debug(...log.prefix(...args));"},
		{"parenthesized logger", "(log).debug(x);", "(log).debug(...(log).prefix(x));"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tr.Transform(tt.code, "app.js")
			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.Code)
		})
	}
}

func TestTransformKeepsFormatting(t *testing.T) {
	tr := newTestTransformer()
	code := "log.debug(/* lead */ 'a',\n\t b /* tail */);"
	res := tr.Transform(code, "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.debug(/* lead */ ...log.prefix('a',\n\t b) /* tail */);", res.Code)
}

func TestTransformZeroArgumentCallAmongOthers(t *testing.T) {
	tr := newTestTransformer()
	res := tr.Transform("log.debug();\nlog.info('x');", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.debug();\nlog.info(...log.prefix('x'));", res.Code)
	assert.Equal(t, 1, res.Rewrites)
}

func TestTransformSelectiveLevels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevels = []string{"debug", "info"}
	tr := New(cfg)

	res := tr.Transform("log.warn('x'); log.debug('y');", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.warn('x'); log.debug(...log.prefix('y'));", res.Code)
}

func TestTransformEmptyLevelsRewritesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevels = []string{}
	tr := New(cfg)
	assert.Equal(t, 0, tr.Levels().Len())
	assert.Nil(t, tr.Transform("log.debug('x');", "app.js"))
}

func TestTransformNestedCalls(t *testing.T) {
	tr := newTestTransformer()
	res := tr.Transform("log.debug('a', log.info('b'));", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.debug(...log.prefix('a', log.info(...log.prefix('b'))));", res.Code)
	assert.Equal(t, 2, res.Rewrites)
}

func TestTransformRerunWrapsAgain(t *testing.T) {
	tr := newTestTransformer()
	first := tr.Transform("log.debug('x');", "app.js")
	require.NotNil(t, first)
	assert.Equal(t, "log.debug(...log.prefix('x'));", first.Code)

	second := tr.Transform(first.Code, "app.js")
	require.NotNil(t, second)
	assert.Equal(t, "log.debug(...log.prefix(...log.prefix('x')));", second.Code)
	assert.Equal(t, 1, second.Rewrites)
}

func TestTransformMalformedInput(t *testing.T) {
	var warnings diag.Collector
	tr := newTestTransformer(WithWarner(&warnings))

	assert.NotPanics(t, func() {
		assert.Nil(t, tr.Transform("log.debug('x';\nconst = ;", "broken.js"))
	})
	got := warnings.Warnings()
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "Failed to parse broken.js: "), got[0])
}

func TestTransformIgnoresEarlyErrors(t *testing.T) {
	var warnings diag.Collector
	tr := newTestTransformer(WithWarner(&warnings))

	res := tr.Transform("let log = a;\nlet log = b;\nlog.debug(1);\nreturn 1;", "early.js")
	require.NotNil(t, res)
	assert.Equal(t, "let log = a;\nlet log = b;\nlog.debug(...log.prefix(1));\nreturn 1;", res.Code)
	assert.Empty(t, warnings.Warnings())
}

func TestTransformTypeScript(t *testing.T) {
	tr := newTestTransformer()
	code := "function run(logger: Logger): void {\n  logger.warn('x' as string, count!);\n}"
	res := tr.Transform(code, "src/run.ts")
	require.NotNil(t, res)
	assert.Contains(t, res.Code, "logger.warn(...logger.prefix('x' as string, count!));")
}

func TestTransformTSX(t *testing.T) {
	tr := newTestTransformer()
	code := "const App = () => { log.info('render'); return <div>{name}</div>; };"
	res := tr.Transform(code, "App.tsx")
	require.NotNil(t, res)
	assert.Contains(t, res.Code, "log.info(...log.prefix('render'));")
	assert.Contains(t, res.Code, "<div>{name}</div>")
}

func TestTransformCustomPrefixMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PrefixMethod = "format"
	res := New(cfg).Transform("log.info(a);", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "log.info(...log.format(a));", res.Code)
}

type namesPolicy map[string]bool

func (namesPolicy) Name() string {
	return "names"
}

func (p namesPolicy) Accept(id string) bool {
	return p[id]
}

func TestTransformWithReceiverPolicy(t *testing.T) {
	tr := newTestTransformer(WithReceiverPolicy(namesPolicy{"console": true}))
	assert.Equal(t, "names", tr.Policy().Name())

	res := tr.Transform("console.debug(1); log.debug(2); this.a.debug(3);", "app.js")
	require.NotNil(t, res)
	assert.Equal(t, "console.debug(...console.prefix(1)); log.debug(2); this.a.debug(...this.a.prefix(3));", res.Code)
}

func TestTransformSourceMap(t *testing.T) {
	tr := newTestTransformer()
	res := tr.Transform("log.debug(a);\nfoo();", "src/app.js")
	require.NotNil(t, res)
	require.NotNil(t, res.Map)

	assert.Equal(t, 3, res.Map.Version)
	assert.Equal(t, []string{"src/app.js"}, res.Map.Sources)
	assert.Equal(t, []string{"log.debug(a);\nfoo();"}, res.Map.SourcesContent)

	// "log.debug(...log.prefix(" is 24 columns wide.
	pos, ok := res.Map.Lookup(0, 24)
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 0, Col: 10}, pos)

	pos, ok = res.Map.Lookup(1, 0)
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 1, Col: 0}, pos)
}

func TestTransformSourceMapNested(t *testing.T) {
	tr := newTestTransformer()
	res := tr.Transform("log.debug('a',\n  log.info('b'));\nfoo();", "app.js")
	require.NotNil(t, res)
	require.Equal(t, "log.debug(...log.prefix('a',\n  log.info(...log.prefix('b'))));\nfoo();", res.Code)
	require.NotNil(t, res.Map)

	tests := []struct {
		name      string
		line, col int
		want      types.Position
	}{
		{"outer first argument", 0, 24, types.Position{Line: 0, Col: 10}},
		{"inner argument", 1, 25, types.Position{Line: 1, Col: 11}},
		{"inner call close", 1, 29, types.Position{Line: 1, Col: 14}},
		{"outer suffix", 1, 30, types.Position{Line: 1, Col: 15}},
		{"after outer suffix", 1, 32, types.Position{Line: 1, Col: 16}},
		{"next line", 2, 0, types.Position{Line: 2, Col: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := res.Map.Lookup(tt.line, tt.col)
			require.True(t, ok)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestTransformWithoutSourceMap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceMap = false
	res := New(cfg).Transform("log.debug(a);", "app.js")
	require.NotNil(t, res)
	assert.Nil(t, res.Map)
}

func TestTransformConcurrent(t *testing.T) {
	tr := newTestTransformer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := tr.Transform("log.debug('x');", "app.js")
			if assert.NotNil(t, res) {
				assert.Equal(t, "log.debug(...log.prefix('x'));", res.Code)
			}
		}()
	}
	wg.Wait()
}

func TestHeuristicPolicy(t *testing.T) {
	p := HeuristicPolicy{}
	for _, name := range []string{"log", "logger", "Log", "LOGGER", "this", "myLog", "appLogger", "catalog"} {
		assert.True(t, p.Accept(name), name)
	}
	for _, name := range []string{"console", "logs", "customFunction", "loggers", ""} {
		assert.False(t, p.Accept(name), name)
	}
}

func TestLevelSet(t *testing.T) {
	s := NewLevelSet("warn", "debug", "", "debug")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("debug"))
	assert.False(t, s.Has("Debug"))
	assert.Equal(t, []string{"debug", "warn"}, s.Names())
}
