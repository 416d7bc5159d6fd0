// Package transform rewrites loglevel calls so their arguments pass through
// the logger's prefix method: log.debug(a, b) becomes
// log.debug(...log.prefix(a, b)).
package transform

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/logprefix/internal/buffer"
	"github.com/bethropolis/logprefix/internal/diag"
	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/sourcemap"
	"github.com/bethropolis/logprefix/internal/syntax"
)

// DefaultPrefixMethod is the method called on the receiver to format arguments.
const DefaultPrefixMethod = "prefix"

// Config configures a Transformer.
type Config struct {
	// LogLevels lists the method names to rewrite. Nil means DefaultLogLevels;
	// an empty non-nil slice rewrites nothing.
	LogLevels []string
	// SourceMap enables map generation with the original embedded.
	SourceMap bool
	// Hires emits a mapping for every character of unchanged text.
	Hires bool
	// PrefixMethod is the formatting method name, "prefix" when empty.
	PrefixMethod string
}

// DefaultConfig returns the default configuration: every standard level,
// high resolution source maps.
func DefaultConfig() Config {
	return Config{
		SourceMap:    true,
		Hires:        true,
		PrefixMethod: DefaultPrefixMethod,
	}
}

// Result is a rewritten unit. A nil *Result means the input is unchanged.
type Result struct {
	Code     string
	Map      *sourcemap.Map // nil when source maps are disabled
	Rewrites int
}

// Option customizes a Transformer.
type Option func(*Transformer)

// WithWarner routes parse failure warnings to w.
func WithWarner(w diag.Warner) Option {
	return func(t *Transformer) {
		if w != nil {
			t.warner = w
		}
	}
}

// WithReceiverPolicy replaces the receiver name heuristic.
func WithReceiverPolicy(p ReceiverPolicy) Option {
	return func(t *Transformer) {
		if p != nil {
			t.policy = p
		}
	}
}

// Transformer is a configured rewriter. It holds no per-call state and is
// safe for concurrent use.
type Transformer struct {
	cfg        Config
	levels     LevelSet
	policy     ReceiverPolicy
	warner     diag.Warner
	classifier *Classifier
}

// New creates a Transformer.
func New(cfg Config, opts ...Option) *Transformer {
	if cfg.LogLevels == nil {
		cfg.LogLevels = DefaultLogLevels
	}
	if cfg.PrefixMethod == "" {
		cfg.PrefixMethod = DefaultPrefixMethod
	}
	t := &Transformer{
		cfg:    cfg,
		levels: NewLevelSet(cfg.LogLevels...),
		policy: HeuristicPolicy{},
		warner: diag.Nop,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	t.classifier = NewClassifier(t.levels, t.policy)
	return t
}

// Levels returns the configured level set.
func (t *Transformer) Levels() LevelSet {
	return t.levels
}

// Policy returns the receiver policy in use.
func (t *Transformer) Policy() ReceiverPolicy {
	return t.policy
}

// Transform rewrites code. id names the unit in warnings and in the map, and
// its extension selects the grammar. It returns nil when nothing changed,
// including when code does not parse.
func (t *Transformer) Transform(code, id string) *Result {
	return t.TransformContext(context.Background(), code, id)
}

// TransformContext is Transform with a context for the parser. A cancelled
// context yields nil without a warning.
func (t *Transformer) TransformContext(ctx context.Context, code, id string) *Result {
	src := []byte(code)
	tree, err := syntax.Parse(ctx, src, syntax.LanguageFor(id))
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		t.warner.Warn(fmt.Sprintf("Failed to parse %s: %v", id, err))
		return nil
	}
	defer tree.Close()

	buf := buffer.NewEditBuffer(src)
	rewrites := 0
	syntax.Walk(tree.RootNode(), func(n *sitter.Node) bool {
		site, ok := t.classifier.Match(n, src)
		if !ok || len(site.Arguments) == 0 {
			return true
		}
		receiver := ReceiverText(site.Callee, src)
		// Node ranges are always in bounds, so the only rejection is
		// buffer.ErrOverlap: a partial overlap with an earlier wrap.
		if err := rewriteArguments(site, receiver, t.cfg.PrefixMethod, buf); err != nil {
			p := n.StartPoint()
			logger.WarnTagf("transform", "%s:%d:%d: skipping %s.%s: %v", id, p.Row+1, p.Column, receiver, site.Method, err)
			return true
		}
		rewrites++
		return true
	})

	if rewrites == 0 {
		logger.DebugTagf("transform", "%s: no loglevel calls", id)
		return nil
	}
	logger.DebugTagf("transform", "%s: rewrote %d call sites", id, rewrites)

	res := &Result{Code: buf.String(), Rewrites: rewrites}
	if t.cfg.SourceMap {
		res.Map = sourcemap.Generate(buf.Original(), buf.Edits(), sourcemap.Options{
			Source:         id,
			IncludeContent: true,
			Hires:          t.cfg.Hires,
		})
	}
	return res
}
