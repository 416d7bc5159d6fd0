// Package syntax parses source text with tree-sitter and exposes the small
// amount of tree plumbing the rewriter needs.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/syntax/lang"
)

// ErrNoLanguage is returned when Parse is called without a grammar.
var ErrNoLanguage = errors.New("no language provided for parsing")

// ParseError describes the first syntax error found in a tree.
// Line is 1-based and Column is a 0-based byte column.
type ParseError struct {
	Message string
	Line    uint32
	Column  uint32
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message, e.Line, e.Column)
}

// Parse builds a syntax tree for src. Tree-sitter recovers from errors, so a
// tree containing ERROR or MISSING nodes is reported as a *ParseError and no
// tree is returned. The caller owns the returned tree and must Close it.
func Parse(ctx context.Context, src []byte, l *lang.Language) (*sitter.Tree, error) {
	if l == nil || l.TreeSitterLang == nil {
		return nil, ErrNoLanguage
	}
	parser := sitter.NewParser()
	parser.SetLanguage(l.TreeSitterLang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		perr := newParseError(firstError(root), src)
		tree.Close()
		logger.DebugTagf("syntax", "%s parse error: %v", l.Name, perr)
		return nil, perr
	}
	return tree, nil
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	Walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return root
	}
	return found
}

func newParseError(n *sitter.Node, src []byte) *ParseError {
	p := n.StartPoint()
	perr := &ParseError{Line: p.Row + 1, Column: p.Column}
	switch {
	case n.IsMissing():
		perr.Message = fmt.Sprintf("Missing %q", n.Type())
	default:
		perr.Message = "Unexpected token"
		if tok := snippet(Text(n, src)); tok != "" {
			perr.Message = fmt.Sprintf("Unexpected token %q", tok)
		}
	}
	return perr
}

// snippet trims an error node's text down to its first line, at most 16 bytes.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 16 {
		s = s[:16]
	}
	return strings.TrimSpace(s)
}
