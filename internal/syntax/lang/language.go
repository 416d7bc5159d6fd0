// Package lang describes the grammars the rewriter can parse and picks one
// per file.
package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Language is a tree-sitter grammar with the file extensions it handles.
type Language struct {
	Name           string
	TreeSitterLang *sitter.Language
	Extensions     []string // with leading dot
}

func (l *Language) String() string {
	if l == nil {
		return "<nil>"
	}
	return l.Name
}
