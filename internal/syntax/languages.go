// internal/syntax/languages.go
package syntax

import (
	"sync"

	"github.com/bethropolis/logprefix/internal/logger"
	"github.com/bethropolis/logprefix/internal/syntax/lang"

	// Grammar bindings
	jssrc "github.com/smacker/go-tree-sitter/javascript" // also covers JSX
	tsxsrc "github.com/smacker/go-tree-sitter/typescript/tsx"
	tssrc "github.com/smacker/go-tree-sitter/typescript/typescript"
)

var (
	// JavaScript is the fallback grammar for unknown extensions.
	JavaScript = &lang.Language{
		Name:           "JavaScript",
		TreeSitterLang: jssrc.GetLanguage(),
		Extensions:     []string{".js", ".mjs", ".cjs", ".jsx"},
	}

	TypeScript = &lang.Language{
		Name:           "TypeScript",
		TreeSitterLang: tssrc.GetLanguage(),
		Extensions:     []string{".ts", ".mts", ".cts"},
	}

	TSX = &lang.Language{
		Name:           "TSX",
		TreeSitterLang: tsxsrc.GetLanguage(),
		Extensions:     []string{".tsx"},
	}

	registry     = lang.NewRegistry()
	registerOnce sync.Once
)

// RegisterLanguages adds the built-in grammars to the package registry. It is
// safe to call more than once.
func RegisterLanguages() {
	registerOnce.Do(func() {
		logger.DebugTagf("lang", "Registering languages...")

		for _, l := range []*lang.Language{JavaScript, TypeScript, TSX} {
			if err := registry.Register(l); err != nil {
				logger.Errorf("%v", err)
			}
		}
		registry.SetFallback(JavaScript)

		logger.DebugTagf("lang", "Registration complete. Registered %d languages.", len(registry.Languages()))
	})
}

// LanguageFor picks the grammar for a file identifier by extension.
func LanguageFor(fileID string) *lang.Language {
	RegisterLanguages()
	return registry.ForFile(fileID)
}

// Languages lists the built-in grammars.
func Languages() []*lang.Language {
	RegisterLanguages()
	return registry.Languages()
}
