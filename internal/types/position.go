// internal/types/position.go
package types

// Position is a location in text.
// Line is the 0-based line index.
// Col is the 0-based column counted in UTF-16 code units, which is what
// source map consumers in browsers expect.
type Position struct {
	Line int
	Col  int
}
