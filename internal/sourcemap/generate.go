package sourcemap

import (
	"sort"
	"unicode/utf8"

	"github.com/bethropolis/logprefix/internal/buffer"
	"github.com/bethropolis/logprefix/internal/types"
)

// Options controls map generation.
type Options struct {
	Source         string // name recorded in "sources"
	File           string // optional "file" field
	IncludeContent bool   // embed the original text in "sourcesContent"
	Hires          bool   // one segment per character of unchanged text
}

// Generate derives a map for src rewritten by edits. It depends only on the
// original text and the edit list, never on the rewritten output.
func Generate(src []byte, edits []types.Edit, opts Options) *Map {
	g := &generator{
		src:        src,
		hires:      opts.Hires,
		lineStarts: lineStarts(src),
	}
	g.ensureLine()
	buffer.Walk(src, edits, g)

	m := &Map{
		Version:  3,
		File:     opts.File,
		Sources:  []string{opts.Source},
		Names:    []string{},
		Mappings: encodeMappings(g.lines),
		lines:    g.lines,
	}
	if opts.IncludeContent {
		m.SourcesContent = []string{string(src)}
	}
	return m
}

type generator struct {
	src        []byte
	hires      bool
	lineStarts []int

	line  int // current generated line
	col   int // current generated column, UTF-16 units
	lines [][]Segment
}

var _ buffer.Visitor = (*generator)(nil)

func (g *generator) Original(start, end uint32) {
	srcLine, srcCol := g.position(int(start))
	first := true
	for i := int(start); i < int(end); {
		r, size := utf8.DecodeRune(g.src[i:])
		i += size
		if r == '\n' {
			g.newline()
			srcLine++
			srcCol = 0
			first = true
			continue
		}
		if g.hires || first {
			g.add(srcLine, srcCol)
		}
		w := utf16Len(r)
		g.col += w
		srcCol += w
		first = false
	}
}

func (g *generator) Insert(text string, at uint32) {
	srcLine, srcCol := g.position(int(at))
	first := true
	for _, r := range text {
		if r == '\n' {
			g.newline()
			first = true
			continue
		}
		if first {
			g.add(srcLine, srcCol)
			first = false
		}
		g.col += utf16Len(r)
	}
}

func (g *generator) add(srcLine, srcCol int) {
	g.ensureLine()
	segs := g.lines[g.line]
	seg := Segment{GenCol: g.col, SrcLine: srcLine, SrcCol: srcCol}
	if n := len(segs); n > 0 && segs[n-1].GenCol == g.col {
		segs[n-1] = seg
		return
	}
	g.lines[g.line] = append(segs, seg)
}

func (g *generator) newline() {
	g.line++
	g.col = 0
	g.ensureLine()
}

func (g *generator) ensureLine() {
	for len(g.lines) <= g.line {
		g.lines = append(g.lines, nil)
	}
}

// position converts a byte offset in the original to a 0-based line and a
// UTF-16 column.
func (g *generator) position(off int) (int, int) {
	line := sort.Search(len(g.lineStarts), func(i int) bool { return g.lineStarts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	col := 0
	for i := g.lineStarts[line]; i < off && i < len(g.src); {
		r, size := utf8.DecodeRune(g.src[i:])
		col += utf16Len(r)
		i += size
	}
	return line, col
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
