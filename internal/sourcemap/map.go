// Package sourcemap builds Source Map v3 documents that trace rewritten text
// back to the original.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"github.com/bethropolis/logprefix/internal/types"
)

// Segment maps a generated column to an original line and column.
// Columns are UTF-16 code units, lines are 0-based.
type Segment struct {
	GenCol  int
	SrcLine int
	SrcCol  int
}

// Map is a Source Map v3 document with a single source.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`

	lines [][]Segment
}

// String returns the JSON encoding of the map.
func (m *Map) String() string {
	data, err := json.Marshal(m)
	if err != nil {
		// Every field is a string or a slice of strings.
		panic(err)
	}
	return string(data)
}

// DataURL returns the map as a base64 data URL suitable for an inline
// sourceMappingURL comment.
func (m *Map) DataURL() string {
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(m.String()))
}

// Lines returns the decoded segments, one slice per generated line.
func (m *Map) Lines() [][]Segment {
	return m.lines
}

// Lookup returns the original position for a generated line and column,
// using the closest segment at or before col on that line.
func (m *Map) Lookup(line, col int) (types.Position, bool) {
	if line < 0 || line >= len(m.lines) {
		return types.Position{}, false
	}
	segs := m.lines[line]
	i := sort.Search(len(segs), func(i int) bool { return segs[i].GenCol > col })
	if i == 0 {
		return types.Position{}, false
	}
	s := segs[i-1]
	return types.Position{Line: s.SrcLine, Col: s.SrcCol}, true
}

func encodeMappings(lines [][]Segment) string {
	var sb strings.Builder
	var prevSrcLine, prevSrcCol int
	for i, segs := range lines {
		if i > 0 {
			sb.WriteByte(';')
		}
		prevGenCol := 0
		for j, s := range segs {
			if j > 0 {
				sb.WriteByte(',')
			}
			appendVLQ(&sb, s.GenCol-prevGenCol)
			appendVLQ(&sb, 0) // single source
			appendVLQ(&sb, s.SrcLine-prevSrcLine)
			appendVLQ(&sb, s.SrcCol-prevSrcCol)
			prevGenCol, prevSrcLine, prevSrcCol = s.GenCol, s.SrcLine, s.SrcCol
		}
	}
	return sb.String()
}
