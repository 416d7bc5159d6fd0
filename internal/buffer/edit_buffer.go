package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/logprefix/internal/types"
)

var (
	// ErrOverlap is returned when an edit partially overlaps a recorded edit,
	// or lands inside an edit that does not keep its original text.
	ErrOverlap = errors.New("edit overlaps an existing edit")
	// ErrOutOfRange is returned when an edit falls outside the original text.
	ErrOutOfRange = errors.New("edit range outside of source")
)

// EditBuffer stages edits against the original text. Edits are kept sorted by
// original offset and are either disjoint or strictly nested inside a wrapped
// edit, so materializing never has to re-derive offsets.
type EditBuffer struct {
	original []byte
	size     uint32
	lineIdx  []uint32 // offsets of '\n' in original
	edits    []types.Edit
}

var _ Buffer = (*EditBuffer)(nil)

// NewEditBuffer creates a buffer over a copy of src.
func NewEditBuffer(src []byte) *EditBuffer {
	size, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	original := append([]byte(nil), src...)
	return &EditBuffer{
		original: original,
		size:     size,
		lineIdx:  buildLineIndex(original),
	}
}

// Overwrite replaces original bytes [start, end) with text.
func (b *EditBuffer) Overwrite(start, end uint32, text string) error {
	return b.add(types.Edit{Start: start, End: end, Text: text})
}

// Wrap surrounds original bytes [start, end) with prefix and suffix. The
// wrapped bytes stay in the output, and later edits may nest inside them.
func (b *EditBuffer) Wrap(start, end uint32, prefix, suffix string) error {
	return b.add(types.Edit{Start: start, End: end, Prefix: prefix, Suffix: suffix, Wrap: true})
}

func (b *EditBuffer) add(e types.Edit) error {
	if e.Start > e.End || e.End > b.size {
		return fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOutOfRange, e.Start, e.End, b.size)
	}
	for _, prev := range b.edits {
		if conflicts(prev, e) {
			return fmt.Errorf("%w: [%d,%d) vs [%d,%d)", ErrOverlap, e.Start, e.End, prev.Start, prev.End)
		}
	}
	e.StartPosition = b.point(e.Start)
	e.EndPosition = b.point(e.End)

	idx := sort.Search(len(b.edits), func(i int) bool {
		return editLess(e, b.edits[i])
	})
	b.edits = append(b.edits, types.Edit{})
	copy(b.edits[idx+1:], b.edits[idx:])
	b.edits[idx] = e
	return nil
}

// conflicts reports whether a and b cannot both be applied.
func conflicts(a, b types.Edit) bool {
	switch {
	case a.Contains(b):
		return !a.Wrap
	case b.Contains(a):
		return !b.Wrap
	case a.Start == b.Start && a.End == b.End:
		return true
	default:
		return a.Overlaps(b)
	}
}

// editLess orders edits by start; at equal starts insertions come first and
// enclosing edits precede the edits they contain.
func editLess(a, b types.Edit) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	aEmpty, bEmpty := a.Start == a.End, b.Start == b.End
	if aEmpty != bEmpty {
		return aEmpty
	}
	return a.End > b.End
}

// Edits returns a copy of the recorded edits in application order.
func (b *EditBuffer) Edits() []types.Edit {
	out := make([]types.Edit, len(b.edits))
	copy(out, b.edits)
	return out
}

// Changed reports whether any edit was recorded.
func (b *EditBuffer) Changed() bool {
	return len(b.edits) > 0
}

// Original returns the unmodified text.
func (b *EditBuffer) Original() []byte {
	return b.original
}

// Bytes materializes the edited text in a single pass over the original.
func (b *EditBuffer) Bytes() []byte {
	if len(b.edits) == 0 {
		return append([]byte(nil), b.original...)
	}
	w := &writer{src: b.original}
	w.out.Grow(len(b.original) + 64*len(b.edits))
	Walk(b.original, b.edits, w)
	return w.out.Bytes()
}

func (b *EditBuffer) String() string {
	return string(b.Bytes())
}

// point converts a byte offset into a tree-sitter style row/column (bytes).
func (b *EditBuffer) point(off uint32) sitter.Point {
	row := sort.Search(len(b.lineIdx), func(i int) bool { return b.lineIdx[i] >= off })
	var lineStart uint32
	if row > 0 {
		lineStart = b.lineIdx[row-1] + 1
	}
	r, _ := safecast.Conv[uint32](row)
	return sitter.Point{Row: r, Column: off - lineStart}
}

type writer struct {
	src []byte
	out bytes.Buffer
}

func (w *writer) Original(start, end uint32) { w.out.Write(w.src[start:end]) }
func (w *writer) Insert(text string, _ uint32) { w.out.WriteString(text) }

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, c := range content {
		if c == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}
