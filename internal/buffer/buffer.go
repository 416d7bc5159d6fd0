// internal/buffer/buffer.go
package buffer

import "github.com/bethropolis/logprefix/internal/types"

// Buffer defines the operations needed to stage text replacements against
// an immutable original and materialize the result once.
type Buffer interface {
	// Overwrite replaces original bytes [start, end) with text.
	Overwrite(start, end uint32, text string) error
	// Wrap keeps original bytes [start, end) and surrounds them with prefix and suffix.
	Wrap(start, end uint32, prefix, suffix string) error
	// Edits returns the recorded edits in application order.
	Edits() []types.Edit
	Changed() bool
	Original() []byte
	Bytes() []byte
}

// Visitor receives the output of a Walk as a sequence of chunks.
type Visitor interface {
	// Original is called for an unchanged run of original bytes [start, end).
	Original(start, end uint32)
	// Insert is called for generated text attributed to original offset at.
	Insert(text string, at uint32)
}
