package types

import sitter "github.com/smacker/go-tree-sitter"

// Edit is a single overwrite recorded against the original text.
// Start and End are byte offsets into the original; the range is half-open.
type Edit struct {
	Start uint32
	End   uint32

	// Prefix and Suffix surround the replacement body.
	Prefix string
	Suffix string

	// Text replaces the original bytes when Wrap is false.
	Text string

	// Wrap keeps the original bytes [Start, End) verbatim between Prefix and Suffix.
	// Edits nested inside a wrapped range apply to that embedded copy.
	Wrap bool

	StartPosition sitter.Point // Row/column of Start in the original, informational
	EndPosition   sitter.Point
}

// Len returns the length of the original range covered by the edit.
func (e Edit) Len() uint32 {
	return e.End - e.Start
}

// Contains reports whether other lies inside e without being the same range.
// A zero-length edit sitting on either boundary of e is adjacent, not contained.
func (e Edit) Contains(other Edit) bool {
	if other.Start == other.End {
		return e.Start < other.Start && other.Start < e.End
	}
	if e.Start == other.Start && e.End == other.End {
		return false
	}
	return e.Start <= other.Start && other.End <= e.End
}

// Overlaps reports whether the half-open ranges of e and other intersect.
// Two zero-length edits never overlap.
func (e Edit) Overlaps(other Edit) bool {
	if e.Start == e.End && other.Start == other.End {
		return false
	}
	if e.Start == e.End {
		return other.Start < e.Start && e.Start < other.End
	}
	if other.Start == other.End {
		return e.Start < other.Start && other.Start < e.End
	}
	return e.Start < other.End && other.Start < e.End
}
