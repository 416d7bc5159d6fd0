package buffer

import "github.com/bethropolis/logprefix/internal/types"

// Walk replays src with edits applied, reporting every output chunk to v in
// order. edits must be sorted and validated the way EditBuffer keeps them.
func Walk(src []byte, edits []types.Edit, v Visitor) {
	walkRange(0, uint32(len(src)), edits, v)
}

func walkRange(lo, hi uint32, edits []types.Edit, v Visitor) {
	pos := lo
	for i := 0; i < len(edits); {
		e := edits[i]
		j := i + 1
		for j < len(edits) && e.Contains(edits[j]) {
			j++
		}
		if pos < e.Start {
			v.Original(pos, e.Start)
		}
		if e.Prefix != "" {
			v.Insert(e.Prefix, e.Start)
		}
		if e.Wrap {
			walkRange(e.Start, e.End, edits[i+1:j], v)
		} else if e.Text != "" {
			v.Insert(e.Text, e.Start)
		}
		if e.Suffix != "" {
			v.Insert(e.Suffix, e.End)
		}
		pos = e.End
		i = j
	}
	if pos < hi {
		v.Original(pos, hi)
	}
}
