package buffer

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditBufferNoEdits(t *testing.T) {
	src := []byte("console.log('x');\n")
	b := NewEditBuffer(src)

	assert.False(t, b.Changed())
	assert.Equal(t, src, b.Bytes())
	assert.Empty(t, b.Edits())
}

func TestEditBufferOverwrite(t *testing.T) {
	b := NewEditBuffer([]byte("hello world"))
	require.NoError(t, b.Overwrite(6, 11, "there"))

	assert.True(t, b.Changed())
	assert.Equal(t, "hello there", b.String())
	assert.Equal(t, "hello world", string(b.Original()))
}

func TestEditBufferWrap(t *testing.T) {
	b := NewEditBuffer([]byte("f(a, b);"))
	require.NoError(t, b.Wrap(2, 6, "g(", ")"))

	assert.Equal(t, "f(g(a, b));", b.String())
}

func TestEditBufferOrderIndependent(t *testing.T) {
	src := []byte("a(1); b(2); c(3);")

	forward := NewEditBuffer(src)
	require.NoError(t, forward.Wrap(2, 3, "[", "]"))
	require.NoError(t, forward.Wrap(8, 9, "[", "]"))
	require.NoError(t, forward.Wrap(14, 15, "[", "]"))

	backward := NewEditBuffer(src)
	require.NoError(t, backward.Wrap(14, 15, "[", "]"))
	require.NoError(t, backward.Wrap(2, 3, "[", "]"))
	require.NoError(t, backward.Wrap(8, 9, "[", "]"))

	assert.Equal(t, "a([1]); b([2]); c([3]);", forward.String())
	assert.Equal(t, forward.String(), backward.String())
	assert.Equal(t, forward.Edits(), backward.Edits())
}

func TestEditBufferNestedWrap(t *testing.T) {
	// outer(x, inner(y))
	src := []byte("outer(x, inner(y))")
	b := NewEditBuffer(src)
	require.NoError(t, b.Wrap(15, 16, "<", ">")) // y
	require.NoError(t, b.Wrap(6, 17, "{", "}"))  // x, inner(y)

	assert.Equal(t, "outer({x, inner(<y>)})", b.String())
}

func TestEditBufferConflicts(t *testing.T) {
	tests := []struct {
		name  string
		first func(*EditBuffer) error
		next  func(*EditBuffer) error
	}{
		{
			name:  "partial overlap",
			first: func(b *EditBuffer) error { return b.Wrap(0, 5, "(", ")") },
			next:  func(b *EditBuffer) error { return b.Wrap(3, 8, "(", ")") },
		},
		{
			name:  "identical range",
			first: func(b *EditBuffer) error { return b.Wrap(2, 4, "(", ")") },
			next:  func(b *EditBuffer) error { return b.Overwrite(2, 4, "zz") },
		},
		{
			name:  "inside overwrite",
			first: func(b *EditBuffer) error { return b.Overwrite(0, 8, "x") },
			next:  func(b *EditBuffer) error { return b.Wrap(2, 4, "(", ")") },
		},
		{
			name:  "overwrite around existing edit",
			first: func(b *EditBuffer) error { return b.Wrap(2, 4, "(", ")") },
			next:  func(b *EditBuffer) error { return b.Overwrite(0, 8, "x") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewEditBuffer([]byte("0123456789"))
			require.NoError(t, tt.first(b))
			err := tt.next(b)
			assert.ErrorIs(t, err, ErrOverlap)
			assert.Len(t, b.Edits(), 1)
		})
	}
}

func TestEditBufferOutOfRange(t *testing.T) {
	b := NewEditBuffer([]byte("abc"))

	assert.ErrorIs(t, b.Overwrite(2, 9, "x"), ErrOutOfRange)
	assert.ErrorIs(t, b.Overwrite(2, 1, "x"), ErrOutOfRange)
	assert.False(t, b.Changed())
}

func TestEditBufferInsertions(t *testing.T) {
	b := NewEditBuffer([]byte("abcd"))
	require.NoError(t, b.Overwrite(1, 3, "XY"))
	require.NoError(t, b.Overwrite(1, 1, "<"))
	require.NoError(t, b.Overwrite(3, 3, ">"))

	assert.Equal(t, "a<XY>d", b.String())
}

func TestEditBufferPositions(t *testing.T) {
	b := NewEditBuffer([]byte("one\ntwo\nthree"))
	require.NoError(t, b.Wrap(8, 13, "[", "]"))

	edits := b.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, sitter.Point{Row: 2, Column: 0}, edits[0].StartPosition)
	assert.Equal(t, sitter.Point{Row: 2, Column: 5}, edits[0].EndPosition)
}

func TestEditBufferCopiesSource(t *testing.T) {
	src := []byte("abc")
	b := NewEditBuffer(src)
	src[0] = 'z'

	assert.Equal(t, "abc", string(b.Original()))
}
