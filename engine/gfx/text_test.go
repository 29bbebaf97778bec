package gfx

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/fzipp/bmfont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFont() *bmfont.Descriptor {
	return &bmfont.Descriptor{
		Common: bmfont.Common{
			LineHeight: 12,
			ScaleW:     64,
			ScaleH:     64,
		},
		Chars: map[rune]bmfont.Char{
			'A': {X: 0, Y: 0, Width: 8, Height: 10, XOffset: 0, YOffset: 1, XAdvance: 9},
			'B': {X: 8, Y: 0, Width: 8, Height: 10, XOffset: 1, YOffset: 1, XAdvance: 10},
		},
		Kerning: map[bmfont.CharPair]bmfont.Kerning{
			{First: 'A', Second: 'B'}: {Amount: -2},
		},
	}
}

func readF32(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

func TestBuildTextMeshQuadPerGlyph(t *testing.T) {
	verts, count := BuildTextMesh(testFont(), "AB", 0, 0)
	assert.Equal(t, uint32(12), count)
	require.Equal(t, 12*textVertexSize, len(verts))

	// first vertex of 'A': position from offsets, uv from page coordinates
	assert.Equal(t, float32(0), readF32(verts, 0))
	assert.Equal(t, float32(1), readF32(verts, 1))
	assert.Equal(t, float32(0), readF32(verts, 2))
	assert.Equal(t, float32(0), readF32(verts, 3))

	// 'B' starts at XAdvance(9) + kerning(-2) + XOffset(1) = 8
	assert.Equal(t, float32(8), readF32(verts, 6*4))

	// uv of 'B' references its page rectangle
	assert.Equal(t, float32(8)/64, readF32(verts, 6*4+2))
}

func TestBuildTextMeshNewline(t *testing.T) {
	verts, count := BuildTextMesh(testFont(), "A\nA", 5, 0)
	assert.Equal(t, uint32(12), count)

	// second glyph returns to the origin X and drops one line
	assert.Equal(t, float32(5), readF32(verts, 6*4))
	assert.Equal(t, float32(13), readF32(verts, 6*4+1))
}

func TestBuildTextMeshSkipsUnknownGlyphs(t *testing.T) {
	_, count := BuildTextMesh(testFont(), "A?A", 0, 0)
	assert.Equal(t, uint32(12), count)
}

func TestTextVertexLayout(t *testing.T) {
	l := TextVertexLayout()
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, uint32(textVertexSize), l.Size)
	assert.Equal(t, uint32(8), l.Attributes[1].Offset)
}
