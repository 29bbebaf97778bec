package gfx

import (
	"encoding/binary"
	"math"

	"github.com/fzipp/bmfont"
)

// TextVertex is the per-vertex format produced by BuildTextMesh: screen-space
// position and texture coordinates into the font page.
type TextVertex struct {
	X, Y float32
	U, V float32
}

const textVertexSize = 16

// TextVertexLayout describes TextVertex for shader registration.
func TextVertexLayout() VertexLayout {
	return NewVertexLayout().
		Field("position", AttrVec2).
		Field("uv", AttrVec2).
		MustBuild(textVertexSize)
}

// BuildTextMesh lays out a string with a bitmap font descriptor and returns
// two triangles per glyph, ready for ImmMesh or RegisterMesh with
// TextVertexLayout. Positions are in pixels from the given origin; only the
// first font page is referenced.
func BuildTextMesh(desc *bmfont.Descriptor, text string, originX, originY float32) ([]byte, uint32) {
	pageW := float32(desc.Common.ScaleW)
	pageH := float32(desc.Common.ScaleH)

	penX := originX
	penY := originY
	var verts []byte
	var count uint32

	var prev rune = -1
	for _, r := range text {
		if r == '\n' {
			penX = originX
			penY += float32(desc.Common.LineHeight)
			prev = -1
			continue
		}
		ch, ok := desc.Chars[r]
		if !ok {
			prev = r
			continue
		}
		if prev >= 0 {
			if k, ok := desc.Kerning[bmfont.CharPair{First: prev, Second: r}]; ok {
				penX += float32(k.Amount)
			}
		}

		x0 := penX + float32(ch.XOffset)
		y0 := penY + float32(ch.YOffset)
		x1 := x0 + float32(ch.Width)
		y1 := y0 + float32(ch.Height)
		u0 := float32(ch.X) / pageW
		v0 := float32(ch.Y) / pageH
		u1 := (float32(ch.X) + float32(ch.Width)) / pageW
		v1 := (float32(ch.Y) + float32(ch.Height)) / pageH

		quad := [6]TextVertex{
			{x0, y0, u0, v0},
			{x1, y0, u1, v0},
			{x1, y1, u1, v1},
			{x0, y0, u0, v0},
			{x1, y1, u1, v1},
			{x0, y1, u0, v1},
		}
		for _, v := range quad {
			verts = appendF32(verts, v.X)
			verts = appendF32(verts, v.Y)
			verts = appendF32(verts, v.U)
			verts = appendF32(verts, v.V)
		}
		count += 6

		penX += float32(ch.XAdvance)
		prev = r
	}
	return verts, count
}

func appendF32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}
