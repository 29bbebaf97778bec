package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayoutBuilder(t *testing.T) {
	l, err := NewVertexLayout().
		Field("position", AttrVec2).
		Field("uv", AttrVec2).
		Field("color", AttrU8Vec4UN).
		Build(20)
	require.NoError(t, err)

	require.Len(t, l.Attributes, 3)
	assert.Equal(t, uint32(0), l.Attributes[0].Offset)
	assert.Equal(t, uint32(8), l.Attributes[1].Offset)
	assert.Equal(t, uint32(16), l.Attributes[2].Offset)
	assert.Equal(t, uint32(20), l.Size)
}

func TestVertexLayoutSizeMismatch(t *testing.T) {
	_, err := NewVertexLayout().
		Field("position", AttrVec3).
		Build(16)
	assert.Error(t, err)

	assert.Panics(t, func() {
		NewVertexLayout().Field("position", AttrVec3).MustBuild(16)
	})
}

func TestUniformLayoutBuilder(t *testing.T) {
	l, err := NewUniformLayout().
		Field("projection", UniformMat4).
		Field("tint", UniformVec4).
		Field("intensity", UniformF32).
		Padding(12).
		Build(96)
	require.NoError(t, err)

	require.Len(t, l.Attributes, 3)
	assert.Equal(t, uint32(64), l.Attributes[1].Offset)
	assert.Equal(t, uint32(80), l.Attributes[2].Offset)
	assert.Equal(t, uint32(96), l.Size)
}

func TestUniformLayoutMisaligned(t *testing.T) {
	// vec4 at offset 4 violates its 16-byte alignment
	_, err := NewUniformLayout().
		Field("intensity", UniformF32).
		Field("tint", UniformVec4).
		Build(20)
	assert.Error(t, err)
}

func TestUniformLayoutPaddingRestoresAlignment(t *testing.T) {
	l, err := NewUniformLayout().
		Field("intensity", UniformF32).
		Padding(12).
		Field("tint", UniformVec4).
		Build(32)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), l.Attributes[1].Offset)
}

func TestUniformLayoutSizeMismatch(t *testing.T) {
	_, err := NewUniformLayout().
		Field("tint", UniformVec4).
		Build(32)
	assert.Error(t, err)
}

func TestUniformKindSizes(t *testing.T) {
	// mat3 spans three vec4-aligned columns
	assert.Equal(t, uint32(48), UniformMat3.Size())
	assert.Equal(t, uint32(16), UniformMat3.Alignment())
	assert.Equal(t, uint32(16), UniformMat2.Size())
	assert.Equal(t, uint32(8), UniformMat2.Alignment())
	assert.Equal(t, uint32(64), UniformMat4.Size())
}
