package gfx

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShaderDef() ShaderFullDefinition {
	return ShaderFullDefinition{
		Definition: ShaderDefinition{
			Code: "[varying]\nvec3 vcolor;\n[vertex]\nvoid main() {\n  gl_Position = vec4(position, 0.0, 1.0);\n  vcolor = color;\n}\n[fragment]\nvoid main() {\n  out_color = vec4(vcolor, 1.0);\n}\n",
		},
		VertexLayout: NewVertexLayout().
			Field("position", AttrVec2).
			Field("color", AttrVec3).
			MustBuild(20),
	}
}

func TestDrawLogDedupsShaderBinds(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(ctx.WindowCanvas, &Color{R: 0, G: 0, B: 0, A: 1})

	mesh := ctx.ImmMesh(make([]byte, 60), 3, nil)
	cfg := ctx.ShaderCfg(shader)
	cfg.Draw(mesh, OneInstance(), nil)
	cfg.Draw(mesh, OneInstance(), nil)

	frame := ctx.FinishUpdate()
	require.Len(t, frame.Commands, 4)
	assert.IsType(t, SetCanvasCmd{}, frame.Commands[0])
	assert.IsType(t, SetShaderCmd{}, frame.Commands[1])
	assert.IsType(t, DrawMeshCmd{}, frame.Commands[2])
	assert.IsType(t, DrawMeshCmd{}, frame.Commands[3])
}

func TestSetCanvasSameCanvasIsNoOp(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(ctx.WindowCanvas, &Color{R: 0, G: 0, B: 0, A: 1})

	mesh := ctx.ImmMesh(make([]byte, 60), 3, nil)
	cfg := ctx.ShaderCfg(shader)
	cfg.Draw(mesh, OneInstance(), nil)

	// re-selecting the current canvas must not open a fresh pass: that
	// would re-run the clear and wipe the first draw
	ctx.SetCanvas(ctx.WindowCanvas, &Color{R: 0, G: 0, B: 0, A: 1})
	cfg.Draw(mesh, OneInstance(), nil)

	frame := ctx.FinishUpdate()
	canvases, binds := 0, 0
	for _, cmd := range frame.Commands {
		switch cmd.(type) {
		case SetCanvasCmd:
			canvases++
		case SetShaderCmd:
			binds++
		}
	}
	assert.Equal(t, 1, canvases)
	assert.Equal(t, 1, binds)
}

func TestDrawLogRebindsAfterCanvasChange(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)
	fb, err := ctx.RegisterFramebuffer(64, 64, FramebufferRGBA8)
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(fb.Canvas(), nil)

	mesh := ctx.ImmMesh(make([]byte, 60), 3, nil)
	cfg := ctx.ShaderCfg(shader)
	cfg.Draw(mesh, OneInstance(), nil)

	ctx.SetCanvas(ctx.WindowCanvas, nil)
	cfg.Draw(mesh, OneInstance(), nil)

	frame := ctx.FinishUpdate()
	canvases, binds := 0, 0
	for _, cmd := range frame.Commands {
		switch cmd.(type) {
		case SetCanvasCmd:
			canvases++
		case SetShaderCmd:
			binds++
		}
	}
	assert.Equal(t, 2, canvases)
	assert.Equal(t, 2, binds)
}

func TestDrawLogMaterialDedup(t *testing.T) {
	ctx := NewContext()
	def := testShaderDef()
	def.MaterialLayouts = []MaterialLayout{{
		Attributes: []MaterialAttribute{{
			Name: "globals",
			Kind: MaterialUniform,
			Uniform: NewUniformLayout().
				Field("tint", UniformVec4).
				MustBuild(16),
		}},
	}}
	shader, err := ctx.RegisterShader(def)
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(ctx.WindowCanvas, nil)

	mesh := ctx.ImmMesh(make([]byte, 60), 3, nil)
	blockA := ctx.ImmUniformBuffer(make([]byte, 16))
	blockB := ctx.ImmUniformBuffer(make([]byte, 16))

	matA := Material{Refs: []MaterialAttributeRef{ImmUniformRef(blockA)}}
	matB := Material{Refs: []MaterialAttributeRef{ImmUniformRef(blockB)}}

	ctx.ShaderCfg(shader, matA).Draw(mesh, OneInstance(), nil)
	ctx.ShaderCfg(shader, matA).Draw(mesh, OneInstance(), nil)
	ctx.ShaderCfg(shader, matB).Draw(mesh, OneInstance(), nil)

	frame := ctx.FinishUpdate()
	var matCmds []SetMaterialCmd
	for _, cmd := range frame.Commands {
		if m, ok := cmd.(SetMaterialCmd); ok {
			matCmds = append(matCmds, m)
		}
	}
	require.Len(t, matCmds, 2)
	assert.Equal(t, blockA.Start, matCmds[0].Refs[0].Start)
	assert.Equal(t, blockB.Start, matCmds[1].Refs[0].Start)
}

func TestImmediatePushAlignment(t *testing.T) {
	ctx := NewContext()
	ctx.StartUpdate()

	first := ctx.ImmMesh(make([]byte, 3), 1, nil)
	second := ctx.ImmMesh(make([]byte, 3), 1, nil)
	assert.Equal(t, uint32(0), first.VertexStart())
	assert.Equal(t, uint32(ImmediateAlign), second.VertexStart())

	u1 := ctx.ImmUniformBuffer(make([]byte, 20))
	u2 := ctx.ImmUniformBuffer(make([]byte, 20))
	assert.Equal(t, uint32(0), u1.Start)
	assert.Equal(t, uint32(ImmediateAlign), u2.Start)
	assert.Equal(t, uint32(20), u2.Len)

	frame := ctx.FinishUpdate()
	assert.Equal(t, ImmediateAlign+3, len(frame.ImmVertex))
	assert.Equal(t, ImmediateAlign+20, len(frame.ImmUniform))
}

func TestImmediateIndexData(t *testing.T) {
	ctx := NewContext()
	ctx.StartUpdate()

	mesh := ctx.ImmMesh(make([]byte, 16), 4, &IndexData{
		Bytes: make([]byte, 12),
		Count: 6,
	})
	assert.Equal(t, MeshSourceImmediate, mesh.Source())
	assert.True(t, mesh.HasIndices())
	assert.Equal(t, uint32(6), mesh.IndexCount())
	assert.False(t, mesh.IndexU32())

	frame := ctx.FinishUpdate()
	assert.Equal(t, 12, len(frame.ImmIndex))
}

func TestDrawPushConstants(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(ctx.WindowCanvas, nil)

	push := []byte{1, 2, 3, 4}
	ctx.ShaderCfg(shader).Draw(MeshRange(3), OneInstance(), push)

	frame := ctx.FinishUpdate()
	var draw DrawMeshCmd
	found := false
	for _, cmd := range frame.Commands {
		if d, ok := cmd.(DrawMeshCmd); ok {
			draw = d
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, uint32(4), draw.PushLen)
	assert.Equal(t, push, draw.Push[:4])
}

func TestTriangleLogShape(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)

	ctx.StartUpdate()
	ctx.SetCanvas(ctx.WindowCanvas, &Color{R: 0, G: 0, B: 0, A: 1})

	mesh := ctx.ImmMesh(make([]byte, 60), 3, nil)
	ctx.ShaderCfg(shader).Draw(mesh, OneInstance(), nil)

	frame := ctx.FinishUpdate()
	require.Len(t, frame.Commands, 3)
	assert.IsType(t, SetCanvasCmd{}, frame.Commands[0])
	assert.IsType(t, SetShaderCmd{}, frame.Commands[1])

	draw, ok := frame.Commands[2].(DrawMeshCmd)
	require.True(t, ok)
	assert.Equal(t, uint32(3), draw.Mesh.VertexCount())
	assert.False(t, draw.Mesh.HasIndices())
	assert.Equal(t, uint32(1), draw.Instances.Count())
	assert.Equal(t, MeshSourceRange, draw.Instances.Source())
	assert.Equal(t, uint32(0), draw.PushLen)
}

func TestFinishUpdateSurrendersUpdates(t *testing.T) {
	ctx := NewContext()
	shader, err := ctx.RegisterShader(testShaderDef())
	require.NoError(t, err)

	tex, err := ctx.RegisterTexture2D(1, 1, []byte{255, 0, 0, 255})
	require.NoError(t, err)

	ctx.StartUpdate()
	frame := ctx.FinishUpdate()
	require.Len(t, frame.Updates, 2)
	assert.IsType(t, CreateShaderUpdate{}, frame.Updates[0])
	assert.IsType(t, CreateTexture2DUpdate{}, frame.Updates[1])

	// the queue was handed over; the next frame starts empty
	ctx.StartUpdate()
	frame = ctx.FinishUpdate()
	assert.Empty(t, frame.Updates)

	runtime.KeepAlive(shader)
	runtime.KeepAlive(tex)
}

func TestShaderValidation(t *testing.T) {
	ctx := NewContext()

	def := testShaderDef()
	def.PushConstantLayout = NewUniformLayout().
		Field("a", UniformMat4).
		Field("b", UniformMat4).
		Field("c", UniformMat4).
		MustBuild(192)
	_, err := ctx.RegisterShader(def)
	assert.Error(t, err)

	def = testShaderDef()
	def.MaterialLayouts = make([]MaterialLayout, MaxMaterialSlots+1)
	_, err = ctx.RegisterShader(def)
	assert.Error(t, err)
}
