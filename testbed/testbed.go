/*
Package testbed is a small example application used to exercise the engine:
it draws a colored triangle straight from immediate-mode vertex data.
*/
package testbed

import (
	"encoding/binary"
	stdmath "math"

	"github.com/krill-engine/krill/engine"
	"github.com/krill-engine/krill/engine/gfx"
	"github.com/krill-engine/krill/engine/math"
)

const triangleShaderCode = `
[varying]
vec3 vcolor;
[vertex]
void main() {
	gl_Position = push.transform * vec4(position, 0.0, 1.0);
	vcolor = color;
}
[fragment]
void main() {
	out_color = vec4(vcolor, 1.0);
}
`

// 2 floats position + 3 floats color
const triangleVertexSize = 20

type gameState struct {
	shader  *gfx.Shader
	elapsed float64
}

func NewTestGame() *engine.Game {
	state := &gameState{}
	return &engine.Game{
		ApplicationConfig: engine.DefaultConfig("Krill Triangle"),
		State:             state,
		FnInitialize:      state.initialize,
		FnUpdate:          state.update,
	}
}

func (s *gameState) initialize(ctx *gfx.Context) error {
	vertexLayout := gfx.NewVertexLayout().
		Field("position", gfx.AttrVec2).
		Field("color", gfx.AttrVec3).
		MustBuild(triangleVertexSize)

	shader, err := ctx.RegisterShader(gfx.ShaderFullDefinition{
		Definition: gfx.ShaderDefinition{
			Code:     triangleShaderCode,
			Topology: gfx.TopologyTriangles,
		},
		VertexLayout: vertexLayout,
		PushConstantLayout: gfx.NewUniformLayout().
			Field("transform", gfx.UniformMat4).
			MustBuild(64),
	})
	if err != nil {
		return err
	}
	s.shader = shader
	return nil
}

func (s *gameState) update(ctx *gfx.Context, deltaTime float64) error {
	s.elapsed += deltaTime

	ctx.SetCanvas(ctx.WindowCanvas, &gfx.Color{R: 0.05, G: 0.05, B: 0.1, A: 1})

	vertices := triangleVertices()
	mesh := ctx.ImmMesh(vertices, 3, nil)

	sway := float32(0.25 * stdmath.Sin(s.elapsed))
	transform := math.NewMat4Translation(math.NewVec3(sway, 0, 0))

	cfg := ctx.ShaderCfg(s.shader)
	cfg.Draw(mesh, gfx.OneInstance(), mat4Bytes(transform))
	return nil
}

func triangleVertices() []byte {
	data := make([]byte, 0, 3*triangleVertexSize)
	appendVertex := func(x, y, r, g, b float32) {
		for _, v := range []float32{x, y, r, g, b} {
			data = binary.LittleEndian.AppendUint32(data, stdmath.Float32bits(v))
		}
	}
	appendVertex(0.0, -0.5, 1, 0, 0)
	appendVertex(0.5, 0.5, 0, 1, 0)
	appendVertex(-0.5, 0.5, 0, 0, 1)
	return data
}

func mat4Bytes(m math.Mat4) []byte {
	data := make([]byte, 0, 64)
	for _, v := range m.Data {
		data = binary.LittleEndian.AppendUint32(data, stdmath.Float32bits(v))
	}
	return data
}
