package gfx

import (
	"fmt"

	"github.com/google/uuid"
)

// PushConstantLimit is the per-draw push-constant byte budget. Enforced when
// the draw call is built, not at replay time.
const PushConstantLimit = 128

type Topology uint8

const (
	TopologyTriangles Topology = iota
	TopologyTriangleStrip
	TopologyLines
	TopologyLineStrip
	TopologyPoints
)

// ShaderDefinition is the caller-facing description of a shader: source text
// plus fixed-function state. Layouts are attached via RegisterShader.
type ShaderDefinition struct {
	// Code holds three ordered sections headed by the literal marker lines
	// [varying], [vertex] and [fragment].
	Code             string
	Topology         Topology
	CullBackfaces    bool
	PrimitiveRestart bool
	DepthTest        bool
	DepthWrite       bool
	DepthAlways      bool
	ColorBlend       bool
}

// ShaderFullDefinition combines the definition with every layout the pipeline
// factory needs. Immutable once registered.
type ShaderFullDefinition struct {
	Definition         ShaderDefinition
	VertexLayout       VertexLayout
	InstanceLayout     VertexLayout
	PushConstantLayout UniformLayout
	MaterialLayouts    []MaterialLayout
}

func (d *ShaderFullDefinition) validate() error {
	if len(d.MaterialLayouts) > MaxMaterialSlots {
		return fmt.Errorf("shader declares %d material slots, at most %d supported", len(d.MaterialLayouts), MaxMaterialSlots)
	}
	if d.PushConstantLayout.Size > PushConstantLimit {
		return fmt.Errorf("push constant layout is %d bytes, limit is %d", d.PushConstantLayout.Size, PushConstantLimit)
	}
	return nil
}

type shaderResource struct {
	id      ResourceID
	def     ShaderFullDefinition
	traceID uuid.UUID
}

// Shader is a registered shader handle. Dropping every copy releases the GPU
// pipelines after the in-flight frames retire.
type Shader struct {
	res *shaderResource
}

func (s *Shader) ID() ResourceID {
	return s.res.id
}

func (s *Shader) Definition() *ShaderFullDefinition {
	return &s.res.def
}
