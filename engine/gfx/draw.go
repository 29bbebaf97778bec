package gfx

import (
	"github.com/krill-engine/krill/engine/core"
)

// DrawCmd is one entry of the per-frame draw log. The log is produced by the
// high-level API with redundant state changes already removed, then replayed
// once by the backend.
type DrawCmd interface {
	isDrawCmd()
}

type SetCanvasCmd struct {
	Canvas CanvasID
	Clear  *Color
}

type SetShaderCmd struct {
	Shader ResourceID
}

type SetMaterialCmd struct {
	Slot uint8
	Refs []MaterialAttributeRef
}

type DrawMeshCmd struct {
	Mesh      MeshRef
	Instances InstanceRef
	Push      [PushConstantLimit]byte
	PushLen   uint32
}

func (SetCanvasCmd) isDrawCmd()   {}
func (SetShaderCmd) isDrawCmd()   {}
func (SetMaterialCmd) isDrawCmd() {}
func (DrawMeshCmd) isDrawCmd()    {}

// ShaderCfg pairs a shader with the materials to bind for subsequent draws.
// Cheap to build every frame.
type ShaderCfg struct {
	ctx       *Context
	shader    *Shader
	materials []Material
}

// ShaderCfg prepares draws through a shader with the given materials, one per
// declared material slot.
func (c *Context) ShaderCfg(shader *Shader, materials ...Material) *ShaderCfg {
	if len(materials) != len(shader.res.def.MaterialLayouts) {
		core.LogFatal("shader expects %d materials, got %d", len(shader.res.def.MaterialLayouts), len(materials))
	}
	return &ShaderCfg{ctx: c, shader: shader, materials: materials}
}

// Draw appends the commands for one draw call to the frame's log. Pipeline
// and material binds are emitted only when they differ from the log's current
// state. Push constant payloads beyond the limit are a definition-time bug.
func (cfg *ShaderCfg) Draw(mesh MeshRef, instances InstanceRef, push []byte) {
	c := cfg.ctx
	if !c.recording {
		core.LogFatal("draw issued outside of a frame")
	}
	if len(push) > PushConstantLimit {
		core.LogFatal("push constant payload is %d bytes, limit is %d", len(push), PushConstantLimit)
	}

	if c.currentPipeline != cfg.shader.res.id {
		c.drawCmds = append(c.drawCmds, SetShaderCmd{Shader: cfg.shader.res.id})
		c.currentPipeline = cfg.shader.res.id
	}

	for slot, material := range cfg.materials {
		if materialEqual(c.currentMaterials[slot], material.Refs) {
			continue
		}
		refs := make([]MaterialAttributeRef, len(material.Refs))
		copy(refs, material.Refs)
		c.drawCmds = append(c.drawCmds, SetMaterialCmd{Slot: uint8(slot), Refs: refs})
		c.currentMaterials[slot] = refs
	}

	cmd := DrawMeshCmd{
		Mesh:      mesh,
		Instances: instances,
		PushLen:   uint32(len(push)),
	}
	copy(cmd.Push[:], push)
	c.drawCmds = append(c.drawCmds, cmd)
}
