package gfx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/krill-engine/krill/engine/core"
)

// ImmediateAlign is the byte alignment of every immediate-mode push into the
// frame scratch buffers; it satisfies both index and uniform offset rules.
const ImmediateAlign = 64

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) / align * align
}

// Context is the high-level drawing API. It owns the resource registries, the
// resource update queue and the per-frame draw log; the backend drains both
// once per frame. Single-threaded by design: only the driving thread may
// touch it.
type Context struct {
	// WindowCanvas addresses the on-screen surface in SetCanvas.
	WindowCanvas CanvasID

	shaders      registry[shaderResource]
	textures     registry[textureResource]
	samplers     registry[samplerResource]
	meshes       registry[meshResource]
	instances    registry[instancesResource]
	uniforms     registry[uniformResource]
	framebuffers registry[framebufferResource]

	recording bool
	updates   []ResourceUpdate
	drawCmds  []DrawCmd

	immVertexData  []byte
	immIndexData   []byte
	immUniformData []byte

	currentCanvas    CanvasID
	haveCanvas       bool
	currentPipeline  ResourceID
	currentMaterials [MaxMaterialSlots][]MaterialAttributeRef
}

// FrameData is one frame's worth of work handed to the backend: the drained
// update queue, the draw log and the immediate-mode byte buffers.
type FrameData struct {
	Updates    []ResourceUpdate
	Commands   []DrawCmd
	ImmVertex  []byte
	ImmIndex   []byte
	ImmUniform []byte
}

func NewContext() *Context {
	return &Context{
		WindowCanvas:    CanvasID{screen: true},
		currentPipeline: IDNone,
	}
}

// StartUpdate opens a frame: resets the draw log and immediate buffers, then
// scans every registry for dropped handles and queues their Free updates.
func (c *Context) StartUpdate() {
	if c.recording {
		core.LogFatal("StartUpdate called while a frame is already recording")
	}
	c.recording = true
	c.drawCmds = c.drawCmds[:0]
	c.immVertexData = c.immVertexData[:0]
	c.immIndexData = c.immIndexData[:0]
	c.immUniformData = c.immUniformData[:0]
	c.haveCanvas = false
	c.currentPipeline = IDNone
	for i := range c.currentMaterials {
		c.currentMaterials[i] = nil
	}

	for _, id := range c.shaders.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeShader})
	}
	for _, id := range c.textures.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeTexture2D})
	}
	for _, id := range c.samplers.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeSampler})
	}
	for _, id := range c.meshes.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeMesh})
	}
	for _, id := range c.instances.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeInstances})
	}
	for _, id := range c.uniforms.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeUniform})
	}
	for _, id := range c.framebuffers.RemoveUnused() {
		c.updates = append(c.updates, FreeUpdate{ID: id, Category: FreeFramebuffer})
	}
}

// FinishUpdate closes the frame and hands its work to the backend. The update
// queue is surrendered wholesale; a fresh one accumulates registrations made
// between frames.
func (c *Context) FinishUpdate() FrameData {
	if !c.recording {
		core.LogFatal("FinishUpdate called with no frame recording")
	}
	c.recording = false
	data := FrameData{
		Updates:    c.updates,
		Commands:   c.drawCmds,
		ImmVertex:  c.immVertexData,
		ImmIndex:   c.immIndexData,
		ImmUniform: c.immUniformData,
	}
	c.updates = nil
	return data
}

// SetCanvas targets subsequent draws at a canvas, optionally clearing it.
// Selecting the already-current canvas is a no-op; a fresh pass there would
// re-run the clear and wipe everything drawn so far. A real change resets the
// log's pipeline and material state so the next draw rebinds.
func (c *Context) SetCanvas(canvas CanvasID, clear *Color) {
	if !c.recording {
		core.LogFatal("SetCanvas issued outside of a frame")
	}
	if c.haveCanvas && c.currentCanvas == canvas {
		return
	}
	c.currentCanvas = canvas
	c.haveCanvas = true
	c.drawCmds = append(c.drawCmds, SetCanvasCmd{Canvas: canvas, Clear: clear})
	c.currentPipeline = IDNone
	for i := range c.currentMaterials {
		c.currentMaterials[i] = nil
	}
}

// RegisterShader validates the full definition and queues pipeline creation.
// Compilation happens when the backend drains the queue; compile errors are
// fatal there with the compiler diagnostics surfaced.
func (c *Context) RegisterShader(def ShaderFullDefinition) (*Shader, error) {
	if err := def.validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	res := &shaderResource{def: def, traceID: uuid.New()}
	res.id = c.shaders.Insert(res)
	c.updates = append(c.updates, CreateShaderUpdate{ID: res.id, Def: def})
	core.LogDebug("registered shader %d (%s)", res.id, res.traceID)
	return &Shader{res: res}, nil
}

// RegisterTexture2D uploads pixels as an RGBA8 texture.
func (c *Context) RegisterTexture2D(width, height uint32, pixels []byte) (*Texture2D, error) {
	return c.registerTexture(width, height, PixelRGBA8, pixels)
}

// RegisterTexture2DSrgb uploads pixels as an sRGB-encoded RGBA8 texture.
func (c *Context) RegisterTexture2DSrgb(width, height uint32, pixels []byte) (*Texture2D, error) {
	return c.registerTexture(width, height, PixelRGBA8Srgb, pixels)
}

// RegisterTexture2DWithFormat uploads pixels with an explicit format.
func (c *Context) RegisterTexture2DWithFormat(width, height uint32, format PixelFormat, pixels []byte) (*Texture2D, error) {
	return c.registerTexture(width, height, format, pixels)
}

func (c *Context) registerTexture(width, height uint32, format PixelFormat, pixels []byte) (*Texture2D, error) {
	if width == 0 || height == 0 {
		err := fmt.Errorf("texture extent must be nonzero")
		core.LogError(err.Error())
		return nil, err
	}
	if want := width * height * format.TexelSize(); uint32(len(pixels)) != want {
		err := fmt.Errorf("texture payload is %d bytes, %dx%d at %d bytes/texel needs %d", len(pixels), width, height, format.TexelSize(), want)
		core.LogError(err.Error())
		return nil, err
	}
	res := &textureResource{width: width, height: height, format: format, traceID: uuid.New()}
	res.id = c.textures.Insert(res)
	c.updates = append(c.updates, CreateTexture2DUpdate{
		ID:     res.id,
		Width:  width,
		Height: height,
		Format: format,
		Pixels: pixels,
	})
	core.LogDebug("registered texture %d %dx%d (%s)", res.id, width, height, res.traceID)
	return &Texture2D{res: res}, nil
}

// RegisterSampler creates a sampler from its definition.
func (c *Context) RegisterSampler(def SamplerDefinition) (*Sampler, error) {
	res := &samplerResource{def: def, traceID: uuid.New()}
	res.id = c.samplers.Insert(res)
	c.updates = append(c.updates, CreateSamplerUpdate{ID: res.id, Def: def})
	return &Sampler{res: res}, nil
}

// RegisterMesh uploads vertex bytes (and optional index bytes) into
// device-local storage.
func (c *Context) RegisterMesh(vertices []byte, vertexCount uint32, indices *IndexData) (*Mesh, error) {
	if vertexCount == 0 {
		err := fmt.Errorf("mesh needs at least one vertex")
		core.LogError(err.Error())
		return nil, err
	}
	res := &meshResource{vertexCount: vertexCount, traceID: uuid.New()}
	update := CreateMeshUpdate{Vertices: vertices, VertexCount: vertexCount}
	if indices != nil {
		res.hasIndices = true
		res.indexCount = indices.Count
		res.indexU32 = indices.U32
		update.Indices = indices.Bytes
		update.IndexCount = indices.Count
		update.IndexU32 = indices.U32
		update.HasIndices = true
	}
	res.id = c.meshes.Insert(res)
	update.ID = res.id
	c.updates = append(c.updates, update)
	return &Mesh{res: res}, nil
}

// RegisterInstances uploads per-instance bytes into device-local storage.
func (c *Context) RegisterInstances(data []byte, count uint32) (*Instances, error) {
	if count == 0 {
		err := fmt.Errorf("instance buffer needs at least one instance")
		core.LogError(err.Error())
		return nil, err
	}
	res := &instancesResource{count: count, traceID: uuid.New()}
	res.id = c.instances.Insert(res)
	c.updates = append(c.updates, CreateInstancesUpdate{ID: res.id, Data: data, Count: count})
	return &Instances{res: res}, nil
}

// RegisterUniformBuffer uploads a uniform block matching the layout.
func (c *Context) RegisterUniformBuffer(layout UniformLayout, data []byte) (*UniformBuffer, error) {
	if uint32(len(data)) != layout.Size {
		err := fmt.Errorf("uniform payload is %d bytes, layout declares %d", len(data), layout.Size)
		core.LogError(err.Error())
		return nil, err
	}
	res := &uniformResource{layout: layout, traceID: uuid.New()}
	res.id = c.uniforms.Insert(res)
	c.updates = append(c.updates, CreateUniformUpdate{ID: res.id, Layout: layout, Data: data})
	return &UniformBuffer{res: res}, nil
}

// RegisterFramebuffer creates an off-screen render target.
func (c *Context) RegisterFramebuffer(width, height uint32, format FramebufferFormat) (*Framebuffer, error) {
	if width == 0 || height == 0 {
		err := fmt.Errorf("framebuffer extent must be nonzero")
		core.LogError(err.Error())
		return nil, err
	}
	res := &framebufferResource{width: width, height: height, format: format, traceID: uuid.New()}
	res.id = c.framebuffers.Insert(res)
	c.updates = append(c.updates, CreateFramebufferUpdate{ID: res.id, Width: width, Height: height, Format: format})
	return &Framebuffer{res: res}, nil
}

// ImmMesh pushes vertex (and optional index) bytes valid for this frame only
// and returns a ref drawing them.
func (c *Context) ImmMesh(vertices []byte, vertexCount uint32, indices *IndexData) MeshRef {
	if !c.recording {
		core.LogFatal("ImmMesh issued outside of a frame")
	}
	ref := MeshRef{
		kind:        MeshSourceImmediate,
		vertexStart: c.pushImm(&c.immVertexData, vertices),
		vertexCount: vertexCount,
	}
	if indices != nil {
		ref.hasIndices = true
		ref.indexStart = c.pushImm(&c.immIndexData, indices.Bytes)
		ref.indexCount = indices.Count
		ref.indexU32 = indices.U32
	}
	return ref
}

// ImmInstances pushes per-instance bytes valid for this frame only.
func (c *Context) ImmInstances(data []byte, count uint32) InstanceRef {
	if !c.recording {
		core.LogFatal("ImmInstances issued outside of a frame")
	}
	return InstanceRef{
		kind:  MeshSourceImmediate,
		start: c.pushImm(&c.immVertexData, data),
		count: count,
	}
}

// ImmUniformBuffer pushes uniform bytes valid for this frame only.
func (c *Context) ImmUniformBuffer(data []byte) ImmUniform {
	if !c.recording {
		core.LogFatal("ImmUniformBuffer issued outside of a frame")
	}
	return ImmUniform{
		Start: c.pushImm(&c.immUniformData, data),
		Len:   uint32(len(data)),
	}
}

func (c *Context) pushImm(buf *[]byte, data []byte) uint32 {
	start := alignUp(uint32(len(*buf)), ImmediateAlign)
	for uint32(len(*buf)) < start {
		*buf = append(*buf, 0)
	}
	*buf = append(*buf, data...)
	return start
}
