package gfx

// ResourceUpdate is one entry of the per-frame resource update queue. Creates
// carry the payload bytes the backend stages; Frees name objects whose GPU
// side moves into the frame's destroy queue.
type ResourceUpdate interface {
	isResourceUpdate()
}

type CreateShaderUpdate struct {
	ID  ResourceID
	Def ShaderFullDefinition
}

type CreateTexture2DUpdate struct {
	ID     ResourceID
	Width  uint32
	Height uint32
	Format PixelFormat
	Pixels []byte
}

type CreateSamplerUpdate struct {
	ID  ResourceID
	Def SamplerDefinition
}

type CreateMeshUpdate struct {
	ID          ResourceID
	Vertices    []byte
	VertexCount uint32
	Indices     []byte
	IndexCount  uint32
	IndexU32    bool
	HasIndices  bool
}

type CreateInstancesUpdate struct {
	ID    ResourceID
	Data  []byte
	Count uint32
}

type CreateUniformUpdate struct {
	ID     ResourceID
	Layout UniformLayout
	Data   []byte
}

type CreateFramebufferUpdate struct {
	ID     ResourceID
	Width  uint32
	Height uint32
	Format FramebufferFormat
}

// FreeCategory names the registry a freed ID belonged to.
type FreeCategory uint8

const (
	FreeShader FreeCategory = iota
	FreeTexture2D
	FreeSampler
	FreeMesh
	FreeInstances
	FreeUniform
	FreeFramebuffer
)

type FreeUpdate struct {
	ID       ResourceID
	Category FreeCategory
}

func (CreateShaderUpdate) isResourceUpdate()      {}
func (CreateTexture2DUpdate) isResourceUpdate()   {}
func (CreateSamplerUpdate) isResourceUpdate()     {}
func (CreateMeshUpdate) isResourceUpdate()        {}
func (CreateInstancesUpdate) isResourceUpdate()   {}
func (CreateUniformUpdate) isResourceUpdate()     {}
func (CreateFramebufferUpdate) isResourceUpdate() {}
func (FreeUpdate) isResourceUpdate()              {}
