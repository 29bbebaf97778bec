package gfx

import "github.com/google/uuid"

// IndexData optionally attaches index bytes to a mesh. U32 selects 32-bit
// indices; otherwise they are 16-bit.
type IndexData struct {
	Bytes []byte
	Count uint32
	U32   bool
}

type meshResource struct {
	id          ResourceID
	vertexCount uint32
	indexCount  uint32
	indexU32    bool
	hasIndices  bool
	traceID     uuid.UUID
}

// Mesh is a persistent device-local mesh handle.
type Mesh struct {
	res *meshResource
}

func (m *Mesh) ID() ResourceID {
	return m.res.id
}

func (m *Mesh) VertexCount() uint32 {
	return m.res.vertexCount
}

type instancesResource struct {
	id      ResourceID
	count   uint32
	traceID uuid.UUID
}

// Instances is a persistent device-local per-instance data handle.
type Instances struct {
	res *instancesResource
}

func (i *Instances) ID() ResourceID {
	return i.res.id
}

func (i *Instances) Count() uint32 {
	return i.res.count
}

// MeshSource discriminates where draw vertex data comes from.
type MeshSource uint8

const (
	MeshSourceResource MeshSource = iota
	MeshSourceImmediate
	MeshSourceRange
)

// MeshRef names the vertex/index source of one draw: a persistent resource, a
// this-frame immediate range, or a bare vertex count with no attached data.
type MeshRef struct {
	kind MeshSource

	id ResourceID

	// immediate: byte offsets into the frame's scratch buffers
	vertexStart uint32
	indexStart  uint32

	vertexCount uint32
	indexCount  uint32
	indexU32    bool
	hasIndices  bool
}

func (r MeshRef) Source() MeshSource  { return r.kind }
func (r MeshRef) ID() ResourceID      { return r.id }
func (r MeshRef) VertexStart() uint32 { return r.vertexStart }
func (r MeshRef) IndexStart() uint32  { return r.indexStart }
func (r MeshRef) VertexCount() uint32 { return r.vertexCount }
func (r MeshRef) IndexCount() uint32  { return r.indexCount }
func (r MeshRef) IndexU32() bool      { return r.indexU32 }
func (r MeshRef) HasIndices() bool    { return r.hasIndices }

// Ref returns a MeshRef drawing a persistent mesh.
func (m *Mesh) Ref() MeshRef {
	return MeshRef{
		kind:        MeshSourceResource,
		id:          m.res.id,
		vertexCount: m.res.vertexCount,
		indexCount:  m.res.indexCount,
		indexU32:    m.res.indexU32,
		hasIndices:  m.res.hasIndices,
	}
}

// MeshRange draws count vertices with no bound vertex data; the shader
// synthesizes positions from the vertex index.
func MeshRange(count uint32) MeshRef {
	return MeshRef{kind: MeshSourceRange, vertexCount: count}
}

// InstanceRef names the per-instance data source of one draw.
type InstanceRef struct {
	kind  MeshSource
	id    ResourceID
	start uint32
	count uint32
}

func (r InstanceRef) Source() MeshSource { return r.kind }
func (r InstanceRef) ID() ResourceID     { return r.id }
func (r InstanceRef) Start() uint32      { return r.start }
func (r InstanceRef) Count() uint32      { return r.count }

// Ref returns an InstanceRef drawing all instances of a persistent resource.
func (i *Instances) Ref() InstanceRef {
	return InstanceRef{kind: MeshSourceResource, id: i.res.id, count: i.res.count}
}

// OneInstance draws a single instance with no bound instance data.
func OneInstance() InstanceRef {
	return InstanceRef{kind: MeshSourceRange, count: 1}
}

// InstanceRange draws count instances with no bound instance data.
func InstanceRange(count uint32) InstanceRef {
	return InstanceRef{kind: MeshSourceRange, count: count}
}
