package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanMesh is device-local vertex storage with an optional index buffer.
// Contents arrive through the frame staging buffer; both buffers are copy
// destinations only after creation.
type VulkanMesh struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	VertexCount  uint32
	IndexCount   uint32
	IndexU32     bool
	HasIndices   bool
}

func NewMesh(context *VulkanContext, vertexBytes, indexBytes vk.DeviceSize, vertexCount, indexCount uint32, indexU32, hasIndices bool) (*VulkanMesh, error) {
	mesh := &VulkanMesh{
		VertexCount: vertexCount,
		IndexCount:  indexCount,
		IndexU32:    indexU32,
		HasIndices:  hasIndices,
	}

	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	vertexBuffer, err := NewBuffer(context, vertexBytes,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferDstBit), deviceLocal)
	if err != nil {
		return nil, err
	}
	mesh.VertexBuffer = vertexBuffer

	if hasIndices {
		indexBuffer, err := NewBuffer(context, indexBytes,
			vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit|vk.BufferUsageTransferDstBit), deviceLocal)
		if err != nil {
			vertexBuffer.Destroy(context)
			return nil, err
		}
		mesh.IndexBuffer = indexBuffer
	}

	return mesh, nil
}

func (m *VulkanMesh) IndexType() vk.IndexType {
	if m.IndexU32 {
		return vk.IndexTypeUint32
	}
	return vk.IndexTypeUint16
}

func (m *VulkanMesh) Destroy(context *VulkanContext) {
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
	m.VertexBuffer.Destroy(context)
}

// VulkanInstances is device-local per-instance attribute storage.
type VulkanInstances struct {
	Buffer *VulkanBuffer
	Count  uint32
}

func NewInstances(context *VulkanContext, dataBytes vk.DeviceSize, count uint32) (*VulkanInstances, error) {
	buffer, err := NewBuffer(context, dataBytes,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	return &VulkanInstances{Buffer: buffer, Count: count}, nil
}

func (i *VulkanInstances) Destroy(context *VulkanContext) {
	i.Buffer.Destroy(context)
}
