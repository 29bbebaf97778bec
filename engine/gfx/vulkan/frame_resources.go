package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
)

// Initial scratch buffer capacities; all four grow on demand and never shrink.
const (
	stagingBufferInitialSize = 4 * 1024 * 1024
	vertexBufferInitialSize  = 4 * 1024 * 1024
	indexBufferInitialSize   = 2 * 1024 * 1024
	uniformBufferInitialSize = 2 * 1024 * 1024
)

// Per-frame descriptor pool capacity; the pool is reset wholesale each frame.
const (
	descriptorPoolMaxSets            = 4096
	descriptorPoolUniformBuffers     = 4096
	descriptorPoolCombinedImageCount = 4096
)

// STAGING_BUFFER_ALIGN pads every packed staging payload so buffer and image
// copy offsets satisfy the strictest offset alignment in play.
const STAGING_BUFFER_ALIGN = 64

// VulkanDestroyQueue holds GPU objects whose last use may still be in flight.
// Drained only after the owning frame's fence signals.
type VulkanDestroyQueue struct {
	Buffers      []VulkanBuffer
	Images       []*VulkanImage
	Samplers     []vk.Sampler
	Pipelines    []*VulkanPipeline
	Targets      []*VulkanTarget
	Meshes       []*VulkanMesh
	InstanceBufs []*VulkanInstances
}

func (q *VulkanDestroyQueue) Drain(context *VulkanContext) {
	for i := range q.Buffers {
		q.Buffers[i].Destroy(context)
	}
	for _, image := range q.Images {
		image.ImageDestroy(context)
	}
	for _, sampler := range q.Samplers {
		vk.DestroySampler(context.Device.LogicalDevice, sampler, context.Allocator)
	}
	for _, pipeline := range q.Pipelines {
		pipeline.Destroy(context)
	}
	for _, target := range q.Targets {
		target.Destroy(context)
	}
	for _, mesh := range q.Meshes {
		mesh.Destroy(context)
	}
	for _, inst := range q.InstanceBufs {
		inst.Destroy(context)
	}
	*q = VulkanDestroyQueue{}
}

func (q *VulkanDestroyQueue) Empty() bool {
	return len(q.Buffers) == 0 && len(q.Images) == 0 && len(q.Samplers) == 0 &&
		len(q.Pipelines) == 0 && len(q.Targets) == 0 && len(q.Meshes) == 0 &&
		len(q.InstanceBufs) == 0
}

// FrameResourceSet is one of exactly two alternating per-in-flight-frame
// resource sets. Its fence gates every CPU-side reuse: command pool reset,
// descriptor pool reset, scratch buffer writes and destroy queue drain.
type FrameResourceSet struct {
	CommandPool    vk.CommandPool
	CommandBuffer  vk.CommandBuffer
	DescriptorPool vk.DescriptorPool

	// Host-visible scratch: packed staging payloads and this frame's
	// immediate-mode vertex/index/uniform bytes.
	StagingBuffer *VulkanBuffer
	VertexBuffer  *VulkanBuffer
	IndexBuffer   *VulkanBuffer
	UniformBuffer *VulkanBuffer

	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	Fence          *VulkanFence

	DestroyQueue VulkanDestroyQueue
}

func NewFrameResourceSet(context *VulkanContext) (*FrameResourceSet, error) {
	frame := &FrameResourceSet{}

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
	}
	var commandPool vk.CommandPool
	if res := vk.CreateCommandPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &commandPool); res != vk.Success {
		err := fmt.Errorf("failed to create frame command pool: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	frame.CommandPool = commandPool

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        frame.CommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	commandBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocInfo, commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate frame command buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	frame.CommandBuffer = commandBuffers[0]

	descriptorPoolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: descriptorPoolUniformBuffers},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: descriptorPoolCombinedImageCount},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: descriptorPoolCombinedImageCount},
	}
	descriptorPoolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       descriptorPoolMaxSets,
		PoolSizeCount: uint32(len(descriptorPoolSizes)),
		PPoolSizes:    descriptorPoolSizes,
	}
	var descriptorPool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &descriptorPoolInfo, context.Allocator, &descriptorPool); res != vk.Success {
		err := fmt.Errorf("failed to create frame descriptor pool: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	frame.DescriptorPool = descriptorPool

	var err error
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	if frame.StagingBuffer, err = NewBuffer(context, stagingBufferInitialSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisible); err != nil {
		return nil, err
	}
	if frame.VertexBuffer, err = NewBuffer(context, vertexBufferInitialSize,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), hostVisible); err != nil {
		return nil, err
	}
	if frame.IndexBuffer, err = NewBuffer(context, indexBufferInitialSize,
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), hostVisible); err != nil {
		return nil, err
	}
	if frame.UniformBuffer, err = NewBuffer(context, uniformBufferInitialSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), hostVisible); err != nil {
		return nil, err
	}

	semaphoreInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var imageAvailable, renderFinished vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &imageAvailable); res != vk.Success {
		err := fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &renderFinished); res != vk.Success {
		err := fmt.Errorf("failed to create semaphore: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	frame.ImageAvailable = imageAvailable
	frame.RenderFinished = renderFinished

	// Created signaled so the first wait on this parity passes immediately.
	if frame.Fence, err = NewFence(context, true); err != nil {
		return nil, err
	}

	return frame, nil
}

func (f *FrameResourceSet) Destroy(context *VulkanContext) {
	f.DestroyQueue.Drain(context)
	f.StagingBuffer.Destroy(context)
	f.VertexBuffer.Destroy(context)
	f.IndexBuffer.Destroy(context)
	f.UniformBuffer.Destroy(context)
	vk.DestroySemaphore(context.Device.LogicalDevice, f.ImageAvailable, context.Allocator)
	vk.DestroySemaphore(context.Device.LogicalDevice, f.RenderFinished, context.Allocator)
	f.Fence.FenceDestroy(context)
	vk.DestroyDescriptorPool(context.Device.LogicalDevice, f.DescriptorPool, context.Allocator)
	vk.DestroyCommandPool(context.Device.LogicalDevice, f.CommandPool, context.Allocator)
}
