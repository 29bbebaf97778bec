package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
)

// VulkanBuffer owns one device allocation. Capacity never shrinks; growth
// goes through ExpandToFit which retires the displaced allocation via the
// frame's destroy queue, never immediately: the other in-flight frame's
// recorded commands may still reference it.
type VulkanBuffer struct {
	Handle   vk.Buffer
	Memory   vk.DeviceMemory
	Size     vk.DeviceSize
	Usage    vk.BufferUsageFlags
	MemProps vk.MemoryPropertyFlags
}

func NewBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, memProps vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:     size,
		Usage:    usage,
		MemProps: memProps,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Handle = handle

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memRequirements)
	memRequirements.Deref()

	memoryIndex := context.FindMemoryIndex(memRequirements.MemoryTypeBits, uint32(memProps))
	if memoryIndex < 0 {
		vk.DestroyBuffer(context.Device.LogicalDevice, buffer.Handle, context.Allocator)
		err := fmt.Errorf("no suitable memory type for buffer")
		core.LogError(err.Error())
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocInfo, context.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, buffer.Handle, context.Allocator)
		err := fmt.Errorf("failed to allocate buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return buffer, nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
	b.Size = 0
}

// Map exposes the buffer's host-visible bytes to f. Unmap is guaranteed on
// every exit path.
func (b *VulkanBuffer) Map(context *VulkanContext, f func(data []byte)) error {
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, b.Size, 0, &pData); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	defer vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	f(unsafe.Slice((*byte)(pData), int(b.Size)))
	return nil
}

// ExpandToFit grows the buffer to at least n bytes, doubling from the current
// capacity. A grow invalidates prior GPU-side contents until re-uploaded.
// The old allocation is pushed onto the frame's destroy queue so it outlives
// any in-flight commands that reference it.
func (b *VulkanBuffer) ExpandToFit(context *VulkanContext, frame *FrameResourceSet, n vk.DeviceSize) error {
	if n <= b.Size {
		return nil
	}
	newSize := b.Size * 2
	if n > newSize {
		newSize = n
	}

	grown, err := NewBuffer(context, newSize, b.Usage, b.MemProps)
	if err != nil {
		return err
	}

	frame.DestroyQueue.Buffers = append(frame.DestroyQueue.Buffers, VulkanBuffer{
		Handle: b.Handle,
		Memory: b.Memory,
	})

	b.Handle = grown.Handle
	b.Memory = grown.Memory
	b.Size = grown.Size
	return nil
}

// DescWholeBufferInfo describes the entire buffer for a descriptor write.
func (b *VulkanBuffer) DescWholeBufferInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(vk.WholeSize),
	}
}

// DescPartialBufferInfo describes a byte range for a descriptor write.
func (b *VulkanBuffer) DescPartialBufferInfo(offset, length vk.DeviceSize) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.Handle,
		Offset: offset,
		Range:  length,
	}
}
