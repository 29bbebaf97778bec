package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/gfx"
)

// VulkanImage owns device pixel storage and tracks the image's current layout
// and access mask. The tracked state is the sole source of truth for the next
// required transition; it must always equal the last barrier recorded for the
// image.
type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format

	IsDepthStencil bool

	Layout     vk.ImageLayout
	AccessMask vk.AccessFlags
}

func (i *VulkanImage) aspectMask() vk.ImageAspectFlags {
	if i.IsDepthStencil {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func (i *VulkanImage) subresourceRange() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     i.aspectMask(),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

// ChangeLayoutMemBarrier builds the barrier moving the image from its stored
// state to (newLayout, newAccess), then records the new state. Callers must
// submit every returned barrier; skipping one desynchronizes the tracked
// state from the GPU.
func (i *VulkanImage) ChangeLayoutMemBarrier(newLayout vk.ImageLayout, newAccess vk.AccessFlags) vk.ImageMemoryBarrier {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           i.Layout,
		NewLayout:           newLayout,
		SrcAccessMask:       i.AccessMask,
		DstAccessMask:       newAccess,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               i.Handle,
		SubresourceRange:    i.subresourceRange(),
	}
	i.Layout = newLayout
	i.AccessMask = newAccess
	return barrier
}

// BufferCopyTo describes copying tightly packed texels from a staging buffer
// offset into the whole image.
func (i *VulkanImage) BufferCopyTo(offset vk.DeviceSize) vk.BufferImageCopy {
	return vk.BufferImageCopy{
		BufferOffset:      offset,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     i.aspectMask(),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{Width: i.Width, Height: i.Height, Depth: 1},
	}
}

func ImageCreate(context *VulkanContext, width, height uint32, format vk.Format, usage vk.ImageUsageFlags, isDepthStencil bool) (*VulkanImage, error) {
	image := &VulkanImage{
		Width:          width,
		Height:         height,
		Format:         format,
		IsDepthStencil: isDepthStencil,
		Layout:         vk.ImageLayoutUndefined,
		AccessMask:     0,
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	var handle vk.Image
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create image: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	image.Handle = handle

	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, image.Handle, &memRequirements)
	memRequirements.Deref()

	memoryIndex := context.FindMemoryIndex(memRequirements.MemoryTypeBits, uint32(vk.MemoryPropertyDeviceLocalBit))
	if memoryIndex < 0 {
		err := fmt.Errorf("no suitable memory type for image")
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
		err := fmt.Errorf("failed to allocate image memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	image.Memory = memory

	if res := vk.BindImageMemory(context.Device.LogicalDevice, image.Handle, image.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind image memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	viewInfo := vk.ImageViewCreateInfo{
		SType:            vk.StructureTypeImageViewCreateInfo,
		Image:            image.Handle,
		ViewType:         vk.ImageViewType2d,
		Format:           format,
		SubresourceRange: image.subresourceRange(),
	}
	var view vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
		err := fmt.Errorf("failed to create image view: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	image.View = view

	return image, nil
}

func (i *VulkanImage) ImageDestroy(context *VulkanContext) {
	if i.View != nil {
		vk.DestroyImageView(context.Device.LogicalDevice, i.View, context.Allocator)
		i.View = nil
	}
	if i.Handle != nil && i.Memory != nil {
		vk.DestroyImage(context.Device.LogicalDevice, i.Handle, context.Allocator)
		i.Handle = nil
	}
	if i.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, i.Memory, context.Allocator)
		i.Memory = nil
	}
}

// PixelFormatToVulkan maps a texture pixel format to the wire format. The
// combinations here are the supported set; anything else fails registration.
func PixelFormatToVulkan(format gfx.PixelFormat) (vk.Format, error) {
	type key struct {
		scalar gfx.ScalarKind
		lanes  uint8
		norm   gfx.Normalization
	}
	table := map[key]vk.Format{
		{gfx.ScalarU8, 1, gfx.NormalizationNone}:          vk.FormatR8Uint,
		{gfx.ScalarU8, 1, gfx.NormalizationZeroToOne}:     vk.FormatR8Unorm,
		{gfx.ScalarU8, 2, gfx.NormalizationZeroToOne}:     vk.FormatR8g8Unorm,
		{gfx.ScalarU8, 4, gfx.NormalizationNone}:          vk.FormatR8g8b8a8Uint,
		{gfx.ScalarU8, 4, gfx.NormalizationZeroToOne}:     vk.FormatR8g8b8a8Unorm,
		{gfx.ScalarU8, 4, gfx.NormalizationMinusOneToOne}: vk.FormatR8g8b8a8Snorm,
		{gfx.ScalarU8, 4, gfx.NormalizationSrgb}:          vk.FormatR8g8b8a8Srgb,
		{gfx.ScalarU16, 1, gfx.NormalizationNone}:         vk.FormatR16Uint,
		{gfx.ScalarU16, 4, gfx.NormalizationNone}:         vk.FormatR16g16b16a16Uint,
		{gfx.ScalarU32, 1, gfx.NormalizationNone}:         vk.FormatR32Uint,
		{gfx.ScalarF32, 1, gfx.NormalizationNone}:         vk.FormatR32Sfloat,
		{gfx.ScalarF32, 4, gfx.NormalizationNone}:         vk.FormatR32g32b32a32Sfloat,
	}
	f, ok := table[key{format.Scalar, format.Lanes, format.Norm}]
	if !ok {
		return vk.FormatUndefined, fmt.Errorf("unsupported pixel format: scalar=%d lanes=%d norm=%d", format.Scalar, format.Lanes, format.Norm)
	}
	return f, nil
}

// VertexAttributeToVulkan maps a vertex attribute kind to its wire format and
// GLSL input type. sRGB is not a valid vertex normalization.
func VertexAttributeToVulkan(kind gfx.VertexAttributeKind) (vk.Format, string, error) {
	type entry struct {
		format   vk.Format
		typeName string
	}
	type key struct {
		scalar gfx.ScalarKind
		lanes  uint8
		norm   gfx.Normalization
	}
	table := map[key]entry{
		{gfx.ScalarF32, 1, gfx.NormalizationNone}: {vk.FormatR32Sfloat, "float"},
		{gfx.ScalarF32, 2, gfx.NormalizationNone}: {vk.FormatR32g32Sfloat, "vec2"},
		{gfx.ScalarF32, 3, gfx.NormalizationNone}: {vk.FormatR32g32b32Sfloat, "vec3"},
		{gfx.ScalarF32, 4, gfx.NormalizationNone}: {vk.FormatR32g32b32a32Sfloat, "vec4"},

		{gfx.ScalarU8, 1, gfx.NormalizationNone}: {vk.FormatR8Uint, "uint"},
		{gfx.ScalarU8, 2, gfx.NormalizationNone}: {vk.FormatR8g8Uint, "uvec2"},
		{gfx.ScalarU8, 4, gfx.NormalizationNone}: {vk.FormatR8g8b8a8Uint, "uvec4"},

		{gfx.ScalarU8, 1, gfx.NormalizationZeroToOne}:     {vk.FormatR8Unorm, "float"},
		{gfx.ScalarU8, 2, gfx.NormalizationZeroToOne}:     {vk.FormatR8g8Unorm, "vec2"},
		{gfx.ScalarU8, 4, gfx.NormalizationZeroToOne}:     {vk.FormatR8g8b8a8Unorm, "vec4"},
		{gfx.ScalarU8, 4, gfx.NormalizationMinusOneToOne}: {vk.FormatR8g8b8a8Snorm, "vec4"},

		{gfx.ScalarU16, 1, gfx.NormalizationNone}: {vk.FormatR16Uint, "uint"},
		{gfx.ScalarU16, 2, gfx.NormalizationNone}: {vk.FormatR16g16Uint, "uvec2"},
		{gfx.ScalarU16, 4, gfx.NormalizationNone}: {vk.FormatR16g16b16a16Uint, "uvec4"},

		{gfx.ScalarU16, 1, gfx.NormalizationZeroToOne}: {vk.FormatR16Unorm, "float"},
		{gfx.ScalarU16, 2, gfx.NormalizationZeroToOne}: {vk.FormatR16g16Unorm, "vec2"},
		{gfx.ScalarU16, 4, gfx.NormalizationZeroToOne}: {vk.FormatR16g16b16a16Unorm, "vec4"},

		{gfx.ScalarU32, 1, gfx.NormalizationNone}: {vk.FormatR32Uint, "uint"},
		{gfx.ScalarU32, 2, gfx.NormalizationNone}: {vk.FormatR32g32Uint, "uvec2"},
		{gfx.ScalarU32, 4, gfx.NormalizationNone}: {vk.FormatR32g32b32a32Uint, "uvec4"},
	}
	e, ok := table[key{kind.Scalar, kind.Lanes, kind.Norm}]
	if !ok {
		return vk.FormatUndefined, "", fmt.Errorf("unsupported vertex attribute: scalar=%d lanes=%d norm=%d", kind.Scalar, kind.Lanes, kind.Norm)
	}
	return e.format, e.typeName, nil
}

// FramebufferFormatToVulkan maps an off-screen target format to its pixel
// format.
func FramebufferFormatToVulkan(format gfx.FramebufferFormat) vk.Format {
	switch format {
	case gfx.FramebufferRGBA16F:
		return vk.FormatR16g16b16a16Sfloat
	default:
		return vk.FormatR8g8b8a8Unorm
	}
}
