package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krill-engine/krill/engine/gfx"
)

func TestPixelFormatToVulkan(t *testing.T) {
	f, err := PixelFormatToVulkan(gfx.PixelRGBA8)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, f)

	f, err = PixelFormatToVulkan(gfx.PixelRGBA8Srgb)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, f)

	f, err = PixelFormatToVulkan(gfx.PixelR32UInt)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR32Uint, f)

	_, err = PixelFormatToVulkan(gfx.PixelFormat{Scalar: gfx.ScalarF32, Lanes: 3})
	assert.Error(t, err)
}

func TestVertexAttributeToVulkan(t *testing.T) {
	f, name, err := VertexAttributeToVulkan(gfx.AttrVec3)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, f)
	assert.Equal(t, "vec3", name)

	f, name, err = VertexAttributeToVulkan(gfx.AttrU8Vec4UN)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, f)
	assert.Equal(t, "vec4", name)

	f, name, err = VertexAttributeToVulkan(gfx.AttrU16Vec2)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR16g16Uint, f)
	assert.Equal(t, "uvec2", name)

	// sRGB never describes a vertex stream
	_, _, err = VertexAttributeToVulkan(gfx.VertexAttributeKind{
		Scalar: gfx.ScalarU8, Lanes: 4, Norm: gfx.NormalizationSrgb,
	})
	assert.Error(t, err)
}

func TestFramebufferFormatToVulkan(t *testing.T) {
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, FramebufferFormatToVulkan(gfx.FramebufferRGBA8))
	assert.Equal(t, vk.FormatR16g16b16a16Sfloat, FramebufferFormatToVulkan(gfx.FramebufferRGBA16F))
}

func TestChangeLayoutMemBarrierTracksState(t *testing.T) {
	image := &VulkanImage{
		Width:  4,
		Height: 4,
		Layout: vk.ImageLayoutUndefined,
	}

	barrier := image.ChangeLayoutMemBarrier(vk.ImageLayoutTransferDstOptimal, vk.AccessFlags(vk.AccessTransferWriteBit))
	assert.Equal(t, vk.ImageLayoutUndefined, barrier.OldLayout)
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, barrier.NewLayout)
	assert.Equal(t, vk.AccessFlags(0), barrier.SrcAccessMask)
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, image.Layout)

	// next transition sources from the recorded state
	barrier = image.ChangeLayoutMemBarrier(vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessFlags(vk.AccessShaderReadBit))
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, barrier.OldLayout)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), barrier.SrcAccessMask)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), barrier.DstAccessMask)
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, image.Layout)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), image.AccessMask)
}

func TestDepthImageSubresource(t *testing.T) {
	color := &VulkanImage{}
	depth := &VulkanImage{IsDepthStencil: true}
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), color.subresourceRange().AspectMask)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), depth.subresourceRange().AspectMask)
}

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate))
	assert.Equal(t, "VK_RESULT(-99)", VulkanResultString(vk.Result(-99)))
}

func TestVulkanSafeString(t *testing.T) {
	assert.Equal(t, "abc\x00", VulkanSafeString("abc"))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc\x00"))
	assert.Equal(t, "\x00", VulkanSafeString(""))
}
