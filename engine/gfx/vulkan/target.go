package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/gfx"
)

// VulkanTarget is an off-screen render target: a sampleable color image, a
// private depth image and the framebuffer binding them. The color image's
// layout is tracked so it can move between attachment and shader-read use.
type VulkanTarget struct {
	Color       *VulkanImage
	Depth       *VulkanImage
	Framebuffer vk.Framebuffer
	Format      gfx.FramebufferFormat
}

func NewTarget(context *VulkanContext, width, height uint32, format gfx.FramebufferFormat, renderPass vk.RenderPass) (*VulkanTarget, error) {
	target := &VulkanTarget{Format: format}

	colorFormat := FramebufferFormatToVulkan(format)
	colorUsage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit)
	color, err := ImageCreate(context, width, height, colorFormat, colorUsage, false)
	if err != nil {
		return nil, err
	}
	target.Color = color

	depth, err := ImageCreate(context, width, height, context.Device.DepthFormat,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit), true)
	if err != nil {
		color.ImageDestroy(context)
		return nil, err
	}
	target.Depth = depth

	framebuffer, err := createFramebuffer(context, renderPass, color.View, depth.View, width, height)
	if err != nil {
		depth.ImageDestroy(context)
		color.ImageDestroy(context)
		return nil, err
	}
	target.Framebuffer = framebuffer

	return target, nil
}

func (t *VulkanTarget) Destroy(context *VulkanContext) {
	if t.Framebuffer != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, t.Framebuffer, context.Allocator)
		t.Framebuffer = vk.NullFramebuffer
	}
	t.Depth.ImageDestroy(context)
	t.Color.ImageDestroy(context)
}
