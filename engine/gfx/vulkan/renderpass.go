package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
)

// VulkanRenderPassSet holds the two render passes used against one color
// format: one that clears the attachments and one that loads them. The two
// are attachment-compatible, so a pipeline built against either can record
// in both and one framebuffer serves both.
//
// Attachments enter and leave in attachment-optimal layout; all transitions
// in and out of it are owned by explicit barriers tracked on the images.
type VulkanRenderPassSet struct {
	ColorFormat vk.Format
	Clear       vk.RenderPass
	Load        vk.RenderPass
}

func NewRenderPassSet(context *VulkanContext, colorFormat vk.Format) (*VulkanRenderPassSet, error) {
	set := &VulkanRenderPassSet{ColorFormat: colorFormat}

	var err error
	if set.Clear, err = createRenderPass(context, colorFormat, true); err != nil {
		return nil, err
	}
	if set.Load, err = createRenderPass(context, colorFormat, false); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *VulkanRenderPassSet) Destroy(context *VulkanContext) {
	if s.Clear != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, s.Clear, context.Allocator)
		s.Clear = vk.NullRenderPass
	}
	if s.Load != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, s.Load, context.Allocator)
		s.Load = vk.NullRenderPass
	}
}

func createRenderPass(context *VulkanContext, colorFormat vk.Format, clear bool) (vk.RenderPass, error) {
	loadOp := vk.AttachmentLoadOpLoad
	if clear {
		loadOp = vk.AttachmentLoadOpClear
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         loadOp,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutColorAttachmentOptimal,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Format:         context.Device.DepthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         loadOp,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutDepthStencilAttachmentOptimal,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	if clear {
		// A freshly cleared pass does not care about prior depth contents.
		depthAttachment.InitialLayout = vk.ImageLayoutUndefined
	}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderPassInfo, context.Allocator, &renderPass); res != vk.Success {
		err := fmt.Errorf("failed to create render pass: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullRenderPass, err
	}
	return renderPass, nil
}

// createFramebuffer binds a color view and depth view to a pass of the set.
// Clear and Load are compatible so either pass handle works here.
func createFramebuffer(context *VulkanContext, renderPass vk.RenderPass, colorView, depthView vk.ImageView, width, height uint32) (vk.Framebuffer, error) {
	framebufferInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: 2,
		PAttachments:    []vk.ImageView{colorView, depthView},
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferInfo, context.Allocator, &framebuffer); res != vk.Success {
		err := fmt.Errorf("failed to create framebuffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullFramebuffer, err
	}
	return framebuffer, nil
}
