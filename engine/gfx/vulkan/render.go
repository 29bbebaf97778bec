package vulkan

import (
	"fmt"
	stdmath "math"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/gfx"
)

const frameFenceTimeoutNs = uint64(stdmath.MaxUint64)

func alignDeviceSize(n, align vk.DeviceSize) vk.DeviceSize {
	return (n + align - 1) / align * align
}

// uploadPlan accumulates this frame's staging traffic while the update queue
// is drained: packed payload bytes plus the copy commands to record.
type uploadPlan struct {
	bytes []byte

	bufferCopies []stagedBufferCopy
	imageCopies  []stagedImageCopy
	clearTargets []*VulkanTarget
}

type stagedBufferCopy struct {
	srcOffset vk.DeviceSize
	dst       vk.Buffer
	size      vk.DeviceSize
}

type stagedImageCopy struct {
	srcOffset vk.DeviceSize
	image     *VulkanImage
}

// stage appends payload bytes at the next aligned offset.
func (p *uploadPlan) stage(data []byte) vk.DeviceSize {
	offset := alignDeviceSize(vk.DeviceSize(len(p.bytes)), STAGING_BUFFER_ALIGN)
	for vk.DeviceSize(len(p.bytes)) < offset {
		p.bytes = append(p.bytes, 0)
	}
	p.bytes = append(p.bytes, data...)
	return offset
}

// DrawFrame runs one frame of the backend: drain the update queue, upload
// staged and immediate data, replay the draw log and present. Off-screen
// canvases still render when the surface is unavailable.
func (r *Renderer) DrawFrame(frame gfx.FrameData) error {
	fr := r.frames[r.parity]
	context := r.context

	if !fr.Fence.FenceWait(context, frameFenceTimeoutNs) {
		return fmt.Errorf("frame fence wait failed")
	}
	fr.DestroyQueue.Drain(context)
	if res := vk.ResetCommandPool(context.Device.LogicalDevice, fr.CommandPool, 0); res != vk.Success {
		return fmt.Errorf("failed to reset frame command pool: %s", VulkanResultString(res))
	}
	if res := vk.ResetDescriptorPool(context.Device.LogicalDevice, fr.DescriptorPool, 0); res != vk.Success {
		return fmt.Errorf("failed to reset frame descriptor pool: %s", VulkanResultString(res))
	}

	plan, err := r.processUpdates(fr, frame.Updates)
	if err != nil {
		return err
	}

	if context.SurfaceDirty {
		if err := r.recreateSwapchain(); err != nil {
			return err
		}
	}

	haveScreen := false
	var imageIndex uint32
	if frameWantsScreen(frame.Commands) {
		imageIndex, haveScreen, err = r.swapchain.SwapchainAcquireNextImageIndex(context, frameFenceTimeoutNs, fr.ImageAvailable, vk.NullFence)
		if err != nil {
			return err
		}
	}

	if err := r.uploadFrameData(fr, plan, frame); err != nil {
		return err
	}

	if err := fr.Fence.FenceReset(context); err != nil {
		return err
	}

	cmd := fr.CommandBuffer
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmd, &beginInfo); res != vk.Success {
		return fmt.Errorf("failed to begin frame command buffer: %s", VulkanResultString(res))
	}

	r.recordUploads(cmd, fr, plan)
	r.replay(cmd, fr, frame.Commands, haveScreen, imageIndex)

	if haveScreen {
		recordImageBarrier(cmd, r.swapchain.Images[imageIndex], vk.ImageLayoutPresentSrc, 0)
	}

	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		return fmt.Errorf("failed to end frame command buffer: %s", VulkanResultString(res))
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{fr.RenderFinished},
	}
	if haveScreen {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{fr.ImageAvailable}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if res := vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fr.Fence.Handle); res != vk.Success {
		return fmt.Errorf("failed to submit frame: %s", VulkanResultString(res))
	}

	if haveScreen {
		if err := r.swapchain.SwapchainPresent(context, context.Device.PresentQueue, fr.RenderFinished, imageIndex); err != nil {
			return err
		}
	}

	r.parity = (r.parity + 1) % len(r.frames)
	return nil
}

func frameWantsScreen(commands []gfx.DrawCmd) bool {
	for _, command := range commands {
		if set, ok := command.(gfx.SetCanvasCmd); ok && set.Canvas.IsScreen() {
			return true
		}
	}
	return false
}

// processUpdates drains the resource update queue. Creates allocate backend
// objects and stage their payloads; Frees park objects on this frame's
// destroy queue, which drains two frames from now when the fence proves the
// GPU is done with them.
func (r *Renderer) processUpdates(fr *FrameResourceSet, updates []gfx.ResourceUpdate) (*uploadPlan, error) {
	plan := &uploadPlan{}
	context := r.context

	for _, update := range updates {
		switch u := update.(type) {
		case gfx.CreateShaderUpdate:
			pipeline, err := NewPipeline(context, r.compiler, &u.Def, r.passSets)
			if err != nil {
				core.LogFatal("shader %d failed to build: %s", u.ID, err.Error())
			}
			r.pipelines[u.ID] = pipeline

		case gfx.CreateTexture2DUpdate:
			format, err := PixelFormatToVulkan(u.Format)
			if err != nil {
				return nil, err
			}
			usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit)
			image, err := ImageCreate(context, u.Width, u.Height, format, usage, false)
			if err != nil {
				return nil, err
			}
			r.textures[u.ID] = image
			plan.imageCopies = append(plan.imageCopies, stagedImageCopy{
				srcOffset: plan.stage(u.Pixels),
				image:     image,
			})

		case gfx.CreateSamplerUpdate:
			sampler, err := createSampler(context, u.Def)
			if err != nil {
				return nil, err
			}
			r.samplers[u.ID] = sampler

		case gfx.CreateMeshUpdate:
			mesh, err := NewMesh(context,
				vk.DeviceSize(len(u.Vertices)), vk.DeviceSize(len(u.Indices)),
				u.VertexCount, u.IndexCount, u.IndexU32, u.HasIndices)
			if err != nil {
				return nil, err
			}
			r.meshes[u.ID] = mesh
			plan.bufferCopies = append(plan.bufferCopies, stagedBufferCopy{
				srcOffset: plan.stage(u.Vertices),
				dst:       mesh.VertexBuffer.Handle,
				size:      vk.DeviceSize(len(u.Vertices)),
			})
			if u.HasIndices {
				plan.bufferCopies = append(plan.bufferCopies, stagedBufferCopy{
					srcOffset: plan.stage(u.Indices),
					dst:       mesh.IndexBuffer.Handle,
					size:      vk.DeviceSize(len(u.Indices)),
				})
			}

		case gfx.CreateInstancesUpdate:
			instances, err := NewInstances(context, vk.DeviceSize(len(u.Data)), u.Count)
			if err != nil {
				return nil, err
			}
			r.instanceSets[u.ID] = instances
			plan.bufferCopies = append(plan.bufferCopies, stagedBufferCopy{
				srcOffset: plan.stage(u.Data),
				dst:       instances.Buffer.Handle,
				size:      vk.DeviceSize(len(u.Data)),
			})

		case gfx.CreateUniformUpdate:
			buffer, err := NewBuffer(context, vk.DeviceSize(len(u.Data)),
				vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit|vk.BufferUsageTransferDstBit),
				vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
			if err != nil {
				return nil, err
			}
			r.uniforms[u.ID] = buffer
			plan.bufferCopies = append(plan.bufferCopies, stagedBufferCopy{
				srcOffset: plan.stage(u.Data),
				dst:       buffer.Handle,
				size:      vk.DeviceSize(len(u.Data)),
			})

		case gfx.CreateFramebufferUpdate:
			target, err := NewTarget(context, u.Width, u.Height, u.Format, r.passSets[int(u.Format)].Clear)
			if err != nil {
				return nil, err
			}
			r.targets[u.ID] = target
			// Fresh targets are cleared so sampling before the first
			// rendered pass reads defined pixels.
			plan.clearTargets = append(plan.clearTargets, target)

		case gfx.FreeUpdate:
			r.freeResource(fr, u)
		}
	}
	return plan, nil
}

func (r *Renderer) freeResource(fr *FrameResourceSet, u gfx.FreeUpdate) {
	q := &fr.DestroyQueue
	switch u.Category {
	case gfx.FreeShader:
		if pipeline, ok := r.pipelines[u.ID]; ok {
			q.Pipelines = append(q.Pipelines, pipeline)
			delete(r.pipelines, u.ID)
		}
	case gfx.FreeTexture2D:
		if image, ok := r.textures[u.ID]; ok {
			q.Images = append(q.Images, image)
			delete(r.textures, u.ID)
		}
	case gfx.FreeSampler:
		if sampler, ok := r.samplers[u.ID]; ok {
			q.Samplers = append(q.Samplers, sampler)
			delete(r.samplers, u.ID)
		}
	case gfx.FreeMesh:
		if mesh, ok := r.meshes[u.ID]; ok {
			q.Meshes = append(q.Meshes, mesh)
			delete(r.meshes, u.ID)
		}
	case gfx.FreeInstances:
		if instances, ok := r.instanceSets[u.ID]; ok {
			q.InstanceBufs = append(q.InstanceBufs, instances)
			delete(r.instanceSets, u.ID)
		}
	case gfx.FreeUniform:
		if buffer, ok := r.uniforms[u.ID]; ok {
			q.Buffers = append(q.Buffers, *buffer)
			delete(r.uniforms, u.ID)
		}
	case gfx.FreeFramebuffer:
		if target, ok := r.targets[u.ID]; ok {
			q.Targets = append(q.Targets, target)
			delete(r.targets, u.ID)
		}
	}
}

func createSampler(context *VulkanContext, def gfx.SamplerDefinition) (vk.Sampler, error) {
	addressMode := vk.SamplerAddressModeRepeat
	switch def.WrapMode {
	case gfx.SamplerWrapExtend:
		addressMode = vk.SamplerAddressModeClampToEdge
	case gfx.SamplerWrapMirror:
		addressMode = vk.SamplerAddressModeMirroredRepeat
	}
	minFilter := vk.FilterNearest
	if def.MinLinear {
		minFilter = vk.FilterLinear
	}
	magFilter := vk.FilterNearest
	if def.MagLinear {
		magFilter = vk.FilterLinear
	}
	samplerInfo := vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MinFilter:    minFilter,
		MagFilter:    magFilter,
		AddressModeU: addressMode,
		AddressModeV: addressMode,
		AddressModeW: addressMode,
		MipmapMode:   vk.SamplerMipmapModeNearest,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		err := fmt.Errorf("failed to create sampler: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullSampler, err
	}
	return sampler, nil
}

// uploadFrameData writes the packed staging payloads and the immediate-mode
// bytes into the frame's host-visible buffers, growing them first.
func (r *Renderer) uploadFrameData(fr *FrameResourceSet, plan *uploadPlan, frame gfx.FrameData) error {
	context := r.context

	type upload struct {
		buffer *VulkanBuffer
		data   []byte
	}
	uploads := []upload{
		{fr.StagingBuffer, plan.bytes},
		{fr.VertexBuffer, frame.ImmVertex},
		{fr.IndexBuffer, frame.ImmIndex},
		{fr.UniformBuffer, frame.ImmUniform},
	}
	for _, u := range uploads {
		if len(u.data) == 0 {
			continue
		}
		if err := u.buffer.ExpandToFit(context, fr, vk.DeviceSize(len(u.data))); err != nil {
			return err
		}
		if err := u.buffer.Map(context, func(mapped []byte) {
			copy(mapped, u.data)
		}); err != nil {
			return err
		}
	}
	return nil
}

// recordUploads records the staged copies: images move to transfer-dst, get
// their texels or a clear, then settle in shader-read layout; buffer copies
// are fenced off from later reads with one global barrier.
func (r *Renderer) recordUploads(cmd vk.CommandBuffer, fr *FrameResourceSet, plan *uploadPlan) {
	for _, c := range plan.bufferCopies {
		if c.size == 0 {
			continue
		}
		vk.CmdCopyBuffer(cmd, fr.StagingBuffer.Handle, c.dst, 1, []vk.BufferCopy{{
			SrcOffset: c.srcOffset,
			DstOffset: 0,
			Size:      c.size,
		}})
	}

	for _, c := range plan.imageCopies {
		recordImageBarrier(cmd, c.image, vk.ImageLayoutTransferDstOptimal, vk.AccessFlags(vk.AccessTransferWriteBit))
		vk.CmdCopyBufferToImage(cmd, fr.StagingBuffer.Handle, c.image.Handle,
			vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{c.image.BufferCopyTo(c.srcOffset)})
		recordImageBarrier(cmd, c.image, vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessFlags(vk.AccessShaderReadBit))
	}

	for _, target := range plan.clearTargets {
		recordImageBarrier(cmd, target.Color, vk.ImageLayoutTransferDstOptimal, vk.AccessFlags(vk.AccessTransferWriteBit))
		clearColor := vk.ClearColorValue{}
		vk.CmdClearColorImage(cmd, target.Color.Handle, vk.ImageLayoutTransferDstOptimal,
			&clearColor, 1, []vk.ImageSubresourceRange{target.Color.subresourceRange()})
		recordImageBarrier(cmd, target.Color, vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessFlags(vk.AccessShaderReadBit))
	}

	if len(plan.bufferCopies) > 0 {
		memoryBarrier := vk.MemoryBarrier{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
		}
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
			0, 1, []vk.MemoryBarrier{memoryBarrier}, 0, nil, 0, nil)
	}
}

func recordImageBarrier(cmd vk.CommandBuffer, image *VulkanImage, layout vk.ImageLayout, access vk.AccessFlags) {
	if image.Layout == layout && image.AccessMask == access {
		return
	}
	barrier := image.ChangeLayoutMemBarrier(layout, access)
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// replay walks the draw log and turns it into recorded commands. The log is
// segmented by SetCanvas; each segment is one render pass instance. When the
// screen is unavailable its segments are skipped whole, off-screen segments
// still record.
func (r *Renderer) replay(cmd vk.CommandBuffer, fr *FrameResourceSet, commands []gfx.DrawCmd, haveScreen bool, imageIndex uint32) {
	var (
		inPass   bool
		skipping bool
		variant  int
		pipeline *VulkanPipeline
		canvasW  uint32
		canvasH  uint32
	)

	endPass := func() {
		if inPass {
			vk.CmdEndRenderPass(cmd)
			inPass = false
		}
	}

	for i, command := range commands {
		switch c := command.(type) {
		case gfx.SetCanvasCmd:
			endPass()
			pipeline = nil

			var colorImage, depthImage *VulkanImage
			var framebuffer vk.Framebuffer
			if c.Canvas.IsScreen() {
				if !haveScreen {
					skipping = true
					continue
				}
				colorImage = r.swapchain.Images[imageIndex]
				depthImage = r.swapchain.DepthAttachment
				framebuffer = r.swapchain.Framebuffers[imageIndex]
				variant = surfaceVariantIndex
				canvasW = r.swapchain.Extent.Width
				canvasH = r.swapchain.Extent.Height
			} else {
				target, ok := r.targets[c.Canvas.Framebuffer()]
				if !ok {
					core.LogError("draw log references unknown framebuffer %d", c.Canvas.Framebuffer())
					skipping = true
					continue
				}
				colorImage = target.Color
				depthImage = target.Depth
				framebuffer = target.Framebuffer
				variant = int(target.Format)
				canvasW = target.Color.Width
				canvasH = target.Color.Height
			}
			skipping = false

			// Targets sampled inside this segment must be readable
			// before the pass opens; barriers cannot be recorded
			// mid-pass.
			for _, sampled := range r.sampledTargets(commands[i+1:]) {
				recordImageBarrier(cmd, sampled, vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessFlags(vk.AccessShaderReadBit))
			}

			recordImageBarrier(cmd, colorImage, vk.ImageLayoutColorAttachmentOptimal,
				vk.AccessFlags(vk.AccessColorAttachmentReadBit|vk.AccessColorAttachmentWriteBit))
			recordImageBarrier(cmd, depthImage, vk.ImageLayoutDepthStencilAttachmentOptimal,
				vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit|vk.AccessDepthStencilAttachmentWriteBit))

			passSet := r.passSets[variant]
			renderPass := passSet.Load
			var clearValues []vk.ClearValue
			if c.Clear != nil {
				renderPass = passSet.Clear
				var colorValue vk.ClearValue
				colorValue.SetColor([]float32{c.Clear.R, c.Clear.G, c.Clear.B, c.Clear.A})
				var depthValue vk.ClearValue
				depthValue.SetDepthStencil(1.0, 0)
				clearValues = []vk.ClearValue{colorValue, depthValue}
			}

			beginInfo := vk.RenderPassBeginInfo{
				SType:       vk.StructureTypeRenderPassBeginInfo,
				RenderPass:  renderPass,
				Framebuffer: framebuffer,
				RenderArea: vk.Rect2D{
					Extent: vk.Extent2D{Width: canvasW, Height: canvasH},
				},
				ClearValueCount: uint32(len(clearValues)),
				PClearValues:    clearValues,
			}
			vk.CmdBeginRenderPass(cmd, &beginInfo, vk.SubpassContentsInline)
			inPass = true

			viewport := vk.Viewport{
				Width:    float32(canvasW),
				Height:   float32(canvasH),
				MinDepth: 0,
				MaxDepth: 1,
			}
			vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{viewport})
			scissor := vk.Rect2D{Extent: vk.Extent2D{Width: canvasW, Height: canvasH}}
			vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{scissor})

		case gfx.SetShaderCmd:
			if skipping {
				continue
			}
			p, ok := r.pipelines[c.Shader]
			if !ok {
				core.LogFatal("draw log references unknown shader %d", c.Shader)
			}
			pipeline = p
			vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline.Variants[variant])

		case gfx.SetMaterialCmd:
			if skipping || pipeline == nil {
				continue
			}
			r.bindMaterial(cmd, fr, pipeline, c)

		case gfx.DrawMeshCmd:
			if skipping || pipeline == nil {
				continue
			}
			r.recordDraw(cmd, fr, pipeline, c)
		}
	}
	endPass()
}

// sampledTargets collects the framebuffer color images referenced by
// materials up to the next canvas change.
func (r *Renderer) sampledTargets(commands []gfx.DrawCmd) []*VulkanImage {
	var images []*VulkanImage
	for _, command := range commands {
		switch c := command.(type) {
		case gfx.SetCanvasCmd:
			return images
		case gfx.SetMaterialCmd:
			for _, ref := range c.Refs {
				if ref.Kind != gfx.MaterialRefFramebufferColor {
					continue
				}
				if target, ok := r.targets[ref.ID]; ok {
					images = append(images, target.Color)
				}
			}
		}
	}
	return images
}

func (r *Renderer) bindMaterial(cmd vk.CommandBuffer, fr *FrameResourceSet, pipeline *VulkanPipeline, c gfx.SetMaterialCmd) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     fr.DescriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{pipeline.SetLayouts[c.Slot]},
	}
	descriptorSets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(r.context.Device.LogicalDevice, &allocInfo, &descriptorSets[0]); res != vk.Success {
		core.LogFatal("failed to allocate material descriptor set: %s", VulkanResultString(res))
	}
	set := descriptorSets[0]

	writes := make([]vk.WriteDescriptorSet, 0, len(c.Refs))
	for binding, ref := range c.Refs {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(binding),
			DescriptorCount: 1,
		}
		switch ref.Kind {
		case gfx.MaterialRefTexture2D:
			image, ok := r.textures[ref.ID]
			if !ok {
				core.LogFatal("material references unknown texture %d", ref.ID)
			}
			write.DescriptorType = vk.DescriptorTypeSampledImage
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   image.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		case gfx.MaterialRefFramebufferColor:
			target, ok := r.targets[ref.ID]
			if !ok {
				core.LogFatal("material references unknown framebuffer %d", ref.ID)
			}
			write.DescriptorType = vk.DescriptorTypeSampledImage
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   target.Color.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		case gfx.MaterialRefSampler:
			sampler, ok := r.samplers[ref.ID]
			if !ok {
				core.LogFatal("material references unknown sampler %d", ref.ID)
			}
			write.DescriptorType = vk.DescriptorTypeSampler
			write.PImageInfo = []vk.DescriptorImageInfo{{Sampler: sampler}}
		case gfx.MaterialRefUniform:
			buffer, ok := r.uniforms[ref.ID]
			if !ok {
				core.LogFatal("material references unknown uniform buffer %d", ref.ID)
			}
			write.DescriptorType = vk.DescriptorTypeUniformBuffer
			write.PBufferInfo = []vk.DescriptorBufferInfo{buffer.DescWholeBufferInfo()}
		case gfx.MaterialRefImmUniform:
			write.DescriptorType = vk.DescriptorTypeUniformBuffer
			write.PBufferInfo = []vk.DescriptorBufferInfo{
				fr.UniformBuffer.DescPartialBufferInfo(vk.DeviceSize(ref.Start), vk.DeviceSize(ref.Len)),
			}
		}
		writes = append(writes, write)
	}
	vk.UpdateDescriptorSets(r.context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)

	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, pipeline.Layout,
		uint32(c.Slot), 1, []vk.DescriptorSet{set}, 0, nil)
}

func (r *Renderer) recordDraw(cmd vk.CommandBuffer, fr *FrameResourceSet, pipeline *VulkanPipeline, c gfx.DrawMeshCmd) {
	// The layout declares the full range; unused tail bytes are zero.
	push := c.Push
	vk.CmdPushConstants(cmd, pipeline.Layout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
		0, gfx.PushConstantLimit, unsafe.Pointer(&push[0]))

	var mesh *VulkanMesh
	switch c.Mesh.Source() {
	case gfx.MeshSourceResource:
		m, ok := r.meshes[c.Mesh.ID()]
		if !ok {
			core.LogFatal("draw log references unknown mesh %d", c.Mesh.ID())
		}
		mesh = m
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{m.VertexBuffer.Handle}, []vk.DeviceSize{0})
	case gfx.MeshSourceImmediate:
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{fr.VertexBuffer.Handle},
			[]vk.DeviceSize{vk.DeviceSize(c.Mesh.VertexStart())})
	case gfx.MeshSourceRange:
		// No vertex data; the shader works from gl_VertexIndex.
	}

	switch c.Instances.Source() {
	case gfx.MeshSourceResource:
		instances, ok := r.instanceSets[c.Instances.ID()]
		if !ok {
			core.LogFatal("draw log references unknown instance buffer %d", c.Instances.ID())
		}
		vk.CmdBindVertexBuffers(cmd, 1, 1, []vk.Buffer{instances.Buffer.Handle}, []vk.DeviceSize{0})
	case gfx.MeshSourceImmediate:
		vk.CmdBindVertexBuffers(cmd, 1, 1, []vk.Buffer{fr.VertexBuffer.Handle},
			[]vk.DeviceSize{vk.DeviceSize(c.Instances.Start())})
	}

	instanceCount := c.Instances.Count()
	if c.Mesh.HasIndices() {
		indexType := vk.IndexTypeUint16
		if c.Mesh.IndexU32() {
			indexType = vk.IndexTypeUint32
		}
		if mesh != nil {
			vk.CmdBindIndexBuffer(cmd, mesh.IndexBuffer.Handle, 0, indexType)
		} else {
			vk.CmdBindIndexBuffer(cmd, fr.IndexBuffer.Handle, vk.DeviceSize(c.Mesh.IndexStart()), indexType)
		}
		vk.CmdDrawIndexed(cmd, c.Mesh.IndexCount(), instanceCount, 0, 0, 0)
	} else {
		vk.CmdDraw(cmd, c.Mesh.VertexCount(), instanceCount, 0, 0)
	}
}
