package vulkan

import (
	"fmt"
	stdmath "math"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/math"
)

// VulkanSwapchain wraps the presentable images. Each image carries its own
// tracked layout state since present hands ownership back in PresentSrc and
// rendering needs ColorAttachmentOptimal again the next time it is acquired.
type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []*VulkanImage

	DepthAttachment *VulkanImage

	// One framebuffer per image, rebuilt with the swapchain.
	Framebuffers []vk.Framebuffer
}

func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	return createSwapchain(context, width, height)
}

// SwapchainRecreate tears down and rebuilds for the current surface size.
// The caller must already hold a device idle; recreation happens lazily at
// the top of a frame, never mid-recording.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	vs.destroySwapchain(context)
	return createSwapchain(context, width, height)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// acquireDisposition classifies an AcquireNextImage result. An out-of-date
// surface is recoverable and marks the surface dirty for a lazy rebuild; any
// other failure means the device or surface is gone and the frame must abort.
func acquireDisposition(result vk.Result) (ok bool, dirty bool, err error) {
	switch result {
	case vk.Success, vk.Suboptimal:
		return true, false, nil
	case vk.ErrorOutOfDate:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result))
	}
}

// SwapchainAcquireNextImageIndex returns the next presentable image index.
// An out-of-date surface marks the context dirty instead of recreating
// inline; the frame continues without a screen target. Any other failure is
// fatal and propagates to the caller.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, bool, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNs, imageAvailableSemaphore, fence, &imageIndex)

	ok, dirty, err := acquireDisposition(result)
	if err != nil {
		core.LogError(err.Error())
		return 0, false, err
	}
	if dirty {
		context.SurfaceDirty = true
	}
	if !ok {
		return 0, false, nil
	}
	return imageIndex, true, nil
}

// SwapchainPresent queues the image for presentation. Out-of-date and
// suboptimal results mark the surface dirty for the next frame.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		context.SurfaceDirty = true
		return nil
	} else if result != vk.Success {
		err := fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func createSwapchain(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{}

	support := &context.Device.SwapchainSupport
	if err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface, support); err != nil {
		return nil, err
	}

	found := false
	for i := 0; i < int(support.FormatCount); i++ {
		format := support.Formats[i]
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			found = true
		}
	}
	if !found {
		swapchain.ImageFormat = support.Formats[0]
	}

	presentMode := vk.PresentModeFifo
	for i := 0; i < int(support.PresentModeCount); i++ {
		if support.PresentModes[i] == vk.PresentModeMailbox {
			presentMode = vk.PresentModeMailbox
			break
		}
	}

	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if support.Capabilities.CurrentExtent.Width != stdmath.MaxUint32 {
		swapchainExtent = support.Capabilities.CurrentExtent
	}
	min := support.Capabilities.MinImageExtent
	max := support.Capabilities.MaxImageExtent
	swapchainExtent.Width = math.Clamp(swapchainExtent.Width, min.Width, max.Width)
	swapchainExtent.Height = math.Clamp(swapchainExtent.Height, min.Height, max.Height)
	swapchain.Extent = swapchainExtent

	imageCount := support.Capabilities.MinImageCount + 1
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	swapchainCreateInfo.PreTransform = support.Capabilities.CurrentTransform
	swapchainCreateInfo.CompositeAlpha = vk.CompositeAlphaOpaqueBit
	swapchainCreateInfo.PresentMode = presentMode
	swapchainCreateInfo.Clipped = vk.True
	swapchainCreateInfo.OldSwapchain = vk.NullSwapchain

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	swapchain.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to count swapchain images: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	images := make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, images); res != vk.Success {
		err := fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	swapchain.Images = make([]*VulkanImage, swapchain.ImageCount)
	for i, handle := range images {
		// Memory stays nil; the swapchain owns the backing storage.
		image := &VulkanImage{
			Handle:     handle,
			Width:      swapchainExtent.Width,
			Height:     swapchainExtent.Height,
			Format:     swapchain.ImageFormat.Format,
			Layout:     vk.ImageLayoutUndefined,
			AccessMask: 0,
		}
		viewInfo := vk.ImageViewCreateInfo{
			SType:            vk.StructureTypeImageViewCreateInfo,
			Image:            handle,
			ViewType:         vk.ImageViewType2d,
			Format:           swapchain.ImageFormat.Format,
			SubresourceRange: image.subresourceRange(),
		}
		var view vk.ImageView
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view); res != vk.Success {
			err := fmt.Errorf("failed to create swapchain image view: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
		image.View = view
		swapchain.Images[i] = image
	}

	depthAttachment, err := ImageCreate(context,
		swapchainExtent.Width, swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		true)
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("swapchain created: %dx%d, %d images", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)
	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for _, fb := range vs.Framebuffers {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, fb, context.Allocator)
	}
	vs.Framebuffers = nil

	vs.DepthAttachment.ImageDestroy(context)

	// Views only; the images belong to the swapchain.
	for _, image := range vs.Images {
		vk.DestroyImageView(context.Device.LogicalDevice, image.View, context.Allocator)
	}
	vs.Images = nil

	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
}
