package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/gfx"
	"github.com/krill-engine/krill/engine/gfx/vulkan/shaderc"
	"github.com/krill-engine/krill/engine/platform"
)

// Renderer is the Vulkan backend. It owns the instance, device, swapchain,
// the per-format render pass sets, the realized resources keyed by the
// high-level resource IDs, and two alternating frame resource sets.
type Renderer struct {
	platform  *platform.Platform
	context   *VulkanContext
	swapchain *VulkanSwapchain
	compiler  shaderc.Compiler

	passSets [pipelineVariantCount]*VulkanRenderPassSet

	pipelines    map[gfx.ResourceID]*VulkanPipeline
	textures     map[gfx.ResourceID]*VulkanImage
	samplers     map[gfx.ResourceID]vk.Sampler
	meshes       map[gfx.ResourceID]*VulkanMesh
	instanceSets map[gfx.ResourceID]*VulkanInstances
	uniforms     map[gfx.ResourceID]*VulkanBuffer
	targets      map[gfx.ResourceID]*VulkanTarget

	frames [2]*FrameResourceSet
	parity int

	debug bool
}

func New(p *platform.Platform) *Renderer {
	return &Renderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
		},
		pipelines:    make(map[gfx.ResourceID]*VulkanPipeline),
		textures:     make(map[gfx.ResourceID]*VulkanImage),
		samplers:     make(map[gfx.ResourceID]vk.Sampler),
		meshes:       make(map[gfx.ResourceID]*VulkanMesh),
		instanceSets: make(map[gfx.ResourceID]*VulkanInstances),
		uniforms:     make(map[gfx.ResourceID]*VulkanBuffer),
		targets:      make(map[gfx.ResourceID]*VulkanTarget),
		debug:        true,
	}
}

func (r *Renderer) Initialize(appName string) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("vulkan loader not available through glfw")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vulkan: %s", err)
		return err
	}

	width, height := r.platform.FramebufferExtent()
	r.context.FramebufferWidth = width
	r.context.FramebufferHeight = height

	if err := r.createInstance(appName); err != nil {
		return err
	}

	surface, err := r.platform.CreateVulkanSurface(r.context.Instance)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	r.context.Surface = surface

	if err := DeviceCreate(r.context); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(r.context, width, height)
	if err != nil {
		return err
	}
	r.swapchain = swapchain

	for format := gfx.FramebufferFormat(0); format < gfx.FramebufferFormatCount; format++ {
		set, err := NewRenderPassSet(r.context, FramebufferFormatToVulkan(format))
		if err != nil {
			return err
		}
		r.passSets[int(format)] = set
	}
	surfaceSet, err := NewRenderPassSet(r.context, r.swapchain.ImageFormat.Format)
	if err != nil {
		return err
	}
	r.passSets[surfaceVariantIndex] = surfaceSet

	if err := r.regenerateSwapchainFramebuffers(); err != nil {
		return err
	}

	for i := range r.frames {
		frame, err := NewFrameResourceSet(r.context)
		if err != nil {
			return err
		}
		r.frames[i] = frame
	}

	r.compiler = shaderc.NewCompiler()

	core.LogInfo("vulkan renderer initialized")
	return nil
}

func (r *Renderer) createInstance(appName string) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Krill Engine"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, r.platform.GetRequiredExtensionNames()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	if r.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var layers []string
	if r.debug {
		layers = r.availableValidationLayers()
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, r.context.Allocator, &r.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(r.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}

	if r.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(r.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			core.LogWarn("debug report callback unavailable: %s", VulkanResultString(res))
		} else {
			r.context.debugMessenger = dbg
		}
	}
	return nil
}

// availableValidationLayers returns the Khronos validation layer when the
// loader offers it; a missing layer only disables validation.
func (r *Renderer) availableValidationLayers() []string {
	wanted := "VK_LAYER_KHRONOS_validation"

	var layerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
		return nil
	}
	availableLayers := make([]vk.LayerProperties, layerCount)
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, availableLayers); res != vk.Success {
		return nil
	}
	for i := range availableLayers {
		availableLayers[i].Deref()
		end := FindFirstZeroInByteArray(availableLayers[i].LayerName[:])
		if wanted == vk.ToString(availableLayers[i].LayerName[:end+1]) {
			return []string{wanted}
		}
	}
	core.LogWarn("validation layer %s not present, running without validation", wanted)
	return nil
}

func (r *Renderer) regenerateSwapchainFramebuffers() error {
	r.swapchain.Framebuffers = make([]vk.Framebuffer, r.swapchain.ImageCount)
	for i, image := range r.swapchain.Images {
		framebuffer, err := createFramebuffer(r.context,
			r.passSets[surfaceVariantIndex].Clear,
			image.View, r.swapchain.DepthAttachment.View,
			r.swapchain.Extent.Width, r.swapchain.Extent.Height)
		if err != nil {
			return err
		}
		r.swapchain.Framebuffers[i] = framebuffer
	}
	return nil
}

// recreateSwapchain rebuilds the swapchain for the current surface size. A
// zero extent (minimized window) keeps the surface dirty and skips the
// rebuild; off-screen rendering continues meanwhile.
func (r *Renderer) recreateSwapchain() error {
	width, height := r.platform.FramebufferExtent()
	if width == 0 || height == 0 {
		return nil
	}
	r.context.FramebufferWidth = width
	r.context.FramebufferHeight = height

	vk.DeviceWaitIdle(r.context.Device.LogicalDevice)

	swapchain, err := r.swapchain.SwapchainRecreate(r.context, width, height)
	if err != nil {
		return err
	}
	r.swapchain = swapchain

	if swapchain.ImageFormat.Format != r.passSets[surfaceVariantIndex].ColorFormat {
		core.LogWarn("surface format changed across swapchain rebuild")
		r.passSets[surfaceVariantIndex].Destroy(r.context)
		surfaceSet, err := NewRenderPassSet(r.context, swapchain.ImageFormat.Format)
		if err != nil {
			return err
		}
		r.passSets[surfaceVariantIndex] = surfaceSet
	}

	if err := r.regenerateSwapchainFramebuffers(); err != nil {
		return err
	}
	r.context.SurfaceDirty = false
	return nil
}

// Resized flags the surface dirty; the swapchain rebuilds lazily at the top
// of the next frame.
func (r *Renderer) Resized(width, height uint32) {
	r.context.FramebufferWidth = width
	r.context.FramebufferHeight = height
	r.context.SurfaceDirty = true
}

func (r *Renderer) Shutdown() {
	context := r.context
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for _, frame := range r.frames {
		if frame != nil {
			frame.Destroy(context)
		}
	}

	for id, pipeline := range r.pipelines {
		pipeline.Destroy(context)
		delete(r.pipelines, id)
	}
	for id, image := range r.textures {
		image.ImageDestroy(context)
		delete(r.textures, id)
	}
	for id, sampler := range r.samplers {
		vk.DestroySampler(context.Device.LogicalDevice, sampler, context.Allocator)
		delete(r.samplers, id)
	}
	for id, mesh := range r.meshes {
		mesh.Destroy(context)
		delete(r.meshes, id)
	}
	for id, instances := range r.instanceSets {
		instances.Destroy(context)
		delete(r.instanceSets, id)
	}
	for id, buffer := range r.uniforms {
		buffer.Destroy(context)
		delete(r.uniforms, id)
	}
	for id, target := range r.targets {
		target.Destroy(context)
		delete(r.targets, id)
	}

	for i, set := range r.passSets {
		if set != nil {
			set.Destroy(context)
			r.passSets[i] = nil
		}
	}

	if r.swapchain != nil {
		r.swapchain.SwapchainDestroy(context)
		r.swapchain = nil
	}

	r.compiler.Release()

	DeviceDestroy(context)

	if context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(context.Instance, context.debugMessenger, context.Allocator)
	}
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}
	vk.DestroyInstance(context.Instance, context.Allocator)

	core.LogInfo("vulkan renderer shut down")
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
	location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
