package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/krill-engine/krill/engine/core"
	"github.com/krill-engine/krill/engine/gfx"
	"github.com/krill-engine/krill/engine/gfx/vulkan/shaderc"
)

// One pipeline variant per renderable color format: every off-screen target
// format plus the surface format last.
const (
	pipelineVariantCount = int(gfx.FramebufferFormatCount) + 1
	surfaceVariantIndex  = int(gfx.FramebufferFormatCount)
)

// VulkanPipeline is one registered shader realized on the device: its
// descriptor set layouts, pipeline layout and one compiled pipeline per
// target color format.
type VulkanPipeline struct {
	SetLayouts []vk.DescriptorSetLayout
	Layout     vk.PipelineLayout
	Variants   [pipelineVariantCount]vk.Pipeline
}

func descriptorTypeFor(kind gfx.MaterialAttributeKind) vk.DescriptorType {
	switch kind {
	case gfx.MaterialTexture2D:
		return vk.DescriptorTypeSampledImage
	case gfx.MaterialSampler:
		return vk.DescriptorTypeSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

func topologyToVulkan(t gfx.Topology) vk.PrimitiveTopology {
	switch t {
	case gfx.TopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case gfx.TopologyLines:
		return vk.PrimitiveTopologyLineList
	case gfx.TopologyLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case gfx.TopologyPoints:
		return vk.PrimitiveTopologyPointList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

// NewPipeline compiles the definition's GLSL and builds every variant.
// passSets is indexed like Variants; each variant is created against the
// clear pass and records into either pass of its set.
func NewPipeline(context *VulkanContext, compiler shaderc.Compiler, def *gfx.ShaderFullDefinition, passSets [pipelineVariantCount]*VulkanRenderPassSet) (*VulkanPipeline, error) {
	pipeline := &VulkanPipeline{}

	vertexSource, fragmentSource, err := AssembleGLSL(def)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	options := shaderc.NewCompileOptions()
	defer options.Release()
	options.SetTargetEnv(shaderc.TargetEnvVulkan, shaderc.EnvVersionVulkan_1_2)
	options.SetOptimizationLevel(shaderc.OptimizationLevelPerformance)

	vertexSPV, err := compiler.CompileIntoSPV(vertexSource, "generated.vert", shaderc.VertexShader, options)
	if err != nil {
		core.LogError("vertex stage: %s", err.Error())
		return nil, err
	}
	fragmentSPV, err := compiler.CompileIntoSPV(fragmentSource, "generated.frag", shaderc.FragmentShader, options)
	if err != nil {
		core.LogError("fragment stage: %s", err.Error())
		return nil, err
	}

	vertexModule, err := createShaderModule(context, vertexSPV)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(context.Device.LogicalDevice, vertexModule, context.Allocator)
	fragmentModule, err := createShaderModule(context, fragmentSPV)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(context.Device.LogicalDevice, fragmentModule, context.Allocator)

	for _, materialLayout := range def.MaterialLayouts {
		bindings := make([]vk.DescriptorSetLayoutBinding, len(materialLayout.Attributes))
		for i, attr := range materialLayout.Attributes {
			bindings[i] = vk.DescriptorSetLayoutBinding{
				Binding:         uint32(i),
				DescriptorType:  descriptorTypeFor(attr.Kind),
				DescriptorCount: 1,
				StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			}
		}
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(bindings)),
			PBindings:    bindings,
		}
		var setLayout vk.DescriptorSetLayout
		if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &setLayout); res != vk.Success {
			pipeline.Destroy(context)
			err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
		pipeline.SetLayouts = append(pipeline.SetLayouts, setLayout)
	}

	// The full push range is always declared; shaders read only the bytes
	// their layout covers.
	pushRange := vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		Offset:     0,
		Size:       gfx.PushConstantLimit,
	}
	pipelineLayoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(pipeline.SetLayouts)),
		PSetLayouts:            pipeline.SetLayouts,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{pushRange},
	}
	var pipelineLayout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutInfo, context.Allocator, &pipelineLayout); res != vk.Success {
		pipeline.Destroy(context)
		err := fmt.Errorf("failed to create pipeline layout: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	pipeline.Layout = pipelineLayout

	bindingDescs, attributeDescs, err := vertexInputState(def)
	if err != nil {
		pipeline.Destroy(context)
		core.LogError(err.Error())
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertexModule,
			PName:  VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragmentModule,
			PName:  VulkanSafeString("main"),
		},
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindingDescs)),
		PVertexBindingDescriptions:      bindingDescs,
		VertexAttributeDescriptionCount: uint32(len(attributeDescs)),
		PVertexAttributeDescriptions:    attributeDescs,
	}

	primitiveRestart := vk.False
	if def.Definition.PrimitiveRestart {
		primitiveRestart = vk.True
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topologyToVulkan(def.Definition.Topology),
		PrimitiveRestartEnable: primitiveRestart,
	}

	// Viewport and scissor are dynamic; counts still have to be declared.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	cullMode := vk.CullModeFlags(vk.CullModeNone)
	if def.Definition.CullBackfaces {
		cullMode = vk.CullModeFlags(vk.CullModeBackBit)
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		LineWidth:   1.0,
		CullMode:    cullMode,
		FrontFace:   vk.FrontFaceCounterClockwise,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	depthCompare := vk.CompareOpLess
	if def.Definition.DepthAlways {
		depthCompare = vk.CompareOpAlways
	}
	depthTest := vk.False
	if def.Definition.DepthTest {
		depthTest = vk.True
	}
	depthWrite := vk.False
	if def.Definition.DepthWrite {
		depthWrite = vk.True
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  depthTest,
		DepthWriteEnable: depthWrite,
		DepthCompareOp:   depthCompare,
	}

	colorWriteMask := vk.ColorComponentFlags(
		vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: colorWriteMask,
		BlendEnable:    vk.False,
	}
	if def.Definition.ColorBlend {
		blendAttachment = vk.PipelineColorBlendAttachmentState{
			ColorWriteMask:      colorWriteMask,
			BlendEnable:         vk.True,
			SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
			DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorOne,
			DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			AlphaBlendOp:        vk.BlendOpAdd,
		}
	}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	for variant := 0; variant < pipelineVariantCount; variant++ {
		pipelineInfo := vk.GraphicsPipelineCreateInfo{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount:          uint32(len(stages)),
			PStages:             stages,
			PVertexInputState:   &vertexInputInfo,
			PInputAssemblyState: &inputAssembly,
			PViewportState:      &viewportState,
			PRasterizationState: &rasterizer,
			PMultisampleState:   &multisampling,
			PDepthStencilState:  &depthStencil,
			PColorBlendState:    &colorBlending,
			PDynamicState:       &dynamicState,
			Layout:              pipeline.Layout,
			RenderPass:          passSets[variant].Clear,
			Subpass:             0,
		}
		pipelines := make([]vk.Pipeline, 1)
		if res := vk.CreateGraphicsPipelines(context.Device.LogicalDevice, vk.NullPipelineCache, 1,
			[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, context.Allocator, pipelines); res != vk.Success {
			pipeline.Destroy(context)
			err := fmt.Errorf("failed to create graphics pipeline: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return nil, err
		}
		pipeline.Variants[variant] = pipelines[0]
	}

	return pipeline, nil
}

func (p *VulkanPipeline) Destroy(context *VulkanContext) {
	for i, variant := range p.Variants {
		if variant != vk.NullPipeline {
			vk.DestroyPipeline(context.Device.LogicalDevice, variant, context.Allocator)
			p.Variants[i] = vk.NullPipeline
		}
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(context.Device.LogicalDevice, p.Layout, context.Allocator)
		p.Layout = vk.NullPipelineLayout
	}
	for _, setLayout := range p.SetLayouts {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, setLayout, context.Allocator)
	}
	p.SetLayouts = nil
}

func createShaderModule(context *VulkanContext, spv []byte) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(spv)),
		PCode:    sliceUint32(spv),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		err := fmt.Errorf("failed to create shader module: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}
	return module, nil
}

// vertexInputState builds the binding and attribute descriptions: binding 0
// advances per vertex, binding 1 per instance. Locations are sequential
// across both bindings, matching the generated shader inputs.
func vertexInputState(def *gfx.ShaderFullDefinition) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	var bindings []vk.VertexInputBindingDescription
	var attributes []vk.VertexInputAttributeDescription

	location := uint32(0)
	addLayout := func(binding uint32, layout gfx.VertexLayout, rate vk.VertexInputRate) error {
		if layout.Empty() {
			return nil
		}
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   binding,
			Stride:    layout.Size,
			InputRate: rate,
		})
		for _, attr := range layout.Attributes {
			format, _, err := VertexAttributeToVulkan(attr.Attribute)
			if err != nil {
				return fmt.Errorf("vertex input '%s': %w", attr.Name, err)
			}
			attributes = append(attributes, vk.VertexInputAttributeDescription{
				Location: location,
				Binding:  binding,
				Format:   format,
				Offset:   attr.Offset,
			})
			location++
		}
		return nil
	}

	if err := addLayout(0, def.VertexLayout, vk.VertexInputRateVertex); err != nil {
		return nil, nil, err
	}
	if err := addLayout(1, def.InstanceLayout, vk.VertexInputRateInstance); err != nil {
		return nil, nil, err
	}
	return bindings, attributes, nil
}
