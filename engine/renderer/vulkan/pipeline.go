package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/shaders"
)

func vertexFormat(components uint32) vk.Format {
	switch components {
	case 2:
		return vk.FormatR32g32Sfloat
	case 3:
		return vk.FormatR32g32b32Sfloat
	case 4:
		return vk.FormatR32g32b32a32Sfloat
	}
	return vk.FormatR32Sfloat
}

// vertexAttributes is the input layout of math.Vertex3D on binding 0.
func vertexAttributes() []vk.VertexInputAttributeDescription {
	attrs := make([]vk.VertexInputAttributeDescription, 0, len(shaders.VertexLayout))
	for _, a := range shaders.VertexLayout {
		attrs = append(attrs, vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vertexFormat(a.Components),
			Offset:   a.Offset,
		})
	}
	return attrs
}

func createShaderModule(device vk.Device, code []uint32) (vk.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := check("vkCreateShaderModule", vk.CreateShaderModule(device, &info, nil, &module)); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

// pipeline is the fixed mesh pipeline with its descriptor set. Object and
// material blocks live in persistently mapped arenas, one region per frame
// in flight, bound with dynamic offsets.
type pipeline struct {
	module         vk.ShaderModule
	setLayout      vk.DescriptorSetLayout
	layout         vk.PipelineLayout
	handle         vk.Pipeline
	descriptorPool vk.DescriptorPool
	descriptorSet  vk.DescriptorSet

	objects       *rawBuffer
	materials     *rawBuffer
	objectSlots   renderer.UniformSlots
	materialSlots renderer.UniformSlots
}

func (d *Device) createPipeline(rp *renderPass, framesInFlight uint32, debug bool) (p *pipeline, err error) {
	var rb renderer.Rollback
	defer func() {
		if err != nil {
			rb.Run()
		}
	}()
	device := d.logical
	align := d.minUniformAlignment()
	p = &pipeline{
		objectSlots:   renderer.NewUniformSlots(renderer.ObjectDataSize, align, renderer.MaxDrawsPerFrame),
		materialSlots: renderer.NewUniformSlots(renderer.MaterialDataSize, align, renderer.MaxDrawsPerFrame),
	}

	code, err := shaders.MeshSPIRV(debug)
	if err != nil {
		return nil, err
	}
	if p.module, err = createShaderModule(device, code); err != nil {
		return nil, err
	}
	rb.Push(func() { vk.DestroyShaderModule(device, p.module, nil) })

	stageFlags := vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         shaders.ObjectBinding,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      stageFlags,
		},
		{
			Binding:         shaders.MaterialBinding,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      stageFlags,
		},
	}
	setInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	if err = check("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(device, &setInfo, nil, &p.setLayout)); err != nil {
		return nil, err
	}
	rb.Push(func() { vk.DestroyDescriptorSetLayout(device, p.setLayout, nil) })

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{p.setLayout},
	}
	if err = check("vkCreatePipelineLayout", vk.CreatePipelineLayout(device, &layoutInfo, nil, &p.layout)); err != nil {
		return nil, err
	}
	rb.Push(func() { vk.DestroyPipelineLayout(device, p.layout, nil) })

	if p.handle, err = createGraphicsPipeline(device, rp, p.layout, p.module); err != nil {
		return nil, err
	}
	rb.Push(func() { vk.DestroyPipeline(device, p.handle, nil) })

	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	uniform := vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	if p.objects, err = d.createRawBuffer(p.objectSlots.Size()*uint64(framesInFlight), uniform, hostVisible); err != nil {
		return nil, fmt.Errorf("create object uniforms: %w", err)
	}
	rb.Push(func() { p.objects.destroy(device) })
	if err = p.objects.mapMemory(device); err != nil {
		return nil, err
	}
	if p.materials, err = d.createRawBuffer(p.materialSlots.Size()*uint64(framesInFlight), uniform, hostVisible); err != nil {
		return nil, fmt.Errorf("create material uniforms: %w", err)
	}
	rb.Push(func() { p.materials.destroy(device) })
	if err = p.materials.mapMemory(device); err != nil {
		return nil, err
	}

	if err = p.createDescriptorSet(device); err != nil {
		return nil, err
	}

	rb.Discard()
	return p, nil
}

func (p *pipeline) createDescriptorSet(device vk.Device) error {
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 2,
		}},
	}
	if err := check("vkCreateDescriptorPool", vk.CreateDescriptorPool(device, &poolInfo, nil, &p.descriptorPool)); err != nil {
		return err
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{p.setLayout},
	}
	if err := check("vkAllocateDescriptorSets", vk.AllocateDescriptorSets(device, &allocInfo, &p.descriptorSet)); err != nil {
		vk.DestroyDescriptorPool(device, p.descriptorPool, nil)
		return err
	}

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          p.descriptorSet,
			DstBinding:      shaders.ObjectBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: p.objects.handle,
				Range:  vk.DeviceSize(renderer.ObjectDataSize),
			}},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          p.descriptorSet,
			DstBinding:      shaders.MaterialBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: p.materials.handle,
				Range:  vk.DeviceSize(renderer.MaterialDataSize),
			}},
		},
	}
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	return nil
}

func createGraphicsPipeline(device vk.Device, rp *renderPass, layout vk.PipelineLayout, module vk.ShaderModule) (vk.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: module,
			PName:  safeString(shaders.VertexEntryPoint),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: module,
			PName:  safeString(shaders.FragmentEntryPoint),
		},
	}

	attrs := vertexAttributes()
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 1,
		PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
			Binding:   0,
			Stride:    shaders.VertexStride,
			InputRate: vk.VertexInputRateVertex,
		}},
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}
	// viewport and scissor are dynamic; only the counts matter here
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLess,
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
		}},
	}
	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamic,
		Layout:              layout,
		RenderPass:          rp.handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(device, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := check("vkCreateGraphicsPipelines", res); err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}

// frameBase is the byte offset of frame's region in the uniform arenas.
func (p *pipeline) frameBase(slots renderer.UniformSlots, frame uint32) uint64 {
	return slots.Size() * uint64(frame)
}

func (p *pipeline) destroy(device vk.Device) {
	vk.DestroyDescriptorPool(device, p.descriptorPool, nil)
	p.materials.destroy(device)
	p.objects.destroy(device)
	vk.DestroyPipeline(device, p.handle, nil)
	vk.DestroyPipelineLayout(device, p.layout, nil)
	vk.DestroyDescriptorSetLayout(device, p.setLayout, nil)
	vk.DestroyShaderModule(device, p.module, nil)
}
