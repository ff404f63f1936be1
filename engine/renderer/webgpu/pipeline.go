package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/shaders"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

// uniformAlignment is the WebGPU default for minUniformBufferOffsetAlignment.
const uniformAlignment = 256

func vertexFormat(components uint32) wgpu.VertexFormat {
	switch components {
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	case 4:
		return wgpu.VertexFormatFloat32x4
	}
	return wgpu.VertexFormatFloat32
}

// vertexBufferLayout is the input layout of math.Vertex3D.
func vertexBufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, len(shaders.VertexLayout))
	for _, a := range shaders.VertexLayout {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vertexFormat(a.Components),
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: shaders.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// pipeline is the fixed mesh pipeline and the uniform arenas it reads.
type pipeline struct {
	shader         *wgpu.ShaderModule
	bindLayout     *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	render         *wgpu.RenderPipeline

	objects   *wgpu.Buffer
	materials *wgpu.Buffer
	bindGroup *wgpu.BindGroup

	objectSlots   renderer.UniformSlots
	materialSlots renderer.UniformSlots
}

func newPipeline(device *wgpu.Device, format wgpu.TextureFormat) (p *pipeline, err error) {
	var rb renderer.Rollback
	defer func() {
		if err != nil {
			rb.Run()
		}
	}()
	p = &pipeline{
		objectSlots:   renderer.NewUniformSlots(renderer.ObjectDataSize, uniformAlignment, renderer.MaxDrawsPerFrame),
		materialSlots: renderer.NewUniformSlots(renderer.MaterialDataSize, uniformAlignment, renderer.MaxDrawsPerFrame),
	}

	p.shader, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "mesh shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaders.MeshSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compile mesh shader: %w", err)
	}
	rb.Push(p.shader.Release)

	p.bindLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "mesh uniforms",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    shaders.ObjectBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   renderer.ObjectDataSize,
				},
			},
			{
				Binding:    shaders.MaterialBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   renderer.MaterialDataSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	rb.Push(p.bindLayout.Release)

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "mesh pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	rb.Push(p.pipelineLayout.Release)

	p.render, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "mesh pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.shader,
			EntryPoint: shaders.VertexEntryPoint,
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.shader,
			EntryPoint: shaders.FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	rb.Push(p.render.Release)

	p.objects, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "object uniforms",
		Size:  p.objectSlots.Size(),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create object uniforms: %w", err)
	}
	rb.Push(p.objects.Release)

	p.materials, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "material uniforms",
		Size:  p.materialSlots.Size(),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create material uniforms: %w", err)
	}
	rb.Push(p.materials.Release)

	p.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "mesh uniforms",
		Layout: p.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shaders.ObjectBinding, Buffer: p.objects, Offset: 0, Size: renderer.ObjectDataSize},
			{Binding: shaders.MaterialBinding, Buffer: p.materials, Offset: 0, Size: renderer.MaterialDataSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	rb.Discard()
	return p, nil
}

func (p *pipeline) release() {
	p.bindGroup.Release()
	p.materials.Release()
	p.objects.Release()
	p.render.Release()
	p.pipelineLayout.Release()
	p.bindLayout.Release()
	p.shader.Release()
}
