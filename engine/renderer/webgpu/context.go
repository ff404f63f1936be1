package webgpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

// Context draws into one window surface.
type Context struct {
	device  *Device
	surface *wgpu.Surface
	source  renderer.Surface

	format      wgpu.TextureFormat
	alphaMode   wgpu.CompositeAlphaMode
	presentMode wgpu.PresentMode
	settings    renderer.ContextSettings
	width       uint32
	height      uint32

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
	pipeline     *pipeline
	material     renderer.MaterialData

	// per frame
	frameTexture   *wgpu.Texture
	frameView      *wgpu.TextureView
	encoder        *wgpu.CommandEncoder
	pass           *wgpu.RenderPassEncoder
	commands       *wgpu.CommandBuffer
	objectOffset   uint32
	materialOffset uint32
	hasObject      bool

	initialized bool
}

var _ renderer.Context = (*Context)(nil)

func (c *Context) Initialize(surface renderer.Surface, settings renderer.ContextSettings) (err error) {
	if c.initialized {
		return core.ErrAlreadyInitialized
	}
	d := c.device
	if !d.initialized {
		return core.ErrNotInitialized
	}
	var rb renderer.Rollback
	defer func() {
		if err != nil {
			rb.Run()
		}
	}()

	c.surface, err = d.surfaceFor(surface)
	if err != nil {
		return err
	}
	rb.Push(func() { d.releaseSurface(c.surface); c.surface = nil })
	c.source = surface
	c.settings = settings
	c.material = renderer.DefaultMaterialData()

	caps := c.surface.GetCapabilities(d.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return errors.New("surface is not presentable by the adapter")
	}
	c.format = caps.Formats[0]
	for _, f := range caps.Formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb {
			c.format = f
			break
		}
	}
	c.alphaMode = caps.AlphaModes[0]
	c.presentMode = choosePresentMode(settings.VSync, caps.PresentModes)

	width, height := surface.FramebufferSize()
	if err := c.configure(width, height); err != nil {
		return err
	}
	rb.Push(c.releaseDepth)

	c.pipeline, err = newPipeline(d.device, c.format)
	if err != nil {
		return err
	}

	rb.Discard()
	c.initialized = true
	if settings.BackbufferCount != renderer.DefaultContextSettings().BackbufferCount {
		core.LogDebug("webgpu picks its own backbuffer count; %d requested", settings.BackbufferCount)
	}
	core.LogInfo("webgpu context created at %dx%d (format %v, present mode %v)", width, height, c.format, c.presentMode)
	return nil
}

// choosePresentMode maps the VSync preference onto what the surface supports.
// Fifo is always available.
func choosePresentMode(vsync bool, supported []wgpu.PresentMode) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	for _, want := range []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeMailbox} {
		for _, m := range supported {
			if m == want {
				return m
			}
		}
	}
	return wgpu.PresentModeFifo
}

// configure (re)configures the surface and rebuilds the depth buffer at the
// given size.
func (c *Context) configure(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("configure surface: invalid size %dx%d", width, height)
	}
	d := c.device
	c.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.format,
		Width:       width,
		Height:      height,
		PresentMode: c.presentMode,
		AlphaMode:   c.alphaMode,
	})

	c.releaseDepth()
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create depth view: %w", err)
	}
	c.depthTexture, c.depthView = tex, view
	c.width, c.height = width, height
	return nil
}

func (c *Context) releaseDepth() {
	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
}

func (c *Context) Reconfigure(settings renderer.ContextSettings) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	caps := c.surface.GetCapabilities(c.device.adapter)
	c.presentMode = choosePresentMode(settings.VSync, caps.PresentModes)
	c.settings = settings
	return c.configure(c.width, c.height)
}

func (c *Context) Resize(width, height uint32) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	return c.configure(width, height)
}

func (c *Context) Extent() (uint32, uint32) { return c.width, c.height }

func (c *Context) Shutdown() error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	c.releaseFrame()
	c.pipeline.release()
	c.pipeline = nil
	c.releaseDepth()
	c.device.releaseSurface(c.surface)
	c.surface = nil
	c.initialized = false
	core.LogInfo("webgpu context destroyed")
	return nil
}

// releaseFrame drops whatever the current frame still holds.
func (c *Context) releaseFrame() {
	if c.commands != nil {
		c.commands.Release()
		c.commands = nil
	}
	if c.pass != nil {
		// a pass must be ended before its encoder can be dropped
		_ = c.pass.End()
		c.pass.Release()
		c.pass = nil
	}
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
	if c.frameView != nil {
		c.frameView.Release()
		c.frameView = nil
	}
	if c.frameTexture != nil {
		c.frameTexture.Release()
		c.frameTexture = nil
	}
}

func (c *Context) BeginFrame() error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	tex, err := c.surface.GetCurrentTexture()
	if err != nil {
		// outdated or lost surface, rebuild it for the next tick
		w, h := c.source.FramebufferSize()
		if w > 0 && h > 0 {
			if cerr := c.configure(w, h); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
		return fmt.Errorf("acquire backbuffer: %w", err)
	}
	c.frameTexture = tex
	c.frameView, err = tex.CreateView(nil)
	if err != nil {
		c.releaseFrame()
		return fmt.Errorf("create backbuffer view: %w", err)
	}
	c.encoder, err = c.device.device.CreateCommandEncoder(nil)
	if err != nil {
		c.releaseFrame()
		return fmt.Errorf("create command encoder: %w", err)
	}

	cc := c.settings.ClearColor
	c.pass = c.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       c.frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: float64(cc.R), G: float64(cc.G), B: float64(cc.B), A: float64(cc.A)},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            c.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})
	c.pass.SetPipeline(c.pipeline.render)

	c.pipeline.objectSlots.Reset()
	c.pipeline.materialSlots.Reset()
	c.hasObject = false
	// the last material of the previous frame stays bound until replaced
	if err := c.SetMaterial(c.material); err != nil {
		c.releaseFrame()
		return err
	}
	return nil
}

func (c *Context) SetMaterial(m renderer.MaterialData) error {
	off, err := c.pipeline.materialSlots.Next()
	if err != nil {
		return err
	}
	c.device.queue.WriteBuffer(c.pipeline.materials, off, m.Bytes())
	c.material = m
	c.materialOffset = uint32(off)
	return nil
}

func (c *Context) SetObjectData(o renderer.ObjectData) error {
	off, err := c.pipeline.objectSlots.Next()
	if err != nil {
		return err
	}
	c.device.queue.WriteBuffer(c.pipeline.objects, off, o.Bytes())
	c.objectOffset = uint32(off)
	c.hasObject = true
	return nil
}

func (c *Context) Draw(vertices, indices renderer.GPUBuffer, indexCount uint32) error {
	if !c.hasObject {
		return errors.New("draw: no object data set this frame")
	}
	vb, ok := vertices.(*Buffer)
	if !ok {
		return ErrForeignBuffer
	}
	ib, ok := indices.(*Buffer)
	if !ok {
		return ErrForeignBuffer
	}
	if held := uint32(ib.size / 4); indexCount > held {
		return fmt.Errorf("draw: %d indices requested, buffer holds %d", indexCount, held)
	}
	c.pass.SetBindGroup(0, c.pipeline.bindGroup, []uint32{c.objectOffset, c.materialOffset})
	c.pass.SetVertexBuffer(0, vb.handle, 0, wgpu.WholeSize)
	c.pass.SetIndexBuffer(ib.handle, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	c.pass.DrawIndexed(indexCount, 1, 0, 0, 0)
	return nil
}

func (c *Context) EndFrame() error {
	err := c.pass.End()
	c.pass.Release()
	c.pass = nil
	if err != nil {
		c.releaseFrame()
		return fmt.Errorf("end render pass: %w", err)
	}

	commands, err := c.encoder.Finish(nil)
	c.encoder.Release()
	c.encoder = nil
	if err != nil {
		c.releaseFrame()
		return fmt.Errorf("finish command buffer: %w", err)
	}
	c.commands = commands
	return nil
}

func (c *Context) SubmitFrame() error {
	c.device.queue.Submit(c.commands)
	c.commands.Release()
	c.commands = nil
	return nil
}

func (c *Context) PresentFrame() error {
	c.surface.Present()
	c.releaseFrame()
	return nil
}
