package vulkan

import (
	"errors"
	"fmt"
	gomath "math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

// maxFramesInFlight is how many frames the CPU may record ahead of the GPU.
const maxFramesInFlight = 2

// frameSync is the per frame in flight state: its command buffer and the
// primitives ordering acquire, render and present.
type frameSync struct {
	commands       *commandBuffer
	imageAvailable vk.Semaphore
	renderComplete vk.Semaphore
	inFlight       *fence
}

// Context draws into one window through its own swapchain.
type Context struct {
	device   *Device
	source   renderer.Surface
	surface  vk.Surface
	settings renderer.ContextSettings

	swapchain    *swapchain
	renderPass   *renderPass
	framebuffers []vk.Framebuffer
	pipeline     *pipeline

	frames [maxFramesInFlight]frameSync
	// imagesInFlight holds the fence of the frame last rendering into each
	// swapchain image.
	imagesInFlight []*fence
	current        uint32
	imageIndex     uint32
	// recreate is set when presentation reports the swapchain stale.
	recreate bool

	material       renderer.MaterialData
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

	if c.surface, err = d.surfaceFor(surface); err != nil {
		return err
	}
	rb.Push(func() { d.releaseSurface(c.surface); c.surface = vk.NullSurface })
	c.source = surface
	c.settings = settings
	c.material = renderer.DefaultMaterialData()

	width, height := surface.FramebufferSize()
	if c.swapchain, err = d.createSwapchain(c.surface, width, height, settings, nil); err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	rb.Push(func() { c.swapchain.destroy(d.logical); c.swapchain = nil })

	if c.renderPass, err = createRenderPass(d.logical, c.swapchain.format.Format, d.depthFormat, settings.ClearColor); err != nil {
		return err
	}
	rb.Push(func() { c.renderPass.destroy(d.logical); c.renderPass = nil })

	if c.framebuffers, err = createFramebuffers(d.logical, c.renderPass, c.swapchain); err != nil {
		return err
	}
	rb.Push(func() { destroyFramebuffers(d.logical, c.framebuffers); c.framebuffers = nil })

	if c.pipeline, err = d.createPipeline(c.renderPass, maxFramesInFlight, d.validation); err != nil {
		return fmt.Errorf("create mesh pipeline: %w", err)
	}
	rb.Push(func() { c.pipeline.destroy(d.logical); c.pipeline = nil })

	if err = c.createFrames(); err != nil {
		return err
	}
	c.imagesInFlight = make([]*fence, len(c.swapchain.images))
	c.current = 0

	rb.Discard()
	c.initialized = true
	core.LogInfo("vulkan context created at %dx%d", c.swapchain.extent.Width, c.swapchain.extent.Height)
	return nil
}

func createSemaphore(device vk.Device) (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var s vk.Semaphore
	if err := check("vkCreateSemaphore", vk.CreateSemaphore(device, &info, nil, &s)); err != nil {
		return vk.NullSemaphore, err
	}
	return s, nil
}

func (c *Context) createFrames() (err error) {
	d := c.device
	defer func() {
		if err != nil {
			c.destroyFrames()
		}
	}()
	for i := range c.frames {
		f := &c.frames[i]
		if f.commands, err = allocateCommandBuffer(d.logical, d.graphicsPool, true); err != nil {
			return err
		}
		if f.imageAvailable, err = createSemaphore(d.logical); err != nil {
			return err
		}
		if f.renderComplete, err = createSemaphore(d.logical); err != nil {
			return err
		}
		// signalled so the first wait on each frame returns at once
		if f.inFlight, err = newFence(d.logical, true); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) destroyFrames() {
	d := c.device
	for i := range c.frames {
		f := &c.frames[i]
		if f.inFlight != nil {
			f.inFlight.destroy(d.logical)
			f.inFlight = nil
		}
		if f.renderComplete != vk.NullSemaphore {
			vk.DestroySemaphore(d.logical, f.renderComplete, nil)
			f.renderComplete = vk.NullSemaphore
		}
		if f.imageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(d.logical, f.imageAvailable, nil)
			f.imageAvailable = vk.NullSemaphore
		}
		if f.commands != nil {
			f.commands.free(d.logical, d.graphicsPool)
			f.commands = nil
		}
	}
	c.imagesInFlight = nil
}

// recreateSwapchain rebuilds the swapchain and its framebuffers at the given
// size with the current settings. The retired swapchain is destroyed even
// when creating its replacement fails.
func (c *Context) recreateSwapchain(width, height uint32) error {
	d := c.device
	d.waitIdle()

	destroyFramebuffers(d.logical, c.framebuffers)
	c.framebuffers = nil
	old := c.swapchain
	var oldHandle vk.Swapchain
	if old != nil {
		oldHandle = old.handle
	}
	sc, err := d.createSwapchain(c.surface, width, height, c.settings, oldHandle)
	if old != nil {
		old.destroy(d.logical)
	}
	c.swapchain = sc
	if err != nil {
		c.recreate = true
		return fmt.Errorf("recreate swapchain: %w", err)
	}
	if c.framebuffers, err = createFramebuffers(d.logical, c.renderPass, sc); err != nil {
		c.recreate = true
		return err
	}
	c.imagesInFlight = make([]*fence, len(sc.images))
	c.recreate = false
	return nil
}

func (c *Context) Reconfigure(settings renderer.ContextSettings) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	c.settings = settings
	c.renderPass.clear = settings.ClearColor
	w, h := c.Extent()
	return c.recreateSwapchain(w, h)
}

func (c *Context) Resize(width, height uint32) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("resize: invalid size %dx%d", width, height)
	}
	return c.recreateSwapchain(width, height)
}

func (c *Context) Extent() (uint32, uint32) {
	if c.swapchain == nil {
		return 0, 0
	}
	return c.swapchain.extent.Width, c.swapchain.extent.Height
}

func (c *Context) Shutdown() error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	d := c.device
	d.waitIdle()
	c.destroyFrames()
	c.pipeline.destroy(d.logical)
	c.pipeline = nil
	destroyFramebuffers(d.logical, c.framebuffers)
	c.framebuffers = nil
	c.renderPass.destroy(d.logical)
	c.renderPass = nil
	if c.swapchain != nil {
		c.swapchain.destroy(d.logical)
		c.swapchain = nil
	}
	d.releaseSurface(c.surface)
	c.surface = vk.NullSurface
	c.initialized = false
	core.LogInfo("vulkan context destroyed")
	return nil
}

func (c *Context) frame() *frameSync { return &c.frames[c.current] }

// BeginFrame waits until the current frame slot is free, acquires a swapchain
// image and starts the render pass. A stale swapchain is rebuilt first and
// the frame is skipped with core.ErrSwapchainBooting.
func (c *Context) BeginFrame() error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	d := c.device
	if c.recreate || c.swapchain == nil {
		w, h := c.source.FramebufferSize()
		if w == 0 || h == 0 {
			return core.ErrSwapchainBooting
		}
		if err := c.recreateSwapchain(w, h); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	}

	f := c.frame()
	if err := f.inFlight.wait(d.logical, gomath.MaxUint64); err != nil {
		return err
	}

	var index uint32
	res := vk.AcquireNextImage(d.logical, c.swapchain.handle, gomath.MaxUint64, f.imageAvailable, vk.NullFence, &index)
	switch res {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		c.recreate = true
		return core.ErrSwapchainBooting
	default:
		return check("vkAcquireNextImage", res)
	}
	c.imageIndex = index

	cb := f.commands
	if err := cb.reset(); err != nil {
		return c.abandonFrame(f, err)
	}
	if err := cb.begin(false, false, false); err != nil {
		return c.abandonFrame(f, err)
	}

	extent := c.swapchain.extent
	// negative height flips Y so clip space matches the WebGPU backend
	viewport := vk.Viewport{
		X:        0,
		Y:        float32(extent.Height),
		Width:    float32(extent.Width),
		Height:   -float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	vk.CmdSetViewport(cb.handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.handle, 0, 1, []vk.Rect2D{scissor})

	c.renderPass.begin(cb, c.framebuffers[index], extent)
	vk.CmdBindPipeline(cb.handle, vk.PipelineBindPointGraphics, c.pipeline.handle)

	c.pipeline.objectSlots.Reset()
	c.pipeline.materialSlots.Reset()
	c.hasObject = false
	// the last material of the previous frame stays bound until replaced
	if err := c.SetMaterial(c.material); err != nil {
		return c.abandonFrame(f, err)
	}
	return nil
}

// abandonFrame gives up a frame whose image was acquired but never submitted.
// The acquire left f.imageAvailable with a pending signal nothing will wait
// on, so it is replaced, and the swapchain is rebuilt on the next BeginFrame
// to hand back the acquired image. The command buffer is reset by the next
// BeginFrame.
func (c *Context) abandonFrame(f *frameSync, cause error) error {
	d := c.device
	d.waitIdle()
	vk.DestroySemaphore(d.logical, f.imageAvailable, nil)
	f.imageAvailable = vk.NullSemaphore
	sem, err := createSemaphore(d.logical)
	if err != nil {
		core.LogError("failed to replace image semaphore: %s", err)
		return errors.Join(cause, err)
	}
	f.imageAvailable = sem
	c.recreate = true
	return cause
}

func (c *Context) SetMaterial(m renderer.MaterialData) error {
	p := c.pipeline
	off, err := p.materialSlots.Next()
	if err != nil {
		return err
	}
	off += p.frameBase(p.materialSlots, c.current)
	if err := p.materials.write(off, m.Bytes()); err != nil {
		return err
	}
	c.material = m
	c.materialOffset = uint32(off)
	return nil
}

func (c *Context) SetObjectData(o renderer.ObjectData) error {
	p := c.pipeline
	off, err := p.objectSlots.Next()
	if err != nil {
		return err
	}
	off += p.frameBase(p.objectSlots, c.current)
	if err := p.objects.write(off, o.Bytes()); err != nil {
		return err
	}
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
	if held := uint32(ib.Size() / 4); indexCount > held {
		return fmt.Errorf("draw: %d indices requested, buffer holds %d", indexCount, held)
	}
	cb := c.frame().commands.handle
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, c.pipeline.layout, 0, 1,
		[]vk.DescriptorSet{c.pipeline.descriptorSet}, 2, []uint32{c.objectOffset, c.materialOffset})
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{vb.raw.handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb, ib.raw.handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(cb, indexCount, 1, 0, 0, 0)
	return nil
}

func (c *Context) EndFrame() error {
	cb := c.frame().commands
	c.renderPass.end(cb)
	return cb.end()
}

func (c *Context) SubmitFrame() error {
	d := c.device
	f := c.frame()

	// an image may still be in use by an older frame when the swapchain
	// hands images out of order
	if prev := c.imagesInFlight[c.imageIndex]; prev != nil && prev != f.inFlight {
		if err := prev.wait(d.logical, gomath.MaxUint64); err != nil {
			return err
		}
	}
	c.imagesInFlight[c.imageIndex] = f.inFlight

	if err := f.inFlight.reset(d.logical); err != nil {
		return err
	}
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{f.commands.handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.renderComplete},
	}
	d.queueMu.Lock()
	res := vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{submit}, f.inFlight.handle)
	d.queueMu.Unlock()
	if err := check("vkQueueSubmit", res); err != nil {
		// nothing will signal the fence; leave it usable for the next wait
		f.inFlight.signalled = true
		return err
	}
	f.commands.state = commandBufferSubmitted
	return nil
}

func (c *Context) PresentFrame() error {
	d := c.device
	f := c.frame()
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swapchain.handle},
		PImageIndices:      []uint32{c.imageIndex},
	}
	d.queueMu.Lock()
	res := vk.QueuePresent(d.presentQueue, &info)
	d.queueMu.Unlock()
	c.current = (c.current + 1) % maxFramesInFlight

	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		c.recreate = true
		return nil
	}
	return check("vkQueuePresent", res)
}
