// Package renderertest provides in-memory renderer backends for tests.
package renderertest

import (
	"errors"

	"github.com/spaghettifunk/kiln/engine/renderer"
)

// Buffer is a fake GPU buffer.
type Buffer struct {
	BufKind   renderer.BufferKind
	Data      []byte
	Destroyed bool
}

func (b *Buffer) Kind() renderer.BufferKind { return b.BufKind }
func (b *Buffer) Size() uint64              { return uint64(len(b.Data)) }

// Device records every call made by the renderer.
type Device struct {
	InitErr     error
	Config      renderer.DeviceConfig
	Initialized bool
	ShutDown    bool
	Contexts    []*Context
	Buffers     []*Buffer
	// ContextInitErr is copied into every new context.
	ContextInitErr error
}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) Type() renderer.RendererType { return renderer.Vulkan }

func (d *Device) Initialize(cfg renderer.DeviceConfig) error {
	if d.InitErr != nil {
		return d.InitErr
	}
	d.Config = cfg
	d.Initialized = true
	return nil
}

func (d *Device) Shutdown() error {
	d.ShutDown = true
	return nil
}

func (d *Device) NewContext() renderer.Context {
	c := &Context{InitErr: d.ContextInitErr}
	d.Contexts = append(d.Contexts, c)
	return c
}

func (d *Device) DestroyContext(ctx renderer.Context) error {
	c, ok := ctx.(*Context)
	if !ok {
		return errors.New("foreign context")
	}
	c.Destroyed = true
	return nil
}

func (d *Device) CreateBuffer(kind renderer.BufferKind, data []byte) (renderer.GPUBuffer, error) {
	b := &Buffer{BufKind: kind, Data: append([]byte(nil), data...)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) DestroyBuffer(buf renderer.GPUBuffer) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("foreign buffer")
	}
	b.Destroyed = true
	return nil
}

// DrawCall is one recorded draw.
type DrawCall struct {
	Vertices   *Buffer
	Indices    *Buffer
	IndexCount uint32
	Object     renderer.ObjectData
	Material   renderer.MaterialData
}

// Context is a fake per-surface backend. Backbuffer views are modelled as a
// generation counter that increases every time they are recreated.
type Context struct {
	InitErr  error
	BeginErr error

	Surface   renderer.Surface
	Settings  renderer.ContextSettings
	Width     uint32
	Height    uint32
	ViewGen   int
	Views     []View
	Destroyed bool
	ShutDown  bool

	Calls  []string
	Draws  []DrawCall
	object renderer.ObjectData
	mat    renderer.MaterialData
}

// View describes one backbuffer view.
type View struct {
	Width, Height uint32
}

func (c *Context) record(name string) { c.Calls = append(c.Calls, name) }

func (c *Context) createViews() {
	c.ViewGen++
	c.Views = make([]View, c.Settings.BackbufferCount)
	for i := range c.Views {
		c.Views[i] = View{Width: c.Width, Height: c.Height}
	}
}

func (c *Context) Initialize(surface renderer.Surface, settings renderer.ContextSettings) error {
	c.record("Initialize")
	if c.InitErr != nil {
		return c.InitErr
	}
	c.Surface = surface
	c.Settings = settings
	c.Width, c.Height = surface.FramebufferSize()
	c.createViews()
	return nil
}

func (c *Context) Reconfigure(settings renderer.ContextSettings) error {
	c.record("Reconfigure")
	c.Settings = settings
	c.createViews()
	return nil
}

func (c *Context) Resize(width, height uint32) error {
	c.record("Resize")
	c.Width, c.Height = width, height
	c.createViews()
	return nil
}

func (c *Context) Shutdown() error {
	c.record("Shutdown")
	c.ShutDown = true
	c.Views = nil
	return nil
}

func (c *Context) BeginFrame() error {
	c.record("BeginFrame")
	return c.BeginErr
}

func (c *Context) SetMaterial(m renderer.MaterialData) error {
	c.record("SetMaterial")
	c.mat = m
	return nil
}

func (c *Context) SetObjectData(o renderer.ObjectData) error {
	c.record("SetObjectData")
	c.object = o
	return nil
}

func (c *Context) Draw(vertices, indices renderer.GPUBuffer, indexCount uint32) error {
	c.record("Draw")
	c.Draws = append(c.Draws, DrawCall{
		Vertices:   vertices.(*Buffer),
		Indices:    indices.(*Buffer),
		IndexCount: indexCount,
		Object:     c.object,
		Material:   c.mat,
	})
	return nil
}

func (c *Context) EndFrame() error     { c.record("EndFrame"); return nil }
func (c *Context) SubmitFrame() error  { c.record("SubmitFrame"); return nil }
func (c *Context) PresentFrame() error { c.record("PresentFrame"); return nil }

func (c *Context) Extent() (uint32, uint32) { return c.Width, c.Height }

// Surface is a fixed-size fake surface.
type Surface struct {
	Width, Height uint32
}

func (s *Surface) FramebufferSize() (uint32, uint32) { return s.Width, s.Height }
func (s *Surface) NativeHandle() any                 { return s }
