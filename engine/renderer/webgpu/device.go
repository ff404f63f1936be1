// Package webgpu implements the renderer backend on top of wgpu-native. It
// fills the immediate-context role: one device and queue, a fixed pipeline
// built from the embedded WGSL shader and its vertex input layout.
package webgpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

var (
	ErrForeignContext = errors.New("context was not created by this device")
	ErrForeignBuffer  = errors.New("buffer was not created by this device")
	ErrNoWindow       = errors.New("surface has no glfw window")
)

// Device owns the instance, adapter, logical device and queue. Presentation
// surfaces are created per window and handed to the context drawing into it.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaces map[*glfw.Window]*wgpu.Surface
	contexts map[*Context]struct{}
	buffers  map[*Buffer]struct{}

	validation  bool
	initialized bool
}

var _ renderer.Device = (*Device)(nil)

func NewDevice() *Device {
	return &Device{
		surfaces: make(map[*glfw.Window]*wgpu.Surface),
		contexts: make(map[*Context]struct{}),
		buffers:  make(map[*Buffer]struct{}),
	}
}

func (d *Device) Type() renderer.RendererType { return renderer.WebGPU }

func (d *Device) Initialize(cfg renderer.DeviceConfig) error {
	if d.initialized {
		return core.ErrAlreadyInitialized
	}
	var rb renderer.Rollback
	d.validation = cfg.Validation

	d.instance = wgpu.CreateInstance(nil)
	if d.instance == nil {
		return errors.New("failed to create wgpu instance")
	}
	rb.Push(func() { d.instance.Release(); d.instance = nil })

	opts := &wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	}
	if cfg.Surface != nil {
		s, err := d.surfaceFor(cfg.Surface)
		if err != nil {
			rb.Run()
			return err
		}
		rb.Push(func() { d.releaseSurfaces() })
		opts.CompatibleSurface = s
	}

	adapter, err := d.instance.RequestAdapter(opts)
	if err != nil {
		rb.Run()
		return fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = adapter
	rb.Push(func() { d.adapter.Release(); d.adapter = nil })

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: cfg.ApplicationName + " device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		rb.Run()
		return fmt.Errorf("request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	rb.Discard()
	d.initialized = true
	if d.validation {
		core.LogDebug("wgpu validation follows the native library log level")
	}
	core.LogInfo("webgpu device created")
	return nil
}

// surfaceFor returns the presentation surface of the window behind s,
// creating it on first use.
func (d *Device) surfaceFor(s renderer.Surface) (*wgpu.Surface, error) {
	win, ok := s.NativeHandle().(*glfw.Window)
	if !ok || win == nil {
		return nil, ErrNoWindow
	}
	if surface, ok := d.surfaces[win]; ok {
		return surface, nil
	}
	surface := d.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	if surface == nil {
		return nil, errors.New("failed to create wgpu surface")
	}
	d.surfaces[win] = surface
	return surface, nil
}

func (d *Device) releaseSurface(surface *wgpu.Surface) {
	for win, s := range d.surfaces {
		if s == surface {
			delete(d.surfaces, win)
		}
	}
	surface.Release()
}

func (d *Device) releaseSurfaces() {
	for win, s := range d.surfaces {
		s.Release()
		delete(d.surfaces, win)
	}
}

func (d *Device) Shutdown() error {
	if !d.initialized {
		return core.ErrNotInitialized
	}
	var errs []error
	for c := range d.contexts {
		if c.initialized {
			errs = append(errs, c.Shutdown())
		}
		delete(d.contexts, c)
	}
	if n := len(d.buffers); n > 0 {
		core.LogWarn("releasing %d webgpu buffers at device shutdown", n)
	}
	for b := range d.buffers {
		b.release()
		delete(d.buffers, b)
	}
	d.releaseSurfaces()

	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	d.queue, d.device, d.adapter, d.instance = nil, nil, nil, nil
	d.initialized = false
	core.LogInfo("webgpu device destroyed")
	return errors.Join(errs...)
}

func (d *Device) NewContext() renderer.Context {
	c := &Context{device: d}
	d.contexts[c] = struct{}{}
	return c
}

func (d *Device) DestroyContext(ctx renderer.Context) error {
	c, ok := ctx.(*Context)
	if !ok || c.device != d {
		return ErrForeignContext
	}
	var err error
	if c.initialized {
		err = c.Shutdown()
	}
	delete(d.contexts, c)
	return err
}
