package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
)

// BufferID names a GPU buffer owned by the Renderer. Titles only ever hold
// IDs; a destroyed buffer's ID never resolves again.
type BufferID core.ID

// Renderer is the title-facing front of the graphics backend. It owns the
// device, the runtime context bound to the main window and the buffer table.
type Renderer struct {
	device      Device
	runtime     *RenderContext
	buffers     *core.Registry[GPUBuffer]
	initialized bool
}

func New(device Device) *Renderer {
	return &Renderer{
		device:  device,
		buffers: core.NewRegistry[GPUBuffer](64),
	}
}

func (r *Renderer) Device() Device { return r.device }

// Context returns the runtime render context, nil before Initialize.
func (r *Renderer) Context() *RenderContext { return r.runtime }

// Initialize brings up the device and the runtime context for surface.
func (r *Renderer) Initialize(cfg DeviceConfig, surface Surface, settings ContextSettings) error {
	if r.initialized {
		return core.ErrAlreadyInitialized
	}
	if cfg.Surface == nil {
		cfg.Surface = surface
	}
	if err := r.device.Initialize(cfg); err != nil {
		core.LogError("failed to initialize %s device: %s", r.device.Type(), err)
		return fmt.Errorf("%s device: %w", r.device.Type(), err)
	}

	backend := r.device.NewContext()
	ctx := NewRenderContext(backend, settings)
	if err := ctx.Initialize(surface); err != nil {
		err = fmt.Errorf("%s runtime context: %w", r.device.Type(), err)
		if derr := r.device.DestroyContext(backend); derr != nil {
			err = errors.Join(err, derr)
		}
		if serr := r.device.Shutdown(); serr != nil {
			err = errors.Join(err, serr)
		}
		return err
	}
	r.runtime = ctx
	r.initialized = true
	core.LogInfo("%s renderer initialized", r.device.Type())
	return nil
}

// Shutdown releases every buffer, the runtime context and the device.
func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	var errs []error

	var ids []core.ID
	r.buffers.Each(func(id core.ID, _ GPUBuffer) { ids = append(ids, id) })
	if len(ids) > 0 {
		core.LogWarn("releasing %d buffers still alive at shutdown", len(ids))
	}
	for _, id := range ids {
		if err := r.DestroyBuffer(BufferID(id)); err != nil {
			errs = append(errs, err)
		}
	}

	if err := r.runtime.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := r.device.DestroyContext(r.runtime.Backend()); err != nil {
		errs = append(errs, err)
	}
	if err := r.device.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	r.runtime = nil
	r.initialized = false
	return errors.Join(errs...)
}

func (r *Renderer) CreateVertexBuffer(vertices []math.Vertex3D) (BufferID, error) {
	if len(vertices) == 0 {
		return 0, fmt.Errorf("create vertex buffer: no vertices")
	}
	return r.createBuffer(VertexBuffer, VertexBytes(vertices))
}

func (r *Renderer) CreateIndexBuffer(indices []uint32) (BufferID, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("create index buffer: no indices")
	}
	return r.createBuffer(IndexBuffer, IndexBytes(indices))
}

func (r *Renderer) createBuffer(kind BufferKind, data []byte) (BufferID, error) {
	if !r.initialized {
		return 0, core.ErrNotInitialized
	}
	buf, err := r.device.CreateBuffer(kind, data)
	if err != nil {
		core.LogError("failed to create %s buffer of %d bytes: %s", kind, len(data), err)
		return 0, err
	}
	return BufferID(r.buffers.Acquire(buf)), nil
}

func (r *Renderer) DestroyBuffer(id BufferID) error {
	buf, err := r.buffers.Release(core.ID(id))
	if err != nil {
		return fmt.Errorf("destroy buffer: %w", ErrUnknownBuffer)
	}
	return r.device.DestroyBuffer(buf)
}

func (r *Renderer) lookup(id BufferID, kind BufferKind) (GPUBuffer, error) {
	buf, ok := r.buffers.Get(core.ID(id))
	if !ok {
		return nil, fmt.Errorf("buffer %#x: %w", uint64(id), ErrUnknownBuffer)
	}
	if buf.Kind() != kind {
		return nil, fmt.Errorf("buffer %#x is a %s buffer, want %s: %w", uint64(id), buf.Kind(), kind, ErrWrongBufferKind)
	}
	return buf, nil
}

func (r *Renderer) Resize(width, height uint32) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.runtime.Resize(width, height)
}

func (r *Renderer) BeginFrame() error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.runtime.BeginFrame()
}

func (r *Renderer) SetMaterial(m MaterialData) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.runtime.SetMaterial(m)
}

func (r *Renderer) SetObjectData(o ObjectData) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.runtime.SetObjectData(o)
}

// Draw issues an indexed draw of indexCount indices.
func (r *Renderer) Draw(indexCount uint32, vertices, indices BufferID) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	vb, err := r.lookup(vertices, VertexBuffer)
	if err != nil {
		return err
	}
	ib, err := r.lookup(indices, IndexBuffer)
	if err != nil {
		return err
	}
	return r.runtime.Draw(vb, ib, indexCount)
}

func (r *Renderer) EndFrame() error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.runtime.EndFrame()
}

// Present submits the recorded frame and presents it.
func (r *Renderer) Present() error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	if err := r.runtime.SubmitFrame(); err != nil {
		return err
	}
	return r.runtime.PresentFrame()
}
