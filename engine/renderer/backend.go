package renderer

import "fmt"

type RendererType uint8

const (
	Vulkan RendererType = iota
	// WebGPU fills the Direct3D 11 style role: an immediate context with
	// compiled-in shaders and a fixed input layout.
	WebGPU
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case WebGPU:
		return "webgpu"
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

// Surface is something a context can present to, normally a platform window.
type Surface interface {
	// FramebufferSize is the render-area size in pixels.
	FramebufferSize() (width, height uint32)
	// NativeHandle is the windowing library object the backend builds its
	// presentation surface from.
	NativeHandle() any
}

// DeviceConfig configures the process-wide device.
type DeviceConfig struct {
	ApplicationName string
	// Validation enables the backend's debug and validation layers.
	Validation bool
	// Surface lets the device pick an adapter able to present to it.
	Surface Surface
}

// Device is the process-wide half of a graphics backend. It is initialized
// once per run and owns every GPU buffer.
type Device interface {
	Type() RendererType
	Initialize(cfg DeviceConfig) error
	Shutdown() error
	// NewContext allocates per-surface state without doing any GPU work.
	NewContext() Context
	DestroyContext(ctx Context) error
	CreateBuffer(kind BufferKind, data []byte) (GPUBuffer, error)
	DestroyBuffer(buf GPUBuffer) error
}

// GPUBuffer is a backend owned buffer.
type GPUBuffer interface {
	Kind() BufferKind
	Size() uint64
}

// Context is the per-surface half of a graphics backend: the swapchain,
// backbuffer views, depth buffer and pipeline used to draw into one window.
// Frame calls are strictly ordered:
// BeginFrame, then any number of SetMaterial/SetObjectData/Draw, then
// EndFrame, SubmitFrame and PresentFrame.
type Context interface {
	Initialize(surface Surface, settings ContextSettings) error
	// Reconfigure recreates the swapchain for changed settings.
	Reconfigure(settings ContextSettings) error
	// Resize recreates size dependent resources, keeping format, buffer
	// count and present mode.
	Resize(width, height uint32) error
	Shutdown() error

	BeginFrame() error
	SetMaterial(material MaterialData) error
	SetObjectData(object ObjectData) error
	Draw(vertices, indices GPUBuffer, indexCount uint32) error
	EndFrame() error
	SubmitFrame() error
	PresentFrame() error

	Extent() (width, height uint32)
}
