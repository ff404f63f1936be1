package renderer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/kiln/engine/core"
)

var (
	ErrFrameOutOfOrder = errors.New("frame call out of order")
	ErrContextState    = errors.New("render context is in the wrong state")
	ErrInvalidSettings = errors.New("invalid render context settings")
	ErrUnknownBuffer   = errors.New("unknown buffer")
	ErrWrongBufferKind = errors.New("wrong buffer kind")
)

type ContextState uint8

const (
	ContextCreated ContextState = iota
	ContextInitialized
	ContextShutdown
)

type FrameState uint8

const (
	FrameIdle FrameState = iota
	FrameBegun
	FrameEnded
	FrameSubmitted
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameBegun:
		return "begun"
	case FrameEnded:
		return "ended"
	case FrameSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("FrameState(%d)", uint8(s))
}

// RenderContext drives a backend Context and enforces its lifecycle and frame
// ordering. VSync and backbuffer count take effect at Initialize; changes made
// afterwards stay pending until ApplySettings.
type RenderContext struct {
	ID uuid.UUID

	backend  Context
	settings ContextSettings
	pending  *ContextSettings
	state    ContextState
	frame    FrameState
}

func NewRenderContext(backend Context, settings ContextSettings) *RenderContext {
	return &RenderContext{
		ID:       uuid.New(),
		backend:  backend,
		settings: settings,
	}
}

func (c *RenderContext) State() ContextState       { return c.state }
func (c *RenderContext) Frame() FrameState         { return c.frame }
func (c *RenderContext) Backend() Context          { return c.backend }
func (c *RenderContext) VSync() bool               { return c.settings.VSync }
func (c *RenderContext) BackbufferCount() uint32   { return c.settings.BackbufferCount }
func (c *RenderContext) Settings() ContextSettings { return c.settings }

// HasPendingSettings reports whether settings changed since the last apply.
func (c *RenderContext) HasPendingSettings() bool {
	return c.pending != nil
}

func (c *RenderContext) SetVSync(enabled bool) {
	s := c.nextSettings()
	s.VSync = enabled
	c.stage(s)
}

func (c *RenderContext) SetBackbufferCount(count uint32) error {
	if count < MinBackbufferCount || count > MaxBackbufferCount {
		return fmt.Errorf("backbuffer count %d: %w", count, ErrInvalidSettings)
	}
	s := c.nextSettings()
	s.BackbufferCount = count
	c.stage(s)
	return nil
}

func (c *RenderContext) SetClearColor(color Color) {
	s := c.nextSettings()
	s.ClearColor = color
	c.stage(s)
}

func (c *RenderContext) nextSettings() ContextSettings {
	if c.pending != nil {
		return *c.pending
	}
	return c.settings
}

func (c *RenderContext) stage(s ContextSettings) {
	if c.state == ContextCreated {
		c.settings = s
		return
	}
	c.pending = &s
}

// Initialize binds the context to surface and creates its GPU resources.
func (c *RenderContext) Initialize(surface Surface) error {
	if c.state != ContextCreated {
		return fmt.Errorf("initialize context %s: %w", c.ID, ErrContextState)
	}
	if c.settings.BackbufferCount < MinBackbufferCount || c.settings.BackbufferCount > MaxBackbufferCount {
		return fmt.Errorf("backbuffer count %d: %w", c.settings.BackbufferCount, ErrInvalidSettings)
	}
	if err := c.backend.Initialize(surface, c.settings); err != nil {
		core.LogError("failed to initialize render context %s: %s", c.ID, err)
		return err
	}
	c.state = ContextInitialized
	w, h := c.backend.Extent()
	core.LogDebug("render context %s initialized (%dx%d, %d backbuffers, vsync=%v)",
		c.ID, w, h, c.settings.BackbufferCount, c.settings.VSync)
	return nil
}

// ApplySettings recreates the swapchain with the pending settings. It must be
// called between frames.
func (c *RenderContext) ApplySettings() error {
	if c.pending == nil {
		return nil
	}
	if c.state != ContextInitialized {
		return fmt.Errorf("apply settings: %w", ErrContextState)
	}
	if c.frame != FrameIdle {
		return fmt.Errorf("apply settings during %s frame: %w", c.frame, ErrFrameOutOfOrder)
	}
	next := *c.pending
	if err := c.backend.Reconfigure(next); err != nil {
		core.LogError("failed to apply render context settings: %s", err)
		return err
	}
	c.settings = next
	c.pending = nil
	return nil
}

// Resize recreates the size dependent resources. It must be called between
// frames. Zero sizes are ignored.
func (c *RenderContext) Resize(width, height uint32) error {
	if c.state != ContextInitialized {
		return fmt.Errorf("resize: %w", ErrContextState)
	}
	if c.frame != FrameIdle {
		return fmt.Errorf("resize during %s frame: %w", c.frame, ErrFrameOutOfOrder)
	}
	if width == 0 || height == 0 {
		return nil
	}
	if w, h := c.backend.Extent(); w == width && h == height {
		return nil
	}
	if err := c.backend.Resize(width, height); err != nil {
		core.LogError("failed to resize render context to %dx%d: %s", width, height, err)
		return err
	}
	return nil
}

func (c *RenderContext) Extent() (uint32, uint32) {
	return c.backend.Extent()
}

func (c *RenderContext) Shutdown() error {
	if c.state != ContextInitialized {
		return fmt.Errorf("shutdown context %s: %w", c.ID, ErrContextState)
	}
	c.state = ContextShutdown
	c.frame = FrameIdle
	return c.backend.Shutdown()
}

func (c *RenderContext) expect(state FrameState, op string) error {
	if c.state != ContextInitialized {
		return fmt.Errorf("%s: %w", op, ErrContextState)
	}
	if c.frame != state {
		return fmt.Errorf("%s while frame is %s: %w", op, c.frame, ErrFrameOutOfOrder)
	}
	return nil
}

// BeginFrame acquires the next backbuffer and clears it. On failure the frame
// stays idle and the caller must skip the rest of it.
func (c *RenderContext) BeginFrame() error {
	if err := c.expect(FrameIdle, "begin frame"); err != nil {
		return err
	}
	if err := c.backend.BeginFrame(); err != nil {
		return err
	}
	c.frame = FrameBegun
	return nil
}

func (c *RenderContext) SetMaterial(m MaterialData) error {
	if err := c.expect(FrameBegun, "set material"); err != nil {
		return err
	}
	return c.backend.SetMaterial(m)
}

func (c *RenderContext) SetObjectData(o ObjectData) error {
	if err := c.expect(FrameBegun, "set object data"); err != nil {
		return err
	}
	return c.backend.SetObjectData(o)
}

func (c *RenderContext) Draw(vertices, indices GPUBuffer, indexCount uint32) error {
	if err := c.expect(FrameBegun, "draw"); err != nil {
		return err
	}
	return c.backend.Draw(vertices, indices, indexCount)
}

func (c *RenderContext) EndFrame() error {
	if err := c.expect(FrameBegun, "end frame"); err != nil {
		return err
	}
	if err := c.backend.EndFrame(); err != nil {
		c.frame = FrameIdle
		return err
	}
	c.frame = FrameEnded
	return nil
}

func (c *RenderContext) SubmitFrame() error {
	if err := c.expect(FrameEnded, "submit frame"); err != nil {
		return err
	}
	if err := c.backend.SubmitFrame(); err != nil {
		c.frame = FrameIdle
		return err
	}
	c.frame = FrameSubmitted
	return nil
}

func (c *RenderContext) PresentFrame() error {
	if err := c.expect(FrameSubmitted, "present frame"); err != nil {
		return err
	}
	c.frame = FrameIdle
	return c.backend.PresentFrame()
}
