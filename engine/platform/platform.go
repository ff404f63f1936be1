package platform

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spaghettifunk/kiln/engine/core"
)

// Platform is the process-wide windowing state: the driver, the timing source,
// the registered window classes and the cursor.
type Platform struct {
	driver      Driver
	clock       *core.Clock
	initialized bool

	lastTime time.Duration
	delta    time.Duration

	windows []*Window
	classes map[string]struct{}

	cursorVisible bool
	captured      *Window

	controllers []int

	// Controller notifications arrive on the driver's message receiver, not
	// on any runtime window.
	ControllerConnected    core.Callback[int]
	ControllerDisconnected core.Callback[int]
}

type Option func(*Platform)

// WithClock replaces the wall clock used for frame timing.
func WithClock(c *core.Clock) Option {
	return func(p *Platform) { p.clock = c }
}

func New(driver Driver, opts ...Option) *Platform {
	p := &Platform{
		driver:        driver,
		clock:         core.NewClock(),
		classes:       make(map[string]struct{}),
		cursorVisible: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize starts the driver and the frame clock and begins listening for
// controllers.
func (p *Platform) Initialize() error {
	if p.initialized {
		return core.ErrAlreadyInitialized
	}
	if err := p.driver.Init(); err != nil {
		core.LogError("failed to initialize platform driver: %s", err)
		return fmt.Errorf("platform init: %w", err)
	}
	p.driver.SetControllerCallback(p.onController)

	p.clock.Start()
	p.lastTime = 0
	p.delta = 0
	p.initialized = true
	core.LogInfo("platform initialized")
	return nil
}

// Shutdown terminates the driver. Windows must be shut down first.
func (p *Platform) Shutdown() error {
	if !p.initialized {
		return core.ErrNotInitialized
	}
	var errs []error
	if len(p.windows) > 0 {
		errs = append(errs, fmt.Errorf("%d windows still open", len(p.windows)))
	}
	p.driver.SetControllerCallback(nil)
	if err := p.driver.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("terminate driver: %w", err))
	}
	p.clock.Stop()
	p.initialized = false

	if err := errors.Join(errs...); err != nil {
		core.LogError("platform shutdown: %s", err)
		return err
	}
	return nil
}

// PumpMessages drains pending native events without blocking and then
// publishes the per-tick mouse input of every window.
func (p *Platform) PumpMessages() {
	if !p.initialized {
		return
	}
	p.driver.PollEvents()
	for _, w := range p.windows {
		w.flushInput()
	}
}

// Tick samples the clock and updates the frame delta.
func (p *Platform) Tick() {
	p.clock.Update()
	now := p.clock.Elapsed()
	p.delta = now - p.lastTime
	p.lastTime = now
}

func (p *Platform) DeltaSeconds() float64 {
	return float64(p.delta.Microseconds()) / 1e6
}

func (p *Platform) DeltaMilliseconds() float64 {
	return float64(p.delta.Microseconds()) / 1e3
}

// Time returns the time elapsed since Initialize.
func (p *Platform) Time() time.Duration {
	return p.lastTime
}

func (p *Platform) Displays() ([]Display, error) {
	if !p.initialized {
		return nil, core.ErrNotInitialized
	}
	return p.driver.Displays()
}

// ShowCursor shows or hides the cursor over every window.
func (p *Platform) ShowCursor(visible bool) {
	p.cursorVisible = visible
	p.applyCursor()
}

func (p *Platform) IsCursorVisible() bool {
	return p.cursorVisible
}

// CaptureCursor confines the cursor to the render area of w.
func (p *Platform) CaptureCursor(w *Window) {
	p.captured = w
	p.applyCursor()
}

func (p *Platform) ReleaseCursor() {
	p.captured = nil
	p.applyCursor()
}

func (p *Platform) CursorCaptured() bool {
	return p.captured != nil
}

// Gamepad returns the state of a connected controller.
func (p *Platform) Gamepad(id int) (core.GamepadState, bool) {
	return p.driver.Gamepad(id)
}

// Controllers lists the connected controller ids.
func (p *Platform) Controllers() []int {
	return slices.Clone(p.controllers)
}

func (p *Platform) applyCursor() {
	for _, w := range p.windows {
		mode := CursorNormal
		switch {
		case w == p.captured:
			mode = CursorCaptured
		case !p.cursorVisible:
			mode = CursorHidden
		}
		w.native.SetCursorMode(mode)
	}
}

func (p *Platform) onController(id int, connected bool) {
	if connected {
		if !slices.Contains(p.controllers, id) {
			p.controllers = append(p.controllers, id)
		}
		core.LogInfo("controller %d connected", id)
		p.ControllerConnected.Call(id)
		return
	}
	if i := slices.Index(p.controllers, id); i >= 0 {
		p.controllers = slices.Delete(p.controllers, i, i+1)
	}
	core.LogInfo("controller %d disconnected", id)
	p.ControllerDisconnected.Call(id)
}

func (p *Platform) registerClass(name string) error {
	if _, ok := p.classes[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrClassInUse)
	}
	p.classes[name] = struct{}{}
	return nil
}

func (p *Platform) unregisterClass(name string) error {
	if _, ok := p.classes[name]; !ok {
		return fmt.Errorf("window class %s is not registered", name)
	}
	delete(p.classes, name)
	return nil
}

func (p *Platform) addWindow(w *Window) {
	p.windows = append(p.windows, w)
	if p.captured != nil || !p.cursorVisible {
		p.applyCursor()
	}
}

func (p *Platform) removeWindow(w *Window) {
	if i := slices.Index(p.windows, w); i >= 0 {
		p.windows = slices.Delete(p.windows, i, i+1)
	}
	if p.captured == w {
		p.captured = nil
	}
}
