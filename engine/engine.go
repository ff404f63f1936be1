package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	StageUninitialized Stage = iota
	// Platform, window and renderer are up; the module has not been initialized
	StagePreModuleInit
	// The module initialized successfully
	StagePostModuleInit
	// The main loop is running
	StageRunning
	// Cleanup callbacks are running
	StageCleanup
	// Everything has been torn down
	StageShutdown
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StagePreModuleInit:
		return "pre-module-init"
	case StagePostModuleInit:
		return "post-module-init"
	case StageRunning:
		return "running"
	case StageCleanup:
		return "cleanup"
	case StageShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// minimizedPoll is how long the loop sleeps per iteration while the runtime
// window is minimized.
var minimizedPoll = 10 * time.Millisecond

// Engine owns the platform, the runtime window and the renderer, runs the main
// loop and exposes the callback slots a Module composes itself from.
type Engine struct {
	config   *ApplicationConfig
	module   Module
	platform *platform.Platform
	window   *platform.Window
	renderer *renderer.Renderer
	assets   *assets.AssetManager
	input    *core.InputState
	metrics  *core.Metrics
	ticker   *FixedTicker

	stage Stage
	// running is cleared by Exit, which may be called from any goroutine.
	running atomic.Bool
	// exitRequested latches an Exit that arrives before the main loop starts.
	exitRequested atomic.Bool

	platformUp bool
	windowUp   bool
	rendererUp bool

	PreMainLoop      core.Signal
	PostMainLoop     core.Signal
	FixedTick        core.Callback[float64]
	PreTick          core.Signal
	Tick             core.Callback[float64]
	PostTick         core.Signal
	Render           core.Signal
	Cleanup          core.Signal
	WindowResized    core.Callback[platform.Size]
	WindowMinimized  core.Signal
	WindowMaximized  core.Signal
	WindowRestored   core.Signal
	WindowMouseInput core.Callback[platform.MouseInput]
}

type Option func(*options)

type options struct {
	platformOpts []platform.Option
}

// WithClock drives frame timing from c instead of the wall clock.
func WithClock(c *core.Clock) Option {
	return func(o *options) { o.platformOpts = append(o.platformOpts, platform.WithClock(c)) }
}

// New wires an engine together. Nothing native is created until RunEngine.
func New(cfg *ApplicationConfig, driver platform.Driver, device renderer.Device, module Module, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	p := platform.New(driver, o.platformOpts...)
	return &Engine{
		config:   cfg,
		module:   module,
		platform: p,
		window:   p.NewWindow(cfg.WindowDesc()),
		renderer: renderer.New(device),
		input:    core.NewInputState(),
		metrics:  core.NewMetrics(),
		ticker:   NewFixedTicker(cfg.Engine.FixedTimestep),
	}
}

func (e *Engine) Config() *ApplicationConfig        { return e.config }
func (e *Engine) Stage() Stage                      { return e.stage }
func (e *Engine) IsRunning() bool                   { return e.running.Load() }
func (e *Engine) Platform() *platform.Platform      { return e.platform }
func (e *Engine) Window() *platform.Window          { return e.window }
func (e *Engine) Renderer() *renderer.Renderer      { return e.renderer }
func (e *Engine) Input() *core.InputState           { return e.input }
func (e *Engine) Metrics() *core.Metrics            { return e.metrics }
func (e *Engine) Ticker() *FixedTicker              { return e.ticker }
func (e *Engine) Assets() *assets.AssetManager      { return e.assets }
func (e *Engine) FramebufferSize() (uint32, uint32) { return e.window.FramebufferSize() }

// RunEngine brings the engine up, initializes the module, runs the main loop
// until Exit and tears everything down again.
func (e *Engine) RunEngine() error {
	if e.stage != StageUninitialized {
		return fmt.Errorf("run engine in stage %s: %w", e.stage, core.ErrAlreadyInitialized)
	}
	if err := core.SetLogLevel(e.config.Engine.LogLevel); err != nil {
		core.LogWarn("ignoring log level: %s", err)
	}

	if err := e.startup(); err != nil {
		e.stage = StageShutdown
		return errors.Join(err, e.teardown())
	}

	e.stage = StagePreModuleInit
	if e.module != nil {
		if err := e.module.Initialize(e); err != nil {
			core.LogError("module initialization failed: %s", err)
			e.stage = StageCleanup
			e.Cleanup.Call()
			e.stage = StageShutdown
			return errors.Join(fmt.Errorf("initialize module: %w", err), e.teardown())
		}
	}
	e.stage = StagePostModuleInit

	e.running.Store(true)
	if e.exitRequested.Load() {
		e.running.Store(false)
	}
	e.stage = StageRunning
	e.MainLoop()

	e.stage = StageCleanup
	e.Cleanup.Call()

	err := e.teardown()
	e.stage = StageShutdown
	if err != nil {
		return err
	}
	core.LogInfo("engine shut down cleanly")
	return nil
}

func (e *Engine) startup() error {
	if err := e.platform.Initialize(); err != nil {
		return err
	}
	e.platformUp = true
	e.platform.ControllerDisconnected.Register(e.input.ForgetGamepad)

	if err := e.window.Initialize(); err != nil {
		return fmt.Errorf("runtime window: %w", err)
	}
	e.windowUp = true
	e.bindWindow()

	if err := e.renderer.Initialize(e.config.DeviceConfig(), e.window, e.config.ContextSettings()); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	e.rendererUp = true

	if dir := e.config.Assets.Directory; dir != "" {
		am, err := assets.NewAssetManager(dir)
		if err != nil {
			return fmt.Errorf("asset manager: %w", err)
		}
		e.assets = am
		if e.config.Assets.Watch {
			if err := am.Watch(); err != nil {
				core.LogWarn("asset hot reload disabled: %s", err)
			}
		}
		e.PreTick.Register(am.Dispatch)
	}
	return nil
}

// bindWindow routes runtime window events into the input state, the renderer
// and the engine callback slots.
func (e *Engine) bindWindow() {
	w := e.window
	w.Closed.Register(e.Exit)
	w.KeyboardInput.Register(func(k core.KeyInput) {
		e.input.ProcessKey(k.Key, k.Value != 0)
	})
	w.MouseInput.Register(func(m platform.MouseInput) {
		switch m.Key {
		case core.MOUSE_X, core.MOUSE_Y, core.MOUSE_WHEEL_UP, core.MOUSE_WHEEL_DOWN:
			e.input.ProcessAxis(m.Key, m.Value)
		default:
			e.input.ProcessKey(m.Key, m.Value != 0)
		}
		e.WindowMouseInput.Call(m)
	})
	w.Resized.Register(e.onResized)
	w.Minimized.Register(e.WindowMinimized.Call)
	w.Maximized.Register(e.WindowMaximized.Call)
	w.Restored.Register(e.WindowRestored.Call)
	w.FocusLost.Register(e.platform.ReleaseCursor)
}

func (e *Engine) onResized(size platform.Size) {
	core.LogDebug("window resized to %dx%d", size.Width, size.Height)
	if e.rendererUp {
		if err := e.renderer.Resize(size.Width, size.Height); err != nil {
			core.LogError("failed to resize renderer: %s", err)
		}
	}
	e.WindowResized.Call(size)
}

// teardown releases whatever startup brought up, newest first.
func (e *Engine) teardown() error {
	var errs []error
	if e.assets != nil {
		if err := e.assets.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close assets: %w", err))
		}
		e.assets = nil
	}
	if e.rendererUp {
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown renderer: %w", err))
		}
		e.rendererUp = false
	}
	if e.windowUp {
		if err := e.window.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		if err := e.window.Reset(); err != nil {
			errs = append(errs, err)
		}
		e.windowUp = false
	}
	if e.platformUp {
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		e.platformUp = false
	}
	return errors.Join(errs...)
}

// MainLoop runs frames until Exit is called.
func (e *Engine) MainLoop() {
	e.PreMainLoop.Call()
	e.platform.Tick()

	for e.running.Load() {
		e.platform.PumpMessages()
		if !e.running.Load() {
			break
		}
		e.platform.Tick()
		delta := e.platform.DeltaSeconds()

		if e.window.IsMinimized() {
			e.input.EndTick()
			time.Sleep(minimizedPoll)
			continue
		}

		e.PreTick.Call()
		e.ticker.Advance(delta, e.FixedTick.Call)
		e.Tick.Call(delta)
		e.PostTick.Call()

		e.renderFrame()

		e.input.EndTick()
		e.metrics.Update(delta)
	}

	e.PostMainLoop.Call()
}

// renderFrame drops the frame on the first failing step.
func (e *Engine) renderFrame() {
	if err := e.renderer.BeginFrame(); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			core.LogDebug("skipping frame: %s", err)
			return
		}
		core.LogWarn("skipping frame: %s", err)
		return
	}
	e.Render.Call()
	if err := e.renderer.EndFrame(); err != nil {
		core.LogError("failed to end frame: %s", err)
		return
	}
	if err := e.renderer.Present(); err != nil {
		core.LogError("failed to present frame: %s", err)
	}
}

// Exit stops the main loop at its next check.
func (e *Engine) Exit() {
	e.exitRequested.Store(true)
	if e.running.Swap(false) {
		core.LogInfo("exit requested")
	}
}

// PollGamepads samples keys on every connected controller.
func (e *Engine) PollGamepads(keys ...core.KeyCode) {
	for _, id := range e.platform.Controllers() {
		state, ok := e.platform.Gamepad(id)
		if !ok {
			continue
		}
		e.input.PollGamepad(id, state, keys...)
	}
}
