package engine_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
	"github.com/spaghettifunk/kiln/engine/platform/platformtest"
	"github.com/spaghettifunk/kiln/engine/renderer/renderertest"
)

// steppingClock advances by step every time it is read.
func steppingClock(step time.Duration) *core.Clock {
	t := time.Unix(0, 0)
	return core.NewClockWithSource(func() time.Time {
		t = t.Add(step)
		return t
	})
}

type harness struct {
	driver *platformtest.Driver
	device *renderertest.Device
	engine *engine.Engine
}

func newHarness(module engine.Module) *harness {
	h := &harness{
		driver: platformtest.NewDriver(),
		device: renderertest.NewDevice(),
	}
	h.engine = engine.New(engine.DefaultConfig(), h.driver, h.device, module,
		engine.WithClock(steppingClock(100*time.Millisecond)))
	return h
}

func (h *harness) window() *platformtest.Window { return h.driver.Windows[0] }

func (h *harness) context() *renderertest.Context { return h.device.Contexts[0] }

// exitAfter returns a module that records the engine callbacks it sees and
// exits after n ticks.
func exitAfter(n int, trace *[]string) engine.ModuleFunc {
	return func(e *engine.Engine) error {
		if e.Stage() != engine.StagePreModuleInit {
			*trace = append(*trace, "wrong stage "+e.Stage().String())
		}
		rec := func(name string) func() {
			return func() { *trace = append(*trace, name) }
		}
		e.PreMainLoop.Register(rec("PreMainLoop"))
		e.PostMainLoop.Register(rec("PostMainLoop"))
		e.PreTick.Register(rec("PreTick"))
		e.PostTick.Register(rec("PostTick"))
		e.Render.Register(rec("Render"))
		e.Cleanup.Register(rec("Cleanup"))
		e.FixedTick.Register(func(step float64) {
			if step != engine.DefaultFixedTimestep {
				*trace = append(*trace, "bad step")
			}
			*trace = append(*trace, "FixedTick")
		})
		ticks := 0
		e.Tick.Register(func(delta float64) {
			*trace = append(*trace, "Tick")
			ticks++
			if ticks == n {
				e.Exit()
			}
		})
		return nil
	}
}

func TestRunEngineCallbackOrder(t *testing.T) {
	var trace []string
	h := newHarness(exitAfter(2, &trace))

	if err := h.engine.RunEngine(); err != nil {
		t.Fatalf("RunEngine: %v", err)
	}

	frame := []string{"PreTick", "FixedTick", "Tick", "PostTick", "Render"}
	want := []string{"PreMainLoop"}
	want = append(want, frame...)
	want = append(want, frame...)
	want = append(want, "PostMainLoop", "Cleanup")
	if !slices.Equal(trace, want) {
		t.Fatalf("trace\n got %v\nwant %v", trace, want)
	}

	if h.engine.Stage() != engine.StageShutdown {
		t.Fatalf("stage = %s", h.engine.Stage())
	}
	ctx := h.context()
	presents := 0
	for _, c := range ctx.Calls {
		if c == "PresentFrame" {
			presents++
		}
	}
	if presents != 2 {
		t.Fatalf("presented %d frames, calls %v", presents, ctx.Calls)
	}
	if !ctx.ShutDown || !h.device.ShutDown || !h.window().Destroyed || !h.driver.Terminated {
		t.Fatal("engine did not tear everything down")
	}
}

func TestWindowCloseExits(t *testing.T) {
	var trace []string
	h := newHarness(exitAfter(100, &trace))
	h.driver.Queue(func() { h.window().Sink.HandleClose() })

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if slices.Contains(trace, "Tick") {
		t.Fatalf("ticked after close: %v", trace)
	}
	if !slices.Equal(trace, []string{"PreMainLoop", "PostMainLoop", "Cleanup"}) {
		t.Fatalf("trace = %v", trace)
	}
}

func TestResizeReachesRendererOnce(t *testing.T) {
	var sizes []platform.Size
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.WindowResized.Register(func(s platform.Size) { sizes = append(sizes, s) })
		e.Tick.Register(func(float64) { e.Exit() })
		return nil
	}))
	h.driver.Queue(func() {
		h.window().Resize(1920, 1080)
		h.window().Resize(1920, 1080)
	})

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if len(sizes) != 1 || sizes[0] != (platform.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("WindowResized = %v", sizes)
	}
	ctx := h.context()
	if ctx.Width != 1920 || ctx.Height != 1080 {
		t.Fatalf("renderer extent = %dx%d", ctx.Width, ctx.Height)
	}
	if n := len(ctx.Views); n != 0 {
		// views are released at shutdown
		t.Fatalf("%d views left after shutdown", n)
	}
}

func TestMinimizedSkipsTickAndRender(t *testing.T) {
	var trace []string
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.WindowMinimized.Register(func() { trace = append(trace, "Minimized") })
		e.WindowRestored.Register(func() { trace = append(trace, "Restored") })
		e.Render.Register(func() { trace = append(trace, "Render") })
		e.Tick.Register(func(float64) {
			trace = append(trace, "Tick")
			e.Exit()
		})
		return nil
	}))
	h.driver.Queue(func() {
		h.window().Sink.HandleIconify(true)
		h.driver.Queue(func() { h.window().Sink.HandleIconify(false) })
	})

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	want := []string{"Minimized", "Restored", "Tick", "Render"}
	if !slices.Equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestKeyboardReachesInput(t *testing.T) {
	var down bool
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.Tick.Register(func(float64) {
			down = e.Input().IsKeyDown(core.KEY_W)
			e.Exit()
		})
		return nil
	}))
	h.driver.Queue(func() { h.window().Sink.HandleKey(core.KEY_W, true, false) })

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if !down {
		t.Fatal("W not down during tick")
	}
}

func TestFailedFrameKeepsLooping(t *testing.T) {
	ticks := 0
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.Tick.Register(func(float64) {
			ticks++
			if ticks == 3 {
				e.Exit()
			}
		})
		return nil
	}))
	h.driver.Queue(func() { h.context().BeginErr = errors.New("swapchain out of date") })

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if ticks != 3 {
		t.Fatalf("ticks = %d", ticks)
	}
	if slices.Contains(h.context().Calls, "PresentFrame") {
		t.Fatal("presented a frame that failed to begin")
	}
}

func TestDeviceFailureTearsDown(t *testing.T) {
	initialized := false
	h := newHarness(engine.ModuleFunc(func(*engine.Engine) error {
		initialized = true
		return nil
	}))
	h.device.InitErr = errors.New("no adapter")

	err := h.engine.RunEngine()
	if !errors.Is(err, h.device.InitErr) {
		t.Fatalf("RunEngine = %v", err)
	}
	if initialized {
		t.Fatal("module initialized after startup failure")
	}
	if !h.window().Destroyed || !h.driver.Terminated {
		t.Fatal("window or platform left alive")
	}
}

func TestModuleFailureRunsCleanup(t *testing.T) {
	cleaned := false
	moduleErr := errors.New("missing asset")
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.Cleanup.Register(func() { cleaned = true })
		return moduleErr
	}))

	err := h.engine.RunEngine()
	if !errors.Is(err, moduleErr) {
		t.Fatalf("RunEngine = %v", err)
	}
	if !cleaned || !h.device.ShutDown || !h.driver.Terminated {
		t.Fatal("cleanup skipped after module failure")
	}
}

func TestRunEngineTwice(t *testing.T) {
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.Tick.Register(func(float64) { e.Exit() })
		return nil
	}))
	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if err := h.engine.RunEngine(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Fatalf("second RunEngine = %v", err)
	}
}

func TestExitDuringModuleInitialize(t *testing.T) {
	var trace []string
	h := newHarness(engine.ModuleFunc(func(e *engine.Engine) error {
		e.Tick.Register(func(float64) { trace = append(trace, "Tick") })
		e.Cleanup.Register(func() { trace = append(trace, "Cleanup") })
		e.Exit()
		return nil
	}))

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Cleanup"}; !slices.Equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	if h.engine.IsRunning() {
		t.Fatal("engine still running after RunEngine returned")
	}
}
