package testbed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/platform/platformtest"
	"github.com/spaghettifunk/kiln/engine/renderer/renderertest"
)

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
	game   *TestGame
}

// newHarness runs the testbed on fake backends and stops it after maxTicks.
func newHarness(cfg *engine.ApplicationConfig, maxTicks int) *harness {
	h := &harness{
		driver: platformtest.NewDriver(),
		device: renderertest.NewDevice(),
		game:   NewTestGame(),
	}
	module := engine.ModuleFunc(func(e *engine.Engine) error {
		if err := h.game.Initialize(e); err != nil {
			return err
		}
		ticks := 0
		e.Tick.Register(func(float64) {
			ticks++
			if ticks >= maxTicks {
				e.Exit()
			}
		})
		return nil
	})
	h.engine = engine.New(cfg, h.driver, h.device, module, engine.WithClock(steppingClock(16*time.Millisecond)))
	return h
}

func TestTestbedDrawsAndCleansUp(t *testing.T) {
	h := newHarness(engine.DefaultConfig(), 3)
	if err := h.engine.RunEngine(); err != nil {
		t.Fatalf("RunEngine: %v", err)
	}

	ctx := h.device.Contexts[0]
	if got := len(ctx.Draws); got != 6 {
		t.Fatalf("recorded %d draws, want 2 per frame over 3 frames", got)
	}
	scene := buildScene()
	if ctx.Draws[0].IndexCount != uint32(len(scene.Indices)) {
		t.Errorf("scene draw used %d indices, want %d", ctx.Draws[0].IndexCount, len(scene.Indices))
	}
	if ctx.Draws[1].IndexCount != 36 {
		t.Errorf("cube draw used %d indices, want 36", ctx.Draws[1].IndexCount)
	}

	if got := len(h.device.Buffers); got != 4 {
		t.Fatalf("created %d buffers, want 4", got)
	}
	for i, b := range h.device.Buffers {
		if !b.Destroyed {
			t.Errorf("buffer %d still alive after cleanup", i)
		}
	}

	e := h.engine
	if e.Render.Len() != 0 || e.FixedTick.Len() != 0 || e.Cleanup.Len() != 0 || e.WindowResized.Len() != 0 {
		t.Error("testbed left engine callbacks registered")
	}
	if e.Input().OnInput.Len() != 0 || e.Input().OnGamepadInput.Len() != 0 {
		t.Error("testbed left input callbacks registered")
	}
}

func TestEscapeExits(t *testing.T) {
	h := newHarness(engine.DefaultConfig(), 50)
	win := func() *platformtest.Window { return h.driver.Windows[0] }
	h.driver.Queue(func() {
		win().Sink.HandleKey(core.KEY_ESCAPE, true, false)
		h.driver.Queue(func() { win().Sink.HandleKey(core.KEY_ESCAPE, false, false) })
	})

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if frames := len(h.device.Contexts[0].Draws) / 2; frames >= 50 {
		t.Fatalf("escape did not stop the engine, ran %d frames", frames)
	}
}

func TestHeldKeyMovesCamera(t *testing.T) {
	h := newHarness(engine.DefaultConfig(), 5)
	h.driver.Queue(func() { h.driver.Windows[0].Sink.HandleKey(core.KEY_E, true, false) })

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	// the camera is reset when its last reference is released at cleanup,
	// so look at the view uploaded with the last draw instead
	draws := h.device.Contexts[0].Draws
	first := draws[0].Object.WorldView
	last := draws[len(draws)-2].Object.WorldView
	if first.Compare(last, 1e-6) {
		t.Fatal("holding E did not move the camera")
	}
}

func TestMaterialFromAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "materials"), 0o755); err != nil {
		t.Fatal(err)
	}
	kmt := "name = warm\nlight_colour = 1.0 0.5 0.25\nlight_direction = 0 -1 0\n"
	if err := os.WriteFile(filepath.Join(dir, "materials", "default.kmt"), []byte(kmt), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := engine.DefaultConfig()
	cfg.Assets.Directory = dir

	h := newHarness(cfg, 1)
	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	got := h.device.Contexts[0].Draws[0].Material
	if !got.LightColor.Compare(math.NewVec3(1, 0.5, 0.25), 1e-6) {
		t.Errorf("light colour = %+v", got.LightColor)
	}
	if !got.LightDirection.Compare(math.NewVec3(0, -1, 0), 1e-6) {
		t.Errorf("light direction = %+v", got.LightDirection)
	}
}

func TestMissingMaterialFallsBack(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Assets.Directory = t.TempDir()

	h := newHarness(cfg, 1)
	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if h.game.state.material.LightColor != math.NewVec3(1, 1, 1) {
		t.Errorf("material = %+v, want the default", h.game.state.material)
	}
}

func TestResizeUpdatesState(t *testing.T) {
	h := newHarness(engine.DefaultConfig(), 2)
	h.driver.Queue(func() { h.driver.Windows[0].Resize(800, 600) })

	if err := h.engine.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if h.game.state.width != 800 || h.game.state.height != 600 {
		t.Fatalf("state size = %dx%d", h.game.state.width, h.game.state.height)
	}
}

func TestModelsLoadInBackground(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "models"), 0o755); err != nil {
		t.Fatal(err)
	}
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "models", "tri.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := engine.DefaultConfig()
	cfg.Assets.Directory = dir

	driver := platformtest.NewDriver()
	device := renderertest.NewDevice()
	game := NewTestGame()
	loaded := false
	deadline := time.Now().Add(2 * time.Second)
	module := engine.ModuleFunc(func(e *engine.Engine) error {
		if err := game.Initialize(e); err != nil {
			return err
		}
		e.Tick.Register(func(float64) {
			if len(game.state.models) > 0 {
				loaded = true
				e.Exit()
			} else if time.Now().After(deadline) {
				e.Exit()
			}
			time.Sleep(time.Millisecond)
		})
		return nil
	})
	e := engine.New(cfg, driver, device, module, engine.WithClock(steppingClock(16*time.Millisecond)))
	if err := e.RunEngine(); err != nil {
		t.Fatal(err)
	}
	if !loaded {
		t.Fatal("model never arrived")
	}
	draws := device.Contexts[0].Draws
	if last := draws[len(draws)-1]; last.IndexCount != 3 {
		t.Fatalf("last draw used %d indices, want the 3 of the loaded model", last.IndexCount)
	}
	for i, b := range device.Buffers {
		if !b.Destroyed {
			t.Errorf("buffer %d still alive after cleanup", i)
		}
	}
}
