package renderer_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/renderertest"
)

func newContext(t *testing.T, vsync bool, backbuffers uint32) (*renderer.RenderContext, *renderertest.Context) {
	t.Helper()
	backend := &renderertest.Context{}
	settings := renderer.DefaultContextSettings()
	ctx := renderer.NewRenderContext(backend, settings)
	ctx.SetVSync(vsync)
	if err := ctx.SetBackbufferCount(backbuffers); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Initialize(&renderertest.Surface{Width: 1280, Height: 720}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return ctx, backend
}

func TestResizeRecreatesViewsKeepingSettings(t *testing.T) {
	ctx, backend := newContext(t, true, 3)

	if len(backend.Views) != 3 || !backend.Settings.VSync {
		t.Fatalf("initial views=%d vsync=%v", len(backend.Views), backend.Settings.VSync)
	}
	gen := backend.ViewGen

	if err := ctx.Resize(1920, 1080); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	if backend.ViewGen == gen {
		t.Fatal("views were not recreated")
	}
	if len(backend.Views) != 3 {
		t.Fatalf("backbuffer count = %d, want 3", len(backend.Views))
	}
	for i, v := range backend.Views {
		if v.Width != 1920 || v.Height != 1080 {
			t.Fatalf("view %d is %dx%d", i, v.Width, v.Height)
		}
	}
	if !ctx.VSync() || ctx.BackbufferCount() != 3 || !backend.Settings.VSync {
		t.Fatal("resize changed the context settings")
	}
	if w, h := ctx.Extent(); w != 1920 || h != 1080 {
		t.Fatalf("extent = %dx%d", w, h)
	}
}

func TestResizeToSameSizeIsNoop(t *testing.T) {
	ctx, backend := newContext(t, false, 2)
	gen := backend.ViewGen
	if err := ctx.Resize(1280, 720); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Resize(0, 720); err != nil {
		t.Fatal(err)
	}
	if backend.ViewGen != gen {
		t.Fatal("views recreated without a size change")
	}
}

func TestSettingsArePendingAfterInitialize(t *testing.T) {
	ctx, backend := newContext(t, true, 2)

	ctx.SetVSync(false)
	if err := ctx.SetBackbufferCount(3); err != nil {
		t.Fatal(err)
	}
	if !ctx.HasPendingSettings() {
		t.Fatal("changes not pending")
	}
	if !ctx.VSync() || ctx.BackbufferCount() != 2 || len(backend.Views) != 2 {
		t.Fatal("pending settings took effect before ApplySettings")
	}

	if err := ctx.ApplySettings(); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if ctx.VSync() || ctx.BackbufferCount() != 3 || len(backend.Views) != 3 || backend.Settings.VSync {
		t.Fatal("settings not applied")
	}
	if ctx.HasPendingSettings() {
		t.Fatal("pending flag survived apply")
	}
}

func TestInvalidBackbufferCount(t *testing.T) {
	ctx := renderer.NewRenderContext(&renderertest.Context{}, renderer.DefaultContextSettings())
	if err := ctx.SetBackbufferCount(0); !errors.Is(err, renderer.ErrInvalidSettings) {
		t.Fatalf("SetBackbufferCount(0) = %v", err)
	}
}

func TestFrameOrdering(t *testing.T) {
	ctx, backend := newContext(t, true, 2)

	if err := ctx.EndFrame(); !errors.Is(err, renderer.ErrFrameOutOfOrder) {
		t.Fatalf("EndFrame before BeginFrame = %v", err)
	}
	if err := ctx.Draw(nil, nil, 3); !errors.Is(err, renderer.ErrFrameOutOfOrder) {
		t.Fatalf("Draw before BeginFrame = %v", err)
	}

	steps := []func() error{ctx.BeginFrame, ctx.EndFrame, ctx.SubmitFrame, ctx.PresentFrame}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if ctx.Frame() != renderer.FrameIdle {
		t.Fatalf("frame = %v after present", ctx.Frame())
	}

	if err := ctx.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Resize(800, 600); !errors.Is(err, renderer.ErrFrameOutOfOrder) {
		t.Fatalf("Resize mid-frame = %v", err)
	}
	if err := ctx.BeginFrame(); !errors.Is(err, renderer.ErrFrameOutOfOrder) {
		t.Fatalf("nested BeginFrame = %v", err)
	}

	want := []string{"Initialize", "BeginFrame", "EndFrame", "SubmitFrame", "PresentFrame", "BeginFrame"}
	if !slices.Equal(backend.Calls, want) {
		t.Fatalf("calls = %v, want %v", backend.Calls, want)
	}
}

func TestFailedBeginFrameStaysIdle(t *testing.T) {
	ctx, backend := newContext(t, true, 2)
	backend.BeginErr = errors.New("device lost")

	if err := ctx.BeginFrame(); err == nil {
		t.Fatal("expected BeginFrame error")
	}
	if ctx.Frame() != renderer.FrameIdle {
		t.Fatalf("frame = %v, want idle", ctx.Frame())
	}

	backend.BeginErr = nil
	if err := ctx.BeginFrame(); err != nil {
		t.Fatalf("retry BeginFrame: %v", err)
	}
	if err := ctx.EndFrame(); err != nil {
		t.Fatalf("EndFrame after retry: %v", err)
	}
	if err := ctx.SubmitFrame(); err != nil {
		t.Fatalf("SubmitFrame after retry: %v", err)
	}
	if err := ctx.PresentFrame(); err != nil {
		t.Fatalf("PresentFrame after retry: %v", err)
	}
	if ctx.Frame() != renderer.FrameIdle {
		t.Fatalf("frame = %v after present, want idle", ctx.Frame())
	}
}

func TestRollbackRunsInReverse(t *testing.T) {
	var rb renderer.Rollback
	var got []int
	for i := 1; i <= 3; i++ {
		rb.Push(func() { got = append(got, i) })
	}
	rb.Run()
	if !slices.Equal(got, []int{3, 2, 1}) {
		t.Fatalf("release order = %v", got)
	}

	rb.Push(func() { t.Fatal("discarded step ran") })
	rb.Discard()
	rb.Run()
	if rb.Len() != 0 {
		t.Fatal("stack not empty")
	}
}
