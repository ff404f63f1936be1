package platform_test

import (
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
	"github.com/spaghettifunk/kiln/engine/platform/platformtest"
)

func TestPlatformInitFailure(t *testing.T) {
	d := platformtest.NewDriver()
	d.InitErr = errors.New("no display server")
	p := platform.New(d)
	if err := p.Initialize(); !errors.Is(err, d.InitErr) {
		t.Fatalf("Initialize = %v", err)
	}
}

func TestPlatformTiming(t *testing.T) {
	now := time.Unix(0, 0)
	clock := core.NewClockWithSource(func() time.Time { return now })

	p := platform.New(platformtest.NewDriver(), platform.WithClock(clock))
	if err := p.Initialize(); err != nil {
		t.Fatal(err)
	}

	now = now.Add(16667 * time.Microsecond)
	p.Tick()
	if got := p.DeltaSeconds(); got != 0.016667 {
		t.Fatalf("DeltaSeconds = %v", got)
	}
	if got := p.DeltaMilliseconds(); got != 16.667 {
		t.Fatalf("DeltaMilliseconds = %v", got)
	}

	now = now.Add(time.Millisecond)
	p.Tick()
	if got := p.DeltaSeconds(); got != 0.001 {
		t.Fatalf("second DeltaSeconds = %v", got)
	}
}

func TestCursorModes(t *testing.T) {
	d := platformtest.NewDriver()
	p, w := newInitializedWindow(t, d)
	native := d.Windows[0]

	p.ShowCursor(false)
	if p.IsCursorVisible() || native.CursorMode != platform.CursorHidden {
		t.Fatalf("cursor mode = %v, want hidden", native.CursorMode)
	}

	p.CaptureCursor(w)
	if native.CursorMode != platform.CursorCaptured {
		t.Fatalf("cursor mode = %v, want captured", native.CursorMode)
	}

	p.ReleaseCursor()
	p.ShowCursor(true)
	if native.CursorMode != platform.CursorNormal || p.CursorCaptured() {
		t.Fatalf("cursor mode = %v, want normal", native.CursorMode)
	}
}

func TestControllerNotifications(t *testing.T) {
	d := platformtest.NewDriver()
	p := platform.New(d)
	if err := p.Initialize(); err != nil {
		t.Fatal(err)
	}

	var connected, disconnected []int
	p.ControllerConnected.Register(func(id int) { connected = append(connected, id) })
	p.ControllerDisconnected.Register(func(id int) { disconnected = append(disconnected, id) })

	d.ConnectController(0, true)
	d.ConnectController(3, true)
	d.ConnectController(0, false)

	if len(connected) != 2 || len(disconnected) != 1 || disconnected[0] != 0 {
		t.Fatalf("connected=%v disconnected=%v", connected, disconnected)
	}
	if ids := p.Controllers(); len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("Controllers = %v", ids)
	}
	if _, ok := p.Gamepad(3); !ok {
		t.Fatal("gamepad 3 not readable")
	}
}

func TestDisplays(t *testing.T) {
	d := platformtest.NewDriver()
	p := platform.New(d)
	if _, err := p.Displays(); !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("Displays before init = %v", err)
	}
	if err := p.Initialize(); err != nil {
		t.Fatal(err)
	}
	displays, err := p.Displays()
	if err != nil || len(displays) != 1 || !displays[0].Primary {
		t.Fatalf("Displays = %v, %v", displays, err)
	}
}

func TestParseWindowMode(t *testing.T) {
	for m := platform.WindowModeWindowed; m <= platform.WindowModeBorderless; m++ {
		got, err := platform.ParseWindowMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseWindowMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := platform.ParseWindowMode("fullscreen-ish"); err == nil {
		t.Fatal("expected error")
	}
}
