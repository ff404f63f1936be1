// Package platformtest provides an in-memory platform.Driver for tests.
package platformtest

import (
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
)

// Driver records calls and lets tests inject native events. Events queued with
// Queue are delivered on the next PollEvents.
type Driver struct {
	InitErr      error
	TerminateErr error
	CreateErr    error
	DestroyErr   error

	Initialized bool
	Terminated  bool
	Polls       int
	Windows     []*Window
	Monitors    []platform.Display
	Pads        map[int]core.GamepadState

	controllerFn func(id int, connected bool)
	pending      []func()
}

func NewDriver() *Driver {
	return &Driver{
		Monitors: []platform.Display{{Name: "fake", Width: 1920, Height: 1080, RefreshRate: 60, Primary: true}},
		Pads:     make(map[int]core.GamepadState),
	}
}

func (d *Driver) Init() error {
	if d.InitErr != nil {
		return d.InitErr
	}
	d.Initialized = true
	return nil
}

func (d *Driver) Terminate() error {
	d.Terminated = true
	return d.TerminateErr
}

func (d *Driver) PollEvents() {
	d.Polls++
	events := d.pending
	d.pending = nil
	for _, fn := range events {
		fn()
	}
}

// Queue schedules fn to run inside the next PollEvents.
func (d *Driver) Queue(fn func()) {
	d.pending = append(d.pending, fn)
}

func (d *Driver) CreateWindow(desc platform.WindowDesc, sink platform.EventSink) (platform.NativeWindow, error) {
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	w := &Window{Desc: desc, Sink: sink, Width: desc.Width, Height: desc.Height, driver: d}
	d.Windows = append(d.Windows, w)
	return w, nil
}

func (d *Driver) Displays() ([]platform.Display, error) {
	return d.Monitors, nil
}

func (d *Driver) SetControllerCallback(fn func(id int, connected bool)) {
	d.controllerFn = fn
}

// ConnectController simulates a controller being plugged in or removed.
func (d *Driver) ConnectController(id int, connected bool) {
	if connected {
		if _, ok := d.Pads[id]; !ok {
			d.Pads[id] = core.GamepadState{}
		}
	} else {
		delete(d.Pads, id)
	}
	if d.controllerFn != nil {
		d.controllerFn(id, connected)
	}
}

func (d *Driver) Gamepad(id int) (core.GamepadState, bool) {
	s, ok := d.Pads[id]
	return s, ok
}

// Window is the fake native window.
type Window struct {
	Desc       platform.WindowDesc
	Sink       platform.EventSink
	Width      uint32
	Height     uint32
	Shown      bool
	Destroyed  bool
	CursorMode platform.CursorMode

	driver *Driver
}

func (w *Window) Show() { w.Shown = true }

func (w *Window) Destroy() error {
	if w.driver.DestroyErr != nil {
		return w.driver.DestroyErr
	}
	w.Destroyed = true
	return nil
}

func (w *Window) FramebufferSize() (uint32, uint32) { return w.Width, w.Height }

func (w *Window) SetCursorMode(mode platform.CursorMode) { w.CursorMode = mode }

func (w *Window) SetTitle(title string) { w.Desc.Title = title }

func (w *Window) Handle() any { return w }

// Resize changes the framebuffer size and reports it to the sink.
func (w *Window) Resize(width, height uint32) {
	w.Width, w.Height = width, height
	w.Sink.HandleResize(width, height)
}
