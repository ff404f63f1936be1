// Package glfwdriver implements the platform driver on top of GLFW.
package glfwdriver

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Driver is a platform.Driver backed by GLFW. Windows are created without a
// client API so Vulkan and WebGPU can present to them.
type Driver struct {
	controllerFn func(id int, connected bool)
}

func New() *Driver {
	return &Driver{}
}

func (d *Driver) Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	glfw.SetJoystickCallback(d.onJoystick)
	return nil
}

func (d *Driver) Terminate() error {
	glfw.SetJoystickCallback(nil)
	glfw.Terminate()
	return nil
}

func (d *Driver) PollEvents() {
	glfw.PollEvents()
}

func (d *Driver) CreateWindow(desc platform.WindowDesc, sink platform.EventSink) (platform.NativeWindow, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)

	switch desc.Mode {
	case platform.WindowModeWindowed:
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Decorated, glfw.True)
	case platform.WindowModeWindowedNoResize, platform.WindowModeWindowedNoDragSize:
		// GLFW ties maximizing to resizability, so both modes lock the frame
		glfw.WindowHint(glfw.Resizable, glfw.False)
		glfw.WindowHint(glfw.Decorated, glfw.True)
	case platform.WindowModeBorderless:
		glfw.WindowHint(glfw.Resizable, glfw.False)
		glfw.WindowHint(glfw.Decorated, glfw.False)
	}

	width, height := int(desc.Width), int(desc.Height)
	var monitor *glfw.Monitor
	if desc.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			if mode := monitor.GetVideoMode(); mode != nil {
				width, height = mode.Width, mode.Height
			}
		}
	}

	win, err := glfw.CreateWindow(width, height, desc.Title, monitor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	if monitor == nil {
		win.SetPos(desc.X, desc.Y)
	}

	w := &window{win: win}
	w.bind(sink)
	return w, nil
}

func (d *Driver) Displays() ([]platform.Display, error) {
	primary := glfw.GetPrimaryMonitor()
	monitors := glfw.GetMonitors()
	displays := make([]platform.Display, 0, len(monitors))
	for _, m := range monitors {
		x, y := m.GetPos()
		disp := platform.Display{
			Name:    m.GetName(),
			X:       x,
			Y:       y,
			Primary: m == primary,
		}
		if mode := m.GetVideoMode(); mode != nil {
			disp.Width = mode.Width
			disp.Height = mode.Height
			disp.RefreshRate = mode.RefreshRate
		}
		displays = append(displays, disp)
	}
	return displays, nil
}

func (d *Driver) SetControllerCallback(fn func(id int, connected bool)) {
	d.controllerFn = fn
	if fn == nil {
		return
	}
	// controllers plugged in before startup do not raise events
	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		if joy.Present() && joy.IsGamepad() {
			fn(int(joy), true)
		}
	}
}

func (d *Driver) Gamepad(id int) (core.GamepadState, bool) {
	var out core.GamepadState
	joy := glfw.Joystick(id)
	if !joy.Present() || !joy.IsGamepad() {
		return out, false
	}
	state := joy.GetGamepadState()
	if state == nil {
		return out, false
	}
	for i := range out.Buttons {
		out.Buttons[i] = state.Buttons[i] == glfw.Press
	}
	for i := range out.Axes {
		out.Axes[i] = state.Axes[i]
	}
	return out, true
}

func (d *Driver) onJoystick(joy glfw.Joystick, event glfw.PeripheralEvent) {
	if d.controllerFn == nil {
		return
	}
	switch event {
	case glfw.Connected:
		if joy.IsGamepad() {
			d.controllerFn(int(joy), true)
		}
	case glfw.Disconnected:
		d.controllerFn(int(joy), false)
	}
}
