// Package platform owns the native windows, the event pump and the timing
// source of the engine. The native side is reached through a Driver so the
// rest of the engine never talks to the windowing library directly.
package platform

import "github.com/spaghettifunk/kiln/engine/core"

// Driver is the native windowing and input backend.
type Driver interface {
	Init() error
	Terminate() error
	// PollEvents processes pending native events without blocking. Callbacks
	// on the EventSinks of created windows run during this call.
	PollEvents()
	CreateWindow(desc WindowDesc, sink EventSink) (NativeWindow, error)
	Displays() ([]Display, error)
	// SetControllerCallback installs the receiver for controller
	// connect/disconnect notifications.
	SetControllerCallback(fn func(id int, connected bool))
	Gamepad(id int) (core.GamepadState, bool)
}

// NativeWindow is one window created by a Driver.
type NativeWindow interface {
	Show()
	Destroy() error
	FramebufferSize() (width, height uint32)
	SetCursorMode(mode CursorMode)
	SetTitle(title string)
	// Handle exposes the library object so graphics backends can build a
	// presentation surface from it.
	Handle() any
}

// EventSink receives the native events of one window.
type EventSink interface {
	HandleClose()
	HandleFocus(focused bool)
	HandleResize(width, height uint32)
	HandleIconify(iconified bool)
	HandleMaximize(maximized bool)
	HandleSizeMove(entering bool)
	HandleKey(key core.KeyCode, pressed, repeat bool)
	HandleMouseButton(key core.KeyCode, pressed bool)
	HandleMouseMove(x, y float64)
	HandleScroll(yOffset float64)
}

type CursorMode uint8

const (
	CursorNormal CursorMode = iota
	CursorHidden
	// CursorCaptured hides the cursor and confines it to the render area.
	CursorCaptured
)

// Display describes a connected monitor.
type Display struct {
	Name        string
	X, Y        int
	Width       int
	Height      int
	RefreshRate int
	Primary     bool
}
