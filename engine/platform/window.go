package platform

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/kiln/engine/core"
)

type WindowMode uint8

const (
	WindowModeWindowed WindowMode = iota
	// WindowModeWindowedNoResize keeps the frame but disables resizing and maximizing.
	WindowModeWindowedNoResize
	// WindowModeWindowedNoDragSize keeps maximize but disables drag resizing.
	WindowModeWindowedNoDragSize
	WindowModeBorderless
)

func (m WindowMode) String() string {
	switch m {
	case WindowModeWindowed:
		return "windowed"
	case WindowModeWindowedNoResize:
		return "windowed-no-resize"
	case WindowModeWindowedNoDragSize:
		return "windowed-no-drag-size"
	case WindowModeBorderless:
		return "borderless"
	}
	return fmt.Sprintf("WindowMode(%d)", uint8(m))
}

// ParseWindowMode is the inverse of WindowMode.String.
func ParseWindowMode(s string) (WindowMode, error) {
	for m := WindowModeWindowed; m <= WindowModeBorderless; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return WindowModeWindowed, fmt.Errorf("unknown window mode %q", s)
}

// WindowDesc describes a window before it is created.
type WindowDesc struct {
	Title      string
	ClassName  string
	X, Y       int
	Width      uint32
	Height     uint32
	Mode       WindowMode
	Fullscreen bool
}

type WindowState uint8

const (
	WindowStateUninitialized WindowState = iota
	WindowStateInitialized
	WindowStateShutdown
)

var (
	ErrWindowState = errors.New("window is in the wrong state")
	ErrClassInUse  = errors.New("window class already registered")
)

// Window is a native window plus the callbacks the engine and titles listen
// to. It is driven by Initialize, Shutdown and Reset in that order.
type Window struct {
	desc     WindowDesc
	platform *Platform
	native   NativeWindow
	state    WindowState

	width, height uint32
	minimized     bool
	maximized     bool
	focused       bool

	hasCursor    bool
	lastX, lastY float64
	mouseDX      float64
	mouseDY      float64
	wheelUp      bool
	wheelDown    bool

	Destroyed     core.Signal
	Closed        core.Signal
	FocusLost     core.Signal
	FocusReceived core.Signal
	EnterSizeMove core.Signal
	ExitSizeMove  core.Signal
	Minimized     core.Signal
	Maximized     core.Signal
	Restored      core.Signal
	// Resized fires only when the render-area size actually changes.
	Resized       core.Callback[Size]
	KeyboardInput core.Callback[core.KeyInput]
	MouseInput    core.Callback[MouseInput]
}

// NewWindow describes a window owned by p. Nothing native is created until
// Initialize.
func (p *Platform) NewWindow(desc WindowDesc) *Window {
	if desc.ClassName == "" {
		desc.ClassName = "KilnWindow-" + uuid.NewString()
	}
	return &Window{desc: desc, platform: p}
}

func (w *Window) Desc() WindowDesc       { return w.desc }
func (w *Window) State() WindowState     { return w.state }
func (w *Window) IsMinimized() bool      { return w.minimized }
func (w *Window) IsMaximized() bool      { return w.maximized }
func (w *Window) IsFocused() bool        { return w.focused }
func (w *Window) Size() (uint32, uint32) { return w.width, w.height }

// Initialize registers the window class, creates the native window and shows it.
func (w *Window) Initialize() error {
	if w.state != WindowStateUninitialized {
		return fmt.Errorf("initialize window %q: %w", w.desc.Title, ErrWindowState)
	}
	if err := w.platform.registerClass(w.desc.ClassName); err != nil {
		core.LogError("failed to register window class %s: %s", w.desc.ClassName, err)
		return err
	}

	native, err := w.platform.driver.CreateWindow(w.desc, w)
	if err != nil {
		core.LogError("failed to create window %q: %s", w.desc.Title, err)
		if uerr := w.platform.unregisterClass(w.desc.ClassName); uerr != nil {
			err = errors.Join(err, uerr)
		}
		return err
	}
	w.native = native
	w.width, w.height = native.FramebufferSize()
	w.native.Show()
	w.focused = true
	w.state = WindowStateInitialized
	w.platform.addWindow(w)

	core.LogInfo("window %q created (%dx%d, %s)", w.desc.Title, w.width, w.height, w.desc.Mode)
	return nil
}

// Shutdown destroys the native window and unregisters its class. Both steps
// are attempted; any failure is returned.
func (w *Window) Shutdown() error {
	if w.state != WindowStateInitialized {
		return fmt.Errorf("shutdown window %q: %w", w.desc.Title, ErrWindowState)
	}
	w.platform.removeWindow(w)

	var errs []error
	if err := w.native.Destroy(); err != nil {
		errs = append(errs, fmt.Errorf("destroy native window: %w", err))
	} else {
		w.Destroyed.Call()
	}
	if err := w.platform.unregisterClass(w.desc.ClassName); err != nil {
		errs = append(errs, fmt.Errorf("unregister window class: %w", err))
	}
	w.state = WindowStateShutdown

	if err := errors.Join(errs...); err != nil {
		core.LogError("failed to shut down window %q: %s", w.desc.Title, err)
		return err
	}
	return nil
}

// Reset clears the native handle so the window can be initialized again.
func (w *Window) Reset() error {
	if w.state != WindowStateShutdown {
		return fmt.Errorf("reset window %q: %w", w.desc.Title, ErrWindowState)
	}
	w.native = nil
	w.width, w.height = 0, 0
	w.minimized, w.maximized, w.focused = false, false, false
	w.hasCursor = false
	w.state = WindowStateUninitialized
	return nil
}

func (w *Window) SetTitle(title string) {
	w.desc.Title = title
	if w.native != nil {
		w.native.SetTitle(title)
	}
}

// FramebufferSize returns the render-area size in pixels.
func (w *Window) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

// NativeHandle returns the windowing library object, nil before Initialize.
func (w *Window) NativeHandle() any {
	if w.native == nil {
		return nil
	}
	return w.native.Handle()
}

func (w *Window) HandleClose() {
	w.Closed.Call()
}

func (w *Window) HandleFocus(focused bool) {
	if focused == w.focused {
		return
	}
	w.focused = focused
	if focused {
		w.FocusReceived.Call()
	} else {
		w.hasCursor = false
		w.FocusLost.Call()
	}
}

func (w *Window) HandleResize(width, height uint32) {
	// a minimized window reports a zero area; keep the last real size
	if width == 0 || height == 0 {
		return
	}
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.Resized.Call(Size{Width: width, Height: height})
}

func (w *Window) HandleIconify(iconified bool) {
	if iconified == w.minimized {
		return
	}
	w.minimized = iconified
	if iconified {
		w.Minimized.Call()
	} else {
		w.Restored.Call()
	}
}

func (w *Window) HandleMaximize(maximized bool) {
	if maximized == w.maximized {
		return
	}
	w.maximized = maximized
	if maximized {
		w.Maximized.Call()
	} else {
		w.Restored.Call()
	}
}

func (w *Window) HandleSizeMove(entering bool) {
	if entering {
		w.EnterSizeMove.Call()
	} else {
		w.ExitSizeMove.Call()
	}
}

func (w *Window) HandleKey(key core.KeyCode, pressed, repeat bool) {
	if !core.IsKeyboardKey(key) {
		return
	}
	value := float32(0)
	if pressed {
		value = 1
	}
	w.KeyboardInput.Call(core.KeyInput{Key: key, IsRepeat: repeat, Value: value})
}

func (w *Window) HandleMouseButton(key core.KeyCode, pressed bool) {
	if !core.IsMouseKey(key) {
		return
	}
	value := float32(0)
	if pressed {
		value = 1
	}
	w.MouseInput.Call(MouseInput{Key: key, Value: value})
}

func (w *Window) HandleMouseMove(x, y float64) {
	if w.hasCursor {
		w.mouseDX += x - w.lastX
		w.mouseDY += y - w.lastY
	}
	w.lastX, w.lastY = x, y
	w.hasCursor = true
}

func (w *Window) HandleScroll(yOffset float64) {
	switch {
	case yOffset > 0:
		w.wheelUp = true
	case yOffset < 0:
		w.wheelDown = true
	}
}

// flushInput publishes the per-tick mouse movement and wheel pulses.
func (w *Window) flushInput() {
	if w.mouseDX != 0 {
		w.MouseInput.Call(MouseInput{Key: core.MOUSE_X, Value: float32(w.mouseDX)})
	}
	if w.mouseDY != 0 {
		w.MouseInput.Call(MouseInput{Key: core.MOUSE_Y, Value: float32(w.mouseDY)})
	}
	if w.wheelUp {
		w.MouseInput.Call(MouseInput{Key: core.MOUSE_WHEEL_UP, Value: 1})
	}
	if w.wheelDown {
		w.MouseInput.Call(MouseInput{Key: core.MOUSE_WHEEL_DOWN, Value: 1})
	}
	w.mouseDX, w.mouseDY = 0, 0
	w.wheelUp, w.wheelDown = false, false
}
