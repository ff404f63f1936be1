package glfwdriver

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/kiln/engine/platform"
)

type window struct {
	win *glfw.Window
}

func (w *window) bind(sink platform.EventSink) {
	w.win.SetCloseCallback(func(gw *glfw.Window) {
		// the engine decides when to exit
		gw.SetShouldClose(false)
		sink.HandleClose()
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		sink.HandleFocus(focused)
	})
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width < 0 || height < 0 {
			return
		}
		sink.HandleResize(uint32(width), uint32(height))
	})
	w.win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		sink.HandleIconify(iconified)
	})
	w.win.SetMaximizeCallback(func(_ *glfw.Window, maximized bool) {
		sink.HandleMaximize(maximized)
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		code, ok := translateKey(key)
		if !ok {
			return
		}
		sink.HandleKey(code, action != glfw.Release, action == glfw.Repeat)
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		code, ok := translateMouseButton(button)
		if !ok {
			return
		}
		sink.HandleMouseButton(code, action == glfw.Press)
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		sink.HandleMouseMove(x, y)
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		sink.HandleScroll(yoff)
	})
}

func (w *window) Show() {
	w.win.Show()
}

func (w *window) Destroy() error {
	w.win.Destroy()
	return nil
}

func (w *window) FramebufferSize() (uint32, uint32) {
	width, height := w.win.GetFramebufferSize()
	return uint32(max(width, 0)), uint32(max(height, 0))
}

func (w *window) SetCursorMode(mode platform.CursorMode) {
	switch mode {
	case platform.CursorNormal:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	case platform.CursorHidden:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
	case platform.CursorCaptured:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			w.win.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
	}
}

func (w *window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Handle returns the *glfw.Window, which graphics backends use to create
// their presentation surface.
func (w *window) Handle() any {
	return w.win
}
