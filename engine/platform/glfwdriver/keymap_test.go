package glfwdriver

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/kiln/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		in   glfw.Key
		want core.KeyCode
		ok   bool
	}{
		{glfw.KeyA, core.KEY_A, true},
		{glfw.KeyW, core.KEY_W, true},
		{glfw.Key7, core.KEY_7, true},
		{glfw.KeyF12, core.KEY_F12, true},
		{glfw.KeyEscape, core.KEY_ESCAPE, true},
		{glfw.KeyLeftShift, core.KEY_LSHIFT, true},
		{glfw.KeyWorld1, 0, false},
	}
	for _, tt := range tests {
		got, ok := translateKey(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("translateKey(%d) = (%#x, %v), want (%#x, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTranslateMouseButton(t *testing.T) {
	if got, ok := translateMouseButton(glfw.MouseButtonRight); !ok || got != core.MOUSE_RIGHT {
		t.Fatalf("right button = %#x, %v", got, ok)
	}
	if _, ok := translateMouseButton(glfw.MouseButton8); ok {
		t.Fatal("button 8 should not map")
	}
}
