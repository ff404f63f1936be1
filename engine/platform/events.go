package platform

import "github.com/spaghettifunk/kiln/engine/core"

// Size is the render-area size carried by resize notifications.
type Size struct {
	Width  uint32
	Height uint32
}

// MouseInput is a button state (0 or 1), a one-shot wheel pulse of 1, or a raw
// signed movement delta for MOUSE_X and MOUSE_Y.
type MouseInput struct {
	Key   core.KeyCode
	Value float32
}
