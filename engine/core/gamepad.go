package core

// Gamepad buttons in standard mapping order.
const (
	GamepadButtonA = iota
	GamepadButtonB
	GamepadButtonX
	GamepadButtonY
	GamepadButtonLeftBumper
	GamepadButtonRightBumper
	GamepadButtonBack
	GamepadButtonStart
	GamepadButtonGuide
	GamepadButtonLeftThumb
	GamepadButtonRightThumb
	GamepadButtonDpadUp
	GamepadButtonDpadRight
	GamepadButtonDpadDown
	GamepadButtonDpadLeft
	GamepadButtonCount
)

// Gamepad axes in standard mapping order. Sticks range over [-1, 1] with
// negative Y pointing up; triggers range over [-1, 1] from released to fully
// pressed.
const (
	GamepadAxisLeftX = iota
	GamepadAxisLeftY
	GamepadAxisRightX
	GamepadAxisRightY
	GamepadAxisLeftTrigger
	GamepadAxisRightTrigger
	GamepadAxisCount
)

// GamepadState is a snapshot of one controller.
type GamepadState struct {
	Buttons [GamepadButtonCount]bool
	Axes    [GamepadAxisCount]float32
}

const stickMagnitude = 32767

// digitalStick thresholds an analog stick axis into -1, 0 or 1.
func digitalStick(axis float32) float32 {
	if axis > 1 {
		axis = 1
	} else if axis < -1 {
		axis = -1
	}
	raw := int16(axis * stickMagnitude)
	// TODO(input): integer division only reaches ±1 at full deflection; replace
	// with a configurable deadzone threshold once titles need partial tilt.
	return float32(raw / stickMagnitude)
}

func positive(v float32) float32 {
	if v > 0 {
		return v
	}
	return 0
}

// Value returns the state of a gamepad key: 0 or 1 for buttons and digital
// stick directions, [0, 1] for triggers and [-1, 1] for stick axes.
// Non-gamepad keys report 0.
func (g GamepadState) Value(key KeyCode) float32 {
	if key >= GAMEPAD_A && key <= GAMEPAD_DPAD_LEFT {
		if g.Buttons[key-GAMEPAD_A] {
			return 1
		}
		return 0
	}
	switch key {
	case GAMEPAD_LEFT_TRIGGER:
		return (g.Axes[GamepadAxisLeftTrigger] + 1) / 2
	case GAMEPAD_RIGHT_TRIGGER:
		return (g.Axes[GamepadAxisRightTrigger] + 1) / 2
	case GAMEPAD_LEFT_STICK_X:
		return g.Axes[GamepadAxisLeftX]
	case GAMEPAD_LEFT_STICK_Y:
		return g.Axes[GamepadAxisLeftY]
	case GAMEPAD_RIGHT_STICK_X:
		return g.Axes[GamepadAxisRightX]
	case GAMEPAD_RIGHT_STICK_Y:
		return g.Axes[GamepadAxisRightY]
	case GAMEPAD_LEFT_STICK_UP:
		return positive(-digitalStick(g.Axes[GamepadAxisLeftY]))
	case GAMEPAD_LEFT_STICK_DOWN:
		return positive(digitalStick(g.Axes[GamepadAxisLeftY]))
	case GAMEPAD_LEFT_STICK_LEFT:
		return positive(-digitalStick(g.Axes[GamepadAxisLeftX]))
	case GAMEPAD_LEFT_STICK_RIGHT:
		return positive(digitalStick(g.Axes[GamepadAxisLeftX]))
	case GAMEPAD_RIGHT_STICK_UP:
		return positive(-digitalStick(g.Axes[GamepadAxisRightY]))
	case GAMEPAD_RIGHT_STICK_DOWN:
		return positive(digitalStick(g.Axes[GamepadAxisRightY]))
	case GAMEPAD_RIGHT_STICK_LEFT:
		return positive(-digitalStick(g.Axes[GamepadAxisRightX]))
	case GAMEPAD_RIGHT_STICK_RIGHT:
		return positive(digitalStick(g.Axes[GamepadAxisRightX]))
	}
	return 0
}
