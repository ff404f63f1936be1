package engine

// DefaultFixedTimestep is the FixedTick step in seconds.
const DefaultFixedTimestep = 0.1

// slack absorbs float error so that an exact multiple of the step is not
// short by one tick.
const slack = 1e-9

// FixedTicker converts variable frame deltas into whole fixed steps and
// carries the remainder to the next frame.
type FixedTicker struct {
	step        float64
	accumulated float64
}

func NewFixedTicker(step float64) *FixedTicker {
	return &FixedTicker{step: step}
}

func (t *FixedTicker) Step() float64 { return t.step }

// Remainder is the time accumulated towards the next step.
func (t *FixedTicker) Remainder() float64 { return t.accumulated }

// Advance adds delta seconds and calls fn once per full step. It returns the
// number of steps taken.
func (t *FixedTicker) Advance(delta float64, fn func(step float64)) int {
	t.accumulated += delta
	n := 0
	for t.accumulated+slack >= t.step {
		t.accumulated -= t.step
		fn(t.step)
		n++
	}
	if t.accumulated < 0 {
		t.accumulated = 0
	}
	return n
}

func (t *FixedTicker) Reset() { t.accumulated = 0 }
