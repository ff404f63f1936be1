package core

import "github.com/spaghettifunk/kiln/engine/containers"

const AVG_COUNT = 30

// Metrics tracks a rolling average of frame times and the frames per second.
type Metrics struct {
	frameTimes         *containers.RingQueue[float64]
	windowSumMS        float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records the duration of one frame in seconds.
func (m *Metrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0

	if old, dropped := m.frameTimes.Push(frameMS); dropped {
		m.windowSumMS -= old
	}
	m.windowSumMS += frameMS
	if m.frameTimes.IsFull() {
		m.MSavg = m.windowSumMS / float64(AVG_COUNT)
	}

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

func (m *Metrics) FPSValue() float64 {
	return m.FPS
}

// FrameTime returns the average frame time in milliseconds over the last
// AVG_COUNT frames. It stays zero until the window has filled once.
func (m *Metrics) FrameTime() float64 {
	return m.MSavg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.MSavg
}
