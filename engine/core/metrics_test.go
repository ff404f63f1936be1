package core

import (
	"math"
	"testing"
)

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < AVG_COUNT-1; i++ {
		m.Update(0.010)
	}
	if m.FrameTime() != 0 {
		t.Fatalf("average published before window filled: %v", m.FrameTime())
	}

	m.Update(0.010)
	if got := m.FrameTime(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("FrameTime = %v, want 10", got)
	}

	// push a full window of 20ms frames
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.020)
	}
	if got := m.FrameTime(); math.Abs(got-20) > 1e-6 {
		t.Fatalf("FrameTime = %v, want 20", got)
	}
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()

	// 101 frames of 10ms cross the one second boundary on the last one
	for i := 0; i < 101; i++ {
		m.Update(0.010)
	}
	if got := m.FPSValue(); got != 100 {
		t.Fatalf("FPS = %v, want 100", got)
	}
}
