package engine

import (
	"math"
	"testing"
)

func TestFixedTicker(t *testing.T) {
	tests := []struct {
		name      string
		deltas    []float64
		ticks     int
		remainder float64
	}{
		{"carries remainder", []float64{0.35}, 3, 0.05},
		{"exact multiple", []float64{0.3}, 3, 0},
		{"accumulates small frames", []float64{0.04, 0.04, 0.04}, 1, 0.02},
		{"no full step", []float64{0.09}, 0, 0.09},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := NewFixedTicker(0.1)
			ticks := 0
			for _, d := range tt.deltas {
				ticker.Advance(d, func(step float64) {
					if step != 0.1 {
						t.Fatalf("step = %v", step)
					}
					ticks++
				})
			}
			if ticks != tt.ticks {
				t.Fatalf("ticks = %d, want %d", ticks, tt.ticks)
			}
			if math.Abs(ticker.Remainder()-tt.remainder) > 1e-9 {
				t.Fatalf("remainder = %v, want %v", ticker.Remainder(), tt.remainder)
			}
		})
	}
}
