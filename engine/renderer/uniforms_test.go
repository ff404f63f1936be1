package renderer

import (
	"errors"
	"testing"
)

func TestUniformSlotsLayout(t *testing.T) {
	tests := []struct {
		name      string
		block     uint64
		alignment uint64
		capacity  uint32
		stride    uint64
	}{
		{"object block", ObjectDataSize, 256, 4, 256},
		{"material block", MaterialDataSize, 256, 4, 256},
		{"small alignment", MaterialDataSize, 16, 4, 48},
		{"odd size", 50, 64, 2, 64},
		{"zero alignment", 50, 0, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUniformSlots(tt.block, tt.alignment, tt.capacity)
			if s.Stride() != tt.stride {
				t.Fatalf("stride = %d, want %d", s.Stride(), tt.stride)
			}
			if s.Size() != tt.stride*uint64(tt.capacity) {
				t.Fatalf("size = %d, want %d", s.Size(), tt.stride*uint64(tt.capacity))
			}
		})
	}
}

func TestUniformSlotsNextAndReset(t *testing.T) {
	s := NewUniformSlots(ObjectDataSize, 256, 3)
	for i := uint64(0); i < 3; i++ {
		off, err := s.Next()
		if err != nil {
			t.Fatalf("slot %d: %v", i, err)
		}
		if off != i*256 {
			t.Fatalf("slot %d offset = %d, want %d", i, off, i*256)
		}
	}
	if _, err := s.Next(); !errors.Is(err, ErrUniformsExhausted) {
		t.Fatalf("err = %v, want ErrUniformsExhausted", err)
	}
	if s.Used() != 3 {
		t.Fatalf("used = %d, want 3", s.Used())
	}

	s.Reset()
	off, err := s.Next()
	if err != nil || off != 0 {
		t.Fatalf("after reset: offset %d err %v", off, err)
	}
}
