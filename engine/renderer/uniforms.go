package renderer

import (
	"errors"
	"fmt"
)

// ErrUniformsExhausted is returned when a frame records more draws than the
// per-frame uniform arena has slots for.
var ErrUniformsExhausted = errors.New("per-frame uniform slots exhausted")

// MaxDrawsPerFrame bounds the object and material blocks a context can stage
// in one frame.
const MaxDrawsPerFrame = 1024

// UniformSlots hands out fixed size, aligned slots of a uniform arena. The
// backends bind one arena with a dynamic offset and write each draw's block
// into the next slot, so every draw of a frame keeps its own data.
type UniformSlots struct {
	stride   uint64
	capacity uint32
	used     uint32
}

// NewUniformSlots lays out capacity slots able to hold blockSize bytes, each
// starting on a multiple of alignment.
func NewUniformSlots(blockSize, alignment uint64, capacity uint32) UniformSlots {
	if alignment == 0 {
		alignment = 1
	}
	stride := (blockSize + alignment - 1) / alignment * alignment
	return UniformSlots{stride: stride, capacity: capacity}
}

// Next reserves the next slot and returns its byte offset.
func (s *UniformSlots) Next() (uint64, error) {
	if s.used >= s.capacity {
		return 0, fmt.Errorf("%d slots in use: %w", s.used, ErrUniformsExhausted)
	}
	off := uint64(s.used) * s.stride
	s.used++
	return off, nil
}

// Reset makes every slot available again. It is called at frame start.
func (s *UniformSlots) Reset() { s.used = 0 }

func (s UniformSlots) Used() uint32     { return s.used }
func (s UniformSlots) Stride() uint64   { return s.stride }
func (s UniformSlots) Capacity() uint32 { return s.capacity }

// Size is the number of bytes the whole arena occupies.
func (s UniformSlots) Size() uint64 { return s.stride * uint64(s.capacity) }
