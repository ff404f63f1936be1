// Package serialization converts between values and their byte encodings and
// wraps the small set of file operations the engine needs.
package serialization

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Endianness selects the byte order of an encoding.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

func (e Endianness) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// UInt32ToBytes encodes value with the given byte order.
func UInt32ToBytes(value uint32, endianness Endianness) [4]byte {
	var out [4]byte
	endianness.order().PutUint32(out[:], value)
	return out
}

// BytesToUInt32 decodes four bytes with the given byte order.
func BytesToUInt32(b [4]byte, endianness Endianness) uint32 {
	return endianness.order().Uint32(b[:])
}

// UInt32ArrayToBytes encodes every value in order.
func UInt32ArrayToBytes(values []uint32, endianness Endianness) []byte {
	out := make([]byte, len(values)*4)
	order := endianness.order()
	for i, v := range values {
		order.PutUint32(out[i*4:], v)
	}
	return out
}

// BytesToUInt32Array decodes a buffer whose length is a multiple of four.
func BytesToUInt32Array(data []byte, endianness Endianness) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("buffer of %d bytes is not a whole number of 32-bit words", len(data))
	}
	order := endianness.order()
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = order.Uint32(data[i*4:])
	}
	return out, nil
}

// Float32ArrayToBytes encodes IEEE-754 floats in order.
func Float32ArrayToBytes(values []float32, endianness Endianness) []byte {
	out := make([]byte, len(values)*4)
	order := endianness.order()
	for i, v := range values {
		order.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// StructToBytes encodes a fixed-size value with encoding/binary rules. Blank
// padding fields are written as zeros.
func StructToBytes(v any, endianness Endianness) ([]byte, error) {
	return binary.Append(nil, endianness.order(), v)
}
