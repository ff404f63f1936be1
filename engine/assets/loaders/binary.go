package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/kiln/engine/serialization"
)

// LoadBinary reads a file as is.
func LoadBinary(path string) ([]byte, error) {
	return serialization.ReadFile(path)
}

// LoadSPIRV reads a compiled SPIR-V module as little endian words.
func LoadSPIRV(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := serialization.BytesToUInt32Array(data, serialization.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("spir-v %s: %w", path, err)
	}
	const spirvMagic = 0x07230203
	if len(words) == 0 || words[0] != spirvMagic {
		return nil, fmt.Errorf("spir-v %s: bad magic number", path)
	}
	return words, nil
}
