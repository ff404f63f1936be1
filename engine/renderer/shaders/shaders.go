// Package shaders holds the WGSL mesh shader shared by every backend. The
// WebGPU backend consumes the source directly; the Vulkan backend compiles it
// to SPIR-V at startup.
package shaders

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed mesh.wgsl
var MeshSource string

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	ObjectBinding   = 0
	MaterialBinding = 1
)

// VertexAttribute describes one shader input inside the interleaved vertex
// layout of math.Vertex3D.
type VertexAttribute struct {
	Location   uint32
	Offset     uint32
	Components uint32
}

// VertexStride is the byte distance between two vertices.
const VertexStride = (3 + 3 + 2 + 4 + 3) * 4

// VertexLayout is the input layout of the mesh shader: position, normal,
// texcoord, colour and tangent.
var VertexLayout = []VertexAttribute{
	{Location: 0, Offset: 0, Components: 3},
	{Location: 1, Offset: 12, Components: 3},
	{Location: 2, Offset: 24, Components: 2},
	{Location: 3, Offset: 32, Components: 4},
	{Location: 4, Offset: 48, Components: 3},
}

const spirvMagic = 0x07230203

// CompileSPIRV compiles source to SPIR-V words.
func CompileSPIRV(source string, debug bool) ([]uint32, error) {
	opts := naga.DefaultOptions()
	opts.Debug = debug
	code, err := naga.CompileWithOptions(source, opts)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(code)%4 != 0 || len(code) < 20 {
		return nil, fmt.Errorf("compile shader: malformed SPIR-V of %d bytes", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("compile shader: bad SPIR-V magic %#08x", words[0])
	}
	return words, nil
}

// MeshSPIRV compiles the embedded mesh shader.
func MeshSPIRV(debug bool) ([]uint32, error) {
	return CompileSPIRV(MeshSource, debug)
}

// EntryPoints lists the entry points declared by source.
func EntryPoints(source string) ([]string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		names = append(names, ep.Name)
	}
	return names, nil
}
