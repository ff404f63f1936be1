//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/kiln/engine/renderer/shaders"
	"github.com/spaghettifunk/kiln/engine/serialization"
)

const (
	binDir    = "bin"
	shaderOut = "bin/shaders"
)

type Build mg.Namespace

// Vulkan builds the engine with the Vulkan backend.
func (Build) Vulkan() error {
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join(binDir, "kiln"), "."), withStream())
	return err
}

// WebGPU builds the engine with the WebGPU backend.
func (Build) WebGPU() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "webgpu", "-o", filepath.Join(binDir, "kiln-webgpu"), "."), withStream())
	return err
}

// Release builds the Vulkan engine with logging stripped.
func (Build) Release() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "release", "-trimpath", "-o", filepath.Join(binDir, "kiln"), "."), withStream())
	return err
}

// Shaders compiles the embedded WGSL mesh shader to SPIR-V so it can be
// inspected with spirv-dis. The engine itself compiles at startup.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOut, 0o755); err != nil {
		return err
	}
	for _, debug := range []bool{false, true} {
		code, err := shaders.MeshSPIRV(debug)
		if err != nil {
			return fmt.Errorf("compile mesh shader: %w", err)
		}
		name := "mesh.spv"
		if debug {
			name = "mesh.debug.spv"
		}
		path := filepath.Join(shaderOut, name)
		data := serialization.UInt32ArrayToBytes(code, serialization.LittleEndian)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d words)\n", path, len(code))
	}
	return nil
}
