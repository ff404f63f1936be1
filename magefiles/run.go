//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Engine runs the testbed on the Vulkan backend.
func (Run) Engine() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml"), withStream())
	return err
}

// WebGPU runs the testbed on the WebGPU backend.
func (Run) WebGPU() error {
	fmt.Println("Run engine (webgpu)...")
	_, err := executeCmd("go", withArgs("run", "-tags", "webgpu", ".", "-config", "config.toml"), withStream())
	return err
}
