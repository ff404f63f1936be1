//go:build !webgpu

package main

import (
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/vulkan"
)

func newDevice() renderer.Device { return vulkan.NewDevice() }
