//go:build webgpu

package main

import (
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/webgpu"
)

func newDevice() renderer.Device { return webgpu.NewDevice() }
