//go:build release

package core

import "io"

// DebugBuild enables graphics validation layers and logging.
const DebugBuild = false

// release builds strip logging entirely
func logOutput(io.Writer) io.Writer { return io.Discard }
