//go:build !release

package core

import "io"

// DebugBuild enables graphics validation layers and logging.
const DebugBuild = true

func logOutput(w io.Writer) io.Writer { return w }
