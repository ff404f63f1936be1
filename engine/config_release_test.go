//go:build release

package engine

import (
	"strings"
	"testing"
)

func TestReleaseBuildDisablesValidation(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader("[renderer]\nvalidation = true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeviceConfig().Validation {
		t.Fatal("validation enabled in a release build")
	}
}
