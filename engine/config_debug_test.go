//go:build !release

package engine

import (
	"strings"
	"testing"
)

func TestDebugBuildHonoursValidation(t *testing.T) {
	tests := []struct {
		toml string
		want bool
	}{
		{"[renderer]\nvalidation = true\n", true},
		{"[renderer]\nvalidation = false\n", false},
	}
	for _, tt := range tests {
		cfg, err := DecodeConfig(strings.NewReader(tt.toml))
		if err != nil {
			t.Fatal(err)
		}
		if got := cfg.DeviceConfig().Validation; got != tt.want {
			t.Errorf("%q: validation = %v, want %v", tt.toml, got, tt.want)
		}
	}
}
