package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeConfigOverDefaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`
[application]
name = "testbed"
width = 1920
height = 1080
mode = "borderless"

[renderer]
vsync = false
backbuffer_count = 3
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Application.Name != "testbed" || cfg.Application.Width != 1920 {
		t.Fatalf("application = %+v", cfg.Application)
	}
	s := cfg.ContextSettings()
	if s.VSync || s.BackbufferCount != 3 {
		t.Fatalf("settings = %+v", s)
	}
	// untouched sections keep their defaults
	if cfg.Engine.FixedTimestep != DefaultFixedTimestep || cfg.Application.X != 100 {
		t.Fatalf("defaults lost: %+v", cfg.Engine)
	}
	if desc := cfg.WindowDesc(); desc.Mode.String() != "borderless" || desc.Title != "testbed" {
		t.Fatalf("window desc = %+v", desc)
	}
}

func TestDecodeConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "[renderer]\nvsinc = true\n"},
		{"zero width", "[application]\nwidth = 0\n"},
		{"bad mode", "[application]\nmode = \"tiled\"\n"},
		{"too many backbuffers", "[renderer]\nbackbuffer_count = 9\n"},
		{"negative step", "[engine]\nfixed_timestep = -1.0\n"},
		{"bad log level", "[engine]\nlog_level = \"loud\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
