package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ApplicationConfig is the content of config.toml.
type ApplicationConfig struct {
	Application WindowConfig   `toml:"application"`
	Renderer    RendererConfig `toml:"renderer"`
	Engine      LoopConfig     `toml:"engine"`
	Assets      AssetsConfig   `toml:"assets"`
}

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	X int `toml:"x"`
	Y int `toml:"y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// One of windowed, windowed-no-resize, windowed-no-drag-size, borderless.
	Mode       string `toml:"mode"`
	Fullscreen bool   `toml:"fullscreen"`
}

type RendererConfig struct {
	VSync           bool       `toml:"vsync"`
	BackbufferCount uint32     `toml:"backbuffer_count"`
	Validation      bool       `toml:"validation"`
	ClearColor      [4]float32 `toml:"clear_color"`
}

type LoopConfig struct {
	// FixedTimestep is the FixedTick step in seconds.
	FixedTimestep float64 `toml:"fixed_timestep"`
	LogLevel      string  `toml:"log_level"`
}

type AssetsConfig struct {
	// Directory is the asset root. An empty directory disables the asset manager.
	Directory string `toml:"directory"`
	// Watch reloads assets when files under Directory change.
	Watch bool `toml:"watch"`
}

func DefaultConfig() *ApplicationConfig {
	settings := renderer.DefaultContextSettings()
	return &ApplicationConfig{
		Application: WindowConfig{
			Name:   "Kiln",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
			Mode:   platform.WindowModeWindowed.String(),
		},
		Renderer: RendererConfig{
			VSync:           settings.VSync,
			BackbufferCount: settings.BackbufferCount,
			Validation:      true,
			ClearColor: [4]float32{
				settings.ClearColor.R, settings.ClearColor.G, settings.ClearColor.B, settings.ClearColor.A,
			},
		},
		Engine: LoopConfig{
			FixedTimestep: DefaultFixedTimestep,
			LogLevel:      "info",
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (*ApplicationConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

func DecodeConfig(r io.Reader) (*ApplicationConfig, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	var errs []error
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Application.Width, c.Application.Height))
	}
	if _, err := platform.ParseWindowMode(c.Application.Mode); err != nil {
		errs = append(errs, err)
	}
	if n := c.Renderer.BackbufferCount; n < renderer.MinBackbufferCount || n > renderer.MaxBackbufferCount {
		errs = append(errs, fmt.Errorf("backbuffer_count %d not in [%d, %d]", n,
			renderer.MinBackbufferCount, renderer.MaxBackbufferCount))
	}
	if c.Engine.FixedTimestep <= 0 {
		errs = append(errs, fmt.Errorf("fixed_timestep %v must be positive", c.Engine.FixedTimestep))
	}
	if _, err := log.ParseLevel(c.Engine.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// WindowDesc converts the application section to a window description.
func (c *ApplicationConfig) WindowDesc() platform.WindowDesc {
	mode, _ := platform.ParseWindowMode(c.Application.Mode)
	return platform.WindowDesc{
		Title:      c.Application.Name,
		X:          c.Application.X,
		Y:          c.Application.Y,
		Width:      c.Application.Width,
		Height:     c.Application.Height,
		Mode:       mode,
		Fullscreen: c.Application.Fullscreen,
	}
}

// DeviceConfig maps the renderer section to device settings. Validation is
// only honoured in debug builds.
func (c *ApplicationConfig) DeviceConfig() renderer.DeviceConfig {
	return renderer.DeviceConfig{
		ApplicationName: c.Application.Name,
		Validation:      c.Renderer.Validation && core.DebugBuild,
	}
}

func (c *ApplicationConfig) ContextSettings() renderer.ContextSettings {
	cc := c.Renderer.ClearColor
	return renderer.ContextSettings{
		VSync:           c.Renderer.VSync,
		BackbufferCount: c.Renderer.BackbufferCount,
		ClearColor:      renderer.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]},
	}
}
