/*
Kiln runs the testbed title on the engine. The graphics backend is chosen at
build time: Vulkan by default, WebGPU with -tags webgpu.
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/platform/glfwdriver"
	"github.com/spaghettifunk/kiln/testbed"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.toml", "path to the engine configuration")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		core.LogWarn("%s not found, using the default configuration", *configPath)
		cfg = engine.DefaultConfig()
	case err != nil:
		core.LogError("failed to load configuration: %s", err)
		return 1
	}

	e := engine.New(cfg, glfwdriver.New(), newDevice(), testbed.NewTestGame())

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			e.Exit()
		}
	}()

	if err := e.RunEngine(); err != nil {
		core.LogError("engine stopped with an error: %s", err)
		return 1
	}
	return 0
}
