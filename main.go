/*
Sandbox application that runs the engine with the testbed layers.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"

	"github.com/spaghettifunk/tundra/engine"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/platform"
	"github.com/spaghettifunk/tundra/engine/platform/desktop"
	"github.com/spaghettifunk/tundra/testbed"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = flag.String("config", "testbed/config.toml", "application config file")
		scenePath  = flag.String("scene", "", "scene file relative to the asset directory, overrides the config")
		headless   = flag.Bool("headless", false, "run without a window")
		frames     = flag.Uint64("frames", 0, "exit after this many frames")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error")
		profMode   = flag.String("profile", "", "cpu, mem or trace")
	)
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogError("config: %s", err)
		return 1
	}
	if *scenePath != "" {
		cfg.Scene = *scenePath
	}
	if *headless {
		cfg.Headless = true
	}
	if *frames > 0 {
		cfg.MaxFrames = *frames
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		core.LogError("config: %s", err)
		return 1
	}

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "trace":
		defer profile.Start(profile.TraceProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		core.LogError("unknown profile mode %q", *profMode)
		return 1
	}

	window, err := newWindow(cfg)
	if err != nil {
		core.LogError("window: %s", err)
		return 1
	}

	app, err := engine.NewApplication(cfg, window)
	if err != nil {
		core.LogError("%s", err)
		window.Shutdown()
		return 1
	}

	if err := app.PushLayer(testbed.NewSandboxLayer(app.Context(), cfg.Scene)); err != nil {
		core.LogError("%s", err)
		app.Shutdown()
		return 1
	}
	if err := app.PushOverlay(testbed.NewStatsLayer(app.Context().Metrics, 5*time.Second)); err != nil {
		core.LogError("%s", err)
		app.Shutdown()
		return 1
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		sig := <-sigCh
		core.LogInfo("received %s, shutting down", sig)
		app.Exit(0)
	}()

	return app.Run()
}

func newWindow(cfg engine.ApplicationConfig) (platform.Window, error) {
	if cfg.Headless {
		return platform.NewHeadlessWindow(cfg.StartWidth, cfg.StartHeight), nil
	}
	w, err := desktop.NewWindow(platform.WindowProps{
		Title:  cfg.Name,
		PosX:   cfg.StartPosX,
		PosY:   cfg.StartPosY,
		Width:  cfg.StartWidth,
		Height: cfg.StartHeight,
		VSync:  cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("create desktop window: %w", err)
	}
	return w, nil
}
