package main

import (
	"errors"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics/renderer"
	"voxel-render/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// renderAction is the host reaction to a Render result
type renderAction int

const (
	actionContinue renderAction = iota
	actionReconfigure
	actionSkip
	actionExit
)

// classifyRenderError maps a Render error onto the host policy
func classifyRenderError(err error) renderAction {
	switch {
	case err == nil:
		return actionContinue
	case errors.Is(err, renderer.ErrSurfaceLost):
		return actionReconfigure
	case renderer.IsFatal(err):
		return actionExit
	case errors.Is(err, renderer.ErrTransient):
		return actionSkip
	}
	return actionContinue
}

// FrameLoop drives polling, config reloads and rendering until the window closes
type FrameLoop struct {
	window  *glfw.Window
	state   *renderer.State
	watcher *config.Watcher

	fpsLimit   int
	fpsLimiter *FPSLimiter
}

// NewFrameLoop creates a loop. watcher may be nil.
func NewFrameLoop(window *glfw.Window, state *renderer.State, watcher *config.Watcher, fpsLimit int) *FrameLoop {
	return &FrameLoop{
		window:     window,
		state:      state,
		watcher:    watcher,
		fpsLimit:   fpsLimit,
		fpsLimiter: NewFPSLimiter(),
	}
}

// Run returns nil when the window is closed, or the first fatal render error
func (l *FrameLoop) Run() error {
	for !l.window.ShouldClose() {
		if err := l.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (l *FrameLoop) tick() error {
	glfw.PollEvents()
	l.applyReload()

	l.state.Update()
	err := l.state.Render()
	switch classifyRenderError(err) {
	case actionReconfigure:
		logging.Warn("surface lost, reconfiguring", "err", err)
		if rerr := l.state.Resize(l.state.Size()); rerr != nil {
			logging.Error("surface reconfigure failed", "err", rerr)
		}
	case actionExit:
		return err
	case actionSkip:
		logging.Debug("frame skipped", "err", err)
	default:
		if err != nil {
			logging.Error("render failed", "err", err)
		}
	}

	if !l.state.VSync() {
		l.fpsLimiter.Wait(l.fpsLimit)
	}
	return nil
}

// applyReload picks up a changed config file. Window size and lattice shape are startup only.
func (l *FrameLoop) applyReload() {
	if l.watcher == nil {
		return
	}
	cfg, ok := l.watcher.Poll()
	if !ok {
		return
	}

	settings := cfg.CameraSettings()
	if err := settings.Validate(); err != nil {
		logging.Warn("ignoring camera settings", "err", err)
	} else {
		l.state.Controller().SetSettings(settings)
	}
	if err := l.state.SetVSync(cfg.Window.VSync); err != nil {
		logging.Warn("vsync change failed", "err", err)
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warn("invalid log level", "level", cfg.Log.Level, "err", err)
	}
	l.fpsLimit = cfg.Window.FPSLimit
	logging.Info("configuration reloaded")
}
