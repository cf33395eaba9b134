package main

import (
	"os"
	"runtime"

	"voxel-render/internal/config"
	"voxel-render/internal/geometry"
	"voxel-render/internal/graphics/opengl"
	"voxel-render/internal/graphics/renderables/background"
	"voxel-render/internal/graphics/renderables/lattice"
	"voxel-render/internal/graphics/renderer"
	"voxel-render/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, path, err := config.FromEnv()
	if err != nil {
		logging.Warn("using default configuration", "path", path, "err", err)
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warn("invalid log level", "level", cfg.Log.Level, "err", err)
	}

	if err := glfw.Init(); err != nil {
		logging.Fatal("failed to initialize GLFW", "err", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Window)
	if err != nil {
		logging.Fatal("failed to create window", "err", err)
	}
	defer window.Destroy()

	state, cleanup, err := newState(window, cfg)
	if err != nil {
		logging.Fatal("failed to initialize renderer", "err", err)
	}
	defer cleanup()

	setupInputHandlers(window, state)

	var watcher *config.Watcher
	if path != "" {
		if watcher, err = config.Watch(path); err != nil {
			logging.Warn("config reload disabled", "path", path, "err", err)
		} else {
			defer watcher.Close()
		}
	}

	loop := NewFrameLoop(window, state, watcher, cfg.Window.FPSLimit)
	if err := loop.Run(); err != nil {
		logging.Error("fatal render error", "err", err)
		cleanup()
		os.Exit(1)
	}
}

// newState creates the GL backend and the render state. The returned cleanup
// releases everything in reverse order and is safe to call more than once.
func newState(window *glfw.Window, cfg config.Config) (*renderer.State, func(), error) {
	dev, err := opengl.NewDevice()
	if err != nil {
		return nil, nil, err
	}
	surface, err := opengl.NewSurface(window)
	if err != nil {
		dev.Release()
		return nil, nil, err
	}

	sides := geometry.SingleSided
	if cfg.Lattice.DoubleSided {
		sides = geometry.DoubleSided
	}

	chunk := geometry.EmptyChunk()
	chunk.SetBlock(16, 16, 1)

	fw, fh := window.GetFramebufferSize()
	surfaceCfg := cfg.SurfaceConfig()
	surfaceCfg.Width, surfaceCfg.Height = fw, fh

	state, err := renderer.NewState(dev, surface, renderer.Options{
		Surface:    surfaceCfg,
		Controller: cfg.CameraSettings(),
		Fovy:       cfg.Camera.Fovy,
		ZNear:      cfg.Camera.ZNear,
		ZFar:       cfg.Camera.ZFar,
		Chunk:      chunk,
	}, renderer.Layers{
		Background: background.NewBackground(),
		Scene:      lattice.NewLattice(geometry.NewLattice(geometry.XZ, geometry.Y, sides)),
	})
	if err != nil {
		surface.Release()
		dev.Release()
		return nil, nil, err
	}

	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true
		state.Dispose()
		surface.Release()
		dev.Release()
	}
	return state, cleanup, nil
}
