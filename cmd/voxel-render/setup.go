package main

import (
	"voxel-render/internal/config"
	"voxel-render/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func setupWindow(cfg config.WindowConfig) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	grabCursor(window)
	if glfw.RawMouseMotionSupported() {
		window.SetInputMode(glfw.RawMouseMotion, glfw.True)
	} else {
		logging.Debug("raw mouse motion unsupported")
	}

	return window, nil
}

func grabCursor(w *glfw.Window) {
	w.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
}

func releaseCursor(w *glfw.Window) {
	w.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
}
