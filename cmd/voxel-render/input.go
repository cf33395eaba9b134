package main

import (
	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/renderer"
	"voxel-render/internal/logging"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// defaultBindings maps physical keys to camera movements
var defaultBindings = map[glfw.Key]graphics.Movement{
	glfw.KeyW:         graphics.MoveForward,
	glfw.KeyUp:        graphics.MoveForward,
	glfw.KeyS:         graphics.MoveBackward,
	glfw.KeyDown:      graphics.MoveBackward,
	glfw.KeyA:         graphics.MoveLeft,
	glfw.KeyLeft:      graphics.MoveLeft,
	glfw.KeyD:         graphics.MoveRight,
	glfw.KeyRight:     graphics.MoveRight,
	glfw.KeySpace:     graphics.MoveUp,
	glfw.KeyLeftShift: graphics.MoveDown,
}

func bindDefaults(c *graphics.CameraController) {
	for key, m := range defaultBindings {
		c.Bind(int(key), m)
	}
}

// mouseTracker turns absolute cursor positions into look deltas.
// The first sample after a reset only seeds the position.
type mouseTracker struct {
	first        bool
	lastX, lastY float64
}

func newMouseTracker() *mouseTracker {
	return &mouseTracker{first: true}
}

func (m *mouseTracker) reset() {
	m.first = true
}

// delta returns the horizontal and vertical offsets with y pointing up
func (m *mouseTracker) delta(x, y float64) (dx, dy float64, ok bool) {
	if m.first {
		m.lastX, m.lastY = x, y
		m.first = false
		return 0, 0, false
	}
	dx, dy = x-m.lastX, m.lastY-y
	m.lastX, m.lastY = x, y
	return dx, dy, true
}

// keyEdge reports whether a GLFW key action changes held state
func keyEdge(action glfw.Action) (pressed, ok bool) {
	switch action {
	case glfw.Press:
		return true, true
	case glfw.Release:
		return false, true
	}
	return false, false
}

func setupInputHandlers(window *glfw.Window, state *renderer.State) {
	controller := state.Controller()
	bindDefaults(controller)
	mouse := newMouseTracker()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		if pressed, ok := keyEdge(action); ok {
			controller.ProcessKeyboard(int(key), pressed)
		}
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if dx, dy, ok := mouse.delta(xpos, ypos); ok {
			controller.ProcessMouse(dx, dy)
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		controller.ProcessScroll(yoff)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if err := state.Resize(width, height); err != nil {
			logging.Warn("resize failed", "width", width, "height", height, "err", err)
		}
	})

	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if focused {
			grabCursor(w)
		} else {
			releaseCursor(w)
		}
		mouse.reset()
	})
}
