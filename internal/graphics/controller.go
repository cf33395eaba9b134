package graphics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a logical movement intent, not a physical key
type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	MovementCount // Sentinel value for array sizing
)

// PitchLimit keeps pitch just inside (-pi/2, pi/2) so the view never flips at the poles
const PitchLimit = math.Pi/2 - 1e-4

// ControllerSettings are the integration tunables
type ControllerSettings struct {
	Speed          float32 // units per second
	Sensitivity    float32 // radians per mouse unit
	ZoomRate       float32 // radians of fovy per scroll line
	MinFovy        float32
	MaxFovy        float32
	ConstrainPitch bool
}

// Validate reports settings that would break the camera invariants
func (s ControllerSettings) Validate() error {
	if !(s.MinFovy > 0) || !(s.MaxFovy < math.Pi) || !(s.MinFovy < s.MaxFovy) {
		return fmt.Errorf("fovy bounds must satisfy 0 < min < max < pi, got [%v, %v]", s.MinFovy, s.MaxFovy)
	}
	if s.Speed < 0 || s.Sensitivity < 0 || s.ZoomRate < 0 {
		return fmt.Errorf("speed, sensitivity and zoom rate must be non-negative")
	}
	return nil
}

// CameraController accumulates raw input between frames and integrates it into a Camera
// once per frame. It is owned by the render loop thread; no locking.
type CameraController struct {
	settings ControllerSettings

	// Key to movement mapping
	bindings map[int]Movement

	held [MovementCount]bool

	scroll float32
	dx, dy float32
}

// NewCameraController panics on settings that violate the fovy preconditions
func NewCameraController(settings ControllerSettings) *CameraController {
	cc := &CameraController{bindings: make(map[int]Movement)}
	cc.SetSettings(settings)
	return cc
}

// SetSettings replaces the tunables; it panics on invalid settings
func (cc *CameraController) SetSettings(settings ControllerSettings) {
	if err := settings.Validate(); err != nil {
		panic("graphics: " + err.Error())
	}
	cc.settings = settings
}

// Settings returns the active tunables
func (cc *CameraController) Settings() ControllerSettings {
	return cc.settings
}

// Bind maps a raw key code to a movement. Several keys may share a movement.
func (cc *CameraController) Bind(key int, m Movement) {
	if m < 0 || m >= MovementCount {
		return
	}
	cc.bindings[key] = m
}

// Unbind removes the binding for a key
func (cc *CameraController) Unbind(key int) {
	delete(cc.bindings, key)
}

// ProcessKeyboard records a key state change and reports whether the key is bound
func (cc *CameraController) ProcessKeyboard(key int, pressed bool) bool {
	m, ok := cc.bindings[key]
	if !ok {
		return false
	}
	cc.held[m] = pressed
	return true
}

// ProcessMouse adds a relative mouse delta. Positive dy looks up.
func (cc *CameraController) ProcessMouse(dx, dy float64) {
	cc.dx += float32(dx)
	cc.dy += float32(dy)
}

// ProcessScroll adds a scroll delta in lines. Positive values zoom in.
func (cc *CameraController) ProcessScroll(dy float64) {
	cc.scroll += float32(dy)
}

// Held reports whether a movement key is currently down
func (cc *CameraController) Held(m Movement) bool {
	if m < 0 || m >= MovementCount {
		return false
	}
	return cc.held[m]
}

// Pending returns the accumulated scroll and mouse deltas
func (cc *CameraController) Pending() (scroll, dx, dy float32) {
	return cc.scroll, cc.dx, cc.dy
}

// UpdateCamera integrates accumulated input over dt seconds and drains the accumulators.
// A non-positive or NaN dt moves nothing.
func (cc *CameraController) UpdateCamera(c *Camera, dt float32) {
	if !(dt > 0) {
		dt = 0
	}
	s := cc.settings
	step := s.Speed * dt

	if step != 0 {
		forward := cc.axis(MoveForward, MoveBackward)
		right := cc.axis(MoveRight, MoveLeft)
		up := cc.axis(MoveUp, MoveDown)

		c.Position = c.Position.
			Add(c.Forward().Mul(forward * step)).
			Add(c.Right().Mul(right * step)).
			Add(mgl32.Vec3{0, 1, 0}.Mul(up * step))
	}

	c.Fovy = mgl32.Clamp(c.Fovy-cc.scroll*s.ZoomRate, s.MinFovy, s.MaxFovy)

	c.Yaw = wrapAngle(c.Yaw + cc.dx*s.Sensitivity)
	c.Pitch += cc.dy * s.Sensitivity
	if s.ConstrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -PitchLimit, PitchLimit)
	}

	cc.scroll = 0
	cc.dx = 0
	cc.dy = 0
}

func (cc *CameraController) axis(positive, negative Movement) float32 {
	var v float32
	if cc.held[positive] {
		v++
	}
	if cc.held[negative] {
		v--
	}
	return v
}

// wrapAngle folds an angle into [-pi, pi]
func wrapAngle(a float32) float32 {
	if a >= -math.Pi && a <= math.Pi {
		return a
	}
	return float32(math.Remainder(float64(a), 2*math.Pi))
}
