package graphics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyW = iota + 100
	keyS
	keyA
	keyD
	keySpace
	keyShift
	keyUp
)

func testSettings() ControllerSettings {
	return ControllerSettings{
		Speed:          6,
		Sensitivity:    0.01,
		ZoomRate:       0.05,
		MinFovy:        0.2,
		MaxFovy:        2.5,
		ConstrainPitch: true,
	}
}

func newTestController() *CameraController {
	cc := NewCameraController(testSettings())
	cc.Bind(keyW, MoveForward)
	cc.Bind(keyS, MoveBackward)
	cc.Bind(keyA, MoveLeft)
	cc.Bind(keyD, MoveRight)
	cc.Bind(keySpace, MoveUp)
	cc.Bind(keyShift, MoveDown)
	cc.Bind(keyUp, MoveForward)
	return cc
}

func TestForwardMovement(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	require.True(t, cc.ProcessKeyboard(keyW, true))
	cc.UpdateCamera(c, 0.5)

	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -3}, eps), "got %v", c.Position)
}

func TestMovementIgnoresPitch(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)
	c.Pitch = 1.2

	cc.ProcessKeyboard(keyW, true)
	cc.UpdateCamera(c, 1)

	assert.InDelta(t, 0, c.Position.Y(), eps)
	assert.InDelta(t, 6, c.Position.Len(), eps)
}

func TestOpposingKeysCancel(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessKeyboard(keyW, true)
	cc.ProcessKeyboard(keyS, true)
	cc.ProcessKeyboard(keyA, true)
	cc.ProcessKeyboard(keyD, true)
	cc.ProcessKeyboard(keySpace, true)
	cc.UpdateCamera(c, 1)

	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{0, 6, 0}, eps), "got %v", c.Position)
}

func TestStrafeAndVertical(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessKeyboard(keyD, true)
	cc.ProcessKeyboard(keyShift, true)
	cc.UpdateCamera(c, 0.5)

	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{3, -3, 0}, eps), "got %v", c.Position)
}

func TestKeyFlagsPersistAcrossFrames(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessKeyboard(keyW, true)
	cc.UpdateCamera(c, 0.5)
	cc.UpdateCamera(c, 0.5)
	assert.InDelta(t, -6, c.Position.Z(), eps)
	assert.True(t, cc.Held(MoveForward))

	cc.ProcessKeyboard(keyW, false)
	cc.UpdateCamera(c, 0.5)
	assert.InDelta(t, -6, c.Position.Z(), eps)
	assert.False(t, cc.Held(MoveForward))
}

func TestUnboundKeysAreIgnored(t *testing.T) {
	cc := newTestController()
	assert.False(t, cc.ProcessKeyboard(9999, true))
	for m := Movement(0); m < MovementCount; m++ {
		assert.False(t, cc.Held(m))
	}

	cc.Unbind(keyW)
	assert.False(t, cc.ProcessKeyboard(keyW, true))
	assert.False(t, cc.Held(MoveForward))

	// A second key bound to the same movement still works
	assert.True(t, cc.ProcessKeyboard(keyUp, true))
	assert.True(t, cc.Held(MoveForward))
}

func TestNonPositiveDeltaTime(t *testing.T) {
	for _, dt := range []float32{0, -1, float32(math.NaN())} {
		cc := newTestController()
		c := NewCamera(800, 600)

		cc.ProcessKeyboard(keyW, true)
		cc.ProcessMouse(10, 5)
		cc.ProcessScroll(2)
		cc.UpdateCamera(c, dt)

		require.Equal(t, mgl32.Vec3{}, c.Position, "dt=%v", dt)
		require.False(t, math.IsNaN(float64(c.Yaw)))
		require.InDelta(t, 0.1, c.Yaw, eps, "orientation still applies at dt=%v", dt)
		require.InDelta(t, 0.9, c.Fovy, eps)
	}
}

func TestMouseDeltasSum(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessMouse(3, 1)
	cc.ProcessMouse(7, 2)
	cc.UpdateCamera(c, 0.016)

	assert.InDelta(t, 0.1, c.Yaw, eps)
	assert.InDelta(t, 0.03, c.Pitch, eps)
}

func TestAccumulatorsDrain(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessMouse(12.5, -3)
	cc.ProcessScroll(-4)
	cc.UpdateCamera(c, 0.016)

	scroll, dx, dy := cc.Pending()
	assert.Zero(t, scroll)
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	yaw, pitch, fovy := c.Yaw, c.Pitch, c.Fovy
	cc.UpdateCamera(c, 0.016)
	assert.Equal(t, yaw, c.Yaw, "deltas applied twice")
	assert.Equal(t, pitch, c.Pitch)
	assert.Equal(t, fovy, c.Fovy)
}

func TestFovyClamp(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)
	s := cc.Settings()

	for _, scroll := range []float64{1, 3, 100, -1, -250, 0.5, 1e6, -1e6, 7} {
		cc.ProcessScroll(scroll)
		cc.UpdateCamera(c, 0.016)
		require.GreaterOrEqual(t, c.Fovy, s.MinFovy)
		require.LessOrEqual(t, c.Fovy, s.MaxFovy)
	}

	cc.ProcessScroll(1e6)
	cc.UpdateCamera(c, 0.016)
	assert.Equal(t, s.MinFovy, c.Fovy)

	cc.ProcessScroll(-1e6)
	cc.UpdateCamera(c, 0.016)
	assert.Equal(t, s.MaxFovy, c.Fovy)
}

func TestPositiveScrollZoomsIn(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	cc.ProcessScroll(2)
	cc.UpdateCamera(c, 0.016)
	assert.InDelta(t, 0.9, c.Fovy, eps)
}

func TestPitchClamp(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	for _, dy := range []float64{1e3, 1e9, -1e9, 157, -157, 42} {
		cc.ProcessMouse(0, dy)
		cc.UpdateCamera(c, 0.016)
		require.Greater(t, c.Pitch, float32(-math.Pi/2))
		require.Less(t, c.Pitch, float32(math.Pi/2))
	}
}

func TestUnconstrainedPitch(t *testing.T) {
	s := testSettings()
	s.ConstrainPitch = false
	cc := NewCameraController(s)
	c := NewCamera(800, 600)

	cc.ProcessMouse(0, 200)
	cc.UpdateCamera(c, 0.016)
	assert.InDelta(t, 2, c.Pitch, eps)
}

func TestYawWraps(t *testing.T) {
	cc := newTestController()
	c := NewCamera(800, 600)

	for i := 0; i < 50; i++ {
		cc.ProcessMouse(100, 0)
		cc.UpdateCamera(c, 0.016)
		require.LessOrEqual(t, float64(c.Yaw), math.Pi+eps)
		require.GreaterOrEqual(t, float64(c.Yaw), -math.Pi-eps)
	}
	// 50 radians total
	want := math.Remainder(50, 2*math.Pi)
	assert.InDelta(t, want, c.Yaw, 1e-3)
}

func TestInvalidSettingsPanic(t *testing.T) {
	cases := map[string]func(*ControllerSettings){
		"zero min":       func(s *ControllerSettings) { s.MinFovy = 0 },
		"max at pi":      func(s *ControllerSettings) { s.MaxFovy = math.Pi },
		"min above max":  func(s *ControllerSettings) { s.MinFovy = 2.6 },
		"min equals max": func(s *ControllerSettings) { s.MinFovy = s.MaxFovy },
		"negative speed": func(s *ControllerSettings) { s.Speed = -1 },
		"negative sens":  func(s *ControllerSettings) { s.Sensitivity = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := testSettings()
			mutate(&s)
			assert.Error(t, s.Validate())
			assert.Panics(t, func() { NewCameraController(s) })
		})
	}

	cc := newTestController()
	bad := testSettings()
	bad.MaxFovy = 4
	assert.Panics(t, func() { cc.SetSettings(bad) })
	assert.Equal(t, testSettings(), cc.Settings(), "failed update must keep previous settings")
}
