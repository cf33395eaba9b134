package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ZeroToOneDepth remaps clip-space z from [-1,1] to [0,1] (z' = 0.5z + 0.5w).
// Column-major, as mgl32 stores matrices.
var ZeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera handles the view and projection matrices.
// Angles are in radians; yaw 0 looks down -Z.
type Camera struct {
	Position mgl32.Vec3
	Pitch    float32
	Yaw      float32

	Aspect float32
	Fovy   float32
	ZNear  float32
	ZFar   float32

	// DepthRemap applies ZeroToOneDepth for backends whose depth range is [0,1]
	DepthRemap bool
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Aspect: 1,
		Fovy:   1.0,
		ZNear:  0.1,
		ZFar:   100.0,
	}
	c.Resize(width, height)
	return c
}

// Direction returns the unit look vector from pitch and yaw
func (c *Camera) Direction() mgl32.Vec3 {
	sp, cp := sincos(c.Pitch)
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{cp * sy, sp, -cp * cy}.Normalize()
}

// Forward returns the heading on the ground plane. Pitch never affects it.
func (c *Camera) Forward() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{sy, 0, -cy}.Normalize()
}

// Right returns the ground-plane vector orthogonal to Forward
func (c *Camera) Right() mgl32.Vec3 {
	sy, cy := sincos(c.Yaw)
	return mgl32.Vec3{cy, 0, sy}.Normalize()
}

// ViewMatrix is a right-handed look-to matrix along Direction
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Direction()), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix is the GL-convention perspective projection
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.Fovy, c.Aspect, c.ZNear, c.ZFar)
}

// ProjViewMatrix returns projection * view, remapped to [0,1] depth when DepthRemap is set
func (c *Camera) ProjViewMatrix() mgl32.Mat4 {
	pv := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	if c.DepthRemap {
		return ZeroToOneDepth.Mul4(pv)
	}
	return pv
}

// Resize updates the aspect ratio. Zero-sized viewports are rejected and leave the camera unchanged.
func (c *Camera) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float32(width) / float32(height)
	return true
}

func sincos(a float32) (float32, float32) {
	s, co := math.Sincos(float64(a))
	return float32(s), float32(co)
}
