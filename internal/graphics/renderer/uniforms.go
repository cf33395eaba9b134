package renderer

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform block sizes in bytes. Both blocks are std140 compatible.
const (
	GlobalsSize    = 80
	BackgroundSize = 24
)

// Uniform block binding indices shared by every pipeline
const (
	GlobalsBinding    uint32 = 0
	BackgroundBinding uint32 = 1
	ChunkBinding      uint32 = 2
)

// GlobalsUniform is the camera block read by the scene pass.
//
//	offset 0:  proj_view_mat mat4 (64 bytes, column-major)
//	offset 64: cam_dir vec3 (12 bytes)
//	offset 76: pad u32
type GlobalsUniform struct {
	ProjView mgl32.Mat4
	CamDir   mgl32.Vec3
}

// Marshal serializes the block for upload
func (g GlobalsUniform) Marshal() []byte {
	buf := make([]byte, GlobalsSize)
	for i, f := range g.ProjView {
		putFloat(buf[i*4:], f)
	}
	for i, f := range g.CamDir {
		putFloat(buf[64+i*4:], f)
	}
	// pad at 76 stays zero
	return buf
}

// BackgroundUniform is the block read by the background pass.
//
//	offset 0:  resolution uvec2
//	offset 8:  millis_elapsed u32
//	offset 12: pitch f32
//	offset 16: yaw f32
//	offset 20: fovy f32
type BackgroundUniform struct {
	Resolution    [2]uint32
	MillisElapsed uint32
	Pitch         float32
	Yaw           float32
	Fovy          float32
}

// Marshal serializes the block for upload
func (b BackgroundUniform) Marshal() []byte {
	buf := make([]byte, BackgroundSize)
	binary.LittleEndian.PutUint32(buf[0:4], b.Resolution[0])
	binary.LittleEndian.PutUint32(buf[4:8], b.Resolution[1])
	binary.LittleEndian.PutUint32(buf[8:12], b.MillisElapsed)
	putFloat(buf[12:16], b.Pitch)
	putFloat(buf[16:20], b.Yaw)
	putFloat(buf[20:24], b.Fovy)
	return buf
}

func putFloat(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}
