package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestGlobalsLayout(t *testing.T) {
	m := mgl32.Mat4{}
	for i := range m {
		m[i] = float32(i + 1)
	}
	g := GlobalsUniform{ProjView: m, CamDir: mgl32.Vec3{0.25, -0.5, 0.75}}

	buf := g.Marshal()
	require.Len(t, buf, GlobalsSize)

	// Column-major: element (row 1, col 0) is the second float
	assert.Equal(t, float32(2), float(buf, 4))
	assert.Equal(t, m.At(3, 3), float(buf, 60))
	assert.Equal(t, float32(0.25), float(buf, 64))
	assert.Equal(t, float32(-0.5), float(buf, 68))
	assert.Equal(t, float32(0.75), float(buf, 72))
	assert.Zero(t, binary.LittleEndian.Uint32(buf[76:]), "padding must be zero")
}

func TestBackgroundLayout(t *testing.T) {
	b := BackgroundUniform{
		Resolution:    [2]uint32{1920, 1080},
		MillisElapsed: 123456,
		Pitch:         -0.3,
		Yaw:           2.5,
		Fovy:          1.1,
	}

	buf := b.Marshal()
	require.Len(t, buf, BackgroundSize)

	assert.Equal(t, uint32(1920), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(1080), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(123456), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, float32(-0.3), float(buf, 12))
	assert.Equal(t, float32(2.5), float(buf, 16))
	assert.Equal(t, float32(1.1), float(buf, 20))
}
