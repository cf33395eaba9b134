package geometry

import (
	"encoding/binary"
	"math"
)

// Axis tags which lattice direction a vertex belongs to.
type Axis uint32

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// VertexStride is the size in bytes of one packed Vertex (pos.xyz + axis)
const VertexStride = 16

// Offsets of the vertex attributes inside a packed vertex
const (
	PositionOffset = 0
	AxisOffset     = 12
)

// Vertex is a lattice corner
type Vertex struct {
	Position [3]float32
	Axis     Axis
}

func (v Vertex) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(v.Axis))
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}
