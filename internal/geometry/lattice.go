package geometry

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Reference grid resolution
const (
	XZ = 64
	Y  = 64
)

const (
	verticesPerQuad = 4
	indicesPerSide  = 6
)

// Sides selects how many windings each quad is emitted with.
type Sides int

const (
	// SingleSided emits one ccw winding; pair it with back-face culling.
	SingleSided Sides = iota
	// DoubleSided emits ccw and cw windings so the grid is visible from both sides.
	DoubleSided
)

func (s Sides) indicesPerQuad() int {
	if s == DoubleSided {
		return 2 * indicesPerSide
	}
	return indicesPerSide
}

// NumVertices returns the vertex count of a lattice with the given resolution
func NumVertices(xz, y int) int {
	return 8*xz + 4*y
}

// NumIndices returns the index count of a lattice with the given resolution
func NumIndices(xz, y int, sides Sides) int {
	return (2*xz + y) * sides.indicesPerQuad()
}

// Lattice is the wireframe grid mesh. Each quad owns its 4 vertices.
type Lattice struct {
	XZ, Y    int
	Sides    Sides
	Vertices []Vertex
	Indices  []uint16
}

var defaultLattice = sync.OnceValue(func() *Lattice {
	return NewLattice(XZ, Y, DoubleSided)
})

// DefaultLattice returns the reference 64x64 double-sided lattice. It is built on first use.
func DefaultLattice() *Lattice {
	return defaultLattice()
}

// NewLattice builds a centred grid of axis aligned quads: xz planes perpendicular to X,
// then xz planes perpendicular to Z, then y planes perpendicular to Y.
// It panics if the grid needs more vertices than a uint16 index can address.
func NewLattice(xz, y int, sides Sides) *Lattice {
	if xz < 0 || y < 0 {
		panic(fmt.Sprintf("geometry: negative lattice resolution %dx%d", xz, y))
	}
	nv := NumVertices(xz, y)
	if nv > math.MaxUint16+1 {
		panic(fmt.Sprintf("geometry: lattice %dx%d needs %d vertices, uint16 indices address at most %d", xz, y, nv, math.MaxUint16+1))
	}

	l := &Lattice{
		XZ:       xz,
		Y:        y,
		Sides:    sides,
		Vertices: make([]Vertex, 0, nv),
		Indices:  make([]uint16, 0, NumIndices(xz, y, sides)),
	}

	halfXZ := float32(xz) / 2
	halfY := float32(y) / 2

	for i := 0; i < xz; i++ {
		x := float32(i) - halfXZ
		l.emitQuad(AxisX, [4][3]float32{
			{x, -halfY, -halfXZ},
			{x, -halfY, halfXZ},
			{x, halfY, -halfXZ},
			{x, halfY, halfXZ},
		})
	}

	for i := 0; i < xz; i++ {
		z := float32(i) - halfXZ
		l.emitQuad(AxisZ, [4][3]float32{
			{-halfXZ, -halfY, z},
			{-halfXZ, halfY, z},
			{halfXZ, -halfY, z},
			{halfXZ, halfY, z},
		})
	}

	for i := 0; i < y; i++ {
		h := float32(i) - halfY
		l.emitQuad(AxisY, [4][3]float32{
			{-halfXZ, h, -halfXZ},
			{-halfXZ, h, halfXZ},
			{halfXZ, h, -halfXZ},
			{halfXZ, h, halfXZ},
		})
	}

	return l
}

// emitQuad appends 4 private corners and the index pairs that reference them
func (l *Lattice) emitQuad(axis Axis, corners [4][3]float32) {
	v := uint16(len(l.Vertices))
	for _, c := range corners {
		l.Vertices = append(l.Vertices, Vertex{Position: c, Axis: axis})
	}

	// ccw
	l.Indices = append(l.Indices,
		v+0, v+1, v+2,
		v+1, v+3, v+2,
	)
	if l.Sides == DoubleSided {
		// cw
		l.Indices = append(l.Indices,
			v+0, v+2, v+1,
			v+1, v+2, v+3,
		)
	}
}

// NumQuads returns the number of planes in the lattice
func (l *Lattice) NumQuads() int {
	return len(l.Vertices) / verticesPerQuad
}

// IndicesPerQuad returns the index stride between consecutive quads
func (l *Lattice) IndicesPerQuad() int {
	return l.Sides.indicesPerQuad()
}

// VertexBytes packs the vertices for upload
func (l *Lattice) VertexBytes() []byte {
	buf := make([]byte, len(l.Vertices)*VertexStride)
	for i, v := range l.Vertices {
		v.put(buf[i*VertexStride:])
	}
	return buf
}

// IndexBytes packs the indices as little-endian uint16
func (l *Lattice) IndexBytes() []byte {
	buf := make([]byte, len(l.Indices)*2)
	for i, idx := range l.Indices {
		binary.LittleEndian.PutUint16(buf[i*2:], idx)
	}
	return buf
}
