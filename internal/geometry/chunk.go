package geometry

import "encoding/binary"

// ChunkSize is the edge length of a chunk in blocks
const ChunkSize = 32

// ChunkBytes is the size of a chunk packed as a std140 uvec4[256] block
const ChunkBytes = ChunkSize * ChunkSize * 4

// BlockID identifies a block kind. 0 is empty.
type BlockID uint32

const BlockEmpty BlockID = 0

// Chunk is a 32x32 grid of block identifiers, indexed [z][x].
// It is only read by the shader stage.
type Chunk struct {
	Blocks [ChunkSize][ChunkSize]BlockID
}

// EmptyChunk returns a chunk with every cell empty
func EmptyChunk() Chunk {
	return Chunk{}
}

// GetBlock returns the block at (x, z), or BlockEmpty when out of range
func (c *Chunk) GetBlock(x, z int) BlockID {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return BlockEmpty
	}
	return c.Blocks[z][x]
}

// SetBlock sets the block at (x, z). Out of range coordinates are ignored.
func (c *Chunk) SetBlock(x, z int, id BlockID) {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	c.Blocks[z][x] = id
}

// Bytes packs the chunk row-major so that block (x, z) lands at
// uvec4 index (z*32+x)/4, component (z*32+x)%4.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, ChunkBytes)
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			off := (z*ChunkSize + x) * 4
			binary.LittleEndian.PutUint32(buf[off:off+4], uint32(c.Blocks[z][x]))
		}
	}
	return buf
}
