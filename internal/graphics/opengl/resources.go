package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
)

type uniformBuffer struct {
	id    uint32
	label string
	size  int
}

func (b *uniformBuffer) Label() string { return b.label }
func (b *uniformBuffer) Size() int     { return b.size }

func (b *uniformBuffer) Release() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

type mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	indexType     uint32
}

func (m *mesh) IndexCount() int { return int(m.indexCount) }

func (m *mesh) Release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}

type pipeline struct {
	label    string
	program  uint32
	topology uint32

	cull     bool
	cullFace uint32
	front    uint32

	depthTest  bool
	depthFunc  uint32
	depthWrite bool
}

func (p *pipeline) Label() string { return p.label }

func (p *pipeline) Release() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

type depthTarget struct {
	rbo           uint32
	width, height int
	format        gputypes.TextureFormat
}

func (d *depthTarget) Width() int                     { return d.width }
func (d *depthTarget) Height() int                    { return d.height }
func (d *depthTarget) Format() gputypes.TextureFormat { return d.format }

func (d *depthTarget) Release() {
	if d.rbo != 0 {
		gl.DeleteRenderbuffers(1, &d.rbo)
		d.rbo = 0
	}
}

// frame is the offscreen framebuffer of a Surface for one acquire/present cycle
type frame struct {
	fbo           uint32
	width, height int
}

func (f *frame) Width() int  { return f.width }
func (f *frame) Height() int { return f.height }
