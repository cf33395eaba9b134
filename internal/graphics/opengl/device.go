package opengl

import (
	"fmt"

	"voxel-render/internal/graphics/renderer"
	"voxel-render/internal/logging"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
)

// Device implements renderer.Device on an OpenGL 4.1 core context.
// The context must be current on the calling thread for every method.
type Device struct {
	// Core profile draws need a bound VAO even without vertex buffers
	emptyVAO uint32
}

// NewDevice loads the GL function pointers for the current context
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("load OpenGL: %v: %w", err, renderer.ErrInitialization)
	}
	logging.Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	)

	d := &Device{}
	gl.GenVertexArrays(1, &d.emptyVAO)
	if err := checkError("create empty vertex array"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, renderer.ErrInitialization)
	}
	return d, nil
}

// Release deletes device-owned objects
func (d *Device) Release() {
	if d.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVAO)
		d.emptyVAO = 0
	}
}

func (d *Device) DepthRange() renderer.DepthRange {
	return renderer.DepthMinusOneToOne
}

func (d *Device) NewUniformBuffer(label string, size int) (renderer.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("uniform buffer %q: invalid size %d", label, size)
	}
	b := &uniformBuffer{label: label, size: size}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.id)
	gl.BufferData(gl.UNIFORM_BUFFER, alignUniform(size), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if err := checkError("create uniform buffer " + label); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (d *Device) WriteBuffer(buf renderer.Buffer, data []byte) error {
	b, ok := buf.(*uniformBuffer)
	if !ok {
		return fmt.Errorf("write buffer: foreign buffer %T", buf)
	}
	if len(data) != b.size {
		return fmt.Errorf("write buffer %q: got %d bytes, want %d", b.label, len(data), b.size)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.id)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return checkError("write buffer " + b.label)
}

func (d *Device) NewMesh(desc renderer.MeshDescriptor) (renderer.Mesh, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return nil, fmt.Errorf("mesh %q: empty vertex or index data", desc.Label)
	}
	if desc.IndexFormat != gputypes.IndexFormatUint16 {
		return nil, fmt.Errorf("mesh %q: only uint16 indices are supported", desc.Label)
	}

	m := &mesh{indexCount: int32(len(desc.Indices)), indexType: gl.UNSIGNED_SHORT}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices), gl.Ptr(desc.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*2, gl.Ptr(desc.Indices), gl.STATIC_DRAW)

	for _, a := range desc.Attributes {
		vf, err := glVertexFormat(a.Format)
		if err != nil {
			gl.BindVertexArray(0)
			m.Release()
			return nil, fmt.Errorf("mesh %q: %w", desc.Label, err)
		}
		gl.EnableVertexAttribArray(a.Location)
		if vf.integer {
			gl.VertexAttribIPointerWithOffset(a.Location, vf.components, vf.xtype, int32(desc.Stride), uintptr(a.Offset))
		} else {
			gl.VertexAttribPointerWithOffset(a.Location, vf.components, vf.xtype, false, int32(desc.Stride), uintptr(a.Offset))
		}
	}

	gl.BindVertexArray(0)
	if err := checkError("create mesh " + desc.Label); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

func (d *Device) NewPipeline(desc renderer.PipelineDescriptor) (renderer.Pipeline, error) {
	topology, err := glTopology(desc.Topology)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}

	program, err := compileProgram(desc.VertexSource, desc.FragmentSource)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}

	p := &pipeline{
		label:    desc.Label,
		program:  program,
		topology: topology,
		front:    glFrontFace(desc.FrontFace),
	}
	p.cullFace, p.cull = glCull(desc.CullMode)

	if desc.Depth != nil {
		fn, err := glCompare(desc.Depth.Compare)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
		}
		p.depthTest = true
		p.depthFunc = fn
		p.depthWrite = desc.Depth.Write
	}

	// GLSL 410 has no binding layout qualifier; blocks are bound by name
	for _, ub := range desc.UniformBlocks {
		idx := gl.GetUniformBlockIndex(program, gl.Str(ub.Name+"\x00"))
		if idx == gl.INVALID_INDEX {
			p.Release()
			return nil, fmt.Errorf("pipeline %q: uniform block %q not found", desc.Label, ub.Name)
		}
		gl.UniformBlockBinding(program, idx, ub.Binding)
	}

	if err := checkError("create pipeline " + desc.Label); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (d *Device) NewDepthTarget(width, height int, format gputypes.TextureFormat) (renderer.DepthTarget, error) {
	internal, err := glDepthFormat(format)
	if err != nil {
		return nil, err
	}
	t := &depthTarget{width: width, height: height, format: format}
	gl.GenRenderbuffers(1, &t.rbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, internal, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	if err := checkError("create depth target"); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// Submit executes the passes in order against the frame's framebuffer
func (d *Device) Submit(batch renderer.CommandBatch) error {
	f, ok := batch.Frame.(*frame)
	if !ok {
		return fmt.Errorf("submit: foreign frame %T", batch.Frame)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.Viewport(0, 0, int32(f.width), int32(f.height))

	for i := range batch.Passes {
		if err := d.runPass(f, &batch.Passes[i]); err != nil {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			return err
		}
	}

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return checkError("submit")
}

func (d *Device) runPass(f *frame, pass *renderer.RenderPass) error {
	// Only passes with a depth attachment see a depth buffer
	if pass.Depth != nil {
		t, ok := pass.Depth.Target.(*depthTarget)
		if !ok {
			return fmt.Errorf("pass %q: foreign depth target %T", pass.Label, pass.Depth.Target)
		}
		if t.width != f.width || t.height != f.height {
			return fmt.Errorf("pass %q: depth target %dx%d does not match frame %dx%d",
				pass.Label, t.width, t.height, f.width, f.height)
		}
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, depthAttachment(t.format), gl.RENDERBUFFER, t.rbo)
	} else {
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, 0)
	}

	var mask uint32
	if pass.Color.Load == gputypes.LoadOpClear {
		c := pass.Color.Clear
		gl.ColorMask(true, true, true, true)
		gl.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
		mask |= gl.COLOR_BUFFER_BIT
	}
	if pass.Depth != nil && pass.Depth.Load == gputypes.LoadOpClear {
		// glClear honours the depth write mask
		gl.DepthMask(true)
		gl.ClearDepthf(pass.Depth.ClearValue)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}

	for _, draw := range pass.Draws {
		if err := d.draw(pass, draw); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) draw(pass *renderer.RenderPass, dc renderer.DrawCall) error {
	p, ok := dc.Pipeline.(*pipeline)
	if !ok {
		return fmt.Errorf("pass %q: foreign pipeline %T", pass.Label, dc.Pipeline)
	}

	gl.UseProgram(p.program)

	if p.cull {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(p.cullFace)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
	gl.FrontFace(p.front)

	if p.depthTest && pass.Depth != nil {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(p.depthFunc)
		gl.DepthMask(p.depthWrite)
	} else {
		gl.Disable(gl.DEPTH_TEST)
		gl.DepthMask(false)
	}

	for _, b := range dc.Bindings {
		ub, ok := b.Buffer.(*uniformBuffer)
		if !ok {
			return fmt.Errorf("pass %q: foreign buffer %T at binding %d", pass.Label, b.Buffer, b.Index)
		}
		gl.BindBufferBase(gl.UNIFORM_BUFFER, b.Index, ub.id)
	}

	if dc.Mesh != nil {
		m, ok := dc.Mesh.(*mesh)
		if !ok {
			return fmt.Errorf("pass %q: foreign mesh %T", pass.Label, dc.Mesh)
		}
		gl.BindVertexArray(m.vao)
		gl.DrawElementsWithOffset(p.topology, m.indexCount, m.indexType, 0)
		return nil
	}

	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(p.topology, 0, int32(dc.VertexCount))
	return nil
}
