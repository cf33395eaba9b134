// Package renderertest provides an in-memory renderer.Device and renderer.FrameSink that
// record every call, so render code can be tested without a GPU.
package renderertest

import (
	"fmt"

	"voxel-render/internal/graphics/renderer"

	"github.com/gogpu/gputypes"
)

// Journal is an ordered log of calls shared by a Device and a Sink
type Journal struct {
	Entries []string
}

func (j *Journal) add(format string, args ...any) {
	if j != nil {
		j.Entries = append(j.Entries, fmt.Sprintf(format, args...))
	}
}

type Buffer struct {
	label    string
	Data     []byte
	Released bool
}

func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Size() int     { return len(b.Data) }
func (b *Buffer) Release()      { b.Released = true }

type Mesh struct {
	Desc     renderer.MeshDescriptor
	Released bool
}

func (m *Mesh) IndexCount() int { return len(m.Desc.Indices) }
func (m *Mesh) Release()        { m.Released = true }

type Pipeline struct {
	Desc     renderer.PipelineDescriptor
	Released bool
}

func (p *Pipeline) Label() string { return p.Desc.Label }
func (p *Pipeline) Release()      { p.Released = true }

type DepthTarget struct {
	W, H     int
	F        gputypes.TextureFormat
	Released bool
}

func (d *DepthTarget) Width() int                     { return d.W }
func (d *DepthTarget) Height() int                    { return d.H }
func (d *DepthTarget) Format() gputypes.TextureFormat { return d.F }
func (d *DepthTarget) Release()                       { d.Released = true }

// Device records resource creation, buffer writes and submissions.
// Set an Err field to make the matching call fail.
type Device struct {
	Journal *Journal
	Range   renderer.DepthRange

	Buffers      []*Buffer
	Meshes       []*Mesh
	Pipelines    []*Pipeline
	DepthTargets []*DepthTarget
	Batches      []renderer.CommandBatch

	BufferErr   error
	WriteErr    error
	MeshErr     error
	PipelineErr error
	DepthErr    error
	SubmitErr   error
}

func NewDevice(j *Journal) *Device {
	return &Device{Journal: j}
}

func (d *Device) NewUniformBuffer(label string, size int) (renderer.Buffer, error) {
	d.Journal.add("device.NewUniformBuffer %s %d", label, size)
	if d.BufferErr != nil {
		return nil, d.BufferErr
	}
	b := &Buffer{label: label, Data: make([]byte, size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) WriteBuffer(b renderer.Buffer, data []byte) error {
	d.Journal.add("device.WriteBuffer %s", b.Label())
	if d.WriteErr != nil {
		return d.WriteErr
	}
	fb := b.(*Buffer)
	if len(data) != len(fb.Data) {
		return fmt.Errorf("write %d bytes into %q of %d bytes", len(data), fb.label, len(fb.Data))
	}
	copy(fb.Data, data)
	return nil
}

func (d *Device) NewMesh(desc renderer.MeshDescriptor) (renderer.Mesh, error) {
	d.Journal.add("device.NewMesh %s", desc.Label)
	if d.MeshErr != nil {
		return nil, d.MeshErr
	}
	m := &Mesh{Desc: desc}
	d.Meshes = append(d.Meshes, m)
	return m, nil
}

func (d *Device) NewPipeline(desc renderer.PipelineDescriptor) (renderer.Pipeline, error) {
	d.Journal.add("device.NewPipeline %s", desc.Label)
	if d.PipelineErr != nil {
		return nil, d.PipelineErr
	}
	p := &Pipeline{Desc: desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) NewDepthTarget(width, height int, format gputypes.TextureFormat) (renderer.DepthTarget, error) {
	d.Journal.add("device.NewDepthTarget %dx%d", width, height)
	if d.DepthErr != nil {
		return nil, d.DepthErr
	}
	t := &DepthTarget{W: width, H: height, F: format}
	d.DepthTargets = append(d.DepthTargets, t)
	return t, nil
}

func (d *Device) Submit(batch renderer.CommandBatch) error {
	d.Journal.add("device.Submit %d", len(batch.Passes))
	if d.SubmitErr != nil {
		return d.SubmitErr
	}
	d.Batches = append(d.Batches, batch)
	return nil
}

func (d *Device) DepthRange() renderer.DepthRange {
	return d.Range
}

// Buffer returns the most recent buffer created with label, or nil
func (d *Device) Buffer(label string) *Buffer {
	for i := len(d.Buffers) - 1; i >= 0; i-- {
		if d.Buffers[i].label == label {
			return d.Buffers[i]
		}
	}
	return nil
}

// Depth returns the most recently created depth target, or nil
func (d *Device) Depth() *DepthTarget {
	if len(d.DepthTargets) == 0 {
		return nil
	}
	return d.DepthTargets[len(d.DepthTargets)-1]
}

type Frame struct {
	W, H int
}

func (f Frame) Width() int  { return f.W }
func (f Frame) Height() int { return f.H }

// Sink records configurations and hands out frames of the configured size
type Sink struct {
	Journal *Journal

	Configs   []renderer.SurfaceConfig
	Presented []renderer.Frame

	ConfigureErr error
	AcquireErr   error
	PresentErr   error
}

func NewSink(j *Journal) *Sink {
	return &Sink{Journal: j}
}

func (s *Sink) Configure(cfg renderer.SurfaceConfig) error {
	s.Journal.add("sink.Configure %dx%d vsync=%t", cfg.Width, cfg.Height, cfg.VSync)
	if s.ConfigureErr != nil {
		return s.ConfigureErr
	}
	s.Configs = append(s.Configs, cfg)
	return nil
}

func (s *Sink) Acquire() (renderer.Frame, error) {
	s.Journal.add("sink.Acquire")
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	cfg := s.Current()
	return Frame{W: cfg.Width, H: cfg.Height}, nil
}

func (s *Sink) Present(f renderer.Frame) error {
	s.Journal.add("sink.Present")
	if s.PresentErr != nil {
		return s.PresentErr
	}
	s.Presented = append(s.Presented, f)
	return nil
}

// Current returns the last applied configuration
func (s *Sink) Current() renderer.SurfaceConfig {
	if len(s.Configs) == 0 {
		return renderer.SurfaceConfig{}
	}
	return s.Configs[len(s.Configs)-1]
}

// Layer is a Renderable that records one draw with the given bindings
type Layer struct {
	Name        string
	InitErr     error
	Inits       int
	Disposed    int
	Contexts    []renderer.RenderContext
	VertexCount int
	Bind        func(res renderer.Resources) []renderer.Binding

	res renderer.Resources
}

func (l *Layer) Init(dev renderer.Device, res renderer.Resources) error {
	l.Inits++
	l.res = res
	return l.InitErr
}

func (l *Layer) Record(ctx renderer.RenderContext, pass *renderer.RenderPass) {
	l.Contexts = append(l.Contexts, ctx)
	var bindings []renderer.Binding
	if l.Bind != nil {
		bindings = l.Bind(l.res)
	}
	pass.Draw(renderer.DrawCall{Bindings: bindings, VertexCount: l.VertexCount})
}

func (l *Layer) Dispose() {
	l.Disposed++
}
