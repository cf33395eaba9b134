package renderer

import (
	"errors"

	"voxel-render/internal/graphics"

	"github.com/gogpu/gputypes"
)

// Frame outcomes a backend reports. Backends wrap these with %w; callers use errors.Is.
var (
	// ErrSurfaceLost means the sink must be reconfigured at its current size
	ErrSurfaceLost = errors.New("renderer: surface lost")
	// ErrOutOfMemory is fatal
	ErrOutOfMemory = errors.New("renderer: out of memory")
	// ErrTransient covers outdated or timed out frames; skip the frame
	ErrTransient = errors.New("renderer: transient frame failure")
	// ErrInitialization means no usable device or context exists
	ErrInitialization = errors.New("renderer: initialization failed")
)

// DepthRange is the clip-space depth convention of a backend
type DepthRange int

const (
	DepthMinusOneToOne DepthRange = iota // OpenGL
	DepthZeroToOne                       // Vulkan, Metal, D3D, WebGPU
)

// Buffer is a GPU uniform buffer
type Buffer interface {
	Label() string
	Size() int
	Release()
}

// Mesh is a static indexed vertex buffer
type Mesh interface {
	IndexCount() int
	Release()
}

// Pipeline is a compiled program with its fixed-function state
type Pipeline interface {
	Label() string
	Release()
}

// DepthTarget is a depth buffer sized to the frame sink
type DepthTarget interface {
	Width() int
	Height() int
	Format() gputypes.TextureFormat
	Release()
}

// Frame is a presentable image acquired from a FrameSink
type Frame interface {
	Width() int
	Height() int
}

// VertexAttribute describes one attribute of an interleaved vertex
type VertexAttribute struct {
	Location uint32
	Format   gputypes.VertexFormat
	Offset   int
}

// MeshDescriptor is the data for a static mesh
type MeshDescriptor struct {
	Label       string
	Vertices    []byte
	Indices     []uint16
	Stride      int
	Attributes  []VertexAttribute
	IndexFormat gputypes.IndexFormat
}

// UniformBlock binds a named shader uniform block to a buffer binding index
type UniformBlock struct {
	Name    string
	Binding uint32
}

// DepthState enables depth testing for a pipeline
type DepthState struct {
	Format  gputypes.TextureFormat
	Compare gputypes.CompareFunction
	Write   bool
}

// PipelineDescriptor describes a render pipeline
type PipelineDescriptor struct {
	Label          string
	VertexSource   string
	FragmentSource string
	Topology       gputypes.PrimitiveTopology
	CullMode       gputypes.CullMode
	FrontFace      gputypes.FrontFace
	Depth          *DepthState // nil disables depth testing
	UniformBlocks  []UniformBlock
}

// SurfaceConfig is the frame sink configuration
type SurfaceConfig struct {
	Width  int
	Height int
	VSync  bool
}

// Device creates GPU resources and executes recorded passes
type Device interface {
	NewUniformBuffer(label string, size int) (Buffer, error)
	// WriteBuffer replaces the whole buffer contents; len(data) must equal the buffer size
	WriteBuffer(b Buffer, data []byte) error
	NewMesh(desc MeshDescriptor) (Mesh, error)
	NewPipeline(desc PipelineDescriptor) (Pipeline, error)
	NewDepthTarget(width, height int, format gputypes.TextureFormat) (DepthTarget, error)
	Submit(batch CommandBatch) error
	DepthRange() DepthRange
}

// FrameSink is the presentable surface
type FrameSink interface {
	Configure(cfg SurfaceConfig) error
	Acquire() (Frame, error)
	Present(f Frame) error
}

// ColorAttachment describes how a pass treats the frame colour target
type ColorAttachment struct {
	Load  gputypes.LoadOp
	Store gputypes.StoreOp
	Clear gputypes.Color
}

// DepthAttachment describes how a pass treats its depth target
type DepthAttachment struct {
	Target     DepthTarget
	Load       gputypes.LoadOp
	Store      gputypes.StoreOp
	ClearValue float32
}

// Binding attaches a uniform buffer to a binding index for one draw
type Binding struct {
	Index  uint32
	Buffer Buffer
}

// DrawCall draws Mesh indexed, or VertexCount vertices without buffers when Mesh is nil
type DrawCall struct {
	Pipeline    Pipeline
	Bindings    []Binding
	Mesh        Mesh
	VertexCount int
}

// RenderPass is a recorded pass over the frame colour target
type RenderPass struct {
	Label string
	Color ColorAttachment
	Depth *DepthAttachment
	Draws []DrawCall
}

// Draw appends a draw call
func (p *RenderPass) Draw(d DrawCall) {
	p.Draws = append(p.Draws, d)
}

// CommandBatch is everything submitted for one frame
type CommandBatch struct {
	Frame  Frame
	Passes []RenderPass
}

// Resources are the shared uniform buffers renderables bind
type Resources struct {
	Globals    Buffer
	Background Buffer
	Chunk      Buffer
}

// RenderContext provides shared per-frame context for renderables
type RenderContext struct {
	Camera    *graphics.Camera
	Resources Resources
	Width     int
	Height    int
}

// Renderable defines the lifecycle of a drawable feature
type Renderable interface {
	Init(dev Device, res Resources) error
	Record(ctx RenderContext, pass *RenderPass)
	Dispose()
}

// Layers are the renderables of the two passes
type Layers struct {
	Background Renderable
	Scene      Renderable
}
