package lattice

import (
	_ "embed"
	"fmt"

	"voxel-render/internal/geometry"
	"voxel-render/internal/graphics/renderer"

	"github.com/gogpu/gputypes"
)

var (
	//go:embed shaders/lattice.vert
	VertexSource string
	//go:embed shaders/lattice.frag
	FragmentSource string
)

// Lattice draws the wireframe grid with depth testing. Lines are cut in the fragment stage,
// so the mesh is plain quads.
type Lattice struct {
	grid *geometry.Lattice

	pipeline renderer.Pipeline
	mesh     renderer.Mesh
	bindings []renderer.Binding
}

// NewLattice creates a renderable for grid; nil uses the default lattice
func NewLattice(grid *geometry.Lattice) *Lattice {
	if grid == nil {
		grid = geometry.DefaultLattice()
	}
	return &Lattice{grid: grid}
}

// Init creates the pipeline and uploads the static mesh
func (l *Lattice) Init(dev renderer.Device, res renderer.Resources) error {
	// Double-sided grids carry both windings and must not be culled
	cull := gputypes.CullModeNone
	if l.grid.Sides == geometry.SingleSided {
		cull = gputypes.CullModeBack
	}

	pipeline, err := dev.NewPipeline(renderer.PipelineDescriptor{
		Label:          "lattice",
		VertexSource:   VertexSource,
		FragmentSource: FragmentSource,
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		CullMode:       cull,
		FrontFace:      gputypes.FrontFaceCCW,
		Depth: &renderer.DepthState{
			Format:  renderer.DepthFormat,
			Compare: gputypes.CompareFunctionLess,
			Write:   true,
		},
		UniformBlocks: []renderer.UniformBlock{
			{Name: "Globals", Binding: renderer.GlobalsBinding},
			{Name: "Chunk", Binding: renderer.ChunkBinding},
		},
	})
	if err != nil {
		return fmt.Errorf("lattice pipeline: %w", err)
	}
	l.pipeline = pipeline

	mesh, err := dev.NewMesh(renderer.MeshDescriptor{
		Label:    "lattice",
		Vertices: l.grid.VertexBytes(),
		Indices:  l.grid.Indices,
		Stride:   geometry.VertexStride,
		Attributes: []renderer.VertexAttribute{
			{Location: 0, Format: gputypes.VertexFormatFloat32x3, Offset: geometry.PositionOffset},
			{Location: 1, Format: gputypes.VertexFormatUint32, Offset: geometry.AxisOffset},
		},
		IndexFormat: gputypes.IndexFormatUint16,
	})
	if err != nil {
		return fmt.Errorf("lattice mesh: %w", err)
	}
	l.mesh = mesh

	l.bindings = []renderer.Binding{
		{Index: renderer.GlobalsBinding, Buffer: res.Globals},
		{Index: renderer.ChunkBinding, Buffer: res.Chunk},
	}
	return nil
}

// Record draws the grid indexed
func (l *Lattice) Record(ctx renderer.RenderContext, pass *renderer.RenderPass) {
	if l.pipeline == nil || l.mesh == nil {
		return
	}
	pass.Draw(renderer.DrawCall{
		Pipeline: l.pipeline,
		Bindings: l.bindings,
		Mesh:     l.mesh,
	})
}

// Dispose releases the mesh and pipeline
func (l *Lattice) Dispose() {
	if l.mesh != nil {
		l.mesh.Release()
		l.mesh = nil
	}
	if l.pipeline != nil {
		l.pipeline.Release()
		l.pipeline = nil
	}
}
