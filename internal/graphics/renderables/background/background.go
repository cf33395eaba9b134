package background

import (
	_ "embed"
	"fmt"

	"voxel-render/internal/graphics/renderer"

	"github.com/gogpu/gputypes"
)

var (
	//go:embed shaders/background.vert
	VertexSource string
	//go:embed shaders/background.frag
	FragmentSource string
)

// fullScreenVertices is the vertex count of the full-screen triangle
const fullScreenVertices = 3

// Background draws the animated sky behind the scene. It reads only the background block.
type Background struct {
	pipeline renderer.Pipeline
	uniform  renderer.Buffer
}

// NewBackground creates a new background renderable
func NewBackground() *Background {
	return &Background{}
}

// Init creates the pipeline
func (b *Background) Init(dev renderer.Device, res renderer.Resources) error {
	pipeline, err := dev.NewPipeline(renderer.PipelineDescriptor{
		Label:          "background",
		VertexSource:   VertexSource,
		FragmentSource: FragmentSource,
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		CullMode:       gputypes.CullModeNone,
		FrontFace:      gputypes.FrontFaceCCW,
		UniformBlocks: []renderer.UniformBlock{
			{Name: "Background", Binding: renderer.BackgroundBinding},
		},
	})
	if err != nil {
		return fmt.Errorf("background pipeline: %w", err)
	}
	b.pipeline = pipeline
	b.uniform = res.Background
	return nil
}

// Record draws the full-screen triangle
func (b *Background) Record(ctx renderer.RenderContext, pass *renderer.RenderPass) {
	if b.pipeline == nil {
		return
	}
	pass.Draw(renderer.DrawCall{
		Pipeline:    b.pipeline,
		Bindings:    []renderer.Binding{{Index: renderer.BackgroundBinding, Buffer: b.uniform}},
		VertexCount: fullScreenVertices,
	})
}

// Dispose releases the pipeline
func (b *Background) Dispose() {
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
}
