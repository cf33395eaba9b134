package renderer_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"voxel-render/internal/geometry"
	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/renderer"
	"voxel-render/internal/graphics/renderer/renderertest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyForward = 87

type manualClock struct {
	t time.Time
}

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	journal    *renderertest.Journal
	device     *renderertest.Device
	sink       *renderertest.Sink
	background *renderertest.Layer
	scene      *renderertest.Layer
	clock      *manualClock
	state      *renderer.State
}

func testOptions(clock *manualClock) renderer.Options {
	chunk := geometry.EmptyChunk()
	chunk.SetBlock(16, 16, 1)
	return renderer.Options{
		Surface: renderer.SurfaceConfig{Width: 800, Height: 600, VSync: true},
		Controller: graphics.ControllerSettings{
			Speed:          6,
			Sensitivity:    0.01,
			ZoomRate:       0.05,
			MinFovy:        0.2,
			MaxFovy:        2.5,
			ConstrainPitch: true,
		},
		Chunk: chunk,
		Clock: clock.Now,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		journal: &renderertest.Journal{},
		clock:   &manualClock{t: time.Unix(1000, 0)},
		background: &renderertest.Layer{
			Name:        "background",
			VertexCount: 3,
			Bind: func(res renderer.Resources) []renderer.Binding {
				return []renderer.Binding{{Index: renderer.BackgroundBinding, Buffer: res.Background}}
			},
		},
		scene: &renderertest.Layer{
			Name: "scene",
			Bind: func(res renderer.Resources) []renderer.Binding {
				return []renderer.Binding{
					{Index: renderer.GlobalsBinding, Buffer: res.Globals},
					{Index: renderer.ChunkBinding, Buffer: res.Chunk},
				}
			},
		},
	}
	f.device = renderertest.NewDevice(f.journal)
	f.sink = renderertest.NewSink(f.journal)

	state, err := renderer.NewState(f.device, f.sink, testOptions(f.clock),
		renderer.Layers{Background: f.background, Scene: f.scene})
	require.NoError(t, err)
	f.state = state
	return f
}

// since returns journal entries recorded after mark
func (f *fixture) since(mark int) []string {
	return f.journal.Entries[mark:]
}

func TestNewStateCreatesResources(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []string{
		"sink.Configure 800x600 vsync=true",
		"device.NewUniformBuffer globals 80",
		"device.NewUniformBuffer background 24",
		"device.NewUniformBuffer chunk 4096",
		"device.WriteBuffer chunk",
		"device.NewDepthTarget 800x600",
	}, f.journal.Entries)

	assert.Equal(t, 1, f.background.Inits)
	assert.Equal(t, 1, f.scene.Inits)

	chunk := f.device.Buffer("chunk")
	require.NotNil(t, chunk)
	want := geometry.EmptyChunk()
	want.SetBlock(16, 16, 1)
	assert.Equal(t, want.Bytes(), chunk.Data)

	depth := f.device.Depth()
	assert.Equal(t, gputypes.TextureFormatDepth24PlusStencil8, depth.Format())

	cam := f.state.Camera()
	assert.InDelta(t, 800.0/600.0, cam.Aspect, 1e-6)
	assert.False(t, cam.DepthRemap, "[-1,1] backends must not remap depth")
}

func TestZeroToOneBackendRemapsDepth(t *testing.T) {
	clock := &manualClock{}
	dev := renderertest.NewDevice(nil)
	dev.Range = renderer.DepthZeroToOne
	state, err := renderer.NewState(dev, renderertest.NewSink(nil), testOptions(clock),
		renderer.Layers{Background: &renderertest.Layer{}, Scene: &renderertest.Layer{}})
	require.NoError(t, err)
	assert.True(t, state.Camera().DepthRemap)
}

func TestRenderProtocol(t *testing.T) {
	f := newFixture(t)
	f.state.Controller().Bind(keyForward, graphics.MoveForward)
	f.state.Controller().ProcessKeyboard(keyForward, true)

	mark := len(f.journal.Entries)
	f.clock.Advance(500 * time.Millisecond)
	require.NoError(t, f.state.Render())

	assert.Equal(t, []string{
		"device.WriteBuffer globals",
		"device.WriteBuffer background",
		"sink.Acquire",
		"device.Submit 2",
		"sink.Present",
	}, f.since(mark))

	cam := f.state.Camera()
	assert.True(t, cam.Position.ApproxEqualThreshold(mgl32.Vec3{0, 0, -3}, 1e-5), "got %v", cam.Position)

	require.Len(t, f.device.Batches, 1)
	batch := f.device.Batches[0]
	assert.Equal(t, renderertest.Frame{W: 800, H: 600}, batch.Frame)
	require.Len(t, batch.Passes, 2)

	bg := batch.Passes[0]
	assert.Equal(t, "background", bg.Label)
	assert.Equal(t, gputypes.LoadOpClear, bg.Color.Load)
	assert.Equal(t, gputypes.StoreOpStore, bg.Color.Store)
	assert.Equal(t, renderer.DefaultClearColor, bg.Color.Clear)
	assert.Nil(t, bg.Depth, "background pass has no depth test")
	require.Len(t, bg.Draws, 1)
	assert.Equal(t, 3, bg.Draws[0].VertexCount)
	require.Len(t, bg.Draws[0].Bindings, 1)
	assert.Equal(t, "background", bg.Draws[0].Bindings[0].Buffer.Label())

	scene := batch.Passes[1]
	assert.Equal(t, "scene", scene.Label)
	assert.Equal(t, gputypes.LoadOpLoad, scene.Color.Load, "scene pass must keep the background")
	require.NotNil(t, scene.Depth)
	assert.Equal(t, gputypes.LoadOpClear, scene.Depth.Load)
	assert.Equal(t, float32(1.0), scene.Depth.ClearValue)
	assert.Same(t, f.device.Depth(), scene.Depth.Target)
	require.Len(t, scene.Draws, 1)
	assert.Len(t, scene.Draws[0].Bindings, 2)

	assert.Equal(t, batch.Frame, f.sink.Presented[0])
}

func TestUniformsWrittenWholesale(t *testing.T) {
	f := newFixture(t)
	f.state.Controller().ProcessMouse(10, -5)
	f.state.Controller().ProcessScroll(2)

	f.clock.Advance(1234 * time.Millisecond)
	require.NoError(t, f.state.Render())

	cam := f.state.Camera()
	wantGlobals := renderer.GlobalsUniform{ProjView: cam.ProjViewMatrix(), CamDir: cam.Direction()}
	assert.Equal(t, wantGlobals.Marshal(), f.device.Buffer("globals").Data)

	wantBackground := renderer.BackgroundUniform{
		Resolution:    [2]uint32{800, 600},
		MillisElapsed: 1234,
		Pitch:         cam.Pitch,
		Yaw:           cam.Yaw,
		Fovy:          cam.Fovy,
	}
	assert.Equal(t, wantBackground.Marshal(), f.device.Buffer("background").Data)
	assert.InDelta(t, 0.1, cam.Yaw, 1e-6)
	assert.InDelta(t, -0.05, cam.Pitch, 1e-6)
	assert.InDelta(t, 0.9, cam.Fovy, 1e-6)

	// Every frame rewrites both blocks
	mark := len(f.journal.Entries)
	require.NoError(t, f.state.Render())
	assert.Equal(t, "device.WriteBuffer globals", f.since(mark)[0])
	assert.Equal(t, "device.WriteBuffer background", f.since(mark)[1])
	assert.Len(t, f.device.Buffers, 3, "uniform buffers are never reallocated")
}

func TestRenderWithoutElapsedTimeDoesNotMove(t *testing.T) {
	f := newFixture(t)
	f.state.Controller().Bind(keyForward, graphics.MoveForward)
	f.state.Controller().ProcessKeyboard(keyForward, true)

	require.NoError(t, f.state.Render())
	assert.Equal(t, mgl32.Vec3{}, f.state.Camera().Position)
}

func TestZeroSizedResizeIsIgnored(t *testing.T) {
	f := newFixture(t)
	cam := *f.state.Camera()
	depth := f.device.Depth()
	mark := len(f.journal.Entries)

	require.NoError(t, f.state.Resize(0, 600))
	require.NoError(t, f.state.Resize(800, 0))

	assert.Empty(t, f.since(mark), "no reconfiguration or resource churn")
	assert.Equal(t, cam, *f.state.Camera())
	assert.Same(t, depth, f.device.Depth())
	assert.False(t, depth.Released)
	w, h := f.state.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestResizeRecreatesDepth(t *testing.T) {
	f := newFixture(t)
	old := f.device.Depth()
	mark := len(f.journal.Entries)

	require.NoError(t, f.state.Resize(1024, 512))

	assert.Equal(t, []string{
		"sink.Configure 1024x512 vsync=true",
		"device.NewDepthTarget 1024x512",
	}, f.since(mark))
	assert.True(t, old.Released)

	depth := f.device.Depth()
	assert.Equal(t, 1024, depth.Width())
	assert.Equal(t, 512, depth.Height())
	assert.InDelta(t, 2.0, f.state.Camera().Aspect, 1e-6)

	require.NoError(t, f.state.Render())
	batch := f.device.Batches[0]
	assert.Same(t, depth, batch.Passes[1].Depth.Target)
	assert.Equal(t, renderertest.Frame{W: 1024, H: 512}, batch.Frame)

	bg := f.device.Buffer("background").Data
	assert.Equal(t, renderer.BackgroundUniform{
		Resolution: [2]uint32{1024, 512},
		Pitch:      f.state.Camera().Pitch,
		Yaw:        f.state.Camera().Yaw,
		Fovy:       f.state.Camera().Fovy,
	}.Marshal(), bg)
}

func TestSurfaceLostRecovery(t *testing.T) {
	f := newFixture(t)
	f.sink.AcquireErr = fmt.Errorf("acquire: %w", renderer.ErrSurfaceLost)

	err := f.state.Render()
	require.ErrorIs(t, err, renderer.ErrSurfaceLost)
	assert.False(t, renderer.IsFatal(err))
	assert.Empty(t, f.device.Batches)

	// Reconfigure at the current size and try again
	f.sink.AcquireErr = nil
	require.NoError(t, f.state.Resize(f.state.Size()))
	require.NoError(t, f.state.Render())
	assert.Len(t, f.sink.Presented, 1)
	assert.Equal(t, renderer.SurfaceConfig{Width: 800, Height: 600, VSync: true}, f.sink.Current())
}

func TestSubmitAndPresentErrorsPropagate(t *testing.T) {
	f := newFixture(t)

	f.device.SubmitErr = fmt.Errorf("gl: %w", renderer.ErrOutOfMemory)
	err := f.state.Render()
	require.ErrorIs(t, err, renderer.ErrOutOfMemory)
	assert.True(t, renderer.IsFatal(err))
	assert.Empty(t, f.sink.Presented)

	f.device.SubmitErr = nil
	f.sink.PresentErr = fmt.Errorf("present: %w", renderer.ErrTransient)
	err = f.state.Render()
	require.ErrorIs(t, err, renderer.ErrTransient)
	assert.False(t, renderer.IsFatal(err))
}

func TestNewStateRejectsZeroSize(t *testing.T) {
	opts := testOptions(&manualClock{})
	opts.Surface.Height = 0
	_, err := renderer.NewState(renderertest.NewDevice(nil), renderertest.NewSink(nil), opts,
		renderer.Layers{Background: &renderertest.Layer{}, Scene: &renderertest.Layer{}})
	assert.ErrorIs(t, err, renderer.ErrInitialization)
}

func TestNewStateReleasesOnLayerFailure(t *testing.T) {
	dev := renderertest.NewDevice(nil)
	scene := &renderertest.Layer{InitErr: errors.New("compile failed")}
	bg := &renderertest.Layer{}

	_, err := renderer.NewState(dev, renderertest.NewSink(nil), testOptions(&manualClock{}),
		renderer.Layers{Background: bg, Scene: scene})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile failed")

	for _, b := range dev.Buffers {
		assert.True(t, b.Released, "buffer %s leaked", b.Label())
	}
	assert.Equal(t, 1, bg.Disposed)
	assert.Empty(t, dev.DepthTargets)
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	depth := f.device.Depth()
	f.state.Dispose()

	assert.True(t, depth.Released)
	for _, b := range f.device.Buffers {
		assert.True(t, b.Released)
	}
	assert.Equal(t, 1, f.background.Disposed)
	assert.Equal(t, 1, f.scene.Disposed)
}

func TestSetVSync(t *testing.T) {
	f := newFixture(t)
	mark := len(f.journal.Entries)

	require.NoError(t, f.state.SetVSync(true))
	assert.Empty(t, f.since(mark))

	require.NoError(t, f.state.SetVSync(false))
	assert.Equal(t, []string{"sink.Configure 800x600 vsync=false"}, f.since(mark))
	assert.False(t, f.state.VSync())
}

func TestUpdateMeasuresFrames(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 120; i++ {
		f.clock.Advance(10 * time.Millisecond)
		f.state.Update()
	}
	assert.InDelta(t, 100, f.state.FPS(), 1e-6)
}
