package renderer

import (
	"errors"
	"fmt"
	"time"

	"voxel-render/internal/geometry"
	"voxel-render/internal/graphics"
	"voxel-render/internal/logging"
	"voxel-render/internal/profiling"

	"github.com/gogpu/gputypes"
)

// DepthFormat is the depth target format of the scene pass
const DepthFormat = gputypes.TextureFormatDepth24PlusStencil8

// DefaultClearColor is the background pass clear colour
var DefaultClearColor = gputypes.Color{R: 0.5, G: 1.0, B: 1.0, A: 1.0}

// Options configures a State
type Options struct {
	Surface    SurfaceConfig
	Controller graphics.ControllerSettings

	// Zero values keep the camera defaults
	Fovy  float32
	ZNear float32
	ZFar  float32

	ClearColor *gputypes.Color // nil uses DefaultClearColor
	Chunk      geometry.Chunk

	// Clock defaults to time.Now
	Clock func() time.Time
}

// State owns every GPU resource of the viewer together with the camera and its controller.
// Size-independent resources are created once; the depth target is recreated on resize.
type State struct {
	device Device
	sink   FrameSink
	layers Layers
	config SurfaceConfig

	camera     *graphics.Camera
	controller *graphics.CameraController

	res   Resources
	depth DepthTarget

	clearColor gputypes.Color

	clock      func() time.Time
	start      time.Time
	lastRender time.Time
	lastUpdate time.Time

	meter    profiling.FrameMeter
	profiler *profiling.Profiler
	frameLog time.Time
}

// NewState configures the sink, creates the shared uniform buffers, initializes both layers
// and creates the depth target. The controller settings must be valid; NewState panics otherwise.
func NewState(dev Device, sink FrameSink, opts Options, layers Layers) (*State, error) {
	if opts.Surface.Width <= 0 || opts.Surface.Height <= 0 {
		return nil, fmt.Errorf("initial surface %dx%d: %w", opts.Surface.Width, opts.Surface.Height, ErrInitialization)
	}
	if layers.Background == nil || layers.Scene == nil {
		return nil, fmt.Errorf("both render layers are required: %w", ErrInitialization)
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &State{
		device:     dev,
		sink:       sink,
		layers:     layers,
		config:     opts.Surface,
		controller: graphics.NewCameraController(opts.Controller),
		clearColor: DefaultClearColor,
		clock:      clock,
		profiler:   profiling.NewWithClock(clock),
	}
	if opts.ClearColor != nil {
		s.clearColor = *opts.ClearColor
	}

	s.camera = graphics.NewCamera(opts.Surface.Width, opts.Surface.Height)
	if opts.Fovy > 0 {
		s.camera.Fovy = opts.Fovy
	}
	if opts.ZNear > 0 {
		s.camera.ZNear = opts.ZNear
	}
	if opts.ZFar > 0 {
		s.camera.ZFar = opts.ZFar
	}
	s.camera.DepthRemap = dev.DepthRange() == DepthZeroToOne

	if err := s.init(opts); err != nil {
		s.Dispose()
		return nil, err
	}

	s.start = clock()
	s.lastRender = s.start
	s.lastUpdate = s.start
	s.frameLog = s.start
	return s, nil
}

func (s *State) init(opts Options) error {
	if err := s.sink.Configure(s.config); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}

	var err error
	if s.res.Globals, err = s.device.NewUniformBuffer("globals", GlobalsSize); err != nil {
		return fmt.Errorf("create globals buffer: %w", err)
	}
	if s.res.Background, err = s.device.NewUniformBuffer("background", BackgroundSize); err != nil {
		return fmt.Errorf("create background buffer: %w", err)
	}
	if s.res.Chunk, err = s.device.NewUniformBuffer("chunk", geometry.ChunkBytes); err != nil {
		return fmt.Errorf("create chunk buffer: %w", err)
	}
	// The chunk is static; only globals and background change per frame
	if err := s.device.WriteBuffer(s.res.Chunk, opts.Chunk.Bytes()); err != nil {
		return fmt.Errorf("upload chunk: %w", err)
	}

	if err := s.layers.Background.Init(s.device, s.res); err != nil {
		return fmt.Errorf("init background layer: %w", err)
	}
	if err := s.layers.Scene.Init(s.device, s.res); err != nil {
		return fmt.Errorf("init scene layer: %w", err)
	}

	return s.recreateDepth()
}

// Render runs one frame: integrate input, write uniforms, record the background and scene
// passes, submit them together and present. Backend errors are returned unchanged.
func (s *State) Render() error {
	defer s.profiler.Track("renderer.Render")()

	now := s.clock()
	elapsed := float32(now.Sub(s.lastRender).Seconds())
	s.lastRender = now

	s.controller.UpdateCamera(s.camera, elapsed)

	if err := s.writeUniforms(now); err != nil {
		return err
	}

	if s.depth == nil {
		if err := s.recreateDepth(); err != nil {
			return err
		}
	}

	frame, err := s.sink.Acquire()
	if err != nil {
		return err
	}

	ctx := RenderContext{
		Camera:    s.camera,
		Resources: s.res,
		Width:     s.config.Width,
		Height:    s.config.Height,
	}

	background := RenderPass{
		Label: "background",
		Color: ColorAttachment{
			Load:  gputypes.LoadOpClear,
			Store: gputypes.StoreOpStore,
			Clear: s.clearColor,
		},
	}
	s.layers.Background.Record(ctx, &background)

	scene := RenderPass{
		Label: "scene",
		Color: ColorAttachment{
			Load:  gputypes.LoadOpLoad,
			Store: gputypes.StoreOpStore,
		},
		Depth: &DepthAttachment{
			Target:     s.depth,
			Load:       gputypes.LoadOpClear,
			Store:      gputypes.StoreOpDiscard,
			ClearValue: 1.0,
		},
	}
	s.layers.Scene.Record(ctx, &scene)

	stop := s.profiler.Track("renderer.Submit")
	err = s.device.Submit(CommandBatch{Frame: frame, Passes: []RenderPass{background, scene}})
	stop()
	if err != nil {
		return err
	}

	return s.sink.Present(frame)
}

func (s *State) writeUniforms(now time.Time) error {
	defer s.profiler.Track("renderer.Uniforms")()

	globals := GlobalsUniform{
		ProjView: s.camera.ProjViewMatrix(),
		CamDir:   s.camera.Direction(),
	}
	if err := s.device.WriteBuffer(s.res.Globals, globals.Marshal()); err != nil {
		return fmt.Errorf("write globals: %w", err)
	}

	background := BackgroundUniform{
		Resolution:    [2]uint32{uint32(s.config.Width), uint32(s.config.Height)},
		MillisElapsed: uint32(now.Sub(s.start).Milliseconds()),
		Pitch:         s.camera.Pitch,
		Yaw:           s.camera.Yaw,
		Fovy:          s.camera.Fovy,
	}
	if err := s.device.WriteBuffer(s.res.Background, background.Marshal()); err != nil {
		return fmt.Errorf("write background: %w", err)
	}
	return nil
}

// Resize reconfigures the sink, updates the camera aspect and recreates the depth target.
// A zero dimension is ignored.
func (s *State) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}

	cfg := s.config
	cfg.Width = width
	cfg.Height = height
	if err := s.sink.Configure(cfg); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", width, height, err)
	}
	s.config = cfg
	s.camera.Resize(width, height)

	return s.recreateDepth()
}

// SetVSync reconfigures the sink at its current size with a new present mode
func (s *State) SetVSync(vsync bool) error {
	if s.config.VSync == vsync {
		return nil
	}
	cfg := s.config
	cfg.VSync = vsync
	if err := s.sink.Configure(cfg); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	s.config = cfg
	return nil
}

func (s *State) recreateDepth() error {
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
	depth, err := s.device.NewDepthTarget(s.config.Width, s.config.Height, DepthFormat)
	if err != nil {
		return fmt.Errorf("create depth target %dx%d: %w", s.config.Width, s.config.Height, err)
	}
	s.depth = depth
	return nil
}

// Update feeds the frame meter and logs frame statistics once per second
func (s *State) Update() {
	now := s.clock()
	s.meter.Tick(now.Sub(s.lastUpdate))
	s.lastUpdate = now

	if now.Sub(s.frameLog) >= time.Second {
		s.frameLog = now
		logging.Debug("frame stats",
			"fps", fmt.Sprintf("%.1f", s.meter.FPS()),
			"frame", s.meter.FrameTime(),
			"top", s.profiler.Top(3),
		)
	}
	s.profiler.Reset()
}

// Size returns the configured surface size
func (s *State) Size() (width, height int) {
	return s.config.Width, s.config.Height
}

// VSync reports the configured present mode
func (s *State) VSync() bool {
	return s.config.VSync
}

func (s *State) Camera() *graphics.Camera {
	return s.camera
}

func (s *State) Controller() *graphics.CameraController {
	return s.controller
}

// FPS returns the last measured frame rate
func (s *State) FPS() float64 {
	return s.meter.FPS()
}

// Dispose releases every resource in reverse creation order
func (s *State) Dispose() {
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
	s.layers.Scene.Dispose()
	s.layers.Background.Dispose()
	for _, b := range []*Buffer{&s.res.Chunk, &s.res.Background, &s.res.Globals} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}

// IsFatal reports whether a Render error must terminate the process
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrInitialization)
}
