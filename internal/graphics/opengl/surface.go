package opengl

import (
	"fmt"

	"voxel-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Surface implements renderer.FrameSink for a GLFW window. Frames are rendered into an
// offscreen framebuffer sized to the configuration and blitted to the window on present.
type Surface struct {
	window *glfw.Window
	cfg    renderer.SurfaceConfig

	fbo   uint32
	color uint32
	frame frame
}

// NewSurface creates the offscreen framebuffer. Configure must be called before Acquire.
func NewSurface(window *glfw.Window) (*Surface, error) {
	s := &Surface{window: window}
	gl.GenFramebuffers(1, &s.fbo)
	gl.GenRenderbuffers(1, &s.color)
	if err := checkError("create surface"); err != nil {
		s.Release()
		return nil, fmt.Errorf("%v: %w", err, renderer.ErrInitialization)
	}
	return s, nil
}

// Configure reallocates the colour target at the new size and applies the swap interval
func (s *Surface) Configure(cfg renderer.SurfaceConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("configure surface %dx%d: %w", cfg.Width, cfg.Height, renderer.ErrTransient)
	}

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	gl.BindRenderbuffer(gl.RENDERBUFFER, s.color)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, int32(cfg.Width), int32(cfg.Height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, s.color)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if err := checkError("configure surface"); err != nil {
		return err
	}
	s.cfg = cfg
	s.frame = frame{fbo: s.fbo, width: cfg.Width, height: cfg.Height}
	return nil
}

// Acquire returns the offscreen frame. A minimized or not yet reconfigured window is
// transient; an incomplete framebuffer means the surface is lost.
func (s *Surface) Acquire() (renderer.Frame, error) {
	fw, fh := s.window.GetFramebufferSize()
	if fw == 0 || fh == 0 {
		return nil, fmt.Errorf("acquire: window framebuffer is empty: %w", renderer.ErrTransient)
	}
	if fw != s.cfg.Width || fh != s.cfg.Height {
		return nil, fmt.Errorf("acquire: surface %dx%d is outdated for window %dx%d: %w",
			s.cfg.Width, s.cfg.Height, fw, fh, renderer.ErrTransient)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return nil, fmt.Errorf("acquire: framebuffer %s: %w", framebufferStatusName(status), renderer.ErrSurfaceLost)
	}
	return &s.frame, nil
}

// Present blits the frame to the window and swaps buffers
func (s *Surface) Present(f renderer.Frame) error {
	fr, ok := f.(*frame)
	if !ok || fr != &s.frame {
		return fmt.Errorf("present: frame %T was not acquired from this surface", f)
	}
	w, h := int32(fr.width), int32(fr.height)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fr.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if err := checkError("present"); err != nil {
		return err
	}
	s.window.SwapBuffers()
	return nil
}

// Release deletes the offscreen framebuffer
func (s *Surface) Release() {
	if s.color != 0 {
		gl.DeleteRenderbuffers(1, &s.color)
		s.color = 0
	}
	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
}
