package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"voxel-render/internal/graphics"
	"voxel-render/internal/graphics/renderer"

	"github.com/pelletier/go-toml/v2"
)

// EnvPath names the environment variable holding an optional config file path
const EnvPath = "VOXEL_RENDER_CONFIG"

// WindowConfig holds window and present settings
type WindowConfig struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	Title    string `toml:"title"`
	VSync    bool   `toml:"vsync"`
	FPSLimit int    `toml:"fps_limit"` // 0 = unlimited, only used without vsync
}

// CameraConfig holds projection and controller tunables, angles in radians
type CameraConfig struct {
	Speed          float32 `toml:"speed"`
	Sensitivity    float32 `toml:"sensitivity"`
	Zoom           float32 `toml:"zoom"`
	Fovy           float32 `toml:"fovy"`
	MinFovy        float32 `toml:"min_fovy"`
	MaxFovy        float32 `toml:"max_fovy"`
	ZNear          float32 `toml:"znear"`
	ZFar           float32 `toml:"zfar"`
	ConstrainPitch bool    `toml:"constrain_pitch"`
}

// LatticeConfig selects the grid face mode
type LatticeConfig struct {
	DoubleSided bool `toml:"double_sided"`
}

// LogConfig holds the log level name
type LogConfig struct {
	Level string `toml:"level"`
}

// Config is the complete viewer configuration
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Camera  CameraConfig  `toml:"camera"`
	Lattice LatticeConfig `toml:"lattice"`
	Log     LogConfig     `toml:"log"`
}

// Default returns the compiled-in configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "voxel-render",
			VSync:  true,
		},
		Camera: CameraConfig{
			Speed:          6.0,
			Sensitivity:    0.003,
			Zoom:           0.05,
			Fovy:           1.0,
			MinFovy:        0.2,
			MaxFovy:        2.5,
			ZNear:          0.1,
			ZFar:           100.0,
			ConstrainPitch: true,
		},
		Lattice: LatticeConfig{DoubleSided: true},
		Log:     LogConfig{Level: "info"},
	}
}

// Validate checks the invariants the camera and window rely on
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fps_limit must be >= 0, got %d", c.Window.FPSLimit))
	}
	cam := c.Camera
	if err := c.CameraSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(cam.Fovy >= cam.MinFovy && cam.Fovy <= cam.MaxFovy) {
		errs = append(errs, fmt.Errorf("fovy %v outside [%v, %v]", cam.Fovy, cam.MinFovy, cam.MaxFovy))
	}
	if !(cam.ZNear > 0) || !(cam.ZNear < cam.ZFar) || math.IsInf(float64(cam.ZFar), 0) {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < znear < zfar, got %v, %v", cam.ZNear, cam.ZFar))
	}
	return errors.Join(errs...)
}

// CameraSettings converts the camera section for the controller
func (c Config) CameraSettings() graphics.ControllerSettings {
	return graphics.ControllerSettings{
		Speed:          c.Camera.Speed,
		Sensitivity:    c.Camera.Sensitivity,
		ZoomRate:       c.Camera.Zoom,
		MinFovy:        c.Camera.MinFovy,
		MaxFovy:        c.Camera.MaxFovy,
		ConstrainPitch: c.Camera.ConstrainPitch,
	}
}

// SurfaceConfig converts the window section for the frame sink
func (c Config) SurfaceConfig() renderer.SurfaceConfig {
	return renderer.SurfaceConfig{
		Width:  c.Window.Width,
		Height: c.Window.Height,
		VSync:  c.Window.VSync,
	}
}

// Load reads a TOML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Default(), fmt.Errorf("config %s: %s", path, strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return Default(), fmt.Errorf("config %s:%d:%d: %w", path, row, col, err)
		}
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by EnvPath, or returns the defaults when it is unset.
// The returned path is empty when no file is configured.
func FromEnv() (Config, string, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}
