// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and frame pacing settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	TargetFPS  int  `yaml:"target_fps"`
}

// SceneConfig holds the input asset paths.
type SceneConfig struct {
	Path        string `yaml:"path"`        // .gltf or .glb
	Environment string `yaml:"environment"` // cube map image or face directory
}

// CameraConfig holds the initial orbit and input sensitivity.
type CameraConfig struct {
	Radius          float32 `yaml:"radius"` // 0 frames the scene bounds
	Azimuth         float32 `yaml:"azimuth"`
	Altitude        float32 `yaml:"altitude"`
	Sensitivity     float32 `yaml:"sensitivity"`
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"`
}

// CaptureConfig enables headless rendering to a PNG.
type CaptureConfig struct {
	Output string `yaml:"output"`
	Frames int    `yaml:"frames"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			TargetFPS:  60,
		},
		Camera: CameraConfig{
			Altitude:        0.3,
			Sensitivity:     0.01,
			ZoomSensitivity: 0.1,
		},
		Capture: CaptureConfig{
			Frames: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Capturing reports whether the viewer renders offscreen to a file.
func (c *Config) Capturing() bool {
	return c.Capture.Output != ""
}

// Validate reports settings the viewer cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.TargetFPS < 0 {
		errs = append(errs, fmt.Errorf("graphics: negative target_fps %d", c.Graphics.TargetFPS))
	}
	if c.Camera.Radius < 0 {
		errs = append(errs, fmt.Errorf("camera: negative radius %g", c.Camera.Radius))
	}
	if c.Capturing() && c.Capture.Frames < 1 {
		errs = append(errs, fmt.Errorf("capture: frames must be at least 1, got %d", c.Capture.Frames))
	}
	return errors.Join(errs...)
}
