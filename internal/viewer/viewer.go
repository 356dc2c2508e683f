// Package viewer wires the window, renderer and assets into the main loop.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/config"
	"github.com/Faultbox/midgard-pbr/internal/engine/asset"
	"github.com/Faultbox/midgard-pbr/internal/engine/camera"
	"github.com/Faultbox/midgard-pbr/internal/engine/debug"
	"github.com/Faultbox/midgard-pbr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-pbr/internal/engine/input"
	"github.com/Faultbox/midgard-pbr/internal/engine/renderer"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/engine/window"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// Title is the window title.
const Title = "Midgard PBR"

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	log      *zap.Logger
	window   *window.Window
	device   *renderer.GLDevice
	renderer *renderer.Renderer
	textures *asset.TextureCache
	env      renderer.Environment
	camera   *camera.OrbitCamera
	input    *input.Input

	// offscreen is created on the first capture or screenshot.
	offscreen *framebuffer.Framebuffer
	shots     *debug.ScreenshotCapture
}

// New creates the window and GL device, then loads the scene and
// environment. Any error is fatal; its message names the failed stage.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
		input:  input.New(),
		shots:  debug.NewScreenshotCapture("screenshots", "pbr"),
	}
	v.log.Info("initializing viewer",
		zap.String("scene", cfg.Scene.Path),
		zap.String("environment", cfg.Scene.Environment),
		zap.Bool("capture", cfg.Capturing()),
	)

	if err := v.init(); err != nil {
		v.Close()
		return nil, err
	}

	v.log.Info("viewer initialized")
	return v, nil
}

func (v *Viewer) init() error {
	cfg := v.config

	// Create window (this also creates the OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Hidden:     cfg.Capturing(),
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	// Device AFTER window, since the OpenGL context must exist
	v.device, err = renderer.NewGLDevice()
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	v.textures = asset.NewTextureCache()
	sc, err := asset.ImportGLTF(cfg.Scene.Path, v.textures)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	v.window.SetTitle(windowTitle(cfg.Scene.Path))

	if cfg.Scene.Environment != "" {
		v.env, err = asset.LoadEnvironment(cfg.Scene.Environment, nil)
	} else {
		v.log.Warn("no environment configured, using neutral irradiance")
		v.env, err = asset.NeutralEnvironment(nil)
	}
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	v.renderer = renderer.New(v.device, cfg.Graphics.TargetFPS)
	if err := v.renderer.Load(sc, v.env); err != nil {
		return fmt.Errorf("upload scene: %w", err)
	}

	v.camera = newCamera(cfg.Camera)
	if cfg.Camera.Radius == 0 {
		if lo, hi, ok := sc.Bounds(); ok {
			v.camera.Frame(lo, hi)
		}
	}

	hits, misses := v.textures.Stats()
	v.log.Info("scene ready",
		zap.Int("nodes", len(sc.Nodes())),
		zap.Int("meshes", len(sc.Meshes())),
		zap.Int("textures", v.textures.Len()),
		zap.Int("texture_cache_hits", hits),
		zap.Int("texture_cache_misses", misses),
		zap.Float32("camera_radius", v.camera.Radius),
	)
	return nil
}

// windowTitle names the loaded scene file after the viewer title.
func windowTitle(scenePath string) string {
	if scenePath == "" {
		return Title
	}
	return Title + " - " + filepath.Base(scenePath)
}

func newCamera(cfg config.CameraConfig) *camera.OrbitCamera {
	c := camera.NewOrbitCamera()
	c.Azimuth = cfg.Azimuth
	c.Altitude = cfg.Altitude
	if cfg.Radius > 0 {
		c.Radius = cfg.Radius
		if c.MaxRadius < c.Radius {
			c.MaxRadius = c.Radius
		}
	}
	if cfg.Sensitivity > 0 {
		c.Sensitivity = cfg.Sensitivity
	}
	if cfg.ZoomSensitivity > 0 {
		c.ZoomSensitivity = cfg.ZoomSensitivity
	}
	// Apply the altitude clamp.
	c.Drag(0, 0)
	return c
}

// Run drives the frame loop until the window closes. In capture mode it
// renders offscreen and returns after writing the image.
func (v *Viewer) Run() error {
	if v.config.Capturing() {
		return v.capture()
	}

	interval := frameDuration(v.config.Graphics.TargetFPS, v.config.Graphics.VSync)
	fpsTimer := time.Now()
	frameCount := 0

	v.log.Info("starting frame loop", zap.Duration("interval", interval))

	for {
		start := time.Now()

		f := v.input.Update()
		if f.Quit {
			break
		}
		if f.Resized {
			v.log.Debug("window resized", zap.Int("width", f.Width), zap.Int("height", f.Height))
		}
		applyInput(v.camera, f)

		if v.renderer.RenderFrame(v.window, v.camera.ViewMatrix()) {
			frameCount++
		}

		if f.Screenshot {
			if err := v.screenshot(); err != nil {
				v.log.Warn("screenshot failed", zap.Error(err))
			}
		}

		if time.Since(fpsTimer) >= time.Second {
			stats := v.renderer.Stats()
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draw_calls", stats.DrawCalls),
				zap.Uint64("skipped", stats.SkippedFrames),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if wait := interval - time.Since(start); wait > 0 {
			time.Sleep(wait)
		}
	}
	return nil
}

// applyInput moves the camera by one poll's worth of input.
func applyInput(c *camera.OrbitCamera, f input.Frame) {
	if f.DragX != 0 || f.DragY != 0 {
		c.Drag(f.DragX, f.DragY)
	}
	if f.Zoom != 0 {
		c.Zoom(f.Zoom)
	}
	if f.Pan != [3]float32{} {
		c.Pan(f.Pan[0], f.Pan[1], f.Pan[2])
	}
}

// frameDuration is the loop pacing interval. VSync paces through the swap,
// and a zero rate runs unpaced.
func frameDuration(targetFPS int, vsync bool) time.Duration {
	if vsync || targetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(targetFPS)
}

// target returns the offscreen framebuffer sized to width x height.
func (v *Viewer) target(width, height int) (*framebuffer.Framebuffer, error) {
	if v.offscreen == nil {
		fb, err := framebuffer.New(width, height)
		if err != nil {
			return nil, err
		}
		v.offscreen = fb
	}
	v.offscreen.Resize(width, height)
	return v.offscreen, nil
}

// capture renders the configured number of frames offscreen and writes the
// last one to the capture output.
func (v *Viewer) capture() error {
	cfg := v.config
	fb, err := v.target(cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		return fmt.Errorf("create capture target: %w", err)
	}

	view := v.camera.ViewMatrix()
	for i := 0; i < cfg.Capture.Frames; i++ {
		v.renderer.RenderFrame(fb, view)
	}

	width, height := fb.Size()
	img, err := debug.FlipRGBA(fb.ReadPixels(), width, height)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	if err := debug.WritePNG(cfg.Capture.Output, img); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}

	abs, _ := filepath.Abs(cfg.Capture.Output)
	v.log.Info("capture written",
		zap.String("path", abs),
		zap.Int("frames", cfg.Capture.Frames),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

// screenshot renders the current view offscreen at the drawable size and
// saves it with a timestamped name.
func (v *Viewer) screenshot() error {
	width, height := v.window.DrawableSize()
	fb, err := v.target(width, height)
	if err != nil {
		return err
	}
	if !v.renderer.RenderFrame(fb, v.camera.ViewMatrix()) {
		return fmt.Errorf("no offscreen target")
	}
	path, err := v.shots.CaptureFromPixels(fb.ReadPixels(), width, height)
	if err != nil {
		return err
	}
	v.log.Info("screenshot saved", zap.String("path", path))
	return nil
}

// Close releases GPU resources in reverse creation order, then the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.textures != nil {
		v.textures.Clear()
	}
	if v.env.Handle != 0 {
		texture.Delete(v.env.Handle)
		v.env = renderer.Environment{}
	}
	if v.offscreen != nil {
		v.offscreen.Destroy()
	}
	if v.device != nil {
		v.device.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
