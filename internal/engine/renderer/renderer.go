// Package renderer draws a scene with the PBR pipeline. Renderer holds the
// per-frame orchestration; the GPU work goes through a Device so the draw
// sequence can be exercised without a GL context.
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/frame"
	"github.com/Faultbox/midgard-pbr/internal/engine/material"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
	"github.com/Faultbox/midgard-pbr/internal/engine/scene"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// MeshHandle identifies a mesh uploaded to a Device.
type MeshHandle int

// Target is the draw target of one frame.
type Target struct {
	// Framebuffer is the GL framebuffer name; 0 is the default framebuffer.
	Framebuffer uint32
	Width       int
	Height      int
}

// Surface hands out a draw target per frame. Acquire returns false while no
// target is available, for example while a window is minimized or resizing.
type Surface interface {
	Acquire() (Target, bool)
	Present()
}

// Device is the GPU command interface used by Renderer.
type Device interface {
	// UploadMesh copies vertex and index data to the GPU.
	UploadMesh(m *mesh.Mesh) (MeshHandle, error)
	ReleaseMesh(h MeshHandle)

	// Defaults returns the fallback textures for absent material channels.
	Defaults() material.Defaults

	BeginPass(t Target)
	BindEnvironment(h texture.Handle, levels int)
	SetUniforms(u *frame.Uniforms)
	BindMesh(h MeshHandle)
	BindTexture(slot int, h texture.Handle)
	DrawSubmesh(h MeshHandle, submesh int)
	EndPass()
}

// Environment is the irradiance cube map shared by every material.
type Environment struct {
	Handle texture.Handle
	Levels int
}

// Stats counts renderer work.
type Stats struct {
	Frames        uint64
	SkippedFrames uint64
	// Nodes and DrawCalls describe the last drawn frame.
	Nodes     int
	DrawCalls int
}

// Renderer draws a loaded scene once per RenderFrame call.
type Renderer struct {
	device Device
	state  *frame.State
	log    *zap.Logger

	scene  *scene.Scene
	meshes []MeshHandle
	env    Environment

	stats Stats
}

// New creates a renderer that advances time at targetFPS.
func New(device Device, targetFPS int) *Renderer {
	return &Renderer{
		device: device,
		state:  frame.NewState(targetFPS),
		log:    logger.Named("renderer"),
	}
}

// Load uploads every mesh of s. Any failure is fatal for the scene: meshes
// uploaded so far are released and the error names the mesh.
func (r *Renderer) Load(s *scene.Scene, env Environment) error {
	r.release()

	meshes := s.Meshes()
	handles := make([]MeshHandle, 0, len(meshes))
	for i, m := range meshes {
		if err := m.Validate(); err != nil {
			r.releaseHandles(handles)
			return fmt.Errorf("mesh %d (%s): %w", i, m.Name, err)
		}
		h, err := r.device.UploadMesh(m)
		if err != nil {
			r.releaseHandles(handles)
			return fmt.Errorf("upload mesh %d (%s): %w", i, m.Name, err)
		}
		handles = append(handles, h)
	}

	r.scene = s
	r.meshes = handles
	r.env = env
	r.log.Info("scene loaded",
		zap.Int("meshes", len(handles)),
		zap.Int("nodes", len(s.Nodes())),
		zap.Int("irradiance_levels", env.Levels),
	)
	return nil
}

// RenderFrame draws one frame with the given view matrix. It returns false
// when the surface had no target and the frame was skipped.
func (r *Renderer) RenderFrame(surface Surface, view mgl32.Mat4) bool {
	target, ok := surface.Acquire()
	if !ok {
		r.stats.SkippedFrames++
		r.log.Debug("no draw target, frame skipped")
		return false
	}

	r.state.Update(view, target.Width, target.Height)

	r.device.BeginPass(target)
	r.device.BindEnvironment(r.env.Handle, r.env.Levels)

	var nodes, draws int
	if r.scene != nil {
		defaults := r.device.Defaults()
		for _, n := range r.scene.Nodes() {
			u := frame.Build(n.Transform, r.state)
			r.device.SetUniforms(&u)

			mh := r.meshes[n.Mesh]
			r.device.BindMesh(mh)

			m := r.scene.Mesh(n.Mesh)
			for i := range m.Submeshes {
				mat := r.scene.Material(n.Materials[i])
				for _, ch := range material.Channels {
					r.device.BindTexture(ch.Role().Slot(), mat.Bind(ch, defaults))
				}
				r.device.DrawSubmesh(mh, i)
				draws++
			}
			nodes++
		}
	}

	r.device.EndPass()
	surface.Present()

	r.stats.Frames++
	r.stats.Nodes = nodes
	r.stats.DrawCalls = draws
	return true
}

// State returns the camera and light state of the last frame.
func (r *Renderer) State() *frame.State {
	return r.state
}

// Stats returns a snapshot of the counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Close releases uploaded meshes.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Uint64("frames", r.stats.Frames))
	r.release()
}

func (r *Renderer) release() {
	r.releaseHandles(r.meshes)
	r.meshes = nil
	r.scene = nil
}

func (r *Renderer) releaseHandles(hs []MeshHandle) {
	for _, h := range hs {
		r.device.ReleaseMesh(h)
	}
}
