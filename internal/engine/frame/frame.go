// Package frame derives the per-frame camera and light state and packs the
// per-draw uniform block shared by the vertex and fragment stages.
package frame

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Projection parameters.
const (
	FieldOfViewY = 60.0 // degrees
	NearPlane    = 0.1
	FarPlane     = 100.0
)

// DefaultTargetFPS is the frame rate the time accumulator advances at.
const DefaultTargetFPS = 60

// State is the camera and light state for one frame.
type State struct {
	// FrameInterval is the time step added per Update, 1/target frame rate.
	FrameInterval float32
	// Frames counts completed updates; Time is Frames * FrameInterval.
	Frames uint64
	Time   float32

	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
	LightDirection mgl32.Vec3
	LightPosition  mgl32.Vec3
}

// NewState returns a state advancing at targetFPS frames per second.
// Non-positive rates fall back to DefaultTargetFPS.
func NewState(targetFPS int) *State {
	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS
	}
	return &State{
		FrameInterval: 1 / float32(targetFPS),
		View:          mgl32.Ident4(),
		Projection:    mgl32.Ident4(),
	}
}

// Update advances time by one frame and derives projection, camera and light
// from the view matrix and the viewport size. Identical inputs and frame count
// always produce identical outputs.
func (s *State) Update(view mgl32.Mat4, width, height int) {
	s.Frames++
	s.Time = float32(s.Frames) * s.FrameInterval

	s.View = view
	s.Projection = mgl32.Perspective(mgl32.DegToRad(FieldOfViewY), AspectRatio(width, height), NearPlane, FarPlane)
	s.CameraPosition = CameraPosition(view)
	s.LightPosition, s.LightDirection = FollowCamera(s.CameraPosition)
}

// AspectRatio returns width/height, or 1 for an empty viewport.
func AspectRatio(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// CameraPosition returns the world position of the eye: the translation
// column of the inverse view matrix.
func CameraPosition(view mgl32.Mat4) mgl32.Vec3 {
	return view.Inv().Col(3).Vec3()
}

// FollowCamera places the light at the viewer. The direction points from the
// origin toward the light.
func FollowCamera(cameraPosition mgl32.Vec3) (position, direction mgl32.Vec3) {
	if cameraPosition.Len() == 0 {
		return cameraPosition, mgl32.Vec3{0, 0, 1}
	}
	return cameraPosition, cameraPosition.Normalize()
}
