// Package camera provides the orbit camera that drives the view matrix.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Altitude limits in radians.
const (
	MinAltitude = -math.Pi / 4
	MaxAltitude = math.Pi / 2
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates
	Azimuth  float32 // around +Y, radians
	Altitude float32 // above the XZ plane, radians
	Radius   float32

	// Constraints
	MinRadius float32
	MaxRadius float32

	// Sensitivity
	Sensitivity     float32 // radians per pixel of drag
	ZoomSensitivity float32 // fraction of radius per wheel step
}

// NewOrbitCamera creates a camera looking at the origin from +Z.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Radius:          5,
		MinRadius:       0.2,
		MaxRadius:       90,
		Sensitivity:     0.01,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	alt, az := float64(c.Altitude), float64(c.Azimuth)
	offset := mgl32.Vec3{
		float32(math.Cos(alt) * math.Sin(az)),
		float32(math.Sin(alt)),
		float32(math.Cos(alt) * math.Cos(az)),
	}.Mul(c.Radius)
	return c.Target.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	// Straight down the Y axis the usual up vector is degenerate.
	if c.Altitude >= MaxAltitude-1e-4 {
		up = mgl32.Vec3{-float32(math.Sin(float64(c.Azimuth))), 0, -float32(math.Cos(float64(c.Azimuth)))}
	}
	return mgl32.LookAtV(c.Position(), c.Target, up)
}

// Drag rotates the camera by a pointer delta in pixels.
func (c *OrbitCamera) Drag(dx, dy float32) {
	c.Azimuth -= dx * c.Sensitivity
	c.Altitude = mgl32.Clamp(c.Altitude+dy*c.Sensitivity, MinAltitude, MaxAltitude)
}

// Zoom moves toward the target for positive wheel steps.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Radius -= steps * c.Radius * c.ZoomSensitivity
	c.Radius = mgl32.Clamp(c.Radius, c.MinRadius, c.MaxRadius)
}

// Pan moves the target in the camera's horizontal frame. Speed scales with
// the radius.
func (c *OrbitCamera) Pan(forward, right, up float32) {
	speed := c.Radius * 0.01
	sin, cos := float32(math.Sin(float64(c.Azimuth))), float32(math.Cos(float64(c.Azimuth)))
	dir := mgl32.Vec3{-sin*forward + cos*right, up, -cos*forward - sin*right}
	c.Target = c.Target.Add(dir.Mul(speed))
}

// Frame centers the target on a bounding box and sets the radius so the box
// fits a 60 degree vertical field of view.
func (c *OrbitCamera) Frame(min, max mgl32.Vec3) {
	c.Target = min.Add(max).Mul(0.5)
	halfDiag := max.Sub(min).Len() / 2
	if halfDiag == 0 {
		return
	}
	r := halfDiag / float32(math.Sin(math.Pi/6))
	if c.MaxRadius < r*2 {
		c.MaxRadius = r * 2
	}
	c.Radius = mgl32.Clamp(r, c.MinRadius, c.MaxRadius)
}
