package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPositionDefault(t *testing.T) {
	c := NewOrbitCamera()
	if got := c.Position(); !got.ApproxEqual(mgl32.Vec3{0, 0, 5}) {
		t.Errorf("Position = %v, want (0,0,5)", got)
	}
}

func TestViewMatrixMatchesPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.Target = mgl32.Vec3{1, 2, 3}
	c.Azimuth = 0.8
	c.Altitude = 0.4
	c.Radius = 7

	eye := c.ViewMatrix().Inv().Col(3).Vec3()
	if !eye.ApproxEqualThreshold(c.Position(), 1e-4) {
		t.Errorf("eye from view = %v, want %v", eye, c.Position())
	}
	if d := c.Position().Sub(c.Target).Len(); math.Abs(float64(d-7)) > 1e-4 {
		t.Errorf("distance to target = %v, want 7", d)
	}
}

func TestViewMatrixStraightDown(t *testing.T) {
	c := NewOrbitCamera()
	c.Altitude = MaxAltitude
	m := c.ViewMatrix()
	for i := 0; i < 16; i++ {
		if f := float64(m[i]); math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("view matrix not finite at top: %v", m)
		}
	}
}

func TestDragClampsAltitude(t *testing.T) {
	tests := []struct {
		name string
		dy   float32
		want float32
	}{
		{"up", 1e6, MaxAltitude},
		{"down", -1e6, MinAltitude},
		{"small", 10, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Drag(0, tt.dy)
			if math.Abs(float64(c.Altitude-tt.want)) > 1e-6 {
				t.Errorf("Altitude = %v, want %v", c.Altitude, tt.want)
			}
		})
	}
}

func TestDragAzimuth(t *testing.T) {
	c := NewOrbitCamera()
	c.Drag(50, 0)
	if math.Abs(float64(c.Azimuth+0.5)) > 1e-6 {
		t.Errorf("Azimuth = %v, want -0.5", c.Azimuth)
	}
}

func TestZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.Zoom(1)
	if math.Abs(float64(c.Radius-4.5)) > 1e-5 {
		t.Errorf("Radius = %v, want 4.5", c.Radius)
	}
	for i := 0; i < 200; i++ {
		c.Zoom(5)
	}
	if c.Radius != c.MinRadius {
		t.Errorf("Radius = %v, want MinRadius", c.Radius)
	}
	for i := 0; i < 200; i++ {
		c.Zoom(-5)
	}
	if c.Radius != c.MaxRadius {
		t.Errorf("Radius = %v, want MaxRadius", c.Radius)
	}
}

func TestPanForwardFollowsAzimuth(t *testing.T) {
	c := NewOrbitCamera()
	c.Radius = 100
	c.Pan(1, 0, 0)
	// At azimuth 0 the eye is on +Z, so forward is -Z.
	if !c.Target.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Target = %v", c.Target)
	}
}

func TestFrame(t *testing.T) {
	c := NewOrbitCamera()
	c.Frame(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 1, 1})
	if !c.Target.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Target = %v", c.Target)
	}
	halfDiag := float32(math.Sqrt(16+4+4)) / 2
	if math.Abs(float64(c.Radius-halfDiag*2)) > 1e-4 {
		t.Errorf("Radius = %v, want %v", c.Radius, halfDiag*2)
	}

	before := c.Radius
	c.Frame(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{2, 2, 2})
	if c.Radius != before {
		t.Errorf("empty bounds changed radius to %v", c.Radius)
	}
}
