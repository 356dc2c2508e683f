package lighting

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func finite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func TestTrowbridgeReitzNDFFinite(t *testing.T) {
	for r := 0; r <= 20; r++ {
		roughness := float32(r) / 20
		for h := 0; h <= 20; h++ {
			NdotH := float32(h) / 20
			d := TrowbridgeReitzNDF(NdotH, roughness)
			if !finite(d) || d < 0 {
				t.Errorf("NDF(%v, %v) = %v", NdotH, roughness, d)
			}
		}
	}
}

func TestTrowbridgeReitzNDFFullRoughness(t *testing.T) {
	want := float32(1 / math.Pi)
	for _, NdotH := range []float32{0, 0.3, 0.999, 1} {
		if got := TrowbridgeReitzNDF(NdotH, 1); got != want {
			t.Errorf("NDF(%v, 1) = %v, want %v", NdotH, got, want)
		}
	}
}

func TestTrowbridgeReitzNDFPeaksAtHalfVector(t *testing.T) {
	const roughness = 0.4
	peak := TrowbridgeReitzNDF(1, roughness)
	if off := TrowbridgeReitzNDF(0.8, roughness); off >= peak {
		t.Errorf("NDF off-peak %v >= peak %v", off, peak)
	}
}

func TestSchlickFresnel(t *testing.T) {
	tests := []struct {
		HdotL float32
		want  float32
	}{
		{1, DielectricF0},
		{0, 1},
		{-0.5, 1}, // clamped before the power
		{1.5, DielectricF0},
	}
	for _, tt := range tests {
		if got := SchlickFresnel(tt.HdotL); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("SchlickFresnel(%v) = %v, want %v", tt.HdotL, got, tt.want)
		}
	}
}

func TestGeometry(t *testing.T) {
	// alpha 1 reduces the term to 1/(x + 1).
	for _, x := range []float32{0, 0.25, 0.5, 1} {
		if got, want := Geometry(x, 1), 1/(x+1); math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("Geometry(%v, 1) = %v, want %v", x, got, want)
		}
	}
	if got := GeometryAlpha(1); got != 1 {
		t.Errorf("GeometryAlpha(1) = %v, want 1", got)
	}
	if got := GeometryAlpha(0); got != 0.25 {
		t.Errorf("GeometryAlpha(0) = %v, want 0.25", got)
	}
}

func TestSpecularRoughness(t *testing.T) {
	tests := []struct {
		roughness, metalness, want float32
	}{
		{0, 1, 1},
		{0.3, 1, 1},
		{0.3, 0, 0.3},
		{1, 0, 1},
		{0.5, 0.5, 0.75},
	}
	for _, tt := range tests {
		if got := SpecularRoughness(tt.roughness, tt.metalness); got != tt.want {
			t.Errorf("SpecularRoughness(%v, %v) = %v, want %v", tt.roughness, tt.metalness, got, tt.want)
		}
	}
}

func TestSRGBToLinearMonotonic(t *testing.T) {
	prev := SRGBToLinear(0)
	for i := 1; i <= 1000; i++ {
		cur := SRGBToLinear(float32(i) / 1000)
		if cur < prev {
			t.Fatalf("not monotonic at %v: %v < %v", float32(i)/1000, cur, prev)
		}
		prev = cur
	}
	if got := SRGBToLinear(1); math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("SRGBToLinear(1) = %v", got)
	}
}

func TestSRGBToLinearBreakpoint(t *testing.T) {
	const x = 0.04045
	if got, want := SRGBToLinear(x), float32(x)/12.92; got != want {
		t.Errorf("SRGBToLinear(%v) = %v, want linear segment %v", x, got, want)
	}
	above := SRGBToLinear(x + 1e-6)
	curve := float32(math.Pow((x+1e-6+0.055)/1.055, 2.4))
	if math.Abs(float64(above-curve)) > 1e-7 {
		t.Errorf("above breakpoint = %v, want power segment %v", above, curve)
	}
	if math.Abs(float64(above-SRGBToLinear(x))) > 1e-5 {
		t.Errorf("discontinuity at breakpoint: %v vs %v", above, SRGBToLinear(x))
	}
}

func TestSRGBToLinearColorKeepsAlpha(t *testing.T) {
	c := SRGBToLinearColor(mgl32.Vec4{1, 0.5, 0, 0.25})
	if c[3] != 0.25 {
		t.Errorf("alpha = %v, want 0.25", c[3])
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})
	if !got.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Errorf("Reflect = %v", got)
	}
}
