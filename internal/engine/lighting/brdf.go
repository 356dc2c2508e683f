// Package lighting is the host-side mirror of the PBR shaders. Every function
// here has a line-for-line counterpart in renderer/shaders/pbr.frag or pbr.vert
// so the shading model can be checked without a GPU.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DielectricF0 is the base reflectance of non-metals at normal incidence.
const DielectricF0 = 0.04

// DiffuseLightColor is the radiance of the single directional light.
var DiffuseLightColor = mgl32.Vec3{4, 4, 4}

// ndfEpsilon bounds the NDF denominator away from zero for a perfectly
// smooth lobe viewed along the half vector.
const ndfEpsilon = 1e-7

// Saturate clamps x to [0, 1].
func Saturate(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

// SRGBToLinear converts one gamma-encoded channel to linear.
func SRGBToLinear(x float32) float32 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return float32(math.Pow(float64((x+0.055)/1.055), 2.4))
}

// SRGBToLinearColor converts rgb and leaves alpha untouched.
func SRGBToLinearColor(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{SRGBToLinear(c[0]), SRGBToLinear(c[1]), SRGBToLinear(c[2]), c[3]}
}

// SpecularRoughness widens the specular lobe of metals to their full
// roughness and narrows it for dielectrics.
func SpecularRoughness(roughness, metalness float32) float32 {
	return roughness*(1-metalness) + metalness
}

// TrowbridgeReitzNDF is the GGX normal distribution.
func TrowbridgeReitzNDF(NdotH, roughness float32) float32 {
	if roughness >= 1 {
		return 1 / math.Pi
	}
	r2 := roughness * roughness
	d := (NdotH*r2-NdotH)*NdotH + 1
	d = max(d, ndfEpsilon)
	return r2 / (math.Pi * d * d)
}

// SchlickFresnel returns the dielectric Fresnel term for the angle between
// half vector and light.
func SchlickFresnel(HdotL float32) float32 {
	f := float32(math.Pow(float64(1-Saturate(HdotL)), 5))
	return DielectricF0 + (1-DielectricF0)*f
}

// GeometryAlpha maps specular roughness to the alpha of the visibility term.
func GeometryAlpha(specularRoughness float32) float32 {
	a := specularRoughness*0.5 + 0.5
	return a * a
}

// Geometry is one side of the separable Smith visibility term.
func Geometry(x, alphaG float32) float32 {
	a := alphaG * alphaG
	return 1 / (x + float32(math.Sqrt(float64(a+x*x-a*x*x))))
}

// Reflect mirrors incident about n (GLSL reflect).
func Reflect(incident, n mgl32.Vec3) mgl32.Vec3 {
	return incident.Sub(n.Mul(2 * n.Dot(incident)))
}
