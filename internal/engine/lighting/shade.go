package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/frame"
)

// Samples holds the texel values the fragment stage reads at one pixel, as
// they come out of the sampler (base color still gamma encoded).
type Samples struct {
	BaseColor mgl32.Vec4
	// Metalness is read from B, roughness from G.
	Metallic  mgl32.Vec4
	Roughness mgl32.Vec4
	// Normal is the raw [0,1] tangent-space normal texel.
	Normal   mgl32.Vec4
	Emissive mgl32.Vec4
}

// FlatNormal is the texel of an unperturbed tangent-space normal.
var FlatNormal = mgl32.Vec4{0.5, 0.5, 1, 1}

// Environment is the irradiance cube map.
type Environment interface {
	Sample(dir mgl32.Vec3, lod float32) mgl32.Vec3
	MipLevels() int
}

// ConstantEnvironment returns the same radiance in every direction and level.
type ConstantEnvironment struct {
	Color  mgl32.Vec3
	Levels int
}

func (e ConstantEnvironment) Sample(mgl32.Vec3, float32) mgl32.Vec3 { return e.Color }
func (e ConstantEnvironment) MipLevels() int                       { return e.Levels }

// Terms are the intermediate values of one evaluation.
type Terms struct {
	NdotL, NdotH, NdotV, HdotL float32
	SpecularRoughness          float32
	D, G, F                    float32
	MipLevel                   float32
}

// Result is the shaded pixel split by contribution.
type Result struct {
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
	Emissive mgl32.Vec3
	Color    mgl32.Vec4
	Terms    Terms
}

// WorldNormal decodes a tangent-space normal texel through the interpolated
// basis. The basis vectors are used as interpolated, without renormalizing.
func WorldNormal(texel mgl32.Vec4, in Varyings) mgl32.Vec3 {
	t := texel.Vec3().Mul(2).Sub(mgl32.Vec3{1, 1, 1})
	return in.Tangent.Mul(t[0]).Add(in.Bitangent.Mul(t[1])).Add(in.Normal.Mul(t[2])).Normalize()
}

// Shade evaluates the fragment stage for one pixel.
func Shade(s Samples, in Varyings, u *frame.Uniforms, env Environment) Result {
	base := SRGBToLinearColor(s.BaseColor)
	baseRGB := base.Vec3()
	roughness := s.Roughness[1]
	metalness := s.Metallic[2]

	n := WorldNormal(s.Normal, in)
	l := u.LightDirection.Normalize()
	v := u.CameraPosition.Sub(in.WorldPosition).Normalize()
	h := l.Add(v).Normalize()
	r := Reflect(v.Mul(-1), n)

	var t Terms
	t.NdotL = Saturate(n.Dot(l))
	t.NdotH = Saturate(n.Dot(h))
	t.NdotV = Saturate(n.Dot(v))
	t.HdotL = Saturate(h.Dot(l))

	diffuse := mulVec3(baseRGB.Mul(float32(1/math.Pi)*(1-metalness)*t.NdotL), DiffuseLightColor)

	t.SpecularRoughness = SpecularRoughness(roughness, metalness)
	t.D = TrowbridgeReitzNDF(t.NdotH, t.SpecularRoughness)
	t.F = SchlickFresnel(t.HdotL)
	alphaG := GeometryAlpha(t.SpecularRoughness)
	t.G = Geometry(t.NdotL, alphaG) * Geometry(t.NdotV, alphaG)

	t.MipLevel = roughness * float32(env.MipLevels())
	irradiance := env.Sample(r, t.MipLevel)

	tint := baseRGB.Mul(metalness)
	specular := mulVec3(irradiance.Mul(t.D*t.G*t.F), tint.Add(mgl32.Vec3{1, 1, 1})).
		Add(mulVec3(irradiance, tint))

	emissive := s.Emissive.Vec3()
	color := diffuse.Add(specular).Add(emissive)

	return Result{
		Diffuse:  diffuse,
		Specular: specular,
		Emissive: emissive,
		Color:    color.Vec4(base[3]),
		Terms:    t,
	}
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
