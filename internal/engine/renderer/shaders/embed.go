// Package shaders provides the embedded GLSL sources of the PBR pipeline.
package shaders

import _ "embed"

// PBRVertexShader transforms vertices and builds the world-space
// tangent basis.
//
//go:embed pbr.vert
var PBRVertexShader string

// PBRFragmentShader evaluates the metal/roughness BRDF.
//
//go:embed pbr.frag
var PBRFragmentShader string

// Sampler uniform names.
const (
	SamplerBaseColor  = "uBaseColor"
	SamplerMetallic   = "uMetallic"
	SamplerRoughness  = "uRoughness"
	SamplerNormal     = "uNormal"
	SamplerEmissive   = "uEmissive"
	SamplerIrradiance = "uIrradiance"

	// IrradianceLevels is the float uniform holding the environment mip count.
	IrradianceLevels = "uIrradianceLevels"
)
