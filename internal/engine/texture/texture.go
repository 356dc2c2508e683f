// Package texture provides image decoding and GPU texture upload for material channels.
package texture

// Handle is an opaque GPU texture name. The zero Handle refers to no texture.
type Handle uint32

// Role is the semantic use of a texture in the lighting pass.
type Role int

const (
	RoleBaseColor Role = iota
	RoleMetallic
	RoleRoughness
	RoleNormal
	RoleEmissive
	RoleIrradiance
)

// Fixed texture units read by the PBR fragment shader.
// Irradiance is kept apart from the material range, slots 5-8 are reserved.
const (
	SlotBaseColor  = 0
	SlotMetallic   = 1
	SlotRoughness  = 2
	SlotNormal     = 3
	SlotEmissive   = 4
	SlotIrradiance = 9
)

// Slot returns the texture unit the role is bound to.
func (r Role) Slot() int {
	switch r {
	case RoleBaseColor:
		return SlotBaseColor
	case RoleMetallic:
		return SlotMetallic
	case RoleRoughness:
		return SlotRoughness
	case RoleNormal:
		return SlotNormal
	case RoleEmissive:
		return SlotEmissive
	case RoleIrradiance:
		return SlotIrradiance
	}
	return -1
}

// WantsMips reports whether textures of this role are uploaded with a mip chain.
// Normal maps are not: averaged normals shorten and skew at distance.
func (r Role) WantsMips() bool {
	return r != RoleNormal
}

func (r Role) String() string {
	switch r {
	case RoleBaseColor:
		return "base_color"
	case RoleMetallic:
		return "metallic"
	case RoleRoughness:
		return "roughness"
	case RoleNormal:
		return "normal"
	case RoleEmissive:
		return "emissive"
	case RoleIrradiance:
		return "irradiance"
	}
	return "unknown"
}

// MipLevels returns the length of a full mip chain for a w x h image.
func MipLevels(w, h int) int {
	size := w
	if h > size {
		size = h
	}
	levels := 1
	for size > 1 {
		size >>= 1
		levels++
	}
	return levels
}
