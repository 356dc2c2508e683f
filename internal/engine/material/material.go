// Package material resolves logical PBR material descriptions into per-channel
// texture handles with bind-time fallbacks.
package material

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// Channel is a material texture channel.
type Channel int

const (
	BaseColor Channel = iota
	Metallic
	Roughness
	Normal
	Emissive

	// NumChannels is the number of material channels.
	NumChannels
)

// Channels lists every channel in binding order.
var Channels = [NumChannels]Channel{BaseColor, Metallic, Roughness, Normal, Emissive}

// Role returns the texture role backing the channel.
func (c Channel) Role() texture.Role {
	switch c {
	case BaseColor:
		return texture.RoleBaseColor
	case Metallic:
		return texture.RoleMetallic
	case Roughness:
		return texture.RoleRoughness
	case Normal:
		return texture.RoleNormal
	default:
		return texture.RoleEmissive
	}
}

func (c Channel) String() string {
	return c.Role().String()
}

// Ref names a texture source inside an asset. Read is called lazily by the loader.
type Ref struct {
	Name string
	Key  string
	Read func() ([]byte, error)
}

// Description is the imported, pre-upload form of a material.
// A nil entry means the asset has no texture for that channel.
type Description struct {
	Name     string
	Textures [NumChannels]*Ref
}

// Loader turns a texture reference into a GPU handle.
type Loader interface {
	Load(ref Ref, role texture.Role) (texture.Handle, error)
}

// Slot is an optional texture binding.
type Slot struct {
	Handle  texture.Handle
	Present bool
}

// Material holds resolved channel textures. It is immutable after Resolve.
type Material struct {
	name  string
	slots [NumChannels]Slot
}

// Defaults are the process-wide fallback textures bound for absent channels.
type Defaults struct {
	// Black is opaque black, used for every color-like channel.
	Black texture.Handle
	// FlatNormal encodes the tangent-space normal (0, 0, 1).
	FlatNormal texture.Handle
}

// Resolve loads each channel present in desc. A nil desc yields a material with
// every channel absent. Load failures leave the channel absent; the material is
// always valid.
func Resolve(desc *Description, loader Loader) *Material {
	m := &Material{}
	if desc == nil {
		return m
	}
	m.name = desc.Name

	for _, ch := range Channels {
		ref := desc.Textures[ch]
		if ref == nil {
			continue
		}
		h, err := loader.Load(*ref, ch.Role())
		if err != nil {
			logger.Warn("texture load failed, using default",
				zap.String("material", desc.Name),
				zap.Stringer("channel", ch),
				zap.String("texture", ref.Name),
				zap.Error(err),
			)
			continue
		}
		m.slots[ch] = Slot{Handle: h, Present: true}
	}
	return m
}

// Name returns the material name from the asset, if any.
func (m *Material) Name() string {
	return m.name
}

// Texture returns the loaded texture for ch and whether one exists.
func (m *Material) Texture(ch Channel) (texture.Handle, bool) {
	s := m.slots[ch]
	return s.Handle, s.Present
}

// Bind returns the handle to bind for ch, falling back to defaults.
func (m *Material) Bind(ch Channel, d Defaults) texture.Handle {
	if h, ok := m.Texture(ch); ok {
		return h
	}
	if ch == Normal {
		return d.FlatNormal
	}
	return d.Black
}
