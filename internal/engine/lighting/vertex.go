package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/frame"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
)

// Varyings is what the vertex stage hands to the fragment stage.
type Varyings struct {
	ClipPosition  mgl32.Vec4
	TexCoord      mgl32.Vec2
	WorldPosition mgl32.Vec3
	Normal        mgl32.Vec3
	Tangent       mgl32.Vec3
	Bitangent     mgl32.Vec3
}

// VertexStage transforms one vertex. The bitangent is the object-space cross
// product taken through the normal matrix, not the cross product of the
// already transformed normal and tangent.
func VertexStage(v mesh.Vertex, u *frame.Uniforms) Varyings {
	pos := v.Position.Vec4(1)
	return Varyings{
		ClipPosition:  u.ModelViewProjection.Mul4x1(pos),
		TexCoord:      v.TexCoord,
		WorldPosition: u.Model.Mul4x1(pos).Vec3(),
		Normal:        u.Normal.Mul3x1(v.Normal),
		Tangent:       u.Normal.Mul3x1(v.Tangent),
		Bitangent:     u.Normal.Mul3x1(v.Normal.Cross(v.Tangent)),
	}
}

// Interpolate blends three vertex outputs with barycentric weights, the way the
// rasterizer feeds a fragment.
func Interpolate(a, b, c Varyings, w mgl32.Vec3) Varyings {
	v3 := func(x, y, z mgl32.Vec3) mgl32.Vec3 {
		return x.Mul(w[0]).Add(y.Mul(w[1])).Add(z.Mul(w[2]))
	}
	return Varyings{
		ClipPosition:  a.ClipPosition.Mul(w[0]).Add(b.ClipPosition.Mul(w[1])).Add(c.ClipPosition.Mul(w[2])),
		TexCoord:      a.TexCoord.Mul(w[0]).Add(b.TexCoord.Mul(w[1])).Add(c.TexCoord.Mul(w[2])),
		WorldPosition: v3(a.WorldPosition, b.WorldPosition, c.WorldPosition),
		Normal:        v3(a.Normal, b.Normal, c.Normal),
		Tangent:       v3(a.Tangent, b.Tangent, c.Tangent),
		Bitangent:     v3(a.Bitangent, b.Bitangent, c.Bitangent),
	}
}
