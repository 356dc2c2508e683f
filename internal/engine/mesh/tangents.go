package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GenerateTangents derives per-vertex tangents from texture coordinates and
// normals, then orthonormalises them against the normal.
// Vertices whose triangles have no usable UV area get an arbitrary tangent
// perpendicular to the normal, so every vertex ends with a complete basis.
func (m *Mesh) GenerateTangents() {
	acc := make([]mgl32.Vec3, len(m.Vertices))

	addTriangle := func(i0, i1, i2 uint32) {
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.TexCoord[0]-v0.TexCoord[0], v1.TexCoord[1]-v0.TexCoord[1]
		du2, dv2 := v2.TexCoord[0]-v0.TexCoord[0], v2.TexCoord[1]-v0.TexCoord[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			return
		}
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / det)
		acc[i0] = acc[i0].Add(t)
		acc[i1] = acc[i1].Add(t)
		acc[i2] = acc[i2].Add(t)
	}

	for _, sub := range m.Submeshes {
		forEachTriangle(sub, addTriangle)
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := acc[i].Sub(n.Mul(n.Dot(acc[i])))
		if t.Dot(t) < 1e-12 {
			t = perpendicular(n)
		}
		m.Vertices[i].Tangent = t.Normalize()
	}
}

// HasTangents reports whether every vertex carries a non-zero tangent.
func (m *Mesh) HasTangents() bool {
	for _, v := range m.Vertices {
		if v.Tangent.Dot(v.Tangent) == 0 {
			return false
		}
	}
	return len(m.Vertices) > 0
}

func forEachTriangle(sub Submesh, fn func(i0, i1, i2 uint32)) {
	idx := sub.Indices
	switch sub.Topology {
	case Triangles:
		for i := 0; i+2 < len(idx); i += 3 {
			fn(idx[i], idx[i+1], idx[i+2])
		}
	case TriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				fn(idx[i], idx[i+1], idx[i+2])
			} else {
				fn(idx[i+1], idx[i], idx[i+2])
			}
		}
	}
}

func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
