// Package mesh defines the interleaved vertex layout and submesh model uploaded to the GPU.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex layout: position, normal, tangent, texcoord, interleaved in one buffer.
const (
	FloatsPerVertex = 11
	Stride          = FloatsPerVertex * 4

	PositionOffset = 0
	NormalOffset   = 12
	TangentOffset  = 24
	TexCoordOffset = 36
)

// Attribute locations in the vertex shader.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTangent  = 2
	AttribTexCoord = 3
)

// Vertex is one interleaved vertex. Its in-memory layout matches Stride.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Topology is the primitive assembly mode of a submesh.
type Topology int

const (
	Triangles Topology = iota
	TriangleStrip
	Lines
	LineStrip
	Points
)

func (t Topology) String() string {
	switch t {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle_strip"
	case Lines:
		return "lines"
	case LineStrip:
		return "line_strip"
	case Points:
		return "points"
	}
	return "unknown"
}

// IndexType is the element size used for a submesh index buffer.
type IndexType int

const (
	Uint16 IndexType = iota
	Uint32
)

// Size returns the byte size of one index.
func (t IndexType) Size() int {
	if t == Uint16 {
		return 2
	}
	return 4
}

// Submesh is an index range drawn with one material.
type Submesh struct {
	Indices  []uint32
	Topology Topology
}

// IndexType returns the narrowest index type able to address every vertex.
func (s *Submesh) IndexType() IndexType {
	for _, i := range s.Indices {
		if i > math.MaxUint16 {
			return Uint32
		}
	}
	return Uint16
}

// IndexBytes packs the indices little-endian using IndexType.
func (s *Submesh) IndexBytes() []byte {
	if s.IndexType() == Uint16 {
		buf := make([]byte, len(s.Indices)*2)
		for i, idx := range s.Indices {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(idx))
		}
		return buf
	}
	buf := make([]byte, len(s.Indices)*4)
	for i, idx := range s.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Mesh is a vertex buffer shared by one or more submeshes.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Submeshes []Submesh
}

// Errors returned by Validate.
var (
	ErrNoVertices  = errors.New("mesh has no vertices")
	ErrNoSubmeshes = errors.New("mesh has no submeshes")
)

// Validate checks that the mesh can be uploaded and drawn.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return ErrNoVertices
	}
	if len(m.Submeshes) == 0 {
		return ErrNoSubmeshes
	}
	n := uint32(len(m.Vertices))
	for si, sub := range m.Submeshes {
		if len(sub.Indices) == 0 {
			return fmt.Errorf("submesh %d: no indices", si)
		}
		for _, idx := range sub.Indices {
			if idx >= n {
				return fmt.Errorf("submesh %d: index %d out of range (%d vertices)", si, idx, n)
			}
		}
	}
	return nil
}

// VertexBytes packs the vertices into the interleaved little-endian layout.
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Vertices)*Stride)
	for i, v := range m.Vertices {
		fs := [FloatsPerVertex]float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.Tangent[0], v.Tangent[1], v.Tangent[2],
			v.TexCoord[0], v.TexCoord[1],
		}
		base := i * Stride
		for j, f := range fs {
			binary.LittleEndian.PutUint32(buf[base+j*4:], math.Float32bits(f))
		}
	}
	return buf
}

// Bounds returns the object-space axis-aligned bounds of the vertices.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			min[k] = float32(math.Min(float64(min[k]), float64(v.Position[k])))
			max[k] = float32(math.Max(float64(max[k]), float64(v.Position[k])))
		}
	}
	return min, max
}
