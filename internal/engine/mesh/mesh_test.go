package mesh

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// quad returns a unit quad in the XY plane facing +Z with UVs aligned to X/Y.
func quad() *Mesh {
	n := mgl32.Vec3{0, 0, 1}
	return &Mesh{
		Name: "quad",
		Vertices: []Vertex{
			{Position: mgl32.Vec3{0, 0, 0}, Normal: n, TexCoord: mgl32.Vec2{0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}, Normal: n, TexCoord: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{1, 1, 0}, Normal: n, TexCoord: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0, 1, 0}, Normal: n, TexCoord: mgl32.Vec2{0, 1}},
		},
		Submeshes: []Submesh{{Indices: []uint32{0, 1, 2, 0, 2, 3}, Topology: Triangles}},
	}
}

func TestVertexLayout(t *testing.T) {
	if got := unsafe.Sizeof(Vertex{}); got != Stride {
		t.Errorf("sizeof(Vertex) = %d, want %d", got, Stride)
	}
	if got := unsafe.Offsetof(Vertex{}.Normal); got != NormalOffset {
		t.Errorf("normal offset = %d, want %d", got, NormalOffset)
	}
	if got := unsafe.Offsetof(Vertex{}.Tangent); got != TangentOffset {
		t.Errorf("tangent offset = %d, want %d", got, TangentOffset)
	}
	if got := unsafe.Offsetof(Vertex{}.TexCoord); got != TexCoordOffset {
		t.Errorf("texcoord offset = %d, want %d", got, TexCoordOffset)
	}
}

func TestVertexBytes(t *testing.T) {
	m := &Mesh{Vertices: []Vertex{{
		Position: mgl32.Vec3{1, 2, 3},
		Normal:   mgl32.Vec3{4, 5, 6},
		Tangent:  mgl32.Vec3{7, 8, 9},
		TexCoord: mgl32.Vec2{10, 11},
	}}}

	buf := m.VertexBytes()
	if len(buf) != Stride {
		t.Fatalf("len = %d, want %d", len(buf), Stride)
	}
	for i := 0; i < FloatsPerVertex; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != float32(i+1) {
			t.Errorf("float %d = %v, want %v", i, got, i+1)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh
		wantErr error
		anyErr  bool
	}{
		{"ok", quad(), nil, false},
		{"no vertices", &Mesh{Submeshes: []Submesh{{Indices: []uint32{0}}}}, ErrNoVertices, true},
		{"no submeshes", &Mesh{Vertices: []Vertex{{}}}, ErrNoSubmeshes, true},
		{"empty submesh", &Mesh{Vertices: []Vertex{{}}, Submeshes: []Submesh{{}}}, nil, true},
		{"index out of range", &Mesh{Vertices: []Vertex{{}}, Submeshes: []Submesh{{Indices: []uint32{0, 1}}}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.anyErr {
				t.Fatalf("Validate() = %v, want error %v", err, tt.anyErr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIndexType(t *testing.T) {
	small := Submesh{Indices: []uint32{0, 1, 65535}}
	if small.IndexType() != Uint16 {
		t.Error("indices <= 65535 should use uint16")
	}
	if got := len(small.IndexBytes()); got != 6 {
		t.Errorf("uint16 index bytes = %d, want 6", got)
	}

	large := Submesh{Indices: []uint32{0, 70000}}
	if large.IndexType() != Uint32 {
		t.Error("indices > 65535 should use uint32")
	}
	buf := large.IndexBytes()
	if got := binary.LittleEndian.Uint32(buf[4:]); got != 70000 {
		t.Errorf("second index = %d, want 70000", got)
	}
}

func TestBounds(t *testing.T) {
	min, max := quad().Bounds()
	if min != (mgl32.Vec3{0, 0, 0}) || max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("Bounds() = %v %v", min, max)
	}
}

func TestGenerateTangentsFollowsU(t *testing.T) {
	m := quad()
	m.GenerateTangents()

	if !m.HasTangents() {
		t.Fatal("HasTangents() = false after generation")
	}
	for i, v := range m.Vertices {
		if !v.Tangent.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
			t.Errorf("vertex %d tangent = %v, want +X", i, v.Tangent)
		}
	}
}

func TestGenerateTangentsOrthonormal(t *testing.T) {
	m := quad()
	// Tilt the normals so the raw UV tangent is not perpendicular to them.
	for i := range m.Vertices {
		m.Vertices[i].Normal = mgl32.Vec3{0.3, 0, 1}.Normalize()
	}
	m.GenerateTangents()

	for i, v := range m.Vertices {
		if d := v.Tangent.Dot(v.Normal); math.Abs(float64(d)) > 1e-5 {
			t.Errorf("vertex %d: tangent.normal = %v, want 0", i, d)
		}
		if l := v.Tangent.Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("vertex %d: |tangent| = %v, want 1", i, l)
		}
	}
}

func TestGenerateTangentsDegenerateUV(t *testing.T) {
	m := quad()
	for i := range m.Vertices {
		m.Vertices[i].TexCoord = mgl32.Vec2{}
	}
	m.GenerateTangents()

	for i, v := range m.Vertices {
		if v.Tangent.Len() < 0.99 {
			t.Errorf("vertex %d: degenerate UVs left tangent %v", i, v.Tangent)
		}
		if d := v.Tangent.Dot(v.Normal); math.Abs(float64(d)) > 1e-5 {
			t.Errorf("vertex %d: fallback tangent not perpendicular: %v", i, d)
		}
	}
}

func TestHasTangents(t *testing.T) {
	if (&Mesh{}).HasTangents() {
		t.Error("empty mesh reports tangents")
	}
	if quad().HasTangents() {
		t.Error("quad without tangents reports tangents")
	}
}
