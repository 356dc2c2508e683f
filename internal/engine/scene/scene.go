// Package scene holds the renderable scene graph: an arena of nodes that pair a
// mesh with its per-submesh materials and a model transform.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/internal/engine/material"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
)

// ErrMaterialCount is returned when a node's material list does not match its
// mesh's submesh count. It is an authoring error and fatal at load.
var ErrMaterialCount = errors.New("material count does not match submesh count")

// MeshID indexes the scene mesh pool.
type MeshID int

// MaterialID indexes the scene material pool.
type MaterialID int

// NodeID indexes the scene node list.
type NodeID int

// Node pairs one mesh with one material per submesh.
type Node struct {
	Name      string
	Mesh      MeshID
	Materials []MaterialID
	// Transform is the model matrix. It may be changed between frames.
	Transform mgl32.Mat4
}

// Scene is an insertion-ordered set of nodes plus the mesh and material pools
// they reference. Meshes and materials may be shared between nodes.
type Scene struct {
	meshes    []*mesh.Mesh
	materials []*material.Material
	nodes     []Node
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddMesh adds a mesh to the pool.
func (s *Scene) AddMesh(m *mesh.Mesh) MeshID {
	s.meshes = append(s.meshes, m)
	return MeshID(len(s.meshes) - 1)
}

// AddMaterial adds a material to the pool.
func (s *Scene) AddMaterial(m *material.Material) MaterialID {
	s.materials = append(s.materials, m)
	return MaterialID(len(s.materials) - 1)
}

// AddNode appends a node. The material list must have one entry per submesh.
func (s *Scene) AddNode(name string, meshID MeshID, materials []MaterialID, transform mgl32.Mat4) (NodeID, error) {
	if int(meshID) < 0 || int(meshID) >= len(s.meshes) {
		return 0, fmt.Errorf("node %q: unknown mesh %d", name, meshID)
	}
	m := s.meshes[meshID]
	if len(materials) != len(m.Submeshes) {
		return 0, fmt.Errorf("node %q: %d materials for %d submeshes: %w",
			name, len(materials), len(m.Submeshes), ErrMaterialCount)
	}
	for _, id := range materials {
		if int(id) < 0 || int(id) >= len(s.materials) {
			return 0, fmt.Errorf("node %q: unknown material %d", name, id)
		}
	}

	s.nodes = append(s.nodes, Node{
		Name:      name,
		Mesh:      meshID,
		Materials: append([]MaterialID(nil), materials...),
		Transform: transform,
	})
	return NodeID(len(s.nodes) - 1), nil
}

// Nodes returns the nodes in insertion order. Callers must not append to it.
func (s *Scene) Nodes() []Node {
	return s.nodes
}

// Meshes returns the mesh pool.
func (s *Scene) Meshes() []*mesh.Mesh {
	return s.meshes
}

// Mesh returns the mesh for id.
func (s *Scene) Mesh(id MeshID) *mesh.Mesh {
	return s.meshes[id]
}

// Material returns the material for id.
func (s *Scene) Material(id MaterialID) *material.Material {
	return s.materials[id]
}

// SetTransform replaces a node's model matrix.
func (s *Scene) SetTransform(id NodeID, m mgl32.Mat4) {
	s.nodes[id].Transform = m
}

// Bounds returns the world-space bounds of every node. ok is false for an empty scene.
func (s *Scene) Bounds() (min, max mgl32.Vec3, ok bool) {
	for _, n := range s.nodes {
		lo, hi := s.meshes[n.Mesh].Bounds()
		for _, c := range corners(lo, hi) {
			p := mgl32.TransformCoordinate(c, n.Transform)
			if !ok {
				min, max, ok = p, p, true
				continue
			}
			for k := 0; k < 3; k++ {
				if p[k] < min[k] {
					min[k] = p[k]
				}
				if p[k] > max[k] {
					max[k] = p[k]
				}
			}
		}
	}
	return min, max, ok
}

func corners(lo, hi mgl32.Vec3) [8]mgl32.Vec3 {
	var cs [8]mgl32.Vec3
	for i := range cs {
		for k := 0; k < 3; k++ {
			if i&(1<<k) != 0 {
				cs[i][k] = hi[k]
			} else {
				cs[i][k] = lo[k]
			}
		}
	}
	return cs
}
