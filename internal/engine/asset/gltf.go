// Package asset imports scene files into the scene graph and manages the
// GPU textures they reference.
package asset

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/material"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
	"github.com/Faultbox/midgard-pbr/internal/engine/scene"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// ErrNoMeshes is returned for a scene file without any drawable node.
var ErrNoMeshes = errors.New("scene has no meshes")

// maxNodeDepth bounds the node hierarchy walk; glTF forbids cycles but files
// in the wild still contain them.
const maxNodeDepth = 64

// importer carries state while converting one document.
type importer struct {
	doc    *gltf.Document
	dir    string
	path   string
	loader material.Loader
	out    *scene.Scene

	meshes       map[uint32]scene.MeshID
	materials    map[uint32]scene.MaterialID
	fallback     scene.MaterialID
	haveFallback bool
}

// ImportGLTF reads a .gltf or .glb file and builds a scene from its default
// scene. Each mesh-bearing node becomes one Node; each primitive becomes one
// submesh with its own material. Textures are loaded through loader.
func ImportGLTF(path string, loader material.Loader) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene %s: %w", path, err)
	}
	return importDocument(doc, path, loader)
}

func importDocument(doc *gltf.Document, path string, loader material.Loader) (*scene.Scene, error) {
	im := &importer{
		doc:       doc,
		dir:       filepath.Dir(path),
		path:      path,
		loader:    loader,
		out:       scene.New(),
		meshes:    make(map[uint32]scene.MeshID),
		materials: make(map[uint32]scene.MaterialID),
	}

	for _, root := range im.roots() {
		if err := im.walk(root, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}
	if len(im.out.Nodes()) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoMeshes)
	}

	logger.Info("scene imported",
		zap.String("path", path),
		zap.Int("nodes", len(im.out.Nodes())),
		zap.Int("meshes", len(im.out.Meshes())),
		zap.Int("materials", len(im.materials)),
	)
	return im.out, nil
}

// roots returns the root nodes of the default scene. Documents without scenes
// use every node that is nobody's child.
func (im *importer) roots() []uint32 {
	if len(im.doc.Scenes) > 0 {
		idx := uint32(0)
		if im.doc.Scene != nil && int(*im.doc.Scene) < len(im.doc.Scenes) {
			idx = *im.doc.Scene
		}
		return im.doc.Scenes[idx].Nodes
	}

	child := make(map[uint32]bool)
	for _, n := range im.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range im.doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (im *importer) walk(idx uint32, parent mgl32.Mat4, depth int) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	if int(idx) >= len(im.doc.Nodes) {
		return fmt.Errorf("node %d: out of range", idx)
	}
	n := im.doc.Nodes[idx]
	world := parent.Mul4(LocalTransform(n))

	if n.Mesh != nil {
		meshID, materials, err := im.mesh(*n.Mesh)
		if err != nil {
			return fmt.Errorf("node %d (%s): %w", idx, n.Name, err)
		}
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node%d", idx)
		}
		if _, err := im.out.AddNode(name, meshID, materials, world); err != nil {
			return fmt.Errorf("node %d (%s): %w", idx, n.Name, err)
		}
	}

	for _, c := range n.Children {
		if err := im.walk(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// LocalTransform returns the node matrix, or the composed T*R*S when no
// matrix is given.
func LocalTransform(n *gltf.Node) mgl32.Mat4 {
	var zero [16]float32
	if n.Matrix != zero && n.Matrix != gltf.DefaultMatrix {
		return mgl32.Mat4(n.Matrix)
	}

	t := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])

	r := mgl32.Ident4()
	if q := n.Rotation; q != [4]float32{} {
		r = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Normalize().Mat4()
	}

	s := n.Scale
	if s == [3]float32{} {
		s = [3]float32{1, 1, 1}
	}
	return t.Mul4(r).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// mesh converts a glTF mesh once and returns its scene ID with the material
// of every primitive.
func (im *importer) mesh(idx uint32) (scene.MeshID, []scene.MaterialID, error) {
	if int(idx) >= len(im.doc.Meshes) {
		return 0, nil, fmt.Errorf("mesh %d: out of range", idx)
	}
	gm := im.doc.Meshes[idx]

	materials := make([]scene.MaterialID, len(gm.Primitives))
	for i, p := range gm.Primitives {
		id, err := im.material(p.Material)
		if err != nil {
			return 0, nil, err
		}
		materials[i] = id
	}

	if id, ok := im.meshes[idx]; ok {
		return id, materials, nil
	}

	m, err := convertMesh(im.doc, gm)
	if err != nil {
		return 0, nil, fmt.Errorf("mesh %d (%s): %w", idx, gm.Name, err)
	}
	id := im.out.AddMesh(m)
	im.meshes[idx] = id
	return id, materials, nil
}

func convertMesh(doc *gltf.Document, gm *gltf.Mesh) (*mesh.Mesh, error) {
	m := &mesh.Mesh{Name: gm.Name}

	for pi, p := range gm.Primitives {
		prim, err := convertPrimitive(doc, p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}

		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, prim.Vertices...)
		sub := prim.Submeshes[0]
		for i := range sub.Indices {
			sub.Indices[i] += base
		}
		m.Submeshes = append(m.Submeshes, sub)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// convertPrimitive reads one primitive as a single-submesh mesh with local
// indices. Tangents are generated only when the file carries none for it.
func convertPrimitive(doc *gltf.Document, p *gltf.Primitive) (*mesh.Mesh, error) {
	verts, err := readVertices(doc, p)
	if err != nil {
		return nil, err
	}

	var indices []uint32
	if p.Indices != nil {
		acr, err := accessor(doc, *p.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	topology, indices := convertTopology(p.Mode, indices)
	prim := &mesh.Mesh{
		Vertices:  verts,
		Submeshes: []mesh.Submesh{{Indices: indices, Topology: topology}},
	}
	if err := prim.Validate(); err != nil {
		return nil, err
	}
	if !prim.HasTangents() {
		prim.GenerateTangents()
	}
	return prim, nil
}

// readVertices reads the attributes of one primitive. Missing normals
// default to +Y; missing tangents are left zero.
func readVertices(doc *gltf.Document, p *gltf.Primitive) ([]mesh.Vertex, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			normals, err = modeler.ReadNormal(doc, acr, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			uvs, err = modeler.ReadTextureCoord(doc, acr, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}
	var tangents [][4]float32
	if idx, ok := p.Attributes[gltf.TANGENT]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			tangents, err = modeler.ReadTangent(doc, acr, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
	}

	verts := make([]mesh.Vertex, len(positions))
	for i, pos := range positions {
		v := mesh.Vertex{Position: pos, Normal: mgl32.Vec3{0, 1, 0}}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.TexCoord = uvs[i]
		}
		if i < len(tangents) {
			v.Tangent = mgl32.Vec3{tangents[i][0], tangents[i][1], tangents[i][2]}
		}
		verts[i] = v
	}
	return verts, nil
}

func accessor(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// convertTopology maps a glTF primitive mode. Loops and fans have no
// counterpart and are expanded.
func convertTopology(mode gltf.PrimitiveMode, indices []uint32) (mesh.Topology, []uint32) {
	switch mode {
	case gltf.PrimitivePoints:
		return mesh.Points, indices
	case gltf.PrimitiveLines:
		return mesh.Lines, indices
	case gltf.PrimitiveLineStrip:
		return mesh.LineStrip, indices
	case gltf.PrimitiveLineLoop:
		if len(indices) > 0 {
			indices = append(indices, indices[0])
		}
		return mesh.LineStrip, indices
	case gltf.PrimitiveTriangleStrip:
		return mesh.TriangleStrip, indices
	case gltf.PrimitiveTriangleFan:
		var tris []uint32
		for i := 2; i < len(indices); i++ {
			tris = append(tris, indices[0], indices[i-1], indices[i])
		}
		return mesh.Triangles, tris
	}
	return mesh.Triangles, indices
}

// material resolves a glTF material index; nil selects a shared material with
// every channel absent.
func (im *importer) material(idx *uint32) (scene.MaterialID, error) {
	if idx == nil {
		if !im.haveFallback {
			im.fallback = im.out.AddMaterial(material.Resolve(nil, im.loader))
			im.haveFallback = true
		}
		return im.fallback, nil
	}
	if id, ok := im.materials[*idx]; ok {
		return id, nil
	}
	if int(*idx) >= len(im.doc.Materials) {
		return 0, fmt.Errorf("material %d: out of range", *idx)
	}

	desc := im.describe(*idx, im.doc.Materials[*idx])
	id := im.out.AddMaterial(material.Resolve(desc, im.loader))
	im.materials[*idx] = id
	return id, nil
}

// describe maps glTF material slots to channels. The metallic-roughness image
// feeds both the metallic (B) and roughness (G) channels.
func (im *importer) describe(idx uint32, gm *gltf.Material) *material.Description {
	desc := &material.Description{Name: gm.Name}
	if desc.Name == "" {
		desc.Name = fmt.Sprintf("material%d", idx)
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			desc.Textures[material.BaseColor] = im.textureRef(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			ref := im.textureRef(pbr.MetallicRoughnessTexture.Index)
			desc.Textures[material.Metallic] = ref
			desc.Textures[material.Roughness] = ref
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		desc.Textures[material.Normal] = im.textureRef(*gm.NormalTexture.Index)
	}
	if gm.EmissiveTexture != nil {
		desc.Textures[material.Emissive] = im.textureRef(gm.EmissiveTexture.Index)
	}
	return desc
}

// textureRef builds a lazy reference to the image behind a glTF texture. A
// texture without a usable image yields nil, which leaves the channel absent.
func (im *importer) textureRef(texIdx uint32) *material.Ref {
	if int(texIdx) >= len(im.doc.Textures) {
		logger.Warn("texture index out of range", zap.Uint32("texture", texIdx))
		return nil
	}
	src := im.doc.Textures[texIdx].Source
	if src == nil || int(*src) >= len(im.doc.Images) {
		logger.Warn("texture has no image", zap.Uint32("texture", texIdx))
		return nil
	}
	imgIdx := *src
	img := im.doc.Images[imgIdx]

	name := img.Name
	if name == "" {
		name = img.URI
	}
	if name == "" || img.IsEmbeddedResource() {
		name = fmt.Sprintf("image%d", imgIdx)
	}
	if img.MimeType != "" {
		name += mimeExt(img.MimeType)
	}

	return &material.Ref{
		Name: name,
		Key:  fmt.Sprintf("%s#image%d", im.path, imgIdx),
		Read: func() ([]byte, error) { return im.imageData(img) },
	}
}

func (im *importer) imageData(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(im.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d: out of range", *img.BufferView)
		}
		bv := im.doc.BufferViews[*img.BufferView]
		if int(bv.Buffer) >= len(im.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d: out of range", bv.Buffer)
		}
		data := im.doc.Buffers[bv.Buffer].Data
		end := int(bv.ByteOffset) + int(bv.ByteLength)
		if end > len(data) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", *img.BufferView)
		}
		return data[bv.ByteOffset:end], nil
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if img.URI == "" {
		return nil, errors.New("image has no source")
	}
	p, err := url.PathUnescape(img.URI)
	if err != nil {
		p = img.URI
	}
	return os.ReadFile(filepath.Join(im.dir, filepath.FromSlash(p)))
}

// mimeExt gives texture.Decode an extension hint for embedded images.
func mimeExt(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ""
}
