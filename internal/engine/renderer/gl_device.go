package renderer

import (
	"fmt"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/frame"
	"github.com/Faultbox/midgard-pbr/internal/engine/material"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
	"github.com/Faultbox/midgard-pbr/internal/engine/renderer/shaders"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// ClearColor is the background of every pass.
var ClearColor = color.RGBA{R: 26, G: 26, B: 38, A: 255}

// Default texel values for absent material channels.
var (
	blackTexel      = color.NRGBA{A: 255}
	flatNormalTexel = color.NRGBA{R: 128, G: 128, B: 255, A: 255}
)

type glSubmesh struct {
	ebo       uint32
	count     int32
	indexType uint32
	mode      uint32
}

type glMesh struct {
	vao       uint32
	vbo       uint32
	submeshes []glSubmesh
}

// GLDevice is the OpenGL 4.1 core implementation of Device.
type GLDevice struct {
	program      uint32
	ubo          uint32
	locEnvLevels int32
	defaults     material.Defaults
	meshes       map[MeshHandle]*glMesh
	next         MeshHandle
	log          *zap.Logger
}

// NewGLDevice loads GL entry points, compiles the PBR program and creates the
// uniform buffer and default textures. It must be called with a current
// OpenGL context. Any error is fatal.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}

	d := &GLDevice{
		meshes: make(map[MeshHandle]*glMesh),
		next:   1,
		log:    logger.Named("gl"),
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	program, err := shader.CompileProgram(shaders.PBRVertexShader, shaders.PBRFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("pbr program: %w", err)
	}
	d.program = program

	if err := shader.BindUniformBlock(program, frame.BlockName, frame.BindingIndex); err != nil {
		d.Destroy()
		return nil, fmt.Errorf("pbr program: %w", err)
	}
	samplers := []struct {
		name string
		slot int
	}{
		{shaders.SamplerBaseColor, texture.SlotBaseColor},
		{shaders.SamplerMetallic, texture.SlotMetallic},
		{shaders.SamplerRoughness, texture.SlotRoughness},
		{shaders.SamplerNormal, texture.SlotNormal},
		{shaders.SamplerEmissive, texture.SlotEmissive},
		{shaders.SamplerIrradiance, texture.SlotIrradiance},
	}
	for _, s := range samplers {
		if !shader.BindSampler(program, s.name, s.slot) {
			d.log.Debug("sampler inactive", zap.String("name", s.name))
		}
	}
	d.locEnvLevels = gl.GetUniformLocation(program, gl.Str(shaders.IrradianceLevels+"\x00"))

	gl.GenBuffers(1, &d.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, d.ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, frame.BlockSize, nil, gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, frame.BindingIndex, d.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	d.defaults = material.Defaults{
		Black:      texture.Solid(blackTexel),
		FlatNormal: texture.Solid(flatNormalTexel),
	}

	return d, nil
}

// Defaults implements Device.
func (d *GLDevice) Defaults() material.Defaults {
	return d.defaults
}

// UploadMesh implements Device.
func (d *GLDevice) UploadMesh(m *mesh.Mesh) (MeshHandle, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	gm := &glMesh{}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	vertices := m.VertexBytes()
	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	attribs := []struct {
		loc    uint32
		size   int32
		offset uintptr
	}{
		{mesh.AttribPosition, 3, mesh.PositionOffset},
		{mesh.AttribNormal, 3, mesh.NormalOffset},
		{mesh.AttribTangent, 3, mesh.TangentOffset},
		{mesh.AttribTexCoord, 2, mesh.TexCoordOffset},
	}
	for _, a := range attribs {
		gl.VertexAttribPointerWithOffset(a.loc, a.size, gl.FLOAT, false, mesh.Stride, a.offset)
		gl.EnableVertexAttribArray(a.loc)
	}

	for _, sub := range m.Submeshes {
		indices := sub.IndexBytes()
		gs := glSubmesh{
			count:     int32(len(sub.Indices)),
			indexType: glIndexType(sub.IndexType()),
			mode:      glTopology(sub.Topology),
		}
		gl.GenBuffers(1, &gs.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gs.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices), gl.Ptr(indices), gl.STATIC_DRAW)
		gm.submeshes = append(gm.submeshes, gs)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		d.deleteMesh(gm)
		return 0, fmt.Errorf("gl error 0x%x uploading %s", e, m.Name)
	}

	h := d.next
	d.next++
	d.meshes[h] = gm
	return h, nil
}

// ReleaseMesh implements Device.
func (d *GLDevice) ReleaseMesh(h MeshHandle) {
	if gm, ok := d.meshes[h]; ok {
		d.deleteMesh(gm)
		delete(d.meshes, h)
	}
}

func (d *GLDevice) deleteMesh(gm *glMesh) {
	for _, s := range gm.submeshes {
		gl.DeleteBuffers(1, &s.ebo)
	}
	gl.DeleteBuffers(1, &gm.vbo)
	gl.DeleteVertexArrays(1, &gm.vao)
}

// BeginPass implements Device.
func (d *GLDevice) BeginPass(t Target) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.Framebuffer)
	gl.Viewport(0, 0, int32(t.Width), int32(t.Height))
	gl.ClearColor(float32(ClearColor.R)/255, float32(ClearColor.G)/255, float32(ClearColor.B)/255, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(d.program)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, frame.BindingIndex, d.ubo)
}

// BindEnvironment implements Device.
func (d *GLDevice) BindEnvironment(h texture.Handle, levels int) {
	gl.ActiveTexture(gl.TEXTURE0 + texture.SlotIrradiance)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(h))
	if d.locEnvLevels >= 0 {
		gl.Uniform1f(d.locEnvLevels, float32(levels))
	}
}

// SetUniforms implements Device. The block is copied, so u may be reused.
func (d *GLDevice) SetUniforms(u *frame.Uniforms) {
	buf := u.Marshal()
	gl.BindBuffer(gl.UNIFORM_BUFFER, d.ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(buf), gl.Ptr(buf))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

// BindMesh implements Device.
func (d *GLDevice) BindMesh(h MeshHandle) {
	if gm, ok := d.meshes[h]; ok {
		gl.BindVertexArray(gm.vao)
	}
}

// BindTexture implements Device.
func (d *GLDevice) BindTexture(slot int, h texture.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
}

// DrawSubmesh implements Device. The mesh must be bound.
func (d *GLDevice) DrawSubmesh(h MeshHandle, submesh int) {
	gm, ok := d.meshes[h]
	if !ok || submesh >= len(gm.submeshes) {
		return
	}
	s := gm.submeshes[submesh]
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.ebo)
	gl.DrawElementsWithOffset(s.mode, s.count, s.indexType, 0)
}

// EndPass implements Device.
func (d *GLDevice) EndPass() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Destroy releases every GL object owned by the device.
func (d *GLDevice) Destroy() {
	for h, gm := range d.meshes {
		d.deleteMesh(gm)
		delete(d.meshes, h)
	}
	texture.Delete(d.defaults.Black)
	texture.Delete(d.defaults.FlatNormal)
	if d.ubo != 0 {
		gl.DeleteBuffers(1, &d.ubo)
	}
	if d.program != 0 {
		gl.DeleteProgram(d.program)
	}
}

func glIndexType(t mesh.IndexType) uint32 {
	if t == mesh.Uint16 {
		return gl.UNSIGNED_SHORT
	}
	return gl.UNSIGNED_INT
}

func glTopology(t mesh.Topology) uint32 {
	switch t {
	case mesh.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case mesh.Lines:
		return gl.LINES
	case mesh.LineStrip:
		return gl.LINE_STRIP
	case mesh.Points:
		return gl.POINTS
	}
	return gl.TRIANGLES
}
