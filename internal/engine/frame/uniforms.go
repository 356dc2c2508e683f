package frame

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BindingIndex is the uniform buffer binding point of the frame block. The same
// block is visible to the vertex and fragment stages. Binding 0 is left to
// future per-scene data.
const BindingIndex = 1

// BlockName is the name of the uniform block in the shaders.
const BlockName = "FrameUniforms"

// std140 layout of the frame block.
const (
	OffsetModel               = 0   // mat4
	OffsetModelViewProjection = 64  // mat4
	OffsetNormal              = 128 // mat3, each column padded to vec4
	OffsetCameraPosition      = 176 // vec3
	OffsetLightDirection      = 192 // vec3
	OffsetLightPosition       = 208 // vec3

	BlockSize = 224
)

// Uniforms is the per-draw uniform record. It is built fresh for every node and
// copied by value into the GPU buffer.
type Uniforms struct {
	Model               mgl32.Mat4
	ModelViewProjection mgl32.Mat4
	Normal              mgl32.Mat3
	CameraPosition      mgl32.Vec3
	LightDirection      mgl32.Vec3
	LightPosition       mgl32.Vec3
}

// Build computes the uniforms for a node with model matrix model.
func Build(model mgl32.Mat4, s *State) Uniforms {
	return Uniforms{
		Model:               model,
		ModelViewProjection: s.Projection.Mul4(s.View).Mul4(model),
		Normal:              NormalMatrix(model),
		CameraPosition:      s.CameraPosition,
		LightDirection:      s.LightDirection,
		LightPosition:       s.LightPosition,
	}
}

// NormalMatrix returns the inverse-transpose of the upper-left 3x3 of model.
// Normals and tangents transformed by it stay perpendicular to the surface
// under non-uniform scale.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	return model.Mat3().Inv().Transpose()
}

// Marshal packs u into the std140 frame block.
func (u *Uniforms) Marshal() []byte {
	buf := make([]byte, BlockSize)
	putFloats(buf[OffsetModel:], u.Model[:])
	putFloats(buf[OffsetModelViewProjection:], u.ModelViewProjection[:])
	for col := 0; col < 3; col++ {
		putFloats(buf[OffsetNormal+col*16:], u.Normal[col*3:col*3+3])
	}
	putFloats(buf[OffsetCameraPosition:], u.CameraPosition[:])
	putFloats(buf[OffsetLightDirection:], u.LightDirection[:])
	putFloats(buf[OffsetLightPosition:], u.LightPosition[:])
	return buf
}

func putFloats(dst []byte, fs []float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
