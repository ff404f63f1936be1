package renderer

import (
	"fmt"

	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/serialization"
)

type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

func (k BufferKind) String() string {
	switch k {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	}
	return fmt.Sprintf("BufferKind(%d)", uint8(k))
}

type Color struct {
	R, G, B, A float32
}

// ContextSettings are applied when a context is initialized and again by
// RenderContext.ApplySettings.
type ContextSettings struct {
	VSync           bool
	BackbufferCount uint32
	ClearColor      Color
}

const (
	MinBackbufferCount = 1
	MaxBackbufferCount = 8
)

func DefaultContextSettings() ContextSettings {
	return ContextSettings{
		VSync:           true,
		BackbufferCount: 2,
		ClearColor:      Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
	}
}

// ObjectData is the per-draw constant block. Every matrix is stored
// transposed for the shader.
type ObjectData struct {
	World               math.Mat4
	WorldView           math.Mat4
	WorldViewProjection math.Mat4
	Normal              math.Mat4
}

// ObjectDataSize is the packed size of ObjectData in bytes.
const ObjectDataSize = 4 * 64

func (o ObjectData) Bytes() []byte {
	b, _ := serialization.StructToBytes(o, serialization.LittleEndian)
	return b
}

// NewObjectData builds the block for a mesh placed by the row-major world
// matrix. view and viewProjection are camera matrices already transposed for
// upload.
func NewObjectData(world, view, viewProjection math.Mat4) ObjectData {
	// the normal matrix is the inverse transpose of world, stored transposed
	normal, _ := world.Inverse()
	wt := world.Transposed()
	return ObjectData{
		World:               wt,
		WorldView:           view.Mul(wt),
		WorldViewProjection: viewProjection.Mul(wt),
		Normal:              normal,
	}
}

// MaterialData is the per-material lighting block. Each vec3 is padded to 16
// bytes to satisfy uniform buffer layout rules.
type MaterialData struct {
	LightColor     math.Vec3
	_              float32
	LightDirection math.Vec3
	_              float32
	LightPosition  math.Vec3
	_              float32
}

// DefaultMaterialData is bound until a frame sets its own material: a white
// light shining down and slightly forward.
func DefaultMaterialData() MaterialData {
	return MaterialData{
		LightColor:     math.NewVec3(1, 1, 1),
		LightDirection: math.NewVec3(0.3, -1, 0.5).Normalized(),
	}
}

// MaterialDataSize is the packed size of MaterialData in bytes.
const MaterialDataSize = 3 * 16

func (m MaterialData) Bytes() []byte {
	b, _ := serialization.StructToBytes(m, serialization.LittleEndian)
	return b
}

// VertexBytes packs vertices in the interleaved layout of math.Vertex3D.
func VertexBytes(vertices []math.Vertex3D) []byte {
	b, _ := serialization.StructToBytes(vertices, serialization.LittleEndian)
	return b
}

// IndexBytes packs 32-bit indices.
func IndexBytes(indices []uint32) []byte {
	return serialization.UInt32ArrayToBytes(indices, serialization.LittleEndian)
}
