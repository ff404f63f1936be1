package assets

import (
	"github.com/spaghettifunk/kiln/engine/assets/loaders"
	"github.com/spaghettifunk/kiln/engine/math"
)

// Mesh is CPU-side triangle geometry in the engine vertex layout.
type Mesh = loaders.Mesh

// CombineMeshes concatenates meshes into a new one. The indices of each mesh
// are offset by the number of vertices that precede it.
func CombineMeshes(meshes ...*Mesh) *Mesh {
	vertexCount, indexCount := 0, 0
	for _, m := range meshes {
		vertexCount += len(m.Vertices)
		indexCount += len(m.Indices)
	}
	out := &Mesh{
		Vertices: make([]math.Vertex3D, 0, vertexCount),
		Indices:  make([]uint32, 0, indexCount),
	}
	for _, m := range meshes {
		base := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, i := range m.Indices {
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out
}
