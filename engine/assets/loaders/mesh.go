package loaders

import "github.com/spaghettifunk/kiln/engine/math"

// Mesh is CPU-side triangle geometry in the engine vertex layout.
type Mesh struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) }
func (m *Mesh) IndexCount() int  { return len(m.Indices) }

// Extents returns the axis aligned bounds of the mesh.
func (m *Mesh) Extents() math.Extents3D {
	if len(m.Vertices) == 0 {
		return math.Extents3D{}
	}
	e := math.Extents3D{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		p := v.Position
		e.Min = math.Vec3{X: min(e.Min.X, p.X), Y: min(e.Min.Y, p.Y), Z: min(e.Min.Z, p.Z)}
		e.Max = math.Vec3{X: max(e.Max.X, p.X), Y: max(e.Max.Y, p.Y), Z: max(e.Max.Z, p.Z)}
	}
	return e
}

// toLeftHanded mirrors right-handed source data along Z and flips the
// triangle winding to match.
func (m *Mesh) toLeftHanded() {
	for i := range m.Vertices {
		m.Vertices[i].Position.Z = -m.Vertices[i].Position.Z
		m.Vertices[i].Normal.Z = -m.Vertices[i].Normal.Z
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		m.Indices[i+1], m.Indices[i+2] = m.Indices[i+2], m.Indices[i+1]
	}
}

// finish fills in anything the source file did not provide.
func (m *Mesh) finish(hasNormals bool) {
	for i := range m.Vertices {
		if m.Vertices[i].Colour == (math.Vec4{}) {
			m.Vertices[i].Colour = math.NewVec4One()
		}
	}
	if !hasNormals {
		math.GenerateNormals(m.Vertices, m.Indices)
	}
	math.GenerateTangents(m.Vertices, m.Indices)
}
