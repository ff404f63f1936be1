package assets

import (
	"testing"

	"github.com/spaghettifunk/kiln/engine/math"
)

func TestCombineMeshesOffsetsIndices(t *testing.T) {
	a := &Mesh{Vertices: make([]math.Vertex3D, 3), Indices: []uint32{0, 1, 2, 0}}
	b := &Mesh{Vertices: make([]math.Vertex3D, 4), Indices: []uint32{0, 1, 2, 0, 2, 3}}

	out := CombineMeshes(a, b)
	if len(out.Vertices) != 7 {
		t.Fatalf("vertices = %d, want 7", len(out.Vertices))
	}
	want := []uint32{0, 1, 2, 0, 3, 4, 5, 3, 5, 6}
	if len(out.Indices) != len(want) {
		t.Fatalf("indices = %v, want %v", out.Indices, want)
	}
	for i := range want {
		if out.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", out.Indices, want)
		}
	}
	// inputs are left untouched
	if b.Indices[1] != 1 {
		t.Fatal("source mesh modified")
	}
}

func TestCombineMeshesEmpty(t *testing.T) {
	out := CombineMeshes()
	if len(out.Vertices) != 0 || len(out.Indices) != 0 {
		t.Fatalf("got %d vertices, %d indices", len(out.Vertices), len(out.Indices))
	}
}

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		name     string
		mesh     *Mesh
		vertices int
		indices  int
	}{
		{"plane", GeneratePlane(2, 2, 1, 1, 1, 1), 4, 6},
		{"segmented plane", GeneratePlane(4, 2, 4, 2, 2, 1), 15, 48},
		{"cube", GenerateCube(1, 2, 3, 1, 1), 24, 36},
		{"sphere", GenerateSphere(1, 8, 16), 9 * 17, 8 * 16 * 6},
		{"cylinder", GenerateCylinder(1, 2, 12), 13*2 + 2*14, 12*6 + 2*12*3},
		{"cone", GenerateCone(1, 2, 12), 13*2 + 14, 12*3 + 12*3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.mesh.Vertices) != tt.vertices || len(tt.mesh.Indices) != tt.indices {
				t.Fatalf("%d vertices, %d indices, want %d, %d",
					len(tt.mesh.Vertices), len(tt.mesh.Indices), tt.vertices, tt.indices)
			}
			for _, i := range tt.mesh.Indices {
				if int(i) >= len(tt.mesh.Vertices) {
					t.Fatalf("index %d out of range", i)
				}
			}
		})
	}
}

// Every non-degenerate triangle of a closed convex shape centred on the
// origin must face away from the centre.
func TestPrimitiveWindingFacesOutward(t *testing.T) {
	meshes := map[string]*Mesh{
		"cube":     GenerateCube(2, 2, 2, 1, 1),
		"sphere":   GenerateSphere(1, 6, 12),
		"cylinder": GenerateCylinder(1, 2, 8),
		"cone":     GenerateCone(1, 2, 8),
	}
	for name, mesh := range meshes {
		t.Run(name, func(t *testing.T) {
			for i := 0; i+2 < len(mesh.Indices); i += 3 {
				p0 := mesh.Vertices[mesh.Indices[i]].Position
				p1 := mesh.Vertices[mesh.Indices[i+1]].Position
				p2 := mesh.Vertices[mesh.Indices[i+2]].Position
				face := p1.Sub(p0).Cross(p2.Sub(p0))
				if face.LengthSquared() < 1e-12 {
					continue
				}
				centroid := p0.Add(p1).Add(p2).MulScalar(1.0 / 3)
				if face.Dot(centroid) <= 0 {
					t.Fatalf("triangle %d faces inward", i/3)
				}
			}
		})
	}
}

func TestPlaneFacesUp(t *testing.T) {
	mesh := GeneratePlane(2, 2, 2, 2, 1, 1)
	up := math.NewVec3Up()
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		p0 := mesh.Vertices[mesh.Indices[i]].Position
		p1 := mesh.Vertices[mesh.Indices[i+1]].Position
		p2 := mesh.Vertices[mesh.Indices[i+2]].Position
		if p1.Sub(p0).Cross(p2.Sub(p0)).Dot(up) <= 0 {
			t.Fatalf("triangle %d faces down", i/3)
		}
	}
	e := mesh.Extents()
	if !e.Min.Compare(math.NewVec3(-1, 0, -1), 1e-6) || !e.Max.Compare(math.NewVec3(1, 0, 1), 1e-6) {
		t.Fatalf("extents = %+v", e)
	}
	if mesh.Vertices[0].Tangent.LengthSquared() == 0 {
		t.Fatal("tangents not generated")
	}
}

func TestPrimitiveInvalidSizesDefault(t *testing.T) {
	mesh := GenerateCube(0, -1, 0, 0, 0)
	e := mesh.Extents()
	if !e.Max.Compare(math.NewVec3(0.5, 0.5, 0.5), 1e-6) {
		t.Fatalf("extents = %+v", e)
	}
	sphere := GenerateSphere(1, 0, 0)
	if len(sphere.Indices) != 2*3*6 {
		t.Fatalf("sphere indices = %d", len(sphere.Indices))
	}
}
