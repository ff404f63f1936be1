package loaders

import (
	"strings"
	"testing"

	"github.com/spaghettifunk/kiln/engine/math"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJTriangulatesFans(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "quad" {
		t.Fatalf("name = %q", mesh.Name)
	}
	if len(mesh.Vertices) != 4 || len(mesh.Indices) != 6 {
		t.Fatalf("%d vertices, %d indices", len(mesh.Vertices), len(mesh.Indices))
	}
	// fan 0,1,2 and 0,2,3 with the winding flipped for left-handed space
	want := []uint32{0, 2, 1, 0, 3, 2}
	for i := range want {
		if mesh.Indices[i] != want[i] {
			t.Fatalf("indices = %v, want %v", mesh.Indices, want)
		}
	}
	// the +Z normal of the right-handed file is mirrored
	if !mesh.Vertices[0].Normal.Compare(math.NewVec3(0, 0, -1), 1e-6) {
		t.Fatalf("normal = %+v", mesh.Vertices[0].Normal)
	}
	// v is flipped so the bottom-left texel maps to v=1
	if mesh.Vertices[0].Texcoord != math.NewVec2(0, 1) {
		t.Fatalf("texcoord = %+v", mesh.Vertices[0].Texcoord)
	}
	if mesh.Vertices[0].Colour != math.NewVec4One() {
		t.Fatal("vertex colour not defaulted to white")
	}
	if mesh.Vertices[0].Tangent.LengthSquared() == 0 {
		t.Fatal("tangents not generated")
	}
}

func TestParseOBJNegativeReferencesAndGeneratedNormals(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Indices) != 3 {
		t.Fatalf("indices = %v", mesh.Indices)
	}
	// generated from the left-handed winding, matching the mirrored file normal
	if n := mesh.Vertices[0].Normal; !n.Compare(math.NewVec3(0, 0, -1), 1e-6) {
		t.Fatalf("generated normal = %+v", n)
	}
}

func TestParseOBJSharesCorners(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 4 {
		t.Fatalf("%d vertices, want 4 shared", len(mesh.Vertices))
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := map[string]string{
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":    "v 0 zero 0\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseOBJ(strings.NewReader(doc)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
