package shaders

import (
	"slices"
	"testing"

	"github.com/spaghettifunk/kiln/engine/math"
)

func TestMeshShaderCompiles(t *testing.T) {
	words, err := MeshSPIRV(false)
	if err != nil {
		t.Fatal(err)
	}
	if words[0] != spirvMagic {
		t.Fatalf("magic = %#x", words[0])
	}
}

func TestMeshShaderEntryPoints(t *testing.T) {
	names, err := EntryPoints(MeshSource)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{VertexEntryPoint, FragmentEntryPoint} {
		if !slices.Contains(names, want) {
			t.Fatalf("entry points = %v, missing %s", names, want)
		}
	}
}

func TestVertexLayoutMatchesVertex3D(t *testing.T) {
	if VertexStride != math.Vertex3DSize {
		t.Fatalf("stride = %d, Vertex3DSize = %d", VertexStride, math.Vertex3DSize)
	}
	end := uint32(0)
	for _, a := range VertexLayout {
		if a.Offset != end {
			t.Fatalf("location %d at offset %d, want %d", a.Location, a.Offset, end)
		}
		end += a.Components * 4
	}
	if end != VertexStride {
		t.Fatalf("layout covers %d bytes, want %d", end, VertexStride)
	}
}

func TestCompileRejectsInvalidSource(t *testing.T) {
	if _, err := CompileSPIRV("fn broken(", false); err == nil {
		t.Fatal("expected a compile error")
	}
}
