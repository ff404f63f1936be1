package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func writeAsset(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestManager(t *testing.T) (*AssetManager, string) {
	t.Helper()
	root := t.TempDir()
	writeAsset(t, root, "models/triangle.obj", triangleOBJ)
	writeAsset(t, root, "materials/sun.kmt", "name = sun\nlight_colour = 1 1 1\nlight_direction = 0 -1 0\n")
	writeAsset(t, root, "readme.txt", "not an asset")
	writeAsset(t, root, "data/blob.bin", "\x01\x02\x03")

	am, err := NewAssetManager(root)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { am.Close() })
	return am, root
}

func TestAssetManagerIndex(t *testing.T) {
	am, _ := newTestManager(t)

	if am.Len() != 3 {
		t.Fatalf("indexed %d assets, want 3", am.Len())
	}
	info, ok := am.Lookup("models/triangle.obj")
	if !ok || info.Type != AssetTypeModel {
		t.Fatalf("lookup = %+v, %v", info, ok)
	}
	if _, ok := am.Lookup("readme.txt"); ok {
		t.Fatal("unknown file types must not be indexed")
	}
	models := am.List(AssetTypeModel)
	if len(models) != 1 || models[0].Name != "models/triangle.obj" {
		t.Fatalf("models = %+v", models)
	}
}

func TestAssetManagerLoad(t *testing.T) {
	am, _ := newTestManager(t)

	mesh, err := am.LoadModel("models/triangle.obj")
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Indices) != 3 || mesh.Name != "triangle" {
		t.Fatalf("mesh = %q with %d indices", mesh.Name, len(mesh.Indices))
	}
	mat, err := am.LoadMaterial("materials/sun.kmt")
	if err != nil {
		t.Fatal(err)
	}
	if mat.Name != "sun" {
		t.Fatalf("material = %+v", mat)
	}
	blob, err := am.LoadBinary("data/blob.bin")
	if err != nil || len(blob) != 3 {
		t.Fatalf("blob = %v, %v", blob, err)
	}

	if _, err := am.LoadTexture("models/triangle.obj"); !errors.Is(err, ErrWrongType) {
		t.Fatalf("err = %v, want ErrWrongType", err)
	}
	if _, err := am.LoadModel("models/missing.obj"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestNewAssetManagerRejectsFiles(t *testing.T) {
	path := writeAsset(t, t.TempDir(), "file.obj", triangleOBJ)
	if _, err := NewAssetManager(path); err == nil {
		t.Fatal("expected an error for a non-directory root")
	}
}

func TestAssetManagerWatch(t *testing.T) {
	am, root := newTestManager(t)
	if err := am.Watch(); err != nil {
		t.Fatal(err)
	}

	var changes []Change
	am.Changed.Register(func(c Change) { changes = append(changes, c) })

	writeAsset(t, root, "models/quad.obj", triangleOBJ)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		am.Dispatch()
		if _, ok := am.Lookup("models/quad.obj"); ok && len(changes) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := am.Lookup("models/quad.obj"); !ok {
		t.Fatal("new asset was not indexed")
	}
	found := false
	for _, c := range changes {
		if c.Asset.Name == "models/quad.obj" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no change dispatched for the new asset: %+v", changes)
	}

	if err := os.Remove(filepath.Join(root, "models", "quad.obj")); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		am.Dispatch()
		if _, ok := am.Lookup("models/quad.obj"); !ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := am.Lookup("models/quad.obj"); ok {
		t.Fatal("removed asset still indexed")
	}
}

func TestAssetManagerClose(t *testing.T) {
	am, _ := newTestManager(t)
	if err := am.Close(); err != nil {
		t.Fatal(err)
	}
	if err := am.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := am.Watch(); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
