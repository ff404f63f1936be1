package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/kiln/engine/core"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// LoadModel imports every mesh in a model file and merges them into one.
// Wavefront OBJ, glTF and GLB files are supported. Source data is converted
// to the engine's left-handed space and tangents are generated.
func LoadModel(path string) (*Mesh, error) {
	var (
		mesh *Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = loadOBJ(path)
	case ".gltf", ".glb":
		mesh, err = loadGLTF(path)
	default:
		err = fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		core.LogError("failed to load model %s: %s", path, err)
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("load model %s: no triangles", path)
	}
	if mesh.Name == "" {
		mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	core.LogDebug("loaded model %s (%d vertices, %d indices)", path, len(mesh.Vertices), len(mesh.Indices))
	return mesh, nil
}
