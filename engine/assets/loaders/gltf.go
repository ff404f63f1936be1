package loaders

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/kiln/engine/math"
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A
	glbChunkBIN  = 0x004E4942

	gltfFloat         = 5126
	gltfUnsignedByte  = 5121
	gltfUnsignedShort = 5123
	gltfUnsignedInt   = 5125

	gltfModeTriangles = 4
)

var errGLTFVersion = errors.New("glTF version must be 2.x")

type gltfDocument struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Buffers []struct {
		URI        string `json:"uri"`
		ByteLength int    `json:"byteLength"`
		data       []byte
	} `json:"buffers"`
	BufferViews []struct {
		Buffer     int `json:"buffer"`
		ByteOffset int `json:"byteOffset"`
		ByteLength int `json:"byteLength"`
		ByteStride int `json:"byteStride"`
	} `json:"bufferViews"`
	Accessors []struct {
		BufferView    *int   `json:"bufferView"`
		ByteOffset    int    `json:"byteOffset"`
		ComponentType int    `json:"componentType"`
		Count         int    `json:"count"`
		Type          string `json:"type"`
	} `json:"accessors"`
	Meshes []struct {
		Name       string `json:"name"`
		Primitives []struct {
			Attributes map[string]int `json:"attributes"`
			Indices    *int           `json:"indices"`
			Mode       *int           `json:"mode"`
		} `json:"primitives"`
	} `json:"meshes"`
}

func loadGLTF(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := parseGLTF(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return doc.mesh()
}

// parseGLTF decodes a .gltf JSON document or a binary .glb container and
// resolves every buffer. External buffers are read relative to baseDir.
func parseGLTF(data []byte, baseDir string) (*gltfDocument, error) {
	var bin []byte
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if data, bin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("gltf json: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errGLTFVersion
	}

	for i := range doc.Buffers {
		b := &doc.Buffers[i]
		switch {
		case b.URI == "" && i == 0 && bin != nil:
			b.data = bin
		case strings.HasPrefix(b.URI, "data:"):
			comma := strings.IndexByte(b.URI, ',')
			if comma < 0 || !strings.Contains(b.URI[:comma], "base64") {
				return nil, fmt.Errorf("buffer %d: unsupported data uri", i)
			}
			decoded, err := base64.StdEncoding.DecodeString(b.URI[comma+1:])
			if err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
			b.data = decoded
		case b.URI != "":
			external, err := os.ReadFile(filepath.Join(baseDir, b.URI))
			if err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
			b.data = external
		default:
			return nil, fmt.Errorf("buffer %d has no data", i)
		}
		if len(b.data) < b.ByteLength {
			return nil, fmt.Errorf("buffer %d is %d bytes, want %d", i, len(b.data), b.ByteLength)
		}
	}
	return &doc, nil
}

func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	r := bytes.NewReader(data)
	var header struct{ Magic, Version, Length uint32 }
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("glb header: %w", err)
	}
	if header.Version != glbVersion {
		return nil, nil, fmt.Errorf("glb version %d", header.Version)
	}
	for {
		var chunk struct{ Length, Type uint32 }
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("glb chunk: %w", err)
		}
		body := make([]byte, chunk.Length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("glb chunk: %w", err)
		}
		switch chunk.Type {
		case glbChunkJSON:
			jsonChunk = body
		case glbChunkBIN:
			binChunk = body
		}
	}
	if jsonChunk == nil {
		return nil, nil, errors.New("glb has no json chunk")
	}
	return jsonChunk, binChunk, nil
}

// accessor returns the tightly packed bytes of accessor i and its element count.
// Every index and range read from the document is checked before use.
func (d *gltfDocument) accessor(i int, wantType string, components int) ([]byte, int, error) {
	if i < 0 || i >= len(d.Accessors) {
		return nil, 0, fmt.Errorf("accessor %d out of range", i)
	}
	acc := d.Accessors[i]
	if acc.Type != wantType {
		return nil, 0, fmt.Errorf("accessor %d is %s, want %s", i, acc.Type, wantType)
	}
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor %d has no buffer view", i)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return nil, 0, fmt.Errorf("accessor %d has a negative count or offset", i)
	}
	size := 4
	switch acc.ComponentType {
	case gltfUnsignedByte:
		size = 1
	case gltfUnsignedShort:
		size = 2
	}
	elem := size * components

	vi := *acc.BufferView
	if vi < 0 || vi >= len(d.BufferViews) {
		return nil, 0, fmt.Errorf("accessor %d: buffer view %d out of range", i, vi)
	}
	view := d.BufferViews[vi]
	if view.Buffer < 0 || view.Buffer >= len(d.Buffers) {
		return nil, 0, fmt.Errorf("buffer view %d: buffer %d out of range", vi, view.Buffer)
	}
	if view.ByteOffset < 0 || view.ByteStride < 0 {
		return nil, 0, fmt.Errorf("buffer view %d has a negative offset or stride", vi)
	}
	stride := elem
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}
	src := d.Buffers[view.Buffer].data
	start := view.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+elem > len(src) {
		return nil, 0, fmt.Errorf("accessor %d overruns its buffer", i)
	}
	out := make([]byte, acc.Count*elem)
	for n := 0; n < acc.Count; n++ {
		copy(out[n*elem:(n+1)*elem], src[start+n*stride:])
	}
	return out, acc.Count, nil
}

func (d *gltfDocument) floats(i int, wantType string, components int) ([]float32, error) {
	raw, count, err := d.accessor(i, wantType, components)
	if err != nil {
		return nil, err
	}
	if d.Accessors[i].ComponentType != gltfFloat {
		return nil, fmt.Errorf("accessor %d is not float", i)
	}
	out := make([]float32, count*components)
	return out, binary.Read(bytes.NewReader(raw), binary.LittleEndian, out)
}

func (d *gltfDocument) indices(i int) ([]uint32, error) {
	raw, count, err := d.accessor(i, "SCALAR", 1)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	switch d.Accessors[i].ComponentType {
	case gltfUnsignedByte:
		for n := range out {
			out[n] = uint32(raw[n])
		}
	case gltfUnsignedShort:
		for n := range out {
			out[n] = uint32(binary.LittleEndian.Uint16(raw[n*2:]))
		}
	case gltfUnsignedInt:
		for n := range out {
			out[n] = binary.LittleEndian.Uint32(raw[n*4:])
		}
	default:
		return nil, fmt.Errorf("index component type %d", d.Accessors[i].ComponentType)
	}
	return out, nil
}

// mesh merges every triangle primitive of every mesh. Node transforms are
// not applied.
func (d *gltfDocument) mesh() (*Mesh, error) {
	out := &Mesh{}
	hasNormals := true
	for mi, m := range d.Meshes {
		if out.Name == "" {
			out.Name = m.Name
		}
		for pi, prim := range m.Primitives {
			if prim.Mode != nil && *prim.Mode != gltfModeTriangles {
				continue
			}
			posIdx, ok := prim.Attributes["POSITION"]
			if !ok {
				return nil, fmt.Errorf("mesh %d primitive %d has no positions", mi, pi)
			}
			pos, err := d.floats(posIdx, "VEC3", 3)
			if err != nil {
				return nil, err
			}
			count := len(pos) / 3
			var normals, uvs []float32
			if i, ok := prim.Attributes["NORMAL"]; ok {
				if normals, err = d.floats(i, "VEC3", 3); err != nil {
					return nil, err
				}
			} else {
				hasNormals = false
			}
			if i, ok := prim.Attributes["TEXCOORD_0"]; ok {
				if uvs, err = d.floats(i, "VEC2", 2); err != nil {
					return nil, err
				}
			}

			base := uint32(len(out.Vertices))
			for v := 0; v < count; v++ {
				vert := math.Vertex3D{Position: math.NewVec3(pos[v*3], pos[v*3+1], pos[v*3+2])}
				if len(normals) >= (v+1)*3 {
					vert.Normal = math.NewVec3(normals[v*3], normals[v*3+1], normals[v*3+2])
				}
				if len(uvs) >= (v+1)*2 {
					vert.Texcoord = math.NewVec2(uvs[v*2], uvs[v*2+1])
				}
				out.Vertices = append(out.Vertices, vert)
			}

			if prim.Indices != nil {
				idx, err := d.indices(*prim.Indices)
				if err != nil {
					return nil, err
				}
				for _, i := range idx {
					if int(i) >= count {
						return nil, fmt.Errorf("mesh %d primitive %d: index %d past %d vertices", mi, pi, i, count)
					}
					out.Indices = append(out.Indices, base+i)
				}
			} else {
				for i := 0; i < count; i++ {
					out.Indices = append(out.Indices, base+uint32(i))
				}
			}
		}
	}
	out.toLeftHanded()
	out.finish(hasNormals)
	return out, nil
}
