package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/kiln/engine/math"
)

type objCorner struct {
	v, vt, vn int
}

type objParser struct {
	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	mesh       Mesh
	corners    map[objCorner]uint32
	hasNormals bool
}

func loadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseOBJ(f)
}

// parseOBJ reads positions, texture coordinates, normals and faces. Polygons
// are triangulated as fans. Groups, objects and materials are ignored.
func parseOBJ(r io.Reader) (*Mesh, error) {
	p := &objParser{corners: make(map[objCorner]uint32), hasNormals: true}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v []float32
			if v, err = parseFloats(fields[1:], 3); err == nil {
				p.positions = append(p.positions, math.NewVec3(v[0], v[1], v[2]))
			}
		case "vt":
			var v []float32
			if v, err = parseFloats(fields[1:], 2); err == nil {
				// OBJ puts v=0 at the bottom of the image
				p.texcoords = append(p.texcoords, math.NewVec2(v[0], 1-v[1]))
			}
		case "vn":
			var v []float32
			if v, err = parseFloats(fields[1:], 3); err == nil {
				p.normals = append(p.normals, math.NewVec3(v[0], v[1], v[2]))
			}
		case "f":
			err = p.face(fields[1:])
		case "o":
			if p.mesh.Name == "" && len(fields) > 1 {
				p.mesh.Name = fields[1]
			}
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p.mesh.toLeftHanded()
	p.mesh.finish(p.hasNormals)
	return &p.mesh, nil
}

func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face with %d vertices", len(refs))
	}
	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		c, err := p.corner(ref)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(c)
	}
	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Indices = append(p.mesh.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// corner parses v, v/vt, v//vn or v/vt/vn. Negative references count back
// from the latest element.
func (p *objParser) corner(ref string) (objCorner, error) {
	parts := strings.Split(ref, "/")
	var c objCorner
	var err error
	if c.v, err = resolveRef(parts[0], len(p.positions)); err != nil || c.v < 0 {
		return c, fmt.Errorf("bad position reference %q", ref)
	}
	c.vt, c.vn = -1, -1
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveRef(parts[1], len(p.texcoords)); err != nil {
			return c, fmt.Errorf("bad texcoord reference %q", ref)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveRef(parts[2], len(p.normals)); err != nil {
			return c, fmt.Errorf("bad normal reference %q", ref)
		}
	}
	if c.vn < 0 {
		p.hasNormals = false
	}
	return c, nil
}

func resolveRef(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	if n < 0 {
		n = count + n
	} else {
		n--
	}
	if n < 0 || n >= count {
		return -1, fmt.Errorf("reference %s out of range", s)
	}
	return n, nil
}

// vertex returns the index of the vertex for c, creating it on first use.
func (p *objParser) vertex(c objCorner) uint32 {
	if i, ok := p.corners[c]; ok {
		return i
	}
	v := math.Vertex3D{Position: p.positions[c.v]}
	if c.vt >= 0 {
		v.Texcoord = p.texcoords[c.vt]
	}
	if c.vn >= 0 {
		v.Normal = p.normals[c.vn]
	}
	i := uint32(len(p.mesh.Vertices))
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	p.corners[c] = i
	return i
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
