package assets

import (
	gomath "math"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
)

// meshBuilder accumulates vertices and triangles. Every triangle is wound so
// that the cross product of its edges points along the outward normal of its
// corners.
type meshBuilder struct {
	mesh *Mesh
}

func newMeshBuilder(name string, vertexHint, indexHint int) *meshBuilder {
	return &meshBuilder{mesh: &Mesh{
		Name:     name,
		Vertices: make([]math.Vertex3D, 0, vertexHint),
		Indices:  make([]uint32, 0, indexHint),
	}}
}

func (b *meshBuilder) vertex(p, n math.Vec3, uv math.Vec2) uint32 {
	b.mesh.Vertices = append(b.mesh.Vertices, math.Vertex3D{
		Position: p,
		Normal:   n,
		Texcoord: uv,
		Colour:   math.NewVec4One(),
	})
	return uint32(len(b.mesh.Vertices) - 1)
}

func (b *meshBuilder) triangle(i0, i1, i2 uint32) {
	v := b.mesh.Vertices
	p0, p1, p2 := v[i0].Position, v[i1].Position, v[i2].Position
	face := p1.Sub(p0).Cross(p2.Sub(p0))
	if face.LengthSquared() == 0 {
		// degenerate, pole caps of a sphere
		b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
		return
	}
	n := v[i0].Normal.Add(v[i1].Normal).Add(v[i2].Normal)
	if face.Dot(n) < 0 {
		i1, i2 = i2, i1
	}
	b.mesh.Indices = append(b.mesh.Indices, i0, i1, i2)
}

// quad adds two triangles over the corners a, b, c, d given in order around
// the quad.
func (b *meshBuilder) quad(a, bb, c, d uint32) {
	b.triangle(a, bb, c)
	b.triangle(a, c, d)
}

func (b *meshBuilder) build() *Mesh {
	math.GenerateTangents(b.mesh.Vertices, b.mesh.Indices)
	return b.mesh
}

func positive(v float32, what string) float32 {
	if v <= 0 {
		core.LogWarn("%s must be positive. Defaulting to one.", what)
		return 1
	}
	return v
}

func atLeast(v, low uint32, what string) uint32 {
	if v < low {
		core.LogWarn("%s must be at least %d. Defaulting to %d.", what, low, low)
		return low
	}
	return v
}

// GeneratePlane builds a plane in the XZ plane facing +Y, centred on the
// origin and split into xSegments by zSegments quads. Texture coordinates
// repeat tileX by tileY times over the whole plane.
func GeneratePlane(width, depth float32, xSegments, zSegments uint32, tileX, tileY float32) *Mesh {
	width = positive(width, "width")
	depth = positive(depth, "depth")
	xSegments = atLeast(xSegments, 1, "xSegments")
	zSegments = atLeast(zSegments, 1, "zSegments")
	tileX = positive(tileX, "tileX")
	tileY = positive(tileY, "tileY")

	b := newMeshBuilder("plane", int((xSegments+1)*(zSegments+1)), int(xSegments*zSegments*6))
	up := math.NewVec3Up()
	halfWidth, halfDepth := width*0.5, depth*0.5
	for z := uint32(0); z <= zSegments; z++ {
		for x := uint32(0); x <= xSegments; x++ {
			u := float32(x) / float32(xSegments)
			v := float32(z) / float32(zSegments)
			p := math.NewVec3(u*width-halfWidth, 0, v*depth-halfDepth)
			b.vertex(p, up, math.NewVec2(u*tileX, v*tileY))
		}
	}
	stride := xSegments + 1
	for z := uint32(0); z < zSegments; z++ {
		for x := uint32(0); x < xSegments; x++ {
			i := z*stride + x
			b.quad(i, i+stride, i+stride+1, i+1)
		}
	}
	return b.build()
}

// GenerateCube builds an axis aligned box centred on the origin with four
// vertices per face so each face keeps its own normal.
func GenerateCube(width, height, depth, tileX, tileY float32) *Mesh {
	width = positive(width, "width")
	height = positive(height, "height")
	depth = positive(depth, "depth")
	tileX = positive(tileX, "tileX")
	tileY = positive(tileY, "tileY")

	hx, hy, hz := width*0.5, height*0.5, depth*0.5
	faces := []struct {
		normal  math.Vec3
		corners [4]math.Vec3
	}{
		// front (-Z, towards a camera looking down +Z)
		{math.NewVec3Backward(), [4]math.Vec3{{X: -hx, Y: -hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}}},
		// back
		{math.NewVec3Forward(), [4]math.Vec3{{X: hx, Y: -hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz}, {X: -hx, Y: -hy, Z: hz}}},
		// left
		{math.NewVec3Left(), [4]math.Vec3{{X: -hx, Y: -hy, Z: hz}, {X: -hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: -hz}, {X: -hx, Y: -hy, Z: -hz}}},
		// right
		{math.NewVec3Right(), [4]math.Vec3{{X: hx, Y: -hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: hz}, {X: hx, Y: -hy, Z: hz}}},
		// bottom
		{math.NewVec3Down(), [4]math.Vec3{{X: -hx, Y: -hy, Z: hz}, {X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: hz}}},
		// top
		{math.NewVec3Up(), [4]math.Vec3{{X: -hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: -hz}}},
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 0, Y: tileY}, {X: tileX, Y: tileY}, {X: tileX, Y: 0}}

	b := newMeshBuilder("cube", 24, 36)
	for _, f := range faces {
		var idx [4]uint32
		for i, c := range f.corners {
			idx[i] = b.vertex(c, f.normal, uvs[i])
		}
		b.quad(idx[0], idx[1], idx[2], idx[3])
	}
	return b.build()
}

// GenerateSphere builds a UV sphere of the given radius with rings latitude
// bands and sectors longitude slices. The seam column is duplicated so the
// texture wraps cleanly.
func GenerateSphere(radius float32, rings, sectors uint32) *Mesh {
	radius = positive(radius, "radius")
	rings = atLeast(rings, 2, "rings")
	sectors = atLeast(sectors, 3, "sectors")

	b := newMeshBuilder("sphere", int((rings+1)*(sectors+1)), int(rings*sectors*6))
	for r := uint32(0); r <= rings; r++ {
		v := float64(r) / float64(rings)
		phi := v * gomath.Pi
		for s := uint32(0); s <= sectors; s++ {
			u := float64(s) / float64(sectors)
			theta := u * 2 * gomath.Pi
			n := math.NewVec3(
				float32(gomath.Sin(phi)*gomath.Cos(theta)),
				float32(gomath.Cos(phi)),
				float32(gomath.Sin(phi)*gomath.Sin(theta)),
			)
			b.vertex(n.MulScalar(radius), n, math.NewVec2(float32(u), float32(v)))
		}
	}
	stride := sectors + 1
	for r := uint32(0); r < rings; r++ {
		for s := uint32(0); s < sectors; s++ {
			i := r*stride + s
			b.quad(i, i+1, i+stride+1, i+stride)
		}
	}
	return b.build()
}

// GenerateCylinder builds a capped cylinder standing on the Y axis, centred
// on the origin.
func GenerateCylinder(radius, height float32, sectors uint32) *Mesh {
	radius = positive(radius, "radius")
	return generateLathe("cylinder", radius, radius, height, sectors)
}

// GenerateCone builds a cone with its base on y = -height/2 and its apex on
// the Y axis at y = +height/2.
func GenerateCone(radius, height float32, sectors uint32) *Mesh {
	return generateLathe("cone", radius, 0, height, sectors)
}

// generateLathe sweeps the segment from (bottom, -h/2) to (top, +h/2) around
// the Y axis and closes each end that has a non zero radius.
func generateLathe(name string, bottom, top, height float32, sectors uint32) *Mesh {
	bottom = positive(bottom, "radius")
	height = positive(height, "height")
	sectors = atLeast(sectors, 3, "sectors")

	half := height * 0.5
	slope := (bottom - top) / height
	b := newMeshBuilder(name, int((sectors+1)*4+2), int(sectors*12))

	side := uint32(len(b.mesh.Vertices))
	for s := uint32(0); s <= sectors; s++ {
		u := float32(s) / float32(sectors)
		theta := float64(u) * 2 * gomath.Pi
		c, sn := float32(gomath.Cos(theta)), float32(gomath.Sin(theta))
		n := math.NewVec3(c, slope, sn).Normalized()
		b.vertex(math.NewVec3(c*bottom, -half, sn*bottom), n, math.NewVec2(u, 0))
		b.vertex(math.NewVec3(c*top, half, sn*top), n, math.NewVec2(u, 1))
	}
	for s := uint32(0); s < sectors; s++ {
		i := side + s*2
		if top == 0 {
			b.triangle(i, i+2, i+1)
			continue
		}
		b.quad(i, i+2, i+3, i+1)
	}

	addCap := func(y, radius float32, normal math.Vec3) {
		centre := b.vertex(math.NewVec3(0, y, 0), normal, math.NewVec2(0.5, 0.5))
		first := uint32(len(b.mesh.Vertices))
		for s := uint32(0); s <= sectors; s++ {
			theta := float64(s) / float64(sectors) * 2 * gomath.Pi
			c, sn := float32(gomath.Cos(theta)), float32(gomath.Sin(theta))
			b.vertex(math.NewVec3(c*radius, y, sn*radius), normal, math.NewVec2(0.5+c*0.5, 0.5+sn*0.5))
		}
		for s := uint32(0); s < sectors; s++ {
			b.triangle(centre, first+s, first+s+1)
		}
	}
	addCap(-half, bottom, math.NewVec3Down())
	if top > 0 {
		addCap(half, top, math.NewVec3Up())
	}
	return b.build()
}
