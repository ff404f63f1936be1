package math

// GenerateNormals assigns flat face normals to the vertices of each triangle.
func GenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)
		normal := edge1.Cross(edge2).AsNormalizedSafe()

		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// TriangleTangent computes the tangent of a triangle from its position and
// texture coordinate deltas. Degenerate UV mappings yield the zero vector.
func TriangleTangent(p0, p1, p2 Vec3, uv0, uv1, uv2 Vec2) Vec3 {
	edge1 := p1.Sub(p0)
	edge2 := p2.Sub(p0)

	du1, dv1 := uv1.X-uv0.X, uv1.Y-uv0.Y
	du2, dv2 := uv2.X-uv0.X, uv2.Y-uv0.Y

	det := du1*dv2 - du2*dv1
	if det == 0 {
		return Vec3{}
	}
	f := 1 / det

	tangent := edge1.MulScalar(dv2).Sub(edge2.MulScalar(dv1)).MulScalar(f)
	return tangent.AsNormalizedSafe()
}

// GenerateTangents assigns a per-triangle tangent to the vertices of each
// triangle. The same tangent is written to all three corners.
func GenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		t := TriangleTangent(
			vertices[i0].Position, vertices[i1].Position, vertices[i2].Position,
			vertices[i0].Texcoord, vertices[i1].Texcoord, vertices[i2].Texcoord,
		)
		vertices[i0].Tangent = t
		vertices[i1].Tangent = t
		vertices[i2].Tangent = t
	}
}

func Vertex3DEqual(a, b Vertex3D) bool {
	return a.Position.Compare(b.Position, K_FLOAT_EPSILON) &&
		a.Normal.Compare(b.Normal, K_FLOAT_EPSILON) &&
		a.Texcoord.Compare(b.Texcoord, K_FLOAT_EPSILON) &&
		a.Colour.Compare(b.Colour, K_FLOAT_EPSILON) &&
		a.Tangent.Compare(b.Tangent, K_FLOAT_EPSILON)
}
