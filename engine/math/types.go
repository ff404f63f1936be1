package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Quaternion represents a rotation. W is the scalar part.
type Quaternion Vec4

// Mat4 is a 4x4 matrix stored row-major. Vectors are treated as rows and
// multiplied on the left (v' = v * M), so translation lives in Data[12:15].
type Mat4 struct {
	Data [16]float32
}

// Euler angles in radians. Pitch rotates about X, Yaw about Y and Roll about Z.
type Euler struct {
	Pitch, Yaw, Roll float32
}

// Extents2D is an axis aligned 2D box.
type Extents2D struct {
	Min Vec2
	Max Vec2
}

// Extents3D is an axis aligned 3D box.
type Extents3D struct {
	Min Vec3
	Max Vec3
}

// Vertex3D is the interleaved vertex layout consumed by the mesh pipeline.
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
	Colour   Vec4
	Tangent  Vec3
}

// Vertex3DSize is the size in bytes of one packed Vertex3D.
const Vertex3DSize = (3 + 3 + 2 + 4 + 3) * 4

type Vertex2D struct {
	Position Vec2
	Texcoord Vec2
}

// Transform is a position, rotation and scale with an optional parent.
// Fields should be changed through the setters so the cached local matrix is
// rebuilt.
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	// IsDirty marks the cached local matrix as out of date.
	IsDirty bool
	Local   Mat4
	Parent  *Transform
}
