package math

import m "math"

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3FromVec4(v Vec4) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func NewVec3Zero() Vec3 { return Vec3{} }
func NewVec3One() Vec3  { return Vec3{1, 1, 1} }

// Basis directions. The engine is left-handed with +Y up and +Z forward.
func NewVec3Up() Vec3       { return Vec3{0, 1, 0} }
func NewVec3Down() Vec3     { return Vec3{0, -1, 0} }
func NewVec3Left() Vec3     { return Vec3{-1, 0, 0} }
func NewVec3Right() Vec3    { return Vec3{1, 0, 0} }
func NewVec3Forward() Vec3  { return Vec3{0, 0, 1} }
func NewVec3Backward() Vec3 { return Vec3{0, 0, -1} }

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul multiplies component-wise.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Div(other Vec3) Vec3 {
	return Vec3{v.X / other.X, v.Y / other.Y, v.Z / other.Z}
}

func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot is the plain dot product; neither operand needs to be unit length.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

// Normalized returns v scaled to unit length. A zero vector yields NaNs; use
// AsNormalizedSafe when the length may be zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// AsNormalizedSafe returns the unit vector along v, or the zero vector when v
// has zero length. The length is taken in float64 so very large or very small
// components neither overflow nor underflow.
func (v Vec3) AsNormalizedSafe() Vec3 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	l := m.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return Vec3{}
	}
	return Vec3{float32(x / l), float32(y / l), float32(z / l)}
}

func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance
}

func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Transform treats v as a point (w = 1) and multiplies it by m.
func (v Vec3) Transform(m Mat4) Vec3 {
	d := &m.Data
	return Vec3{
		v.X*d[0] + v.Y*d[4] + v.Z*d[8] + d[12],
		v.X*d[1] + v.Y*d[5] + v.Z*d[9] + d[13],
		v.X*d[2] + v.Y*d[6] + v.Z*d[10] + d[14],
	}
}

// TransformDirection treats v as a direction (w = 0) and multiplies it by m.
func (v Vec3) TransformDirection(m Mat4) Vec3 {
	d := &m.Data
	return Vec3{
		v.X*d[0] + v.Y*d[4] + v.Z*d[8],
		v.X*d[1] + v.Y*d[5] + v.Z*d[9],
		v.X*d[2] + v.Y*d[6] + v.Z*d[10],
	}
}
