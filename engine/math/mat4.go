package math

func NewMat4Identity() Mat4 {
	return Mat4{Data: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Mul returns mt * other. With row vectors the result applies mt first and
// other second, so scale.Mul(rotation).Mul(translation) scales, rotates and
// then translates.
func (mt Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	a := &mt.Data
	b := &other.Data
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[r*4+c] = a[r*4+0]*b[0*4+c] +
				a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] +
				a[r*4+3]*b[3*4+c]
		}
	}
	return out
}

// MulVec4 returns mt * v with v as a column vector. This is how the
// transposed matrices handed to the GPU are applied.
func (mt Mat4) MulVec4(v Vec4) Vec4 {
	d := &mt.Data
	return Vec4{
		d[0]*v.X + d[1]*v.Y + d[2]*v.Z + d[3]*v.W,
		d[4]*v.X + d[5]*v.Y + d[6]*v.Z + d[7]*v.W,
		d[8]*v.X + d[9]*v.Y + d[10]*v.Z + d[11]*v.W,
		d[12]*v.X + d[13]*v.Y + d[14]*v.Z + d[15]*v.W,
	}
}

func (mt Mat4) Transposed() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = mt.Data[r*4+c]
		}
	}
	return out
}

// Inverse returns the inverse of mt. When mt is singular it returns the
// identity and false.
func (mt Mat4) Inverse() (Mat4, bool) {
	m := &mt.Data
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	// 2x2 minors of the upper and lower halves
	s0 := a00*a11 - a10*a01
	s1 := a00*a12 - a10*a02
	s2 := a00*a13 - a10*a03
	s3 := a01*a12 - a11*a02
	s4 := a01*a13 - a11*a03
	s5 := a02*a13 - a12*a03

	c5 := a22*a33 - a32*a23
	c4 := a21*a33 - a31*a23
	c3 := a21*a32 - a31*a22
	c2 := a20*a33 - a30*a23
	c1 := a20*a32 - a30*a22
	c0 := a20*a31 - a30*a21

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if kabs(det) < singularDeterminant {
		return NewMat4Identity(), false
	}
	inv := 1 / det

	var o [16]float32
	o[0] = (a11*c5 - a12*c4 + a13*c3) * inv
	o[1] = (-a01*c5 + a02*c4 - a03*c3) * inv
	o[2] = (a31*s5 - a32*s4 + a33*s3) * inv
	o[3] = (-a21*s5 + a22*s4 - a23*s3) * inv

	o[4] = (-a10*c5 + a12*c2 - a13*c1) * inv
	o[5] = (a00*c5 - a02*c2 + a03*c1) * inv
	o[6] = (-a30*s5 + a32*s2 - a33*s1) * inv
	o[7] = (a20*s5 - a22*s2 + a23*s1) * inv

	o[8] = (a10*c4 - a11*c2 + a13*c0) * inv
	o[9] = (-a00*c4 + a01*c2 - a03*c0) * inv
	o[10] = (a30*s4 - a31*s2 + a33*s0) * inv
	o[11] = (-a20*s4 + a21*s2 - a23*s0) * inv

	o[12] = (-a10*c3 + a11*c1 - a12*c0) * inv
	o[13] = (a00*c3 - a01*c1 + a02*c0) * inv
	o[14] = (-a30*s3 + a31*s1 - a32*s0) * inv
	o[15] = (a20*s3 - a21*s1 + a22*s0) * inv

	return Mat4{Data: o}, true
}

// Compare reports whether every element is within tolerance of other.
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

func NewMat4EulerX(angleRadians float32) Mat4 {
	c, s := kcos(angleRadians), ksin(angleRadians)
	out := NewMat4Identity()
	out.Data[5] = c
	out.Data[6] = s
	out.Data[9] = -s
	out.Data[10] = c
	return out
}

func NewMat4EulerY(angleRadians float32) Mat4 {
	c, s := kcos(angleRadians), ksin(angleRadians)
	out := NewMat4Identity()
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[8] = s
	out.Data[10] = c
	return out
}

func NewMat4EulerZ(angleRadians float32) Mat4 {
	c, s := kcos(angleRadians), ksin(angleRadians)
	out := NewMat4Identity()
	out.Data[0] = c
	out.Data[1] = s
	out.Data[4] = -s
	out.Data[5] = c
	return out
}

// NewMat4EulerXYZ builds a rotation from pitch (X), yaw (Y) and roll (Z).
// See Euler.ToMat4 for the application order.
func NewMat4EulerXYZ(xRadians, yRadians, zRadians float32) Mat4 {
	return Euler{Pitch: xRadians, Yaw: yRadians, Roll: zRadians}.ToMat4()
}

func NewMat4AxisAngle(axis Vec3, angleRadians float32) Mat4 {
	return NewQuatFromAxisAngle(axis, angleRadians, true).ToMat4()
}

// NewMat4Perspective builds a left-handed perspective projection mapping
// depth to [0, 1].
func NewMat4Perspective(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	yScale := 1 / ktan(fovRadians*0.5)
	depth := farClip / (farClip - nearClip)

	var out Mat4
	out.Data[0] = yScale / aspectRatio
	out.Data[5] = yScale
	out.Data[10] = depth
	out.Data[11] = 1
	out.Data[14] = -nearClip * depth
	return out
}

// NewMat4OrthographicLH builds a left-handed orthographic projection of a
// view volume centred on the view axis, mapping depth to [0, 1].
func NewMat4OrthographicLH(width, height, nearClip, farClip float32) Mat4 {
	rangeInv := 1 / (farClip - nearClip)

	out := NewMat4Identity()
	out.Data[0] = 2 / width
	out.Data[5] = 2 / height
	out.Data[10] = rangeInv
	out.Data[14] = -nearClip * rangeInv
	return out
}

// NewMat4Orthographic builds an off-centre orthographic projection, mostly
// used for screen space drawing.
func NewMat4Orthographic(left, right, bottom, top, nearClip, farClip float32) Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (farClip - nearClip)

	out := NewMat4Identity()
	out.Data[0] = 2 * rl
	out.Data[5] = 2 * tb
	out.Data[10] = fn
	out.Data[12] = -(left + right) * rl
	out.Data[13] = -(top + bottom) * tb
	out.Data[14] = -nearClip * fn
	return out
}

// NewMat4LookAt builds a left-handed view matrix looking from position at target.
func NewMat4LookAt(position, target, up Vec3) Mat4 {
	z := target.Sub(position).AsNormalizedSafe()
	x := up.Cross(z).AsNormalizedSafe()
	y := z.Cross(x)

	return Mat4{Data: [16]float32{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(position), -y.Dot(position), -z.Dot(position), 1,
	}}
}

// Basis vectors of a world matrix.

func (mt Mat4) Right() Vec3 {
	return Vec3{mt.Data[0], mt.Data[1], mt.Data[2]}.AsNormalizedSafe()
}

func (mt Mat4) Left() Vec3 {
	return mt.Right().Negate()
}

func (mt Mat4) Up() Vec3 {
	return Vec3{mt.Data[4], mt.Data[5], mt.Data[6]}.AsNormalizedSafe()
}

func (mt Mat4) Down() Vec3 {
	return mt.Up().Negate()
}

func (mt Mat4) Forward() Vec3 {
	return Vec3{mt.Data[8], mt.Data[9], mt.Data[10]}.AsNormalizedSafe()
}

func (mt Mat4) Backward() Vec3 {
	return mt.Forward().Negate()
}

func (mt Mat4) Translation() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}
