package math

// ToMat4 returns the rotation matrix for e. Roll is applied first, then
// pitch, then yaw.
func (e Euler) ToMat4() Mat4 {
	return NewMat4EulerZ(e.Roll).Mul(NewMat4EulerX(e.Pitch)).Mul(NewMat4EulerY(e.Yaw))
}

// ToQuaternion returns the quaternion equivalent of e, with the same
// application order as ToMat4.
func (e Euler) ToQuaternion() Quaternion {
	return NewQuatFromEuler(e)
}

func (e Euler) Add(other Euler) Euler {
	return Euler{e.Pitch + other.Pitch, e.Yaw + other.Yaw, e.Roll + other.Roll}
}

// NewEulerDegrees builds Euler angles from degrees.
func NewEulerDegrees(pitch, yaw, roll float32) Euler {
	return Euler{DegToRad(pitch), DegToRad(yaw), DegToRad(roll)}
}
