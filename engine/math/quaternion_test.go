package math

import "testing"

func TestEulerMatrixMatchesQuaternion(t *testing.T) {
	tests := []Euler{
		{},
		{Pitch: 0.5},
		{Yaw: -1.2},
		{Roll: 2.0},
		{Pitch: 0.3, Yaw: 1.1, Roll: -0.7},
		NewEulerDegrees(45, 90, 30),
	}
	for _, e := range tests {
		fromEuler := e.ToMat4()
		fromQuat := e.ToQuaternion().ToMat4()
		if !fromEuler.Compare(fromQuat, 1e-5) {
			t.Errorf("%+v: euler matrix %v != quaternion matrix %v", e, fromEuler, fromQuat)
		}
	}
}

func TestEulerApplicationOrder(t *testing.T) {
	// roll 90 first maps +X to +Y; yaw 90 then leaves +Y alone
	e := NewEulerDegrees(0, 90, 90)
	got := NewVec3Right().Transform(e.ToMat4())
	if !got.Compare(NewVec3Up(), 1e-5) {
		t.Fatalf("rotated = %v, want up", got)
	}
}

func TestQuaternionRotate(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)
	v := Vec3{1, 2, 3}

	byQuat := q.Rotate(v)
	byMat := v.Transform(q.ToMat4())
	if !byQuat.Compare(byMat, 1e-5) {
		t.Fatalf("Rotate = %v, matrix = %v", byQuat, byMat)
	}

	// +Z forward turns to +X under a positive yaw of 90 degrees
	if got := q.Rotate(NewVec3Forward()); !got.Compare(NewVec3Right(), 1e-5) {
		t.Fatalf("yawed forward = %v, want right", got)
	}
}

func TestQuaternionMulComposes(t *testing.T) {
	a := NewQuatFromAxisAngle(NewVec3Right(), 0.4, true)
	b := NewQuatFromAxisAngle(NewVec3Forward(), -0.9, true)

	// a.Mul(b) applies b first, matching b's matrix followed by a's
	want := b.ToMat4().Mul(a.ToMat4())
	if got := a.Mul(b).ToMat4(); !got.Compare(want, 1e-5) {
		t.Fatalf("composition mismatch: %v vs %v", got, want)
	}
}

func TestSlerpEndpoints(t *testing.T) {
	a := NewQuatIdentity()
	b := NewQuatFromAxisAngle(NewVec3Up(), 1.0, true)

	if got := a.Slerp(b, 0); !Vec4(got).Compare(Vec4(a), 1e-5) {
		t.Fatalf("Slerp(0) = %v", got)
	}
	if got := a.Slerp(b, 1); !Vec4(got).Compare(Vec4(b), 1e-5) {
		t.Fatalf("Slerp(1) = %v", got)
	}
}

func TestTransformWorldMatrix(t *testing.T) {
	parent := NewTransformFromPosition(Vec3{10, 0, 0})
	child := NewTransformFromPosition(Vec3{0, 1, 0})
	child.Parent = parent
	child.SetScale(Vec3{2, 2, 2})

	got := Vec3{1, 0, 0}.Transform(child.WorldMatrix())
	if !got.Compare(Vec3{12, 1, 0}, 1e-5) {
		t.Fatalf("world position = %v, want (12,1,0)", got)
	}
}
