package math

import (
	stdmath "math"
	"testing"
)

func isFinite(f float32) bool {
	return !stdmath.IsNaN(float64(f)) && !stdmath.IsInf(float64(f), 0)
}

func TestAsNormalizedSafe(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"zero", Vec3{}, Vec3{}},
		{"axis", Vec3{0, 5, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{3, 0, 4}, Vec3{0.6, 0, 0.8}},
		{"negative", Vec3{-2, 0, 0}, Vec3{-1, 0, 0}},
		{"huge", Vec3{1e20, 0, 0}, Vec3{1, 0, 0}},
		{"huge diagonal", Vec3{3e30, 0, 4e30}, Vec3{0.6, 0, 0.8}},
		{"tiny", Vec3{1e-23, 0, 0}, Vec3{1, 0, 0}},
		{"subnormal", Vec3{0, -1e-44, 0}, Vec3{0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.AsNormalizedSafe()
			if !isFinite(got.X) || !isFinite(got.Y) || !isFinite(got.Z) {
				t.Fatalf("non-finite result %v", got)
			}
			if !got.Compare(tt.want, 1e-6) {
				t.Fatalf("AsNormalizedSafe(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.in != (Vec3{}) {
				if l := got.Length(); kabs(l-1) > 1e-6 {
					t.Fatalf("length = %v, want 1", l)
				}
			}
		})
	}
}

func TestVec3DotAndCross(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}

	if got := a.Dot(b); got != 12 {
		t.Fatalf("Dot = %v, want 12", got)
	}

	// x cross y = z in either handedness, only the picture differs
	if got := NewVec3Right().Cross(NewVec3Up()); got != NewVec3Forward() {
		t.Fatalf("right x up = %v, want forward", got)
	}

	c := a.Cross(b)
	if kabs(c.Dot(a)) > 1e-5 || kabs(c.Dot(b)) > 1e-5 {
		t.Fatalf("cross product %v not orthogonal to inputs", c)
	}
}

func TestVec3Transform(t *testing.T) {
	m := NewMat4Scale(Vec3{2, 2, 2}).Mul(NewMat4Translation(Vec3{1, 0, 0}))
	got := Vec3{1, 1, 1}.Transform(m)
	if !got.Compare(Vec3{3, 2, 2}, 1e-6) {
		t.Fatalf("Transform = %v, want (3,2,2)", got)
	}
	if dir := (Vec3{1, 0, 0}).TransformDirection(m); !dir.Compare(Vec3{2, 0, 0}, 1e-6) {
		t.Fatalf("TransformDirection = %v", dir)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Fatal("integer clamp")
	}
	if Clamp(float32(0.5), 0, 1) != 0.5 {
		t.Fatal("float clamp")
	}
}
