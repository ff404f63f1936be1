package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const (
	K_PI                 float32 = 3.14159265358979323846
	K_PI_2               float32 = 2.0 * K_PI
	K_HALF_PI            float32 = 0.5 * K_PI
	K_QUARTER_PI         float32 = 0.25 * K_PI
	K_ONE_OVER_PI        float32 = 1.0 / K_PI
	K_SQRT_TWO           float32 = 1.41421356237309504880
	K_SQRT_ONE_OVER_TWO  float32 = 0.70710678118654752440
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	K_INFINITY           float32 = 1e30
	K_FLOAT_EPSILON      float32 = 1.192092896e-07
	singularDeterminant  float32 = 1e-12
)

func ksin(x float32) float32  { return float32(m.Sin(float64(x))) }
func kcos(x float32) float32  { return float32(m.Cos(float64(x))) }
func ktan(x float32) float32  { return float32(m.Tan(float64(x))) }
func kacos(x float32) float32 { return float32(m.Acos(float64(x))) }
func ksqrt(x float32) float32 { return float32(m.Sqrt(float64(x))) }
func kabs(x float32) float32  { return float32(m.Abs(float64(x))) }

func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// Clamp returns f clamped to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp interpolates between a and b by t.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}
