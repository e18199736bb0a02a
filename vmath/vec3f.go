package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector for world-space positions, directions and velocities
type Vec3F struct {
	X, Y, Z float64
}

var (
	V3FZero    = Vec3F{}
	V3FUp      = Vec3F{0, 1, 0}
	V3FRight   = Vec3F{1, 0, 0}
	V3FForward = Vec3F{0, 0, 1}
)

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FCross(a, b Vec3F) Vec3F {
	return Vec3F{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FMin returns the component-wise minimum
func V3FMin(a, b Vec3F) Vec3F {
	return Vec3F{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// V3FMulAdd returns base + step*n, used for per-iteration parameter ramps
func V3FMulAdd(base, step Vec3F, n float64) Vec3F {
	return Vec3F{base.X + step.X*n, base.Y + step.Y*n, base.Z + step.Z*n}
}

// V3FApprox compares within an absolute tolerance per component
func V3FApprox(a, b Vec3F, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
