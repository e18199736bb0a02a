package vmath

import "math"

const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
)

// Quat is a unit quaternion orientation
// Forward is +Z and up is +Y, Euler angles are in degrees applied Z, then X, then Y
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation orientation
var QuatIdentity = Quat{W: 1}

// QuatFromAxisAngle builds a rotation of deg degrees around axis
func QuatFromAxisAngle(axis Vec3F, deg float64) Quat {
	n := V3FNormalize(axis)
	half := deg * Deg2Rad * 0.5
	s := math.Sin(half)
	return Quat{n.X * s, n.Y * s, n.Z * s, math.Cos(half)}
}

// QuatFromEuler converts Euler degrees to a quaternion (Y * X * Z)
func QuatFromEuler(e Vec3F) Quat {
	qx := QuatFromAxisAngle(V3FRight, e.X)
	qy := QuatFromAxisAngle(V3FUp, e.Y)
	qz := QuatFromAxisAngle(V3FForward, e.Z)
	return QuatMul(QuatMul(qy, qx), qz)
}

// QuatMul composes rotations: the result applies b first, then a
func QuatMul(a, b Quat) Quat {
	return Quat{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

func QuatDot(a, b Quat) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

func QuatNormalize(q Quat) Quat {
	mag := math.Sqrt(QuatDot(q, q))
	if mag == 0 {
		return QuatIdentity
	}
	inv := 1.0 / mag
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// QuatRotate applies q to v
func QuatRotate(q Quat, v Vec3F) Vec3F {
	u := Vec3F{q.X, q.Y, q.Z}
	t := V3FScale(V3FCross(u, v), 2)
	return V3FAdd(V3FAdd(v, V3FScale(t, q.W)), V3FCross(u, t))
}

// QuatForward returns the +Z axis rotated by q
func QuatForward(q Quat) Vec3F {
	return QuatRotate(q, V3FForward)
}

// QuatLookRotation returns the orientation whose forward is dir and whose up is as close to up as possible
// A zero dir yields identity
func QuatLookRotation(dir, up Vec3F) Quat {
	z := V3FNormalize(dir)
	if V3FMagSq(z) == 0 {
		return QuatIdentity
	}
	x := V3FCross(up, z)
	if V3FMagSq(x) < 1e-12 {
		// dir parallel to up, pick any perpendicular
		x = V3FCross(V3FForward, z)
		if V3FMagSq(x) < 1e-12 {
			x = V3FCross(V3FRight, z)
		}
	}
	x = V3FNormalize(x)
	y := V3FCross(z, x)

	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{(m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s, s / 4}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{s / 4, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{(m01 + m10) / s, s / 4, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{(m02 + m20) / s, (m12 + m21) / s, s / 4, (m10 - m01) / s}
	}
	return QuatNormalize(q)
}

// QuatConjugate is the inverse of a unit quaternion
func QuatConjugate(q Quat) Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// QuatAngle returns the angle in degrees between two orientations
// Taken from the relative rotation with atan2, which stays exact near zero where acos does not
func QuatAngle(a, b Quat) float64 {
	r := QuatMul(QuatConjugate(a), b)
	v := math.Sqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
	return 2 * math.Atan2(v, math.Abs(r.W)) * Rad2Deg
}

// QuatSlerp interpolates along the shortest arc, t clamped to [0,1]
func QuatSlerp(a, b Quat, t float64) Quat {
	t = math.Max(0, math.Min(1, t))
	d := QuatDot(a, b)
	if d < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
		d = -d
	}
	if d > 0.9995 {
		// Nearly parallel, lerp avoids division by a vanishing sine
		return QuatNormalize(Quat{
			a.X + (b.X-a.X)*t,
			a.Y + (b.Y-a.Y)*t,
			a.Z + (b.Z-a.Z)*t,
			a.W + (b.W-a.W)*t,
		})
	}
	theta := math.Acos(d)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Quat{
		a.X*wa + b.X*wb,
		a.Y*wa + b.Y*wb,
		a.Z*wa + b.Z*wb,
		a.W*wa + b.W*wb,
	}
}

// QuatRotateTowards turns from toward to by at most maxDeg degrees
// Non-positive maxDeg leaves from unchanged
func QuatRotateTowards(from, to Quat, maxDeg float64) Quat {
	if maxDeg <= 0 {
		return from
	}
	angle := QuatAngle(from, to)
	if angle == 0 || maxDeg >= angle {
		return to
	}
	return QuatSlerp(from, to, maxDeg/angle)
}
