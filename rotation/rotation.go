// Package rotation implements the unit-quaternion and Rodrigues rotation
// primitives consumed by the reconstruction solver, motion integrator, and
// frame service. Quaternion multiplication is delegated to gonum's
// num/quat, re-exposed here in the (x, y, z, w) field order the spec uses.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/GiantCroissant-Lunar/fantasim-world-sub002/geo"
)

// Quaternion is a unit quaternion stored as (x, y, z, w); w is the scalar
// part. Callers are expected to keep it normalized — Compose and
// FromAxisAngle both return normalized results.
type Quaternion struct {
	X, Y, Z, W float64
}

// Identity is the zero rotation.
var Identity = Quaternion{0, 0, 0, 1}

func (q Quaternion) toGonum() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromGonum(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Norm returns the quaternion's Euclidean norm.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns q scaled to unit norm. Returns Identity if q's norm is
// smaller than 1e-300.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n < 1e-300 {
		return Identity
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// FromAxisAngle builds the rotation of angle theta (radians) about axis.
// A zero-length axis yields Identity.
func FromAxisAngle(axis geo.Point3, theta float64) Quaternion {
	n := axis.Norm()
	if n < 1e-300 {
		return Identity
	}
	half := theta / 2
	s := math.Sin(half)
	ax, ay, az := axis.X/n, axis.Y/n, axis.Z/n
	return Quaternion{X: ax * s, Y: ay * s, Z: az * s, W: math.Cos(half)}.Normalized()
}

// Compose returns a applied after b: Compose(a, b).Apply(p) == a.Apply(b.Apply(p)).
func Compose(a, b Quaternion) Quaternion {
	return fromGonum(quat.Mul(a.toGonum(), b.toGonum())).Normalized()
}

// Inverse returns the conjugate, which is the inverse for a unit quaternion.
func (q Quaternion) Inverse() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// IsIdentity reports whether q represents a rotation of angle < 1e-12.
func (q Quaternion) IsIdentity() bool {
	u := q.Normalized()
	// angle = 2*acos(|w|), clamp w to [-1,1] for numerical safety.
	w := u.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle := 2 * math.Acos(math.Abs(w))
	return math.Abs(angle) < 1e-12
}

// Apply rotates p by q via q p q*.
func (q Quaternion) Apply(p geo.Point3) geo.Point3 {
	pq := quat.Number{Real: 0, Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	u := q.toGonum()
	conj := quat.Conj(u)
	r := quat.Mul(quat.Mul(u, pq), conj)
	return geo.Point3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Rodrigues rotates p about axis by angle theta using the vectorized
// Rodrigues formula directly (no quaternion intermediate), matching the
// reference formula:
//
//	p' = p cos(theta) + (k x p) sin(theta) + k (k . p)(1 - cos(theta))
//
// Returns p unchanged if axis's length is smaller than machine epsilon.
func Rodrigues(p geo.Point3, axis geo.Point3, theta float64) geo.Point3 {
	n := axis.Norm()
	if n < 0x1p-52 { // float64 machine epsilon
		return p
	}
	k := geo.Point3{X: axis.X / n, Y: axis.Y / n, Z: axis.Z / n}
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	kxp := cross(k, p)
	kdotp := k.Dot(p)

	return geo.Point3{
		X: p.X*cosT + kxp.X*sinT + k.X*kdotp*(1-cosT),
		Y: p.Y*cosT + kxp.Y*sinT + k.Y*kdotp*(1-cosT),
		Z: p.Z*cosT + kxp.Z*sinT + k.Z*kdotp*(1-cosT),
	}
}

func cross(a, b geo.Point3) geo.Point3 {
	return geo.Point3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
