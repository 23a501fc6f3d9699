// Package quaternion provides the 4-component rotation primitive used to
// orient wave patterns.
package quaternion

import "math"

// Quaternion is a 4-component vector (w, x, y, z).
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity returns the identity quaternion (1, 0, 0, 0).
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Dot computes the component-wise dot product of two quaternions.
func Dot(a, b Quaternion) float64 {
	return a.W*b.W + a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Norm returns the Euclidean magnitude of the quaternion.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns the unit quaternion pointing in the same direction.
// A quaternion with (near-)zero magnitude normalizes to the identity.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n < 1e-12 {
		return Identity()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Multiply computes the Hamilton product a*b. Quaternion multiplication is
// not commutative: Multiply(a, b) and Multiply(b, a) differ in general.
func Multiply(a, b Quaternion) Quaternion {
	return Quaternion{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// Lerp blends component-wise from a toward b by t (t=0 yields a, t=1 yields b).
// The result is generally not unit-norm; callers normalize as needed.
func Lerp(a, b Quaternion, t float64) Quaternion {
	return Quaternion{
		W: a.W + (b.W-a.W)*t,
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}
