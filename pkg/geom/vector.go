// Package geom holds the small value types shared by the projector, the
// coordinate transform gateway and the kernels: points, vectors, planes,
// coordinate frames and tolerances. Arithmetic delegates to the sdfx
// vector package so every component does its math the same way.
package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vector3 is a free direction or displacement in 3D.
type Vector3 struct {
	X, Y, Z float64
}

// Common axis vectors.
var (
	XAxis = Vector3{X: 1}
	YAxis = Vector3{Y: 1}
	ZAxis = Vector3{Z: 1}
)

func (v Vector3) vec() v3.Vec  { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromVec(v v3.Vec) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Array returns the components as a raw triple.
func (v Vector3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// VectorFromArray builds a vector from a raw triple.
func VectorFromArray(a [3]float64) Vector3 {
	return Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// AsPoint relabels the vector as a point with the same components.
func (v Vector3) AsPoint() Point3 {
	return Point3(v)
}

// Add returns v+o.
func (v Vector3) Add(o Vector3) Vector3 {
	return fromVec(v.vec().Add(o.vec()))
}

// Sub returns v-o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return fromVec(v.vec().Sub(o.vec()))
}

// Scale returns v*k.
func (v Vector3) Scale(k float64) Vector3 {
	return fromVec(v.vec().MulScalar(k))
}

// Neg returns -v.
func (v Vector3) Neg() Vector3 {
	return fromVec(v.vec().Neg())
}

// Dot returns the dot product.
func (v Vector3) Dot(o Vector3) float64 {
	return v.vec().Dot(o.vec())
}

// Cross returns the cross product v×o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return fromVec(v.vec().Cross(o.vec()))
}

// Length returns the Euclidean length.
func (v Vector3) Length() float64 {
	return v.vec().Length()
}

// Normalize returns the unit vector in the direction of v. The zero
// vector is returned unchanged.
func (v Vector3) Normalize() Vector3 {
	if v.IsZero(0) {
		return v
	}
	return fromVec(v.vec().Normalize())
}

// IsZero reports whether the length of v is at most tol.
func (v Vector3) IsZero(tol float64) bool {
	return v.Length() <= tol
}

// IsEqualTo reports whether v and o differ by at most tol.Point in length.
func (v Vector3) IsEqualTo(o Vector3, tol Tolerance) bool {
	return v.Sub(o).Length() <= tol.Point
}

// IsParallelTo reports whether v and o point along the same line, within
// the angular tolerance.
func (v Vector3) IsParallelTo(o Vector3, tol Tolerance) bool {
	a, b := v.Normalize(), o.Normalize()
	return a.Cross(b).Length() <= tol.Vector
}

// IsPerpendicularTo reports whether v and o are at right angles, within
// the angular tolerance.
func (v Vector3) IsPerpendicularTo(o Vector3, tol Tolerance) bool {
	return math.Abs(v.Normalize().Dot(o.Normalize())) <= tol.Vector
}

// AngleTo returns the counter-clockwise angle from v to o measured about
// ref, in [0, 2π).
func (v Vector3) AngleTo(o, ref Vector3) float64 {
	a := math.Atan2(v.Cross(o).Dot(ref.Normalize()), v.Dot(o))
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Flatten removes the component of v along normal, leaving its projection
// onto the plane perpendicular to normal.
func (v Vector3) Flatten(normal Vector3) Vector3 {
	n := normal.Normalize()
	return v.Sub(n.Scale(v.Dot(n)))
}
