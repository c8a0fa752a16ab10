package geom

import (
	"fmt"
	"math"
)

// Point3 is a located point in 3D.
type Point3 struct {
	X, Y, Z float64
}

// Origin is the world origin.
var Origin = Point3{}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Array returns the coordinates as a raw triple.
func (p Point3) Array() [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

// PointFromArray builds a point from a raw triple.
func PointFromArray(a [3]float64) Point3 {
	return Point3{X: a[0], Y: a[1], Z: a[2]}
}

// AsVector relabels the point as the vector from the origin.
func (p Point3) AsVector() Vector3 {
	return Vector3(p)
}

// Add translates p by v.
func (p Point3) Add(v Vector3) Point3 {
	return p.AsVector().Add(v).AsPoint()
}

// Sub returns the vector from o to p.
func (p Point3) Sub(o Point3) Vector3 {
	return p.AsVector().Sub(o.AsVector())
}

// DistanceTo returns the distance between p and o.
func (p Point3) DistanceTo(o Point3) float64 {
	return p.Sub(o).Length()
}

// IsEqualTo reports whether p and o coincide within tol.Point.
func (p Point3) IsEqualTo(o Point3, tol Tolerance) bool {
	return p.DistanceTo(o) <= tol.Point
}

// Point2 is a point in a plane-local 2D frame.
type Point2 struct {
	X, Y float64
}

func (p Point2) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// DistanceTo returns the distance between p and o.
func (p Point2) DistanceTo(o Point2) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// IsEqualTo reports whether p and o coincide within tol.Point.
func (p Point2) IsEqualTo(o Point2, tol Tolerance) bool {
	return p.DistanceTo(o) <= tol.Point
}

// Lift places p at height z, giving local 3D coordinates.
func (p Point2) Lift(z float64) Point3 {
	return Point3{X: p.X, Y: p.Y, Z: z}
}

// Drop discards the Z coordinate.
func (p Point3) Drop() Point2 {
	return Point2{X: p.X, Y: p.Y}
}
