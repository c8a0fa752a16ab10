package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroNormal is returned when a plane is built from a zero vector.
var ErrZeroNormal = errors.New("geom: plane normal has zero length")

// Plane is an origin point plus a unit normal. Two planes whose normals
// are negatives of each other describe the same points with opposite
// orientation.
type Plane struct {
	Origin Point3  `json:"origin"`
	Normal Vector3 `json:"normal"`
}

// XYPlane is the world XY plane through the origin.
var XYPlane = Plane{Origin: Origin, Normal: ZAxis}

// NewPlane returns a plane with a normalized normal.
func NewPlane(origin Point3, normal Vector3) (Plane, error) {
	if normal.IsZero(0) {
		return Plane{}, ErrZeroNormal
	}
	return Plane{Origin: origin, Normal: normal.Normalize()}, nil
}

// MustPlane is like NewPlane but panics on a zero normal.
func MustPlane(origin Point3, normal Vector3) Plane {
	p, err := NewPlane(origin, normal)
	if err != nil {
		panic(fmt.Sprintf("geom.MustPlane: %v", err))
	}
	return p
}

// Flip returns the same plane with the opposite orientation.
func (pl Plane) Flip() Plane {
	return Plane{Origin: pl.Origin, Normal: pl.Normal.Neg()}
}

// OCS returns the object coordinate system of the plane normal, anchored
// at the world origin.
func (pl Plane) OCS() Frame {
	return OCS(pl.Normal)
}

// Frame returns the OCS axes of the plane anchored at the plane origin.
func (pl Plane) Frame() Frame {
	return NewFrame(pl.Origin, pl.Normal)
}

// Elevation is the Z coordinate of the plane origin in the OCS of its
// normal: the signed distance of the plane from the world origin.
func (pl Plane) Elevation() float64 {
	return pl.OCS().ToLocal(pl.Origin).Z
}

// Contains reports whether p lies in the plane within tol.Point.
func (pl Plane) Contains(p Point3, tol Tolerance) bool {
	return math.Abs(p.Sub(pl.Origin).Dot(pl.Normal.Normalize())) <= tol.Point
}

// Project moves p along dir until it meets the plane. It reports false
// when dir is zero or parallel to the plane.
func (pl Plane) Project(p Point3, dir Vector3) (Point3, bool) {
	n := pl.Normal.Normalize()
	denom := n.Dot(dir)
	if dir.IsZero(0) || math.Abs(denom) <= DefaultTolerance.Vector*dir.Length() {
		return Point3{}, false
	}
	t := n.Dot(pl.Origin.Sub(p)) / denom
	return p.Add(dir.Scale(t)), true
}

// ProjectVector maps a free vector along dir into the plane: the
// difference of the projections of its two ends.
func (pl Plane) ProjectVector(v, dir Vector3) (Vector3, bool) {
	n := pl.Normal.Normalize()
	denom := n.Dot(dir)
	if dir.IsZero(0) || math.Abs(denom) <= DefaultTolerance.Vector*dir.Length() {
		return Vector3{}, false
	}
	return v.Sub(dir.Scale(n.Dot(v) / denom)), true
}

// OrthoProject drops p perpendicularly onto the plane.
func (pl Plane) OrthoProject(p Point3) Point3 {
	q, _ := pl.Project(p, pl.Normal)
	return q
}
