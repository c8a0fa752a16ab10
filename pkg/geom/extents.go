package geom

import "math"

// Extents is an axis-aligned box given by its minimum and maximum corners.
type Extents struct {
	Min Point3 `json:"min"`
	Max Point3 `json:"max"`
}

// NewExtents returns the box spanned by two arbitrary corners.
func NewExtents(a, b Point3) Extents {
	return Extents{
		Min: Point3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: Point3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Size returns Max-Min.
func (e Extents) Size() Vector3 {
	return e.Max.Sub(e.Min)
}

// Center returns the midpoint of the box.
func (e Extents) Center() Point3 {
	return e.Min.Add(e.Size().Scale(0.5))
}
