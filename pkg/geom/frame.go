package geom

import "math"

// arbitraryAxisLimit is the threshold below which a normal counts as
// "near the world Z axis" in the arbitrary axis rule.
const arbitraryAxisLimit = 1.0 / 64.0

// Frame is an orthonormal, right-handed coordinate system.
type Frame struct {
	Origin  Point3
	X, Y, Z Vector3
}

// WorldFrame is the identity frame.
var WorldFrame = Frame{Origin: Origin, X: XAxis, Y: YAxis, Z: ZAxis}

// OCS returns the object coordinate system of normal, anchored at the
// world origin. The X axis follows the arbitrary axis rule: when the
// normal is within 1/64 of the world Z axis, X is WorldY×N, otherwise
// WorldZ×N. Opposite normals therefore yield frames whose X axes are
// opposite and whose Y axes agree.
func OCS(normal Vector3) Frame {
	n := normal.Normalize()
	var x Vector3
	if math.Abs(n.X) < arbitraryAxisLimit && math.Abs(n.Y) < arbitraryAxisLimit {
		x = YAxis.Cross(n)
	} else {
		x = ZAxis.Cross(n)
	}
	x = x.Normalize()
	return Frame{
		Origin: Origin,
		X:      x,
		Y:      n.Cross(x).Normalize(),
		Z:      n,
	}
}

// NewFrame returns the OCS axes of normal anchored at origin.
func NewFrame(origin Point3, normal Vector3) Frame {
	f := OCS(normal)
	f.Origin = origin
	return f
}

// ToLocal expresses a world point in frame coordinates.
func (f Frame) ToLocal(p Point3) Point3 {
	d := p.Sub(f.Origin)
	return Point3{X: d.Dot(f.X), Y: d.Dot(f.Y), Z: d.Dot(f.Z)}
}

// ToWorld converts frame coordinates back to a world point.
func (f Frame) ToWorld(p Point3) Point3 {
	return f.Origin.Add(f.VecToWorld(p.AsVector()))
}

// VecToLocal expresses a world vector in frame coordinates.
func (f Frame) VecToLocal(v Vector3) Vector3 {
	return Vector3{X: v.Dot(f.X), Y: v.Dot(f.Y), Z: v.Dot(f.Z)}
}

// VecToWorld converts a frame vector to world coordinates.
func (f Frame) VecToWorld(v Vector3) Vector3 {
	return f.X.Scale(v.X).Add(f.Y.Scale(v.Y)).Add(f.Z.Scale(v.Z))
}
