package kernel

import (
	"fmt"

	"github.com/chazu/planproj/pkg/geom"
)

// CurveKind enumerates the concrete kinds of curve a caller can hand to
// the kernel.
type CurveKind int

const (
	CurvePolyline   CurveKind = iota // lightweight 2D polyline (bulged vertices)
	CurvePolyline2d                  // heavy 2D polyline (bulged vertices)
	CurvePolyline3d                  // 3D polyline (straight segments only)
	CurveLine                        // single line
	CurveArc                         // single circular arc
	CurveCircle                      // full circle
	CurveEllipse                     // ellipse or elliptical arc
	CurveSpline                      // spline
)

func (k CurveKind) String() string {
	switch k {
	case CurvePolyline:
		return "polyline"
	case CurvePolyline2d:
		return "polyline2d"
	case CurvePolyline3d:
		return "polyline3d"
	case CurveLine:
		return "line"
	case CurveArc:
		return "arc"
	case CurveCircle:
		return "circle"
	case CurveEllipse:
		return "ellipse"
	case CurveSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// IsPolyline reports whether the kind is one of the polyline kinds.
func (k CurveKind) IsPolyline() bool {
	return k == CurvePolyline || k == CurvePolyline2d || k == CurvePolyline3d
}

// Vertex is a world-space polyline vertex. Bulge describes the segment
// that starts at this vertex, measured about the curve normal; it is
// ignored for 3D polylines.
type Vertex struct {
	Point geom.Point3 `json:"point"`
	Bulge float64     `json:"bulge,omitempty"`
}

// Curve is a caller-owned curve. Polyline kinds use Vertices, Closed and
// Normal; the single-primitive kinds use Primitive.
type Curve struct {
	Kind      CurveKind    `json:"kind"`
	Vertices  []Vertex     `json:"vertices,omitempty"`
	Closed    bool         `json:"closed,omitempty"`
	Normal    geom.Vector3 `json:"normal"`
	Primitive *Primitive   `json:"primitive,omitempty"`
}

// NewPolyline returns a 2D polyline curve with the given normal.
func NewPolyline(normal geom.Vector3, closed bool, verts ...Vertex) *Curve {
	return &Curve{Kind: CurvePolyline, Vertices: verts, Closed: closed, Normal: normal}
}

// NewPolyline3d returns a 3D polyline through the given points.
func NewPolyline3d(closed bool, pts ...geom.Point3) *Curve {
	verts := make([]Vertex, len(pts))
	for i, p := range pts {
		verts[i] = Vertex{Point: p}
	}
	return &Curve{Kind: CurvePolyline3d, Vertices: verts, Closed: closed, Normal: geom.ZAxis}
}

// StartPoint returns the first point of the curve.
func (c *Curve) StartPoint() (geom.Point3, error) {
	if c.Kind.IsPolyline() {
		if len(c.Vertices) == 0 {
			return geom.Point3{}, fmt.Errorf("kernel: %s has no vertices", c.Kind)
		}
		return c.Vertices[0].Point, nil
	}
	if c.Primitive == nil {
		return geom.Point3{}, fmt.Errorf("kernel: %s has no primitive", c.Kind)
	}
	return c.Primitive.StartPoint(), nil
}
