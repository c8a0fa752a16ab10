package kernel

import (
	"math"

	"github.com/chazu/planproj/pkg/geom"
)

// PrimitiveKind distinguishes between primitive curve pieces.
type PrimitiveKind int

const (
	PrimLine    PrimitiveKind = iota // straight segment
	PrimArc                          // circular arc, counter-clockwise about Normal
	PrimCircle                       // full circle
	PrimEllipse                      // ellipse or elliptical arc in conjugate-axis form
	PrimSpline                       // spline given by control points
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimLine:
		return "line"
	case PrimArc:
		return "arc"
	case PrimCircle:
		return "circle"
	case PrimEllipse:
		return "ellipse"
	case PrimSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// Primitive is one piece of an exploded curve. Which fields are meaningful
// depends on Kind:
//
//   - PrimLine: Start, End.
//   - PrimArc: Start, End, Center, Radius, Normal. The arc runs
//     counter-clockwise about Normal from Start to End.
//   - PrimCircle: Center, Radius, Normal; Start == End.
//   - PrimEllipse: Center, U, V, StartParam, EndParam. Points are
//     Center + cos(t)·U + sin(t)·V for t in [StartParam, EndParam]; U and V
//     need not be perpendicular, which keeps the form closed under
//     parallel projection.
//   - PrimSpline: Controls; Start and End are the first and last controls.
type Primitive struct {
	Kind       PrimitiveKind `json:"kind"`
	Start      geom.Point3   `json:"start"`
	End        geom.Point3   `json:"end"`
	Center     geom.Point3   `json:"center"`
	Radius     float64       `json:"radius,omitempty"`
	Normal     geom.Vector3  `json:"normal"`
	U          geom.Vector3  `json:"u"`
	V          geom.Vector3  `json:"v"`
	StartParam float64       `json:"start_param,omitempty"`
	EndParam   float64       `json:"end_param,omitempty"`
	Controls   []geom.Point3 `json:"controls,omitempty"`
}

// NewLine returns a line primitive.
func NewLine(start, end geom.Point3) *Primitive {
	return &Primitive{Kind: PrimLine, Start: start, End: end}
}

// NewArc returns an arc running counter-clockwise about normal from start
// to end around center. The radius is taken from start.
func NewArc(center geom.Point3, normal geom.Vector3, start, end geom.Point3) *Primitive {
	return &Primitive{
		Kind:   PrimArc,
		Start:  start,
		End:    end,
		Center: center,
		Radius: start.DistanceTo(center),
		Normal: normal.Normalize(),
	}
}

// NewCircle returns a full circle. Its start point lies on the OCS X axis
// of normal.
func NewCircle(center geom.Point3, normal geom.Vector3, radius float64) *Primitive {
	n := normal.Normalize()
	s := center.Add(geom.OCS(n).X.Scale(radius))
	return &Primitive{Kind: PrimCircle, Start: s, End: s, Center: center, Radius: radius, Normal: n}
}

// NewEllipse returns an ellipse or elliptical arc in conjugate-axis form.
func NewEllipse(center geom.Point3, u, v geom.Vector3, startParam, endParam float64) *Primitive {
	e := &Primitive{
		Kind:       PrimEllipse,
		Center:     center,
		U:          u,
		V:          v,
		StartParam: startParam,
		EndParam:   endParam,
		Normal:     u.Cross(v).Normalize(),
	}
	e.Start = e.PointAt(startParam)
	e.End = e.PointAt(endParam)
	return e
}

// NewSpline returns a spline through the given control points.
func NewSpline(controls ...geom.Point3) *Primitive {
	s := &Primitive{Kind: PrimSpline, Controls: controls}
	if len(controls) > 0 {
		s.Start = controls[0]
		s.End = controls[len(controls)-1]
	}
	return s
}

// StartPoint returns the first point of the primitive.
func (p *Primitive) StartPoint() geom.Point3 { return p.Start }

// EndPoint returns the last point of the primitive.
func (p *Primitive) EndPoint() geom.Point3 { return p.End }

// PointAt evaluates an ellipse primitive at parameter t.
func (p *Primitive) PointAt(t float64) geom.Point3 {
	s, c := math.Sincos(t)
	return p.Center.Add(p.U.Scale(c)).Add(p.V.Scale(s))
}

// Sweep returns the counter-clockwise angle of an arc about its normal,
// in [0, 2π). Circles report 2π.
func (p *Primitive) Sweep() float64 {
	switch p.Kind {
	case PrimCircle:
		return 2 * math.Pi
	case PrimArc:
		return p.Start.Sub(p.Center).AngleTo(p.End.Sub(p.Center), p.Normal)
	case PrimEllipse:
		return p.EndParam - p.StartParam
	}
	return 0
}

// IsClosed reports whether the primitive is a full ring: a circle, or an
// ellipse spanning a whole turn.
func (p *Primitive) IsClosed() bool {
	switch p.Kind {
	case PrimCircle:
		return true
	case PrimEllipse:
		return math.Abs(p.EndParam-p.StartParam) >= 2*math.Pi-1e-12
	}
	return false
}

// Clone returns a deep copy.
func (p *Primitive) Clone() *Primitive {
	c := *p
	if p.Controls != nil {
		c.Controls = append([]geom.Point3(nil), p.Controls...)
	}
	return &c
}
