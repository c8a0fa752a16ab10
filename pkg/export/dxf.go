// Package export writes projected polylines to DXF drawings. Geometry is
// written in each polyline's plane-local coordinates; bulged segments are
// replaced by chords.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
	"github.com/chazu/planproj/pkg/logging"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"honnef.co/go/curve"
)

// ErrNothingToWrite is returned when no polyline has a segment.
var ErrNothingToWrite = errors.New("export: nothing to write")

// Line is a straight piece of flattened geometry.
type Line struct {
	P0, P1 geom.Point2
}

// Lines flattens pl into straight lines. Arcs are approximated by chords
// that stay within tol of the true arc.
func Lines(pl *kernel.Polyline, tol float64) []Line {
	var out []Line
	for _, s := range pl.Segments() {
		if !s.IsArc() {
			out = append(out, Line{P0: s.Start, P1: s.End})
			continue
		}
		out = append(out, arcLines(s, tol)...)
	}
	return out
}

func arcLines(s kernel.Segment, tol float64) []Line {
	c := s.Center()
	arc := curve.Arc{
		Center:     curve.Pt(c.X, c.Y),
		Radii:      curve.Vec(s.Radius(), s.Radius()),
		StartAngle: math.Atan2(s.Start.Y-c.Y, s.Start.X-c.X),
		SweepAngle: s.Sweep(),
	}

	var out []Line
	var cur curve.Point
	for el := range curve.Flatten(arc.PathElements(tol), tol) {
		switch el.Kind {
		case curve.MoveToKind:
			cur = el.P0
		case curve.LineToKind:
			out = append(out, Line{
				P0: geom.Point2{X: cur.X, Y: cur.Y},
				P1: geom.Point2{X: el.P0.X, Y: el.P0.Y},
			})
			cur = el.P0
		}
	}
	if len(out) == 0 {
		return []Line{{P0: s.Start, P1: s.End}}
	}
	out[0].P0 = s.Start
	out[len(out)-1].P1 = s.End
	return out
}

// sdfLines converts the flattened polylines to sdfx 2D line segments.
func sdfLines(tol float64, pls ...*kernel.Polyline) []*sdf.Line2 {
	var out []*sdf.Line2
	for _, pl := range pls {
		for _, l := range Lines(pl, tol) {
			out = append(out, &sdf.Line2{
				v2.Vec{X: l.P0.X, Y: l.P0.Y},
				v2.Vec{X: l.P1.X, Y: l.P1.Y},
			})
		}
	}
	return out
}

// WriteDXF writes the flattened polylines to a DXF file at path.
func WriteDXF(path string, tol float64, pls ...*kernel.Polyline) error {
	lines := sdfLines(tol, pls...)
	n := len(lines)
	if n == 0 {
		return ErrNothingToWrite
	}
	d := render.NewDXF(path)
	for _, l := range lines {
		d.Line(l)
	}
	if err := d.Save(); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	logging.Logger().Debug("export: wrote dxf", "path", path, "polylines", len(pls), "lines", n)
	return nil
}
