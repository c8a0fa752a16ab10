package kernel

import (
	"math"

	"github.com/chazu/planproj/pkg/geom"
)

// Segment is one polyline segment in plane-local coordinates. Bulge is the
// tangent of a quarter of the signed sweep angle: positive bulges run
// counter-clockwise from Start to End, zero is a straight segment.
type Segment struct {
	Start geom.Point2 `json:"start"`
	End   geom.Point2 `json:"end"`
	Bulge float64     `json:"bulge"`
}

// BulgeFromSweep returns the bulge of an arc with the given signed sweep.
func BulgeFromSweep(sweep float64) float64 {
	return math.Tan(sweep / 4)
}

// IsArc reports whether the segment is curved.
func (s Segment) IsArc() bool {
	return s.Bulge != 0
}

// Reverse returns the same segment traversed End to Start.
func (s Segment) Reverse() Segment {
	return Segment{Start: s.End, End: s.Start, Bulge: -s.Bulge}
}

// Sweep returns the signed sweep angle, 4·atan(bulge).
func (s Segment) Sweep() float64 {
	return 4 * math.Atan(s.Bulge)
}

// Chord returns the straight distance between the ends.
func (s Segment) Chord() float64 {
	return s.Start.DistanceTo(s.End)
}

// Radius returns the arc radius, or +Inf for a straight segment.
func (s Segment) Radius() float64 {
	if !s.IsArc() {
		return math.Inf(1)
	}
	return s.Chord() / (2 * math.Abs(math.Sin(s.Sweep()/2)))
}

// Center returns the arc center. It is undefined for straight segments.
func (s Segment) Center() geom.Point2 {
	theta := s.Sweep()
	mx, my := (s.Start.X+s.End.X)/2, (s.Start.Y+s.End.Y)/2
	dx, dy := s.End.X-s.Start.X, s.End.Y-s.Start.Y
	c := math.Hypot(dx, dy)
	if c == 0 || !s.IsArc() {
		return geom.Point2{X: mx, Y: my}
	}
	// Distance from the chord midpoint to the center, along the left normal
	// of the chord; negative puts the center on the right.
	h := c / (2 * math.Tan(theta/2))
	return geom.Point2{X: mx - dy/c*h, Y: my + dx/c*h}
}

// Length returns the arc length of the segment.
func (s Segment) Length() float64 {
	if !s.IsArc() {
		return s.Chord()
	}
	return s.Radius() * math.Abs(s.Sweep())
}
