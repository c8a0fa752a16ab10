package kernel

import "github.com/chazu/planproj/pkg/geom"

// Chain is a maximal run of segments joined end to end. Closed is set
// when the last segment ends where the first one starts.
type Chain struct {
	Segments []Segment `json:"segments"`
	Closed   bool      `json:"closed"`
}

// ToPolyline converts the chain to a polyline in the world XY plane. The
// caller sets Normal and Elevation to place it.
func (c Chain) ToPolyline() *Polyline {
	pl := &Polyline{
		Vertices: make([]PolyVertex, 0, len(c.Segments)+1),
		Closed:   c.Closed,
		Normal:   geom.ZAxis,
	}
	for _, s := range c.Segments {
		pl.Vertices = append(pl.Vertices, PolyVertex{Point: s.Start, Bulge: s.Bulge})
	}
	if !c.Closed && len(c.Segments) > 0 {
		pl.Vertices = append(pl.Vertices, PolyVertex{Point: c.Segments[len(c.Segments)-1].End})
	}
	return pl
}

// PolyVertex is a polyline vertex in plane-local coordinates. Bulge
// describes the segment that starts here.
type PolyVertex struct {
	Point geom.Point2 `json:"point"`
	Bulge float64     `json:"bulge"`
}

// Polyline is a planar chain of line and arc segments. Vertex coordinates
// are local to the OCS of Normal, at height Elevation along it.
type Polyline struct {
	Vertices  []PolyVertex `json:"vertices"`
	Closed    bool         `json:"closed"`
	Normal    geom.Vector3 `json:"normal"`
	Elevation float64      `json:"elevation"`
}

// NumVertices returns the number of vertices.
func (p *Polyline) NumVertices() int {
	return len(p.Vertices)
}

// NumSegments returns the number of segments.
func (p *Polyline) NumSegments() int {
	n := len(p.Vertices)
	if n < 2 {
		return 0
	}
	if p.Closed {
		return n
	}
	return n - 1
}

// IsEmpty returns true if the polyline has no vertices.
func (p *Polyline) IsEmpty() bool {
	return len(p.Vertices) == 0
}

// Point2At returns the local coordinates of vertex i.
func (p *Polyline) Point2At(i int) geom.Point2 {
	return p.Vertices[i].Point
}

// Point3At returns vertex i in world coordinates.
func (p *Polyline) Point3At(i int) geom.Point3 {
	return geom.OCS(p.Normal).ToWorld(p.Vertices[i].Point.Lift(p.Elevation))
}

// StartPoint returns the first vertex in world coordinates.
func (p *Polyline) StartPoint() geom.Point3 {
	return p.Point3At(0)
}

// EndPoint returns the last point in world coordinates: the start point
// for closed polylines.
func (p *Polyline) EndPoint() geom.Point3 {
	if p.Closed {
		return p.Point3At(0)
	}
	return p.Point3At(len(p.Vertices) - 1)
}

// Segments returns the segments of the polyline in order.
func (p *Polyline) Segments() []Segment {
	n := p.NumSegments()
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % len(p.Vertices)
		segs = append(segs, Segment{
			Start: p.Vertices[i].Point,
			End:   p.Vertices[j].Point,
			Bulge: p.Vertices[i].Bulge,
		})
	}
	return segs
}

// Length returns the total length of all segments.
func (p *Polyline) Length() float64 {
	var total float64
	for _, s := range p.Segments() {
		total += s.Length()
	}
	return total
}

// Plane returns the plane the polyline lies in.
func (p *Polyline) Plane() geom.Plane {
	n := p.Normal.Normalize()
	return geom.Plane{Origin: geom.Origin.Add(n.Scale(p.Elevation)), Normal: n}
}
