// Package native implements the kernel.Kernel interface in pure Go on top
// of the geom package, with ellipse flattening from honnef.co/go/curve.
package native

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
	"honnef.co/go/curve"
)

// Compile-time interface check.
var _ kernel.Kernel = (*NativeKernel)(nil)

// DefaultFlattenTolerance is the maximum distance between an ellipse and
// the chords that replace it.
const DefaultFlattenTolerance = 1e-3

// degenerateLength is the length below which a polyline segment is
// treated as a repeated vertex and skipped.
const degenerateLength = 1e-12

var (
	// ErrParallelDirection is returned when the projection direction is
	// zero or lies in the target plane.
	ErrParallelDirection = errors.New("native: projection direction is parallel to the plane")

	// ErrUnsupportedPrimitive is returned for primitives an operation
	// cannot handle.
	ErrUnsupportedPrimitive = errors.New("native: unsupported primitive")
)

// NativeKernel implements kernel.Kernel. Primitive handles are plain Go
// values, so the kernel itself keeps no state.
type NativeKernel struct {
	flattenTol float64
}

// Option configures a NativeKernel.
type Option func(*NativeKernel)

// WithFlattenTolerance sets the chord tolerance used when an ellipse is
// converted to segments. Non-positive values are ignored.
func WithFlattenTolerance(tol float64) Option {
	return func(k *NativeKernel) {
		if tol > 0 {
			k.flattenTol = tol
		}
	}
}

// New returns a new NativeKernel.
func New(opts ...Option) *NativeKernel {
	k := &NativeKernel{flattenTol: DefaultFlattenTolerance}
	for _, o := range opts {
		o(k)
	}
	return k
}

// FlattenTolerance returns the configured chord tolerance.
func (k *NativeKernel) FlattenTolerance() float64 {
	return k.flattenTol
}

// --- Explode ---

// Explode decomposes a curve into primitives. Polyline segments with a
// non-zero bulge become arcs about the curve normal; 3D polylines only
// produce lines. Single-primitive curves yield a copy of their primitive.
func (k *NativeKernel) Explode(c *kernel.Curve) ([]*kernel.Primitive, error) {
	if c == nil {
		return nil, fmt.Errorf("native: explode: nil curve")
	}
	if !c.Kind.IsPolyline() {
		if c.Primitive == nil {
			return nil, fmt.Errorf("native: explode %s: no primitive", c.Kind)
		}
		return []*kernel.Primitive{c.Primitive.Clone()}, nil
	}

	n := len(c.Vertices)
	if n < 2 {
		return nil, fmt.Errorf("native: explode %s: need at least 2 vertices, got %d", c.Kind, n)
	}
	count := n - 1
	if c.Closed {
		count = n
	}

	prims := make([]*kernel.Primitive, 0, count)
	for i := 0; i < count; i++ {
		v0 := c.Vertices[i]
		p1 := c.Vertices[(i+1)%n].Point
		if v0.Point.DistanceTo(p1) <= degenerateLength {
			continue
		}
		if c.Kind == kernel.CurvePolyline3d || v0.Bulge == 0 {
			prims = append(prims, kernel.NewLine(v0.Point, p1))
			continue
		}
		arc, err := bulgeArc(v0.Point, p1, v0.Bulge, c.Normal)
		if err != nil {
			return nil, fmt.Errorf("native: explode %s segment %d: %w", c.Kind, i, err)
		}
		prims = append(prims, arc)
	}
	return prims, nil
}

// bulgeArc builds the arc from p0 to p1 with the given bulge about normal.
// A negative bulge runs clockwise about normal, which is stored as a
// counter-clockwise arc about the negated normal.
func bulgeArc(p0, p1 geom.Point3, bulge float64, normal geom.Vector3) (*kernel.Primitive, error) {
	n := normal.Normalize()
	if n.IsZero(0) {
		return nil, errors.New("bulged segment needs a normal")
	}
	theta := 4 * math.Atan(bulge)
	if theta < 0 {
		n = n.Neg()
		theta = -theta
	}
	chord := p1.Sub(p0)
	l := chord.Length()
	mid := p0.Add(chord.Scale(0.5))
	left := n.Cross(chord.Scale(1 / l))
	center := mid.Add(left.Scale(l / (2 * math.Tan(theta/2))))
	return kernel.NewArc(center, n, p0, p1), nil
}

// --- Projection ---

// ProjectPrimitive maps p onto plane along dir. Lines and splines map
// point by point. Arcs and circles in planes parallel to the target stay
// circular; their normal becomes ±plane.Normal so that the image still
// runs counter-clockwise about it. Tilted arcs and circles become
// elliptical arcs.
func (k *NativeKernel) ProjectPrimitive(p *kernel.Primitive, plane geom.Plane, dir geom.Vector3) (*kernel.Primitive, error) {
	if p == nil {
		return nil, fmt.Errorf("native: project: nil primitive")
	}
	pr := projector{plane: plane, dir: dir}
	if _, ok := plane.Project(geom.Origin, dir); !ok {
		return nil, fmt.Errorf("native: project %s along %v: %w", p.Kind, dir, ErrParallelDirection)
	}

	switch p.Kind {
	case kernel.PrimLine:
		return kernel.NewLine(pr.point(p.Start), pr.point(p.End)), nil

	case kernel.PrimSpline:
		ctrl := make([]geom.Point3, len(p.Controls))
		for i, c := range p.Controls {
			ctrl[i] = pr.point(c)
		}
		return kernel.NewSpline(ctrl...), nil

	case kernel.PrimArc, kernel.PrimCircle:
		n := plane.Normal.Normalize()
		if p.Normal.IsParallelTo(n, geom.DefaultTolerance) {
			normal := n
			if p.Normal.Dot(dir)*n.Dot(dir) < 0 {
				normal = n.Neg()
			}
			out := &kernel.Primitive{
				Kind:   p.Kind,
				Start:  pr.point(p.Start),
				End:    pr.point(p.End),
				Center: pr.point(p.Center),
				Radius: p.Radius,
				Normal: normal,
			}
			return out, nil
		}
		u := p.Start.Sub(p.Center)
		v := p.Normal.Cross(u)
		return kernel.NewEllipse(pr.point(p.Center), pr.vector(u), pr.vector(v), 0, p.Sweep()), nil

	case kernel.PrimEllipse:
		return kernel.NewEllipse(pr.point(p.Center), pr.vector(p.U), pr.vector(p.V), p.StartParam, p.EndParam), nil
	}
	return nil, fmt.Errorf("native: project %s: %w", p.Kind, ErrUnsupportedPrimitive)
}

// projector applies one oblique projection. The direction has already
// been checked, so the ok results are ignored.
type projector struct {
	plane geom.Plane
	dir   geom.Vector3
}

func (pr projector) point(p geom.Point3) geom.Point3 {
	q, _ := pr.plane.Project(p, pr.dir)
	return q
}

func (pr projector) vector(v geom.Vector3) geom.Vector3 {
	w, _ := pr.plane.ProjectVector(v, pr.dir)
	return w
}

// --- Segments ---

// Segments converts a primitive lying in the XY plane of frame into
// segments in frame coordinates. A circle becomes two half circles with
// bulge ±1, starting at its start point. Ellipses are flattened into
// straight chords within the kernel's flatten tolerance. Lines and arcs
// give a single segment.
func (k *NativeKernel) Segments(p *kernel.Primitive, frame geom.Frame) ([]kernel.Segment, error) {
	if p == nil {
		return nil, fmt.Errorf("native: segments: nil primitive")
	}
	local := func(q geom.Point3) geom.Point2 { return frame.ToLocal(q).Drop() }

	switch p.Kind {
	case kernel.PrimLine:
		return []kernel.Segment{{Start: local(p.Start), End: local(p.End)}}, nil

	case kernel.PrimArc:
		sweep := p.Sweep()
		if p.Normal.Dot(frame.Z) < 0 {
			sweep = -sweep
		}
		return []kernel.Segment{{Start: local(p.Start), End: local(p.End), Bulge: kernel.BulgeFromSweep(sweep)}}, nil

	case kernel.PrimCircle:
		if p.Radius <= 0 {
			return nil, fmt.Errorf("native: segments: circle radius %g", p.Radius)
		}
		s := local(p.Start)
		c := local(p.Center)
		opp := geom.Point2{X: 2*c.X - s.X, Y: 2*c.Y - s.Y}
		bulge := 1.0
		if p.Normal.Dot(frame.Z) < 0 {
			bulge = -1
		}
		return []kernel.Segment{
			{Start: s, End: opp, Bulge: bulge},
			{Start: opp, End: s, Bulge: bulge},
		}, nil

	case kernel.PrimEllipse:
		return k.ellipseSegments(p, frame), nil
	}
	return nil, fmt.Errorf("native: segments %s: %w", p.Kind, ErrUnsupportedPrimitive)
}

// ellipseSegments flattens an ellipse through honnef.co/go/curve: the
// parameter span is a unit-circle arc, mapped onto the ellipse by the
// affine transform whose columns are the local U and V axes.
func (k *NativeKernel) ellipseSegments(p *kernel.Primitive, frame geom.Frame) []kernel.Segment {
	c := frame.ToLocal(p.Center)
	u := frame.VecToLocal(p.U)
	v := frame.VecToLocal(p.V)
	aff := curve.NewAffine([6]float64{u.X, u.Y, v.X, v.Y, c.X, c.Y})

	// Error in the unit circle grows by at most |u|+|v| under aff.
	scale := math.Hypot(u.X, u.Y) + math.Hypot(v.X, v.Y)
	if scale == 0 {
		return nil
	}
	arc := curve.Arc{
		Center:     curve.Pt(0, 0),
		Radii:      curve.Vec(1, 1),
		StartAngle: p.StartParam,
		SweepAngle: p.EndParam - p.StartParam,
	}
	path := curve.Transform(arc.PathElements(k.flattenTol/scale), aff)

	var segs []kernel.Segment
	var cur curve.Point
	for el := range curve.Flatten(path, k.flattenTol) {
		switch el.Kind {
		case curve.MoveToKind:
			cur = el.P0
		case curve.LineToKind:
			segs = append(segs, kernel.Segment{
				Start: geom.Point2{X: cur.X, Y: cur.Y},
				End:   geom.Point2{X: el.P0.X, Y: el.P0.Y},
			})
			cur = el.P0
		}
	}
	if len(segs) == 0 {
		return nil
	}
	// Pin the ends to the exact primitive ends so joining sees them.
	segs[0].Start = frame.ToLocal(p.Start).Drop()
	segs[len(segs)-1].End = frame.ToLocal(p.End).Drop()
	return segs
}

// --- Joining ---

// JoinSegments greedily chains segments: starting from the first unused
// segment it extends forward from the chain end, then backward from the
// chain start, reversing segments as needed. Degenerate segments are
// dropped and bulges within tol.Vector of zero are snapped to zero.
func (k *NativeKernel) JoinSegments(segs []kernel.Segment, tol geom.Tolerance) ([]kernel.Chain, error) {
	pool := make([]kernel.Segment, 0, len(segs))
	for _, s := range segs {
		if s.Start.IsEqualTo(s.End, tol) {
			continue
		}
		if math.Abs(s.Bulge) <= tol.Vector {
			s.Bulge = 0
		}
		pool = append(pool, s)
	}

	used := make([]bool, len(pool))
	var chains []kernel.Chain
	for i := range pool {
		if used[i] {
			continue
		}
		used[i] = true
		chain := []kernel.Segment{pool[i]}
		closed := func() bool {
			return len(chain) > 1 && chain[len(chain)-1].End.IsEqualTo(chain[0].Start, tol)
		}

		for !closed() {
			end := chain[len(chain)-1].End
			next, ok := takeAdjacent(pool, used, end, tol, true)
			if !ok {
				break
			}
			chain = append(chain, next)
		}
		for !closed() {
			start := chain[0].Start
			prev, ok := takeAdjacent(pool, used, start, tol, false)
			if !ok {
				break
			}
			chain = append([]kernel.Segment{prev}, chain...)
		}
		chains = append(chains, kernel.Chain{Segments: chain, Closed: closed()})
	}
	return chains, nil
}

// takeAdjacent finds the first unused segment touching at, marks it used
// and returns it oriented to continue the chain: starting at at when
// forward, ending at at otherwise.
func takeAdjacent(pool []kernel.Segment, used []bool, at geom.Point2, tol geom.Tolerance, forward bool) (kernel.Segment, bool) {
	for j, s := range pool {
		if used[j] {
			continue
		}
		head, tail := s.Start, s.End
		if !forward {
			head, tail = s.End, s.Start
		}
		switch {
		case head.IsEqualTo(at, tol):
			used[j] = true
			return s, true
		case tail.IsEqualTo(at, tol):
			used[j] = true
			return s.Reverse(), true
		}
	}
	return kernel.Segment{}, false
}

// --- Release ---

// Release clears the handle so later use of it is visible as a zero
// primitive.
func (k *NativeKernel) Release(p *kernel.Primitive) {
	if p != nil {
		*p = kernel.Primitive{}
	}
}
