// Package project maps curves onto planes. A curve is exploded into
// primitives by a geometry kernel, each primitive is projected along a
// direction, and the images are re-joined into a single polyline whose
// plane orientation matches the curve.
package project

import (
	"errors"
	"fmt"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
	"github.com/chazu/planproj/pkg/logging"
)

// ErrNullArgument is returned when the curve or plane is missing.
var ErrNullArgument = errors.New("project: curve and plane are required")

// Projector projects curves with a geometry kernel. It holds no mutable
// state; it is safe for concurrent use when its kernel is.
type Projector struct {
	k   kernel.Kernel
	tol geom.Tolerance
}

// Option configures a Projector.
type Option func(*Projector)

// WithTolerance sets the tolerance used to join projected segments and to
// compare the result's start point. The default is geom.JoinTolerance.
func WithTolerance(tol geom.Tolerance) Option {
	return func(p *Projector) { p.tol = tol }
}

// New returns a Projector backed by k.
func New(k kernel.Kernel, opts ...Option) *Projector {
	p := &Projector{k: k, tol: geom.JoinTolerance}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tolerance returns the join tolerance.
func (p *Projector) Tolerance() geom.Tolerance {
	return p.tol
}

// Project returns the image of c on plane along dir as one polyline.
//
// Only polyline kinds are projected; any other kind yields (nil, nil).
// When the kernel joins the projected pieces into several disconnected
// chains, only the first is returned. Kernel failures are wrapped and
// returned as is. Every primitive obtained from the kernel is released
// before Project returns.
func (p *Projector) Project(c *kernel.Curve, plane *geom.Plane, dir geom.Vector3) (*kernel.Polyline, error) {
	if c == nil || plane == nil {
		return nil, ErrNullArgument
	}
	log := logging.Logger()
	if !c.Kind.IsPolyline() {
		log.Debug("project: unsupported curve kind", "kind", c.Kind)
		return nil, nil
	}
	start, err := c.StartPoint()
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	scope := kernel.NewScope(p.k)
	defer scope.Release()

	prims, err := p.k.Explode(c)
	scope.Hold(prims...)
	if err != nil {
		return nil, fmt.Errorf("project: explode %s: %w", c.Kind, err)
	}

	frame := encodingFrame(*plane, dir)
	segs := make([]kernel.Segment, 0, len(prims))
	for i, prim := range prims {
		img, err := p.k.ProjectPrimitive(prim, *plane, dir)
		scope.Hold(img)
		if err != nil {
			return nil, fmt.Errorf("project: primitive %d (%s): %w", i, prim.Kind, err)
		}
		switch img.Kind {
		case kernel.PrimCircle, kernel.PrimEllipse:
			ring, err := p.k.Segments(img, frame)
			if err != nil {
				return nil, fmt.Errorf("project: primitive %d (%s) to segments: %w", i, img.Kind, err)
			}
			segs = append(segs, ring...)
		default:
			segs = append(segs, encode(img, frame))
		}
	}

	chains, err := p.k.JoinSegments(segs, p.tol)
	if err != nil {
		return nil, fmt.Errorf("project: join %d segments: %w", len(segs), err)
	}
	if len(chains) == 0 {
		log.Debug("project: nothing to join", "kind", c.Kind, "primitives", len(prims))
		return nil, nil
	}
	if len(chains) > 1 {
		log.Debug("project: discarding disconnected chains", "chains", len(chains))
	}

	pl := chains[0].ToPolyline()
	orient(pl, *plane)

	ref, ok := plane.Project(start, dir)
	flip := !ok || !ref.IsEqualTo(pl.StartPoint(), p.tol)
	if !flip && pl.Normal.Dot(frame.Z) < 0 {
		// The reference point lies on the OCS Y axis, where both
		// orientations agree; trust the frame the segments were encoded in.
		flip = true
	}
	if flip {
		log.Debug("project: flipping result normal", "normal", pl.Normal)
		orient(pl, plane.Flip())
	}

	log.Debug("project: done",
		"kind", c.Kind,
		"primitives", len(prims),
		"segments", len(segs),
		"vertices", pl.NumVertices(),
		"closed", pl.Closed,
	)
	return pl, nil
}

// encodingFrame is the OCS of the plane normal turned to face along dir,
// anchored at the world origin. Local Z in it is the elevation.
func encodingFrame(plane geom.Plane, dir geom.Vector3) geom.Frame {
	n := plane.Normal.Normalize()
	if n.Dot(dir) < 0 {
		n = n.Neg()
	}
	return geom.OCS(n)
}

// orient places pl in plane: normal from the plane, elevation from the
// plane origin in the OCS of that normal.
func orient(pl *kernel.Polyline, plane geom.Plane) {
	pl.Normal = plane.Normal.Normalize()
	pl.Elevation = plane.Elevation()
}

// encode converts a projected line, arc or spline into one segment. Arc
// bulges use the sweep about the arc's own normal, negated when that
// normal faces away from the frame.
func encode(p *kernel.Primitive, frame geom.Frame) kernel.Segment {
	s := kernel.Segment{
		Start: frame.ToLocal(p.StartPoint()).Drop(),
		End:   frame.ToLocal(p.EndPoint()).Drop(),
	}
	if p.Kind == kernel.PrimArc {
		theta := p.Sweep()
		if p.Normal.Dot(frame.Z) < 0 {
			theta = -theta
		}
		s.Bulge = kernel.BulgeFromSweep(theta)
	}
	return s
}
