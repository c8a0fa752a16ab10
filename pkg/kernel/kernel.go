// Package kernel defines the abstract curve kernel interface.
// Implementations (native) provide decomposition, projection and joining of
// curve primitives behind this interface. The kernel abstraction lets the
// projector run against a real backend or a deterministic fake.
package kernel

import "github.com/chazu/planproj/pkg/geom"

// Kernel is the abstract curve kernel interface.
//
// Primitive handles returned by Explode and ProjectPrimitive belong to the
// caller until they are passed to Release. Callers normally hold them in
// a Scope so they are released on every exit path.
type Kernel interface {
	// Explode decomposes a curve into its primitive pieces, in curve order.
	Explode(c *Curve) ([]*Primitive, error)

	// ProjectPrimitive maps a primitive onto plane along dir. The result
	// lies in the plane.
	ProjectPrimitive(p *Primitive, plane geom.Plane, dir geom.Vector3) (*Primitive, error)

	// Segments converts a circle or ellipse primitive lying in the XY plane
	// of frame into polyline segments expressed in that frame.
	Segments(p *Primitive, frame geom.Frame) ([]Segment, error)

	// JoinSegments merges segments whose shared ends coincide within tol
	// into maximal chains.
	JoinSegments(segs []Segment, tol geom.Tolerance) ([]Chain, error)

	// Release frees a primitive handle. Releasing nil is a no-op.
	Release(p *Primitive)
}
