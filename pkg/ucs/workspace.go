package ucs

import (
	"math"
	"sync"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ Host = (*Workspace)(nil)

// Viewport places the current view on paper: a paper space point p maps
// to the display point (p - Origin) / Scale.
type Viewport struct {
	Origin geom.Vector3
	Scale  float64
}

// Workspace is an in-memory Host holding the current UCS, the current
// view and its paper space viewport. It is safe for concurrent use.
type Workspace struct {
	mu    sync.RWMutex
	ucs   geom.Frame
	view  geom.Frame
	paper sdf.M44 // paper space -> display coordinates
	tile  bool
}

// NewWorkspace returns a workspace with every frame equal to the world,
// a unit viewport and tile mode on.
func NewWorkspace() *Workspace {
	w := &Workspace{ucs: geom.WorldFrame, view: geom.WorldFrame, tile: true}
	w.setViewport(Viewport{Scale: 1})
	return w
}

// SetUCS makes f the current user coordinate system.
func (w *Workspace) SetUCS(f geom.Frame) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ucs = f
}

// UCS returns the current user coordinate system.
func (w *Workspace) UCS() geom.Frame {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ucs
}

// SetView sets the display frame from a view target, a direction pointing
// from the target towards the viewer, and a twist angle in radians about
// that direction.
func (w *Workspace) SetView(target geom.Point3, direction geom.Vector3, twist float64) {
	f := geom.NewFrame(target, direction)
	s, c := math.Sincos(twist)
	x := f.X.Scale(c).Add(f.Y.Scale(s))
	y := f.Y.Scale(c).Sub(f.X.Scale(s))
	f.X, f.Y = x, y

	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = f
}

// SetViewport places the view on paper. A non-positive scale is treated
// as 1.
func (w *Workspace) SetViewport(vp Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setViewport(vp)
}

func (w *Workspace) setViewport(vp Viewport) {
	if vp.Scale <= 0 {
		vp.Scale = 1
	}
	inv := 1 / vp.Scale
	o := vp.Origin
	w.paper = sdf.Scale3d(v3.Vec{X: inv, Y: inv, Z: inv}).Mul(sdf.Translate3d(v3.Vec{X: -o.X, Y: -o.Y, Z: -o.Z}))
}

// SetTileMode switches between a single viewport (true) and paper space
// layouts (false).
func (w *Workspace) SetTileMode(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tile = on
}

// TileMode implements Host.
func (w *Workspace) TileMode() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tile
}

// placement maps coordinates of one frame to and from world space.
type placement struct {
	frame geom.Frame
	paper *sdf.M44 // applied before frame when set
}

func (p placement) toWorld(c geom.Point3) geom.Point3 {
	if p.paper != nil {
		c = geom.Point3(p.paper.MulPosition(v3.Vec(c)))
	}
	return p.frame.ToWorld(c)
}

func (p placement) fromWorld(c geom.Point3) geom.Point3 {
	c = p.frame.ToLocal(c)
	if p.paper != nil {
		inv := p.paper.Inverse()
		c = geom.Point3(inv.MulPosition(v3.Vec(c)))
	}
	return c
}

// placementOf resolves a frame descriptor. It reports false for anything
// the workspace cannot place.
func (w *Workspace) placementOf(f Frame) (placement, bool) {
	switch f.Kind {
	case FrameNamed:
		switch f.Code {
		case WCS:
			return placement{frame: geom.WorldFrame}, true
		case UCS:
			return placement{frame: w.ucs}, true
		case DCS:
			return placement{frame: w.view}, true
		case PSDCS:
			m := w.paper
			return placement{frame: w.view, paper: &m}, true
		}
	case FrameEntity:
		if f.Entity == nil || f.Entity.Normal.IsZero(0) {
			return placement{}, false
		}
		n := f.Entity.Normal.Normalize()
		return placement{frame: geom.NewFrame(geom.Origin.Add(n.Scale(f.Entity.Elevation)), n)}, true
	case FrameDirection:
		if f.Direction.IsZero(0) {
			return placement{}, false
		}
		return placement{frame: geom.OCS(f.Direction)}, true
	}
	return placement{}, false
}

// RawTransform implements Host. Displacements are transformed as the
// difference of the images of the vector and of the zero point.
func (w *Workspace) RawTransform(coords [3]float64, from, to Frame, displacement bool) (Status, [3]float64) {
	w.mu.RLock()
	src, ok1 := w.placementOf(from)
	dst, ok2 := w.placementOf(to)
	w.mu.RUnlock()
	if !ok1 || !ok2 {
		return StatusError, [3]float64{}
	}

	apply := func(p geom.Point3) geom.Point3 { return dst.fromWorld(src.toWorld(p)) }
	out := apply(geom.PointFromArray(coords))
	if displacement {
		out = geom.Origin.Add(out.Sub(apply(geom.Origin)))
	}
	return StatusNormal, out.Array()
}
