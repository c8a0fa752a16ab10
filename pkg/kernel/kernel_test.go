package kernel

import (
	"math"
	"testing"

	"github.com/chazu/planproj/pkg/geom"
)

func pt(x, y float64) geom.Point2 { return geom.Point2{X: x, Y: y} }

// --- Polyline helper method tests ---

func TestPolylineNumSegments(t *testing.T) {
	tests := []struct {
		name   string
		verts  []PolyVertex
		closed bool
		want   int
	}{
		{"empty", nil, false, 0},
		{"one vertex", []PolyVertex{{Point: pt(0, 0)}}, false, 0},
		{"open triangle", []PolyVertex{{Point: pt(0, 0)}, {Point: pt(1, 0)}, {Point: pt(0, 1)}}, false, 2},
		{"closed triangle", []PolyVertex{{Point: pt(0, 0)}, {Point: pt(1, 0)}, {Point: pt(0, 1)}}, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Polyline{Vertices: tt.verts, Closed: tt.closed, Normal: geom.ZAxis}
			if got := p.NumSegments(); got != tt.want {
				t.Errorf("NumSegments() = %d, want %d", got, tt.want)
			}
			if got := len(p.Segments()); got != tt.want {
				t.Errorf("len(Segments()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPolylineIsEmpty(t *testing.T) {
	t.Run("empty polyline", func(t *testing.T) {
		p := &Polyline{}
		if !p.IsEmpty() {
			t.Error("IsEmpty() = false for empty polyline, want true")
		}
	})
	t.Run("non-empty polyline", func(t *testing.T) {
		p := &Polyline{Vertices: []PolyVertex{{Point: pt(1, 2)}}}
		if p.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty polyline, want false")
		}
	})
}

func TestPolylinePoint3At(t *testing.T) {
	p := &Polyline{
		Vertices:  []PolyVertex{{Point: pt(2, 3)}},
		Normal:    geom.Vector3{Z: -1},
		Elevation: 4,
	}
	// OCS of -Z has X = -WorldX and Y = WorldY.
	want := geom.Point3{X: -2, Y: 3, Z: -4}
	if got := p.StartPoint(); !got.IsEqualTo(want, geom.JoinTolerance) {
		t.Errorf("StartPoint() = %v, want %v", got, want)
	}
}

func TestChainToPolyline(t *testing.T) {
	segs := []Segment{
		{Start: pt(0, 0), End: pt(1, 0)},
		{Start: pt(1, 0), End: pt(1, 1), Bulge: 0.5},
	}

	open := Chain{Segments: segs}.ToPolyline()
	if open.NumVertices() != 3 || open.Closed {
		t.Fatalf("open chain: %d vertices closed=%v, want 3 open", open.NumVertices(), open.Closed)
	}
	if open.Vertices[1].Bulge != 0.5 || open.Vertices[2].Bulge != 0 {
		t.Errorf("bulges = %v", open.Vertices)
	}

	closed := Chain{Segments: append(segs, Segment{Start: pt(1, 1), End: pt(0, 0)}), Closed: true}.ToPolyline()
	if closed.NumVertices() != 3 || !closed.Closed {
		t.Fatalf("closed chain: %d vertices closed=%v, want 3 closed", closed.NumVertices(), closed.Closed)
	}
	if closed.NumSegments() != 3 {
		t.Errorf("closed NumSegments() = %d, want 3", closed.NumSegments())
	}
}

// --- Segment geometry ---

func TestSegmentArcGeometry(t *testing.T) {
	tests := []struct {
		name       string
		seg        Segment
		wantCenter geom.Point2
		wantRadius float64
	}{
		{"quarter ccw", Segment{Start: pt(1, 0), End: pt(0, 1), Bulge: BulgeFromSweep(math.Pi / 2)}, pt(0, 0), 1},
		{"half ccw", Segment{Start: pt(1, 0), End: pt(-1, 0), Bulge: 1}, pt(0, 0), 1},
		{"three quarters ccw", Segment{Start: pt(1, 0), End: pt(0, -1), Bulge: BulgeFromSweep(3 * math.Pi / 2)}, pt(0, 0), 1},
		{"quarter cw", Segment{Start: pt(2, 0), End: pt(0, -2), Bulge: BulgeFromSweep(-math.Pi / 2)}, pt(0, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := tt.seg.Center(); !c.IsEqualTo(tt.wantCenter, geom.JoinTolerance) {
				t.Errorf("Center() = %v, want %v", c, tt.wantCenter)
			}
			if r := tt.seg.Radius(); math.Abs(r-tt.wantRadius) > 1e-9 {
				t.Errorf("Radius() = %g, want %g", r, tt.wantRadius)
			}
		})
	}
}

func TestSegmentReverse(t *testing.T) {
	s := Segment{Start: pt(0, 0), End: pt(2, 0), Bulge: 0.25}
	r := s.Reverse()
	if r.Start != s.End || r.End != s.Start || r.Bulge != -0.25 {
		t.Errorf("Reverse() = %+v", r)
	}
	if math.Abs(r.Length()-s.Length()) > 1e-12 {
		t.Errorf("reversed length %g != %g", r.Length(), s.Length())
	}
}

// --- Scope ---

// countingKernel records releases and embeds stubKernel for the rest.
type countingKernel struct {
	stubKernel
	released []*Primitive
}

func (k *countingKernel) Release(p *Primitive) {
	k.released = append(k.released, p)
}

func TestScopeRelease(t *testing.T) {
	k := &countingKernel{}
	s := NewScope(k)
	a := NewLine(geom.Origin, geom.Point3{X: 1})
	b := NewLine(geom.Point3{X: 1}, geom.Point3{X: 2})
	s.Hold(a, nil, b)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	s.Release()
	if len(k.released) != 2 || k.released[0] != b || k.released[1] != a {
		t.Errorf("released = %v, want [b a]", k.released)
	}

	s.Release()
	if len(k.released) != 2 {
		t.Errorf("second Release() released %d more handles", len(k.released)-2)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Explode(c *Curve) ([]*Primitive, error) { return nil, nil }

func (k *stubKernel) ProjectPrimitive(p *Primitive, _ geom.Plane, _ geom.Vector3) (*Primitive, error) {
	return p.Clone(), nil
}

func (k *stubKernel) Segments(_ *Primitive, _ geom.Frame) ([]Segment, error) { return nil, nil }

func (k *stubKernel) JoinSegments(segs []Segment, _ geom.Tolerance) ([]Chain, error) {
	return []Chain{{Segments: segs}}, nil
}

func (k *stubKernel) Release(_ *Primitive) {}

var _ Kernel = (*stubKernel)(nil)
var _ Kernel = (*countingKernel)(nil)

func TestPrimitiveSweep(t *testing.T) {
	arc := NewArc(geom.Origin, geom.ZAxis, geom.Point3{X: 1}, geom.Point3{Y: -1})
	if got := arc.Sweep(); math.Abs(got-3*math.Pi/2) > 1e-12 {
		t.Errorf("Sweep() = %g, want 3π/2", got)
	}
	if arc.IsClosed() {
		t.Error("arc IsClosed() = true")
	}
	if !NewCircle(geom.Origin, geom.ZAxis, 2).IsClosed() {
		t.Error("circle IsClosed() = false")
	}
	full := NewEllipse(geom.Origin, geom.Vector3{X: 2}, geom.Vector3{Y: 1}, 0, 2*math.Pi)
	if !full.IsClosed() {
		t.Error("full ellipse IsClosed() = false")
	}
	if !full.Start.IsEqualTo(full.End, geom.JoinTolerance) {
		t.Errorf("full ellipse start %v != end %v", full.Start, full.End)
	}
}

func TestCurveStartPoint(t *testing.T) {
	c := NewPolyline3d(false, geom.Point3{X: 1, Y: 2, Z: 3}, geom.Point3{})
	p, err := c.StartPoint()
	if err != nil {
		t.Fatalf("StartPoint() error = %v", err)
	}
	if p != (geom.Point3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("StartPoint() = %v", p)
	}
	if _, err := (&Curve{Kind: CurvePolyline}).StartPoint(); err == nil {
		t.Error("StartPoint() on empty polyline: error = nil")
	}
}
