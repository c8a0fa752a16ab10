package engine

import (
	"math"
	"testing"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
	"github.com/chazu/planproj/pkg/kernel/native"
	"github.com/chazu/planproj/pkg/project"
	"github.com/chazu/planproj/pkg/ucs"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func newTestEngine() (*Engine, *ucs.Workspace) {
	ws := ucs.NewWorkspace()
	return NewEngine(project.New(native.New()), ucs.NewGateway(ws)), ws
}

// mustEvaluate fails the test on any fatal or eval error.
func mustEvaluate(t *testing.T, eng *Engine, source string) *Result {
	t.Helper()
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
	return res
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(plane :normal n)`,
			expect: `(plane "__kw_normal" n)`,
		},
		{
			name:   "multiple keywords",
			input:  `(transform v :from :ucs :to :wcs)`,
			expect: `(transform v "__kw_from" "__kw_ucs" "__kw_to" "__kw_wcs")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(project-extents :min lo)`,
			expect: `(project_extents "__kw_min" lo)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 0 0 -1)`,
			expect: `(vec3 0 0 -1)`,
		},
		{
			name:   "exponent preserved",
			input:  `(vertex p :bulge 1e-3)`,
			expect: `(vertex p "__kw_bulge" 1e-3)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:start-param`,
			expect: `"__kw_start-param"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args := parseArgs([]zygo.Sexp{
		&zygo.SexpStr{S: "positional"},
		&zygo.SexpStr{S: kwPrefix + "name"},
		&zygo.SexpStr{S: "outline"},
		&zygo.SexpStr{S: kwPrefix + "closed"},
	})
	if len(args.positional) != 1 {
		t.Fatalf("expected 1 positional argument, got %d", len(args.positional))
	}
	name, err := toString(args.kw["name"])
	if err != nil || name != "outline" {
		t.Errorf("name = %q, %v; want outline, nil", name, err)
	}
	// A trailing keyword is a flag.
	closed, err := toBool(args.kw["closed"])
	if err != nil || !closed {
		t.Errorf("closed = %v, %v; want true, nil", closed, err)
	}
}

// ---------------------------------------------------------------------------
// Projection tests
// ---------------------------------------------------------------------------

func TestProjectPolyline(t *testing.T) {
	eng, _ := newTestEngine()

	source := `
(def sq (polyline :closed true
  (vec3 0 0 2)
  (vertex (vec3 4 0 2) :bulge 0.5)
  (vec3 4 4 2)
  (vec3 0 4 2)))
(project sq :onto (plane :origin (vec3 7 -3 2)) :name "outline")
`
	res := mustEvaluate(t, eng, source)
	if len(res.Projections) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(res.Projections))
	}
	got := res.Lookup("outline")
	if got == nil {
		t.Fatal("expected projection named 'outline'")
	}

	want := &kernel.Polyline{
		Vertices: []kernel.PolyVertex{
			{Point: geom.Point2{X: 0, Y: 0}},
			{Point: geom.Point2{X: 4, Y: 0}, Bulge: 0.5},
			{Point: geom.Point2{X: 4, Y: 4}},
			{Point: geom.Point2{X: 0, Y: 4}},
		},
		Closed:    true,
		Normal:    geom.ZAxis,
		Elevation: 2,
	}
	diff(t, want, got.Polyline, approx)
}

func TestProjectVertexList(t *testing.T) {
	eng, _ := newTestEngine()

	source := `
(def pts (list (vec3 0 0 5) (vec3 3 0 5) (vec3 3 4 5)))
(project (polyline3d :vertices pts) :onto (plane) :dir (vec3 0 0 1))
`
	res := mustEvaluate(t, eng, source)
	if len(res.Projections) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(res.Projections))
	}
	p := res.Projections[0]
	if p.Name != "project-1" {
		t.Errorf("expected generated name project-1, got %q", p.Name)
	}
	if p.Polyline.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices, got %d", p.Polyline.NumVertices())
	}
	if p.Polyline.Closed {
		t.Error("expected open polyline")
	}
	for i := 0; i < p.Polyline.NumVertices(); i++ {
		if z := p.Polyline.Point3At(i).Z; math.Abs(z) > 1e-9 {
			t.Errorf("vertex %d: z = %g, want 0", i, z)
		}
	}
}

func TestProjectUnsupportedCurve(t *testing.T) {
	eng, _ := newTestEngine()

	res := mustEvaluate(t, eng, `(project (spline (vec3 0 0 0) (vec3 1 1 0) (vec3 2 0 0)))`)
	if len(res.Projections) != 0 {
		t.Errorf("expected no projections for a spline, got %d", len(res.Projections))
	}
}

func TestProjectExtentsBuiltin(t *testing.T) {
	eng, ws := newTestEngine()
	ws.SetUCS(geom.Frame{Origin: geom.Point3{X: 10}, X: geom.XAxis, Y: geom.YAxis, Z: geom.ZAxis})

	// The UCS is shifted by +10 in X, so these are the world points
	// (0,0,0) and (10,5,0).
	source := `
(def lo (transform (vec3 -10 0 0) :from :ucs :to :wcs))
(def hi (transform (vec3 0 5 0) :from :ucs :to :wcs))
(project-extents :min lo :max hi :onto (plane) :dir (vec3 0 0 -1) :name "box")
`
	res := mustEvaluate(t, eng, source)
	got := res.Lookup("box")
	if got == nil {
		t.Fatal("expected projection named 'box'")
	}
	want := &kernel.Polyline{
		Vertices: []kernel.PolyVertex{
			{Point: geom.Point2{X: 0, Y: 0}},
			{Point: geom.Point2{X: 10, Y: 5}},
		},
		Normal: geom.ZAxis,
	}
	diff(t, want, got.Polyline, approx)
}

func TestProjectionsKeepCallOrder(t *testing.T) {
	eng, _ := newTestEngine()

	source := `
(def tri (polyline :closed true (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))
(project tri :name "a")
(project-extents :min (vec3 0 0 0) :max (vec3 1 1 0))
(project tri :name "c")
`
	res := mustEvaluate(t, eng, source)
	var names []string
	for _, p := range res.Projections {
		names = append(names, p.Name)
	}
	diff(t, []string{"a", "project-extents-2", "c"}, names)
}

// ---------------------------------------------------------------------------
// Error tests
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "vec3 arity", source: `(vec3 1 2)`},
		{name: "vec3 non-number", source: `(vec3 1 2 "z")`},
		{name: "zero plane normal", source: `(plane :normal (vec3 0 0 0))`},
		{name: "project non-curve", source: `(project 5)`},
		{name: "project missing curve", source: `(project)`},
		{name: "bad vertex", source: `(polyline (vec3 0 0 0) 7)`},
		{name: "bad closed flag", source: `(polyline :closed 3 (vec3 0 0 0) (vec3 1 0 0))`},
		{name: "unknown frame", source: `(transform (vec3 1 2 3) :from :bogus)`},
		{name: "paper space with world", source: `(transform (vec3 1 2 3) :from :psdcs :to :wcs)`},
		{name: "extents parallel direction", source: `(project-extents :min (vec3 0 0 0) :max (vec3 1 1 1) :dir (vec3 1 0 0))`},
		{name: "projection parallel direction", source: `(project (polyline (vec3 0 0 0) (vec3 1 0 0)) :dir (vec3 1 0 0))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine()
			res, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if res != nil {
				t.Error("expected nil result on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			if evalErrs[0].Message == "" {
				t.Error("eval error should have a non-empty message")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Plain Lisp still works
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	eng, _ := newTestEngine()

	res := mustEvaluate(t, eng, `(def x (+ 1 2)) (vec3 x x x)`)
	if len(res.Projections) != 0 {
		t.Errorf("expected no projections, got %d", len(res.Projections))
	}
}
