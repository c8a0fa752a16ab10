package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
	"github.com/chazu/planproj/pkg/ucs"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites planproj scripts into source zygomys accepts.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: project-extents -> project_extents
//     zygomys reads a hyphen inside an identifier as subtraction, so
//     kebab-case identifiers become underscores outside of strings and
//     comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vector3. Points and directions share it.
type sexpVec3 struct {
	vec geom.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a geom.Plane.
type sexpPlane struct {
	plane geom.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plane :origin %v :normal %v)", p.plane.Origin, p.plane.Normal)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpVertex wraps a polyline vertex with its bulge.
type sexpVertex struct {
	v kernel.Vertex
}

func (v *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex %v :bulge %g)", v.v.Point, v.v.Bulge)
}
func (v *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpCurve wraps a kernel.Curve built by polyline, polyline2d,
// polyline3d or spline.
type sexpCurve struct {
	curve *kernel.Curve
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	n := len(c.curve.Vertices)
	if c.curve.Primitive != nil {
		n = len(c.curve.Primitive.Controls)
	}
	return fmt.Sprintf("(%s %d points)", c.curve.Kind, n)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpPolyline wraps a projection result.
type sexpPolyline struct {
	name string
	pl   *kernel.Polyline
}

func (p *sexpPolyline) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polyline %q %d vertices)", p.name, p.pl.NumVertices())
}
func (p *sexpPolyline) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// A trailing keyword is a flag.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false; a keyword given as a bare flag counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_ucs) and plain strings ("ucs").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toFrame converts a keyword (:wcs, :ucs, :dcs, :psdcs), a number, or a
// vec3 extrusion direction into a transform frame.
func toFrame(s zygo.Sexp) (ucs.Frame, error) {
	switch v := s.(type) {
	case *sexpVec3:
		return ucs.DirectionFrame(v.vec), nil
	case *zygo.SexpInt:
		return ucs.Named(ucs.Code(v.Val)), nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return ucs.Frame{}, fmt.Errorf("expected frame (:wcs, :ucs, :dcs, :psdcs): %w", err)
	}
	code, err := ucs.ParseCode(name)
	if err != nil {
		return ucs.Frame{}, err
	}
	return ucs.Named(code), nil
}

// toVec3 extracts a Vector3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPlane extracts a Plane from a sexpPlane.
func toPlane(s zygo.Sexp) (geom.Plane, error) {
	if p, ok := s.(*sexpPlane); ok {
		return p.plane, nil
	}
	return geom.Plane{}, fmt.Errorf("expected plane, got %T (%s)", s, s.SexpString(nil))
}

// toCurve extracts a Curve from a sexpCurve.
func toCurve(s zygo.Sexp) (*kernel.Curve, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c.curve, nil
	}
	return nil, fmt.Errorf("expected curve, got %T (%s)", s, s.SexpString(nil))
}

// toVertex accepts a vertex or a bare vec3 (bulge 0).
func toVertex(s zygo.Sexp) (kernel.Vertex, error) {
	switch v := s.(type) {
	case *sexpVertex:
		return v.v, nil
	case *sexpVec3:
		return kernel.Vertex{Point: v.vec.AsPoint()}, nil
	}
	return kernel.Vertex{}, fmt.Errorf("expected vertex or vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// vertexArgs collects vertices from the positional arguments and from an
// optional :vertices list.
func vertexArgs(fn string, pa kwArgs) ([]kernel.Vertex, error) {
	items := pa.positional
	if v, ok := pa.kw["vertices"]; ok {
		list, err := sexpListToSlice(v)
		if err != nil {
			return nil, fmt.Errorf("%s: vertices: %w", fn, err)
		}
		items = append(items, list...)
	}
	verts := make([]kernel.Vertex, 0, len(items))
	for i, item := range items {
		vx, err := toVertex(item)
		if err != nil {
			return nil, fmt.Errorf("%s: vertex %d: %w", fn, i, err)
		}
		verts = append(verts, vx)
	}
	return verts, nil
}

// kwVec3 reads an optional vec3 keyword, falling back to def.
func kwVec3(fn string, pa kwArgs, key string, def geom.Vector3) (geom.Vector3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return geom.Vector3{}, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return vec, nil
}

// kwPlane reads an optional plane keyword, falling back to def.
func kwPlane(fn string, pa kwArgs, key string, def geom.Plane) (geom.Plane, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	p, err := toPlane(v)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return p, nil
}

// kwBool reads an optional boolean keyword.
func kwBool(fn string, pa kwArgs, key string) (bool, error) {
	v, ok := pa.kw[key]
	if !ok {
		return false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the planproj builtins into a zygomys
// environment. Projections are recorded into res in call order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, e *Engine, res *Result) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: geom.VectorFromArray(c)}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :origin (vec3 0 0 0) :normal (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		origin, err := kwVec3("plane", pa, "origin", geom.Vector3{})
		if err != nil {
			return zygo.SexpNull, err
		}
		normal, err := kwVec3("plane", pa, "normal", geom.ZAxis)
		if err != nil {
			return zygo.SexpNull, err
		}
		pl, err := geom.NewPlane(origin.AsPoint(), normal)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		return &sexpPlane{plane: pl}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex (vec3 1 0 0) :bulge 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("vertex requires a point argument")
		}
		pt, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: point: %w", err)
		}
		vx := kernel.Vertex{Point: pt.AsPoint()}
		if v, ok := pa.kw["bulge"]; ok {
			b, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertex: bulge: %w", err)
			}
			vx.Bulge = b
		}
		return &sexpVertex{v: vx}, nil
	})

	// -----------------------------------------------------------------------
	// (polyline :normal (vec3 0 0 1) :closed true (vertex ...) (vec3 ...) ...)
	// (polyline2d ...) takes the same arguments.
	// -----------------------------------------------------------------------
	planar := func(fn string, kind kernel.CurveKind) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			normal, err := kwVec3(fn, pa, "normal", geom.ZAxis)
			if err != nil {
				return zygo.SexpNull, err
			}
			closed, err := kwBool(fn, pa, "closed")
			if err != nil {
				return zygo.SexpNull, err
			}
			verts, err := vertexArgs(fn, pa)
			if err != nil {
				return zygo.SexpNull, err
			}
			c := kernel.NewPolyline(normal, closed, verts...)
			c.Kind = kind
			return &sexpCurve{curve: c}, nil
		}
	}
	env.AddFunction("polyline", planar("polyline", kernel.CurvePolyline))
	env.AddFunction("polyline2d", planar("polyline2d", kernel.CurvePolyline2d))

	// -----------------------------------------------------------------------
	// (polyline3d :closed false (vec3 ...) (vec3 ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polyline3d", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		closed, err := kwBool("polyline3d", pa, "closed")
		if err != nil {
			return zygo.SexpNull, err
		}
		verts, err := vertexArgs("polyline3d", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		pts := make([]geom.Point3, len(verts))
		for i, v := range verts {
			pts[i] = v.Point
		}
		return &sexpCurve{curve: kernel.NewPolyline3d(closed, pts...)}, nil
	})

	// -----------------------------------------------------------------------
	// (spline (vec3 ...) (vec3 ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("spline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ctrl := make([]geom.Point3, 0, len(args))
		for i, a := range args {
			v, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("spline: control %d: %w", i, err)
			}
			ctrl = append(ctrl, v.AsPoint())
		}
		c := &kernel.Curve{Kind: kernel.CurveSpline, Normal: geom.ZAxis, Primitive: kernel.NewSpline(ctrl...)}
		return &sexpCurve{curve: c}, nil
	})

	// -----------------------------------------------------------------------
	// (project curve :onto (plane ...) :dir (vec3 0 0 -1) :name "outline")
	//
	// Returns the polyline, or nil for curves that cannot be projected.
	// -----------------------------------------------------------------------
	env.AddFunction("project", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("project requires a curve argument")
		}
		c, err := toCurve(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("project: curve: %w", err)
		}
		plane, err := kwPlane("project", pa, "onto", geom.XYPlane)
		if err != nil {
			return zygo.SexpNull, err
		}
		dir, err := kwVec3("project", pa, "dir", plane.Normal)
		if err != nil {
			return zygo.SexpNull, err
		}
		label, err := resultName("project", pa, res)
		if err != nil {
			return zygo.SexpNull, err
		}

		pl, err := e.proj.Project(c, &plane, dir)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("project: %w", err)
		}
		if pl == nil {
			return zygo.SexpNull, nil
		}
		res.Projections = append(res.Projections, Projection{Name: label, Polyline: pl})
		return &sexpPolyline{name: label, pl: pl}, nil
	})

	// -----------------------------------------------------------------------
	// (project-extents :min (vec3 ...) :max (vec3 ...) :onto (plane ...)
	//                  :dir (vec3 ...) :aux (plane ...) :name "box")
	//
	// Note: registered as "project_extents"; the preprocessor rewrites the
	// hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("project_extents", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		const fn = "project-extents"
		pa := parseArgs(args)
		lo, err := kwVec3(fn, pa, "min", geom.Vector3{})
		if err != nil {
			return zygo.SexpNull, err
		}
		hi, err := kwVec3(fn, pa, "max", geom.Vector3{})
		if err != nil {
			return zygo.SexpNull, err
		}
		plane, err := kwPlane(fn, pa, "onto", geom.XYPlane)
		if err != nil {
			return zygo.SexpNull, err
		}
		dir, err := kwVec3(fn, pa, "dir", plane.Normal)
		if err != nil {
			return zygo.SexpNull, err
		}
		aux, err := kwPlane(fn, pa, "aux", geom.XYPlane)
		if err != nil {
			return zygo.SexpNull, err
		}
		label, err := resultName(fn, pa, res)
		if err != nil {
			return zygo.SexpNull, err
		}

		ext := geom.Extents{Min: lo.AsPoint(), Max: hi.AsPoint()}
		pl, err := e.proj.ProjectExtents(ext, plane, dir, aux)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		res.Projections = append(res.Projections, Projection{Name: label, Polyline: pl})
		return &sexpPolyline{name: label, pl: pl}, nil
	})

	// -----------------------------------------------------------------------
	// (transform (vec3 1 2 3) :from :ucs :to :wcs :displacement true)
	// -----------------------------------------------------------------------
	env.AddFunction("transform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("transform requires a vec3 argument")
		}
		v, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: %w", err)
		}
		from, to := ucs.Named(ucs.WCS), ucs.Named(ucs.WCS)
		if s, ok := pa.kw["from"]; ok {
			if from, err = toFrame(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: from: %w", err)
			}
		}
		if s, ok := pa.kw["to"]; ok {
			if to, err = toFrame(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: to: %w", err)
			}
		}
		disp, err := kwBool("transform", pa, "displacement")
		if err != nil {
			return zygo.SexpNull, err
		}
		out, err := e.gw.TransformVector(v, from, to, disp)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: %w", err)
		}
		return &sexpVec3{vec: out}, nil
	})
}

// resultName returns the :name keyword or a generated name.
func resultName(fn string, pa kwArgs, res *Result) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return fmt.Sprintf("%s-%d", fn, len(res.Projections)+1), nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	return s, nil
}
