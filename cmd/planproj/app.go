package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/chazu/planproj/pkg/config"
	"github.com/chazu/planproj/pkg/engine"
	"github.com/chazu/planproj/pkg/export"
	"github.com/chazu/planproj/pkg/kernel/native"
	"github.com/chazu/planproj/pkg/project"
	"github.com/chazu/planproj/pkg/ucs"
)

// App wires the engine, projector and coordinate gateway together for the
// CLI commands.
type App struct {
	cfg       config.Config
	engine    *engine.Engine
	workspace *ucs.Workspace
	gateway   *ucs.Gateway
}

// VertexData is a JSON-serializable polyline vertex in plane-local
// coordinates.
type VertexData struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Bulge float64 `json:"bulge,omitempty"`
}

// PolylineData is the JSON-serializable form of one projection.
type PolylineData struct {
	Name      string       `json:"name"`
	Vertices  []VertexData `json:"vertices"`
	Closed    bool         `json:"closed"`
	Normal    [3]float64   `json:"normal"`
	Elevation float64      `json:"elevation"`
	Length    float64      `json:"length"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Polylines []PolylineData  `json:"polylines"`
	Errors    []EvalErrorData `json:"errors"`

	projections []engine.Projection
}

// NewApp creates an App from cfg using the native kernel and an in-memory
// workspace.
func NewApp(cfg config.Config) *App {
	ws := ucs.NewWorkspace()
	ws.SetTileMode(cfg.TileMode)
	gw := ucs.NewGateway(ws)

	k := native.New(native.WithFlattenTolerance(cfg.FlattenTol))
	eng := engine.NewEngine(project.New(k, project.WithTolerance(cfg.Tolerance())), gw)
	eng.SetTimeout(cfg.EvalTimeout)

	return &App{cfg: cfg, engine: eng, workspace: ws, gateway: gw}
}

// Evaluate runs a script and converts its projections for output.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Polylines: []PolylineData{},
		Errors:    []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.projections = res.Projections
	for _, p := range res.Projections {
		pl := p.Polyline
		data := PolylineData{
			Name:      p.Name,
			Vertices:  make([]VertexData, 0, pl.NumVertices()),
			Closed:    pl.Closed,
			Normal:    pl.Normal.Array(),
			Elevation: pl.Elevation,
			Length:    pl.Length(),
		}
		for _, v := range pl.Vertices {
			data.Vertices = append(data.Vertices, VertexData{X: v.Point.X, Y: v.Point.Y, Bulge: v.Bulge})
		}
		result.Polylines = append(result.Polylines, data)
	}
	return result
}

// ExportDXF writes every projection in result to its own DXF file in dir
// and returns the paths written.
func (a *App) ExportDXF(dir string, result EvalResult) ([]string, error) {
	var paths []string
	for _, p := range result.projections {
		path := filepath.Join(dir, fileName(p.Name)+".dxf")
		if err := export.WriteDXF(path, a.cfg.FlattenTol, p.Polyline); err != nil {
			return paths, fmt.Errorf("export %s: %w", p.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fileName maps a projection name onto a safe file name.
func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
