// Package engine provides the script evaluation engine for planproj.
// It wraps zygomys in a sandboxed environment and collects the polylines a
// script projects.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/planproj/pkg/kernel"
	"github.com/chazu/planproj/pkg/logging"
	"github.com/chazu/planproj/pkg/project"
	"github.com/chazu/planproj/pkg/ucs"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Projection is one named polyline produced by a script.
type Projection struct {
	Name     string
	Polyline *kernel.Polyline
}

// Result holds the projections of one evaluation in call order.
type Result struct {
	Projections []Projection
}

// Lookup returns the projection with the given name, or nil.
func (r *Result) Lookup(name string) *Projection {
	for i := range r.Projections {
		if r.Projections[i].Name == name {
			return &r.Projections[i]
		}
	}
	return nil
}

// Engine wraps the zygomys interpreter for planproj scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration

	proj *project.Projector
	gw   *ucs.Gateway
}

// NewEngine creates an Engine that projects with proj and transforms
// coordinates through gw.
func NewEngine(proj *project.Projector, gw *ucs.Gateway) *Engine {
	return &Engine{proj: proj, gw: gw, timeout: EvalTimeout}
}

// SetTimeout replaces the evaluation time limit. Non-positive values
// restore EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d <= 0 {
		d = EvalTimeout
	}
	e.timeout = d
}

// Evaluate runs a planproj script and returns what it projected.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that projects nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	source = preprocessSource(source)

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	res := &Result{}
	registerBuiltins(env, e, res)

	if err := env.LoadString(source); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	logging.Logger().Debug("engine: evaluated", "projections", len(res.Projections))
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
