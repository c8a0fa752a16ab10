// Package ucs converts points and vectors between coordinate systems. The
// Gateway validates a pair of frame descriptors and hands the actual
// transform to a Host.
package ucs

import (
	"errors"
	"fmt"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/logging"
)

var (
	// ErrInvalidFrameCode is returned for a named frame code outside [0, 3].
	ErrInvalidFrameCode = errors.New("ucs: invalid frame code")

	// ErrInvalidFrameCombination is returned when PSDCS is used without DCS
	// on the other side, or while the host is in tile mode.
	ErrInvalidFrameCombination = errors.New("ucs: invalid frame combination")

	// ErrNativeTransform is returned when the host rejects a request.
	ErrNativeTransform = errors.New("ucs: invalid arguments in coordinate transform request")
)

// Status is a host result code.
type Status int

const (
	StatusNormal Status = 5100
	StatusError  Status = -5001
)

// Host performs the raw transform. It reports StatusNormal on success;
// any other status is treated as a failure.
type Host interface {
	RawTransform(coords [3]float64, from, to Frame, displacement bool) (Status, [3]float64)
	// TileMode reports whether the host shows a single viewport.
	TileMode() bool
}

// Gateway validates transform requests and forwards them to a Host. It
// holds no state of its own.
type Gateway struct {
	host Host
}

// NewGateway returns a Gateway over h.
func NewGateway(h Host) *Gateway {
	return &Gateway{host: h}
}

// Validate checks the frame pair, first as (from, to) then as (to, from).
func (g *Gateway) Validate(from, to Frame) error {
	if err := g.check(from, to); err != nil {
		return err
	}
	return g.check(to, from)
}

func (g *Gateway) check(f, other Frame) error {
	if f.Kind != FrameNamed {
		return nil
	}
	if f.Code < WCS || f.Code > PSDCS {
		return fmt.Errorf("ucs: frame code %d: %w", int(f.Code), ErrInvalidFrameCode)
	}
	if f.Code != PSDCS {
		return nil
	}
	if g.host.TileMode() {
		return fmt.Errorf("ucs: psdcs in tile mode: %w", ErrInvalidFrameCombination)
	}
	if other.Kind != FrameNamed || other.Code != DCS {
		return fmt.Errorf("ucs: psdcs with %v: %w", other, ErrInvalidFrameCombination)
	}
	return nil
}

// Transform validates the frames and returns the host's result for
// coords. When displacement is set, coords is a vector and translation
// does not apply.
func (g *Gateway) Transform(coords [3]float64, from, to Frame, displacement bool) ([3]float64, error) {
	if err := g.Validate(from, to); err != nil {
		logging.Logger().Debug("ucs: rejected transform", "from", from, "to", to, "err", err)
		return [3]float64{}, err
	}
	status, out := g.host.RawTransform(coords, from, to, displacement)
	if status != StatusNormal {
		logging.Logger().Debug("ucs: host transform failed", "from", from, "to", to, "status", int(status))
		return [3]float64{}, ErrNativeTransform
	}
	return out, nil
}

// TransformPoint transforms a position.
func (g *Gateway) TransformPoint(p geom.Point3, from, to Frame) (geom.Point3, error) {
	out, err := g.Transform(p.Array(), from, to, false)
	if err != nil {
		return geom.Point3{}, err
	}
	return geom.PointFromArray(out), nil
}

// TransformVector transforms a vector. With displacement unset the vector
// is treated as a position, as the host primitive does.
func (g *Gateway) TransformVector(v geom.Vector3, from, to Frame, displacement bool) (geom.Vector3, error) {
	out, err := g.Transform(v.Array(), from, to, displacement)
	if err != nil {
		return geom.Vector3{}, err
	}
	return geom.VectorFromArray(out), nil
}

// UCSToWCS converts a point from the current UCS to world coordinates.
func (g *Gateway) UCSToWCS(p geom.Point3) (geom.Point3, error) {
	return g.TransformPoint(p, Named(UCS), Named(WCS))
}

// WCSToUCS converts a world point to the current UCS.
func (g *Gateway) WCSToUCS(p geom.Point3) (geom.Point3, error) {
	return g.TransformPoint(p, Named(WCS), Named(UCS))
}

// ToDCS converts a point in from to display coordinates.
func (g *Gateway) ToDCS(p geom.Point3, from Frame) (geom.Point3, error) {
	return g.TransformPoint(p, from, Named(DCS))
}

// FromEntity converts a point in the object coordinates of e to world
// coordinates.
func (g *Gateway) FromEntity(p geom.Point3, e *Entity) (geom.Point3, error) {
	return g.TransformPoint(p, EntityFrame(e), Named(WCS))
}
