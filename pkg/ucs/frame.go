package ucs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/planproj/pkg/geom"
)

// Code is a named coordinate system code.
type Code int

const (
	WCS   Code = 0 // world
	UCS   Code = 1 // current user coordinate system
	DCS   Code = 2 // display coordinates of the current view
	PSDCS Code = 3 // paper space display coordinates
)

func (c Code) String() string {
	switch c {
	case WCS:
		return "wcs"
	case UCS:
		return "ucs"
	case DCS:
		return "dcs"
	case PSDCS:
		return "psdcs"
	default:
		return strconv.Itoa(int(c))
	}
}

// ParseCode accepts a code name (wcs, ucs, dcs, psdcs) or its number.
// Numbers are not range checked; the gateway does that.
func ParseCode(s string) (Code, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wcs", "world":
		return WCS, nil
	case "ucs", "user":
		return UCS, nil
	case "dcs", "display":
		return DCS, nil
	case "psdcs", "paper":
		return PSDCS, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("ucs: unknown frame %q", s)
	}
	return Code(n), nil
}

// FrameKind tags the variants of Frame.
type FrameKind int

const (
	FrameNamed     FrameKind = iota // one of the Code values
	FrameEntity                     // the object coordinate system of a planar entity
	FrameDirection                  // the object coordinate system of an extrusion vector
)

// Entity is a reference to a planar entity: enough to rebuild its object
// coordinate system.
type Entity struct {
	Name      string       `json:"name"`
	Normal    geom.Vector3 `json:"normal"`
	Elevation float64      `json:"elevation"`
}

// Frame describes one side of a coordinate transform request. It is an
// argument descriptor only and is never stored by the gateway.
type Frame struct {
	Kind      FrameKind
	Code      Code
	Entity    *Entity
	Direction geom.Vector3
}

// Named returns the frame for a named code.
func Named(c Code) Frame {
	return Frame{Kind: FrameNamed, Code: c}
}

// EntityFrame returns the frame of a planar entity.
func EntityFrame(e *Entity) Frame {
	return Frame{Kind: FrameEntity, Entity: e}
}

// DirectionFrame returns the frame whose Z axis is the extrusion vector v.
func DirectionFrame(v geom.Vector3) Frame {
	return Frame{Kind: FrameDirection, Direction: v}
}

func (f Frame) String() string {
	switch f.Kind {
	case FrameNamed:
		return f.Code.String()
	case FrameEntity:
		if f.Entity == nil {
			return "entity(nil)"
		}
		return fmt.Sprintf("entity(%s)", f.Entity.Name)
	case FrameDirection:
		return fmt.Sprintf("direction%v", f.Direction)
	default:
		return "unknown"
	}
}

// Flatten removes the component of v along normal.
func Flatten(v, normal geom.Vector3) geom.Vector3 {
	return v.Flatten(normal)
}
