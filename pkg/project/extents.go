package project

import (
	"fmt"

	"github.com/chazu/planproj/pkg/geom"
	"github.com/chazu/planproj/pkg/kernel"
)

// ProjectExtents projects the diagonal of a box onto plane along dir. The
// corners of ext are local to aux: they are lifted through aux's frame
// into world space before projecting. The result is an open two-vertex
// polyline with no bulges, placed in plane as is; a diagonal carries no
// orientation to correct.
func (p *Projector) ProjectExtents(ext geom.Extents, plane geom.Plane, dir geom.Vector3, aux geom.Plane) (*kernel.Polyline, error) {
	from := aux.Frame()
	to := plane.OCS()

	pl := &kernel.Polyline{
		Vertices: make([]kernel.PolyVertex, 0, 2),
		Normal:   plane.Normal.Normalize(),
	}
	pl.Elevation = plane.Elevation()

	for _, corner := range []geom.Point3{ext.Min, ext.Max} {
		q, ok := plane.Project(from.ToWorld(corner), dir)
		if !ok {
			return nil, fmt.Errorf("project: extents: direction %v does not meet the plane", dir)
		}
		pl.Vertices = append(pl.Vertices, kernel.PolyVertex{Point: to.ToLocal(q).Drop()})
	}
	return pl, nil
}
