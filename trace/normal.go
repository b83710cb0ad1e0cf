package trace

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// Normal estimates the unit surface normal at p with central differences of the
// field's distance, offsetting NormalEpsilon along each axis.
func (t *Tracer) Normal(p ms3.Vec) ms3.Vec {
	e := t.cfg.NormalEpsilon
	dx := t.dist(ms3.Add(p, ms3.Vec{X: e})) - t.dist(ms3.Sub(p, ms3.Vec{X: e}))
	dy := t.dist(ms3.Add(p, ms3.Vec{Y: e})) - t.dist(ms3.Sub(p, ms3.Vec{Y: e}))
	dz := t.dist(ms3.Add(p, ms3.Vec{Z: e})) - t.dist(ms3.Sub(p, ms3.Vec{Z: e}))
	return sdfray.UnitVec(ms3.Vec{X: dx, Y: dy, Z: dz})
}
