package trace

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// Hit is the outcome of marching a ray.
type Hit struct {
	// Hit is true when the ray stopped before MaxDistance.
	Hit bool
	// T is the distance marched along the ray, including the final step.
	T float32
	// Pos is the last position the field was evaluated at.
	Pos ms3.Vec
	// Sample is the field's value at Pos. On a miss its distance is what the sky gradient divides by.
	Sample sdfray.Sample
	// Steps is the number of field evaluations performed.
	Steps int
}

// March sphere traces the ray with origin ro and unit direction rd. Each step evaluates
// the field at ro+rd*t and advances t by the returned distance, stopping once t exceeds
// MaxDistance, the distance falls below HitEpsilon or MaxSteps is reached.
func (t *Tracer) March(ro, rd ms3.Vec) Hit {
	var h Hit
	var dist float32
	for h.Steps < t.cfg.MaxSteps {
		h.Pos = ms3.Add(ro, ms3.Scale(dist, rd))
		h.Sample = t.field.Evaluate(h.Pos)
		h.Steps++
		dist += h.Sample.Dist
		if dist > t.cfg.MaxDistance || h.Sample.Dist < t.cfg.HitEpsilon {
			break
		}
	}
	h.T = dist
	h.Hit = dist < t.cfg.MaxDistance
	return h
}

// Color returns the final linear color of a marched ray with direction rd:
// lit and fogged surface color on hits, sky gradient on misses.
func (t *Tracer) Color(h Hit, rd ms3.Vec) ms3.Vec {
	bg := t.env.Background
	if !h.Hit {
		return t.missColor(h, rd)
	}
	c := t.Light(h.Pos, rd, h.Sample.Color)
	fog := clampf(1-math32.Exp(-1e-4*pow3(h.T)), 0, 1)
	return sdfray.MixVec(c, bg, fog)
}

// missColor darkens the background by the field's leftover distance and
// fades it with ray elevation.
func (t *Tracer) missColor(h Hit, rd ms3.Vec) ms3.Vec {
	bg := t.env.Background
	w := h.Sample.Dist
	if !(w > 0) {
		return bg
	}
	return ms3.AddScalar(-math32.Max(0.9*rd.Y, 0), ms3.Scale(1/w, bg))
}

// Trace marches the ray and returns its final linear color.
func (t *Tracer) Trace(ro, rd ms3.Vec) ms3.Vec {
	return t.Color(t.March(ro, rd), rd)
}
