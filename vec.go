package sdfray

import (
	"github.com/soypat/geometry/ms3"
)

// Sample is the result of evaluating a colored SDF at a point: the color of the
// nearest surface and the signed distance to it in scene units.
type Sample struct {
	Color ms3.Vec
	Dist  float32
}

// negated returns s with its distance sign flipped. Color is untouched.
func (s Sample) negated() Sample {
	return Sample{Color: s.Color, Dist: -s.Dist}
}

// UnitVec returns v scaled to unit length. The zero vector (or a vector too short
// to normalize reliably) yields the zero vector so NaN never propagates into shading.
func UnitVec(v ms3.Vec) ms3.Vec {
	n := ms3.Norm(v)
	if n < epstol {
		return ms3.Vec{}
	}
	return ms3.Scale(1/n, v)
}

// modElem is the componentwise GLSL mod of v by m.
func modElem(v, m ms3.Vec) ms3.Vec {
	return ms3.Vec{X: modf(v.X, m.X), Y: modf(v.Y, m.Y), Z: modf(v.Z, m.Z)}
}

// MixVec linearly interpolates from a to b by t.
func MixVec(a, b ms3.Vec, t float32) ms3.Vec {
	return ms3.Add(ms3.Scale(1-t, a), ms3.Scale(t, b))
}

// Reflect reflects incident direction d about the unit normal n.
func Reflect(d, n ms3.Vec) ms3.Vec {
	return ms3.Sub(d, ms3.Scale(2*ms3.Dot(d, n), n))
}

func maxComponent(v ms3.Vec) float32 {
	return maxf(v.X, maxf(v.Y, v.Z))
}
