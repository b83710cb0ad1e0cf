package trace

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

const (
	specularIntensity = 1.3 * 0.5
	specularExponent  = 10
	ambientFactor     = 0.05
	fresnelFactor     = 0.15
	diffuseFloor      = 0.1

	shadowBias      = 0.02
	shadowStart     = 0.01
	shadowSteps     = 100 / 5
	shadowLightSize = 0.03
	shadowMinHit    = 1e-3 * 1e-3

	aoSamples = 8
	aoDecay   = 0.85
	aoGain    = 0.6
)

// Light shades a surface point pos of base color c hit by a ray of direction rd.
// The light is a point light for the diffuse and specular terms and is not attenuated
// with distance.
func (t *Tracer) Light(pos, rd, c ms3.Vec) ms3.Vec {
	lightPos := t.env.Light
	L := sdfray.UnitVec(ms3.Sub(lightPos, pos))
	N := t.Normal(pos)
	V := ms3.Scale(-1, rd)
	R := sdfray.Reflect(ms3.Scale(-1, L), N)

	spec := specularIntensity * math32.Pow(clampf(ms3.Dot(R, V), 0, 1), specularExponent)
	specular := ms3.Vec{X: spec, Y: spec, Z: spec}
	ambient := ms3.Scale(ambientFactor, c)
	fresnel := ms3.Scale(fresnelFactor*pow3(1+ms3.Dot(rd, N)), c)

	// The shadow ray heads along the normalized light position rather than towards
	// the light, as if the light were infinitely far. Reference renders depend on it.
	shadow := t.SoftShadow(ms3.Add(pos, ms3.Scale(shadowBias, N)), sdfray.UnitVec(lightPos))
	occ := t.AmbientOcclusion(pos, N)

	diffuse := ms3.Scale(clampf(ms3.Dot(N, L), diffuseFloor, 1), c)

	lit := ms3.Scale(occ, ms3.Add(ambient, fresnel))
	direct := ms3.Scale(shadow, ms3.Add(diffuse, ms3.Scale(occ, specular)))
	return ms3.Add(lit, direct)
}

// SoftShadow marches from p along dir and returns the light visibility in [0,1],
// penumbra widening with the distance to occluders.
func (t *Tracer) SoftShadow(p, dir ms3.Vec) float32 {
	var res float32 = 1
	var dist float32 = shadowStart
	for i := 0; i < shadowSteps; i++ {
		hit := t.dist(ms3.Add(p, ms3.Scale(dist, dir)))
		res = math32.Min(res, hit/(dist*shadowLightSize))
		dist += hit
		if hit < shadowMinHit || dist > t.cfg.MaxDistance {
			break
		}
	}
	return clampf(res, 0, 1)
}

// AmbientOcclusion samples the field along normal n at growing distances from p and
// returns 1 for unoccluded points down to 0 for fully occluded ones.
func (t *Tracer) AmbientOcclusion(p, n ms3.Vec) float32 {
	var occ float32
	var weight float32 = 1
	for i := 0; i < aoSamples; i++ {
		fi := float32(i)
		stepLen := 0.01 + 0.02*fi*fi
		d := t.dist(ms3.Add(p, ms3.Scale(stepLen, n)))
		occ += (stepLen - d) * weight
		weight *= aoDecay
	}
	return 1 - clampf(aoGain*occ, 0, 1)
}
