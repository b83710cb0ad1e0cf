package sdfray

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// ShapeKind identifies the primitive stored in a [Shape].
type ShapeKind uint8

const (
	shapeInvalid ShapeKind = iota
	KindSphere
	KindPlane
	KindBox
	KindRoundedBox
	KindMengerSponge
	KindMandelbulb
)

const (
	mengerIterations     = 5
	mandelbulbIterations = 5
	mandelbulbBailout    = 50
	// maxMandelbulbPower is the largest integer power for which bailout^power
	// fits in a float32: 50^22 is about 2.4e37, 50^23 overflows.
	maxMandelbulbPower = 22
)

func (k ShapeKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindBox:
		return "box"
	case KindRoundedBox:
		return "roundBox"
	case KindMengerSponge:
		return "mengerSponge"
	case KindMandelbulb:
		return "mandelbulb"
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

// Shape is a colored SDF primitive. It is a closed tagged union over the primitive
// kinds: fields not used by the shape's kind are zero. Shapes are immutable after
// construction and safe for concurrent evaluation. The zero Shape is invalid.
type Shape struct {
	kind  ShapeKind
	pos   ms3.Vec
	color ms3.Vec
	// half extents for box-like shapes, unit normal for planes.
	dims ms3.Vec
	// radius for spheres and rounded boxes, offset for planes.
	r         float32
	scale     float32
	power     float32
	checkered bool
}

// NewSphere creates a sphere centered at pos of radius r.
func (bld *Builder) NewSphere(pos, color ms3.Vec, r float32) Shape {
	if r < 0 {
		bld.shapeErrorf("negative sphere radius %g", r)
	}
	return Shape{kind: KindSphere, pos: pos, color: color, r: r}
}

// NewPlane creates the plane dot(p-pos, unit(normal)) + offset = 0. When checkered is set
// the plane's color is replaced by a two tone gray pattern on the xz grid.
func (bld *Builder) NewPlane(pos, color, normal ms3.Vec, offset float32, checkered bool) Shape {
	n := UnitVec(normal)
	if n == (ms3.Vec{}) {
		bld.shapeErrorf("zero length plane normal")
	}
	return Shape{kind: KindPlane, pos: pos, color: color, dims: n, r: offset, checkered: checkered}
}

// NewBox creates an axis aligned box centered at pos with half extents half.
func (bld *Builder) NewBox(pos, color, half ms3.Vec) Shape {
	if half.X < 0 || half.Y < 0 || half.Z < 0 {
		bld.shapeErrorf("negative box extent %v", half)
	}
	return Shape{kind: KindBox, pos: pos, color: color, dims: half}
}

// NewRoundedBox creates a box with half extents half whose edges are rounded by radius r.
// The rounded box fits within the half extents.
func (bld *Builder) NewRoundedBox(pos, color, half ms3.Vec, r float32) Shape {
	if half.X < 0 || half.Y < 0 || half.Z < 0 {
		bld.shapeErrorf("negative rounded box extent %v", half)
	}
	if r < 0 {
		bld.shapeErrorf("negative rounded box radius %g", r)
	}
	return Shape{kind: KindRoundedBox, pos: pos, color: color, dims: half, r: r}
}

// NewMengerSponge creates a Menger sponge fractal carved out of a box of half extents half.
// The query point is divided by scale before evaluation.
func (bld *Builder) NewMengerSponge(pos, color, half ms3.Vec, scale float32) Shape {
	if half.X < 0 || half.Y < 0 || half.Z < 0 {
		bld.shapeErrorf("negative menger sponge extent %v", half)
	}
	if scale <= 0 {
		bld.shapeErrorf("non-positive menger sponge scale %g", scale)
	}
	return Shape{kind: KindMengerSponge, pos: pos, color: color, dims: half, scale: scale}
}

// NewMandelbulb creates a Mandelbulb fractal of the given power. The query point is
// divided by scale before evaluation.
//
// power must lie in [1,22]. Below 1 the derivative term r^(power-1) is infinite at
// the origin and yields NaN distances. Above 22 the iterate z^power overflows float32
// for |z| below the bailout radius of 50.
func (bld *Builder) NewMandelbulb(pos, color ms3.Vec, power, scale float32) Shape {
	if !(power >= 1 && power <= maxMandelbulbPower) {
		bld.shapeErrorf("mandelbulb power %g outside [1,%d]", power, maxMandelbulbPower)
	}
	if scale <= 0 {
		bld.shapeErrorf("non-positive mandelbulb scale %g", scale)
	}
	return Shape{kind: KindMandelbulb, pos: pos, color: color, power: power, scale: scale}
}

// Kind returns the primitive kind of s.
func (s Shape) Kind() ShapeKind { return s.kind }

// Position returns the shape's world position.
func (s Shape) Position() ms3.Vec { return s.pos }

// Color returns the shape's base color. Checkered planes ignore it.
func (s Shape) Color() ms3.Vec { return s.color }

func (s Shape) String() string {
	return fmt.Sprintf("%s@%v", s.kind, s.pos)
}

// Evaluate returns the shape's color and signed distance at world point p.
func (s Shape) Evaluate(p ms3.Vec) Sample {
	p = ms3.Sub(p, s.pos)
	switch s.kind {
	case KindSphere:
		return Sample{Color: s.color, Dist: ms3.Norm(p) - s.r}
	case KindPlane:
		return s.evalPlane(p)
	case KindBox:
		return Sample{Color: s.color, Dist: boxDist(p, s.dims)}
	case KindRoundedBox:
		q := ms3.AddScalar(s.r, ms3.Sub(ms3.AbsElem(p), s.dims))
		d := ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxComponent(q), 0) - s.r
		return Sample{Color: s.color, Dist: d}
	case KindMengerSponge:
		return Sample{Color: s.color, Dist: mengerDist(ms3.Scale(1/s.scale, p), s.dims)}
	case KindMandelbulb:
		return Sample{Color: s.color, Dist: mandelbulbDist(ms3.Scale(1/s.scale, p), s.power)}
	}
	panic("evaluate of invalid shape")
}

func (s Shape) evalPlane(p ms3.Vec) Sample {
	d := ms3.Dot(p, s.dims) + s.r
	c := s.color
	if s.checkered {
		g := 0.2 + 0.4*modf(math32.Floor(p.X)+math32.Floor(p.Z), 2)
		c = ms3.Vec{X: g, Y: g, Z: g}
	}
	return Sample{Color: c, Dist: d}
}

func boxDist(p, half ms3.Vec) float32 {
	q := ms3.Sub(ms3.AbsElem(p), half)
	return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxComponent(q), 0)
}

func mengerDist(p, half ms3.Vec) float32 {
	d := boxDist(p, half)
	two := ms3.Vec{X: 2, Y: 2, Z: 2}
	var s float32 = 1
	for m := 0; m < mengerIterations; m++ {
		a := ms3.AddScalar(-1, modElem(ms3.Scale(s, p), two))
		s *= 3
		r := ms3.AbsElem(ms3.AddScalar(1, ms3.Scale(-3, ms3.AbsElem(a))))
		da := maxf(r.X, r.Y)
		db := maxf(r.Y, r.Z)
		dc := maxf(r.Z, r.X)
		c := (minf(da, minf(db, dc)) - 1) / s
		d = maxf(d, c)
	}
	return d
}

func mandelbulbDist(p ms3.Vec, power float32) float32 {
	z := p
	var dr float32 = 1
	var r float32
	for i := 0; i < mandelbulbIterations; i++ {
		r = ms3.Norm(z)
		if r > mandelbulbBailout {
			break
		}
		var theta, phi float32
		if r > epstol {
			theta = math32.Acos(clampf(z.Z/r, -1, 1))
			phi = math32.Atan2(z.Y, z.X)
		}
		dr = math32.Pow(r, power-1)*power*dr + 1
		zr := math32.Pow(r, power)
		theta *= power
		phi *= power
		sinTheta, cosTheta := math32.Sincos(theta)
		sinPhi, cosPhi := math32.Sincos(phi)
		z = ms3.Add(ms3.Scale(zr, ms3.Vec{X: sinTheta * cosPhi, Y: sinPhi * sinTheta, Z: cosTheta}), p)
	}
	if r < epstol {
		// Only reachable at the fractal's center, which lies inside the set.
		return 0
	}
	// r/dr first: r alone may be near the float32 limit for large powers.
	return 0.5 * math32.Log(r) * (r / dr)
}

// Bounds returns an axis aligned box containing the shape's surface. Unbounded
// shapes such as planes are clamped to a cube of half side [MaxDistance].
func (s Shape) Bounds() ms3.Box {
	var half ms3.Vec
	switch s.kind {
	case KindSphere:
		half = ms3.Vec{X: s.r, Y: s.r, Z: s.r}
	case KindBox, KindRoundedBox:
		half = s.dims
	case KindMengerSponge:
		half = ms3.Scale(s.scale, s.dims)
	case KindMandelbulb:
		// The set lies within radius 2 for the powers accepted by the Builder.
		half = ms3.Vec{X: 2 * s.scale, Y: 2 * s.scale, Z: 2 * s.scale}
	default:
		return farBox()
	}
	return ms3.Box{Min: ms3.Sub(s.pos, half), Max: ms3.Add(s.pos, half)}
}

func farBox() ms3.Box {
	const far = MaxDistance
	return ms3.Box{
		Min: ms3.Vec{X: -far, Y: -far, Z: -far},
		Max: ms3.Vec{X: far, Y: far, Z: far},
	}
}
