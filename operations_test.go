package sdfray_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfray"
)

func randSample(rng *rand.Rand) sdfray.Sample {
	return sdfray.Sample{
		Color: red,
		Dist:  10 * (rng.Float32() - 0.5),
	}
}

func TestHardOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a, b := randSample(rng), randSample(rng)
		a.Color, b.Color = red, blue
		u := sdfray.Union(a, b)
		if u.Dist != math32.Min(a.Dist, b.Dist) {
			t.Fatalf("union(%g,%g)=%g", a.Dist, b.Dist, u.Dist)
		}
		if (a.Dist < b.Dist && u.Color != red) || (a.Dist >= b.Dist && u.Color != blue) {
			t.Fatalf("union took wrong color for (%g,%g)", a.Dist, b.Dist)
		}
		in := sdfray.Intersection(a, b)
		if in.Dist != math32.Max(a.Dist, b.Dist) {
			t.Fatalf("intersection(%g,%g)=%g", a.Dist, b.Dist, in.Dist)
		}
		diff := sdfray.Difference(a, b)
		nb := sdfray.Sample{Color: b.Color, Dist: -b.Dist}
		if want := sdfray.Intersection(a, nb); diff.Dist != want.Dist {
			t.Fatalf("difference(%g,%g)=%g, want %g", a.Dist, b.Dist, diff.Dist, want.Dist)
		}
		if a.Dist <= -b.Dist && diff.Color != blue {
			t.Fatalf("difference carved region must take the carving color")
		}
	}
}

func TestSmoothOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a, b := randSample(rng), randSample(rng)
		const k = 0.5
		su := sdfray.SmoothUnion(a, b, k)
		if su.Dist > math32.Min(a.Dist, b.Dist)+1e-6 {
			t.Fatalf("smooth union must not exceed union: %g > min(%g,%g)", su.Dist, a.Dist, b.Dist)
		}
		if math32.Min(a.Dist, b.Dist)-su.Dist > k/4+1e-6 {
			t.Fatalf("smooth union deviates more than k/4 from union: %g vs min(%g,%g)", su.Dist, a.Dist, b.Dist)
		}
		si := sdfray.SmoothIntersection(a, b, k)
		if si.Dist < math32.Max(a.Dist, b.Dist)-1e-6 {
			t.Fatalf("smooth intersection below intersection: %g < max(%g,%g)", si.Dist, a.Dist, b.Dist)
		}
		ss := sdfray.SmoothSubtraction(a, b, k)
		if ss.Dist < math32.Max(-a.Dist, b.Dist)-1e-6 {
			t.Fatalf("smooth subtraction below difference: %g < max(%g,%g)", ss.Dist, -a.Dist, b.Dist)
		}
		// Far from the blend region the smooth operations equal the hard ones.
		if math32.Abs(a.Dist-b.Dist) > k {
			if math32.Abs(su.Dist-math32.Min(a.Dist, b.Dist)) > 1e-5 {
				t.Fatalf("smooth union outside blend region %g != min(%g,%g)", su.Dist, a.Dist, b.Dist)
			}
		}
	}
}

func TestSmoothUnionConverges(t *testing.T) {
	a := sdfray.Sample{Color: red, Dist: 0.3}
	b := sdfray.Sample{Color: blue, Dist: 0.31}
	prev := float32(math32.Inf(1))
	for _, k := range []float32{1, 0.1, 0.01, 0.001} {
		err := math32.Abs(sdfray.SmoothUnion(a, b, k).Dist - 0.3)
		if err > prev {
			t.Errorf("smooth union error grew as k shrank: k=%g err=%g", k, err)
		}
		prev = err
	}
	if prev > 1e-5 {
		t.Errorf("smooth union did not converge to union: err=%g", prev)
	}
}

func TestSmoothOperationsContinuous(t *testing.T) {
	const step = 1e-4
	ops := map[string]func(a, b sdfray.Sample, k float32) sdfray.Sample{
		"union":        sdfray.SmoothUnion,
		"intersection": sdfray.SmoothIntersection,
		"subtraction":  sdfray.SmoothSubtraction,
	}
	// Sweeps pass through a.Dist == b.Dist and a.Dist == -b.Dist, the crossing
	// for subtraction since it negates b.
	for name, op := range ops {
		for _, k := range []float32{1, 0.25, 0.01, 0.001} {
			for _, center := range []float32{0.3, -0.3} {
				for _, sweepB := range []bool{false, true} {
					fixed := sdfray.Sample{Color: blue, Dist: 0.3}
					eval := func(d float32) float32 {
						moving := sdfray.Sample{Color: red, Dist: d}
						if sweepB {
							return op(fixed, moving, k).Dist
						}
						return op(moving, fixed, k).Dist
					}
					n := int(2*k/step) + 10
					prevD := center - float32(n)*step
					prev := eval(prevD)
					for i := -n + 1; i <= n; i++ {
						d := center + float32(i)*step
						got := eval(d)
						if math32.IsNaN(got) {
							t.Fatalf("%s k=%g: NaN at %g", name, k, d)
						}
						if jump := math32.Abs(got - prev); jump > 1.001*math32.Abs(d-prevD)+1e-5 {
							t.Fatalf("%s k=%g sweepB=%v: distance jumped %g between %g and %g", name, k, sweepB, jump, prevD, d)
						}
						prev, prevD = got, d
					}
				}
			}
		}
	}
}

func TestSmoothUnionColor(t *testing.T) {
	// Nearer sample dominates the blended color.
	a := sdfray.Sample{Color: red, Dist: 0.1}
	b := sdfray.Sample{Color: blue, Dist: 0.9}
	c := sdfray.SmoothUnion(a, b, 1).Color
	if c.X <= c.Z {
		t.Errorf("want red dominant blend, got %v", c)
	}
	// Opposite distances must not produce NaN.
	c = sdfray.SmoothUnion(sdfray.Sample{Color: red, Dist: 1}, sdfray.Sample{Color: blue, Dist: -1}, 1).Color
	if math32.IsNaN(c.X) || math32.IsNaN(c.Z) {
		t.Errorf("NaN blended color %v", c)
	}
}

func TestParseOpKind(t *testing.T) {
	for _, name := range []string{"union", "intersection", "difference", "smoothUnion", "smoothIntersection", "smoothSubtraction"} {
		k, err := sdfray.ParseOpKind(name)
		if err != nil {
			t.Fatal(err)
		}
		if k.String() != name {
			t.Errorf("round trip of %q gave %q", name, k)
		}
		if k.IsSmooth() != strings.HasPrefix(name, "smooth") {
			t.Errorf("%s: wrong IsSmooth", name)
		}
	}
	if _, err := sdfray.ParseOpKind("xor"); err == nil {
		t.Error("expected error for unknown operation")
	}
}
