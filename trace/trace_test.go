package trace_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/trace"
)

var (
	blue  = ms3.Vec{Z: 1}
	white = ms3.Vec{X: 1, Y: 1, Z: 1}
)

// ballAndFloor returns a blue sphere of radius 2 at the origin resting on a checkered
// floor at y=1.5. Positive y points down in the rendered image.
func ballAndFloor(t testing.TB) *sdfray.Scene {
	t.Helper()
	var bld sdfray.Builder
	scene, err := bld.NewScene([]sdfray.Object{
		{Name: "ball", Shape: bld.NewSphere(ms3.Vec{}, blue, 2)},
		{Name: "floor", Shape: bld.NewPlane(ms3.Vec{}, white, ms3.Vec{Y: -1}, 1.5, true)},
	}, []sdfray.Operation{
		{Kind: sdfray.OpUnion, Left: "ball", Right: "floor"},
		{Kind: sdfray.OpUnion, Left: "scene", Right: "tmp"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return scene
}

func newTracer(t testing.TB, workers int) *trace.Tracer {
	t.Helper()
	cfg := trace.DefaultConfig()
	cfg.Workers = workers
	tr, err := trace.NewTracer(ballAndFloor(t), trace.DefaultEnvironment(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func testCamera() trace.Camera {
	return trace.Camera{Position: ms3.Vec{Y: -2, Z: -5}, FOV: 1}
}

func finite(v ms3.Vec) bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func TestMarchSphere(t *testing.T) {
	tr := newTracer(t, 1)
	cam := testCamera()
	// Pixel (5,7) of a 10×10 image has uv (0,0.4), aimed straight at the sphere center.
	ro, rd := cam.Ray(5, 7, 10, 10)
	h := tr.March(ro, rd)
	if !h.Hit {
		t.Fatal("expected sphere hit")
	}
	want := math32.Sqrt(29) - 2
	if math32.Abs(h.T-want) > 2e-3 {
		t.Errorf("want hit distance %g, got %g", want, h.T)
	}
	if h.Sample.Color != blue {
		t.Errorf("want sphere color, got %v", h.Sample.Color)
	}
	c := tr.Color(h, rd)
	if !finite(c) || c.Z <= c.X || c.Z <= c.Y {
		t.Errorf("want blue dominant shading, got %v", c)
	}
	frame, err := tr.RenderFrame(context.Background(), cam, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	px := frame.Image.RGBAAt(5, 7)
	if px.B <= px.R || px.B <= px.G || px.A != 255 {
		t.Errorf("want opaque blue dominant pixel, got %+v", px)
	}
	if frame.At(5, 7) != c {
		t.Errorf("frame pixel %v differs from traced color %v", frame.At(5, 7), c)
	}
}

func TestMarchFloor(t *testing.T) {
	tr := newTracer(t, 1)
	cam := testCamera()
	// Bottom right pixel misses the sphere and lands on the floor around (3.5, 1.5, -0.6).
	ro, rd := cam.Ray(9, 9, 10, 10)
	h := tr.March(ro, rd)
	if !h.Hit {
		t.Fatal("expected floor hit")
	}
	if math32.Abs(h.Pos.Y-1.5) > 2e-3 {
		t.Errorf("want floor hit at y=1.5, got %v", h.Pos)
	}
	gray := ms3.Vec{X: 0.2, Y: 0.2, Z: 0.2}
	if h.Sample.Color != gray {
		t.Errorf("want dark checker cell, got %v", h.Sample.Color)
	}
	n := tr.Normal(h.Pos)
	if ms3.Dot(n, ms3.Vec{Y: -1}) < 0.999 {
		t.Errorf("want floor normal (0,-1,0), got %v", n)
	}
}

func TestMarchMiss(t *testing.T) {
	tr := newTracer(t, 1)
	cam := testCamera()
	// Top row looks up, away from the floor and above the sphere.
	ro, rd := cam.Ray(5, 0, 10, 10)
	h := tr.March(ro, rd)
	if h.Hit {
		t.Fatalf("expected miss, got hit at %v", h.Pos)
	}
	if h.T <= sdfray.MaxDistance {
		t.Errorf("miss must march past MaxDistance, got %g", h.T)
	}
	c := tr.Color(h, rd)
	bg := tr.Environment().Background
	if !finite(c) || c.X > bg.X || c.Y > bg.Y || c.Z > bg.Z || c.X < 0 {
		t.Errorf("want darkened background, got %v (background %v)", c, bg)
	}
}

func TestMarchNaNField(t *testing.T) {
	tr, err := trace.NewTracer(fieldFunc(func(p ms3.Vec) sdfray.Sample {
		return sdfray.Sample{Color: white, Dist: math32.NaN()}
	}), trace.DefaultEnvironment(), trace.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// A field that never reports a valid distance exhausts the step budget.
	h := tr.March(ms3.Vec{}, ms3.Vec{Z: 1})
	if h.Steps != trace.DefaultMaxSteps {
		t.Errorf("want %d steps, got %d", trace.DefaultMaxSteps, h.Steps)
	}
}

type fieldFunc func(p ms3.Vec) sdfray.Sample

func (f fieldFunc) Evaluate(p ms3.Vec) sdfray.Sample { return f(p) }

func TestRenderFrameWorkers(t *testing.T) {
	const w, h = 32, 24
	cam := testCamera()
	serial, err := newTracer(t, 1).RenderFrame(context.Background(), cam, w, h)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := newTracer(t, 7).RenderFrame(context.Background(), cam, w, h)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(serial.Image.Pix, parallel.Image.Pix) {
		t.Error("frame depends on worker count")
	}
	if serial.Stats != parallel.Stats {
		t.Errorf("stats depend on worker count: %+v != %+v", serial.Stats, parallel.Stats)
	}
	if serial.Stats.Hits+serial.Stats.Misses != w*h || serial.Stats.Hits == 0 || serial.Stats.Misses == 0 {
		t.Errorf("unexpected stats %+v", serial.Stats)
	}
	for i, c := range serial.Linear {
		if !finite(c) {
			t.Fatalf("non-finite color %v at pixel %d", c, i)
		}
	}
}

func TestRenderFrameDeterministic(t *testing.T) {
	tr := newTracer(t, 0)
	cam := testCamera()
	a, err := tr.RenderFrame(context.Background(), cam, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := tr.RenderFrame(context.Background(), cam, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("repeated renders differ")
	}
}

func TestRenderFrameCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f, err := newTracer(t, 2).RenderFrame(ctx, testCamera(), 64, 64)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
	if f != nil {
		t.Error("got frame from cancelled render")
	}
}

func TestRenderFrameInvalid(t *testing.T) {
	tr := newTracer(t, 1)
	ctx := context.Background()
	if _, err := tr.RenderFrame(ctx, testCamera(), 0, 10); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := tr.RenderFrame(ctx, trace.Camera{}, 10, 10); err == nil {
		t.Error("expected error for zero FOV")
	}
	if _, err := trace.RenderFrame(ctx, nil, testCamera(), trace.DefaultEnvironment(), 4, 4); err == nil {
		t.Error("expected error for nil scene")
	}
	f, err := trace.RenderFrame(ctx, ballAndFloor(t), testCamera(), trace.DefaultEnvironment(), 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if f.Image.Bounds().Dx() != 4 || f.Image.Bounds().Dy() != 3 || len(f.Linear) != 12 {
		t.Errorf("bad frame size %v", f.Image.Bounds())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := trace.DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	mutate := []func(*trace.Config){
		func(c *trace.Config) { c.MaxSteps = 0 },
		func(c *trace.Config) { c.HitEpsilon = 0 },
		func(c *trace.Config) { c.MaxDistance = sdfray.Sentinel },
		func(c *trace.Config) { c.NormalEpsilon = math32.NaN() },
		func(c *trace.Config) { c.Workers = -1 },
	}
	for i, fn := range mutate {
		cfg := trace.DefaultConfig()
		fn(&cfg)
		if cfg.Validate() == nil {
			t.Errorf("case %d: expected validation error for %+v", i, cfg)
		}
		if _, err := trace.NewTracer(ballAndFloor(t), trace.DefaultEnvironment(), cfg); err == nil {
			t.Errorf("case %d: NewTracer accepted invalid config", i)
		}
	}
}

func TestPixelUV(t *testing.T) {
	uv := trace.PixelUV(0, 0, 20, 10)
	if uv.X != -2 || uv.Y != -1 {
		t.Errorf("want (-2,-1), got %v", uv)
	}
	uv = trace.PixelUV(10, 5, 20, 10)
	if uv.X != 0 || uv.Y != 0 {
		t.Errorf("want image center at (0,0), got %v", uv)
	}
	_, rd := trace.DefaultCamera().Ray(10, 5, 20, 10)
	if rd != (ms3.Vec{Z: 1}) {
		t.Errorf("want center ray along +z, got %v", rd)
	}
}
