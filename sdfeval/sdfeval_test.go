package sdfeval_test

import (
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/sdfeval"
	"github.com/soypat/sdfray/trace"
)

var _ sdfeval.SDF3 = (*sdfray.Scene)(nil)
var _ sdfeval.SDF2 = (*sdfeval.Slice)(nil)

func sphereScene(t *testing.T) *sdfray.Scene {
	t.Helper()
	var bld sdfray.Builder
	scene, err := bld.NewScene([]sdfray.Object{
		{Name: "ball", Shape: bld.NewSphere(ms3.Vec{X: 1}, ms3.Vec{X: 1}, 1)},
	}, []sdfray.Operation{
		{Kind: sdfray.OpUnion, Left: "ball", Right: "scene"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return scene
}

func TestNormals(t *testing.T) {
	scene := sphereScene(t)
	pos := []ms3.Vec{{X: 2}, {}, {X: 1, Y: 1}, {X: 1, Z: -1}, {X: 1}}
	want := []ms3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Z: -1}, {}} // Gradient vanishes at the center.
	normals := make([]ms3.Vec, len(pos))
	err := sdfeval.Normals(scene, pos, normals, trace.DefaultNormalEpsilon, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range normals {
		if ms3.Norm(ms3.Sub(n, want[i])) > 1e-3 {
			t.Errorf("normal at %v: want %v, got %v", pos[i], want[i], n)
		}
	}
	if err := sdfeval.Normals(scene, pos, normals[:1], 1e-3, nil); err == nil {
		t.Error("expected error on mismatched buffers")
	}
	if err := sdfeval.Normals(scene, nil, nil, 1e-3, nil); err == nil {
		t.Error("expected error on empty buffers")
	}
	if err := sdfeval.Normals(scene, pos, normals, 0, nil); err == nil {
		t.Error("expected error on zero offset")
	}
}

func TestNormalsMatchTracer(t *testing.T) {
	scene := sphereScene(t)
	tr, err := trace.NewTracer(scene, trace.DefaultEnvironment(), trace.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var pos []ms3.Vec
	for x := float32(-0.5); x <= 2.5; x += 0.25 {
		for y := float32(-1.5); y <= 1.5; y += 0.5 {
			pos = append(pos, ms3.Vec{X: x, Y: y, Z: 0.3})
		}
	}
	normals := make([]ms3.Vec, len(pos))
	err = sdfeval.Normals(scene, pos, normals, tr.Config().NormalEpsilon, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pos {
		want := tr.Normal(p)
		if ms3.Norm(ms3.Sub(normals[i], want)) > 1e-5 {
			t.Errorf("normal at %v: tracer %v, batch %v", p, want, normals[i])
		}
	}
}

func TestSlice(t *testing.T) {
	scene := sphereScene(t)
	for _, axis := range []sdfeval.Axis{sdfeval.AxisX, sdfeval.AxisY, sdfeval.AxisZ} {
		sl, err := sdfeval.NewSlice(scene, axis, 0)
		if err != nil {
			t.Fatal(err)
		}
		pos := []ms2.Vec{{}, {X: 0.5}, {X: 3, Y: 3}}
		dist := make([]float32, len(pos))
		err = sl.EvaluateDistances(pos, dist, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range pos {
			want := scene.Dist(sl.To3D(p))
			if dist[i] != want {
				t.Errorf("axis %s at %v: want %g, got %g", axis, p, want, dist[i])
			}
		}
	}
	sl, _ := sdfeval.NewSlice(scene, sdfeval.AxisZ, 0)
	bb := sl.Bounds()
	if bb.Min != (ms2.Vec{X: 0, Y: -1}) || bb.Max != (ms2.Vec{X: 2, Y: 1}) {
		t.Errorf("unexpected slice bounds %+v", bb)
	}
	if _, err := sdfeval.NewSlice(nil, sdfeval.AxisX, 0); err == nil {
		t.Error("expected error for nil SDF")
	}
}

func TestParseAxis(t *testing.T) {
	for _, s := range []string{"x", "y", "z"} {
		a, err := sdfeval.ParseAxis(s)
		if err != nil {
			t.Fatal(err)
		}
		if a.String() != s {
			t.Errorf("round trip %q gave %q", s, a)
		}
	}
	if _, err := sdfeval.ParseAxis("w"); err == nil {
		t.Error("expected error for invalid axis")
	}
}
