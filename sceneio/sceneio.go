// Package sceneio reads JSON scene descriptions into renderable scenes.
//
// A description has four top level fields:
//
//	{
//	  "environment": {"background-color": [102, 178, 229], "light-position": [1, -2, -5]},
//	  "camera": {"position": [0, -2, -5], "lookAt": [0, 0, 0], "FOV": 1},
//	  "objects": {
//	    "ball":  {"type": "sphere", "position": [0, 0, 0], "color": [0, 0, 255], "radius": 2},
//	    "floor": {"type": "plane", "position": [0, 0, 0], "color": [255, 255, 255], "n": [0, -1, 0], "h": 1.5, "isCelled": true}
//	  },
//	  "operations": [
//	    {"type": "union", "obj1": "ball", "obj2": "floor"},
//	    {"type": "union", "obj1": "scene", "obj2": "tmp"}
//	  ]
//	}
//
// Colors are given in the 0..255 range. Object types and their extra fields are
// sphere (radius), plane (n, h, isCelled), box (side), roundBox (side, radius),
// mengerSponge (side, scale) and mandelbulb (power, scale). Operation types are
// union, intersection, difference, smoothUnion, smoothIntersection and
// smoothSubtraction; smooth operations require a positive "smoothness".
package sceneio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/trace"
)

// ErrMissingField is returned when a required field is absent from a description.
var ErrMissingField = errors.New("missing field")

// Document is a parsed scene description.
type Document struct {
	Scene       *sdfray.Scene
	Camera      trace.Camera
	Environment trace.Environment
}

// ReadFile reads and parses the scene description in the named file.
func ReadFile(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Decode reads a scene description from r until EOF and parses it.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates and converts a JSON scene description. All validation errors
// found are returned joined.
func Parse(data []byte) (*Document, error) {
	var raw description
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding scene JSON: %w", err)
	}
	var v validator
	doc := &Document{
		Camera:      v.camera(raw.Camera),
		Environment: v.environment(raw.Environment),
	}
	objects := v.objects(raw.Objects)
	ops := v.operations(raw.Operations)
	if err := v.err(); err != nil {
		return nil, err
	}
	var bld sdfray.Builder
	bld.SetFlags(sdfray.FlagNoDimensionPanic)
	var errs []error
	objs := make([]sdfray.Object, len(objects))
	for i, obj := range objects {
		objs[i] = sdfray.Object{Name: obj.name, Shape: obj.build(&bld)}
		if err := bld.Err(); err != nil {
			errs = append(errs, fmt.Errorf("object %q: %w", obj.name, err))
			bld.ClearErrors()
		}
	}
	scene, err := bld.NewScene(objs, ops)
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	doc.Scene = scene
	return doc, nil
}

func (o *namedObject) build(bld *sdfray.Builder) sdfray.Shape {
	raw := o.raw
	pos := o.pos
	color := o.color
	switch raw.Type {
	case "sphere":
		return bld.NewSphere(pos, color, *raw.Radius)
	case "plane":
		return bld.NewPlane(pos, color, o.normal, *raw.H, *raw.IsCelled)
	case "box":
		return bld.NewBox(pos, color, o.side)
	case "roundBox":
		return bld.NewRoundedBox(pos, color, o.side, *raw.Radius)
	case "mengerSponge":
		return bld.NewMengerSponge(pos, color, o.side, *raw.Scale)
	case "mandelbulb":
		return bld.NewMandelbulb(pos, color, *raw.Power, *raw.Scale)
	}
	panic("unreachable: unvalidated object type " + raw.Type)
}

func colorFrom255(v ms3.Vec) ms3.Vec {
	return ms3.Scale(1./255, v)
}
