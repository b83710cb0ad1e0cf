package sceneio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/trace"
)

// description mirrors the JSON layout. Pointers distinguish absent fields from zero values.
type description struct {
	Environment *environmentJSON `json:"environment"`
	Camera      *cameraJSON      `json:"camera"`
	Objects     *orderedObjects  `json:"objects"`
	Operations  *[]operationJSON `json:"operations"`
}

type environmentJSON struct {
	Background []float32 `json:"background-color"`
	Light      []float32 `json:"light-position"`
}

type cameraJSON struct {
	Position []float32 `json:"position"`
	LookAt   []float32 `json:"lookAt"`
	FOV      *float32  `json:"FOV"`
}

type objectJSON struct {
	Type     string    `json:"type"`
	Position []float32 `json:"position"`
	Color    []float32 `json:"color"`
	Radius   *float32  `json:"radius"`
	N        []float32 `json:"n"`
	H        *float32  `json:"h"`
	IsCelled *bool     `json:"isCelled"`
	Side     []float32 `json:"side"`
	Scale    *float32  `json:"scale"`
	Power    *float32  `json:"power"`
}

type operationJSON struct {
	Type       string   `json:"type"`
	Obj1       *string  `json:"obj1"`
	Obj2       *string  `json:"obj2"`
	Smoothness *float32 `json:"smoothness"`
}

type namedObject struct {
	name   string
	raw    objectJSON
	pos    ms3.Vec
	color  ms3.Vec
	normal ms3.Vec
	side   ms3.Vec
}

// orderedObjects decodes the "objects" JSON object keeping definition order.
type orderedObjects []namedObject

func (o *orderedObjects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("objects must be a JSON object")
	}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string) // Object keys are always strings.
		var obj objectJSON
		if err := dec.Decode(&obj); err != nil {
			return fmt.Errorf("object %q: %w", name, err)
		}
		*o = append(*o, namedObject{name: name, raw: obj})
	}
	_, err = dec.Token() // closing brace.
	return err
}

// validator accumulates description errors.
type validator struct {
	errs []error
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) missing(field string) {
	v.errs = append(v.errs, fmt.Errorf("%w %q", ErrMissingField, field))
}

func (v *validator) vec3(field string, arr []float32) ms3.Vec {
	if arr == nil {
		v.missing(field)
		return ms3.Vec{}
	} else if len(arr) != 3 {
		v.errorf("can't convert %q to vec3: got %d elements", field, len(arr))
		return ms3.Vec{}
	}
	return ms3.Vec{X: arr[0], Y: arr[1], Z: arr[2]}
}

func (v *validator) environment(env *environmentJSON) trace.Environment {
	if env == nil {
		v.missing("environment")
		return trace.Environment{}
	}
	return trace.Environment{
		Background: colorFrom255(v.vec3("environment.background-color", env.Background)),
		Light:      v.vec3("environment.light-position", env.Light),
	}
}

func (v *validator) camera(cam *cameraJSON) trace.Camera {
	if cam == nil {
		v.missing("camera")
		return trace.Camera{}
	}
	c := trace.Camera{
		Position: v.vec3("camera.position", cam.Position),
		LookAt:   v.vec3("camera.lookAt", cam.LookAt),
	}
	if cam.FOV == nil {
		v.missing("camera.FOV")
	} else if !(*cam.FOV > 0) {
		v.errorf("camera.FOV must be positive, got %g", *cam.FOV)
	} else {
		c.FOV = *cam.FOV
	}
	return c
}

func (v *validator) objects(objs *orderedObjects) []namedObject {
	if objs == nil {
		v.missing("objects")
		return nil
	}
	list := *objs
	for i := range list {
		obj := &list[i]
		v.object(obj)
	}
	return list
}

func (v *validator) object(obj *namedObject) {
	raw := &obj.raw
	prefix := "objects." + obj.name + "."
	obj.pos = v.vec3(prefix+"position", raw.Position)
	obj.color = colorFrom255(v.vec3(prefix+"color", raw.Color))
	need := func(field string, present bool) {
		if !present {
			v.missing(prefix + field)
		}
	}
	switch raw.Type {
	case "sphere":
		need("radius", raw.Radius != nil)
	case "plane":
		need("h", raw.H != nil)
		need("isCelled", raw.IsCelled != nil)
		obj.normal = v.vec3(prefix+"n", raw.N)
	case "box":
		obj.side = v.vec3(prefix+"side", raw.Side)
	case "roundBox":
		obj.side = v.vec3(prefix+"side", raw.Side)
		need("radius", raw.Radius != nil)
	case "mengerSponge":
		obj.side = v.vec3(prefix+"side", raw.Side)
		need("scale", raw.Scale != nil)
	case "mandelbulb":
		need("power", raw.Power != nil)
		need("scale", raw.Scale != nil)
	case "":
		v.missing(prefix + "type")
	default:
		v.errorf("object %q: unknown type %q", obj.name, raw.Type)
	}
}

func (v *validator) operations(ops *[]operationJSON) []sdfray.Operation {
	if ops == nil {
		v.missing("operations")
		return nil
	}
	result := make([]sdfray.Operation, 0, len(*ops))
	for i, op := range *ops {
		prefix := fmt.Sprintf("operations[%d].", i)
		kind, err := sdfray.ParseOpKind(op.Type)
		if op.Type == "" {
			v.missing(prefix + "type")
			continue
		} else if err != nil {
			v.errorf("%s: %w", prefix+"type", err)
			continue
		}
		if op.Obj1 == nil {
			v.missing(prefix + "obj1")
		}
		if op.Obj2 == nil {
			v.missing(prefix + "obj2")
		}
		var k float32
		if kind.IsSmooth() {
			if op.Smoothness == nil {
				v.missing(prefix + "smoothness")
			} else {
				k = *op.Smoothness
			}
		}
		if op.Obj1 == nil || op.Obj2 == nil {
			continue
		}
		result = append(result, sdfray.Operation{Kind: kind, Left: *op.Obj1, Right: *op.Obj2, Smoothness: k})
	}
	return result
}
