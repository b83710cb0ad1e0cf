package sdfray

import (
	"errors"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms3"
)

// Register names. Operations that name a register read its current value and
// write their result into a register; see [Scene.Evaluate].
const (
	RegisterScene = "scene"
	RegisterTmp   = "tmp"
)

// register indexes the scene's scratch registers.
type register int8

const (
	noRegister register = iota - 1
	regScene
	regTmp
	numRegisters
)

var registerNames = [numRegisters]string{regScene: RegisterScene, regTmp: RegisterTmp}

func (r register) String() string {
	if r < 0 || r >= numRegisters {
		return "<shape>"
	}
	return registerNames[r]
}

func lookupRegister(name string) register {
	for r, rname := range registerNames {
		if rname == name {
			return register(r)
		}
	}
	return noRegister
}

var (
	ErrReservedName     = errors.New("name is reserved for a scene register")
	ErrDuplicateName    = errors.New("duplicate object name")
	ErrUndefinedOperand = errors.New("undefined operand")
	ErrBadSmoothness    = errors.New("smooth operation requires positive smoothness")
	ErrInvalidShape     = errors.New("invalid shape")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Object is a named shape of a scene.
type Object struct {
	Name  string
	Shape Shape
}

// Operation combines two operands with a CSG operation. Operands name an [Object]
// or one of the registers [RegisterScene] and [RegisterTmp].
type Operation struct {
	Kind        OpKind
	Left, Right string
	// Smoothness is the blend distance of smooth operations. Must be positive for them.
	Smoothness float32
}

// operand references either a register or an object of the scene.
type operand struct {
	reg   register
	shape int // index into Scene.shapes when reg==noRegister.
}

type compiledOp struct {
	kind        OpKind
	left, right operand
	dst         register
	k           float32
}

// Scene is an immutable set of named shapes and the ordered operations that fold them
// into a single colored distance field. A Scene is safe for concurrent use.
type Scene struct {
	names  []string
	shapes []Shape
	ops    []compiledOp
	src    []Operation
	bounds ms3.Box
}

// NewScene validates objects and operations and compiles them into a Scene.
// Any error accumulated by the Builder while creating shapes is returned as well,
// so a scene is never built from shapes that failed validation.
func (bld *Builder) NewScene(objects []Object, ops []Operation) (*Scene, error) {
	var errs []error
	if err := bld.Err(); err != nil {
		errs = append(errs, err)
	}
	sc := &Scene{
		names:  make([]string, 0, len(objects)),
		shapes: make([]Shape, 0, len(objects)),
		ops:    make([]compiledOp, 0, len(ops)),
		src:    slices.Clone(ops),
	}
	index := make(map[string]int, len(objects))
	for i, obj := range objects {
		switch {
		case obj.Name == "":
			errs = append(errs, fmt.Errorf("object %d: empty name", i))
			continue
		case lookupRegister(obj.Name) != noRegister:
			errs = append(errs, fmt.Errorf("object %q: %w", obj.Name, ErrReservedName))
			continue
		case obj.Shape.kind == shapeInvalid || obj.Shape.kind > KindMandelbulb:
			errs = append(errs, fmt.Errorf("object %q: %w %s", obj.Name, ErrInvalidShape, obj.Shape.kind))
			continue
		}
		if _, dup := index[obj.Name]; dup {
			errs = append(errs, fmt.Errorf("object %q: %w", obj.Name, ErrDuplicateName))
			continue
		}
		index[obj.Name] = len(sc.shapes)
		sc.names = append(sc.names, obj.Name)
		sc.shapes = append(sc.shapes, obj.Shape)
	}

	resolve := func(name string) (operand, bool) {
		if r := lookupRegister(name); r != noRegister {
			return operand{reg: r}, true
		}
		i, ok := index[name]
		return operand{reg: noRegister, shape: i}, ok
	}
	for i, op := range ops {
		if op.Kind == opInvalid || int(op.Kind) >= len(opNames) {
			errs = append(errs, fmt.Errorf("operation %d: %w %s", i, ErrInvalidOperation, op.Kind))
			continue
		}
		if op.Kind.IsSmooth() && !(op.Smoothness > 0) {
			errs = append(errs, fmt.Errorf("operation %d (%s): %w, got %g", i, op.Kind, ErrBadSmoothness, op.Smoothness))
			continue
		}
		left, okL := resolve(op.Left)
		right, okR := resolve(op.Right)
		if !okL {
			errs = append(errs, fmt.Errorf("operation %d (%s): %w %q", i, op.Kind, ErrUndefinedOperand, op.Left))
		}
		if !okR {
			errs = append(errs, fmt.Errorf("operation %d (%s): %w %q", i, op.Kind, ErrUndefinedOperand, op.Right))
		}
		if !okL || !okR {
			continue
		}
		sc.ops = append(sc.ops, compiledOp{
			kind:  op.Kind,
			left:  left,
			right: right,
			dst:   destination(left, right),
			k:     op.Smoothness,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sc.bounds = sc.computeBounds()
	return sc, nil
}

// destination returns the register an operation writes to: the scene register if
// either operand reads it, else the tmp register if either operand reads it,
// else the tmp register.
func destination(left, right operand) register {
	switch {
	case left.reg == regScene || right.reg == regScene:
		return regScene
	case left.reg == regTmp || right.reg == regTmp:
		return regTmp
	}
	return regTmp
}

// Destination returns the name of the register an operation with the given operand
// names writes its result to.
func Destination(left, right string) string {
	l := operand{reg: lookupRegister(left)}
	r := operand{reg: lookupRegister(right)}
	return destination(l, r).String()
}

// Names returns the object names of the scene in definition order.
func (s *Scene) Names() []string { return slices.Clone(s.names) }

// Shape returns the shape named name.
func (s *Scene) Shape(name string) (Shape, bool) {
	i := slices.Index(s.names, name)
	if i < 0 {
		return Shape{}, false
	}
	return s.shapes[i], true
}

// Operations returns the scene's operations as given to [Builder.NewScene].
func (s *Scene) Operations() []Operation { return slices.Clone(s.src) }

// Bounds returns a box containing all shapes that take part in an operation,
// clamped to a cube of half side [MaxDistance].
func (s *Scene) Bounds() ms3.Box { return s.bounds }

func (s *Scene) computeBounds() ms3.Box {
	used := make([]bool, len(s.shapes))
	for _, op := range s.ops {
		for _, o := range [2]operand{op.left, op.right} {
			if o.reg == noRegister {
				used[o.shape] = true
			}
		}
	}
	var bb ms3.Box
	first := true
	for i, sh := range s.shapes {
		if !used[i] {
			continue
		}
		if first {
			bb = sh.Bounds()
			first = false
		} else {
			bb = bb.Union(sh.Bounds())
		}
	}
	if first {
		return ms3.Box{}
	}
	return bb.Intersect(farBox())
}
