package sdfray

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

var errMismatchBufferLength = errors.New("position and distance buffer length mismatch")

// unsetSample is the value registers hold before an operation writes to them.
var unsetSample = Sample{Color: ms3.Vec{X: 1, Y: 1, Z: 1}, Dist: Sentinel}

// Evaluate returns the scene's color and signed distance at p.
//
// Operations run in order on a register file that starts every call at
// color (1,1,1) and distance [Sentinel]. Each operation resolves its left then right
// operand (a shape evaluated at p or a register's current value), applies its CSG
// function and stores the result in its destination register. The scene register
// is the result. Registers live on the stack so concurrent calls never share state.
func (s *Scene) Evaluate(p ms3.Vec) Sample {
	var regs [numRegisters]Sample
	for i := range regs {
		regs[i] = unsetSample
	}
	for i := range s.ops {
		op := &s.ops[i]
		a := s.resolve(op.left, &regs, p)
		b := s.resolve(op.right, &regs, p)
		regs[op.dst] = op.kind.Apply(a, b, op.k)
	}
	return regs[regScene]
}

func (s *Scene) resolve(o operand, regs *[numRegisters]Sample, p ms3.Vec) Sample {
	if o.reg != noRegister {
		return regs[o.reg]
	}
	return s.shapes[o.shape].Evaluate(p)
}

// Dist returns the scene's signed distance at p.
func (s *Scene) Dist(p ms3.Vec) float32 {
	return s.Evaluate(p).Dist
}

// EvaluateDistances evaluates the scene's signed distance at every position of pos and
// stores the result in dist. It implements [sdfeval.SDF3] together with [Scene.Bounds].
func (s *Scene) EvaluateDistances(pos []ms3.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	for i, p := range pos {
		dist[i] = s.Evaluate(p).Dist
	}
	return nil
}
