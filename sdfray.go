// Package sdfray implements colored signed distance field primitives, a CSG algebra over
// (color, distance) samples and a scene evaluator that folds named primitives through an
// ordered list of operations. Rendering of scenes is implemented in the trace package.
package sdfray

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// MaxDistance is the reference far distance of the sphere tracer in scene units.
	MaxDistance = 50
	// Sentinel is the distance registers hold before any operation writes to them.
	// It must stay larger than the tracer's far distance so that an unwritten register
	// never wins a union against a real primitive.
	Sentinel = MaxDistance + 1
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
)

// Flags modify the behaviour of a [Builder].
type Flags uint64

const (
	// FlagNoDimensionPanic makes the Builder accumulate shape errors instead of panicking.
	// Accumulated errors are returned by [Builder.Err] and cause [Builder.NewScene] to fail.
	FlagNoDimensionPanic Flags = 1 << iota
)

// Builder wraps all primitive and scene construction logic.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	flags     Flags
	accumErrs []error
}

// SetFlags sets the Builder's flags, replacing the previous value.
func (bld *Builder) SetFlags(flags Flags) {
	bld.flags = flags
}

// Flags returns the Builder's current flags.
func (bld *Builder) Flags() Flags {
	return bld.flags
}

// Err returns the accumulated shape errors joined, or nil if there are none.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if bld.flags&FlagNoDimensionPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

// mixf linearly interpolates between x and y.
func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

// modf is the GLSL mod: x - y*floor(x/y). The result takes the sign of y.
func modf(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}
