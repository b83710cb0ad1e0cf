package sdfeval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Axis is the normal axis of an axis aligned slicing plane.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid slice axis %q", s)
}

// Slice is the 2D distance field obtained by sampling an [SDF3] on the plane
// normal to an axis at a fixed offset. For AxisX the plane's 2D coordinates are (y,z),
// for AxisY they are (x,z) and for AxisZ they are (x,y).
type Slice struct {
	sdf    SDF3
	axis   Axis
	offset float32
	posbuf []ms3.Vec
}

// NewSlice returns the cross section of s normal to axis at offset.
func NewSlice(s SDF3, axis Axis, offset float32) (*Slice, error) {
	if s == nil {
		return nil, errors.New("nil SDF3")
	} else if axis > AxisZ {
		return nil, fmt.Errorf("invalid axis %s", axis)
	}
	return &Slice{sdf: s, axis: axis, offset: offset}, nil
}

// To3D maps a point on the slice plane to 3D space.
func (sl *Slice) To3D(p ms2.Vec) ms3.Vec {
	switch sl.axis {
	case AxisX:
		return ms3.Vec{X: sl.offset, Y: p.X, Z: p.Y}
	case AxisY:
		return ms3.Vec{X: p.X, Y: sl.offset, Z: p.Y}
	}
	return ms3.Vec{X: p.X, Y: p.Y, Z: sl.offset}
}

func (sl *Slice) to2D(p ms3.Vec) ms2.Vec {
	switch sl.axis {
	case AxisX:
		return ms2.Vec{X: p.Y, Y: p.Z}
	case AxisY:
		return ms2.Vec{X: p.X, Y: p.Z}
	}
	return ms2.Vec{X: p.X, Y: p.Y}
}

// EvaluateDistances implements [SDF2]. Slice is not safe for concurrent use
// since it reuses an internal position buffer.
func (sl *Slice) EvaluateDistances(pos []ms2.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	sl.posbuf = slices.Grow(sl.posbuf[:0], len(pos))[:len(pos)]
	for i, p := range pos {
		sl.posbuf[i] = sl.To3D(p)
	}
	return sl.sdf.EvaluateDistances(sl.posbuf, dist, userData)
}

// Bounds implements [SDF2]. It is the projection of the 3D field's bounds on the slice plane.
func (sl *Slice) Bounds() ms2.Box {
	bb := sl.sdf.Bounds()
	return ms2.Box{Min: sl.to2D(bb.Min), Max: sl.to2D(bb.Max)}
}
