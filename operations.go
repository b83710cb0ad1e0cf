package sdfray

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// OpKind is a CSG operation over two [Sample]s.
type OpKind uint8

const (
	opInvalid OpKind = iota
	OpUnion
	OpIntersection
	OpDifference
	OpSmoothUnion
	OpSmoothIntersection
	OpSmoothSubtraction
)

var opNames = [...]string{
	OpUnion:              "union",
	OpIntersection:       "intersection",
	OpDifference:         "difference",
	OpSmoothUnion:        "smoothUnion",
	OpSmoothIntersection: "smoothIntersection",
	OpSmoothSubtraction:  "smoothSubtraction",
}

func (k OpKind) String() string {
	if k == opInvalid || int(k) >= len(opNames) {
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
	return opNames[k]
}

// ParseOpKind returns the operation named s as written in scene descriptions,
// i.e: "union", "smoothSubtraction".
func ParseOpKind(s string) (OpKind, error) {
	for k, name := range opNames {
		if name != "" && name == s {
			return OpKind(k), nil
		}
	}
	return opInvalid, fmt.Errorf("unknown operation %q", s)
}

// IsSmooth reports whether the operation blends its operands and requires a smoothness.
func (k OpKind) IsSmooth() bool {
	return k == OpSmoothUnion || k == OpSmoothIntersection || k == OpSmoothSubtraction
}

// Apply applies the operation to a and b. k is the smoothness and is ignored by
// non-smooth operations; smooth operations require k > 0.
func (op OpKind) Apply(a, b Sample, k float32) Sample {
	switch op {
	case OpUnion:
		return Union(a, b)
	case OpIntersection:
		return Intersection(a, b)
	case OpDifference:
		return Difference(a, b)
	case OpSmoothUnion:
		return SmoothUnion(a, b, k)
	case OpSmoothIntersection:
		return SmoothIntersection(a, b, k)
	case OpSmoothSubtraction:
		return SmoothSubtraction(a, b, k)
	}
	panic("apply of invalid operation " + op.String())
}

// Union keeps the nearer surface. Ties keep b.
func Union(a, b Sample) Sample {
	if a.Dist < b.Dist {
		return a
	}
	return b
}

// Intersection keeps the farther surface. Ties keep b.
func Intersection(a, b Sample) Sample {
	if a.Dist > b.Dist {
		return a
	}
	return b
}

// Difference carves b out of a. When b's interior wins the result takes b's color.
func Difference(a, b Sample) Sample {
	if a.Dist > -b.Dist {
		return a
	}
	return b.negated()
}

// SmoothUnion blends a and b over a distance k. The color is the distance weighted
// blend of both colors, which is only meaningful near the blend region.
func SmoothUnion(a, b Sample, k float32) Sample {
	h := clampf(0.5+0.5*(a.Dist-b.Dist)/k, 0, 1)
	d := mixf(a.Dist, b.Dist, h) - k*h*(1-h)
	return Sample{Color: blendColor(a, b), Dist: d}
}

// SmoothSubtraction carves a out of b with blend distance k. Note the operand
// order is reversed with respect to [Difference].
func SmoothSubtraction(a, b Sample, k float32) Sample {
	return SmoothUnion(a, b.negated(), k).negated()
}

// SmoothIntersection intersects a and b with blend distance k.
func SmoothIntersection(a, b Sample, k float32) Sample {
	return SmoothUnion(a.negated(), b.negated(), k).negated()
}

// blendColor weights each color by the other sample's distance so the nearer
// surface dominates. Equal and opposite distances have no meaningful weighting
// and fall back to the mean.
func blendColor(a, b Sample) ms3.Vec {
	sum := a.Dist + b.Dist
	if absf(sum) < epstol {
		return ms3.Scale(0.5, ms3.Add(a.Color, b.Color))
	}
	return ms3.Scale(1/sum, ms3.Add(ms3.Scale(a.Dist, b.Color), ms3.Scale(b.Dist, a.Color)))
}
