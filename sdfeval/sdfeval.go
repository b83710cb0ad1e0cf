// Package sdfeval defines batch evaluation interfaces for signed distance fields and
// utilities that operate on them.
package sdfeval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// SDF3 is a 3D signed distance field evaluated in batches.
type SDF3 interface {
	// EvaluateDistances evaluates the signed distance field over pos positions.
	// dist and pos must be of same length. Resulting distances are stored in dist.
	//
	// userData facilitates getting data to the evaluators for use in processing.
	EvaluateDistances(pos []ms3.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
}

// SDF2 is a 2D signed distance field evaluated in batches.
type SDF2 interface {
	// EvaluateDistances evaluates the signed distance field over pos positions.
	// dist and pos must be of same length. Resulting distances are stored in dist.
	EvaluateDistances(pos []ms2.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms2.Box
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
)

// Normals estimates the unit surface normals of s at every position of pos with
// central differences, offsetting eps along each axis, and stores them in normals.
// All six offset samples of every position are evaluated in a single batch.
// Positions where the gradient vanishes get a zero normal.
func Normals(s SDF3, pos, normals []ms3.Vec, eps float32, userData any) error {
	switch {
	case s == nil:
		return errors.New("nil SDF3")
	case !(eps > 0):
		return fmt.Errorf("invalid central difference offset %g", eps)
	case len(pos) != len(normals):
		return errMismatchBufferLength
	case len(pos) == 0:
		return errEmptyBuffers
	}
	offsets := [6]ms3.Vec{{X: eps}, {X: -eps}, {Y: eps}, {Y: -eps}, {Z: eps}, {Z: -eps}}
	aux := make([]ms3.Vec, 6*len(pos))
	for i, p := range pos {
		for j, off := range offsets {
			aux[6*i+j] = ms3.Add(p, off)
		}
	}
	d := make([]float32, len(aux))
	if err := s.EvaluateDistances(aux, d, userData); err != nil {
		return fmt.Errorf("evaluating normal offsets: %w", err)
	}
	for i := range normals {
		g := d[6*i : 6*i+6]
		normals[i] = sdfray.UnitVec(ms3.Vec{X: g[0] - g[1], Y: g[2] - g[3], Z: g[4] - g[5]})
	}
	return nil
}
