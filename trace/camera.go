package trace

import (
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// Camera is a pinhole camera looking down +z.
type Camera struct {
	Position ms3.Vec
	// LookAt is reserved for aim control and is not used by ray generation.
	LookAt ms3.Vec
	// FOV is the z component of the unnormalized ray direction. Larger values narrow the view.
	FOV float32
}

// Environment holds the scene's background and its single point light.
type Environment struct {
	// Background is the sky color in the [0,1] range. Distant hits fade into it.
	Background ms3.Vec
	// Light is the position of the point light.
	Light ms3.Vec
}

// DefaultCamera returns a camera at the origin with FOV 1.
func DefaultCamera() Camera {
	return Camera{FOV: 1}
}

// DefaultEnvironment returns a light blue sky and a light at (1,-2,-5).
func DefaultEnvironment() Environment {
	return Environment{
		Background: ms3.Vec{X: 0.4, Y: 0.7, Z: 0.9},
		Light:      ms3.Vec{X: 1, Y: -2, Z: -5},
	}
}

// PixelUV maps pixel (x,y) of a width×height image to centered coordinates in
// [-aspect,aspect]×[-1,1] where aspect is width/height. Row 0 maps to v=-1.
func PixelUV(x, y, width, height int) ms2.Vec {
	w, h := float32(width), float32(height)
	return ms2.Vec{
		X: (2*float32(x)/w - 1) * (w / h),
		Y: 2*float32(y)/h - 1,
	}
}

// Ray returns the origin and unit direction of the primary ray through pixel (x,y).
func (c Camera) Ray(x, y, width, height int) (ro, rd ms3.Vec) {
	uv := PixelUV(x, y, width, height)
	return c.Position, sdfray.UnitVec(ms3.Vec{X: uv.X, Y: uv.Y, Z: c.FOV})
}
