package trace

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Quantize converts a linear channel value to 8 bits: scaled by 255, clamped to
// [0,255] and rounded to nearest. NaN maps to 0.
func Quantize(v float32) uint8 {
	v *= 255
	if !(v > 0) {
		return 0
	} else if v >= 255 {
		return 255
	}
	return uint8(math32.Round(v))
}

// QuantizeColor converts a linear color to an opaque RGBA8 color.
func QuantizeColor(c ms3.Vec) color.RGBA {
	return color.RGBA{R: Quantize(c.X), G: Quantize(c.Y), B: Quantize(c.Z), A: 255}
}
