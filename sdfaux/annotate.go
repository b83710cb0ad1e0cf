package sdfaux

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const defaultAnnotationSize = 12

var regularFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

// Annotate draws a single line of text over the lower left corner of img using the
// Go Regular font. Text is white with a dark drop shadow so it reads over any scene.
// A non-positive size selects a 12 point font.
func Annotate(img draw.Image, text string, size float64) error {
	ttf, err := regularFont()
	if err != nil {
		return err
	}
	if size <= 0 {
		size = defaultAnnotationSize
	}
	bb := img.Bounds()
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(ttf)
	c.SetFontSize(size)
	c.SetClip(bb)
	c.SetDst(img)
	c.SetHinting(font.HintingFull)

	margin := int(size / 3)
	baseline := freetype.Pt(bb.Min.X+margin, bb.Max.Y-margin)
	shadow := baseline
	shadow.X += c.PointToFixed(1)
	shadow.Y += c.PointToFixed(1)

	c.SetSrc(image.NewUniform(color.RGBA{A: 200}))
	if _, err = c.DrawString(text, shadow); err != nil {
		return err
	}
	c.SetSrc(image.White)
	_, err = c.DrawString(text, baseline)
	return err
}
