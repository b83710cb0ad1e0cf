package sdfaux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray/sdfeval"
	"github.com/soypat/sdfray/trace"
)

// ImageRendererSDF2 converts 2D SDFs to images.
type ImageRendererSDF2 struct {
	conv func(f float32) color.Color
	pos  []ms2.Vec
	dist []float32
}

// NewImageRendererSDF2 instances a new [ImageRendererSDF2] to render images from 2D SDFs. A nil float->color conversion
// function results in [ColorConversionBinary].
func NewImageRendererSDF2(evalBufferSize int, conversion func(float32) color.Color) (*ImageRendererSDF2, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = ColorConversionBinary
	}
	ir := &ImageRendererSDF2{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}
	return ir, nil
}

// Render maps the SDF2's bounds onto img and renders it one pixel column at a time.
// It uses userData as an argument to all [sdfeval.SDF2.EvaluateDistances] calls.
func (ir *ImageRendererSDF2) Render(sdf sdfeval.SDF2, img draw.Image, userData any) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if len(ir.dist) < dyi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image columns (%d)", len(ir.dist), dyi)
	}
	bb := sdf.Bounds()
	sz := ms2.Sub(bb.Max, bb.Min)
	dx := sz.X / float32(dxi)
	dy := sz.Y / float32(dyi)
	bb.Min = ms2.Add(bb.Min, ms2.Vec{X: dx / 2, Y: dy / 2}) // Offset to pixel centers.
	for i := 0; i < dxi; i++ {
		x := float32(i)*dx + bb.Min.X
		err := ir.renderColumn(sdf, i, x, bb.Min.Y, dy, imgBB, img, userData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ir *ImageRendererSDF2) renderColumn(sdf sdfeval.SDF2, col int, x, ymin, dy float32, imgBB image.Rectangle, img draw.Image, userData any) error {
	dyi := imgBB.Dy()
	for j := 0; j < dyi; j++ {
		y := float32(j)*dy + ymin
		ir.pos[j] = ms2.Vec{X: x, Y: y}
	}
	err := sdf.EvaluateDistances(ir.pos[:dyi], ir.dist[:dyi], userData)
	if err != nil {
		return err
	}
	conv := ir.conv
	for j := 0; j < dyi; j++ {
		img.Set(col+imgBB.Min.X, j+imgBB.Min.Y, conv(ir.dist[j]))
	}
	return nil
}

// RenderSlice renders the cross section of s normal to axis at offset. The image width
// is sized from picHeight to preserve the aspect ratio of the section's bounds.
// If a nil color conversion function is passed then [ColorConversionInigoQuilez] is used.
func RenderSlice(s sdfeval.SDF3, axis sdfeval.Axis, offset float32, picHeight int, colorConversion func(float32) color.Color) (*image.RGBA, error) {
	slice, img, err := newSliceImage(s, axis, offset, picHeight)
	if err != nil {
		return nil, err
	}
	if colorConversion == nil {
		bb := slice.Bounds()
		colorConversion = ColorConversionInigoQuilez(math32.Hypot(bb.Max.X-bb.Min.X, bb.Max.Y-bb.Min.Y) / 3)
	}
	renderer, err := NewImageRendererSDF2(max(4096, picHeight), colorConversion)
	if err != nil {
		return nil, err
	}
	err = renderer.Render(slice, img, nil)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// RenderNormalSlice renders the surface normals of s sampled over the cross section
// normal to axis at offset. Normal components are mapped from [-1,1] to [0,255] in the
// red, green and blue channels. Pixels are laid out as in [RenderSlice].
func RenderNormalSlice(s sdfeval.SDF3, axis sdfeval.Axis, offset float32, picHeight int) (*image.RGBA, error) {
	slice, img, err := newSliceImage(s, axis, offset, picHeight)
	if err != nil {
		return nil, err
	}
	bb := slice.Bounds()
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dx := (bb.Max.X - bb.Min.X) / float32(w)
	dy := (bb.Max.Y - bb.Min.Y) / float32(h)
	pos := make([]ms3.Vec, h)
	normals := make([]ms3.Vec, h)
	for i := 0; i < w; i++ {
		x := bb.Min.X + (float32(i)+0.5)*dx
		for j := range pos {
			pos[j] = slice.To3D(ms2.Vec{X: x, Y: bb.Min.Y + (float32(j)+0.5)*dy})
		}
		err = sdfeval.Normals(s, pos, normals, trace.DefaultNormalEpsilon, nil)
		if err != nil {
			return nil, err
		}
		for j, n := range normals {
			img.SetRGBA(i, j, trace.QuantizeColor(ms3.Scale(0.5, ms3.AddScalar(1, n))))
		}
	}
	return img, nil
}

func newSliceImage(s sdfeval.SDF3, axis sdfeval.Axis, offset float32, picHeight int) (*sdfeval.Slice, *image.RGBA, error) {
	if picHeight <= 0 {
		return nil, nil, fmt.Errorf("invalid slice image height %d", picHeight)
	}
	slice, err := sdfeval.NewSlice(s, axis, offset)
	if err != nil {
		return nil, nil, err
	}
	bb := slice.Bounds()
	sz := ms2.Sub(bb.Max, bb.Min)
	if !(sz.X > 0 && sz.Y > 0) {
		return nil, nil, fmt.Errorf("degenerate slice bounds %+v", bb)
	}
	pixPerUnit := float32(picHeight) / sz.Y
	picWidth := max(1, int(math32.Round(pixPerUnit*sz.X)))
	return slice, image.NewRGBA(image.Rect(0, 0, picWidth, picHeight)), nil
}

// RenderSlicePNG renders a cross section of s with [RenderSlice] and saves the result
// to a PNG file with said filename. If normals is set the cross section is rendered
// with [RenderNormalSlice] instead.
func RenderSlicePNG(filename string, s sdfeval.SDF3, axis sdfeval.Axis, offset float32, picHeight int, normals bool) error {
	var img *image.RGBA
	var err error
	if normals {
		img, err = RenderNormalSlice(s, axis, offset, picHeight)
	} else {
		img, err = RenderSlice(s, axis, offset, picHeight, nil)
	}
	if err != nil {
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}
