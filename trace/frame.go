package trace

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// Frame is a rendered image: linear colors and their RGBA8 quantization.
type Frame struct {
	Width, Height int
	// Linear holds the unclamped linear color of each pixel in row-major order.
	Linear []ms3.Vec
	// Image is the quantized frame.
	Image *image.RGBA
	Stats FrameStats
}

// FrameStats counts the work done to render a frame.
type FrameStats struct {
	Hits   int
	Misses int
	// Steps is the total number of sphere tracing iterations of primary rays.
	Steps uint64
}

// At returns the linear color of pixel (x,y).
func (f *Frame) At(x, y int) ms3.Vec {
	return f.Linear[y*f.Width+x]
}

// RenderFrame renders scene seen through cam lit by env with the reference
// configuration. See [Tracer.RenderFrame].
func RenderFrame(ctx context.Context, scene *sdfray.Scene, cam Camera, env Environment, width, height int) (*Frame, error) {
	if scene == nil {
		return nil, errors.New("nil scene")
	}
	t, err := NewTracer(scene, env, DefaultConfig())
	if err != nil {
		return nil, err
	}
	return t.RenderFrame(ctx, cam, width, height)
}

// Pixel returns the linear color of pixel (x,y) of a width×height image seen through cam.
func (t *Tracer) Pixel(cam Camera, x, y, width, height int) ms3.Vec {
	ro, rd := cam.Ray(x, y, width, height)
	return t.Trace(ro, rd)
}

// RenderFrame renders a width×height frame seen through cam. Rows are distributed
// among Config.Workers goroutines; every pixel is computed independently so the
// result does not depend on the worker count. If ctx is cancelled before all rows
// are rendered the frame is abandoned and ctx's error is returned.
func (t *Tracer) RenderFrame(ctx context.Context, cam Camera, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame resolution %dx%d", width, height)
	} else if !(cam.FOV > 0) || math32.IsInf(cam.FOV, 0) {
		return nil, fmt.Errorf("invalid camera FOV %g", cam.FOV)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := &Frame{
		Width:  width,
		Height: height,
		Linear: make([]ms3.Vec, width*height),
		Image:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	var hits, steps atomic.Uint64
	rows := make(chan int)
	var wg sync.WaitGroup
	workers := min(t.cfg.workers(), height)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				h, s := t.renderRow(f, cam, y)
				hits.Add(h)
				steps.Add(s)
			}
		}()
	}
feed:
	for y := 0; y < height; y++ {
		select {
		case <-ctx.Done():
			break feed
		case rows <- y:
		}
	}
	close(rows)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nhits := int(hits.Load())
	f.Stats = FrameStats{Hits: nhits, Misses: width*height - nhits, Steps: steps.Load()}
	return f, nil
}

func (t *Tracer) renderRow(f *Frame, cam Camera, y int) (hits, steps uint64) {
	off := y * f.Width
	pix := f.Image.Pix[y*f.Image.Stride:]
	for x := 0; x < f.Width; x++ {
		ro, rd := cam.Ray(x, y, f.Width, f.Height)
		h := t.March(ro, rd)
		c := t.Color(h, rd)
		if h.Hit {
			hits++
		}
		steps += uint64(h.Steps)
		f.Linear[off+x] = c
		q := QuantizeColor(c)
		i := 4 * x
		pix[i+0] = q.R
		pix[i+1] = q.G
		pix[i+2] = q.B
		pix[i+3] = q.A
	}
	return hits, steps
}
