// Package sdfaux bundles the steps around rendering a scene description: tracing it,
// annotating and encoding the result. It also renders cross sections of a scene's
// distance field for debugging.
package sdfaux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/soypat/sdfray/sceneio"
	"github.com/soypat/sdfray/trace"
)

// RenderConfig configures [Render]. Width and Height are the image size in pixels
// and must be positive.
type RenderConfig struct {
	Width, Height int
	// Workers sets the number of goroutines rendering rows. Zero uses all CPUs.
	Workers int
	// Output receives the encoded image. If nil the frame is rendered but not encoded.
	Output io.Writer
	Format Format
	// Annotation is drawn over the lower left corner of the image if not empty.
	Annotation string
	// Log receives progress and timing information. Nil disables logging.
	Log *zerolog.Logger
}

// Render is an auxiliary function that traces doc's scene with the reference tracer
// configuration, annotates and encodes the result as configured.
func Render(ctx context.Context, doc *sceneio.Document, cfg RenderConfig) (*trace.Frame, error) {
	if doc == nil || doc.Scene == nil {
		return nil, errors.New("Render requires a scene document")
	}
	log := cfg.Log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	tcfg := trace.DefaultConfig()
	tcfg.Workers = cfg.Workers
	tracer, err := trace.NewTracer(doc.Scene, doc.Environment, tcfg)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("objects", doc.Scene.Names()).Int("operations", len(doc.Scene.Operations())).Msg("scene loaded")

	watch := stopwatch()
	frame, err := tracer.RenderFrame(ctx, doc.Camera, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("rendering frame: %w", err)
	}
	hitPercent := percentUint64(uint64(frame.Stats.Hits), uint64(cfg.Width*cfg.Height))
	log.Info().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Dur("elapsed", watch()).
		Float32("hit_percent", hitPercent).
		Uint64("march_steps", frame.Stats.Steps).
		Msg("rendered frame")

	if cfg.Annotation != "" {
		watch = stopwatch()
		err = Annotate(frame.Image, cfg.Annotation, 0)
		if err != nil {
			return nil, fmt.Errorf("annotating frame: %w", err)
		}
		log.Debug().Dur("elapsed", watch()).Msg("annotated frame")
	}

	if cfg.Output != nil {
		watch = stopwatch()
		err = EncodeImage(cfg.Output, frame.Image, cfg.Format)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", cfg.Format, err)
		}
		log.Info().Str("output", outputName(cfg.Output)).Stringer("format", cfg.Format).Dur("elapsed", watch()).Msg("wrote image")
	}
	return frame, nil
}

// RenderFile renders the scene description in sceneFile and writes the image to
// outputFile in the format implied by its extension.
func RenderFile(ctx context.Context, sceneFile, outputFile string, cfg RenderConfig) error {
	doc, err := sceneio.ReadFile(sceneFile)
	if err != nil {
		return err
	}
	format, err := FormatFromFilename(outputFile)
	if err != nil {
		return err
	}
	fp, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer fp.Close()
	cfg.Output = fp
	cfg.Format = format
	_, err = Render(ctx, doc, cfg)
	if err != nil {
		return err
	}
	return fp.Sync()
}

func outputName(w io.Writer) string {
	if fp, ok := w.(*os.File); ok {
		return fp.Name()
	}
	return "writer"
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

func percentUint64(num, denom uint64) float32 {
	if denom == 0 {
		return 0
	}
	return float32(10000*num/denom) / 100
}
