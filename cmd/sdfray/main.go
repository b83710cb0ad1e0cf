package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soypat/sdfray/internal/config"
	"github.com/soypat/sdfray/sceneio"
	"github.com/soypat/sdfray/sdfaux"
	"github.com/soypat/sdfray/sdfeval"
)

func main() {
	// ---- Flags (settings file fills in any flag not given explicitly) ----
	var (
		scenePath    = flag.String("scene", "scene.json", "path to JSON scene description")
		output       = flag.String("o", "render.png", "output image; extension selects png, bmp or tiff")
		width        = flag.Int("width", 640, "image width in pixels")
		height       = flag.Int("height", 480, "image height in pixels")
		workers      = flag.Int("workers", 0, "rendering goroutines, 0 uses all CPUs")
		configPath   = flag.String("config", "", "path to YAML render settings")
		annotate     = flag.String("annotate", "", "text drawn over the lower left corner of the image")
		sliceAxis    = flag.String("slice", "", "also render the distance field cross section normal to axis x, y or z")
		sliceOffset  = flag.Float64("slice-offset", 0, "offset of the cross section plane along its axis")
		sliceHeight  = flag.Int("slice-height", 512, "cross section image height in pixels")
		sliceOutput  = flag.String("slice-o", "slice.png", "cross section PNG output")
		sliceNormals = flag.Bool("slice-normals", false, "color the cross section by surface normal instead of distance")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// ---- Load settings (optional) ----
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		override := func(name string, apply func()) {
			if !set[name] {
				apply()
			}
		}
		if cfg.Width > 0 {
			override("width", func() { *width = cfg.Width })
		}
		if cfg.Height > 0 {
			override("height", func() { *height = cfg.Height })
		}
		if cfg.Workers > 0 {
			override("workers", func() { *workers = cfg.Workers })
		}
		if cfg.Output != "" {
			override("o", func() { *output = cfg.Output })
		}
		if cfg.Annotate != "" {
			override("annotate", func() { *annotate = cfg.Annotate })
		}
		if cfg.Slice.Axis != "" {
			override("slice", func() { *sliceAxis = cfg.Slice.Axis })
			override("slice-offset", func() { *sliceOffset = float64(cfg.Slice.Offset) })
		}
		if cfg.Slice.Height > 0 {
			override("slice-height", func() { *sliceHeight = cfg.Slice.Height })
		}
		if cfg.Slice.Output != "" {
			override("slice-o", func() { *sliceOutput = cfg.Slice.Output })
		}
		if cfg.Slice.Normals {
			override("slice-normals", func() { *sliceNormals = true })
		}
		if cfg.LogLevel != "" && !*verbose {
			lvl, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				log.Warn().Err(err).Str("log_level", cfg.LogLevel).Msg("ignoring log level")
			} else {
				zerolog.SetGlobalLevel(lvl)
			}
		}
		log.Debug().Str("path", *configPath).Msg("loaded settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := sceneio.ReadFile(*scenePath)
	if err != nil {
		log.Fatal().Err(err).Msg("reading scene")
	}
	format, err := sdfaux.FormatFromFilename(*output)
	if err != nil {
		log.Fatal().Err(err).Msg("choosing output format")
	}
	fp, err := os.Create(*output)
	if err != nil {
		log.Fatal().Err(err).Msg("creating output")
	}
	_, err = sdfaux.Render(ctx, doc, sdfaux.RenderConfig{
		Width:      *width,
		Height:     *height,
		Workers:    *workers,
		Output:     fp,
		Format:     format,
		Annotation: *annotate,
		Log:        &log.Logger,
	})
	fp.Close()
	if err != nil {
		os.Remove(*output)
		log.Fatal().Err(err).Str("scene", *scenePath).Msg("render failed")
	}

	if *sliceAxis != "" {
		axis, err := sdfeval.ParseAxis(*sliceAxis)
		if err != nil {
			log.Fatal().Err(err).Msg("slice axis")
		}
		start := time.Now()
		err = sdfaux.RenderSlicePNG(*sliceOutput, doc.Scene, axis, float32(*sliceOffset), *sliceHeight, *sliceNormals)
		if err != nil {
			log.Fatal().Err(err).Msg("rendering cross section")
		}
		log.Info().Str("output", *sliceOutput).Stringer("axis", axis).Bool("normals", *sliceNormals).Dur("elapsed", time.Since(start)).Msg("wrote cross section")
	}
}
