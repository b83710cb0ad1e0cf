// Package trace renders [sdfray.Scene]s by sphere tracing: it marches camera rays
// through the scene's distance field, shades hits with a Phong-like model with soft
// shadows and ambient occlusion, and quantizes the result to an RGBA image.
package trace

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray"
)

// Reference values of the integrator. Renders only match reference images with these.
const (
	DefaultMaxSteps      = 500
	DefaultHitEpsilon    = 1e-3
	DefaultMaxDistance   = sdfray.MaxDistance
	DefaultNormalEpsilon = 1e-3
)

// Field is a colored signed distance field such as [sdfray.Scene].
type Field interface {
	Evaluate(p ms3.Vec) sdfray.Sample
}

// Config configures a [Tracer]. The zero value is not valid; start from [DefaultConfig].
type Config struct {
	// MaxSteps caps the sphere tracing iterations of a primary ray.
	MaxSteps int
	// HitEpsilon is the distance below which a ray is considered to have hit a surface.
	HitEpsilon float32
	// MaxDistance is the distance along a ray past which it is considered a miss.
	// Must be smaller than [sdfray.Sentinel].
	MaxDistance float32
	// NormalEpsilon is the central difference offset used for normal estimation.
	NormalEpsilon float32
	// Workers is the number of goroutines rendering rows of a frame. Zero uses runtime.NumCPU.
	Workers int
}

// DefaultConfig returns the reference integrator configuration.
func DefaultConfig() Config {
	return Config{
		MaxSteps:      DefaultMaxSteps,
		HitEpsilon:    DefaultHitEpsilon,
		MaxDistance:   DefaultMaxDistance,
		NormalEpsilon: DefaultNormalEpsilon,
	}
}

// Validate checks the configuration values are usable.
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxSteps <= 0:
		return errors.New("MaxSteps must be positive")
	case !(cfg.HitEpsilon > 0):
		return errors.New("HitEpsilon must be positive")
	case !(cfg.MaxDistance > 0):
		return errors.New("MaxDistance must be positive")
	case cfg.MaxDistance >= sdfray.Sentinel:
		return fmt.Errorf("MaxDistance %g must be below the scene register sentinel %d", cfg.MaxDistance, sdfray.Sentinel)
	case !(cfg.NormalEpsilon > 0):
		return errors.New("NormalEpsilon must be positive")
	case cfg.Workers < 0:
		return errors.New("negative Workers")
	}
	return nil
}

func (cfg Config) workers() int {
	if cfg.Workers == 0 {
		return runtime.NumCPU()
	}
	return cfg.Workers
}

// Tracer sphere traces and shades rays against a Field lit by an Environment.
// A Tracer is immutable and safe for concurrent use if its Field is.
type Tracer struct {
	field Field
	env   Environment
	cfg   Config
}

// NewTracer returns a Tracer for field lit by env.
func NewTracer(field Field, env Environment, cfg Config) (*Tracer, error) {
	if field == nil {
		return nil, errors.New("nil field")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracer config: %w", err)
	}
	return &Tracer{field: field, env: env, cfg: cfg}, nil
}

// Config returns the tracer's configuration.
func (t *Tracer) Config() Config { return t.cfg }

// Environment returns the environment the tracer shades with.
func (t *Tracer) Environment() Environment { return t.env }

func (t *Tracer) dist(p ms3.Vec) float32 {
	return t.field.Evaluate(p).Dist
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func pow3(v float32) float32 { return v * v * v }
