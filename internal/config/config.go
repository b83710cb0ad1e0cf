package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Slice struct {
	Axis    string  `yaml:"axis"`    // x | y | z; empty disables slicing
	Offset  float32 `yaml:"offset"`  // plane offset along Axis
	Height  int     `yaml:"height"`  // image height in pixels
	Output  string  `yaml:"output"`  // PNG file name
	Normals bool    `yaml:"normals"` // color by surface normal instead of distance
}

type Config struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Workers  int    `yaml:"workers"` // 0 uses all CPUs
	Output   string `yaml:"output"`  // extension selects png, bmp or tiff
	Annotate string `yaml:"annotate"`
	LogLevel string `yaml:"log_level"` // zerolog level name, e.g. debug

	Slice Slice `yaml:"slice,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks values that were set. Zero values mean "not set" and are left to flag defaults.
func (c *Config) Validate() error {
	var errs []error
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("negative resolution %dx%d", c.Width, c.Height))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("negative workers %d", c.Workers))
	}
	switch c.Slice.Axis {
	case "", "x", "y", "z":
	default:
		errs = append(errs, fmt.Errorf("invalid slice axis %q", c.Slice.Axis))
	}
	if c.Slice.Height < 0 {
		errs = append(errs, fmt.Errorf("negative slice height %d", c.Slice.Height))
	}
	return errors.Join(errs...)
}
