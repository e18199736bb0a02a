// Package config loads runtime settings from the environment
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name
const Prefix = "VIPATTERN_"

// Config holds engine and tool settings
type Config struct {
	// FrameRate caps presentation frames per second
	FrameRate  int           `env:"FRAME_RATE" envDefault:"60"`
	FixedStep  time.Duration `env:"FIXED_STEP" envDefault:"20ms"`
	MaxCatchUp int           `env:"MAX_CATCH_UP" envDefault:"5"`
	// TimeScale multiplies elapsed wall time before it reaches the world
	TimeScale float64 `env:"TIME_SCALE" envDefault:"1"`
	// CullRadius destroys entities that leave this distance from the origin, zero keeps them
	CullRadius float64 `env:"CULL_RADIUS" envDefault:"60"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	// LogFile receives logs while the terminal is owned by the renderer, empty discards
	LogFile string `env:"LOG_FILE"`

	LibraryPath string `env:"LIBRARY" envDefault:"patterns.db"`
	Audio       bool   `env:"AUDIO" envDefault:"false"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", c.FrameRate))
	}
	if c.FixedStep <= 0 {
		errs = append(errs, fmt.Errorf("fixed step must be positive, got %s", c.FixedStep))
	}
	if c.MaxCatchUp < 1 {
		errs = append(errs, fmt.Errorf("max catch-up must be at least 1, got %d", c.MaxCatchUp))
	}
	if c.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("time scale must not be negative, got %g", c.TimeScale))
	}
	if c.CullRadius < 0 {
		errs = append(errs, fmt.Errorf("cull radius must not be negative, got %g", c.CullRadius))
	}
	return errors.Join(errs...)
}

// FrameDuration is the target interval between presentation frames
func (c Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
