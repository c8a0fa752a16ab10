// Package config loads planproj settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/chazu/planproj/pkg/geom"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	LinearTol   float64       `env:"PLANPROJ_LINEAR_TOL"   envDefault:"1e-9"`
	AngularTol  float64       `env:"PLANPROJ_ANGULAR_TOL"  envDefault:"1e-9"`
	FlattenTol  float64       `env:"PLANPROJ_FLATTEN_TOL"  envDefault:"1e-3"`
	TileMode    bool          `env:"PLANPROJ_TILE_MODE"    envDefault:"true"`
	EvalTimeout time.Duration `env:"PLANPROJ_EVAL_TIMEOUT" envDefault:"5s"`
	LogLevel    string        `env:"PLANPROJ_LOG_LEVEL"`
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		LinearTol:   1e-9,
		AngularTol:  1e-9,
		FlattenTol:  1e-3,
		TileMode:    true,
		EvalTimeout: 5 * time.Second,
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive tolerances and timeouts and unknown log
// levels.
func (c Config) Validate() error {
	switch {
	case c.LinearTol <= 0:
		return fmt.Errorf("config: linear tolerance must be positive, got %g", c.LinearTol)
	case c.AngularTol <= 0:
		return fmt.Errorf("config: angular tolerance must be positive, got %g", c.AngularTol)
	case c.FlattenTol <= 0:
		return fmt.Errorf("config: flatten tolerance must be positive, got %g", c.FlattenTol)
	case c.EvalTimeout <= 0:
		return fmt.Errorf("config: eval timeout must be positive, got %s", c.EvalTimeout)
	}
	if _, _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Tolerance returns the join tolerance.
func (c Config) Tolerance() geom.Tolerance {
	return geom.Tolerance{Point: c.LinearTol, Vector: c.AngularTol}
}

// Level parses LogLevel. ok is false when logging stays off.
func (c Config) Level() (level slog.Level, ok bool, err error) {
	s := strings.TrimSpace(c.LogLevel)
	if s == "" || strings.EqualFold(s, "off") {
		return 0, false, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, false, fmt.Errorf("config: log level: %w", err)
	}
	return level, true, nil
}
