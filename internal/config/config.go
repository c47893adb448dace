// Package config loads origamictl settings from defaults, an optional
// YAML file, and ORIGAMI_* environment variables, in that order of
// precedence (later layers win).
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/usr-ein/origami/internal/memo"
)

// Config is the root configuration for origamictl.
type Config struct {
	Cache   CacheConfig   `koanf:"cache"`
	Model   ModelConfig   `koanf:"model"`
	Logging LoggingConfig `koanf:"logging"`
}

// CacheConfig controls where memoized predictions live.
type CacheConfig struct {
	// Root is the directory holding per-model cache generations.
	Root string `koanf:"root"`
	// Backend is one of "badger", "sqlite" or "memory".
	Backend string `koanf:"backend"`
}

// ModelConfig carries training and prediction knobs.
type ModelConfig struct {
	// MaxLag is the autoregression window; 0 picks the engine default.
	MaxLag int `koanf:"max_lag"`
	// SkipOutputCheck disables the forecast integrity check.
	SkipOutputCheck bool `koanf:"skip_output_check"`
	// TimeColumn names the timestamp column in CSV inputs.
	TimeColumn string `koanf:"time_column"`
}

// LoggingConfig mirrors the zerolog setup knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Root:    "model_cache",
			Backend: memo.KindBadger,
		},
		Model: ModelConfig{
			MaxLag:          0,
			SkipOutputCheck: false,
			TimeColumn:      "sampling_time",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Validate rejects configurations the rest of the program cannot honor.
func (c *Config) Validate() error {
	if !memo.ValidKind(c.Cache.Backend) {
		return fmt.Errorf("cache.backend: unsupported backend %q", c.Cache.Backend)
	}
	if c.Cache.Root == "" {
		return fmt.Errorf("cache.root: must not be empty")
	}
	if c.Model.MaxLag < 0 {
		return fmt.Errorf("model.max_lag: must be >= 0, got %d", c.Model.MaxLag)
	}
	if c.Model.TimeColumn == "" {
		return fmt.Errorf("model.time_column: must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format: want \"json\" or \"console\", got %q", c.Logging.Format)
	}
	return nil
}

// NewLogger builds a zerolog logger from the logging section.
func (c *Config) NewLogger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Logging.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if c.Logging.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}
