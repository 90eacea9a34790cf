// Package config loads the mindflux command configuration from YAML.
//
// Order of precedence: defaults, then the file, then MINDFLUX_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/mindflux"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var configValidate = validator.New()

// Config is the full command configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

// StoreConfig locates the badger database.
type StoreConfig struct {
	Path     string `yaml:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `yaml:"in_memory"`
}

// SchedulerConfig seeds the tie-break.
type SchedulerConfig struct {
	Seed int64 `yaml:"seed"` // zero → clock
}

// LimitsConfig bounds the daily queue. Zero means the library default,
// negative means unlimited.
type LimitsConfig struct {
	NewPerDay     int           `yaml:"new_per_day"`
	ReviewsPerDay int           `yaml:"reviews_per_day"`
	LearnAhead    time.Duration `yaml:"learn_ahead"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{Path: defaultStorePath()},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".mindflux", "db")
	}
	return filepath.Join(".mindflux", "db")
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MINDFLUX_STORE_PATH"); ok {
		c.Store.Path = v
	}
	if v, ok := lookup("MINDFLUX_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("MINDFLUX_LOG_FORMAT"); ok {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := lookup("MINDFLUX_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: MINDFLUX_SEED: %v", ErrInvalidConfig, err)
		}
		c.Scheduler.Seed = seed
	}
	return nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DueLimits converts the limits for the due index.
func (c Config) DueLimits() mindflux.DueLimits {
	return mindflux.DueLimits{
		NewPerDay:     c.Limits.NewPerDay,
		ReviewsPerDay: c.Limits.ReviewsPerDay,
		LearnAhead:    c.Limits.LearnAhead,
	}
}

// Level returns the slog level named by Log.Level.
func (c Config) Level() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the logger described by Log, writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
