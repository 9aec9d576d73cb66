// Package config loads the gatorlibrary YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"gatorlibrary/catalog"
)

// DefaultOutputSuffix replaces the input file's extension to name the report.
const DefaultOutputSuffix = "_output_file.txt"

var validate = validator.New()

// Config is the run configuration.
type Config struct {
	// WaitlistCapacity bounds the reservations held per book.
	WaitlistCapacity int `yaml:"waitlist_capacity" validate:"min=1,max=4096"`

	// OutputSuffix is appended to the input path, minus its extension, to
	// name the report file when no output path is given.
	OutputSuffix string `yaml:"output_suffix" validate:"required"`

	// VerifyInvariants checks every red-black invariant after each mutation
	// and aborts the run on the first violation.
	VerifyInvariants bool `yaml:"verify_invariants"`

	// MetricsFile, when set, receives the Prometheus text exposition of the
	// run's metrics when it finishes.
	MetricsFile string `yaml:"metrics_file"`

	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// TracingConfig selects where command spans are exported. "none" keeps the
// global no-op provider.
type TracingConfig struct {
	Exporter string `yaml:"exporter" validate:"oneof=none stdout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		WaitlistCapacity: catalog.DefaultWaitlistCapacity,
		OutputSuffix:     DefaultOutputSuffix,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{Exporter: "none"},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps Level onto slog. Unknown values map to Info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
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
