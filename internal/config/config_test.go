package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatorlibrary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 20, cfg.WaitlistCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
waitlist_capacity: 5
verify_invariants: true
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.WaitlistCapacity)
	assert.True(t, cfg.VerifyInvariants)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	// untouched fields keep their defaults
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultOutputSuffix, cfg.OutputSuffix)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero capacity", "waitlist_capacity: 0\n"},
		{"huge capacity", "waitlist_capacity: 100000\n"},
		{"empty suffix", "output_suffix: \"\"\n"},
		{"bad level", "log:\n  level: verbose\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"bad exporter", "tracing:\n  exporter: jaeger\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
		})
	}
}

func TestLoadTracingExporter(t *testing.T) {
	cfg, err := Load(writeConfig(t, "tracing:\n  exporter: stdout\n"))
	require.NoError(t, err)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "waitlist_capacity: [1, 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse the config file")
}

func TestDefaultRoundTripsThroughYAML(t *testing.T) {
	data, err := yaml.Marshal(Default())
	require.NoError(t, err)

	cfg, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "info"}.SlogLevel())
}
