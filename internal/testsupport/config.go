// Package testsupport provides shared fixtures for package tests: configs
// seeded with per-test temp directories, editing sessions with a sized
// viewport, and a scriptable generation service.
package testsupport

import (
	"path/filepath"
	"testing"

	"reel/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. The API binds an ephemeral port so tests can run in parallel.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SpoolDir = filepath.Join(base, "spool")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.Socket = filepath.Join(base, "reel.sock")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAPIToken sets the bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}

// WithGenerationKey sets the generation service API key.
func WithGenerationKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Generation.APIKey = key
	}
}
