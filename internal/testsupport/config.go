package testsupport

import (
	"path/filepath"
	"testing"

	"wxunpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp log directory per
// test and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHistory toggles the history ledger on the test config.
func WithHistory(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Unpack.History = enabled
	}
}

// WithCleanOld toggles pre-decode cleanup on the test config.
func WithCleanOld(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Unpack.CleanOld = enabled
	}
}
