package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"nc2bin/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The manifest is disabled unless WithManifest is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = ""
	cfgVal.Manifest.Enabled = false
	cfgVal.Manifest.Path = filepath.Join(base, "manifest.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithManifest enables the conversion manifest under the config's temp root.
func WithManifest() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = true
	}
}

// WithOutputDir overrides the configured output directory. An empty dir
// falls back to the per-product defaults.
func WithOutputDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = dir
	}
}

// WithLogDir enables the file log sink under the config's temp root.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

// WriteConfig encodes cfg as TOML next to its temp directories and returns
// the file path, ready to pass to --config.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(BaseDir(cfg), "config.toml")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	defer file.Close()
	if err := cfg.Encode(file); err != nil {
		t.Fatalf("encode config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Manifest.Path)
}
