package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"nc2bin/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("NC2BIN_OUTPUT_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "nc2bin", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantManifest := filepath.Join(tempHome, ".local", "share", "nc2bin", "manifest.db")
	if cfg.Manifest.Path != wantManifest {
		t.Fatalf("unexpected manifest path: got %q want %q", cfg.Manifest.Path, wantManifest)
	}
	if cfg.Manifest.Enabled {
		t.Fatal("expected manifest disabled by default")
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Conversion.HeaderAttribute != "legacy_binary_header" {
		t.Fatalf("unexpected header attribute %q", cfg.Conversion.HeaderAttribute)
	}
	if cfg.Conversion.StartTimeAttribute != "time_coverage_start" {
		t.Fatalf("unexpected start time attribute %q", cfg.Conversion.StartTimeAttribute)
	}
	if !cfg.Conversion.Overwrite || !cfg.Conversion.LockOutputDir {
		t.Fatalf("unexpected conversion defaults %+v", cfg.Conversion)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nc2bin.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Conversion struct {
			HeaderAttribute string `toml:"header_attribute"`
			Overwrite       bool   `toml:"overwrite"`
		} `toml:"conversion"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "bins")
	custom.Conversion.HeaderAttribute = "  hdr  "
	custom.Conversion.Overwrite = false
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Paths.OutputDir != custom.Paths.OutputDir {
		t.Fatalf("unexpected output dir %q", cfg.Paths.OutputDir)
	}
	if cfg.Conversion.HeaderAttribute != "hdr" {
		t.Fatalf("expected trimmed header attribute, got %q", cfg.Conversion.HeaderAttribute)
	}
	if cfg.Conversion.Overwrite {
		t.Fatal("expected overwrite disabled by config")
	}
	if cfg.Conversion.StartTimeAttribute != "time_coverage_start" {
		t.Fatalf("expected default start time attribute, got %q", cfg.Conversion.StartTimeAttribute)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadMissingCustomPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Conversion.HeaderAttribute != config.Default().Conversion.HeaderAttribute {
		t.Fatalf("unexpected header attribute %q", cfg.Conversion.HeaderAttribute)
	}
}

func TestLoadOutputDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NC2BIN_OUTPUT_DIR", dir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.OutputDir != dir {
		t.Fatalf("expected output dir from env, got %q", cfg.Paths.OutputDir)
	}
	if got := cfg.OutputDir("."); got != dir {
		t.Fatalf("OutputDir fallback ignored configured value: %q", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "format", body: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "level", body: "[logging]\nlevel = \"verbose\"\n", want: "logging.level"},
		{name: "syntax", body: "[logging\n", want: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nc2bin.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestOutputDirFallback(t *testing.T) {
	cfg := config.Default()
	if got := cfg.OutputDir("./extracted_bins"); got != "./extracted_bins" {
		t.Fatalf("expected fallback, got %q", got)
	}
	var nilCfg *config.Config
	if got := nilCfg.OutputDir("."); got != "." {
		t.Fatalf("expected fallback for nil config, got %q", got)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/bins")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "bins") {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Manifest.Enabled {
		t.Fatal("sample config should leave the manifest disabled")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = "/data/bins"

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "output_dir = '/data/bins'") {
		t.Fatalf("encoded config missing output_dir:\n%s", buf.String())
	}
}
