package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeLogging()
	return c.normalizeManifest()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("NC2BIN_OUTPUT_DIR"); ok {
			c.Paths.OutputDir = value
		}
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.HeaderAttribute = strings.TrimSpace(c.Conversion.HeaderAttribute)
	if c.Conversion.HeaderAttribute == "" {
		c.Conversion.HeaderAttribute = defaultHeaderAttribute
	}
	c.Conversion.StartTimeAttribute = strings.TrimSpace(c.Conversion.StartTimeAttribute)
	if c.Conversion.StartTimeAttribute == "" {
		c.Conversion.StartTimeAttribute = defaultStartTimeAttribute
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeManifest() error {
	c.Manifest.Path = strings.TrimSpace(c.Manifest.Path)
	if c.Manifest.Path == "" {
		c.Manifest.Path = defaultManifestPath()
	}
	var err error
	if c.Manifest.Path, err = expandPath(c.Manifest.Path); err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	return nil
}
