package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateManifest()
}

func (c *Config) validateConversion() error {
	if strings.TrimSpace(c.Conversion.HeaderAttribute) == "" {
		return errors.New("conversion.header_attribute must be set")
	}
	if strings.TrimSpace(c.Conversion.StartTimeAttribute) == "" {
		return errors.New("conversion.start_time_attribute must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateManifest() error {
	if c.Manifest.Enabled && strings.TrimSpace(c.Manifest.Path) == "" {
		return errors.New("manifest.path must be set when manifest.enabled is true")
	}
	return nil
}
