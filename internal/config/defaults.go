package config

const (
	defaultConfigPath         = "~/.config/nc2bin/config.toml"
	projectConfigName         = "nc2bin.toml"
	defaultHeaderAttribute    = "legacy_binary_header"
	defaultStartTimeAttribute = "time_coverage_start"
	defaultManifestFile       = "~/.local/share/nc2bin/manifest.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Conversion: Conversion{
			HeaderAttribute:    defaultHeaderAttribute,
			StartTimeAttribute: defaultStartTimeAttribute,
			Overwrite:          true,
			LockOutputDir:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Manifest: Manifest{
			Path: defaultManifestPath(),
		},
	}
}
