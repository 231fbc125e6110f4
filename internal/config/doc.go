// Package config loads, normalizes, and validates nc2bin configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the NC2BIN_OUTPUT_DIR environment
// fallback. The Config type centralizes the knobs the CLI and conversion
// pipeline need so attribute names and output locations are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
