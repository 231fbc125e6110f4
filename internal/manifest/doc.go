// Package manifest records conversion runs and the files they wrote in a
// SQLite database.
//
// Each invocation of the converter becomes one row in runs keyed by its run
// ID; every legacy binary file it wrote becomes a row in outputs with its size
// and SHA-256 digest. The database is optional and only opened when the
// manifest is enabled in configuration.
package manifest
