package manifest

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

// schema.sql creates a fresh database at schemaVersion.
//
//go:embed schema.sql
var schemaSQL string

const schemaVersion = 2

// migrations[v] upgrades a database from version v to v+1. A database older
// than the oldest entry cannot be upgraded.
var migrations = map[int][]string{
	// Version 2 records the absolute output directory of each run and
	// indexes outputs by path for verification lookups.
	1: {
		"ALTER TABLE runs ADD COLUMN output_dir TEXT",
		"CREATE INDEX IF NOT EXISTS idx_outputs_path ON outputs(path)",
	},
}

// ErrSchemaMismatch indicates a manifest whose schema this build cannot use.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("%w: %s has version %d, newer than this nc2bin supports (%d); upgrade nc2bin or set manifest.path to a new file",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return s.migrate(ctx, version)
}

// migrate applies every step from version up to schemaVersion in one
// transaction, so a failed step leaves the manifest at its old version.
func (s *Store) migrate(ctx context.Context, version int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for v := version; v < schemaVersion; v++ {
		steps, ok := migrations[v]
		if !ok {
			return fmt.Errorf("%w: %s has version %d and cannot be upgraded to %d; move it aside and nc2bin will create a new manifest",
				ErrSchemaMismatch, s.path, v, schemaVersion)
		}
		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s from version %d: %w", s.path, v, err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, "UPDATE schema_version SET version = ?", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
