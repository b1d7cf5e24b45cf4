package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
// Existing catalogues must be deleted and re-imported after a bump.
const schemaVersion = 1

// catalogTables are the tables a catalogue of the current version must have.
var catalogTables = []string{
	"systems", "games", "tracks", "track_games",
	"playlists", "playlist_games", "playlist_tracks",
}

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	version, found, err := s.readSchemaVersion(ctx)
	if err != nil {
		return err
	}
	if !found {
		return withTx(ctx, s.db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		})
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: catalogue %s has version %d, expected %d (delete it and import again)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	}
	return s.checkTables(ctx)
}

// readSchemaVersion reports the recorded version. found is false for a
// database that has never been initialized.
func (s *Store) readSchemaVersion(ctx context.Context) (int, bool, error) {
	var tables int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tables)
	if err != nil {
		return 0, false, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, true, nil
}

// checkTables rejects a versioned catalogue that lost one of its tables.
func (s *Store) checkTables(ctx context.Context) error {
	for _, table := range catalogTables {
		var n int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: catalogue %s is missing table %s (delete it and import again)",
				ErrSchemaMismatch, s.path, table)
		}
	}
	return nil
}
