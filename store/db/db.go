package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/JohnBravos/bookhub-manager/version"
)

type DB struct {
	*sql.DB
	path string
}

// NewDB opens the sqlite database at path. Transactions take the write lock
// up front (_txlock=immediate) so copy-count mutations and queue updates for
// one book serialize at the storage layer.
func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	d, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)", path))
	if err != nil {
		return nil, err
	}

	return &DB{d, path}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST_SCHEMA.sql"

// Migrate applies the latest schema when the database is empty and records
// the schema version in migration_history.
func (d *DB) Migrate(ctx context.Context) error {
	currentVersion := version.GetCurrentVersion()

	exist, err := d.checkTableExists(ctx, "migration_history")
	if err != nil {
		return errors.Wrap(err, "failed to check database table")
	}
	if !exist {
		if err := d.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
	}

	if err := d.upsertMigrationHistory(ctx, currentVersion); err != nil {
		return errors.Wrap(err, "failed to upsert migration history")
	}
	return nil
}

// Reset removes the database file. Only used by tests and the reset command.
func (d *DB) Reset() error {
	if err := d.Close(); err != nil {
		return err
	}
	return os.Remove(d.path)
}

func (d *DB) applyLatestSchema(ctx context.Context) error {
	latestSchemaPath := fmt.Sprintf("migration/%s", latestSchemaFileName)
	buf, err := migrationFS.ReadFile(latestSchemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaPath)
	}

	stmt := string(buf)
	if err := d.execute(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to apply latest schema: %s", stmt)
	}
	return nil
}

func (d *DB) checkTableExists(ctx context.Context, table string) (bool, error) {
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	var count int
	if err := d.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (d *DB) upsertMigrationHistory(ctx context.Context, v string) error {
	stmt := `
		INSERT INTO migration_history (
			version
		)
		VALUES (?)
		ON CONFLICT(version) DO UPDATE
		SET
			version=EXCLUDED.version
	`
	_, err := d.ExecContext(ctx, stmt, v)
	return err
}

// execute runs a single SQL statement within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}
