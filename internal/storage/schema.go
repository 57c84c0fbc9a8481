// ABOUTME: Versioned schema management using embedded golang-migrate migrations.
// ABOUTME: Any version mismatch or dirty state drops all data and recreates the schema.
package storage

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// SchemaVersion is the latest embedded migration version.
const SchemaVersion uint = 1

const migrationsTable = "schema_migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrate brings the schema to SchemaVersion. A database at any other
// version, or left dirty by a failed migration, is reset destructively.
func (d *DB) migrate() error {
	m, err := d.newMigrator()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		// fresh database
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty || version != SchemaVersion:
		d.logger.Warn("schema version mismatch, resetting database",
			"path", d.dbPath, "found", version, "dirty", dirty, "want", SchemaVersion)
		if err := d.dropAll(); err != nil {
			return err
		}
		if m, err = d.newMigrator(); err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// newMigrator builds a migrator over the open connection. It is never
// closed, since closing it would close d.db.
func (d *DB) newMigrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(d.db, &migratesqlite.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// dropAll removes every user table, including the migrations table.
func (d *DB) dropAll() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("list tables: %w", err)
	}
	_ = rows.Close()

	// Children first so the implicit deletes never trip a foreign key.
	if _, err := d.db.Exec("DROP TABLE IF EXISTS workouts"); err != nil {
		return fmt.Errorf("drop workouts: %w", err)
	}
	for _, t := range tables {
		if _, err := d.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %q", t)); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return nil
}
