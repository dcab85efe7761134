// Package migrations applies the embedded breathe schema with golang-migrate.
//
// golang-migrate's bundled sqlite3 driver links mattn/go-sqlite3, which
// registers the same "sqlite3" driver name as ncruces/go-sqlite3. Driver
// implements database.Driver directly against an ncruces *sql.DB instead.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var embeddedMigrationsFS embed.FS

// MigrationsFS returns the embedded migration scripts.
func MigrationsFS() fs.FS {
	return embeddedMigrationsFS
}

// New builds a migrator for db over the embedded scripts.
func New(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(embeddedMigrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// RunMigrations applies all pending migrations. An up-to-date database is
// not an error.
func RunMigrations(db *sql.DB) error {
	m, err := New(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
