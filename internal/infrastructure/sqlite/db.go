// Package sqlite stores breathe preferences in a local SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/breathe/internal/infrastructure/migrations"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/preferences/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// pragmas are applied to every new connection in order.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// DB owns the preferences database connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, creating its directory, and migrates it
// to the current schema. An existing file is copied to {path}.bak first.
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		backup := path + ".bak"
		if err := copyFile(path, backup); err != nil {
			log.ErrorErr(log.CatDB, "Failed to back up database", err, "backup", backup)
			return nil, fmt.Errorf("backing up database: %w", err)
		}
		log.Debug(log.CatDB, "Backed up database", "backup", backup)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// foreign_keys and busy_timeout are per connection.
	conn.SetMaxOpenConns(1)
	if err := configure(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to initialize database", err, "path", path)
		return nil, err
	}

	log.Info(log.CatDB, "Database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func configure(conn *sql.DB) error {
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := migrations.RunMigrations(conn); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close releases the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	log.Debug(log.CatDB, "Closing database", "path", db.path)
	return db.conn.Close()
}

// Preferences returns the preferences repository backed by this database.
func (db *DB) Preferences() domain.Repository {
	return newPreferenceRepository(db.conn)
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// copyFile writes a copy of src to dst, replacing dst. A failed close on dst
// is reported so a truncated backup is never mistaken for a good one.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // G304: database path from config
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // G304: derived from database path
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing backup: %w", cerr)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
