// Package migrations owns the schema of the SQLite database that holds the
// exam collection and user settings. The schema is one kv table; each
// numbered file under files/ moves it forward by one version.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

// ErrNoSchema means the kv table has never been created in this database.
var ErrNoSchema = errors.New("exam database has no kv schema")

// SchemaVersion returns the kv schema version recorded in db and the newest
// version this binary ships. A half-applied migration is reported as an error.
func SchemaVersion(db *sql.DB) (current, shipped uint, err error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, 0, err
	}
	// m is not closed: that would close db, which belongs to the store.

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, 0, ErrNoSchema
	case err != nil:
		return 0, 0, fmt.Errorf("reading kv schema version: %w", err)
	case dirty:
		return current, 0, fmt.Errorf("kv schema migration to version %d did not finish", current)
	}

	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return 0, 0, fmt.Errorf("reading embedded schema files: %w", err)
	}
	defer src.Close()

	shipped, err = lastVersion(src)
	if err != nil {
		return 0, 0, fmt.Errorf("reading embedded schema files: %w", err)
	}
	return current, shipped, nil
}

// CheckStatus returns nil only if db holds exactly the kv schema this binary
// ships.
func CheckStatus(db *sql.DB) error {
	current, shipped, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current < shipped {
		return fmt.Errorf("kv schema is at version %d, this build expects %d", current, shipped)
	}
	if current > shipped {
		return fmt.Errorf("kv schema version %d was written by a newer examtrack (this build knows %d)", current, shipped)
	}
	return nil
}

// MigrateUp creates or upgrades the kv table. The store calls it on every
// open, so a database that is already current is the normal case.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("upgrading kv schema: %w", err)
	}
	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema files: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("attaching migrator to sqlite: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating schema migrator: %w", err)
	}
	return m, nil
}

// lastVersion returns the highest version among the embedded schema files.
func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, err
		}
		v = next
	}
}
