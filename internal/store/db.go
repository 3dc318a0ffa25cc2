// internal/store/db.go
//
// Database bootstrap helpers.
// Responsibilities:
//   - Opening SQLite (default) or PostgreSQL with safe defaults.
//   - Applying the embedded migrations from the assets package with
//     golang-migrate (idempotent; applied versions are recorded in
//     schema_migrations).

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"github.com/ayresjulia/jobly/assets"
)

// sqliteParams: busy timeout, WAL journaling, per-connection foreign keys.
const sqliteParams = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// Open opens and pings a database for driver ("sqlite3" or "postgres").
//
// For SQLite the DSN is a file path; its parent directory is created if
// missing (e.g. ./data/jobly.db).
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite3":
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + sqliteParams
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate brings the schema at dsn up to the latest embedded version.
// It uses its own connection, closed before returning.
func Migrate(driver, dsn string) error {
	dir, err := assets.MigrationsDir(driver)
	if err != nil {
		return err
	}
	src, err := iofs.New(assets.FS, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	var drv database.Driver
	switch driver {
	case "sqlite3":
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case "postgres":
		drv, err = migratepg.WithInstance(db, &migratepg.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, drv)
	if err != nil {
		_ = drv.Close()
		return fmt.Errorf("migration init: %w", err)
	}
	defer m.Close() // closes db through drv
	m.Log = migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if v, dirty, err := m.Version(); err == nil {
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema up to date")
	}
	return nil
}

// migrateLogger routes golang-migrate output through zerolog.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Info().Str("component", "migrate").Msgf(strings.TrimSpace(format), v...)
}

func (migrateLogger) Verbose() bool { return false }
