// Package assets embeds the schema migrations so the binary can migrate a
// database without files on disk. Each SQL dialect has its own directory.
package assets

import (
	"embed"
	"fmt"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var FS embed.FS

// MigrationsDir returns the directory in FS holding migrations for driver.
func MigrationsDir(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "migrations/sqlite", nil
	case "postgres":
		return "migrations/postgres", nil
	}
	return "", fmt.Errorf("no migrations for driver %q", driver)
}
