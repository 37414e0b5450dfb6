package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const versionTimeFormat = "20060102150405"

// MigrationURL builds the golang-migrate database URL for a driver DSN.
func MigrationURL(driver, dsn string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql://" + dsn, nil
	case "postgres":
		// lib/pq accepts postgres:// URLs, which golang-migrate expects as well.
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// MigrateUp applies every pending migration in dir. It reports whether anything changed.
func MigrateUp(dir, driver, dsn string) (bool, error) {
	url, err := MigrationURL(driver, dsn)
	if err != nil {
		return false, err
	}
	m, err := migrate.New(fmt.Sprintf("file://%s", dir), url)
	if err != nil {
		return false, fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migrate up: %w", err)
	}
	return true, nil
}

// CreateMigration writes an empty up/down pair named after now and returns their paths.
func CreateMigration(dir, name string, now time.Time) (string, string, error) {
	version := now.Format(versionTimeFormat)
	up := filepath.Join(dir, fmt.Sprintf("%s_%s.up.sql", version, name))
	down := filepath.Join(dir, fmt.Sprintf("%s_%s.down.sql", version, name))

	if err := os.WriteFile(up, []byte{}, 0644); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(down, []byte{}, 0644); err != nil {
		return "", "", err
	}
	return up, down, nil
}
