package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate brings the schema up to date from the SQL files at sourcePath.
// A database that is already current is not an error.
func Migrate(dsn, sourcePath string) error {
	m, err := migrate.New("file://"+sourcePath, dsn)
	if err != nil {
		return fmt.Errorf("opening migration source %s: %w", sourcePath, err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("applying migrations: %w", err)
	}

	ver, dirty, verErr := m.Version()
	if verErr != nil {
		return fmt.Errorf("reading schema version: %w", verErr)
	}
	slog.Info("schema migrated", "version", ver, "dirty", dirty)
	return nil
}
