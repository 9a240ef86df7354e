package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

const migrationsSource = "file://internal/repository/migrations"

// RunMigrations brings the Postgres schema up to date. A dirty state left by
// an interrupted run is forced back one version and retried once.
func RunMigrations(databaseURL string, logger *zap.Logger) error {
	m, err := migrate.New(migrationsSource, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		logger.Warn("migrations are dirty, forcing previous version", zap.Int("version", dirty.Version))
		if ferr := m.Force(max(dirty.Version-1, 0)); ferr != nil {
			return fmt.Errorf("force clean migration version: %w", ferr)
		}
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, verr := m.Version()
	if verr == nil {
		logger.Info("database schema is up to date", zap.Uint("version", version))
	}
	return nil
}
