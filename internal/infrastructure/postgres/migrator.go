package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies schema migrations. An empty source URL uses the
// migrations embedded in the binary.
type Migrator struct {
	databaseURL string
	sourceURL   string
	logger      zerolog.Logger
}

// NewMigrator creates a Migrator.
func NewMigrator(databaseURL, sourceURL string, logger zerolog.Logger) *Migrator {
	return &Migrator{
		databaseURL: databaseURL,
		sourceURL:   sourceURL,
		logger:      logger.With().Str("component", "migrator").Logger(),
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	var (
		mig *migrate.Migrate
		err error
	)
	if m.sourceURL == "" {
		src, srcErr := iofs.New(migrationFiles, "migrations")
		if srcErr != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", srcErr)
		}
		mig, err = migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	} else {
		mig, err = migrate.New(m.sourceURL, m.databaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info().Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info().Msg("database migrations: rolled back successfully")
	return nil
}

// Version reports the applied schema version.
func (m *Migrator) Version() (uint, bool, error) {
	mig, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
