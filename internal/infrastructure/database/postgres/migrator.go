package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

// MigrationState is the schema version as recorded by golang-migrate.
type MigrationState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// Migrator applies the claim store schema migrations.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// SourceURL turns a migrations directory into a golang-migrate source URL.
// Paths already carrying a scheme are returned unchanged.
func SourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

// NewMigrator opens a migrator for the database at dbURL using the
// migrations in migrationsPath.
func NewMigrator(dbURL, migrationsPath string, log logging.Logger) (*Migrator, error) {
	m, err := migrate.New(SourceURL(migrationsPath), dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: log}, nil
}

// Up applies all pending migrations. Having none to apply is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	mg.logState("Claim store migrations applied")
	return nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	mg.logState("Claim store migrations rolled back")
	return nil
}

// Status returns the applied version. An empty schema reports version 0.
func (mg *Migrator) Status() (MigrationState, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationState{}, nil
		}
		return MigrationState{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationState{Version: version, Dirty: dirty}, nil
}

// Force marks the schema as being at version without running anything. It
// is the recovery path for a dirty state.
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

func (mg *Migrator) logState(msg string) {
	st, err := mg.Status()
	if err != nil {
		mg.logger.Warn("Failed to read migration version", logging.Err(err))
		return
	}
	mg.logger.Info(msg, logging.Int64("version", int64(st.Version)), logging.Bool("dirty", st.Dirty))
}

// RunMigrations applies all pending migrations and closes the migrator.
func RunMigrations(dbURL, migrationsPath string, log logging.Logger) error {
	mg, err := NewMigrator(dbURL, migrationsPath, log)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
