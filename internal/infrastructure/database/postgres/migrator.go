package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// pgUndefinedTable is the SQLSTATE returned before the first migration.
const pgUndefinedTable = "42P01"

// sqlOpen is replaced in tests.
var sqlOpen = sql.Open

// MigrationStatus describes the schema version recorded by golang-migrate.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Applied bool `json:"applied"`
}

// Migrator applies the SQL files under a migrations directory.
type Migrator struct {
	dbURL  string
	source string
	logger logging.Logger
}

// NewMigrator prepares a migrator for cfg. migrationsPath is a directory or
// a source URL such as "file://migrations".
func NewMigrator(cfg config.DatabaseConfig, migrationsPath string, log logging.Logger) (*Migrator, error) {
	if strings.TrimSpace(migrationsPath) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "migration path is required")
	}
	source := migrationsPath
	if !strings.Contains(source, "://") {
		source = "file://" + source
	}
	return &Migrator{dbURL: buildConnString(cfg), source: source, logger: log}, nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	mg, err := migrate.New(m.source, m.dbURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return mg, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to run migrations")
	}
	version, dirty, _ := mg.Version()
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.Newf(errors.ErrCodeValidation, "steps must be greater than 0, got %d", steps)
	}
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeValidation, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to roll back migrations")
	}
	m.logger.Info("Rolled back migrations", logging.Int("steps", steps))
	return nil
}

// Force records version without running anything, clearing a dirty state.
func (m *Migrator) Force(version int) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Force(version); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to force migration version")
	}
	m.logger.Warn("Forced migration version", logging.Int("version", version))
	return nil
}

// Status reads the schema_migrations table directly, so it takes no
// migration lock.
func (m *Migrator) Status(ctx context.Context) (MigrationStatus, error) {
	db, err := sqlOpen("postgres", m.dbURL)
	if err != nil {
		return MigrationStatus{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database")
	}
	defer db.Close()
	return SchemaStatus(ctx, db)
}

// SchemaStatus returns the migration state stored in db. A database that
// was never migrated reports Applied false.
func SchemaStatus(ctx context.Context, db *sql.DB) (MigrationStatus, error) {
	var (
		version int64
		dirty   bool
	)
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.Is(err, sql.ErrNoRows) || (stderrors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedTable) {
			return MigrationStatus{}, nil
		}
		return MigrationStatus{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return MigrationStatus{Version: uint(version), Dirty: dirty, Applied: true}, nil
}

//Personal.AI order the ending
