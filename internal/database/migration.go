package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"

	"github.com/winapi-history/winapidb/db/migrations"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
)

// Schema versions known to this build.
const (
	SchemaVersionRichIdentity int64 = 1
	SchemaVersionSimplified   int64 = 2
	SchemaVersionLatest             = SchemaVersionSimplified
)

const migrationsTable = "schema_migrations"

// beforeUpgradeHook runs between the precondition check and the migration.
// Tests use it to simulate a concurrent writer.
var beforeUpgradeHook func()

// UpgradeResult describes what Upgrade did.
type UpgradeResult struct {
	From    int64
	To      int64
	Applied bool
}

func (c *Context) bootstrap(ctx context.Context) error {
	q := sqldb.New(c.DB)

	hasMarker, err := q.TableExists(ctx, "schema_version")
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	hasBookkeeping, err := q.TableExists(ctx, migrationsTable)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	migrator, closeSource, err := newMigrator(c.DB, c.Logger())
	if err != nil {
		return err
	}
	defer closeSource()

	switch {
	case !hasMarker:
		c.Logger().Info("creating database schema", "path", c.Path, "version", SchemaVersionRichIdentity)
		if err := migrator.Migrate(uint(SchemaVersionRichIdentity)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	case !hasBookkeeping:
		marker, err := q.GetSchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		if marker >= SchemaVersionRichIdentity && marker <= SchemaVersionLatest {
			c.Logger().Info("adopting database without migration bookkeeping", "path", c.Path, "version", marker)
			if err := migrator.Force(int(marker)); err != nil {
				return fmt.Errorf("failed to record schema version %d: %w", marker, err)
			}
		}
	}

	marker, err := q.GetSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case marker <= 0:
		return fmt.Errorf("database has invalid schema version %d", marker)
	case marker > SchemaVersionLatest:
		c.Logger().Warn("schema version is newer than this build supports",
			"version", marker, "supported", SchemaVersionLatest)
	default:
		applied, dirty, err := migrator.Version()
		if err != nil {
			return fmt.Errorf("failed to read migration state: %w", err)
		}
		if dirty {
			return fmt.Errorf("migration %d did not complete; database needs manual repair", applied)
		}
		if int64(applied) != marker {
			return fmt.Errorf("schema_version reads %d but migration state reads %d", marker, applied)
		}
	}

	c.version.Store(marker)
	return nil
}

// Upgrade moves the database from the rich identity schema to the
// simplified one. It refuses with a *MigrationPreconditionError while any
// symbol is still identified by (dll_name, ordinal). Every change happens in
// one transaction whose last statement advances schema_version; on failure
// the database is left exactly as it was. Upgrading a database that is
// already simplified does nothing.
func (c *Context) Upgrade(ctx context.Context) (UpgradeResult, error) {
	unlock := c.exclusive()
	defer unlock()

	logger := c.Logger()

	if err := ctx.Err(); err != nil {
		return UpgradeResult{}, err
	}

	q := sqldb.New(c.DB).WithLayout(c.Layout())
	from, err := q.GetSchemaVersion(ctx)
	if err != nil {
		return UpgradeResult{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	result := UpgradeResult{From: from, To: from}
	if from >= SchemaVersionLatest {
		logger.Info("schema is up to date", "version", from)
		return result, nil
	}

	to := from + 1
	if precondErr := c.checkUpgradePrecondition(ctx, q, from, to); precondErr != nil {
		return result, precondErr
	}

	if beforeUpgradeHook != nil {
		beforeUpgradeHook()
	}

	migrator, closeSource, err := newMigrator(c.DB, logger)
	if err != nil {
		return result, err
	}
	defer closeSource()

	logger.Info("applying schema migration", "from", from, "to", to)
	if err := migrator.Migrate(uint(to)); err != nil {
		if forceErr := migrator.Force(int(from)); forceErr != nil {
			return result, fmt.Errorf("failed to apply migration %d: %w (restoring migration state: %w)", to, err, forceErr)
		}
		if isMigrationGuard(err) {
			if precondErr := c.checkUpgradePrecondition(ctx, q, from, to); precondErr != nil {
				return result, precondErr
			}
			return result, &MigrationPreconditionError{From: from, To: to}
		}
		return result, fmt.Errorf("failed to apply migration %d: %w", to, Classify(unwrapMigrationError(err)))
	}

	marker, err := q.GetSchemaVersion(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read schema version: %w", err)
	}
	if marker != to {
		return result, fmt.Errorf("migration %d finished but schema_version reads %d", to, marker)
	}

	c.version.Store(to)
	logger.Info("schema migration applied", "version", to)

	result.To = to
	result.Applied = true
	return result, nil
}

// CurrentVersion reads the schema_version marker.
func (c *Context) CurrentVersion(ctx context.Context) (int64, error) {
	ver, err := NewSchemaVersionRepository(c).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return ver, nil
}

func (c *Context) checkUpgradePrecondition(ctx context.Context, q *sqldb.Queries, from, to int64) error {
	rows, err := q.ListOrdinalSymbols(ctx)
	if err != nil {
		return fmt.Errorf("failed to list ordinal-only symbols: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	offending := make([]OrdinalSymbol, 0, len(rows))
	for _, row := range rows {
		offending = append(offending, OrdinalSymbolFromRow(row))
	}
	c.Logger().Warn("schema migration blocked by ordinal-only symbols", "from", from, "to", to, "count", len(offending))
	return &MigrationPreconditionError{From: from, To: to, Offending: offending}
}

// newMigrator wires golang-migrate to the embedded migrations. The migrator
// must not be closed: its sqlite driver would close db with it. The returned
// function releases the migration source.
func newMigrator(db *sql.DB, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		_ = sourceDriver.Close()
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	migrator.Log = migrateLogger{logger: logger}

	return migrator, func() {
		_ = sourceDriver.Close()
	}, nil
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}

// unwrapMigrationError returns the driver error inside a golang-migrate
// database error, whose message otherwise embeds the whole migration file.
func unwrapMigrationError(err error) error {
	var dbErr *migratedb.Error
	if errors.As(err, &dbErr) && dbErr.OrigErr != nil {
		return dbErr.OrigErr
	}
	return err
}

func isMigrationGuard(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(unwrapMigrationError(err), &sqliteErr) {
		return strings.Contains(sqliteErr.Error(), migrationGuardMarker)
	}
	return false
}
