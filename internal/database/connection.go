// Package database stores Windows API symbols, the DLLs and operating systems
// that export them and the availability relation between the three.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/winapi-history/winapidb/internal/config"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Context holds the database connection, the active schema version and the
// lock that orders writes against migrations.
type Context struct {
	DB   *sql.DB
	X    *sqlx.DB
	Path string

	logger      *slog.Logger
	version     atomic.Int64
	migrationMu sync.RWMutex
}

// Option configures CreateDatabase.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for schema lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// CreateDatabase opens the SQLite database at dbPath, creating it at schema
// version 1 when it is empty. An empty path selects config.GetDBPath().
func CreateDatabase(dbPath string, opts ...Option) (*Context, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	path := dbPath
	if path == "" {
		path = config.GetDBPath()
	}

	useMemory := path == MemoryPath

	if !useMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var dsn string
	if useMemory {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", uuid.NewString())
	} else {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		path = absPath
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", filepath.ToSlash(absPath))
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if useMemory {
		// Shared-cache memory databases report SQLITE_LOCKED between
		// connections instead of waiting.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbCtx := &Context{
		DB:     db,
		X:      sqlx.NewDb(db, driverName),
		Path:   path,
		logger: o.logger,
	}

	if err := dbCtx.bootstrap(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return dbCtx, nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// ClearDatabase removes all catalog and availability rows. The schema and
// its version marker are kept.
func ClearDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}

	unlock := ctx.Shared()
	defer unlock()

	bg := context.Background()
	tx, err := ctx.DB.BeginTx(bg, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := ctx.Queries().WithTx(tx)

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"symbol_dll_os", queries.DeleteAllAvailability},
		{"symbols", queries.DeleteAllSymbols},
		{"dlls", queries.DeleteAllDlls},
		{"operating_systems", queries.DeleteAllOperatingSystems},
	}
	for _, step := range steps {
		if err := step.run(bg); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to delete %s: %w (rollback error: %w)", step.name, err, rbErr)
			}
			return fmt.Errorf("failed to delete %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}

	return nil
}

// Queries returns a query helper bound to the active schema layout.
func (c *Context) Queries() *sqldb.Queries {
	return sqldb.New(c.DB).WithLayout(c.Layout())
}

// Version returns the schema version recorded when the database was opened
// or last migrated.
func (c *Context) Version() int64 {
	return c.version.Load()
}

// Layout returns the query layout matching Version.
func (c *Context) Layout() sqldb.Layout {
	return sqldb.Layout(c.version.Load())
}

// Logger returns the logger passed to CreateDatabase.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Shared takes the shared side of the migration lock. Every transaction
// holds it so that a migration never runs underneath it. The returned
// function releases the lock.
func (c *Context) Shared() func() {
	c.migrationMu.RLock()
	return c.migrationMu.RUnlock
}

func (c *Context) exclusive() func() {
	c.migrationMu.Lock()
	return c.migrationMu.Unlock
}
