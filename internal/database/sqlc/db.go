package sqldb

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX matches the interface sqlc generates for database access objects.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Layout selects the table shapes the queries are written against. Its
// values equal the schema_version marker of the matching schema.
type Layout int64

const (
	// LayoutRichIdentity is schema version 1: symbols may be named or keyed
	// by (dll_name, ordinal), dlls carry secondary_platform and availability
	// rows carry the observed ordinal.
	LayoutRichIdentity Layout = 1
	// LayoutSimplified is schema version 2: named symbols only.
	LayoutSimplified Layout = 2
)

// ErrUnsupportedLayout is returned by queries that have no counterpart in
// the active layout.
var ErrUnsupportedLayout = errors.New("query not available in this schema layout")

// Queries wraps a DBTX and exposes the statements for one schema layout.
type Queries struct {
	db     DBTX
	layout Layout
}

// New constructs a Queries helper for the rich identity layout.
func New(db DBTX) *Queries {
	return &Queries{db: db, layout: LayoutRichIdentity}
}

// WithLayout returns a copy of the helper bound to layout.
func (q *Queries) WithLayout(layout Layout) *Queries {
	return &Queries{db: q.db, layout: layout}
}

// WithTx returns a copy of the Queries helper scoped to the supplied transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, layout: q.layout}
}

// Layout reports the layout the helper is bound to.
func (q *Queries) Layout() Layout {
	return q.layout
}

func (q *Queries) simplified() bool {
	return q.layout >= LayoutSimplified
}
