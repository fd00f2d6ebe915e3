package database

import (
	"context"
	"fmt"
)

// SchemaVersionRepository reads the schema_version marker. There is no write
// path: only migrations update the marker.
type SchemaVersionRepository struct {
	ctx *Context
}

func NewSchemaVersionRepository(dbCtx *Context) *SchemaVersionRepository {
	return &SchemaVersionRepository{ctx: dbCtx}
}

func (r *SchemaVersionRepository) Get(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("schema version repository: missing database context")
	}

	return queries.GetSchemaVersion(ctx)
}

// RowCount returns the number of marker rows, which is always 1 for a
// healthy database.
func (r *SchemaVersionRepository) RowCount(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("schema version repository: missing database context")
	}

	return queries.CountSchemaVersionRows(ctx)
}
