package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
)

type SymbolRepository struct {
	ctx *Context
}

func NewSymbolRepository(dbCtx *Context) *SymbolRepository {
	return &SymbolRepository{ctx: dbCtx}
}

func (r *SymbolRepository) FindByID(ctx context.Context, id int64) (*SymbolRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("symbol repository: missing database context")
	}

	row, err := queries.FindSymbolByID(ctx, id)
	return symbolFromLookup(row, err)
}

func (r *SymbolRepository) FindByRawName(ctx context.Context, rawName string) (*SymbolRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("symbol repository: missing database context")
	}

	row, err := queries.FindSymbolByRawName(ctx, rawName)
	return symbolFromLookup(row, err)
}

func (r *SymbolRepository) FindByDllOrdinal(ctx context.Context, dllName string, ordinal int64) (*SymbolRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("symbol repository: missing database context")
	}

	row, err := queries.FindSymbolByDllOrdinal(ctx, sqldb.FindSymbolByDllOrdinalParams{DllName: dllName, Ordinal: ordinal})
	return symbolFromLookup(row, err)
}

// ListOrdinalOnly returns the symbols that block the move to the simplified
// schema.
func (r *SymbolRepository) ListOrdinalOnly(ctx context.Context) ([]OrdinalSymbol, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("symbol repository: missing database context")
	}

	rows, err := queries.ListOrdinalSymbols(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]OrdinalSymbol, 0, len(rows))
	for _, row := range rows {
		result = append(result, OrdinalSymbolFromRow(row))
	}
	return result, nil
}

func (r *SymbolRepository) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("symbol repository: missing database context")
	}

	return queries.CountSymbols(ctx)
}

func symbolFromLookup(row sqldb.Symbol, err error) (*SymbolRecord, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record, err := SymbolRecordFromRow(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
