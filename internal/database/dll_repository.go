package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type DllRepository struct {
	ctx *Context
}

func NewDllRepository(dbCtx *Context) *DllRepository {
	return &DllRepository{ctx: dbCtx}
}

func (r *DllRepository) FindByID(ctx context.Context, id int64) (*DllRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dll repository: missing database context")
	}

	row, err := queries.FindDllByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := DllRecordFromRow(row)
	return &record, nil
}

func (r *DllRepository) FindByPath(ctx context.Context, path string) (*DllRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dll repository: missing database context")
	}

	row, err := queries.FindDllByPath(ctx, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := DllRecordFromRow(row)
	return &record, nil
}

func (r *DllRepository) List(ctx context.Context) ([]DllRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("dll repository: missing database context")
	}

	rows, err := queries.ListDlls(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]DllRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, DllRecordFromRow(row))
	}
	return result, nil
}
