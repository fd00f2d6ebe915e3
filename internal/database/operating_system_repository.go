package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type OperatingSystemRepository struct {
	ctx *Context
}

func NewOperatingSystemRepository(dbCtx *Context) *OperatingSystemRepository {
	return &OperatingSystemRepository{ctx: dbCtx}
}

func (r *OperatingSystemRepository) FindByID(ctx context.Context, id int64) (*OperatingSystemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operating system repository: missing database context")
	}

	row, err := queries.FindOperatingSystemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := OperatingSystemRecordFromRow(row)
	return &record, nil
}

func (r *OperatingSystemRepository) FindByShortName(ctx context.Context, shortName string) (*OperatingSystemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operating system repository: missing database context")
	}

	row, err := queries.FindOperatingSystemByShortName(ctx, shortName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := OperatingSystemRecordFromRow(row)
	return &record, nil
}

func (r *OperatingSystemRepository) List(ctx context.Context) ([]OperatingSystemRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operating system repository: missing database context")
	}

	rows, err := queries.ListOperatingSystems(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]OperatingSystemRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, OperatingSystemRecordFromRow(row))
	}
	return result, nil
}
