// Package services runs the transactional operations on the winapi
// database: symbol identity, catalog rows, availability facts, schema
// lifecycle, meta-function tagging and bulk ingestion.
package services

import (
	"context"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
	"github.com/winapi-history/winapidb/internal/identity"
)

// runInTx runs fn in one transaction while holding the shared side of the
// migration lock, so the query layout cannot change underneath it.
func runInTx(ctx context.Context, dbCtx *database.Context, name string, fn func(context.Context, *sqldb.Queries) error) error {
	if dbCtx == nil || dbCtx.DB == nil {
		return fmt.Errorf("%s service: missing database context", name)
	}

	unlock := dbCtx.Shared()
	defer unlock()

	tx, err := dbCtx.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	queries := dbCtx.Queries().WithTx(tx)

	if err := fn(ctx, queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}

func invalidIdentity(err error) error {
	return fmt.Errorf("%w: %w", database.ErrConstraintViolation, err)
}

func validate(id identity.Identity) error {
	if err := id.Validate(); err != nil {
		return invalidIdentity(err)
	}
	return nil
}
