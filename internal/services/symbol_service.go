package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/winapi-history/winapidb/internal/database"
	sqldb "github.com/winapi-history/winapidb/internal/database/sqlc"
	"github.com/winapi-history/winapidb/internal/identity"
)

// SymbolService creates and resolves symbols under the identity rule: a
// symbol is its raw name, or (under schema version 1 only) the pair
// (dll_name, ordinal).
type SymbolService struct {
	ctx *database.Context
}

func NewSymbolService(ctx *database.Context) *SymbolService {
	return &SymbolService{ctx: ctx}
}

// InsertNamed stores a new named symbol and returns its id. A raw name that
// already exists is an ErrConstraintViolation.
func (s *SymbolService) InsertNamed(ctx context.Context, rawName string, friendlyName *string) (int64, error) {
	return s.Insert(ctx, identity.Named{RawName: rawName, FriendlyName: friendlyName})
}

// InsertOrdinal stores a new ordinal-only symbol. It fails with
// ErrUnsupportedBySchema once the database uses the simplified schema.
func (s *SymbolService) InsertOrdinal(ctx context.Context, dllName string, ordinal int64, friendlyName *string) (int64, error) {
	return s.Insert(ctx, identity.Ordinal{DLLName: dllName, Ordinal: ordinal, FriendlyName: friendlyName})
}

// Insert stores a symbol of either identity form.
func (s *SymbolService) Insert(ctx context.Context, id identity.Identity) (symID int64, err error) {
	if err := validate(id); err != nil {
		return 0, err
	}

	err = s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		symID, err = insertSymbol(txCtx, q, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	return symID, nil
}

// LookupByName returns the named symbol, or nil when there is none.
func (s *SymbolService) LookupByName(ctx context.Context, rawName string) (*database.SymbolRecord, error) {
	return database.NewSymbolRepository(s.ctx).FindByRawName(ctx, rawName)
}

// LookupByOrdinal returns the ordinal-only symbol, or nil when there is
// none. It always returns nil under the simplified schema.
func (s *SymbolService) LookupByOrdinal(ctx context.Context, dllName string, ordinal int64) (*database.SymbolRecord, error) {
	return database.NewSymbolRepository(s.ctx).FindByDllOrdinal(ctx, dllName, ordinal)
}

// GetByID returns the symbol, or nil when there is none.
func (s *SymbolService) GetByID(ctx context.Context, id int64) (*database.SymbolRecord, error) {
	return database.NewSymbolRepository(s.ctx).FindByID(ctx, id)
}

// GetOrCreateNamed returns the id of the named symbol, inserting it first
// when needed. created reports whether it was inserted.
func (s *SymbolService) GetOrCreateNamed(ctx context.Context, rawName string, friendlyName *string) (symID int64, created bool, err error) {
	return s.getOrCreate(ctx, identity.Named{RawName: rawName, FriendlyName: friendlyName})
}

// GetOrCreateOrdinal is GetOrCreateNamed for ordinal-only symbols.
func (s *SymbolService) GetOrCreateOrdinal(ctx context.Context, dllName string, ordinal int64) (symID int64, created bool, err error) {
	return s.getOrCreate(ctx, identity.Ordinal{DLLName: dllName, Ordinal: ordinal})
}

func (s *SymbolService) getOrCreate(ctx context.Context, id identity.Identity) (symID int64, created bool, err error) {
	if err := validate(id); err != nil {
		return 0, false, err
	}

	err = s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		symID, created, err = getOrCreateSymbol(txCtx, q, id)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return symID, created, nil
}

// Delete removes a symbol. A symbol that still has availability facts is
// not removed and yields ErrConstraintViolation.
func (s *SymbolService) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		affected, err := q.DeleteSymbolByID(txCtx, id)
		if err != nil {
			return database.ClassifyDelete(err)
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *SymbolService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	return runInTx(ctx, s.ctx, "symbol", fn)
}

func insertSymbol(ctx context.Context, q *sqldb.Queries, id identity.Identity) (int64, error) {
	var (
		res sql.Result
		err error
	)

	switch v := id.(type) {
	case identity.Named:
		res, err = q.InsertNamedSymbol(ctx, database.NamedSymbolInsertParams(v))
	case identity.Ordinal:
		res, err = q.InsertOrdinalSymbol(ctx, database.OrdinalSymbolInsertParams(v))
		if errors.Is(err, sqldb.ErrUnsupportedLayout) {
			return 0, fmt.Errorf("ordinal-only symbol %s: %w", v.Key(), database.ErrUnsupportedBySchema)
		}
	default:
		return 0, fmt.Errorf("unsupported identity %T", id)
	}
	if err != nil {
		return 0, database.Classify(err)
	}

	return res.LastInsertId()
}

func findSymbol(ctx context.Context, q *sqldb.Queries, id identity.Identity) (sqldb.Symbol, error) {
	switch v := id.(type) {
	case identity.Named:
		return q.FindSymbolByRawName(ctx, v.RawName)
	case identity.Ordinal:
		return q.FindSymbolByDllOrdinal(ctx, sqldb.FindSymbolByDllOrdinalParams{DllName: v.DLLName, Ordinal: v.Ordinal})
	default:
		return sqldb.Symbol{}, fmt.Errorf("unsupported identity %T", id)
	}
}

func getOrCreateSymbol(ctx context.Context, q *sqldb.Queries, id identity.Identity) (int64, bool, error) {
	row, err := findSymbol(ctx, q, id)
	switch {
	case err == nil:
		return row.SymID, false, nil
	case errors.Is(err, sql.ErrNoRows):
		symID, err := insertSymbol(ctx, q, id)
		if err != nil {
			return 0, false, err
		}
		return symID, true, nil
	default:
		return 0, false, err
	}
}
