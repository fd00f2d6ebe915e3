package sqldb

import (
	"context"
	"database/sql"
)

const selectSymbolV1 = `SELECT sym_id, raw_name, dll_name, ordinal, friendly_name, is_meta_func FROM symbols`

const selectSymbolV2 = `SELECT sym_id, raw_name, NULL AS dll_name, NULL AS ordinal, friendly_name, is_meta_func FROM symbols`

func (q *Queries) selectSymbol() string {
	if q.simplified() {
		return selectSymbolV2
	}
	return selectSymbolV1
}

func scanSymbol(row interface{ Scan(...any) error }) (Symbol, error) {
	var i Symbol
	err := row.Scan(
		&i.SymID,
		&i.RawName,
		&i.DllName,
		&i.Ordinal,
		&i.FriendlyName,
		&i.IsMetaFunc,
	)
	return i, err
}

func (q *Queries) FindSymbolByID(ctx context.Context, symID int64) (Symbol, error) {
	row := q.db.QueryRowContext(ctx, q.selectSymbol()+` WHERE sym_id = ?`, symID)
	return scanSymbol(row)
}

func (q *Queries) FindSymbolByRawName(ctx context.Context, rawName string) (Symbol, error) {
	row := q.db.QueryRowContext(ctx, q.selectSymbol()+` WHERE raw_name = ?`, rawName)
	return scanSymbol(row)
}

type FindSymbolByDllOrdinalParams struct {
	DllName string
	Ordinal int64
}

func (q *Queries) FindSymbolByDllOrdinal(ctx context.Context, arg FindSymbolByDllOrdinalParams) (Symbol, error) {
	if q.simplified() {
		return Symbol{}, sql.ErrNoRows
	}
	row := q.db.QueryRowContext(ctx, selectSymbolV1+` WHERE dll_name = ? AND ordinal = ?`, arg.DllName, arg.Ordinal)
	return scanSymbol(row)
}

type InsertNamedSymbolParams struct {
	RawName      string
	FriendlyName sql.NullString
}

const insertNamedSymbol = `INSERT INTO symbols (raw_name, friendly_name) VALUES (?, ?)`

func (q *Queries) InsertNamedSymbol(ctx context.Context, arg InsertNamedSymbolParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertNamedSymbol, arg.RawName, arg.FriendlyName)
}

type InsertOrdinalSymbolParams struct {
	DllName      string
	Ordinal      int64
	FriendlyName sql.NullString
}

const insertOrdinalSymbol = `INSERT INTO symbols (raw_name, dll_name, ordinal, friendly_name) VALUES (NULL, ?, ?, ?)`

func (q *Queries) InsertOrdinalSymbol(ctx context.Context, arg InsertOrdinalSymbolParams) (sql.Result, error) {
	if q.simplified() {
		return nil, ErrUnsupportedLayout
	}
	return q.db.ExecContext(ctx, insertOrdinalSymbol, arg.DllName, arg.Ordinal, arg.FriendlyName)
}

const listOrdinalSymbols = selectSymbolV1 + ` WHERE raw_name IS NULL ORDER BY dll_name, ordinal`

// ListOrdinalSymbols returns every symbol identified by (dll_name, ordinal).
// The simplified layout has none.
func (q *Queries) ListOrdinalSymbols(ctx context.Context) ([]Symbol, error) {
	if q.simplified() {
		return []Symbol{}, nil
	}
	rows, err := q.db.QueryContext(ctx, listOrdinalSymbols)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Symbol
	for rows.Next() {
		i, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setSymbolMetaFunc = `UPDATE symbols SET is_meta_func = 1 WHERE raw_name = ?`

// SetSymbolMetaFunc returns the number of rows matched, which stays 1 when
// the flag was already set.
func (q *Queries) SetSymbolMetaFunc(ctx context.Context, rawName string) (int64, error) {
	result, err := q.db.ExecContext(ctx, setSymbolMetaFunc, rawName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteSymbolByID = `DELETE FROM symbols WHERE sym_id = ?`

func (q *Queries) DeleteSymbolByID(ctx context.Context, symID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSymbolByID, symID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countSymbols = `SELECT COUNT(*) FROM symbols`

func (q *Queries) CountSymbols(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSymbols)
	var count int64
	err := row.Scan(&count)
	return count, err
}
