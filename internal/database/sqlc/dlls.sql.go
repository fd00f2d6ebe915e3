package sqldb

import (
	"context"
	"database/sql"
)

const selectDllV1 = `SELECT dll_id, path, secondary_platform FROM dlls`

const selectDllV2 = `SELECT dll_id, path, 0 AS secondary_platform FROM dlls`

func (q *Queries) selectDll() string {
	if q.simplified() {
		return selectDllV2
	}
	return selectDllV1
}

func scanDll(row interface{ Scan(...any) error }) (Dll, error) {
	var i Dll
	err := row.Scan(&i.DllID, &i.Path, &i.SecondaryPlatform)
	return i, err
}

func (q *Queries) FindDllByID(ctx context.Context, dllID int64) (Dll, error) {
	row := q.db.QueryRowContext(ctx, q.selectDll()+` WHERE dll_id = ?`, dllID)
	return scanDll(row)
}

func (q *Queries) FindDllByPath(ctx context.Context, path string) (Dll, error) {
	row := q.db.QueryRowContext(ctx, q.selectDll()+` WHERE path = ?`, path)
	return scanDll(row)
}

func (q *Queries) ListDlls(ctx context.Context) ([]Dll, error) {
	rows, err := q.db.QueryContext(ctx, q.selectDll()+` ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Dll
	for rows.Next() {
		i, err := scanDll(rows)
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

type InsertDllParams struct {
	Path              string
	SecondaryPlatform int64
}

const insertDllV1 = `INSERT INTO dlls (path, secondary_platform) VALUES (?, ?)`

const insertDllV2 = `INSERT INTO dlls (path) VALUES (?)`

// InsertDll drops SecondaryPlatform in the simplified layout.
func (q *Queries) InsertDll(ctx context.Context, arg InsertDllParams) (sql.Result, error) {
	if q.simplified() {
		return q.db.ExecContext(ctx, insertDllV2, arg.Path)
	}
	return q.db.ExecContext(ctx, insertDllV1, arg.Path, arg.SecondaryPlatform)
}

const deleteDllByID = `DELETE FROM dlls WHERE dll_id = ?`

func (q *Queries) DeleteDllByID(ctx context.Context, dllID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDllByID, dllID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
