package sqldb

import (
	"context"
	"database/sql"
)

type InsertAvailabilityParams struct {
	SymID   int64
	DllID   int64
	OsID    int64
	Ordinal sql.NullInt64
}

const insertAvailabilityV1 = `INSERT INTO symbol_dll_os (sym_id, dll_id, os_id, ordinal) VALUES (?, ?, ?, ?)`

const insertAvailabilityV2 = `INSERT INTO symbol_dll_os (sym_id, dll_id, os_id) VALUES (?, ?, ?)`

// InsertAvailability drops the observed ordinal in the simplified layout.
func (q *Queries) InsertAvailability(ctx context.Context, arg InsertAvailabilityParams) error {
	var err error
	if q.simplified() {
		_, err = q.db.ExecContext(ctx, insertAvailabilityV2, arg.SymID, arg.DllID, arg.OsID)
	} else {
		_, err = q.db.ExecContext(ctx, insertAvailabilityV1, arg.SymID, arg.DllID, arg.OsID, arg.Ordinal)
	}
	return err
}

type DeleteAvailabilityParams struct {
	SymID int64
	DllID int64
	OsID  int64
}

const deleteAvailability = `DELETE FROM symbol_dll_os WHERE sym_id = ? AND dll_id = ? AND os_id = ?`

func (q *Queries) DeleteAvailability(ctx context.Context, arg DeleteAvailabilityParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAvailability, arg.SymID, arg.DllID, arg.OsID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countAvailability = `SELECT COUNT(*) FROM symbol_dll_os`

func (q *Queries) CountAvailability(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAvailability)
	var count int64
	err := row.Scan(&count)
	return count, err
}
