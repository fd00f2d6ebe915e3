package sqldb

import "context"

const deleteAllAvailability = `DELETE FROM symbol_dll_os`

func (q *Queries) DeleteAllAvailability(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllAvailability)
	return err
}

const deleteAllSymbols = `DELETE FROM symbols`

func (q *Queries) DeleteAllSymbols(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSymbols)
	return err
}

const deleteAllDlls = `DELETE FROM dlls`

func (q *Queries) DeleteAllDlls(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDlls)
	return err
}

const deleteAllOperatingSystems = `DELETE FROM operating_systems`

func (q *Queries) DeleteAllOperatingSystems(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllOperatingSystems)
	return err
}

const tableExists = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

func (q *Queries) TableExists(ctx context.Context, name string) (bool, error) {
	row := q.db.QueryRowContext(ctx, tableExists, name)
	var count int64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
