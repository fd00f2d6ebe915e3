package sqldb

import (
	"context"
	"database/sql"
)

const selectOperatingSystem = `SELECT os_id, short_name, long_name FROM operating_systems`

func scanOperatingSystem(row interface{ Scan(...any) error }) (OperatingSystem, error) {
	var i OperatingSystem
	err := row.Scan(&i.OsID, &i.ShortName, &i.LongName)
	return i, err
}

func (q *Queries) FindOperatingSystemByID(ctx context.Context, osID int64) (OperatingSystem, error) {
	row := q.db.QueryRowContext(ctx, selectOperatingSystem+` WHERE os_id = ?`, osID)
	return scanOperatingSystem(row)
}

func (q *Queries) FindOperatingSystemByShortName(ctx context.Context, shortName string) (OperatingSystem, error) {
	row := q.db.QueryRowContext(ctx, selectOperatingSystem+` WHERE short_name = ?`, shortName)
	return scanOperatingSystem(row)
}

const listOperatingSystems = selectOperatingSystem + ` ORDER BY os_id`

func (q *Queries) ListOperatingSystems(ctx context.Context) ([]OperatingSystem, error) {
	rows, err := q.db.QueryContext(ctx, listOperatingSystems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OperatingSystem
	for rows.Next() {
		i, err := scanOperatingSystem(rows)
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

type InsertOperatingSystemParams struct {
	ShortName string
	LongName  sql.NullString
}

const insertOperatingSystem = `INSERT INTO operating_systems (short_name, long_name) VALUES (?, ?)`

func (q *Queries) InsertOperatingSystem(ctx context.Context, arg InsertOperatingSystemParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertOperatingSystem, arg.ShortName, arg.LongName)
}

const deleteOperatingSystemByID = `DELETE FROM operating_systems WHERE os_id = ?`

func (q *Queries) DeleteOperatingSystemByID(ctx context.Context, osID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOperatingSystemByID, osID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
