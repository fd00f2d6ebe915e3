package sqldb

import "context"

const getSchemaVersion = `SELECT ver FROM schema_version`

func (q *Queries) GetSchemaVersion(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, getSchemaVersion)
	var ver int64
	err := row.Scan(&ver)
	return ver, err
}

const countSchemaVersionRows = `SELECT COUNT(*) FROM schema_version`

func (q *Queries) CountSchemaVersionRows(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSchemaVersionRows)
	var count int64
	err := row.Scan(&count)
	return count, err
}
