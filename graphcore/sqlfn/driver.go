package sqlfn

import (
	"context"
	"database/sql"
)

// SQLDriver runs a built query against a *sql.DB, implementing Driver.
// Any database/sql driver works, including mattn/go-sqlite3 (see
// cmd/graphcore-demo); the caller is responsible for importing the
// driver package for its registration side effect and opening db.
type SQLDriver struct {
	DB *sql.DB
}

// NewSQLDriver wraps an already-open database handle.
func NewSQLDriver(db *sql.DB) *SQLDriver {
	return &SQLDriver{DB: db}
}

// Query runs sqlText and scans every row into a []interface{} tuple,
// preserving column order.
func (d *SQLDriver) Query(ctx context.Context, sqlText string, args []interface{}) ([][]interface{}, error) {
	rows, err := d.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}
