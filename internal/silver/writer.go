package silver

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"flakeforge/pkg/errors"
)

// writeTable rebuilds a silver table from the given rows: empty staging
// clone, chunked multi-row INSERTs into it, then an atomic swap into place.
// The dwh_create_date audit column is never in the column list, so the DDL
// default stamps the load time. Any failure drops the staging table and
// leaves the live table untouched.
func (e *Engine) writeTable(ctx context.Context, table string, columns []string, rows [][]interface{}) error {
	staging, err := e.warehouse.CreateStagingClone(ctx, table)
	if err != nil {
		return err
	}

	for start := 0; start < len(rows); start += e.chunkSize {
		end := start + e.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		builder := sq.Insert(staging).Columns(columns...)
		for _, row := range rows[start:end] {
			builder = builder.Values(row...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			e.warehouse.DropStaging(ctx, staging)
			return errors.Wrap(err, errors.ErrCodeInternal, "Failed to build insert statement").
				WithContext("table", table)
		}

		if _, err := e.warehouse.Exec(ctx, query, args...); err != nil {
			e.warehouse.DropStaging(ctx, staging)
			return err
		}
	}

	return e.warehouse.SwapAndDrop(ctx, staging, table)
}
