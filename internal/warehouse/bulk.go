package warehouse

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"flakeforge/pkg/errors"
)

// CopyResult summarizes one COPY INTO execution
type CopyResult struct {
	File       string
	Status     string
	RowsParsed int64
	RowsLoaded int64
	FirstError string
}

// LoadCSVFile bulk-loads a local CSV file into a table: PUT to the table's
// internal stage, then COPY INTO with ON_ERROR=ABORT_STATEMENT so a row the
// warehouse cannot parse fails the whole step rather than loading partially.
func (s *Service) LoadCSVFile(ctx context.Context, file, table string) (*CopyResult, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to resolve source file path").
			WithContext("file", file)
	}

	putSQL := fmt.Sprintf("PUT file://%s @%%%s AUTO_COMPRESS=TRUE OVERWRITE=TRUE",
		filepath.ToSlash(abs), UnqualifiedName(table))

	if _, err := s.Exec(ctx, putSQL); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStagingFailed, "Failed to PUT file to table stage").
			WithContext("file", file).
			WithContext("table", table)
	}

	copySQL := fmt.Sprintf(`COPY INTO %s FROM @%%%s `+
		`FILE_FORMAT = (TYPE = CSV SKIP_HEADER = 1 FIELD_OPTIONALLY_ENCLOSED_BY = '"' EMPTY_FIELD_AS_NULL = TRUE) `+
		`ON_ERROR = ABORT_STATEMENT PURGE = TRUE`,
		table, UnqualifiedName(table))

	rows, err := s.Query(ctx, copySQL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCopyLoadFailed, "Failed to COPY file into table").
			WithContext("file", file).
			WithContext("table", table)
	}
	defer rows.Close()

	result, err := parseCopyResult(rows)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResultParsing, "Failed to parse COPY results").
			WithContext("table", table)
	}

	s.logger.Info("bulk load finished",
		zap.String("table", table),
		zap.String("file", filepath.Base(file)),
		zap.String("status", result.Status),
		zap.Int64("rows_parsed", result.RowsParsed),
		zap.Int64("rows_loaded", result.RowsLoaded),
	)

	if result.Status != "" && !strings.EqualFold(result.Status, "LOADED") {
		return result, errors.New(errors.ErrCodeCopyLoadFailed, "COPY reported a non-loaded status").
			WithContext("table", table).
			WithContext("status", result.Status).
			WithContext("first_error", result.FirstError)
	}

	return result, nil
}

// parseCopyResult reads the single summary row COPY INTO returns. Column
// order varies across driver versions, so values are picked out by name.
func parseCopyResult(rows rowScanner) (*CopyResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &CopyResult{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		valuePtrs := make([]interface{}, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		for i, col := range cols {
			switch strings.ToLower(col) {
			case "file":
				result.File = asString(values[i])
			case "status":
				result.Status = asString(values[i])
			case "rows_parsed":
				n, err := asInt64(values[i])
				if err != nil {
					return nil, fmt.Errorf("rows_parsed: %w", err)
				}
				result.RowsParsed = n
			case "rows_loaded":
				n, err := asInt64(values[i])
				if err != nil {
					return nil, fmt.Errorf("rows_loaded: %w", err)
				}
				result.RowsLoaded = n
			case "first_error":
				result.FirstError = asString(values[i])
			}
		}
	}

	return result, rows.Err()
}

// rowScanner is the subset of *sql.Rows parseCopyResult needs
type rowScanner interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected count value %v (%T)", v, v)
	}
}
