package bronze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakeforge/internal/dataset"
	"flakeforge/internal/observability"
	"flakeforge/internal/warehouse"
	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

func newMockLoader(t *testing.T) (*Loader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := models.WarehouseConfig{
		Account:  "xy12345.us-east-1",
		Username: "loader",
		Database: "DATAWAREHOUSE",
	}
	svc := warehouse.NewServiceWithDB(db, cfg, observability.NewNopLogger())
	return NewLoader(svc, observability.NewNopLogger()), mock
}

func sourceFile(t *testing.T, name, table string) dataset.Resolved {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("header\n1,2\n"), 0o644))
	sf, ok := dataset.FileForTable(table)
	require.True(t, ok)
	return dataset.Resolved{SourceFile: sf, Path: path}
}

func expectTableLoad(mock sqlmock.Sqlmock, table string, rows int64) {
	staging := table + "__stg"
	unqualified := warehouse.UnqualifiedName(staging)

	mock.ExpectExec(`CREATE OR REPLACE TABLE ` + staging + ` LIKE ` + table).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`PUT file://.* @%` + unqualified).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`COPY INTO ` + staging).
		WillReturnRows(sqlmock.NewRows([]string{"file", "status", "rows_parsed", "rows_loaded"}).
			AddRow("f.csv.gz", "LOADED", rows, rows))
	mock.ExpectExec(`ALTER TABLE ` + table + ` SWAP WITH ` + staging).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DROP TABLE IF EXISTS ` + staging).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestLoadAllHappyPath(t *testing.T) {
	loader, mock := newMockLoader(t)

	files := []dataset.Resolved{
		sourceFile(t, "cust_info.csv", "bronze.crm_customer_info"),
		sourceFile(t, "LOC_A101.csv", "bronze.erp_customer_location"),
	}
	expectTableLoad(mock, "bronze.crm_customer_info", 18494)
	expectTableLoad(mock, "bronze.erp_customer_location", 18484)

	results := loader.LoadAll(context.Background(), files)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Table)
	}
	assert.Equal(t, int64(18494), results[0].RowsLoaded)
	assert.Equal(t, int64(18484), results[1].RowsLoaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAllIsolatesTableFailures(t *testing.T) {
	loader, mock := newMockLoader(t)

	files := []dataset.Resolved{
		sourceFile(t, "cust_info.csv", "bronze.crm_customer_info"),
		sourceFile(t, "LOC_A101.csv", "bronze.erp_customer_location"),
	}

	// First table fails during COPY; its staging clone is dropped.
	mock.ExpectExec(`CREATE OR REPLACE TABLE bronze\.crm_customer_info__stg`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`PUT file://`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`COPY INTO bronze\.crm_customer_info__stg`).
		WillReturnRows(sqlmock.NewRows([]string{"file", "status", "rows_parsed", "rows_loaded", "first_error"}).
			AddRow("f.csv.gz", "LOAD_FAILED", 10, 0, "Numeric value 'x' is not recognized"))
	mock.ExpectExec(`DROP TABLE IF EXISTS bronze\.crm_customer_info__stg`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Second table still loads.
	expectTableLoad(mock, "bronze.erp_customer_location", 18484)

	results := loader.LoadAll(context.Background(), files)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTableSwapFailureDropsStaging(t *testing.T) {
	loader, mock := newMockLoader(t)

	f := sourceFile(t, "cust_info.csv", "bronze.crm_customer_info")
	mock.ExpectExec(`CREATE OR REPLACE TABLE bronze\.crm_customer_info__stg`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`PUT file://`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`COPY INTO bronze\.crm_customer_info__stg`).
		WillReturnRows(sqlmock.NewRows([]string{"file", "status", "rows_parsed", "rows_loaded"}).
			AddRow("f.csv.gz", "LOADED", 10, 10))
	mock.ExpectExec(`ALTER TABLE bronze\.crm_customer_info SWAP WITH`).
		WillReturnError(assert.AnError)
	mock.ExpectExec(`DROP TABLE IF EXISTS bronze\.crm_customer_info__stg`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	results := loader.LoadAll(context.Background(), []dataset.Resolved{f})
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Equal(t, errors.ErrCodeSQLExecution, errors.GetErrorCode(results[0].Err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
