package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakeforge/internal/observability"
	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

func writeDatasetFiles(t *testing.T, root string, names map[string]string) {
	t.Helper()
	for name, subdir := range names {
		dir := root
		if subdir != "" {
			dir = filepath.Join(root, subdir)
			require.NoError(t, os.MkdirAll(dir, 0o755))
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("header\n"), 0o644))
	}
}

func TestResolveLocalDataset(t *testing.T) {
	root := t.TempDir()
	writeDatasetFiles(t, root, map[string]string{
		"cust_info.csv":     "source_crm",
		"prd_info.csv":      "source_crm",
		"sales_details.csv": "source_crm",
		"CUST_AZ12.csv":     "source_erp",
		"LOC_A101.csv":      "source_erp",
		"PX_CAT_G1V2.csv":   "source_erp",
	})

	r := NewResolver(models.DatasetConfig{Path: root}, observability.NewNopLogger())
	resolved, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, resolved, 6)

	// Manifest order is preserved.
	assert.Equal(t, "bronze.crm_customer_info", resolved[0].Table)
	assert.Equal(t, "bronze.erp_product_category", resolved[5].Table)
	for _, f := range resolved {
		assert.FileExists(t, f.Path)
	}
}

func TestResolveMatchesCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	writeDatasetFiles(t, root, map[string]string{
		"CUST_INFO.CSV":     "",
		"prd_info.csv":      "",
		"sales_details.csv": "",
		"cust_az12.csv":     "",
		"loc_a101.csv":      "",
		"px_cat_g1v2.csv":   "",
	})

	r := NewResolver(models.DatasetConfig{Path: root}, observability.NewNopLogger())
	resolved, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Len(t, resolved, 6)
}

func TestResolveMissingFileIsBatchFatal(t *testing.T) {
	root := t.TempDir()
	writeDatasetFiles(t, root, map[string]string{
		"cust_info.csv":     "",
		"prd_info.csv":      "",
		"sales_details.csv": "",
		"CUST_AZ12.csv":     "",
		"LOC_A101.csv":      "",
		// PX_CAT_G1V2.csv deliberately absent.
	})

	r := NewResolver(models.DatasetConfig{Path: root}, observability.NewNopLogger())
	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetIncomplete, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "PX_CAT_G1V2.csv")
}

func TestResolveNonexistentDirectory(t *testing.T) {
	r := NewResolver(models.DatasetConfig{Path: "/nonexistent/dataset"}, observability.NewNopLogger())
	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileOperation, errors.GetErrorCode(err))
}

func TestFileForTable(t *testing.T) {
	sf, ok := FileForTable("bronze.erp_customer_demo")
	require.True(t, ok)
	assert.Equal(t, "CUST_AZ12.csv", sf.Name)

	_, ok = FileForTable("bronze.unknown")
	assert.False(t, ok)
}

func TestRepoCacheKeyStable(t *testing.T) {
	a := repoCacheKey("https://github.com/acme/warehouse-data.git")
	b := repoCacheKey("https://github.com/acme/warehouse-data.git")
	c := repoCacheKey("https://github.com/acme/other-data.git")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "warehouse-data-")
}
