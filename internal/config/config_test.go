package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

func testConfig() *models.Config {
	return &models.Config{
		Warehouse: models.WarehouseConfig{
			Account:     "xy12345.us-east-1",
			Username:    "loader",
			Role:        "SYSADMIN",
			Warehouse:   "COMPUTE_WH",
			Database:    "DATAWAREHOUSE",
			PasswordRef: "warehouse-password",
		},
		Dataset: models.DatasetConfig{
			Path: "/data/extracts",
		},
	}
}

func withTempHome(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("FLAKEFORGE_CONFIG", "")
	os.Unsetenv("FLAKEFORGE_CONFIG")
	return tempDir
}

func TestGetConfigPath(t *testing.T) {
	home := withTempHome(t)
	assert.Equal(t, filepath.Join(home, ".flakeforge"), GetConfigPath())
}

func TestGetConfigFileEnvOverride(t *testing.T) {
	withTempHome(t)
	t.Setenv("FLAKEFORGE_CONFIG", "/etc/flakeforge/config.yaml")
	assert.Equal(t, "/etc/flakeforge/config.yaml", GetConfigFile())
}

func TestSaveAndLoad(t *testing.T) {
	withTempHome(t)

	cfg := testConfig()
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)

	assert.Equal(t, cfg.Warehouse, loaded.Warehouse)
	assert.Equal(t, cfg.Dataset, loaded.Dataset)
}

func TestLoadMissingConfig(t *testing.T) {
	withTempHome(t)

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetErrorCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *models.Config) {},
			wantErr: false,
		},
		{
			name: "missing account",
			mutate: func(c *models.Config) {
				c.Warehouse.Account = ""
			},
			wantErr: true,
		},
		{
			name: "missing password ref",
			mutate: func(c *models.Config) {
				c.Warehouse.PasswordRef = ""
			},
			wantErr: true,
		},
		{
			name: "no dataset source",
			mutate: func(c *models.Config) {
				c.Dataset = models.DatasetConfig{}
			},
			wantErr: true,
		},
		{
			name: "git source only",
			mutate: func(c *models.Config) {
				c.Dataset = models.DatasetConfig{GitURL: "https://github.com/acme/extracts.git", Branch: "main"}
			},
			wantErr: false,
		},
		{
			name: "both dataset sources",
			mutate: func(c *models.Config) {
				c.Dataset.GitURL = "https://github.com/acme/extracts.git"
			},
			wantErr: true,
		},
		{
			name: "parallelism out of range",
			mutate: func(c *models.Config) {
				c.Run.Parallelism = 12
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
