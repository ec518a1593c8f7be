package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := &Config{
		Warehouse: WarehouseConfig{
			Account:     "xy12345.us-east-1",
			Username:    "loader",
			Role:        "SYSADMIN",
			Warehouse:   "COMPUTE_WH",
			Database:    "DATAWAREHOUSE",
			PasswordRef: "warehouse-password",
			Timeout:     "45s",
		},
		Dataset: DatasetConfig{
			Path: "/data/source_crm",
		},
		Run: RunConfig{
			Parallelism: 4,
			ChunkSize:   250,
		},
		Logging: LoggingConfig{
			Level: "debug",
		},
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))

	assert.Equal(t, cfg.Warehouse, loaded.Warehouse)
	assert.Equal(t, cfg.Dataset, loaded.Dataset)
	assert.Equal(t, cfg.Run, loaded.Run)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}

func TestConnectTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"empty defaults to 30s", "", 30 * time.Second},
		{"valid duration", "2m", 2 * time.Minute},
		{"garbage defaults to 30s", "soon", 30 * time.Second},
		{"negative defaults to 30s", "-5s", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WarehouseConfig{Timeout: tt.timeout}
			assert.Equal(t, tt.want, w.ConnectTimeout())
		})
	}
}

func TestRunConfigDefaults(t *testing.T) {
	var r RunConfig
	assert.Equal(t, 1, r.ParallelismOrDefault())
	assert.Equal(t, 500, r.ChunkSizeOrDefault())

	r = RunConfig{Parallelism: 6, ChunkSize: 100}
	assert.Equal(t, 6, r.ParallelismOrDefault())
	assert.Equal(t, 100, r.ChunkSizeOrDefault())
}
