package models

import "time"

// Config is the root configuration loaded from config.yaml. Structural
// validation runs at load time via the validate tags; the warehouse password
// is never stored here (see PasswordRef).
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse" validate:"required"`
	Dataset   DatasetConfig   `yaml:"dataset" validate:"required"`
	Run       RunConfig       `yaml:"run"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WarehouseConfig identifies the Snowflake target for a batch.
type WarehouseConfig struct {
	Account   string `yaml:"account" validate:"required"`
	Username  string `yaml:"username" validate:"required"`
	Role      string `yaml:"role" validate:"required"`
	Warehouse string `yaml:"warehouse" validate:"required"`
	Database  string `yaml:"database" validate:"required"`
	// PasswordRef names the entry in the credential store that holds the
	// warehouse password. The password itself never appears in YAML.
	PasswordRef string `yaml:"password_ref" validate:"required"`
	Timeout     string `yaml:"timeout" validate:"omitempty"`
}

// ConnectTimeout parses the configured timeout, defaulting to 30s.
func (w WarehouseConfig) ConnectTimeout() time.Duration {
	if w.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(w.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DatasetConfig locates the six source CSV extracts. Exactly one of Path or
// GitURL must be set: a local directory, or a git repository synced into the
// app cache before each run.
type DatasetConfig struct {
	Path   string `yaml:"path" validate:"required_without=GitURL"`
	GitURL string `yaml:"git_url" validate:"required_without=Path"`
	Branch string `yaml:"branch"`
}

// RunConfig tunes batch execution.
type RunConfig struct {
	// Parallelism bounds the number of silver table transforms running at
	// once. 1 (the default) preserves strictly sequential execution.
	Parallelism int `yaml:"parallelism" validate:"omitempty,min=1,max=6"`
	// ChunkSize is the number of rows per multi-row INSERT when writing
	// silver staging tables.
	ChunkSize int `yaml:"chunk_size" validate:"omitempty,min=1"`
}

// ParallelismOrDefault returns the configured parallelism, minimum 1.
func (r RunConfig) ParallelismOrDefault() int {
	if r.Parallelism < 1 {
		return 1
	}
	return r.Parallelism
}

// ChunkSizeOrDefault returns the configured insert chunk size, default 500.
func (r RunConfig) ChunkSizeOrDefault() int {
	if r.ChunkSize < 1 {
		return 500
	}
	return r.ChunkSize
}

// LoggingConfig controls the structured log output.
type LoggingConfig struct {
	// Level is the console log level: debug, info, warn, or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// Directory overrides where the JSON log file is written. Empty means
	// the app home directory.
	Directory string `yaml:"directory"`
}
