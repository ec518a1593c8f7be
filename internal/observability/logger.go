// Package observability owns construction of the structured logger used
// across every batch component. Components receive a *zap.Logger and log with
// typed fields; they never build their own logging sinks.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"flakeforge/internal/common"
	"flakeforge/pkg/models"
)

// NewLogger builds the application logger: a console core at the configured
// level plus a JSON file core (always at debug) appended under the app home
// directory. The returned cleanup func flushes buffered entries.
func NewLogger(cfg models.LoggingConfig) (*zap.Logger, func(), error) {
	consoleLevel := parseLevel(cfg.Level)

	logDir := cfg.Directory
	if logDir == "" {
		home, err := common.AppHome()
		if err != nil {
			return nil, nil, err
		}
		logDir = filepath.Join(home, "logs")
	}
	if err := os.MkdirAll(logDir, common.DirPermissionSecure); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "flakeforge.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, common.FilePermissionSecure)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderCfg),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
		zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderCfg),
			zapcore.Lock(logFile),
			zapcore.DebugLevel,
		),
	)

	logger := zap.New(core, zap.AddCaller())

	cleanup := func() {
		_ = logger.Sync()
		_ = logFile.Close()
	}

	return logger, cleanup, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests and
// by commands that have no batch to log.
func NewNopLogger() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
