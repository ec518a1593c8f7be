// Package bronze lands the raw CSV extracts into the bronze tables. Loads
// are full refreshes: each table is rebuilt in a staging clone and swapped
// into place, so a failed load never leaves a half-empty live table.
package bronze

import (
	"context"
	"time"

	"go.uber.org/zap"

	"flakeforge/internal/dataset"
	"flakeforge/internal/warehouse"
	"flakeforge/pkg/errors"
)

// LoadResult reports one bronze table load.
type LoadResult struct {
	Table      string
	File       string
	RowsParsed int64
	RowsLoaded int64
	Duration   time.Duration
	Err        error
}

// Loader performs the bronze layer refresh.
type Loader struct {
	warehouse *warehouse.Service
	logger    *zap.Logger
}

// NewLoader creates a bronze loader.
func NewLoader(svc *warehouse.Service, logger *zap.Logger) *Loader {
	return &Loader{
		warehouse: svc,
		logger:    logger,
	}
}

// LoadAll loads every resolved source file into its bronze table, in
// manifest order. Table failures are isolated: a failed table is recorded
// in its LoadResult and the remaining tables still load.
func (l *Loader) LoadAll(ctx context.Context, files []dataset.Resolved) []LoadResult {
	results := make([]LoadResult, 0, len(files))
	for _, f := range files {
		results = append(results, l.LoadTable(ctx, f))
	}
	return results
}

// LoadTable refreshes one bronze table: staging clone, PUT+COPY into the
// clone, swap into place. The staging table is dropped on any failure.
func (l *Loader) LoadTable(ctx context.Context, f dataset.Resolved) LoadResult {
	start := time.Now()
	result := LoadResult{Table: f.Table, File: f.Name}

	l.logger.Info("Loading bronze table",
		zap.String("table", f.Table),
		zap.String("file", f.Name),
	)

	staging, err := l.warehouse.CreateStagingClone(ctx, f.Table)
	if err != nil {
		result.Err = errors.StepError("bronze", f.Table, err)
		result.Duration = time.Since(start)
		return result
	}

	copyResult, err := l.warehouse.LoadCSVFile(ctx, f.Path, staging)
	if err != nil {
		l.warehouse.DropStaging(ctx, staging)
		result.Err = errors.StepError("bronze", f.Table, err)
		result.Duration = time.Since(start)
		return result
	}
	result.RowsParsed = copyResult.RowsParsed
	result.RowsLoaded = copyResult.RowsLoaded

	if err := l.warehouse.SwapAndDrop(ctx, staging, f.Table); err != nil {
		l.warehouse.DropStaging(ctx, staging)
		result.Err = errors.StepError("bronze", f.Table, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	l.logger.Info("Bronze table loaded",
		zap.String("table", f.Table),
		zap.Int64("rows", result.RowsLoaded),
		zap.Duration("elapsed", result.Duration),
	)
	return result
}
