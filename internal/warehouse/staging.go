package warehouse

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"flakeforge/pkg/errors"
)

// Full refreshes never truncate a live table in place. The loader builds the
// new contents in a staging clone, then swaps it with the live table in one
// statement, so readers either see the previous run or the new one - never
// an empty table mid-load. On failure the staging table is dropped and the
// live table keeps its prior contents.

// StagingName derives the staging table name for a live table.
// "silver.crm_customer_info" -> "silver.crm_customer_info__stg".
func StagingName(table string) string {
	return table + "__stg"
}

// CreateStagingClone creates (or replaces) an empty staging clone of the
// live table, copying its column definitions and defaults.
func (s *Service) CreateStagingClone(ctx context.Context, table string) (string, error) {
	staging := StagingName(table)
	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s LIKE %s", staging, table)

	if _, err := s.Exec(ctx, query); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStagingFailed, "Failed to create staging clone").
			WithContext("table", table).
			WithContext("staging", staging)
	}

	s.logger.Debug("created staging clone", zap.String("staging", staging))
	return staging, nil
}

// SwapAndDrop atomically swaps the staging table with the live table and
// drops the staging table (which holds the previous live contents after the
// swap).
func (s *Service) SwapAndDrop(ctx context.Context, staging, table string) error {
	swap := fmt.Sprintf("ALTER TABLE %s SWAP WITH %s", table, staging)
	if _, err := s.Exec(ctx, swap); err != nil {
		return errors.Wrap(err, errors.ErrCodeSwapFailed, "Failed to swap staging table into place").
			WithContext("table", table).
			WithContext("staging", staging)
	}

	if _, err := s.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", staging)); err != nil {
		// The swap already succeeded; a leftover staging table is recreated
		// on the next run, so log and move on.
		s.logger.Warn("failed to drop staging table after swap",
			zap.String("staging", staging), zap.Error(err))
	}

	s.logger.Debug("swapped staging table into place", zap.String("table", table))
	return nil
}

// DropStaging removes a staging table after a failed load.
func (s *Service) DropStaging(ctx context.Context, staging string) {
	if _, err := s.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", staging)); err != nil {
		s.logger.Warn("failed to drop staging table", zap.String("staging", staging), zap.Error(err))
	}
}

// UnqualifiedName strips the schema qualifier from a table name.
func UnqualifiedName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
