package runner

import (
	"os"
	"time"

	"github.com/bytedance/sonic"

	"flakeforge/internal/common"
	"flakeforge/pkg/errors"
)

// StepReport is one executed (or skipped) layer step.
type StepReport struct {
	Step     string        `json:"step"`
	Table    string        `json:"table"`
	Status   string        `json:"status"`
	RowsIn   int64         `json:"rows_in"`
	RowsOut  int64         `json:"rows_out"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Report summarizes one batch run.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Status     string       `json:"status"`
	TotalRows  int64        `json:"total_rows"`
	Steps      []StepReport `json:"steps"`
}

// Elapsed is the end-to-end batch duration.
func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// WriteFile serializes the report as indented JSON to path.
func (r *Report) WriteFile(path string) error {
	data, err := sonic.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "Failed to encode run report")
	}

	if err := os.WriteFile(path, data, common.FilePermissionNormal); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to write run report").
			WithContext("path", path)
	}
	return nil
}
