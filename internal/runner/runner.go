// Package runner orchestrates a full batch: dataset resolution, schema
// provisioning, bronze loads, silver transforms, gold views, and the final
// summary, report, and history record.
package runner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flakeforge/internal/bronze"
	"flakeforge/internal/dataset"
	"flakeforge/internal/history"
	"flakeforge/internal/schema"
	"flakeforge/internal/silver"
	"flakeforge/internal/warehouse"
	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

// Layer names accepted by the --layers flag, in execution order.
var AllLayers = []string{"bronze", "silver", "gold"}

// Options tunes one batch run.
type Options struct {
	// Layers restricts which layers execute; empty means all three.
	Layers []string
	// Tables restricts which tables (by unqualified name) are processed;
	// empty means all six.
	Tables []string
	// Parallel overrides the configured silver parallelism when > 0.
	Parallel int
	// DryRun prints the execution plan without touching the warehouse.
	DryRun bool
	// ReportPath, when set, receives the run report as JSON.
	ReportPath string
	// Notify, when set, receives live step events for console rendering.
	Notify StepNotifier
}

// StepNotifier receives step lifecycle events as a run executes. Silver
// steps can run concurrently, so implementations must be safe for
// concurrent use.
type StepNotifier interface {
	StepStarted(step, table string, index, total int)
	StepFinished(step, table string, duration time.Duration, err error)
}

// Runner executes batches against one warehouse.
type Runner struct {
	warehouse *warehouse.Service
	config    *models.Config
	ledger    *history.Store
	logger    *zap.Logger

	// now supplies the batch clock. Overridable in tests.
	now func() time.Time
}

// New creates a runner. The history ledger may be nil, in which case runs
// are not recorded locally.
func New(svc *warehouse.Service, cfg *models.Config, ledger *history.Store, logger *zap.Logger) *Runner {
	return &Runner{
		warehouse: svc,
		config:    cfg,
		ledger:    ledger,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute runs the batch described by opts. The returned report is populated
// even when the run fails; the error is non-nil whenever any step failed.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))

	report := &Report{
		RunID:     runID,
		StartedAt: r.now(),
		Status:    history.StatusSuccess,
	}

	layers, err := layerSet(opts.Layers)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		r.planOnly(logger, report, layers, opts)
		report.FinishedAt = r.now()
		return report, nil
	}

	logger.Info("Run started",
		zap.Strings("layers", layerNames(layers)),
		zap.Strings("tables", opts.Tables),
	)

	err = r.execute(ctx, logger, report, layers, opts)

	report.FinishedAt = r.now()
	if err != nil {
		report.Status = history.StatusFailed
	}
	r.record(ctx, logger, report)

	if opts.ReportPath != "" {
		if werr := report.WriteFile(opts.ReportPath); werr != nil {
			logger.Warn("Failed to write run report", zap.Error(werr))
		}
	}

	if err != nil {
		logger.Error("Run failed",
			zap.Duration("elapsed", report.Elapsed()),
			zap.Error(err),
		)
		return report, err
	}

	logger.Info("Run finished",
		zap.Int64("total_rows", report.TotalRows),
		zap.Duration("elapsed", report.Elapsed()),
	)
	return report, nil
}

func (r *Runner) execute(ctx context.Context, logger *zap.Logger, report *Report, layers map[string]bool, opts Options) error {
	// Resolve the dataset before touching the warehouse: a missing source
	// file fails the batch before any load starts.
	var files []dataset.Resolved
	if layers["bronze"] {
		resolver := dataset.NewResolver(r.config.Dataset, logger)
		resolved, err := resolver.Resolve(ctx)
		if err != nil {
			return err
		}
		files = filterFiles(resolved, opts.Tables)
	}

	provisioner := schema.NewProvisioner(r.warehouse, logger)
	if err := provisioner.Provision(ctx); err != nil {
		return err
	}

	var firstErr error
	failedBronze := make(map[string]bool)

	if layers["bronze"] {
		loader := bronze.NewLoader(r.warehouse, logger)
		for i, f := range files {
			if opts.Notify != nil {
				opts.Notify.StepStarted("bronze", f.Table, i+1, len(files))
			}
			res := loader.LoadTable(ctx, f)
			if opts.Notify != nil {
				opts.Notify.StepFinished("bronze", res.Table, res.Duration, res.Err)
			}
			step := StepReport{
				Step:     "bronze",
				Table:    res.Table,
				Status:   history.StatusSuccess,
				RowsIn:   res.RowsParsed,
				RowsOut:  res.RowsLoaded,
				Duration: res.Duration,
			}
			if res.Err != nil {
				step.Status = history.StatusFailed
				step.Error = res.Err.Error()
				failedBronze[warehouse.UnqualifiedName(res.Table)] = true
				if firstErr == nil {
					firstErr = res.Err
				}
			} else {
				report.TotalRows += res.RowsLoaded
			}
			report.Steps = append(report.Steps, step)
		}
	}

	if layers["silver"] {
		// A failed bronze table skips its dependent silver transform; the
		// bronze and silver tables share unqualified names.
		selected, skipped := silverSelection(opts.Tables, failedBronze)
		for _, table := range skipped {
			report.Steps = append(report.Steps, StepReport{
				Step:   "silver",
				Table:  table,
				Status: history.StatusSkipped,
				Error:  "bronze load failed",
			})
		}

		run := r.config.Run
		if opts.Parallel > 0 {
			run.Parallelism = opts.Parallel
		}
		engine := silver.NewEngine(r.warehouse, logger, run)
		if opts.Notify != nil {
			notify := opts.Notify
			engine.OnStepResult(func(res silver.StepResult) {
				notify.StepFinished("silver", res.Table, res.Duration, res.Err)
			})
		}
		results, err := engine.TransformAll(ctx, selected)
		for _, res := range results {
			if res.Table == "" {
				// Step cancelled before it started.
				continue
			}
			step := StepReport{
				Step:     "silver",
				Table:    res.Table,
				Status:   history.StatusSuccess,
				RowsIn:   int64(res.Counters.RowsIn),
				RowsOut:  int64(res.Counters.RowsOut),
				Duration: res.Duration,
			}
			if res.Err != nil {
				step.Status = history.StatusFailed
				step.Error = res.Err.Error()
			}
			report.Steps = append(report.Steps, step)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if layers["gold"] {
		step := StepReport{Step: "gold", Table: "gold.*", Status: history.StatusSuccess}
		if firstErr != nil {
			step.Status = history.StatusSkipped
			step.Error = "earlier step failed"
		} else {
			if opts.Notify != nil {
				opts.Notify.StepStarted("gold", "gold.*", 1, 1)
			}
			start := time.Now()
			provisioner := schema.NewProvisioner(r.warehouse, logger)
			err := provisioner.ProvisionViews(ctx)
			step.Duration = time.Since(start)
			if opts.Notify != nil {
				opts.Notify.StepFinished("gold", "gold.*", step.Duration, err)
			}
			if err != nil {
				step.Status = history.StatusFailed
				step.Error = err.Error()
				firstErr = err
			}
		}
		report.Steps = append(report.Steps, step)
	}

	return firstErr
}

// planOnly fills the report with the steps a real run would execute.
func (r *Runner) planOnly(logger *zap.Logger, report *Report, layers map[string]bool, opts Options) {
	logger.Info("Dry run: printing plan only")

	if layers["bronze"] {
		for _, sf := range dataset.Manifest {
			if !tableSelected(opts.Tables, sf.Table) {
				continue
			}
			report.Steps = append(report.Steps, StepReport{
				Step: "bronze", Table: sf.Table, Status: history.StatusSkipped,
			})
		}
	}
	if layers["silver"] {
		for _, t := range silver.Tables() {
			if !tableSelected(opts.Tables, t) {
				continue
			}
			report.Steps = append(report.Steps, StepReport{
				Step: "silver", Table: t, Status: history.StatusSkipped,
			})
		}
	}
	if layers["gold"] {
		report.Steps = append(report.Steps, StepReport{
			Step: "gold", Table: "gold.*", Status: history.StatusSkipped,
		})
	}
}

func (r *Runner) record(ctx context.Context, logger *zap.Logger, report *Report) {
	if r.ledger == nil {
		return
	}

	run := history.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Status:     report.Status,
		TotalRows:  report.TotalRows,
	}
	for _, step := range report.Steps {
		if step.Status == history.StatusFailed && run.Error == "" {
			run.Error = step.Error
		}
		run.Steps = append(run.Steps, history.Step{
			Step:     step.Step,
			Table:    step.Table,
			Status:   step.Status,
			RowsIn:   step.RowsIn,
			RowsOut:  step.RowsOut,
			Duration: step.Duration,
			Error:    step.Error,
		})
	}

	if err := r.ledger.RecordRun(ctx, run); err != nil {
		logger.Warn("Failed to record run in history ledger", zap.Error(err))
	}
}

// layerSet validates and normalizes the --layers selection.
func layerSet(layers []string) (map[string]bool, error) {
	set := make(map[string]bool, len(AllLayers))
	if len(layers) == 0 {
		for _, l := range AllLayers {
			set[l] = true
		}
		return set, nil
	}

	for _, l := range layers {
		name := strings.ToLower(strings.TrimSpace(l))
		switch name {
		case "bronze", "silver", "gold":
			set[name] = true
		default:
			return nil, errors.ValidationError("layers", l, "unknown layer name").
				WithSuggestions("Valid layers are: bronze, silver, gold")
		}
	}
	return set, nil
}

func layerNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for _, l := range AllLayers {
		if set[l] {
			names = append(names, l)
		}
	}
	return names
}

// silverSelection returns the silver tables to transform given an optional
// table filter and the bronze tables that failed this run. The second return
// lists the silver tables skipped because of a failed bronze dependency.
func silverSelection(tables []string, failedBronze map[string]bool) (selected, skipped []string) {
	for _, table := range silver.Tables() {
		name := warehouse.UnqualifiedName(table)
		if !tableSelected(tables, table) {
			continue
		}
		if failedBronze[name] {
			skipped = append(skipped, table)
			continue
		}
		selected = append(selected, name)
	}
	if len(skipped) == 0 && len(tables) == 0 {
		// No filtering needed; let the engine run its full step list.
		return nil, nil
	}
	return selected, skipped
}

// tableSelected reports whether table passes the --tables filter.
func tableSelected(filter []string, table string) bool {
	if len(filter) == 0 {
		return true
	}
	name := strings.ToLower(warehouse.UnqualifiedName(table))
	for _, f := range filter {
		if strings.ToLower(warehouse.UnqualifiedName(f)) == name {
			return true
		}
	}
	return false
}

// filterFiles applies the --tables filter to the resolved dataset.
func filterFiles(files []dataset.Resolved, tables []string) []dataset.Resolved {
	if len(tables) == 0 {
		return files
	}
	out := make([]dataset.Resolved, 0, len(files))
	for _, f := range files {
		if tableSelected(tables, f.Table) {
			out = append(out, f)
		}
	}
	return out
}
