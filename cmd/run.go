package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flakeforge/internal/config"
	"flakeforge/internal/history"
	"flakeforge/internal/runner"
	"flakeforge/internal/security"
	"flakeforge/internal/ui"
	"flakeforge/internal/warehouse"
)

var (
	runLayers   []string
	runTables   []string
	runParallel int
	runDryRun   bool
	runYes      bool
	runReport   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a batch refresh of the warehouse",
	Long: "Resolves the configured dataset, provisions the warehouse objects,\n" +
		"loads the bronze tables, transforms them into silver, and refreshes\n" +
		"the gold views. Every table is rebuilt in a staging clone and swapped\n" +
		"in atomically, so readers never see a half-loaded table.",
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runLayers, "layers", nil, "layers to execute (bronze,silver,gold; default all)")
	runCmd.Flags().StringSliceVar(&runTables, "tables", nil, "restrict to specific tables by unqualified name")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "max concurrent silver transforms (overrides config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the execution plan without touching the warehouse")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the confirmation prompt")
	runCmd.Flags().StringVar(&runReport, "report", "", "write a JSON run report to this path")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ctx := cmd.Context()
	opts := runner.Options{
		Layers:     runLayers,
		Tables:     runTables,
		Parallel:   runParallel,
		DryRun:     runDryRun,
		ReportPath: runReport,
		Notify:     &consoleProgress{},
	}

	var svc *warehouse.Service
	if runDryRun {
		svc = warehouse.NewService(cfg.Warehouse, "", logger)
	} else {
		if !runYes {
			ok, err := ui.Confirm(
				fmt.Sprintf("Run full refresh against %s/%s?", cfg.Warehouse.Account, cfg.Warehouse.Database),
				true,
			)
			if err != nil {
				return err
			}
			if !ok {
				ui.ShowInfo("Run cancelled")
				return nil
			}
		}

		creds, err := security.NewCredentialManager()
		if err != nil {
			return err
		}
		password, err := creds.GetPassword(cfg.Warehouse.PasswordRef)
		if err != nil {
			return err
		}

		svc = warehouse.NewService(cfg.Warehouse, password, logger)
		if err := svc.Connect(ctx); err != nil {
			return err
		}
		defer svc.Close()
	}

	var ledger *history.Store
	if !runDryRun {
		if path, err := history.DefaultPath(); err == nil {
			if ledger, err = history.Open(path); err != nil {
				logger.Warn("History ledger unavailable", zap.Error(err))
				ledger = nil
			} else {
				defer ledger.Close()
			}
		}
	}

	report, err := runner.New(svc, cfg, ledger, logger).Execute(ctx, opts)
	if report != nil {
		report.WriteSummary(os.Stdout)
	}
	return err
}

// consoleProgress renders live step lines while the batch runs. Silver
// steps finish concurrently, so writes are serialized.
type consoleProgress struct {
	mu sync.Mutex
}

func (p *consoleProgress) StepStarted(step, table string, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ui.ShowStepExecution(fmt.Sprintf("%s %s", step, table), index, total)
}

func (p *consoleProgress) StepFinished(step, table string, duration time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	message := ""
	if err != nil {
		message = err.Error()
	}
	ui.ShowStepResult(fmt.Sprintf("%s %s", step, table), err == nil, message, ui.FormatDuration(duration))
}
