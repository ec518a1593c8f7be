package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"flakeforge/internal/history"
	"flakeforge/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent runs or show one run's step detail",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	ledger, err := history.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if len(args) == 1 {
		return showRun(cmd, ledger, args[0])
	}
	return listRuns(cmd, ledger)
}

func listRuns(cmd *cobra.Command, ledger *history.Store) error {
	runs, err := ledger.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.ShowInfo("No runs recorded yet")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Started", "Duration", "Status", "Rows"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, run := range runs {
		table.Append([]string{
			run.ID[:8],
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			ui.FormatDuration(run.FinishedAt.Sub(run.StartedAt)),
			historyStatus(run.Status),
			fmt.Sprintf("%d", run.TotalRows),
		})
	}
	table.Render()
	return nil
}

func showRun(cmd *cobra.Command, ledger *history.Store, id string) error {
	run, err := ledger.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	ui.PrintSection(fmt.Sprintf("Run %s", run.ID))
	ui.PrintKeyValue("Started", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	ui.PrintKeyValue("Duration", ui.FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
	ui.PrintKeyValue("Status", run.Status)
	ui.PrintKeyValue("Total rows", fmt.Sprintf("%d", run.TotalRows))
	if run.Error != "" {
		ui.PrintKeyValue("Error", run.Error)
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Layer", "Table", "Status", "Rows In", "Rows Out", "Duration"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, step := range run.Steps {
		table.Append([]string{
			step.Step,
			step.Table,
			historyStatus(step.Status),
			fmt.Sprintf("%d", step.RowsIn),
			fmt.Sprintf("%d", step.RowsOut),
			ui.FormatDuration(step.Duration),
		})
	}
	table.Render()
	return nil
}

func historyStatus(status string) string {
	switch status {
	case history.StatusSuccess:
		return color.GreenString(status)
	case history.StatusFailed:
		return color.RedString(status)
	case history.StatusSkipped:
		return color.YellowString(status)
	default:
		return status
	}
}
