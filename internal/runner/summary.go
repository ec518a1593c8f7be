package runner

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"flakeforge/internal/history"
	"flakeforge/internal/ui"
)

// WriteSummary renders the per-step run summary as a table.
func (r *Report) WriteSummary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Layer", "Table", "Status", "Rows In", "Rows Out", "Duration"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, step := range r.Steps {
		table.Append([]string{
			step.Step,
			step.Table,
			statusCell(step.Status),
			fmt.Sprintf("%d", step.RowsIn),
			fmt.Sprintf("%d", step.RowsOut),
			ui.FormatDuration(step.Duration),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\nRun %s: %s in %s (%d rows loaded)\n",
		r.RunID[:8], statusCell(r.Status), ui.FormatDuration(r.Elapsed()), r.TotalRows)
}

func statusCell(status string) string {
	switch status {
	case history.StatusSuccess:
		return color.GreenString("OK")
	case history.StatusFailed:
		return color.RedString("FAILED")
	case history.StatusSkipped:
		return color.YellowString("SKIPPED")
	default:
		return status
	}
}
