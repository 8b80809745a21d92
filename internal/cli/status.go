package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcod/internal/state"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <orchestration-id>",
		Short: "Show orchestration progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Server.Status(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.style(titleStyle, "Orchestration"), report.ID)
			fmt.Fprintf(app.Out, "  Status:    %s\n", app.styleStatus(report.Status))
			if report.Workflow != "" {
				fmt.Fprintf(app.Out, "  Workflow:  %s\n", report.Workflow)
			}
			if report.TotalSteps > 0 {
				fmt.Fprintf(app.Out, "  Progress:  %d/%d steps (%.0f%%)\n",
					len(report.CompletedStepIDs), report.TotalSteps, report.Progress*100)
			}
			if len(report.CompletedStepIDs) > 0 {
				fmt.Fprintf(app.Out, "  Completed: %s\n", strings.Join(report.CompletedStepIDs, ", "))
			}
			if !report.UpdatedAt.IsZero() {
				fmt.Fprintf(app.Out, "  Updated:   %s\n", app.style(dimStyle, report.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
			}
			return nil
		},
	}
}

func (a *App) styleStatus(s state.Status) string {
	switch s {
	case state.StatusCompleted:
		return a.style(successStyle, string(s))
	case state.StatusUnknown:
		return a.style(failureStyle, string(s))
	default:
		return a.style(stepStyle, string(s))
	}
}
