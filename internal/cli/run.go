package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcod/internal/adapter"
)

func newRunCommand(app *App) *cobra.Command {
	var (
		adapterName string
		varFlags    []string
		maxAttempts int
		resumeID    string
	)

	cmd := &cobra.Command{
		Use:   "run <workflow-dir>",
		Short: "Run a workflow to completion",
		Long: `Run a workflow directory to completion: issue a directive for each
step, execute it through the agent backend, and evaluate the result.
A step that fails evaluation is reissued until it passes or the
attempt limit is reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			overrides, err := parseVarFlags(varFlags)
			if err != nil {
				return err
			}
			if maxAttempts == 0 {
				maxAttempts = app.Settings.Run.MaxAttempts
			}

			var id string
			if resumeID != "" {
				id = resumeID
				if err := app.Server.Resume(id, dir, adapterName); err != nil {
					return err
				}
			} else {
				id, err = app.Server.Start(dir, adapterName, overrides)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.style(titleStyle, "Orchestration"), id)
			return app.runLoop(cmd, id, maxAttempts)
		},
	}

	cmd.Flags().StringVar(&adapterName, "adapter", AdapterAgent, "adapter backend to execute directives with")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "override a data variable (key=value, repeatable)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "give up after this many attempts per step (0 = unlimited)")
	cmd.Flags().StringVar(&resumeID, "id", "", "resume an existing orchestration id")
	return cmd
}

// runLoop drives one orchestration until its completion directive.
func (a *App) runLoop(cmd *cobra.Command, id string, maxAttempts int) error {
	attempts := 0
	lastStep := ""

	for {
		d, err := a.Server.NextDirective(id)
		if err != nil {
			return err
		}
		if d.Type == adapter.DirectiveWorkflowComplete {
			fmt.Fprintf(a.Out, "%s %s\n", a.style(successStyle, "✓"), d.Message)
			return nil
		}

		if d.StepID != lastStep {
			lastStep = d.StepID
			attempts = 0
		}
		attempts++

		fmt.Fprintf(a.Out, "%s %s\n",
			a.style(stepStyle, fmt.Sprintf("[%d/%d] %s", d.StepIndex+1, d.TotalSteps, d.StepID)),
			d.Instruction)

		result, err := a.Server.ExecuteDirective(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("step %s: %w", d.StepID, err)
		}
		a.printOutput(result.Output)

		ev, err := a.Server.ProcessResult(id, result)
		if err != nil {
			return err
		}

		if ev.Success {
			fmt.Fprintf(a.Out, "  %s %s (%.0f%%)\n",
				a.style(successStyle, "✓"), ev.Feedback, ev.Progress*100)
			continue
		}

		fmt.Fprintf(a.Out, "  %s %s\n", a.style(failureStyle, "✗"), ev.Feedback)
		if maxAttempts > 0 && attempts >= maxAttempts {
			fmt.Fprintf(a.Out, "%s step %s failed after %d attempts\n",
				a.style(failureStyle, "Giving up:"), d.StepID, attempts)
			return NewExitError(1)
		}
	}
}

// printOutput echoes step output, truncated per settings.
func (a *App) printOutput(output string) {
	if output == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	limit := a.Settings.Output.TruncateLines
	truncated := false
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
		truncated = true
	}
	for _, line := range lines {
		fmt.Fprintf(a.Out, "  %s\n", a.style(dimStyle, line))
	}
	if truncated {
		fmt.Fprintf(a.Out, "  %s\n", a.style(dimStyle, "..."))
	}
}

// parseVarFlags turns repeated key=value flags into an override map.
func parseVarFlags(flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q (want key=value)", f)
		}
		vars[key] = value
	}
	return vars, nil
}
