package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mcod/internal/config"
	"mcod/internal/planner"
)

func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow-dir>",
		Short: "Parse a workflow directory and report its structure",
		Long: `Parse a workflow directory without starting it. Reports the workflow
name, steps, success criteria, and the steps at which feature and
style guidance would be injected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.style(titleStyle, "Workflow:"), cfg.Core.Name)
			if cfg.Core.Version != "" {
				fmt.Fprintf(app.Out, "  Version: %s\n", cfg.Core.Version)
			}
			if cfg.SuccessCriteria.Goal != "" {
				fmt.Fprintf(app.Out, "  Goal:    %s\n", cfg.SuccessCriteria.Goal)
			}

			plan := planner.Compute(cfg.Core.Steps)
			fmt.Fprintf(app.Out, "\n%s\n", app.style(titleStyle, fmt.Sprintf("Steps (%d):", len(cfg.Core.Steps))))
			for i, step := range cfg.Core.Steps {
				fmt.Fprintf(app.Out, "  %s %s%s\n",
					app.style(stepStyle, fmt.Sprintf("%d. %s", i+1, step.ID)),
					step.Task,
					injectionTags(plan, i))
			}

			if len(cfg.SuccessCriteria.Criteria) > 0 {
				fmt.Fprintf(app.Out, "\n%s\n", app.style(titleStyle, "Success criteria:"))
				for _, c := range cfg.SuccessCriteria.Criteria {
					fmt.Fprintf(app.Out, "  - %s\n", c)
				}
			}

			fmt.Fprintf(app.Out, "\n  Feature blocks: %d\n", len(cfg.Features.Blocks))
			fmt.Fprintf(app.Out, "  Style blocks:   %d\n", len(cfg.Styles.Blocks))
			fmt.Fprintf(app.Out, "%s\n", app.style(successStyle, "✓ workflow is valid"))
			return nil
		},
	}
}

func injectionTags(plan planner.Plan, index int) string {
	var tags []string
	if plan.InjectFeaturesAt(index) {
		tags = append(tags, "features")
	}
	if plan.InjectStylesAt(index) {
		tags = append(tags, "styles")
	}
	if len(tags) == 0 {
		return ""
	}
	sort.Strings(tags)
	out := "  [inject:"
	for _, tag := range tags {
		out += " " + tag
	}
	return out + "]"
}
