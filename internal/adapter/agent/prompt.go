package agent

import (
	"fmt"
	"strings"

	"mcod/internal/adapter"
	"mcod/internal/config"
)

// renderPrompt flattens a directive into the prompt handed to the agent
// process. Sections appear in a fixed order: task, guidance, workflow
// context, then any injected guidance.
func renderPrompt(d adapter.Directive) string {
	if d.Type == adapter.DirectiveWorkflowComplete {
		return d.Message
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Step %d of %d: %s\n\n%s\n", d.StepIndex+1, d.TotalSteps, d.StepID, d.Instruction)

	if d.Guidance != "" {
		fmt.Fprintf(&b, "\n## Guidance\n\n%s\n", d.Guidance)
	}

	if pc := d.PersistentContext; pc != nil {
		b.WriteString("\n## Workflow Context\n")
		if pc.Goal != "" {
			fmt.Fprintf(&b, "\nGoal: %s\n", pc.Goal)
		}
		if pc.TargetAudience != "" {
			fmt.Fprintf(&b, "Target audience: %s\n", pc.TargetAudience)
		}
		if pc.DeveloperVision != "" {
			fmt.Fprintf(&b, "Developer vision: %s\n", pc.DeveloperVision)
		}
		if pc.Core != nil {
			fmt.Fprintf(&b, "\n### Workflow Definition\n\n%s\n", pc.Core.Serialize())
		}
		if pc.SuccessCriteria != nil {
			fmt.Fprintf(&b, "\n### Success Criteria\n\n%s\n", pc.SuccessCriteria.Serialize())
		}
	}

	if ic := d.InjectedContext; ic != nil {
		if ic.Features != nil && !ic.Features.Empty() {
			b.WriteString("\n## Feature Guidance\n")
			writeBlocks(&b, ic.Features.Blocks)
		}
		if ic.Styles != nil && !ic.Styles.Empty() {
			b.WriteString("\n## Style Guidance\n")
			writeBlocks(&b, ic.Styles.Blocks)
		}
	}

	b.WriteString("\nReport the outcome when done. State explicitly whether the step completed successfully or failed, and why.\n")
	return b.String()
}

func writeBlocks(b *strings.Builder, blocks []config.ContextBlock) {
	for _, block := range blocks {
		fmt.Fprintf(b, "\n%s:\n", block.Title)
		for _, line := range block.Guidance {
			fmt.Fprintf(b, "- %s\n", line)
		}
	}
}
