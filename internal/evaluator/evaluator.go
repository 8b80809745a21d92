// Package evaluator judges whether a step result satisfies the workflow's
// success criteria.
//
// Evaluation is heuristic and total: it inspects the result's status and
// output text, never errors, and always produces a verdict with progress.
// Ambiguous output is treated as success so a workflow keeps moving; an
// explicit error status always wins over optimistic phrasing in the output.
package evaluator

import (
	"fmt"
	"strings"

	"mcod/internal/adapter"
	"mcod/internal/config"
)

// Indicator phrases matched against lowercased result output. Failure
// indicators take precedence over success indicators.
var (
	failureIndicators = []string{"failure:", "failed to", "criteria not met", "unsuccessful"}
	successIndicators = []string{"success:", "completed successfully", "task complete", "criteria met"}
)

// Evaluation is the verdict on one step result.
type Evaluation struct {
	// Success reports whether the step is considered complete.
	Success bool `json:"success"`

	// Feedback is a short human-readable explanation of the verdict.
	Feedback string `json:"feedback"`

	// Progress is the workflow completion fraction assuming this step,
	// (index+1)/total. Reported on failures too, as the fraction the
	// workflow would reach once the step eventually passes.
	Progress float64 `json:"progress"`

	// Context echoes the evaluated step for callers that surface the
	// verdict without the original result at hand.
	Context map[string]string `json:"context,omitempty"`
}

// StepContext locates the evaluated step within its workflow.
type StepContext struct {
	StepIndex  int
	TotalSteps int
}

// Evaluate judges a step result.
//
// Precedence: an error status fails the step regardless of output; then
// failure phrases in the output fail it; then success phrases pass it; then
// the step passes when at least half of the success criteria appear in the
// output; otherwise the step passes by default.
func Evaluate(stepID string, result adapter.Result, criteria config.SuccessCriteria, stepCtx StepContext) Evaluation {
	ev := Evaluation{
		Progress: progress(stepCtx),
		Context: map[string]string{
			"step_id": stepID,
			"status":  result.Status,
		},
	}
	if criteria.Goal != "" {
		ev.Context["goal"] = criteria.Goal
	}
	if criteria.TargetAudience != "" {
		ev.Context["target_audience"] = criteria.TargetAudience
	}
	if criteria.DeveloperVision != "" {
		ev.Context["developer_vision"] = criteria.DeveloperVision
	}

	if result.Status == adapter.StatusError {
		ev.Feedback = "step reported an error"
		if result.Error != "" {
			ev.Feedback = fmt.Sprintf("step reported an error: %s", result.Error)
		}
		return ev
	}

	output := strings.ToLower(result.Output)

	for _, phrase := range failureIndicators {
		if i := strings.Index(output, phrase); i >= 0 {
			ev.Feedback = failureFeedback(output, i+len(phrase))
			return ev
		}
	}

	for _, phrase := range successIndicators {
		if strings.Contains(output, phrase) {
			ev.Success = true
			ev.Feedback = fmt.Sprintf("output indicates success (%q)", phrase)
			return ev
		}
	}

	if matched, total := matchCriteria(output, criteria.Criteria); total > 0 && matched*2 >= total {
		ev.Success = true
		ev.Feedback = fmt.Sprintf("%d of %d success criteria referenced in output", matched, total)
		return ev
	}

	ev.Success = true
	ev.Feedback = "no failure indicators found"
	return ev
}

// failureFeedback surfaces the agent's own diagnostic: the text trailing the
// matched failure indicator, up to the end of its line. A bare indicator
// falls back to a generic message.
func failureFeedback(output string, start int) string {
	rest := output[start:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "output indicates failure"
	}
	return rest
}

// matchCriteria counts criteria whose text appears in the output.
func matchCriteria(output string, criteria []string) (matched, total int) {
	for _, c := range criteria {
		c = strings.TrimSpace(strings.ToLower(c))
		if c == "" {
			continue
		}
		total++
		if strings.Contains(output, c) {
			matched++
		}
	}
	return matched, total
}

func progress(stepCtx StepContext) float64 {
	if stepCtx.TotalSteps <= 0 {
		return 0
	}
	return float64(stepCtx.StepIndex+1) / float64(stepCtx.TotalSteps)
}
