package evaluator

import (
	"math"
	"strings"
	"testing"

	"mcod/internal/adapter"
	"mcod/internal/config"
)

func TestEvaluateVerdicts(t *testing.T) {
	criteria := config.SuccessCriteria{Criteria: []string{
		"all claims are cited",
		"report has an executive summary",
	}}

	tests := []struct {
		name        string
		result      adapter.Result
		wantSuccess bool
	}{
		{
			name:        "error status fails",
			result:      adapter.Result{Status: adapter.StatusError, Error: "process crashed"},
			wantSuccess: false,
		},
		{
			name: "error status beats success phrase in output",
			result: adapter.Result{
				Status: adapter.StatusError,
				Output: "task complete, everything completed successfully",
			},
			wantSuccess: false,
		},
		{
			name:        "failure phrase fails",
			result:      adapter.Result{Status: adapter.StatusSuccess, Output: "Failed to fetch sources"},
			wantSuccess: false,
		},
		{
			name:        "criteria not met phrase fails",
			result:      adapter.Result{Status: adapter.StatusSuccess, Output: "Ran checks: criteria not met"},
			wantSuccess: false,
		},
		{
			name:        "failure phrase beats success phrase",
			result:      adapter.Result{Status: adapter.StatusSuccess, Output: "task complete but unsuccessful overall"},
			wantSuccess: false,
		},
		{
			name:        "success phrase passes",
			result:      adapter.Result{Status: adapter.StatusSuccess, Output: "Step finished. Task complete."},
			wantSuccess: true,
		},
		{
			name: "half of criteria referenced passes",
			result: adapter.Result{
				Status: adapter.StatusSuccess,
				Output: "Checked the draft: all claims are cited throughout.",
			},
			wantSuccess: true,
		},
		{
			name:        "ambiguous output passes by default",
			result:      adapter.Result{Status: adapter.StatusSuccess, Output: "wrote three paragraphs"},
			wantSuccess: true,
		},
		{
			name:        "empty output passes by default",
			result:      adapter.Result{Status: adapter.StatusSuccess},
			wantSuccess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate("step_1", tt.result, criteria, StepContext{StepIndex: 0, TotalSteps: 3})
			if ev.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v (feedback: %s)", ev.Success, tt.wantSuccess, ev.Feedback)
			}
			if ev.Feedback == "" {
				t.Error("expected non-empty feedback")
			}
		})
	}
}

func TestEvaluateFailureFeedbackCarriesDiagnostic(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"trailing text after indicator", "failure: network down", "network down"},
		{"diagnostic stops at end of line", "step log:\nfailure: disk full\nretrying later", "disk full"},
		{"failed to phrasing", "failed to fetch sources", "fetch sources"},
		{"bare indicator falls back to generic", "unsuccessful", "output indicates failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate("step_1", adapter.Result{
				Status: adapter.StatusSuccess,
				Output: tt.output,
			}, config.SuccessCriteria{}, StepContext{0, 1})
			if ev.Success {
				t.Fatal("expected failure verdict")
			}
			if ev.Feedback != tt.want {
				t.Errorf("Feedback = %q, want %q", ev.Feedback, tt.want)
			}
		})
	}
}

func TestEvaluateProgress(t *testing.T) {
	tests := []struct {
		name   string
		result adapter.Result
		ctx    StepContext
		want   float64
	}{
		{"first of four", adapter.Result{Status: adapter.StatusSuccess}, StepContext{0, 4}, 0.25},
		{"last of four", adapter.Result{Status: adapter.StatusSuccess}, StepContext{3, 4}, 1.0},
		{"failure still reports progress", adapter.Result{Status: adapter.StatusError}, StepContext{1, 4}, 0.5},
		{"zero total steps", adapter.Result{Status: adapter.StatusSuccess}, StepContext{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate("step", tt.result, config.SuccessCriteria{}, tt.ctx)
			if math.Abs(ev.Progress-tt.want) > 1e-9 {
				t.Errorf("Progress = %v, want %v", ev.Progress, tt.want)
			}
		})
	}
}

func TestEvaluateCriteriaThreshold(t *testing.T) {
	criteria := config.SuccessCriteria{Criteria: []string{"alpha ready", "beta ready", "gamma ready", "delta ready"}}

	// One of four criteria referenced is below half; without a success
	// phrase the default-success rule still applies, so distinguish the
	// paths by feedback.
	ev := Evaluate("step_1", adapter.Result{
		Status: adapter.StatusSuccess,
		Output: "alpha ready, beta ready",
	}, criteria, StepContext{0, 1})
	if !ev.Success {
		t.Fatalf("expected success, got failure: %s", ev.Feedback)
	}
	if !strings.Contains(ev.Feedback, "2 of 4") {
		t.Errorf("expected criteria-based feedback, got %q", ev.Feedback)
	}
}

func TestEvaluateContextEcho(t *testing.T) {
	criteria := config.SuccessCriteria{
		Goal:           "Ship the report",
		TargetAudience: "Operators",
	}
	ev := Evaluate("step_2", adapter.Result{Status: adapter.StatusError, Error: "boom"}, criteria, StepContext{1, 2})
	if ev.Context["step_id"] != "step_2" {
		t.Errorf("Context step_id = %q, want step_2", ev.Context["step_id"])
	}
	if ev.Context["status"] != adapter.StatusError {
		t.Errorf("Context status = %q, want error", ev.Context["status"])
	}
	if ev.Context["goal"] != "Ship the report" {
		t.Errorf("Context goal = %q, want the workflow goal", ev.Context["goal"])
	}
	if ev.Context["target_audience"] != "Operators" {
		t.Errorf("Context target_audience = %q, want Operators", ev.Context["target_audience"])
	}
	if _, ok := ev.Context["developer_vision"]; ok {
		t.Error("empty developer vision should not be echoed")
	}
}
