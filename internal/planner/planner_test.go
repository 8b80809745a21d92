package planner

import (
	"reflect"
	"testing"

	"mcod/internal/config"
)

func steps(tasks ...string) []config.Step {
	out := make([]config.Step, len(tasks))
	for i, task := range tasks {
		out[i] = config.Step{ID: "step", Task: task}
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		steps        []config.Step
		wantFeatures map[int]bool
		wantStyles   map[int]bool
	}{
		{
			name:         "keyword matches",
			steps:        steps("Plan", "Implement the feature", "Style the report"),
			wantFeatures: map[int]bool{1: true},
			wantStyles:   map[int]bool{2: true},
		},
		{
			name: "no matches uses fallback indices",
			steps: steps(
				"Gather sources", "Read papers", "Take notes",
				"Draft sections", "Review draft", "Publish",
			),
			wantFeatures: map[int]bool{2: true},
			wantStyles:   map[int]bool{4: true},
		},
		{
			name:         "multiple matches all injected",
			steps:        steps("Build the scraper", "Develop the parser", "Format output", "Present results"),
			wantFeatures: map[int]bool{0: true, 1: true},
			wantStyles:   map[int]bool{2: true, 3: true},
		},
		{
			name:         "matching is case insensitive",
			steps:        steps("IMPLEMENT core", "DESIGN the layout"),
			wantFeatures: map[int]bool{0: true},
			wantStyles:   map[int]bool{1: true},
		},
		{
			name:         "single step fallback stays in range",
			steps:        steps("Do the thing"),
			wantFeatures: map[int]bool{0: true},
			wantStyles:   map[int]bool{0: true},
		},
		{
			name:         "empty step list yields empty plan",
			steps:        nil,
			wantFeatures: map[int]bool{},
			wantStyles:   map[int]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Compute(tt.steps)
			if !reflect.DeepEqual(plan.FeatureSteps, tt.wantFeatures) {
				t.Errorf("FeatureSteps = %v, want %v", plan.FeatureSteps, tt.wantFeatures)
			}
			if !reflect.DeepEqual(plan.StyleSteps, tt.wantStyles) {
				t.Errorf("StyleSteps = %v, want %v", plan.StyleSteps, tt.wantStyles)
			}
		})
	}
}

func TestComputeStepType(t *testing.T) {
	list := []config.Step{
		{ID: "step_1", Task: "Work on the data layer", Type: "implement"},
		{ID: "step_2", Task: "Polish the output", Type: "style"},
	}
	plan := Compute(list)

	if !plan.InjectFeaturesAt(0) {
		t.Error("expected feature injection at step with implement type")
	}
	if !plan.InjectStylesAt(1) {
		t.Error("expected style injection at step with style type")
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	list := steps("Plan", "Implement", "Review", "Style")
	first := Compute(list)
	for i := 0; i < 10; i++ {
		if got := Compute(list); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan changed between computations: %v vs %v", got, first)
		}
	}
}
