// Package planner decides at which workflow steps feature and style guidance
// is injected into directives.
//
// Core and success-criteria context travel with every directive; feature and
// style guidance is revealed progressively, only at the steps where it is
// useful. The plan is a pure function of the step list, so an orchestration
// computes it once at start and every directive for the same workflow sees
// the same injection points.
package planner

import (
	"strings"

	"mcod/internal/config"
)

// Keyword vocabularies matched against lowercased step task text.
var (
	featureKeywords = []string{"implement", "develop", "create", "build"}
	styleKeywords   = []string{"style", "format", "present", "design"}
)

// Plan records the step indices at which feature and style guidance is
// injected.
type Plan struct {
	FeatureSteps map[int]bool
	StyleSteps   map[int]bool
}

// InjectFeaturesAt reports whether feature guidance is injected at the step.
func (p Plan) InjectFeaturesAt(index int) bool {
	return p.FeatureSteps[index]
}

// InjectStylesAt reports whether style guidance is injected at the step.
func (p Plan) InjectStylesAt(index int) bool {
	return p.StyleSteps[index]
}

// Compute builds the injection plan for a step list.
//
// A step attracts feature guidance when its task text contains an
// implementation keyword, and style guidance when it contains a presentation
// keyword; an explicit step type equal to a keyword counts as well. When no
// step matches a vocabulary, a single fallback index keeps the guidance from
// being lost: max(1, n/3) for features, max(1, 2n/3) for styles. An empty
// step list yields an empty plan.
func Compute(steps []config.Step) Plan {
	plan := Plan{
		FeatureSteps: map[int]bool{},
		StyleSteps:   map[int]bool{},
	}
	if len(steps) == 0 {
		return plan
	}

	for i, step := range steps {
		if matchesStep(step, featureKeywords) {
			plan.FeatureSteps[i] = true
		}
		if matchesStep(step, styleKeywords) {
			plan.StyleSteps[i] = true
		}
	}

	n := len(steps)
	if len(plan.FeatureSteps) == 0 {
		plan.FeatureSteps[fallbackIndex(n, n/3)] = true
	}
	if len(plan.StyleSteps) == 0 {
		plan.StyleSteps[fallbackIndex(n, 2*n/3)] = true
	}
	return plan
}

func matchesStep(step config.Step, keywords []string) bool {
	task := strings.ToLower(step.Task)
	for _, kw := range keywords {
		if strings.Contains(task, kw) || step.Type == kw {
			return true
		}
	}
	return false
}

// fallbackIndex clamps the heuristic index into the valid step range.
func fallbackIndex(n, index int) int {
	if index < 1 {
		index = 1
	}
	if index > n-1 {
		index = n - 1
	}
	return index
}
