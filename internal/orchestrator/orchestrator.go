// Package orchestrator drives workflow runs: it issues directives one step
// at a time, executes them through an agent backend, and advances or holds
// the step cursor based on the evaluated result.
//
// An [Orchestrator] owns no workflow-specific state beyond an in-memory
// binding of orchestration id to its configuration, injection plan, and
// backend; durable progress lives in the [state.Store], so a run against a
// file-backed store can resume after a restart. Directives are ephemeral:
// each call rebuilds one from the current record, so variable overrides
// show up in the very next directive.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mcod/internal/adapter"
	"mcod/internal/config"
	"mcod/internal/evaluator"
	"mcod/internal/planner"
	"mcod/internal/state"
)

// ErrUnknownOrchestration indicates an operation referenced an id this
// orchestrator has no binding for.
var ErrUnknownOrchestration = errors.New("unknown orchestration")

// run binds one orchestration id to everything needed to serve it.
type run struct {
	cfg     *config.WorkflowConfig
	plan    planner.Plan
	backend adapter.Adapter
}

// Orchestrator coordinates workflow runs against a shared state store.
// All methods are safe for concurrent use.
type Orchestrator struct {
	store state.Store
	log   *zap.Logger

	mu   sync.Mutex
	runs map[string]*run
}

// New creates an orchestrator. A nil logger disables logging.
func New(store state.Store, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store: store,
		log:   log,
		runs:  make(map[string]*run),
	}
}

// Start binds an orchestration id to a workflow configuration and backend
// and initializes its durable record. Starting an id that already has a
// durable record resumes it: existing progress is preserved.
func (o *Orchestrator) Start(id string, cfg *config.WorkflowConfig, backend adapter.Adapter) error {
	if len(cfg.Core.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", cfg.Core.Name)
	}

	if err := o.store.Init(id, cfg.Core.Variables); err != nil {
		return fmt.Errorf("failed to initialize orchestration %s: %w", id, err)
	}

	o.mu.Lock()
	o.runs[id] = &run{
		cfg:     cfg,
		plan:    planner.Compute(cfg.Core.Steps),
		backend: backend,
	}
	o.mu.Unlock()

	o.log.Info("orchestration started",
		zap.String("orchestration_id", id),
		zap.String("workflow", cfg.Core.Name),
		zap.Int("steps", len(cfg.Core.Steps)))
	return nil
}

// OverrideVariables merges values over the orchestration's variables. Later
// directives see the merged values during placeholder resolution.
func (o *Orchestrator) OverrideVariables(id string, vars map[string]any) error {
	o.mu.Lock()
	_, ok := o.runs[id]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOrchestration, id)
	}
	return o.store.Update(id, state.Update{Variables: vars})
}

// NextDirective builds the directive for the orchestration's current step.
//
// The directive is rebuilt from the durable record on every call: the same
// step is described until [Orchestrator.ProcessResult] accepts a successful
// result for it, but the description reflects the record as it stands, so
// a variable override between calls lands in the reissued directive. Once
// every step has completed, a completion directive is returned instead.
func (o *Orchestrator) NextDirective(id string) (adapter.Directive, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, ok := o.runs[id]
	if !ok {
		return adapter.Directive{}, fmt.Errorf("%w: %s", ErrUnknownOrchestration, id)
	}

	rec, err := o.store.Get(id)
	if err != nil {
		return adapter.Directive{}, err
	}

	steps := r.cfg.Core.Steps
	if rec.Status == state.StatusCompleted || rec.CurrentStepIndex >= len(steps) {
		if err := o.ensureCompleted(id, rec); err != nil {
			return adapter.Directive{}, err
		}
		d := completionDirective(id, r.cfg)
		return d, nil
	}

	if rec.Status == state.StatusCreated {
		running := state.StatusRunning
		if err := o.store.Update(id, state.Update{Status: &running}); err != nil {
			return adapter.Directive{}, err
		}
	}

	d := o.buildStepDirective(id, r, rec)

	o.log.Info("directive issued",
		zap.String("orchestration_id", id),
		zap.String("step_id", d.StepID),
		zap.Int("step_index", d.StepIndex),
		zap.Bool("features_injected", d.InjectedContext != nil && d.InjectedContext.Features != nil),
		zap.Bool("styles_injected", d.InjectedContext != nil && d.InjectedContext.Styles != nil))
	return d, nil
}

// ExecuteDirective fetches the current directive and runs it through the
// orchestration's backend. Completion directives are answered locally
// without touching the backend. Backend errors propagate unchanged; the
// step cursor does not move.
func (o *Orchestrator) ExecuteDirective(ctx context.Context, id string) (adapter.Result, error) {
	d, err := o.NextDirective(id)
	if err != nil {
		return adapter.Result{}, err
	}
	if d.Type == adapter.DirectiveWorkflowComplete {
		return adapter.Result{Output: d.Message, Status: adapter.StatusSuccess}, nil
	}

	o.mu.Lock()
	backend := o.runs[id].backend
	o.mu.Unlock()

	result, err := backend.Execute(ctx, d)
	if err != nil {
		o.log.Warn("directive execution failed",
			zap.String("orchestration_id", id),
			zap.String("step_id", d.StepID),
			zap.Error(err))
		return adapter.Result{}, fmt.Errorf("failed to execute step %s: %w", d.StepID, err)
	}
	return result, nil
}

// ProcessResult evaluates a step result and advances the orchestration on
// success. On failure the record is left untouched, so the same step is
// reissued on the next [Orchestrator.NextDirective] call.
func (o *Orchestrator) ProcessResult(id string, result adapter.Result) (evaluator.Evaluation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r, ok := o.runs[id]
	if !ok {
		return evaluator.Evaluation{}, fmt.Errorf("%w: %s", ErrUnknownOrchestration, id)
	}

	rec, err := o.store.Get(id)
	if err != nil {
		return evaluator.Evaluation{}, err
	}

	steps := r.cfg.Core.Steps
	idx := rec.CurrentStepIndex
	if idx >= len(steps) {
		return evaluator.Evaluation{}, fmt.Errorf("orchestration %s has no step to evaluate", id)
	}
	step := steps[idx]

	ev := evaluator.Evaluate(step.ID, result, r.cfg.SuccessCriteria, evaluator.StepContext{
		StepIndex:  idx,
		TotalSteps: len(steps),
	})

	if !ev.Success {
		o.log.Info("step held for retry",
			zap.String("orchestration_id", id),
			zap.String("step_id", step.ID),
			zap.String("feedback", ev.Feedback))
		return ev, nil
	}

	if err := o.store.MarkStepComplete(id, step.ID); err != nil {
		return evaluator.Evaluation{}, err
	}
	if err := o.store.SetCurrentStep(id, idx+1); err != nil {
		return evaluator.Evaluation{}, err
	}

	if idx+1 >= len(steps) {
		completed := state.StatusCompleted
		if err := o.store.Update(id, state.Update{Status: &completed}); err != nil {
			return evaluator.Evaluation{}, err
		}
		o.log.Info("orchestration completed", zap.String("orchestration_id", id))
	} else {
		o.log.Info("step completed",
			zap.String("orchestration_id", id),
			zap.String("step_id", step.ID),
			zap.Float64("progress", ev.Progress))
	}
	return ev, nil
}

// StatusReport is the caller-facing view of an orchestration's progress.
type StatusReport struct {
	state.Orchestration

	// Workflow is the workflow name, empty when the id is unknown.
	Workflow string `json:"workflow,omitempty"`

	// TotalSteps is the workflow length, zero when the id is unknown.
	TotalSteps int `json:"total_steps"`

	// Progress is completed steps over total steps.
	Progress float64 `json:"progress"`
}

// Status reports progress for an id. Unknown ids degrade to a report with
// status unknown rather than an error.
func (o *Orchestrator) Status(id string) (StatusReport, error) {
	rec, err := o.store.Get(id)
	if err != nil {
		return StatusReport{}, err
	}

	report := StatusReport{Orchestration: rec}

	o.mu.Lock()
	r, ok := o.runs[id]
	o.mu.Unlock()
	if ok {
		report.Workflow = r.cfg.Core.Name
		report.TotalSteps = len(r.cfg.Core.Steps)
		if report.TotalSteps > 0 {
			report.Progress = float64(len(rec.CompletedStepIDs)) / float64(report.TotalSteps)
		}
	}
	return report, nil
}

// ensureCompleted flips a finished record to completed if a lazy path
// reached the end before ProcessResult did.
func (o *Orchestrator) ensureCompleted(id string, rec state.Orchestration) error {
	if rec.Status == state.StatusCompleted {
		return nil
	}
	completed := state.StatusCompleted
	return o.store.Update(id, state.Update{Status: &completed})
}

// buildStepDirective assembles the directive for the record's current step.
func (o *Orchestrator) buildStepDirective(id string, r *run, rec state.Orchestration) adapter.Directive {
	steps := r.cfg.Core.Steps
	idx := rec.CurrentStepIndex
	step := steps[idx]

	injectFeatures := r.plan.InjectFeaturesAt(idx) && !r.cfg.Features.Empty()
	injectStyles := r.plan.InjectStylesAt(idx) && !r.cfg.Styles.Empty()

	d := adapter.Directive{
		Type:            adapter.DirectiveExecuteStep,
		OrchestrationID: id,
		StepID:          step.ID,
		Instruction:     substituteVariables(step.Task, rec.Variables),
		Guidance:        buildGuidance(r.cfg.SuccessCriteria, injectFeatures, injectStyles),
		StepIndex:       idx,
		TotalSteps:      len(steps),
		PersistentContext: &adapter.PersistentContext{
			Core:            r.cfg.Core.Document,
			SuccessCriteria: r.cfg.SuccessCriteria.Document,
			Goal:            r.cfg.SuccessCriteria.Goal,
			TargetAudience:  r.cfg.SuccessCriteria.TargetAudience,
			DeveloperVision: r.cfg.SuccessCriteria.DeveloperVision,
		},
	}

	if injectFeatures || injectStyles {
		ic := &adapter.InjectedContext{}
		if injectFeatures {
			features := r.cfg.Features
			ic.Features = &features
		}
		if injectStyles {
			styles := r.cfg.Styles
			ic.Styles = &styles
		}
		d.InjectedContext = ic
	}
	return d
}

func completionDirective(id string, cfg *config.WorkflowConfig) adapter.Directive {
	return adapter.Directive{
		Type:            adapter.DirectiveWorkflowComplete,
		OrchestrationID: id,
		TotalSteps:      len(cfg.Core.Steps),
		StepIndex:       len(cfg.Core.Steps),
		Message:         fmt.Sprintf("Workflow %q completed: all %d steps finished.", cfg.Core.Name, len(cfg.Core.Steps)),
	}
}

// buildGuidance describes how the step should be approached: what success
// looks like, who the output is for, and how to use any injected context.
func buildGuidance(sc config.SuccessCriteria, features, styles bool) string {
	var parts []string

	if sc.Goal != "" {
		parts = append(parts, fmt.Sprintf("Work toward the goal: %s.", sc.Goal))
	}
	if sc.TargetAudience != "" {
		parts = append(parts, fmt.Sprintf("The output is for: %s.", sc.TargetAudience))
	}
	if sc.DeveloperVision != "" {
		parts = append(parts, fmt.Sprintf("Keep in mind the vision: %s.", sc.DeveloperVision))
	}
	if len(sc.Criteria) > 0 {
		parts = append(parts, fmt.Sprintf("The workflow is judged against %d success criteria; address the ones this step touches.", len(sc.Criteria)))
	}

	switch {
	case features && styles:
		parts = append(parts, "Apply the injected feature guidance and follow the injected style guidance for all produced output.")
	case features:
		parts = append(parts, "Apply the injected feature guidance when implementing this step.")
	case styles:
		parts = append(parts, "Follow the injected style guidance when presenting the output of this step.")
	default:
		parts = append(parts, "Execute the step using the persistent workflow context.")
	}

	return strings.Join(parts, " ")
}

// substituteVariables resolves {name} placeholders against the variable map.
// Placeholders with no matching variable are left verbatim.
func substituteVariables(text string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	for k, v := range vars {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprint(v))
	}
	return text
}
