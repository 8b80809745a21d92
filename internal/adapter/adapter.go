// Package adapter defines the boundary between the orchestration engine and
// the agent backends that execute directives.
//
// The engine hands an [Adapter] a [Directive] describing one workflow step
// together with its persistent and injected context, and receives a [Result]
// describing the outcome. Adapters are registered by name in a [Registry];
// [MockAdapter] provides a scriptable backend for tests, and the agent
// subpackage runs directives through an external agent process.
package adapter

import (
	"context"

	"mcod/internal/config"
)

// Directive types.
const (
	// DirectiveExecuteStep instructs the backend to execute one workflow
	// step.
	DirectiveExecuteStep = "execute_step"

	// DirectiveWorkflowComplete announces that every step has completed.
	// It carries only a message and requires no execution.
	DirectiveWorkflowComplete = "workflow_complete"
)

// Result statuses reported by backends.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Directive is one unit of work issued to an agent backend.
type Directive struct {
	// Type discriminates step directives from the completion directive.
	Type string `json:"type"`

	// OrchestrationID identifies the run the directive belongs to.
	OrchestrationID string `json:"orchestration_id"`

	// StepID and Instruction describe the step to execute. Instruction is
	// the step task text with {variable} placeholders resolved.
	StepID      string `json:"step_id,omitempty"`
	Instruction string `json:"instruction,omitempty"`

	// Guidance is free-form execution advice for the backend.
	Guidance string `json:"guidance,omitempty"`

	// StepIndex is the zero-based position of the step; TotalSteps the
	// workflow length.
	StepIndex  int `json:"step_index"`
	TotalSteps int `json:"total_steps"`

	// PersistentContext travels with every step directive.
	PersistentContext *PersistentContext `json:"persistent_context,omitempty"`

	// InjectedContext is present only at planned injection steps.
	InjectedContext *InjectedContext `json:"injected_context,omitempty"`

	// Message is the human-readable text of a completion directive.
	Message string `json:"message,omitempty"`
}

// PersistentContext is the always-present context of a step directive: the
// full core and success-criteria documents plus the headline fields agents
// consult most.
type PersistentContext struct {
	Core            *config.Document `json:"core,omitempty"`
	SuccessCriteria *config.Document `json:"success_criteria,omitempty"`
	Goal            string           `json:"goal,omitempty"`
	TargetAudience  string           `json:"target_audience,omitempty"`
	DeveloperVision string           `json:"developer_vision,omitempty"`
}

// InjectedContext is the progressively revealed guidance attached at
// planner-selected steps. Either field may be nil.
type InjectedContext struct {
	Features *config.ContextSet `json:"features,omitempty"`
	Styles   *config.ContextSet `json:"styles,omitempty"`
}

// Result is a backend's report of executing one directive.
type Result struct {
	// Output is the backend's textual output for the step.
	Output string `json:"output"`

	// Status is the backend's own verdict, normally [StatusSuccess] or
	// [StatusError]. Free-form values are tolerated.
	Status string `json:"status"`

	// Error carries the failure detail when Status is [StatusError].
	Error string `json:"error,omitempty"`
}

// Adapter executes directives against one agent backend.
//
// Execute returns an error only for infrastructure failures (the backend
// could not be reached or crashed); a step that ran but did not meet its
// criteria is a [Result] with an error status, not an error.
type Adapter interface {
	Execute(ctx context.Context, d Directive) (Result, error)

	// Cleanup releases backend resources. Called once when the owning
	// registry shuts down.
	Cleanup() error
}
