// Package config loads and parses MCO workflow directories.
//
// A workflow directory contains up to four UTF-8 text documents in the MCO
// format: mco.core and mco.sc are mandatory, mco.features and mco.styles are
// optional. The format is line-oriented: a line beginning with '@' opens a
// named section (optionally with an inline quoted value), a line beginning
// with '>' is a natural-language annotation attached to the current section,
// and '//' lines are comments. Section bodies are parsed in priority order as
// JSON, "- item" lists, or key:value pairs, falling back to raw text.
//
// Key types:
//   - [WorkflowConfig] is the immutable aggregate produced by [Load]
//   - [Document] / [Section] represent one parsed MCO document
//   - [ConfigError] reports missing or unreadable mandatory documents
//
// Parsed configuration is immutable after load and may be shared read-only
// across orchestrations started from the same directory.
package config

// Document file names within a workflow directory.
const (
	// CoreDocument holds the workflow identity, data variables, and step
	// list. Mandatory; part of the persistent context of every directive.
	CoreDocument = "mco.core"

	// SuccessCriteriaDocument holds the goal, criteria, target audience,
	// and developer vision. Mandatory; part of the persistent context.
	SuccessCriteriaDocument = "mco.sc"

	// FeaturesDocument holds feature guidance blocks injected at
	// implementation-oriented steps. Optional.
	FeaturesDocument = "mco.features"

	// StylesDocument holds style guidance blocks injected at
	// presentation-oriented steps. Optional.
	StylesDocument = "mco.styles"
)

// WorkflowConfig is the parsed configuration of one workflow directory.
//
// It is created once by [Load], is immutable afterwards, and lives as long
// as any orchestration references it.
type WorkflowConfig struct {
	// Dir is the directory the configuration was loaded from.
	Dir string

	// Core is the structured view of mco.core.
	Core CoreConfig

	// SuccessCriteria is the structured view of mco.sc.
	SuccessCriteria SuccessCriteria

	// Features holds the guidance blocks of mco.features.
	// Empty when the document is absent.
	Features ContextSet

	// Styles holds the guidance blocks of mco.styles.
	// Empty when the document is absent.
	Styles ContextSet
}

// CoreConfig is the structured view of the mco.core document.
type CoreConfig struct {
	// Name is the workflow name (the inline value of @workflow).
	Name string `json:"name"`

	// Description is the inline value of @description.
	Description string `json:"description,omitempty"`

	// Version is the inline value of @version.
	Version string `json:"version,omitempty"`

	// Variables is the data-variable mapping from the @data section.
	// These seed the orchestration's mutable variables and are referenced
	// from step task text as {name} placeholders.
	Variables map[string]any `json:"variables,omitempty"`

	// Steps is the ordered workflow step list.
	Steps []Step `json:"steps"`

	// Document is the full parsed mco.core, preserved for the persistent
	// context of directives (sections beyond the structured fields above,
	// e.g. error handling or revelation strategy, stay visible to agents).
	Document *Document `json:"document,omitempty"`
}

// Step is a single workflow step.
type Step struct {
	// ID identifies the step within the workflow (e.g. "step_1").
	ID string `json:"id"`

	// Task is the step's task text. It may contain {variable}
	// placeholders resolved against orchestration variables.
	Task string `json:"task"`

	// Type is an optional step type tag (e.g. "implement", "style").
	Type string `json:"type,omitempty"`
}

// SuccessCriteria is the structured view of the mco.sc document.
type SuccessCriteria struct {
	// Goal is the inline value of @goal.
	Goal string `json:"goal,omitempty"`

	// Criteria is the ordered criterion list, collected from a
	// @success_criteria list section or numbered @success_criteria_N
	// sections in document order.
	Criteria []string `json:"criteria,omitempty"`

	// TargetAudience is the inline value of @target_audience.
	TargetAudience string `json:"target_audience,omitempty"`

	// DeveloperVision is the inline value of @developer_vision.
	DeveloperVision string `json:"developer_vision,omitempty"`

	// Document is the full parsed mco.sc, preserved for the persistent
	// context of directives.
	Document *Document `json:"document,omitempty"`
}

// ContextSet is an ordered collection of guidance blocks parsed from a
// features or styles document. The zero value is an empty set.
type ContextSet struct {
	// Blocks are the guidance blocks in document order.
	Blocks []ContextBlock `json:"blocks,omitempty"`

	// Document is the full parsed source document, used for
	// re-serialization. Nil for an empty set.
	Document *Document `json:"-"`
}

// Empty reports whether the set contains no guidance blocks.
func (s ContextSet) Empty() bool {
	return len(s.Blocks) == 0
}

// ContextBlock is one titled block of guidance text.
type ContextBlock struct {
	// Title is the block title: the section's inline quoted value when
	// present, otherwise the section name.
	Title string `json:"title"`

	// Guidance holds the block's annotation lines in document order.
	Guidance []string `json:"guidance,omitempty"`
}
