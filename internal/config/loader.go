package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingDocument indicates a mandatory workflow document is absent.
// It is wrapped inside a [ConfigError]; test with errors.Is.
var ErrMissingDocument = errors.New("mandatory document missing")

// ConfigError reports a fatal problem loading a workflow directory: a
// mandatory document is missing or unreadable. It aborts Start; optional
// documents never produce it.
type ConfigError struct {
	// Document is the logical document name, e.g. "mco.core".
	Document string

	// Path is the full path that failed to load.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s (%s): %v", e.Document, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load parses a workflow directory into an immutable [WorkflowConfig].
//
// mco.core and mco.sc are mandatory; a missing or unreadable file yields a
// *[ConfigError]. mco.features and mco.styles are optional and default to
// empty sets when absent.
func Load(dir string) (*WorkflowConfig, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		return nil, &ConfigError{Document: CoreDocument, Path: dir, Err: err}
	}

	coreDoc, err := loadDocument(dir, CoreDocument, true)
	if err != nil {
		return nil, err
	}
	scDoc, err := loadDocument(dir, SuccessCriteriaDocument, true)
	if err != nil {
		return nil, err
	}
	featuresDoc, err := loadDocument(dir, FeaturesDocument, false)
	if err != nil {
		return nil, err
	}
	stylesDoc, err := loadDocument(dir, StylesDocument, false)
	if err != nil {
		return nil, err
	}

	cfg := &WorkflowConfig{
		Dir:             dir,
		Core:            buildCore(coreDoc),
		SuccessCriteria: buildSuccessCriteria(scDoc),
		Features:        buildContextSet(featuresDoc),
		Styles:          buildContextSet(stylesDoc),
	}
	return cfg, nil
}

// loadDocument reads and parses one document. Optional documents return a
// nil Document when absent.
func loadDocument(dir, name string, mandatory bool) (*Document, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !mandatory {
				return nil, nil
			}
			return nil, &ConfigError{Document: name, Path: path, Err: fmt.Errorf("%w: %v", ErrMissingDocument, err)}
		}
		return nil, &ConfigError{Document: name, Path: path, Err: err}
	}
	return ParseDocument(string(data)), nil
}

// buildCore extracts the structured core configuration from a parsed
// mco.core document.
func buildCore(doc *Document) CoreConfig {
	return CoreConfig{
		Name:        sectionValue(doc, "workflow"),
		Description: sectionValue(doc, "description"),
		Version:     sectionValue(doc, "version"),
		Variables:   extractVariables(doc),
		Steps:       extractSteps(doc),
		Document:    doc,
	}
}

// buildSuccessCriteria extracts the structured success criteria from a
// parsed mco.sc document.
func buildSuccessCriteria(doc *Document) SuccessCriteria {
	return SuccessCriteria{
		Goal:            sectionValue(doc, "goal"),
		Criteria:        extractCriteria(doc),
		TargetAudience:  sectionValue(doc, "target_audience"),
		DeveloperVision: sectionValue(doc, "developer_vision"),
		Document:        doc,
	}
}

// buildContextSet turns every section of a features/styles document into an
// ordered guidance block. A nil document yields an empty set.
func buildContextSet(doc *Document) ContextSet {
	if doc == nil {
		return ContextSet{}
	}
	set := ContextSet{Document: doc}
	for _, s := range doc.Sections {
		title := s.Inline
		if title == "" {
			title = s.Name
		}
		set.Blocks = append(set.Blocks, ContextBlock{
			Title:    title,
			Guidance: s.NLP,
		})
	}
	return set
}

// sectionValue returns a section's inline value, falling back to a raw
// string body.
func sectionValue(doc *Document, name string) string {
	s, ok := doc.Section(name)
	if !ok {
		return ""
	}
	if s.Inline != "" {
		return s.Inline
	}
	if str, ok := s.Body.(string); ok {
		return unquote(strings.TrimSpace(str))
	}
	return ""
}

// extractVariables reads the @data section into the data-variable mapping.
func extractVariables(doc *Document) map[string]any {
	s, ok := doc.Section("data")
	if !ok {
		return nil
	}

	switch body := s.Body.(type) {
	case map[string]any:
		vars := make(map[string]any, len(body))
		for k, v := range body {
			if k == "text" || k == "items" {
				continue
			}
			vars[k] = v
		}
		return vars
	case *Node:
		vars := make(map[string]any, len(body.Keys))
		for _, k := range body.Keys {
			c := body.Children[k]
			if len(c.Items) > 0 {
				vars[k] = c.Items
			} else {
				vars[k] = c.Value
			}
		}
		return vars
	default:
		return nil
	}
}

// extractSteps reads the ordered step list. The canonical form is a nested
// @workflow_steps section (per-step task and type); a plain list body and
// the @agents/<agent>/steps layout are also accepted.
func extractSteps(doc *Document) []Step {
	for _, name := range []string{"workflow_steps", "steps"} {
		s, ok := doc.Section(name)
		if !ok {
			continue
		}
		if steps := stepsFromBody(s.Body); len(steps) > 0 {
			return steps
		}
	}

	// Fallback: steps declared under an agent definition.
	if s, ok := doc.Section("agents"); ok {
		if node, ok := s.Body.(*Node); ok {
			for _, agentKey := range node.Keys {
				if stepNode := node.Children[agentKey].Get("steps"); stepNode != nil && len(stepNode.Items) > 0 {
					return stepsFromTasks(stepNode.Items)
				}
			}
		}
	}

	return nil
}

func stepsFromBody(body any) []Step {
	switch b := body.(type) {
	case *Node:
		steps := make([]Step, 0, len(b.Keys))
		for _, id := range b.Keys {
			c := b.Children[id]
			step := Step{
				ID:   id,
				Task: c.Leaf("task"),
				Type: c.Leaf("type"),
			}
			if step.Task == "" {
				step.Task = c.Value
			}
			steps = append(steps, step)
		}
		return steps

	case []string:
		return stepsFromTasks(b)

	case []any:
		// JSON array form: objects with id/task/type, or bare strings.
		var steps []Step
		for i, item := range b {
			switch v := item.(type) {
			case string:
				steps = append(steps, Step{ID: fmt.Sprintf("step_%d", i+1), Task: v})
			case map[string]any:
				step := Step{
					ID:   stringField(v, "id"),
					Task: stringField(v, "task"),
					Type: stringField(v, "type"),
				}
				if step.ID == "" {
					step.ID = fmt.Sprintf("step_%d", i+1)
				}
				steps = append(steps, step)
			}
		}
		return steps

	case map[string]any:
		// JSON object form loses document order; sort ids for a
		// deterministic sequence.
		ids := make([]string, 0, len(b))
		for id := range b {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var steps []Step
		for _, id := range ids {
			props, ok := b[id].(map[string]any)
			if !ok {
				continue
			}
			steps = append(steps, Step{
				ID:   id,
				Task: stringField(props, "task"),
				Type: stringField(props, "type"),
			})
		}
		return steps

	default:
		return nil
	}
}

func stepsFromTasks(tasks []string) []Step {
	steps := make([]Step, len(tasks))
	for i, task := range tasks {
		steps[i] = Step{ID: fmt.Sprintf("step_%d", i+1), Task: task}
	}
	return steps
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// extractCriteria collects the ordered criterion list from either a
// @success_criteria list section or numbered @success_criteria_N sections.
func extractCriteria(doc *Document) []string {
	if s, ok := doc.Section("success_criteria"); ok {
		switch body := s.Body.(type) {
		case []string:
			return body
		case []any:
			var items []string
			for _, v := range body {
				if str, ok := v.(string); ok {
					items = append(items, str)
				}
			}
			if len(items) > 0 {
				return items
			}
		case map[string]any:
			if items, ok := body["items"].([]string); ok {
				return items
			}
		}
	}

	var criteria []string
	for _, s := range doc.Sections {
		if !strings.HasPrefix(s.Name, "success_criteria_") {
			continue
		}
		if s.Inline != "" {
			criteria = append(criteria, s.Inline)
		}
	}
	return criteria
}
