package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentSections(t *testing.T) {
	content := `// workflow identity
@workflow "Research Assistant"
@description: "Collects and summarizes research"
@version "1.0"

@data:
  topic: "AI Safety"
  depth: comprehensive
`

	doc := ParseDocument(content)
	require.Len(t, doc.Sections, 4)

	wf, ok := doc.Section("workflow")
	require.True(t, ok)
	assert.Equal(t, "Research Assistant", wf.Inline)
	assert.Equal(t, "", wf.Body)

	desc, ok := doc.Section("description")
	require.True(t, ok)
	assert.Equal(t, "Collects and summarizes research", desc.Inline)

	data, ok := doc.Section("data")
	require.True(t, ok)
	body, ok := data.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AI Safety", body["topic"])
	assert.Equal(t, "comprehensive", body["depth"])
}

func TestParseDocumentAnnotations(t *testing.T) {
	content := `@feature_search "Web Search"
> Use authoritative sources
>NLP "Prefer primary literature"
> Cite everything

@feature_export "Export"
> Write markdown
`

	doc := ParseDocument(content)
	require.Len(t, doc.Sections, 2)

	search := doc.Sections[0]
	assert.Equal(t, "Web Search", search.Inline)
	assert.Equal(t, []string{
		"Use authoritative sources",
		"Prefer primary literature",
		"Cite everything",
	}, search.NLP)

	export := doc.Sections[1]
	assert.Equal(t, []string{"Write markdown"}, export.NLP)
}

func TestParseDocumentIgnoresOrphanAnnotations(t *testing.T) {
	doc := ParseDocument("> floating before any section\n@goal \"Ship it\"\n")
	require.Len(t, doc.Sections, 1)
	assert.Empty(t, doc.Sections[0].NLP)
}

func TestParseBodyListForm(t *testing.T) {
	content := `@success_criteria:
  - "All sections complete"
  - "Sources cited"
  - Summary under one page
`
	doc := ParseDocument(content)
	s, ok := doc.Section("success_criteria")
	require.True(t, ok)
	assert.Equal(t, []string{
		"All sections complete",
		"Sources cited",
		"Summary under one page",
	}, s.Body)
}

func TestParseBodyJSONForm(t *testing.T) {
	content := `@data:
  {"topic": "AI", "rounds": 3}
`
	doc := ParseDocument(content)
	s, ok := doc.Section("data")
	require.True(t, ok)
	body, ok := s.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AI", body["topic"])
	assert.Equal(t, float64(3), body["rounds"])
}

func TestParseBodyMalformedJSONFallsBack(t *testing.T) {
	content := `@data:
  {broken json here
`
	doc := ParseDocument(content)
	s, ok := doc.Section("data")
	require.True(t, ok)
	// Degrades to raw text instead of failing the document.
	assert.Equal(t, "{broken json here", s.Body)
}

func TestParseBodyNestedSteps(t *testing.T) {
	content := `@workflow_steps:
  step_1:
    task: "Research {topic}"
    type: implement
  step_2:
    task: "Summarize findings"
  step_3:
    task: "Style the report"
    type: style
`
	doc := ParseDocument(content)
	s, ok := doc.Section("workflow_steps")
	require.True(t, ok)
	node, ok := s.Body.(*Node)
	require.True(t, ok)

	assert.Equal(t, []string{"step_1", "step_2", "step_3"}, node.Keys)
	assert.Equal(t, "Research {topic}", node.Get("step_1").Leaf("task"))
	assert.Equal(t, "implement", node.Get("step_1").Leaf("type"))
	assert.Equal(t, "Summarize findings", node.Get("step_2").Leaf("task"))
	assert.Equal(t, "", node.Get("step_2").Leaf("type"))
	assert.Equal(t, "style", node.Get("step_3").Leaf("type"))
}

func TestParseBodyRawText(t *testing.T) {
	content := `@developer_vision:
  A research companion that feels like
  a diligent colleague.
`
	doc := ParseDocument(content)
	s, ok := doc.Section("developer_vision")
	require.True(t, ok)
	assert.Equal(t, "A research companion that feels like\na diligent colleague.", s.Body)
}

func TestParseDocumentDuplicateSections(t *testing.T) {
	content := `@success_criteria_1 "First"
@success_criteria_1 "Shadowed"
`
	doc := ParseDocument(content)
	require.Len(t, doc.Sections, 2)

	s, ok := doc.Section("success_criteria_1")
	require.True(t, ok)
	assert.Equal(t, "First", s.Inline)
}

func TestDocumentMarshalJSON(t *testing.T) {
	content := `@workflow "Demo"
@guidelines:
> Keep output short
  tone: formal
`
	doc := ParseDocument(content)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	wf, ok := out["workflow"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Demo", wf["_value"])

	gl, ok := out["guidelines"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "formal", gl["tone"])
	assert.Equal(t, []any{"Keep output short"}, gl["_nlp"])
}

func TestSerializeRoundTrip(t *testing.T) {
	content := `@feature_search "Web Search"
> Use authoritative sources
> Prefer primary literature
> Cite everything

@feature_notes "Note Taking"
> Capture key claims
> Record page numbers
> Keep notes atomic

@feature_outline "Outlining"
> Draft before writing
> One idea per section
> Revisit after research

@feature_export "Export"
> Render to markdown
> Include a bibliography
> Validate all links
`
	first := ParseDocument(content)
	second := ParseDocument(first.Serialize())

	require.Len(t, second.Sections, len(first.Sections))
	for i := range first.Sections {
		assert.Equal(t, first.Sections[i].Name, second.Sections[i].Name)
		assert.Equal(t, first.Sections[i].Inline, second.Sections[i].Inline)
		assert.Equal(t, first.Sections[i].NLP, second.Sections[i].NLP)
	}
}
