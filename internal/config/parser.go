package config

import (
	"encoding/json"
	"strings"
)

// Markers of the MCO document syntax.
const (
	sectionMarker    = "@"
	annotationMarker = ">"
	commentMarker    = "//"
)

// Document is one parsed MCO document: an ordered list of named sections.
//
// Order is significant for features/styles documents, where each section is
// a guidance block, and for numbered success-criteria sections. Duplicate
// section names are preserved in order; [Document.Section] returns the first
// match.
type Document struct {
	Sections []Section
}

// Section is a single named section of an MCO document.
type Section struct {
	// Name is the section name from the marker line (without the marker).
	Name string

	// Inline is the optional quoted value on the marker line, e.g.
	// `@workflow "Research Assistant"` yields Inline "Research Assistant".
	Inline string

	// Body is the parsed section body: map[string]any for key:value
	// content, []string for list content, *Node for nested indented
	// structures, or string for raw text (empty string for no body).
	Body any

	// NLP holds the section's annotation lines in document order.
	// Annotations are commentary for the executing agent; the engine
	// never requires them.
	NLP []string
}

// Section returns the first section with the given name.
func (d *Document) Section(name string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// MarshalJSON renders the document as a section-name to body mapping, with
// annotation lines under a "_nlp" key, matching the persisted directive
// context layout.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Sections))
	for i := range d.Sections {
		s := &d.Sections[i]
		// First occurrence wins for duplicate names.
		if _, exists := out[s.Name]; exists {
			continue
		}
		out[s.Name] = s.contextValue()
	}
	return json.Marshal(out)
}

// contextValue builds the JSON-facing value of a section, folding the inline
// value and annotations into the body.
func (s *Section) contextValue() any {
	if m, ok := s.Body.(map[string]any); ok {
		v := make(map[string]any, len(m)+2)
		for k, val := range m {
			v[k] = val
		}
		if s.Inline != "" {
			v["_value"] = s.Inline
		}
		if len(s.NLP) > 0 {
			v["_nlp"] = s.NLP
		}
		return v
	}

	if s.Inline == "" && len(s.NLP) == 0 {
		return s.Body
	}

	v := map[string]any{}
	if s.Inline != "" {
		v["_value"] = s.Inline
	}
	if len(s.NLP) > 0 {
		v["_nlp"] = s.NLP
	}
	if str, ok := s.Body.(string); !ok || str != "" {
		v["_body"] = s.Body
	}
	return v
}

// ParseDocument parses the text content of one MCO document.
//
// Parsing is resilient: a malformed section body falls back to less
// structured interpretations (list, key:value, raw text) and never prevents
// the rest of the document from parsing. Content before the first section
// marker is ignored apart from comments.
func ParseDocument(content string) *Document {
	doc := &Document{}

	var (
		current   *Section
		bodyLines []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = parseBody(bodyLines)
		doc.Sections = append(doc.Sections, *current)
		current = nil
		bodyLines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, commentMarker) {
			continue
		}

		if strings.HasPrefix(trimmed, annotationMarker) {
			if current != nil {
				current.NLP = append(current.NLP, parseAnnotation(trimmed))
			}
			continue
		}

		if strings.HasPrefix(trimmed, sectionMarker) {
			flush()
			name, inline := parseSectionHeader(trimmed)
			current = &Section{Name: name, Inline: inline}
			continue
		}

		if current != nil {
			// Preserve the original line so the indentation-based
			// parser can see nesting depth.
			bodyLines = append(bodyLines, line)
		}
	}
	flush()

	return doc
}

// parseSectionHeader splits a section marker line into name and optional
// inline value. Both `@name: value` and `@name "value"` forms are accepted.
func parseSectionHeader(line string) (name, inline string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, sectionMarker))

	i := strings.IndexAny(rest, ": \t")
	if i < 0 {
		return rest, ""
	}

	name = rest[:i]
	inline = strings.TrimSpace(strings.TrimPrefix(rest[i:], ":"))
	inline = strings.TrimSpace(inline)
	return name, unquote(inline)
}

// parseAnnotation normalizes an annotation line: the marker and the
// conventional NLP tag are stripped, surrounding quotes removed.
func parseAnnotation(line string) string {
	text := strings.TrimPrefix(line, annotationMarker)
	text = strings.TrimSpace(text)
	if text == "NLP" {
		return ""
	}
	text = strings.TrimPrefix(text, "NLP ")
	return unquote(strings.TrimSpace(text))
}

// parseBody parses a section body in priority order: JSON, nested
// indentation structure, list, key:value pairs, raw text. It never fails;
// unparseable content degrades to raw text.
func parseBody(lines []string) any {
	var eff []string
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" || strings.HasPrefix(t, commentMarker) {
			continue
		}
		eff = append(eff, ln)
	}
	if len(eff) == 0 {
		return ""
	}

	// JSON-looking bodies are tried first; on parse failure fall through
	// to the structural parsers rather than aborting.
	joined := strings.TrimSpace(strings.Join(eff, "\n"))
	if looksLikeJSON(joined) {
		var v any
		if err := json.Unmarshal([]byte(joined), &v); err == nil {
			return v
		}
	}

	if hasNestedStructure(eff) {
		if n := parseIndent(eff); n != nil {
			return n
		}
	}

	if items, ok := parseList(eff); ok {
		return items
	}

	return parseKeyValues(eff)
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

// parseList returns the items when every line is a "- item" entry.
func parseList(lines []string) ([]string, bool) {
	items := make([]string, 0, len(lines))
	for _, ln := range lines {
		t := strings.TrimSpace(ln)
		if !strings.HasPrefix(t, "-") {
			return nil, false
		}
		items = append(items, unquote(strings.TrimSpace(strings.TrimPrefix(t, "-"))))
	}
	return items, true
}

// parseKeyValues parses flat key:value content. Values spanning multiple
// lines are joined; "- item" lines collect under an "items" key; bare lines
// outside any pair collect under "text". A body that yields nothing
// structured is returned as raw text.
func parseKeyValues(lines []string) any {
	result := map[string]any{}

	var (
		curKey string
		curVal []string
		items  []string
		text   []string
	)

	flushPair := func() {
		if curKey == "" {
			return
		}
		result[curKey] = unquote(strings.TrimSpace(strings.Join(curVal, "\n")))
		curKey = ""
		curVal = nil
	}

	for _, ln := range lines {
		t := strings.TrimSpace(ln)

		if strings.HasPrefix(t, "-") && !strings.Contains(t, ":") {
			items = append(items, unquote(strings.TrimSpace(strings.TrimPrefix(t, "-"))))
			continue
		}

		if key, value, ok := splitKeyValue(t); ok {
			flushPair()
			value = strings.TrimSpace(value)
			if looksLikeJSONPrefix(value) {
				var v any
				if err := json.Unmarshal([]byte(value), &v); err == nil {
					result[key] = v
					continue
				}
			}
			curKey = key
			curVal = []string{value}
			continue
		}

		if curKey != "" {
			curVal = append(curVal, t)
			continue
		}

		text = append(text, t)
	}
	flushPair()

	if len(items) > 0 {
		result["items"] = items
	}

	raw := strings.TrimSpace(strings.Join(text, "\n"))
	if len(result) == 0 {
		return raw
	}
	if len(text) > 0 {
		result["text"] = text
	}
	return result
}

func looksLikeJSONPrefix(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// splitKeyValue splits "key: value" lines. List entries and lines without a
// colon are not pairs.
func splitKeyValue(t string) (key, value string, ok bool) {
	if strings.HasPrefix(t, "-") {
		return "", "", false
	}
	i := strings.Index(t, ":")
	if i <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(t[:i]), t[i+1:], true
}

// unquote strips one matching pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
