package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Serialize renders the document back to MCO text.
//
// The output is not byte-identical to the source (comments are dropped and
// body formatting is normalized), but it preserves section order, names,
// inline values, annotation order, and body content, so a serialize/parse
// round trip yields an equivalent document.
func (d *Document) Serialize() string {
	var b strings.Builder
	for i := range d.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSection(&b, &d.Sections[i])
	}
	return b.String()
}

func writeSection(b *strings.Builder, s *Section) {
	if s.Inline != "" {
		fmt.Fprintf(b, "%s%s %q\n", sectionMarker, s.Name, s.Inline)
	} else {
		fmt.Fprintf(b, "%s%s:\n", sectionMarker, s.Name)
	}

	for _, line := range s.NLP {
		fmt.Fprintf(b, "%s %s\n", annotationMarker, line)
	}

	writeBody(b, s.Body, 1)
}

func writeBody(b *strings.Builder, body any, depth int) {
	pad := strings.Repeat("  ", depth)

	switch v := body.(type) {
	case nil:

	case string:
		if v == "" {
			return
		}
		for _, line := range strings.Split(v, "\n") {
			fmt.Fprintf(b, "%s%s\n", pad, line)
		}

	case []string:
		for _, item := range v {
			fmt.Fprintf(b, "%s- %s\n", pad, item)
		}

	case map[string]any:
		writeMap(b, v, pad)

	case *Node:
		writeNode(b, v, depth)

	default:
		// JSON-parsed bodies ([]any and friends) serialize back as JSON.
		if data, err := json.MarshalIndent(v, pad, "  "); err == nil {
			fmt.Fprintf(b, "%s%s\n", pad, string(data))
		}
	}
}

func writeMap(b *strings.Builder, m map[string]any, pad string) {
	keys := sortedMapKeys(m)
	for _, k := range keys {
		if k == "items" {
			continue
		}
		if k == "text" {
			if lines, ok := m[k].([]string); ok {
				for _, line := range lines {
					fmt.Fprintf(b, "%s%s\n", pad, line)
				}
				continue
			}
		}
		switch val := m[k].(type) {
		case string:
			fmt.Fprintf(b, "%s%s: %s\n", pad, k, val)
		default:
			if data, err := json.Marshal(val); err == nil {
				fmt.Fprintf(b, "%s%s: %s\n", pad, k, string(data))
			}
		}
	}
	if items, ok := m["items"].([]string); ok {
		for _, item := range items {
			fmt.Fprintf(b, "%s- %s\n", pad, item)
		}
	}
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, k := range n.Keys {
		c := n.Children[k]
		if c.Value != "" {
			fmt.Fprintf(b, "%s%s: %s\n", pad, k, c.Value)
		} else {
			fmt.Fprintf(b, "%s%s:\n", pad, k)
		}
		writeNode(b, c, depth+1)
		childPad := strings.Repeat("  ", depth+1)
		for _, item := range c.Items {
			fmt.Fprintf(b, "%s- %s\n", childPad, item)
		}
	}
	if depth == 1 {
		for _, item := range n.Items {
			fmt.Fprintf(b, "%s- %s\n", pad, item)
		}
	}
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion order is lost for flat pair bodies; sort for stable output.
	sort.Strings(keys)
	return keys
}
