package config

import (
	"encoding/json"
	"strings"
)

// Node is a parsed node of an indentation-structured section body, e.g. a
// step list with per-step properties:
//
//	@workflow_steps:
//	  step_1:
//	    task: "Research {topic}"
//	    type: implement
//
// Keys preserves child order, which carries meaning for workflow steps.
// A node holds either children, list items, or a scalar value.
type Node struct {
	// Keys are the child keys in document order.
	Keys []string

	// Children maps keys to child nodes.
	Children map[string]*Node

	// Value is the scalar value for leaf nodes.
	Value string

	// Items are "- item" list entries nested under this node.
	Items []string
}

// Get returns the child node for key, or nil. Safe on a nil receiver.
func (n *Node) Get(key string) *Node {
	if n == nil {
		return nil
	}
	return n.Children[key]
}

// Leaf returns the scalar value of the child node for key, or "".
func (n *Node) Leaf(key string) string {
	if c := n.Get(key); c != nil {
		return c.Value
	}
	return ""
}

// MarshalJSON renders children as an object, items as an array, and leaves
// as their scalar value.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch {
	case len(n.Keys) > 0:
		out := make(map[string]any, len(n.Keys))
		for _, k := range n.Keys {
			out[k] = n.Children[k]
		}
		return json.Marshal(out)
	case len(n.Items) > 0:
		return json.Marshal(n.Items)
	default:
		return json.Marshal(n.Value)
	}
}

// hasNestedStructure reports whether the body lines contain a bare key
// followed by a more-indented line, the trigger for the secondary
// indentation-depth parser.
func hasNestedStructure(lines []string) bool {
	for i := 0; i < len(lines)-1; i++ {
		t := strings.TrimSpace(lines[i])
		key, value, ok := splitKeyValue(t)
		if !ok || key == "" || strings.TrimSpace(value) != "" {
			continue
		}
		if indentWidth(lines[i+1]) > indentWidth(lines[i]) {
			return true
		}
	}
	return false
}

// parseIndent builds a [Node] tree from indentation depth. Lines that are
// neither pairs nor list entries attach to the enclosing node as items, so
// loosely formatted content still lands somewhere useful.
func parseIndent(lines []string) *Node {
	root := &Node{Children: map[string]*Node{}}

	type frame struct {
		indent int
		node   *Node
	}
	stack := []frame{{indent: -1, node: root}}

	for _, ln := range lines {
		ind := indentWidth(ln)
		t := strings.TrimSpace(ln)

		for len(stack) > 1 && stack[len(stack)-1].indent >= ind {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node

		if strings.HasPrefix(t, "-") {
			item := unquote(strings.TrimSpace(strings.TrimPrefix(t, "-")))
			parent.Items = append(parent.Items, item)
			continue
		}

		key, value, ok := splitKeyValue(t)
		if !ok {
			parent.Items = append(parent.Items, unquote(t))
			continue
		}

		child := &Node{
			Children: map[string]*Node{},
			Value:    unquote(strings.TrimSpace(value)),
		}
		if _, dup := parent.Children[key]; !dup {
			parent.Keys = append(parent.Keys, key)
		}
		parent.Children[key] = child
		stack = append(stack, frame{indent: ind, node: child})
	}

	if len(root.Keys) == 0 && len(root.Items) == 0 {
		return nil
	}
	return root
}

// indentWidth measures leading whitespace; tabs count as four columns.
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
