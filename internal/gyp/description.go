// Package gyp knows the GYP side of the Mozc tree: which build description
// files apply to the host, what they declare, and how to run the GYP
// generator over them.
package gyp

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entity is one entry of a description's "targets" list.
type Entity struct {
	Name      string
	Variables map[string]any
}

// TestSize returns variables.test_size when it is declared as a string.
func (e Entity) TestSize() (string, bool) {
	size, ok := e.Variables["test_size"].(string)
	return size, ok
}

// Description is the validated content of a .gyp file.
type Description struct {
	Path    string
	Targets []Entity
}

// Diagnostic reports a problem found while reading a description. Callers
// log diagnostics and keep going; they never abort a scan.
type Diagnostic struct {
	File    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.File, d.Message)
}

// ParseFile reads and validates the description at path. A nil
// Description means the whole file is unusable; the diagnostics say why.
func ParseFile(path string) (*Description, []Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []Diagnostic{{File: path, Message: "gyp file is not found"}}
		}
		return nil, []Diagnostic{{File: path, Message: fmt.Sprintf("cannot read gyp file: %v", err)}}
	}
	return Parse(path, data)
}

// Parse validates description data. GYP files are Python literals. Once
// their string literals are rewritten as YAML scalars, the remaining
// syntax (nested dicts and lists, numbers, trailing commas) is flow YAML,
// so yaml.v3 reads it.
func Parse(path string, data []byte) (*Description, []Diagnostic) {
	normalized, err := normalizeLiterals(data)
	if err != nil {
		return nil, []Diagnostic{{File: path, Message: fmt.Sprintf("not a valid gyp file: %v", err)}}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(normalized, &doc); err != nil {
		return nil, []Diagnostic{{File: path, Message: fmt.Sprintf("not a valid gyp file: %v", err)}}
	}
	raw, err := nodeValue(&doc)
	if err != nil {
		return nil, []Diagnostic{{File: path, Message: fmt.Sprintf("not a valid gyp file: %v", err)}}
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, []Diagnostic{{File: path, Message: "not a valid gyp file"}}
	}
	targets, ok := root["targets"].([]any)
	if !ok {
		return nil, []Diagnostic{{File: path, Message: "gyp does not have a valid targets"}}
	}

	desc := &Description{Path: path}
	var diags []Diagnostic
	for i, t := range targets {
		entity, ok := t.(map[string]any)
		if !ok {
			diags = append(diags, Diagnostic{File: path, Message: fmt.Sprintf("not a valid target at index %d", i)})
			continue
		}
		name, ok := entity["target_name"].(string)
		if !ok || name == "" {
			diags = append(diags, Diagnostic{File: path, Message: fmt.Sprintf("not a valid target at index %d", i)})
			continue
		}
		vars, _ := entity["variables"].(map[string]any)
		desc.Targets = append(desc.Targets, Entity{Name: name, Variables: vars})
	}
	return desc, diags
}

// nodeValue converts a YAML node into plain Go values. A key repeated in a
// mapping keeps its last value, as in a Python dict literal.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, nil
	}
}
