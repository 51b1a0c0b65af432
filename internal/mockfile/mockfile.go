// Package mockfile reads base mocks and overrides from YAML or JSON files.
//
// A mock file is a mapping with two optional keys:
//
//	mocks:
//	  User:
//	    name: Alice
//	    friends: {$list: 3}
//	  Query:
//	    broken: {$error: "not today"}
//	override:
//	  me:
//	    name: Bob
//	    avatar: {$null: true}
//
// Every field value under mocks becomes a generator returning that value.
// Mappings describe nested objects, sequences describe lists. A few
// directive mappings describe values YAML cannot express:
//
//	{$list: n, $item: v}  a list of n items, each v (empty objects if omitted)
//	{$error: "message"}   an error marker
//	{$null: true}         an explicit null; base mocks may not use it
package mockfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/graphmock/mock"
)

// File is a parsed mock file.
type File struct {
	Mocks mock.Map
	// Override is absent when the file has none.
	Override mock.Value
}

// Load reads and parses the mock file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses a mock file.
func Parse(data []byte) (*File, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}
	f := &File{Mocks: mock.Map{}}
	if root == nil {
		return f, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nodeError(root, "mock file must be a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "mocks":
			if f.Mocks, err = parseMocks(val); err != nil {
				return nil, err
			}
		case "override":
			if f.Override, err = convert(val, true); err != nil {
				return nil, err
			}
		default:
			return nil, nodeError(key, "unknown key %q; expected mocks or override", key.Value)
		}
	}
	return f, nil
}

// LoadOverride reads a file holding a bare override value.
func LoadOverride(path string) (mock.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mock.Undefined(), err
	}
	v, err := ParseOverride(data)
	if err != nil {
		return mock.Undefined(), fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseOverride parses a bare override value. An empty document is absent.
func ParseOverride(data []byte) (mock.Value, error) {
	root, err := parseRoot(data)
	if err != nil || root == nil {
		return mock.Undefined(), err
	}
	return convert(root, true)
}

func parseRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func parseMocks(n *yaml.Node) (mock.Map, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, nodeError(n, "mocks must map type names to field mocks")
	}
	out := make(mock.Map, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		typeName, fields := n.Content[i].Value, resolveAlias(n.Content[i+1])
		if fields.Kind != yaml.MappingNode {
			return nil, nodeError(fields, "mocks.%s must map field names to values", typeName)
		}
		fm := make(map[string]mock.Value, len(fields.Content)/2)
		for j := 0; j+1 < len(fields.Content); j += 2 {
			v, err := convert(fields.Content[j+1], false)
			if err != nil {
				return nil, err
			}
			fm[fields.Content[j].Value] = mock.Return(v)
		}
		out[typeName] = fm
	}
	return out, nil
}

// convert turns a YAML node into a mock value. Sequences become arrays in
// overrides and lists in base mocks.
func convert(n *yaml.Node, override bool) (mock.Value, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return mock.Undefined(), nodeError(n, "%v", err)
		}
		return mock.Of(v), nil

	case yaml.SequenceNode:
		items := make([]mock.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := convert(c, override)
			if err != nil {
				return mock.Undefined(), err
			}
			items[i] = v
		}
		if override {
			return mock.Array(items...), nil
		}
		return mock.FromList(mock.NewList(len(items), func(_ mock.Args, i int) mock.Value {
			if i < len(items) {
				return items[i]
			}
			return mock.Undefined()
		})), nil

	case yaml.MappingNode:
		if len(n.Content) > 0 && strings.HasPrefix(n.Content[0].Value, "$") {
			return directive(n, override)
		}
		fields := make(map[string]mock.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := convert(n.Content[i+1], override)
			if err != nil {
				return mock.Undefined(), err
			}
			fields[n.Content[i].Value] = v
		}
		return mock.Object(fields), nil
	}
	return mock.Undefined(), nodeError(n, "unsupported YAML node")
}

func directive(n *yaml.Node, override bool) (mock.Value, error) {
	var (
		size    int
		hasList bool
		item    *yaml.Node
		out     mock.Value
		set     bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "$list":
			if err := val.Decode(&size); err != nil || size < 0 {
				return mock.Undefined(), nodeError(val, "$list must be a non-negative integer")
			}
			hasList = true
		case "$item":
			item = val
		case "$error":
			if set {
				return mock.Undefined(), nodeError(n, "directives cannot be combined")
			}
			var msg string
			if err := val.Decode(&msg); err != nil {
				return mock.Undefined(), nodeError(val, "$error must be a string")
			}
			out, set = mock.Error(msg), true
		case "$null":
			if set {
				return mock.Undefined(), nodeError(n, "directives cannot be combined")
			}
			var b bool
			if err := val.Decode(&b); err != nil || !b {
				return mock.Undefined(), nodeError(val, "$null must be true")
			}
			out, set = mock.Null(), true
		default:
			return mock.Undefined(), nodeError(key, "unknown directive %q", key.Value)
		}
	}

	switch {
	case hasList && set, set && item != nil:
		return mock.Undefined(), nodeError(n, "directives cannot be combined")
	case set:
		return out, nil
	case !hasList:
		return mock.Undefined(), nodeError(n, "$item requires $list")
	case item == nil:
		return mock.FromList(mock.NewList(size, nil)), nil
	}
	v, err := convert(item, override)
	if err != nil {
		return mock.Undefined(), err
	}
	return mock.FromList(mock.NewList(size, func(mock.Args, int) mock.Value { return v })), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func nodeError(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}
