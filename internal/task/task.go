// Package task defines the ordered task model and loop expansion.
//
// A playbook is an ordered sequence of tasks; each task is an ordered
// mapping from string keys to values. Key order is significant: loop
// expansion overwrites values in place and appends new keys at the end,
// so the model keeps an explicit key slice next to the value map instead
// of relying on Go map iteration order.
package task

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/up-stack/up/internal/errors"
)

// Reserved task keys consumed by the core rather than by actions.
const (
	KeyLoop      = "loop"      // Sequence of item tasks to expand over
	KeyWhen      = "when"      // Conditional guard (bool or expression string)
	KeySrc       = "src"       // Template/asset file to resolve
	KeyMode      = "mode"      // Symbolic permission spec
	KeyTimeout   = "timeout"   // Human-authored duration
	KeyDirectory = "directory" // Target is a directory (affects mode X)
	KeyName      = "name"      // Display name, used in logs
)

// Task is an insertion-ordered string-to-value mapping.
// The zero value is not usable; create tasks with New.
type Task struct {
	keys   []string
	values map[string]any
}

// New creates an empty task.
func New() *Task {
	return &Task{values: make(map[string]any)}
}

// Set stores a value under key. An existing key keeps its position and
// gets the new value; a new key is appended after all current keys.
func (t *Task) Set(key string, value any) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value for key and whether it is present.
func (t *Task) Get(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Has returns true if key is present.
func (t *Task) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (t *Task) Delete(key string) {
	if _, ok := t.values[key]; !ok {
		return
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (t *Task) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Len returns the number of keys.
func (t *Task) Len() int {
	return len(t.keys)
}

// Clone returns a shallow copy of the task (values are shared, key
// order is independent).
func (t *Task) Clone() *Task {
	c := &Task{
		keys:   make([]string, len(t.keys)),
		values: make(map[string]any, len(t.values)),
	}
	copy(c.keys, t.keys)
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether two tasks have the same keys in the same order
// with deeply equal values.
func (t *Task) Equal(other *Task) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.keys) != len(other.keys) {
		return false
	}
	for i, k := range t.keys {
		if other.keys[i] != k {
			return false
		}
		if !reflect.DeepEqual(t.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// String renders the task as an ordered key: value list, for logs and
// test failure messages.
func (t *Task) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, k := range t.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, t.values[k])
	}
	b.WriteString("}")
	return b.String()
}

// UnmarshalYAML decodes a YAML mapping into a Task, preserving the
// document's key order. The reserved "loop" key decodes its value as a
// sequence of item tasks.
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.PlaybookInvalid(
			fmt.Sprintf("task must be a mapping, got %s at line %d", kindName(node.Kind), node.Line))
	}

	t.keys = nil
	t.values = make(map[string]any, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return errors.PlaybookInvalid(
				fmt.Sprintf("task key at line %d is not a string", keyNode.Line))
		}
		if t.Has(key) {
			return errors.PlaybookInvalid(
				fmt.Sprintf("duplicate task key %q at line %d", key, keyNode.Line))
		}

		if key == KeyLoop {
			var items []*Task
			if err := valNode.Decode(&items); err != nil {
				return errors.PlaybookInvalid(
					fmt.Sprintf("loop value at line %d must be a sequence of mappings: %v", valNode.Line, err))
			}
			t.Set(key, items)
			continue
		}

		var value any
		if err := valNode.Decode(&value); err != nil {
			return errors.PlaybookInvalid(
				fmt.Sprintf("task value for %q at line %d: %v", key, valNode.Line, err))
		}
		t.Set(key, value)
	}

	return nil
}

// MarshalYAML encodes the task as a mapping in key order.
func (t *Task) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range t.keys {
		var keyNode yaml.Node
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		var valNode yaml.Node
		if err := valNode.Encode(t.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return node, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
