// Package playbook loads task sequences from YAML playbook files.
//
// A playbook is a YAML document whose top level is a sequence of
// mappings; each mapping becomes one ordered task. The loader only
// parses. Loop expansion, guard evaluation and field resolution happen
// downstream in the processor.
package playbook

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/up-stack/up/internal/errors"
	"github.com/up-stack/up/internal/task"
)

// DefaultName is the conventional playbook filename.
const DefaultName = "up.yml"

// Load reads and parses the playbook at path.
func Load(path string) ([]*task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PlaybookParse(path, err)
	}
	return Parse(path, data)
}

// LoadFromDir loads the conventionally named playbook in dir.
func LoadFromDir(dir, name string) ([]*task.Task, error) {
	if name == "" {
		name = DefaultName
	}
	return Load(filepath.Join(dir, name))
}

// Parse decodes playbook YAML into an ordered task list. An empty
// document yields an empty list.
func Parse(path string, data []byte) ([]*task.Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.PlaybookParse(path, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return []*task.Task{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, errors.PlaybookInvalid(
			fmt.Sprintf("%s: top level must be a sequence of tasks", path))
	}

	tasks := make([]*task.Task, 0, len(root.Content))
	for i, node := range root.Content {
		t := task.New()
		if err := node.Decode(t); err != nil {
			return nil, errors.Wrapf(errors.CodePlaybookInvalid, err, "%s: task %d", path, i)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
