package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/up-stack/up/internal/expr"
	"github.com/up-stack/up/internal/perms"
	"github.com/up-stack/up/internal/playbook"
	"github.com/up-stack/up/internal/task"
	"github.com/up-stack/up/internal/timestr"
)

var validateCmd = &cobra.Command{
	Use:   "validate [playbook]",
	Short: "Validate a playbook",
	Long: `Validate a playbook without running it.

Checks:
- YAML syntax and task shape
- Loop structure (no nested loops)
- Guard expression syntax
- Permission mode specs
- Timeout values

File references are not resolved; they depend on the run environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	path := playbookPath(dir, args)
	tasks, err := playbook.Load(path)
	if err != nil {
		return err
	}

	expanded, err := task.Unroll(tasks)
	if err != nil {
		return err
	}

	for i, t := range expanded {
		if err := validateTask(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}

	fmt.Printf("%s: %d tasks, %d after loop expansion\n", path, len(tasks), len(expanded))
	return nil
}

// validateTask checks the statically checkable reserved keys of one
// expanded task.
func validateTask(t *task.Task) error {
	if guard, ok := t.Get(task.KeyWhen); ok {
		if err := expr.Check(guard); err != nil {
			return err
		}
	}

	if raw, ok := t.Get(task.KeyMode); ok {
		spec, ok := raw.(string)
		if !ok {
			return fmt.Errorf("mode must be a string, got %T", raw)
		}
		isDir := false
		if d, ok := t.Get(task.KeyDirectory); ok {
			if b, ok := d.(bool); ok {
				isDir = b
			}
		}
		if _, err := perms.Compile(spec, isDir); err != nil {
			return err
		}
	}

	if raw, ok := t.Get(task.KeyTimeout); ok {
		switch v := raw.(type) {
		case int:
			if v < 0 {
				return fmt.Errorf("timeout must not be negative, got %d", v)
			}
		case string:
			if _, err := timestr.Parse(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("timeout must be a string or int, got %T", raw)
		}
	}

	if raw, ok := t.Get(task.KeySrc); ok {
		if _, isStr := raw.(string); !isStr {
			return fmt.Errorf("src must be a string, got %T", raw)
		}
	}

	return nil
}
