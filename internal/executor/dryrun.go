// Package executor provides the built-in executors that consume
// resolved tasks from a run.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/up-stack/up/internal/processor"
	"github.com/up-stack/up/internal/task"
)

// DryRun prints the plan for each task instead of performing it.
type DryRun struct {
	out   io.Writer
	count int

	header *color.Color
	field  *color.Color
}

// NewDryRun creates a dry-run executor writing to out. Colors are
// enabled only when out is a terminal.
func NewDryRun(out io.Writer) *DryRun {
	header := color.New(color.FgCyan, color.Bold)
	field := color.New(color.FgHiBlack)

	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		header.DisableColor()
		field.DisableColor()
	}

	return &DryRun{out: out, header: header, field: field}
}

// Count returns the number of tasks printed so far.
func (d *DryRun) Count() int {
	return d.count
}

// Execute prints the task's resolved fields.
func (d *DryRun) Execute(_ context.Context, t *processor.ResolvedTask) error {
	d.count++

	name := t.Name
	if name == "" {
		name = "(unnamed)"
	}
	d.header.Fprintf(d.out, "[%d] %s\n", d.count, name)

	if t.HasPath {
		d.printField("src", t.Path)
	}
	if t.HasMode {
		d.printField("mode", fmt.Sprintf("%04o", t.Mode))
	}
	if t.HasTimeout {
		d.printField("timeout", fmt.Sprintf("%ds", t.Timeout))
	}
	for _, k := range t.Task.Keys() {
		switch k {
		case task.KeyName, task.KeyWhen, task.KeySrc, task.KeyMode, task.KeyTimeout:
			continue
		}
		v, _ := t.Task.Get(k)
		d.printField(k, fmt.Sprintf("%v", v))
	}

	return nil
}

func (d *DryRun) printField(key, value string) {
	d.field.Fprintf(d.out, "    %-10s", key+":")
	fmt.Fprintf(d.out, " %s\n", value)
}
