// Package processor orchestrates one playbook run: it expands loops,
// evaluates guards against the run's variable namespace, and resolves
// task fields (file paths, permission modes, timeouts) before handing
// each runnable task to an executor.
//
// The processor prepares tasks; it never performs actions itself.
// Processing is strictly sequential, so the namespace has at most one
// logical writer at any time.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/up-stack/up/internal/errors"
	"github.com/up-stack/up/internal/expr"
	"github.com/up-stack/up/internal/logging"
	"github.com/up-stack/up/internal/perms"
	"github.com/up-stack/up/internal/resolver"
	"github.com/up-stack/up/internal/task"
	"github.com/up-stack/up/internal/timestr"
)

// ResolvedTask is a task with its core fields resolved, ready for
// hand-off to an executor.
type ResolvedTask struct {
	Task *task.Task

	// Name is the task's display name, empty when unset.
	Name string

	// Run is the guard result; false means the executor never sees
	// the task.
	Run bool

	// Path is the resolved source file path when the task has a src
	// key.
	Path    string
	HasPath bool

	// Mode is the compiled numeric permission mode when the task has a
	// mode key.
	Mode    uint32
	HasMode bool

	// Timeout is the task timeout in seconds when the task has a
	// timeout key (or the run has a default).
	Timeout    int
	HasTimeout bool
}

// Executor receives fully-resolved runnable tasks. Implementations own
// action execution, including any retry or cancellation behavior.
type Executor interface {
	Execute(ctx context.Context, t *ResolvedTask) error
}

// Processor owns the variable namespace and resolution machinery for
// one run.
type Processor struct {
	// DefaultTimeout, when non-empty, is the duration string applied
	// to tasks without a timeout key.
	DefaultTimeout string

	baseDir string
	source  string
	runID   string
	ns      expr.Namespace
	files   *resolver.Resolver
	logger  *slog.Logger
}

// New creates a processor for the playbook named source under baseDir.
// The playbook itself is loaded by the caller; the processor only needs
// the location to resolve referenced files.
func New(baseDir, source string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewForTest()
	}
	runID := uuid.NewString()
	return &Processor{
		baseDir: baseDir,
		source:  source,
		runID:   runID,
		ns:      make(expr.Namespace),
		files:   resolver.New(baseDir),
		logger:  logging.WithRun(logger, runID),
	}
}

// RunID returns the unique identifier of this run.
func (p *Processor) RunID() string {
	return p.runID
}

// Vars returns the mutable variable namespace. The namespace is owned
// by this processor for its lifetime; guards only read it.
func (p *Processor) Vars() expr.Namespace {
	return p.ns
}

// SetVar sets a namespace variable.
func (p *Processor) SetVar(name string, value any) {
	p.ns[name] = value
}

// Evaluate evaluates a guard against the namespace.
func (p *Processor) Evaluate(input any) (bool, error) {
	return expr.Eval(input, p.ns)
}

// FindFile resolves a referenced file through the search roots.
func (p *Processor) FindFile(name string) (string, error) {
	return p.files.FindFile(name)
}

// Unroll expands loop constructs in a task list.
func (p *Processor) Unroll(tasks []*task.Task) ([]*task.Task, error) {
	return task.Unroll(tasks)
}

// Resolve evaluates a task's guard and resolves its file, mode and
// timeout fields. Any failure aborts immediately; nothing is defaulted
// silently.
func (p *Processor) Resolve(t *task.Task) (*ResolvedTask, error) {
	rt := &ResolvedTask{Task: t, Run: true}

	if name, ok := t.Get(task.KeyName); ok {
		if s, ok := name.(string); ok {
			rt.Name = s
		}
	}

	if guard, ok := t.Get(task.KeyWhen); ok {
		run, err := p.Evaluate(guard)
		if err != nil {
			return nil, err
		}
		rt.Run = run
	}

	if raw, ok := t.Get(task.KeySrc); ok {
		name, ok := raw.(string)
		if !ok {
			return nil, errors.PlaybookInvalid(fmt.Sprintf("src must be a string, got %T", raw))
		}
		path, err := p.FindFile(name)
		if err != nil {
			return nil, err
		}
		rt.Path = path
		rt.HasPath = true
	}

	if raw, ok := t.Get(task.KeyMode); ok {
		spec, ok := raw.(string)
		if !ok {
			return nil, errors.PlaybookInvalid(fmt.Sprintf("mode must be a string, got %T", raw))
		}
		isDir := false
		if d, ok := t.Get(task.KeyDirectory); ok {
			if b, ok := d.(bool); ok {
				isDir = b
			}
		}
		mode, err := perms.Compile(spec, isDir)
		if err != nil {
			return nil, err
		}
		rt.Mode = mode
		rt.HasMode = true
	}

	timeout, has, err := p.resolveTimeout(t)
	if err != nil {
		return nil, err
	}
	rt.Timeout = timeout
	rt.HasTimeout = has

	return rt, nil
}

func (p *Processor) resolveTimeout(t *task.Task) (int, bool, error) {
	raw, ok := t.Get(task.KeyTimeout)
	if !ok {
		if p.DefaultTimeout == "" {
			return 0, false, nil
		}
		secs, err := timestr.Parse(p.DefaultTimeout)
		if err != nil {
			return 0, false, err
		}
		return secs, true, nil
	}

	switch v := raw.(type) {
	case int:
		if v < 0 {
			return 0, false, errors.DurationInvalid(fmt.Sprintf("%d", v))
		}
		return v, true, nil
	case string:
		secs, err := timestr.Parse(v)
		if err != nil {
			return 0, false, err
		}
		return secs, true, nil
	default:
		return 0, false, errors.PlaybookInvalid(fmt.Sprintf("timeout must be a string or int, got %T", raw))
	}
}

// Run unrolls the task list and processes each task in order: skipped
// tasks are logged, runnable tasks are resolved and handed to exec.
// The first failure aborts the run.
func (p *Processor) Run(ctx context.Context, tasks []*task.Task, exec Executor) error {
	expanded, err := p.Unroll(tasks)
	if err != nil {
		return err
	}

	p.logger.Info("run started",
		"source", p.source, "tasks", len(tasks), "expanded", len(expanded))

	for i, t := range expanded {
		if err := ctx.Err(); err != nil {
			return err
		}

		rt, err := p.Resolve(t)
		if err != nil {
			p.logger.Error("task resolution failed", "task", i, "error", err)
			return err
		}

		log := logging.WithTask(p.logger, i, rt.Name)
		if !rt.Run {
			log.Info("task skipped by guard")
			continue
		}

		if err := exec.Execute(ctx, rt); err != nil {
			log.Error("task failed", "error", err)
			return err
		}
		log.Debug("task done")
	}

	p.logger.Info("run finished", "tasks", len(expanded))
	return nil
}
