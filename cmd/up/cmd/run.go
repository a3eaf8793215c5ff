package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/up-stack/up/internal/config"
	"github.com/up-stack/up/internal/executor"
	"github.com/up-stack/up/internal/filelock"
	"github.com/up-stack/up/internal/logging"
	"github.com/up-stack/up/internal/playbook"
	"github.com/up-stack/up/internal/processor"
)

var runCmd = &cobra.Command{
	Use:   "run [playbook]",
	Short: "Process a playbook",
	Long: `Process a playbook: expand loops, evaluate guards, resolve file
references, permission modes and timeouts, and hand each runnable task
to the executor.

The playbook defaults to up.yml in the working directory. The run takes
an advisory lock on the playbook directory so two runs cannot
interleave; --dry-run prints the resolved plan without locking.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var (
	runDry  bool
	runVars []string
)

func init() {
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "print the resolved plan without locking")
	runCmd.Flags().StringArrayVar(&runVars, "var", nil, "variable values (format: name=value)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}

	path := playbookPath(dir, args)
	tasks, err := playbook.Load(path)
	if err != nil {
		return err
	}

	vars, err := parseVars(runVars)
	if err != nil {
		return err
	}

	if !runDry {
		lock := filelock.New(dir)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer lock.Release()
	}

	logger, closer, err := logging.NewFromConfig(cfg, dir)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	p := processor.New(dir, filepath.Base(path), logger)
	p.DefaultTimeout = cfg.Defaults.Timeout
	for k, v := range vars {
		p.SetVar(k, v)
	}

	// Stop cleanly on Ctrl-C; the current task finishes, the next one
	// never starts.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, stopping...")
		cancel()
	}()

	exec := executor.NewDryRun(os.Stdout)
	if err := p.Run(ctx, tasks, exec); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Println("Run cancelled.")
			return nil
		}
		return err
	}

	fmt.Printf("\nProcessed %d tasks from %s (run %s)\n", exec.Count(), filepath.Base(path), p.RunID())
	return nil
}

// parseVars converts name=value flags into namespace values. Values
// that read as booleans or integers become typed so guards can compare
// them numerically.
func parseVars(raw []string) (map[string]any, error) {
	vars := make(map[string]any, len(raw))
	for _, v := range raw {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid variable format: %s (expected name=value)", v)
		}
		vars[parts[0]] = parseVarValue(parts[1])
	}
	return vars, nil
}

func parseVarValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
