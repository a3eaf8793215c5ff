package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/up-stack/up/internal/playbook"
	"github.com/up-stack/up/internal/task"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose bool
	workDir string
)

var rootCmd = &cobra.Command{
	Use:   "up",
	Short: "up - declarative machine provisioning",
	Long: `up applies a declarative playbook of tasks to the local machine.

A playbook (up.yml) is a YAML sequence of tasks. Tasks can loop over
item lists, guard themselves with small expressions, reference files
relative to the playbook directory, and declare symbolic permission
modes and human-friendly timeouts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// When no subcommand is given, list the playbook's tasks
		if err := listTasks(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "playbook directory (default: current)")

	// Version flag
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("up {{.Version}}\n")
}

// getWorkDir returns the effective playbook directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// playbookPath resolves the playbook argument against the working
// directory, defaulting to up.yml.
func playbookPath(dir string, args []string) string {
	name := playbook.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// listTasks prints the tasks of the default playbook.
func listTasks() error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, playbook.DefaultName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("No playbook found (%s).\n", playbook.DefaultName)
		fmt.Println()
		fmt.Println("Create up.yml in this directory, or point at one with -C <dir>.")
		return nil
	}

	tasks, err := playbook.Load(path)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("Playbook is empty.")
		return nil
	}

	fmt.Printf("Tasks in %s:\n", playbook.DefaultName)
	fmt.Println()
	for i, t := range tasks {
		name := "(unnamed)"
		if v, ok := t.Get(task.KeyName); ok {
			if s, ok := v.(string); ok && s != "" {
				name = s
			}
		}
		suffix := ""
		if t.Has(task.KeyLoop) {
			suffix = " (loop)"
		}
		if t.Has(task.KeyWhen) {
			suffix += " (guarded)"
		}
		fmt.Printf("  %2d. %s%s\n", i+1, name, suffix)
	}
	fmt.Println()
	fmt.Println("Run: up run [--dry-run] [--var key=value]")

	return nil
}
