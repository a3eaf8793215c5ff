package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/up-stack/up/internal/perms"
)

var modeCmd = &cobra.Command{
	Use:   "mode <spec>",
	Short: "Compile a symbolic permission spec",
	Long: `Compile a symbolic permission spec and print the octal result.

Useful for checking what a mode value in a playbook will produce:

  up mode u=rw,g=r,o=
  up mode --directory u=rwX,go=rX`,
	Args: cobra.ExactArgs(1),
	RunE: runMode,
}

var modeDirectory bool

func init() {
	modeCmd.Flags().BoolVar(&modeDirectory, "directory", false, "compile for a directory (X grants execute)")
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	mode, err := perms.Compile(args[0], modeDirectory)
	if err != nil {
		return err
	}
	fmt.Printf("%04o\n", mode)
	return nil
}
