package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayli-app/lambdapack/cli/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter lambdapack.yaml",
	Long: `Create a starter project configuration in the given directory
(default: current directory).

Examples:
  lambdapack init
  lambdapack init ./my-function`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path := config.DefaultPath(dir)
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := config.New().Save(path); err != nil {
		return err
	}

	GetFormatter().PrintSuccess("created " + path)
	return nil
}
