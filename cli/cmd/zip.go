package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wayli-app/lambdapack/cli/util"
	"github.com/wayli-app/lambdapack/internal/bundler"
)

var zipRemoveStale bool

var zipCmd = &cobra.Command{
	Use:   "zip <dir> [dest]",
	Short: "Archive a directory into a deployable zip",
	Long: `Archive a directory into a deflate-compressed zip without running a
build. The destination defaults to <dir>.zip next to the directory.

If the destination lies inside the directory being archived (for example
when re-running into the same tree), the previous archive is never
included in the new one.

Examples:
  lambdapack zip ./dist
  lambdapack zip ./dist ./out/function.zip`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runZip,
}

func init() {
	zipCmd.Flags().BoolVar(&zipRemoveStale, "remove-stale", false,
		"delete an existing archive at the destination before archiving")
}

func runZip(cmd *cobra.Command, args []string) error {
	dest := ""
	if len(args) == 2 {
		dest = args[1]
	}

	pkg, err := bundler.Package(bundler.PackageOptions{
		SourceDir:   args[0],
		DestFile:    dest,
		RemoveStale: zipRemoveStale,
		OnEntry:     archiveProgress(GetFormatter()),
	})
	if err != nil {
		return err
	}

	GetFormatter().PrintSuccess(fmt.Sprintf("wrote %s (%d files, %s)",
		pkg.Path, pkg.Files, util.FormatBytes(pkg.Bytes)))
	return nil
}
