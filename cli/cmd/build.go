package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wayli-app/lambdapack/cli/config"
	"github.com/wayli-app/lambdapack/cli/output"
	"github.com/wayli-app/lambdapack/cli/util"
	"github.com/wayli-app/lambdapack/internal/bundler"
	"github.com/wayli-app/lambdapack/internal/lambda"
)

var (
	buildEntry     []string
	buildFormats   []string
	buildOutDir    string
	buildZipOut    string
	buildNoZip     bool
	buildMinify    bool
	buildSourcemap bool
	buildAnalyze   bool
)

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Bundle the handler and package a deployable zip",
	Long: `Bundle the configured entry points with esbuild and package the build
output directory into a deployable zip.

The project directory defaults to the current directory. Configuration is
read from lambdapack.yaml in the project directory; flags override it.

Examples:
  lambdapack build
  lambdapack build ./my-function
  lambdapack build --entry src/handler.ts --format cjs
  lambdapack build --no-zip --analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringArrayVar(&buildEntry, "entry", nil, "entry point (repeatable)")
	buildCmd.Flags().StringArrayVar(&buildFormats, "format", nil, "output format: es, cjs (repeatable)")
	buildCmd.Flags().StringVar(&buildOutDir, "out-dir", "", "build output directory (default dist)")
	buildCmd.Flags().StringVar(&buildZipOut, "zip-out", "", "archive destination (default <out-dir>.zip)")
	buildCmd.Flags().BoolVar(&buildNoZip, "no-zip", false, "skip the archive step")
	buildCmd.Flags().BoolVar(&buildMinify, "minify", false, "minify the output")
	buildCmd.Flags().BoolVar(&buildSourcemap, "sourcemap", false, "emit source maps")
	buildCmd.Flags().BoolVar(&buildAnalyze, "analyze", false, "print a bundle size breakdown")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	proj, err := loadProject(dir)
	if err != nil {
		return err
	}
	applyBuildFlags(proj)

	if len(proj.Entry) == 0 {
		// Nothing configured to bundle; not an error.
		GetFormatter().PrintWarning("no entry point configured, skipping build")
		return nil
	}

	spec := lambda.LibrarySpec{Entry: resolvePaths(dir, proj.Entry)}
	for _, f := range proj.Formats {
		spec.Formats = append(spec.Formats, lambda.Format(f))
	}
	if len(proj.External) > 0 {
		table := lambda.Builtins()
		for _, m := range proj.External {
			table[m] = struct{}{}
		}
		spec.External = lambda.NodeBuiltinExternal(table)
	}

	outDir := proj.OutDir
	if outDir == "" {
		outDir = "dist"
	}
	outDir = resolvePath(dir, outDir)

	res, err := bundler.Build(cmd.Context(), bundler.Options{
		Spec:      spec,
		OutDir:    outDir,
		Minify:    proj.Minify,
		Sourcemap: proj.Sourcemap,
		Metafile:  buildAnalyze,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("out_dir", res.OutDir).
		Int("files", len(res.Files)).
		Dur("duration", res.Duration).
		Msg("bundle complete")

	f := GetFormatter()
	printBuildTable(f, res)

	if buildAnalyze && res.Metafile != "" {
		if err := printAnalysis(f, res.Metafile, dir); err != nil {
			return err
		}
	}

	if proj.Zip.Disabled {
		return nil
	}

	zipOut := proj.Zip.Out
	if zipOut != "" {
		zipOut = resolvePath(dir, zipOut)
	}
	pkg, err := bundler.Package(bundler.PackageOptions{
		SourceDir:   res.OutDir,
		DestFile:    zipOut,
		RemoveStale: true,
		OnEntry:     archiveProgress(f),
	})
	if err != nil {
		return err
	}

	f.PrintSuccess(fmt.Sprintf("wrote %s (%d files, %s)",
		pkg.Path, pkg.Files, util.FormatBytes(pkg.Bytes)))
	return nil
}

// loadProject reads the project config, honoring --config and falling back to
// an empty config for flag-only usage.
func loadProject(dir string) (*config.Project, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath(dir)
		return config.LoadOrDefault(path)
	}
	return config.Load(path)
}

// applyBuildFlags layers flag and environment overrides onto the project
// config. Flags win over environment, environment wins over file.
func applyBuildFlags(proj *config.Project) {
	if v := viper.GetString("out_dir"); v != "" {
		proj.OutDir = v
	}
	if v := viper.GetString("zip_out"); v != "" {
		proj.Zip.Out = v
	}

	if len(buildEntry) > 0 {
		proj.Entry = buildEntry
	}
	if len(buildFormats) > 0 {
		proj.Formats = buildFormats
	}
	if buildOutDir != "" {
		proj.OutDir = buildOutDir
	}
	if buildZipOut != "" {
		proj.Zip.Out = buildZipOut
	}
	if buildNoZip {
		proj.Zip.Disabled = true
	}
	if buildMinify {
		proj.Minify = true
	}
	if buildSourcemap {
		proj.Sourcemap = true
	}
}

func printBuildTable(f *output.Formatter, res *bundler.Result) {
	rows := make([][]string, 0, len(res.Files))
	for _, file := range res.Files {
		rel, err := filepath.Rel(res.OutDir, file.Path)
		if err != nil {
			rel = file.Path
		}
		rows = append(rows, []string{
			filepath.ToSlash(rel),
			string(file.Format),
			util.FormatBytes(file.Bytes),
		})
	}
	f.PrintTable(output.TableData{
		Headers: []string{"FILE", "FORMAT", "SIZE"},
		Rows:    rows,
	})
}

func printAnalysis(f *output.Formatter, metafile, dir string) error {
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		dirAbs = dir
	}
	analysis, err := bundler.Analyze(metafile, dirAbs)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(analysis.InputFiles))
	for _, input := range analysis.InputFiles {
		rows = append(rows, []string{
			util.TruncateString(input.Path, 60),
			util.FormatBytes(int64(input.BytesInOutput)),
			fmt.Sprintf("%.1f%%", input.Percentage),
		})
	}
	f.PrintTable(output.TableData{
		Headers: []string{"INPUT", "IN BUNDLE", "SHARE"},
		Rows:    rows,
	})

	if len(analysis.ExternalImports) > 0 {
		f.PrintSuccess("external: " + strings.Join(analysis.ExternalImports, ", "))
	}
	return nil
}

// archiveProgress returns the per-file archive progress callback. An
// interactive session gets visible progress lines; otherwise entries go to
// the debug log only.
func archiveProgress(f *output.Formatter) func(rel string) {
	if util.IsInteractive() && !quiet {
		return func(rel string) {
			f.PrintSuccess("  adding " + rel)
		}
	}
	return func(rel string) {
		log.Debug().Str("file", rel).Msg("archived")
	}
}

// resolvePath makes a config-relative path absolute against the project dir.
func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func resolvePaths(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(dir, p)
	}
	return out
}
