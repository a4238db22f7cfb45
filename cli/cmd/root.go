// Package cmd provides the Cobra commands for the lambdapack CLI.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wayli-app/lambdapack/cli/output"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	outputFmt string
	noHeaders bool
	quiet     bool
	debug     bool

	// Shared across commands
	formatter *output.Formatter
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lambdapack",
	Short: "Bundle and package Node Lambda handlers",
	Long: `lambdapack bundles a Node or TypeScript AWS Lambda handler with esbuild
and packages the build output into a deployable zip.

Defaults target the Lambda Node runtime: ECMAScript module output with a
.mjs extension, and every Node built-in module left external for the
runtime to resolve.

Get started:
  lambdapack init      Create a starter lambdapack.yaml
  lambdapack build     Bundle the handler and write the zip`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Silence errors only when --quiet is used
		cmd.SilenceErrors = quiet
		if IsDebug() {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is <dir>/lambdapack.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false,
		"hide table headers")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"minimal output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug output")

	// Bind environment variables
	viper.SetEnvPrefix("LAMBDAPACK")
	_ = viper.BindEnv("debug")    // LAMBDAPACK_DEBUG
	_ = viper.BindEnv("out_dir")  // LAMBDAPACK_OUT_DIR
	_ = viper.BindEnv("zip_out")  // LAMBDAPACK_ZIP_OUT
	viper.AutomaticEnv()

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// GetFormatter returns the output formatter (for use by subcommands)
func GetFormatter() *output.Formatter {
	if formatter == nil {
		format, _ := output.ParseFormat(outputFmt)
		formatter = output.NewFormatter(format, noHeaders, quiet)
	}
	return formatter
}

// IsDebug returns true if debug mode is enabled
func IsDebug() bool {
	return debug || viper.GetBool("debug")
}
