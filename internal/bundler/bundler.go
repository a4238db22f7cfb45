// Package bundler bundles Lambda handlers with esbuild and packages the
// build output for deployment.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/wayli-app/lambdapack/internal/lambda"
)

// ErrNoEntry is returned when a build is requested without any entry point.
var ErrNoEntry = errors.New("no entry point configured")

// Options configures a bundle build.
type Options struct {
	// Spec is the library build specification. Unset fields receive Lambda
	// defaults via lambda.ApplyDefaults.
	Spec lambda.LibrarySpec

	// OutDir is the build output directory. Defaults to "dist".
	OutDir string

	// Minify enables whitespace, identifier, and syntax minification.
	Minify bool

	// Sourcemap emits linked source maps next to the output files.
	Sourcemap bool

	// Metafile captures esbuild's metafile for bundle analysis.
	Metafile bool
}

// OutputFile describes one file written by a build.
type OutputFile struct {
	Path   string
	Bytes  int64
	Format lambda.Format
}

// Result describes a completed build.
type Result struct {
	OutDir   string
	Formats  []lambda.Format
	Files    []OutputFile
	Metafile string
	Duration time.Duration
}

// Build bundles the configured entry points once per output format and writes
// the results under OutDir. Runtime built-ins (and any other specifier the
// spec's external predicate matches) are left unresolved for the Lambda
// runtime to satisfy.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Spec.Entry) == 0 {
		return nil, ErrNoEntry
	}
	spec := lambda.ApplyDefaults(opts.Spec)

	outDir := opts.OutDir
	if outDir == "" {
		outDir = "dist"
	}
	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	start := time.Now()
	res := &Result{OutDir: outAbs, Formats: spec.Formats}

	for _, format := range spec.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		esFormat, err := esbuildFormat(format)
		if err != nil {
			return nil, err
		}

		buildOpts := api.BuildOptions{
			EntryPoints:       spec.Entry,
			Bundle:            true,
			Write:             false,
			Outdir:            outAbs,
			Format:            esFormat,
			Platform:          api.PlatformNode,
			Metafile:          opts.Metafile,
			MinifyWhitespace:  opts.Minify,
			MinifyIdentifiers: opts.Minify,
			MinifySyntax:      opts.Minify,
			LogLevel:          api.LogLevelSilent,
			Plugins:           []api.Plugin{externalPlugin(spec.External)},
		}
		if ext := outExtension(spec.FileName, format); ext != ".js" {
			buildOpts.OutExtension = map[string]string{".js": ext}
		}
		if opts.Sourcemap {
			buildOpts.Sourcemap = api.SourceMapLinked
		}

		build := api.Build(buildOpts)
		if len(build.Errors) > 0 {
			return nil, buildError(format, build.Errors)
		}

		for _, f := range build.OutputFiles {
			if err := writeOutput(f.Path, f.Contents); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, OutputFile{
				Path:   f.Path,
				Bytes:  int64(len(f.Contents)),
				Format: format,
			})
		}
		if build.Metafile != "" {
			res.Metafile = build.Metafile
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// externalPlugin exposes the spec's external predicate to esbuild's resolver.
// Matching specifiers are marked external and stay as plain imports in the
// bundled output.
func externalPlugin(isExternal lambda.ExternalPredicate) api.Plugin {
	return api.Plugin{
		Name: "lambda-external",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind != api.ResolveEntryPoint && isExternal(args.Path) {
						return api.OnResolveResult{Path: args.Path, External: true}, nil
					}
					// Empty result defers to esbuild's default resolution.
					return api.OnResolveResult{}, nil
				})
		},
	}
}

func esbuildFormat(format lambda.Format) (api.Format, error) {
	switch {
	case format.IsModule():
		return api.FormatESModule, nil
	case format == lambda.FormatCJS:
		return api.FormatCommonJS, nil
	case format == "iife":
		return api.FormatIIFE, nil
	default:
		return api.FormatDefault, fmt.Errorf("unsupported output format %q", format)
	}
}

// outExtension derives the output file extension for a format from the
// spec's filename rule.
func outExtension(namer lambda.FileNamer, format lambda.Format) string {
	ext := filepath.Ext(namer(format, "index"))
	if ext == "" {
		return ".js"
	}
	return ext
}

func writeOutput(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func buildError(format lambda.Format, msgs []api.Message) error {
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	return fmt.Errorf("bundle %s failed: %s", format, strings.Join(texts, "; "))
}
