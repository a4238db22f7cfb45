package bundler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wayli-app/lambdapack/internal/archive"
)

// PackageOptions configures the zip-packaging step that follows a build.
type PackageOptions struct {
	// SourceDir is the build output directory to archive.
	SourceDir string

	// DestFile is the archive destination. Defaults to "<SourceDir>.zip"
	// next to the source directory.
	DestFile string

	// RemoveStale deletes a previous archive at DestFile before archiving.
	RemoveStale bool

	// OnEntry is called once per archived file with its relative path.
	OnEntry func(rel string)
}

// PackageResult describes a written archive.
type PackageResult struct {
	Path  string
	Files int
	Bytes int64
}

// Package archives a build output directory into a deployable zip.
func Package(opts PackageOptions) (*PackageResult, error) {
	srcAbs, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}
	dest := opts.DestFile
	if dest == "" {
		dest = srcAbs + ".zip"
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	if opts.RemoveStale {
		if err := os.Remove(destAbs); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale archive: %w", err)
		}
	}

	files := 0
	onEntry := func(rel string) {
		files++
		if opts.OnEntry != nil {
			opts.OnEntry(rel)
		}
	}

	if err := archive.Zip(srcAbs, destAbs, onEntry); err != nil {
		return nil, err
	}

	info, err := os.Stat(destAbs)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return &PackageResult{Path: destAbs, Files: files, Bytes: info.Size()}, nil
}
