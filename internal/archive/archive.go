// Package archive packages a build output directory into a deployable zip.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/flate"
)

// Zip archives every file and directory under sourceDir into a
// deflate-compressed zip written to destFile. Member paths are relative to
// sourceDir with forward-slash separators, and each member carries the source
// entry's modification time. If destFile itself lives inside sourceDir (a
// previous archive, typically), it is skipped so the new archive never
// contains itself.
//
// onEntry, when non-nil, is invoked once per archived file with the member's
// relative path. It is never invoked for directories or skipped entries.
//
// The destination's parent directories are created as needed and an existing
// file at destFile is overwritten. Any traversal, read, or write failure
// aborts the whole operation; there is no skip-and-continue.
func Zip(sourceDir, destFile string, onEntry func(rel string)) error {
	srcAbs, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("resolve source directory: %w", err)
	}
	destAbs, err := filepath.Abs(destFile)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	if err := writeTree(zw, srcAbs, "", destAbs, onEntry); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destAbs), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.WriteFile(destAbs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// writeTree adds the contents of dir to zw, recursing into subdirectories.
// rel is dir's forward-slash path relative to the archive root ("" for the
// root itself). Siblings are visited in sorted name order so repeated runs
// over unchanged input produce identical archives.
func writeTree(zw *zip.Writer, dir, rel, destAbs string, onEntry func(string)) (err error) {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	defer func() {
		// A double close of the directory handle is tolerated; any other
		// close failure surfaces unless the walk already failed.
		if cerr := f.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
			err = fmt.Errorf("close %s: %w", dir, cerr)
		}
	}()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		abs := filepath.Join(dir, entry.Name())
		if filepath.Clean(abs) == destAbs {
			// The previous archive may live inside the tree being
			// archived; it must never become a member of its successor.
			continue
		}

		entryRel := path.Join(rel, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", abs, err)
		}

		if entry.IsDir() {
			hdr := &zip.FileHeader{Name: entryRel + "/", Method: zip.Deflate}
			hdr.SetMode(info.Mode())
			hdr.Modified = info.ModTime()
			if _, err := zw.CreateHeader(hdr); err != nil {
				return fmt.Errorf("add directory %s: %w", entryRel, err)
			}
			if err := writeTree(zw, abs, entryRel, destAbs, onEntry); err != nil {
				return err
			}
			continue
		}

		data, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("read %s: %w", abs, err)
		}
		hdr := &zip.FileHeader{Name: entryRel, Method: zip.Deflate}
		hdr.SetMode(info.Mode())
		hdr.Modified = info.ModTime()
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("add %s: %w", entryRel, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", entryRel, err)
		}
		if onEntry != nil {
			onEntry(entryRel)
		}
	}
	return nil
}
