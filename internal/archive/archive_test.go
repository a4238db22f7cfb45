package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, src string, m1, m2 time.Time) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b", "c.txt"), []byte("world"), 0o644))

	// Set mtimes after all writes so directory updates don't disturb them.
	require.NoError(t, os.Chtimes(filepath.Join(src, "a.txt"), m1, m1))
	require.NoError(t, os.Chtimes(filepath.Join(src, "b", "c.txt"), m2, m2))
}

func readMembers(t *testing.T, dest string) map[string]*zip.File {
	t.Helper()

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	t.Cleanup(func() { _ = zr.Close() })

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[f.Name] = f
	}
	return members
}

func memberContent(t *testing.T, f *zip.File) string {
	t.Helper()

	rc, err := f.Open()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestZipEndToEnd(t *testing.T) {
	src := t.TempDir()
	m1 := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	m2 := time.Date(2023, 5, 2, 8, 30, 0, 0, time.UTC)
	writeFixture(t, src, m1, m2)

	dest := filepath.Join(t.TempDir(), "out.zip")

	var seen []string
	require.NoError(t, Zip(src, dest, func(rel string) { seen = append(seen, rel) }))

	members := readMembers(t, dest)
	require.Len(t, members, 3)

	a := members["a.txt"]
	require.NotNil(t, a)
	assert.Equal(t, "hello", memberContent(t, a))
	assert.Equal(t, m1.Unix(), a.Modified.Unix())

	dir := members["b/"]
	require.NotNil(t, dir)
	assert.True(t, dir.FileInfo().IsDir())
	assert.Equal(t, uint64(0), dir.UncompressedSize64)

	c := members["b/c.txt"]
	require.NotNil(t, c)
	assert.Equal(t, "world", memberContent(t, c))
	assert.Equal(t, m2.Unix(), c.Modified.Unix())

	// Progress callback fires once per file, never for directories.
	assert.Equal(t, []string{"a.txt", "b/c.txt"}, seen)
}

func TestZipSkipsDestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	m := time.Now().Add(-time.Hour)
	writeFixture(t, src, m, m)

	dest := filepath.Join(src, "out.zip")

	// A stale archive from a previous run sits inside the source tree.
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	var seen []string
	require.NoError(t, Zip(src, dest, func(rel string) { seen = append(seen, rel) }))

	members := readMembers(t, dest)
	assert.NotContains(t, members, "out.zip")
	assert.Contains(t, members, "a.txt")
	assert.Contains(t, members, "b/c.txt")
	assert.NotContains(t, seen, "out.zip")
	assert.Len(t, seen, 2)
}

func TestZipCreatesDestinationParents(t *testing.T) {
	src := t.TempDir()
	m := time.Now().Add(-time.Hour)
	writeFixture(t, src, m, m)

	dest := filepath.Join(t.TempDir(), "nested", "deeper", "out.zip")
	require.NoError(t, Zip(src, dest, nil))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestZipOverwritesExistingDestination(t *testing.T) {
	src := t.TempDir()
	m := time.Now().Add(-time.Hour)
	writeFixture(t, src, m, m)

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, os.WriteFile(dest, []byte("not a zip"), 0o644))

	require.NoError(t, Zip(src, dest, nil))

	members := readMembers(t, dest)
	assert.Len(t, members, 3)
}

func TestZipDeterministic(t *testing.T) {
	src := t.TempDir()
	m := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	writeFixture(t, src, m, m)

	dest1 := filepath.Join(t.TempDir(), "one.zip")
	dest2 := filepath.Join(t.TempDir(), "two.zip")
	require.NoError(t, Zip(src, dest1, nil))
	require.NoError(t, Zip(src, dest2, nil))

	first := readMembers(t, dest1)
	second := readMembers(t, dest2)
	require.Len(t, second, len(first))
	for name, f := range first {
		other := second[name]
		require.NotNil(t, other, "missing member %s", name)
		if !f.FileInfo().IsDir() {
			assert.Equal(t, memberContent(t, f), memberContent(t, other))
		}
		assert.Equal(t, f.Modified.Unix(), other.Modified.Unix())
	}
}

func TestZipMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	err := Zip(filepath.Join(t.TempDir(), "does-not-exist"), dest, nil)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no partial archive should be written")
}

func TestZipDirectorySymlinkAborts(t *testing.T) {
	src := t.TempDir()
	target := filepath.Join(src, "real")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "f.txt"), []byte("x"), 0o644))

	// A symlink to a directory is not descended; it surfaces as an
	// unreadable file entry and aborts the whole operation.
	if err := os.Symlink(target, filepath.Join(src, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	err := Zip(src, filepath.Join(t.TempDir(), "out.zip"), nil)
	require.Error(t, err)
}

func TestZipEmptyDirectoryMembers(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	dest := filepath.Join(t.TempDir(), "out.zip")
	called := 0
	require.NoError(t, Zip(src, dest, func(string) { called++ }))

	members := readMembers(t, dest)
	require.Len(t, members, 1)
	require.NotNil(t, members["empty/"])
	assert.True(t, members["empty/"].FileInfo().IsDir())
	assert.Equal(t, 0, called)
}
