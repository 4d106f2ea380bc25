package emitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFiles() []File {
	return []File{
		{RelPath: "models/job.go", Content: []byte("package models\n")},
		{RelPath: "README.md", Content: []byte("# sdk\n")},
		{RelPath: "commands/get_jobs.go", Content: []byte("package commands\n")},
	}
}

func TestWrite_DryRunPlansInOrderAndWritesNothing(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")
	res, err := Write(context.Background(), sampleFiles(), Options{OutDir: dir, DryRun: true})
	require.NoError(t, err)

	var rels []string
	for _, p := range res.Planned {
		rels = append(rels, p.RelPath)
	}
	assert.Equal(t, []string{"README.md", "commands/get_jobs.go", "models/job.go"}, rels)
	assert.Equal(t, len("# sdk\n"), res.Planned[0].Size)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "dry run must not create the output directory")
}

func TestWrite_WritesFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := Write(context.Background(), sampleFiles(), Options{OutDir: dir})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "models", "job.go"))
	require.NoError(t, err)
	assert.Equal(t, "package models\n", string(b))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "models"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, fileMode, info.Mode().Perm())
}

func TestWrite_RefusesNonEmptyDirWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644))

	_, err := Write(context.Background(), sampleFiles(), Options{OutDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not empty")

	_, err = Write(context.Background(), sampleFiles(), Options{OutDir: dir, DryRun: true})
	assert.Error(t, err, "dry run validates the directory too")

	_, err = Write(context.Background(), sampleFiles(), Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "existing.txt"))
	assert.NoError(t, err, "force overwrites generated files only")
}

func TestWrite_OutDirIsAFile(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Write(context.Background(), sampleFiles(), Options{OutDir: file, Force: true})
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, file, ioErr.Path)
}

func TestWrite_BlockedPathIsIOError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// a file where a directory is needed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models"), []byte("x"), 0o644))

	_, err := Write(context.Background(), sampleFiles(), Options{OutDir: dir, Force: true})
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "mkdir", ioErr.Op)
}

func TestWrite_RejectsEscapingAndDuplicatePaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, rel := range []string{"../evil.go", "/abs.go", "", "."} {
		_, err := Write(context.Background(), []File{{RelPath: rel}}, Options{OutDir: dir, DryRun: true})
		assert.Error(t, err, "path %q", rel)
	}
	_, err := Write(context.Background(), []File{{RelPath: "a/b.go"}, {RelPath: "a/./b.go"}}, Options{OutDir: dir, DryRun: true})
	assert.ErrorContains(t, err, "duplicate")
}

func TestWrite_RequiresOutDir(t *testing.T) {
	t.Parallel()
	_, err := Write(context.Background(), sampleFiles(), Options{})
	assert.Error(t, err)
}

func TestWrite_FailureLeavesNoPartialTree(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("old\n"), 0o644))
	// models/job.go sorts last and cannot be placed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models"), []byte("x"), 0o644))

	_, err := Write(context.Background(), sampleFiles(), Options{OutDir: dir, Force: true})
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, 1, strings.Count(err.Error(), "mkdir"), err.Error())

	b, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(b), "replaced file is restored")
	_, err = os.Stat(filepath.Join(dir, "commands"))
	assert.True(t, os.IsNotExist(err), "created directories are removed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"README.md", "models"}, names)
}

func TestWrite_FailureRemovesCreatedOutDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")
	files := append(sampleFiles(), File{RelPath: "models/job.go/inner.go", Content: []byte("x")})

	_, err := Write(context.Background(), files, Options{OutDir: dir})
	require.Error(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_CanceledContextWritesNothing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, sampleFiles(), Options{OutDir: dir})
	assert.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
