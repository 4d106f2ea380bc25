package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one rendered artifact, addressed relative to the output root.
type File struct {
	RelPath string
	Content []byte
}

// RenderOptions are shared by the per-target renderers.
type RenderOptions struct {
	// PackageName is the package, module or namespace of the generated SDK.
	// Each renderer has its own default.
	PackageName string
}

// Options controls how files are written.
type Options struct {
	OutDir string // required
	Force  bool   // write into a non-empty directory
	DryRun bool   // plan only
	Logger *slog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files in path order.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

// IOError reports a failure writing the output tree.
type IOError struct {
	Path  string
	Op    string
	Cause error
}

func (e *IOError) Error() string {
	cause := e.Cause
	var pathErr *fs.PathError
	if errors.As(cause, &pathErr) {
		cause = pathErr.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

const fileMode os.FileMode = 0o644

// Write plans files in path order and, unless DryRun is set, writes them under
// OutDir. Every file is staged first and then moved into place; when any step
// fails the tree is put back the way it was. A non-empty OutDir is refused
// without Force.
func Write(ctx context.Context, files []File, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, &IOError{Path: opts.OutDir, Op: "resolve", Cause: err}
	}

	byPath := make(map[string][]byte, len(files))
	for _, f := range files {
		rel, err := cleanRelPath(f.RelPath)
		if err != nil {
			return nil, err
		}
		if _, dup := byPath[rel]; dup {
			return nil, fmt.Errorf("emitter: duplicate output path %q", rel)
		}
		byPath[rel] = f.Content
	}
	rels := make([]string, 0, len(byPath))
	for rel := range byPath {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	res := &Result{OutDir: abs, Planned: make([]PlannedFile, 0, len(rels))}
	for _, rel := range rels {
		res.Planned = append(res.Planned, PlannedFile{RelPath: rel, Size: len(byPath[rel]), Mode: fileMode})
	}

	if err := validateOutputDirectory(abs, opts.Force); err != nil {
		return nil, err
	}
	if opts.DryRun {
		logger.Debug("dry run, nothing written", "dir", abs, "files", len(rels))
		return res, nil
	}
	if err := commit(ctx, abs, rels, byPath, logger); err != nil {
		return nil, err
	}
	return res, nil
}

// cleanRelPath keeps every output inside the root.
func cleanRelPath(rel string) (string, error) {
	rel = filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimSpace(rel))))
	if rel == "." || rel == "" || strings.HasPrefix(rel, "../") || rel == ".." || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("emitter: invalid output path %q", rel)
	}
	return rel, nil
}

func validateOutputDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &IOError{Path: absPath, Op: "stat", Cause: err}
	}
	if !stat.IsDir() {
		return &IOError{Path: absPath, Op: "stat", Cause: fmt.Errorf("not a directory")}
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return &IOError{Path: absPath, Op: "read dir", Cause: err}
	}
	if len(entries) > 0 {
		return fmt.Errorf("output directory %q is not empty (use --force to overwrite)", absPath)
	}
	return nil
}

// commit stages every file in a scratch directory under root, then renames
// them into place. Replaced files are kept aside until the last rename so a
// failure can restore them.
func commit(ctx context.Context, root string, rels []string, byPath map[string][]byte, logger *slog.Logger) (err error) {
	var tx txn
	defer func() {
		if err != nil {
			tx.rollback(logger)
		} else if tx.stage != "" {
			_ = os.RemoveAll(tx.stage)
		}
	}()
	if err := tx.mkdirAll(root); err != nil {
		return err
	}
	stage, err := os.MkdirTemp(root, ".contract2sdk-stage-*")
	if err != nil {
		return &IOError{Path: root, Op: "create stage", Cause: err}
	}
	tx.stage = stage

	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeStaged(filepath.Join(stage, "new", filepath.FromSlash(rel)), byPath[rel]); err != nil {
			return err
		}
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tx.place(root, rel); err != nil {
			return err
		}
		logger.Debug("wrote file", "path", filepath.Join(root, filepath.FromSlash(rel)))
	}
	return nil
}

// txn records what commit changed, in order.
type txn struct {
	stage   string
	dirs    []string
	placed  []string
	backups map[string]string
}

// mkdirAll creates dir and remembers every level it had to create.
func (tx *txn) mkdirAll(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Lstat(d); err == nil || !os.IsNotExist(err) {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: dir, Op: "mkdir", Cause: err}
	}
	for i := len(missing) - 1; i >= 0; i-- {
		tx.dirs = append(tx.dirs, missing[i])
	}
	return nil
}

func (tx *txn) place(root, rel string) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := tx.mkdirAll(filepath.Dir(full)); err != nil {
		return err
	}
	info, err := os.Lstat(full)
	switch {
	case err == nil && info.IsDir():
		return &IOError{Path: full, Op: "replace", Cause: errors.New("is a directory")}
	case err == nil:
		backup := filepath.Join(tx.stage, "old", filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(backup), 0o755); err != nil {
			return &IOError{Path: backup, Op: "mkdir", Cause: err}
		}
		if err := os.Rename(full, backup); err != nil {
			return &IOError{Path: full, Op: "back up", Cause: err}
		}
		if tx.backups == nil {
			tx.backups = make(map[string]string)
		}
		tx.backups[full] = backup
	case !os.IsNotExist(err):
		return &IOError{Path: full, Op: "stat", Cause: err}
	}
	tx.placed = append(tx.placed, full)
	if err := os.Rename(filepath.Join(tx.stage, "new", filepath.FromSlash(rel)), full); err != nil {
		return &IOError{Path: full, Op: "rename", Cause: err}
	}
	return nil
}

// rollback undoes placed files in reverse order, restores what they
// replaced and removes the directories commit created.
func (tx *txn) rollback(logger *slog.Logger) {
	for i := len(tx.placed) - 1; i >= 0; i-- {
		full := tx.placed[i]
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			logger.Warn("rollback: remove failed", "path", full, "error", err)
		}
		if backup, ok := tx.backups[full]; ok {
			if err := os.Rename(backup, full); err != nil {
				logger.Warn("rollback: restore failed", "path", full, "error", err)
			}
		}
	}
	if tx.stage != "" {
		_ = os.RemoveAll(tx.stage)
	}
	for i := len(tx.dirs) - 1; i >= 0; i-- {
		_ = os.Remove(tx.dirs[i])
	}
}

// writeStaged writes content to a fresh file, creating its parents. The
// handle is closed on every path.
func writeStaged(full string, content []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &IOError{Path: filepath.Dir(full), Op: "mkdir", Cause: err}
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return &IOError{Path: full, Op: "create", Cause: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: full, Op: "close", Cause: cerr}
		}
	}()
	if _, err := f.Write(content); err != nil {
		return &IOError{Path: full, Op: "write", Cause: err}
	}
	if err := f.Sync(); err != nil {
		return &IOError{Path: full, Op: "sync", Cause: err}
	}
	if err := f.Chmod(fileMode); err != nil {
		return &IOError{Path: full, Op: "chmod", Cause: err}
	}
	return nil
}
